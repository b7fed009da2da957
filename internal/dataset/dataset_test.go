package dataset

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spark-root/coffea-slurm/internal/errors"
)

// fakeConnector counts records from a fixed table keyed by locator
type fakeConnector struct {
	mu      sync.Mutex
	counts  map[string]int64
	fail    map[string]error
	sources []Source
}

func (f *fakeConnector) ShortName() string { return "fake" }
func (f *fakeConnector) Package() string   { return "org.example:fake" }

func (f *fakeConnector) Count(ctx context.Context, src Source) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sources = append(f.sources, src)
	if err, ok := f.fail[src.Locator]; ok {
		return 0, err
	}
	return f.counts[src.Locator], nil
}

func (f *fakeConnector) Columns(ctx context.Context, src Source) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sources = append(f.sources, src)
	return []string{"nMuon", "Muon_pt"}, nil
}

func (f *fakeConnector) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sources)
}

func newFake(t *testing.T) *fakeConnector {
	fake := &fakeConnector{
		counts: map[string]int64{"a": 3, "b": 4, "c": 5},
		fail:   map[string]error{},
	}
	Register(fake)
	t.Cleanup(func() { Unregister("fake") })
	return fake
}

func testEnv() Env {
	return Env{
		Packages:    map[string]bool{"org.example:fake": true},
		Parallelism: 2,
		ScratchDir:  "/tmp/blockmgr-test",
	}
}

func Test_Load_IsLazy(t *testing.T) {
	fake := newFake(t)

	ds, err := NewReader(testEnv()).Format("fake").Option("Tree", "Events").Load("a", "b")
	require.Nil(t, err)

	assert.Equal(t, 0, fake.calls())
	assert.Equal(t, "fake", ds.Format())
	assert.Equal(t, []string{"a", "b"}, ds.Locators())

	tree, ok := ds.Options().Get("tree")
	assert.True(t, ok)
	assert.Equal(t, "Events", tree)
}

func Test_Count_HappyPath(t *testing.T) {
	fake := newFake(t)
	ctx := context.Background()

	ds, err := NewReader(testEnv()).Format("FAKE").Load("a", "b", "c")
	require.Nil(t, err)

	n, err := ds.Count(ctx)
	require.Nil(t, err)
	assert.Equal(t, int64(12), n)
	assert.Equal(t, 3, fake.calls())

	// datasets are re-evaluable
	n, err = ds.Count(ctx)
	require.Nil(t, err)
	assert.Equal(t, int64(12), n)
	assert.Equal(t, 6, fake.calls())

	for _, src := range fake.sources {
		assert.Equal(t, "/tmp/blockmgr-test", src.ScratchDir)
	}
}

func Test_Count_PartitionError(t *testing.T) {
	fake := newFake(t)
	fake.fail["b"] = errors.New(errors.SourceUnreachable, "mock unreachable")

	ds, err := NewReader(testEnv()).Format("fake").Load("a", "b")
	require.Nil(t, err)

	n, err := ds.Count(context.Background())
	assert.Equal(t, int64(0), n)
	assert.True(t, errors.Is(err, errors.SourceUnreachable))
	assert.Contains(t, err.Error(), "counting partition 1")
}

func Test_Count_NegativeCount(t *testing.T) {
	fake := newFake(t)
	fake.counts["a"] = -1

	ds, err := NewReader(testEnv()).Format("fake").Load("a")
	require.Nil(t, err)

	_, err = ds.Count(context.Background())
	assert.True(t, errors.Is(err, errors.InvalidCount))
}

func Test_Count_WrappedPlainError(t *testing.T) {
	fake := newFake(t)
	cause := stderrors.New("mock error")
	fake.fail["a"] = cause

	ds, err := NewReader(testEnv()).Format("fake").Load("a")
	require.Nil(t, err)

	_, err = ds.Count(context.Background())
	assert.True(t, stderrors.Is(err, cause))
}

func Test_Load_UnhappyPath(t *testing.T) {
	newFake(t)

	_, err := NewReader(testEnv()).Format("fake").Load()
	assert.True(t, errors.Is(err, errors.NoLocators))

	_, err = NewReader(testEnv()).Format("parquet").Load("a")
	assert.True(t, errors.Is(err, errors.FormatNotFound))

	// registered connector, package not declared on the session
	_, err = NewReader(Env{Packages: map[string]bool{}}).Format("fake").Load("a")
	assert.True(t, errors.Is(err, errors.FormatNotFound))
}

func Test_Columns_FirstLocator(t *testing.T) {
	fake := newFake(t)

	ds, err := NewReader(testEnv()).Format("fake").Load("b", "c")
	require.Nil(t, err)

	columns, err := ds.Columns(context.Background())
	require.Nil(t, err)
	assert.Equal(t, []string{"nMuon", "Muon_pt"}, columns)
	require.Equal(t, 1, fake.calls())
	assert.Equal(t, "b", fake.sources[0].Locator)
}

func Test_ProvidedBy(t *testing.T) {
	newFake(t)
	assert.Equal(t, []string{"fake"}, ProvidedBy("org.example:fake"))
	assert.Empty(t, ProvidedBy("org.example:other"))
}
