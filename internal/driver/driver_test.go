package driver

import (
	"bytes"
	"context"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spark-root/coffea-slurm/internal/config"
	"github.com/spark-root/coffea-slurm/internal/connector/rootfile"
	"github.com/spark-root/coffea-slurm/internal/dataset"
	"github.com/spark-root/coffea-slurm/internal/session"
)

// recordingConnector stands in for the root connector and records the
// sources it was asked to count
type recordingConnector struct {
	sources []dataset.Source
	count   int64
}

func (r *recordingConnector) ShortName() string { return rootfile.ShortName }
func (r *recordingConnector) Package() string   { return rootfile.Package }

func (r *recordingConnector) Count(ctx context.Context, src dataset.Source) (int64, error) {
	r.sources = append(r.sources, src)
	return r.count, nil
}

func (r *recordingConnector) Columns(ctx context.Context, src dataset.Source) ([]string, error) {
	return []string{"nMuon", "Muon_pt"}, nil
}

func newTestDriver(t *testing.T) (*Driver, *recordingConnector) {
	connector := &recordingConnector{count: 61540413}
	dataset.Register(connector)

	// restore the environment variable the driver sets
	t.Setenv(session.WorkerExecutableEnv, "")

	conf := config.Default()
	conf.Master = "local[1]"
	conf.Conf = map[string]string{session.KeyLocalDir: t.TempDir()}

	t.Cleanup(func() {
		dataset.Unregister(rootfile.ShortName)
		if s, ok := session.Active(); ok {
			require.Nil(t, s.Stop())
		}
	})

	return &Driver{
		Config:     conf,
		WorkDir:    "/work/smoke",
		Executable: "/usr/local/bin/hepsmoke",
	}, connector
}

func Test_JarPath(t *testing.T) {
	path, err := JarPath("/work/smoke", config.DefaultJar)
	require.Nil(t, err)
	assert.Equal(t, "/work/smoke/hadoop-xrootd-1.0.4-jar-with-dependencies.jar", path)

	path, err = JarPath(".", "a.jar")
	require.Nil(t, err)
	assert.True(t, filepath.IsAbs(path))
}

func Test_Session_BuildTimeKeys(t *testing.T) {
	d, _ := newTestDriver(t)

	s, err := d.Session()
	require.Nil(t, err)

	conf := s.Conf()
	jar := "/work/smoke/hadoop-xrootd-1.0.4-jar-with-dependencies.jar"
	assert.Equal(t, jar, conf.GetOrDefault(session.KeyJars, ""))
	assert.Equal(t, jar, conf.GetOrDefault(session.KeyDriverClassPath, ""))
	assert.Equal(t, jar, conf.GetOrDefault(session.KeyExecutorClassPath, ""))
	assert.Equal(t, "edu.vanderbilt.accre:laurelin:1.0.2", conf.GetOrDefault(session.KeyPackages, ""))
	assert.Equal(t, "/usr/local/bin/hepsmoke", conf.GetOrDefault("spark.executorEnv.PYSPARK_PYTHON", ""))
}

func Test_Dataset_ReadParameters(t *testing.T) {
	d, connector := newTestDriver(t)

	s, err := d.Session()
	require.Nil(t, err)

	ds, err := d.Dataset(s)
	require.Nil(t, err)

	assert.Equal(t, "root", ds.Format())
	assert.Equal(t, dataset.Options{"tree": "Events"}, ds.Options())
	assert.Equal(t, []string{
		"root://eospublic.cern.ch//eos/root-eos/cms_opendata_2012_nanoaod/Run2012B_DoubleMuParked.root",
	}, ds.Locators())

	// nothing is read before the count
	assert.Empty(t, connector.sources)
}

func Test_Run_Output(t *testing.T) {
	d, connector := newTestDriver(t)
	var out bytes.Buffer

	err := d.Run(context.Background(), &out)
	require.Nil(t, err)

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.True(t, len(lines) > 1)

	n, err := strconv.ParseInt(lines[0], 10, 64)
	require.Nil(t, err)
	assert.Equal(t, int64(61540413), n)
	assert.True(t, n >= 0)

	require.Len(t, connector.sources, 1)
	tree, _ := connector.sources[0].Options.Get("tree")
	assert.Equal(t, "Events", tree)

	// configuration lines are sorted by key with no duplicates
	s, ok := session.Active()
	require.True(t, ok)
	pairs := s.Conf().GetAll()
	require.Len(t, lines[1:], len(pairs))

	seen := map[string]bool{}
	for i, p := range pairs {
		assert.Equal(t, p.String(), lines[i+1])
		assert.False(t, seen[p.Key], p.Key)
		seen[p.Key] = true
		if i > 0 {
			assert.True(t, pairs[i-1].Key < p.Key)
		}
	}
	assert.Contains(t, lines, "('spark.jars.packages', 'edu.vanderbilt.accre:laurelin:1.0.2')")
	assert.Contains(t, lines, "('spark.master', 'local[1]')")
}

func Test_Run_ShowColumns(t *testing.T) {
	d, _ := newTestDriver(t)
	d.ShowColumns = true
	var out bytes.Buffer

	require.Nil(t, d.Run(context.Background(), &out))

	lines := strings.Split(out.String(), "\n")
	assert.Equal(t, "61540413", lines[0])
	assert.Equal(t, "column nMuon", lines[1])
	assert.Equal(t, "column Muon_pt", lines[2])
}

func Test_Run_UnresolvedPackage(t *testing.T) {
	d, _ := newTestDriver(t)
	d.Config.Packages = "edu.vanderbilt.accre:missing:1.0.0"
	var out bytes.Buffer

	err := d.Run(context.Background(), &out)
	assert.NotNil(t, err)
	assert.Empty(t, out.String())
}

func Test_HasObjectLocators(t *testing.T) {
	assert.False(t, hasObjectLocators([]string{config.DefaultLocator}))
	assert.True(t, hasObjectLocators([]string{config.DefaultLocator, "s3://events/run.root"}))
}

func Test_Session_KeepsConfigLogLevel(t *testing.T) {
	previous := log.GetLevel()
	t.Cleanup(func() { log.SetLevel(previous) })

	d, _ := newTestDriver(t)
	log.SetLevel(log.WarnLevel)

	_, err := d.Session()
	require.Nil(t, err)
	assert.Equal(t, log.WarnLevel, log.GetLevel())
}

func Test_Session_EngineLogLevelWins(t *testing.T) {
	previous := log.GetLevel()
	t.Cleanup(func() { log.SetLevel(previous) })

	d, _ := newTestDriver(t)
	d.Config.EngineLogLevel = "DEBUG"
	log.SetLevel(log.WarnLevel)

	_, err := d.Session()
	require.Nil(t, err)
	assert.Equal(t, log.DebugLevel, log.GetLevel())
}
