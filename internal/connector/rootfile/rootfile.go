// Package rootfile reads trees out of ROOT files. Files are addressed by
// root:// or xroot:// URLs (served by the xrootd client), s3:// locators
// (staged through the object store) or local paths.
package rootfile

import (
	"context"
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/riofs"
	_ "go-hep.org/x/hep/groot/riofs/plugin/xrootd"
	"go-hep.org/x/hep/groot/rtree"

	"github.com/spark-root/coffea-slurm/internal/dataset"
	"github.com/spark-root/coffea-slurm/internal/errors"
	"github.com/spark-root/coffea-slurm/internal/objectstore"
)

const (
	// ShortName is the format name of the connector
	ShortName = "root"
	// Package is the group:artifact that provides the connector
	Package = "edu.vanderbilt.accre:laurelin"
	// OptionTree names the tree to read, nested trees as dir/tree
	OptionTree = "tree"
)

// Connector implements dataset.Connector for ROOT trees
type Connector struct {
	// Store stages s3:// locators; nil disables them
	Store *objectstore.Store
}

// New returns a connector staging s3:// locators through store
func New(store *objectstore.Store) *Connector {
	return &Connector{Store: store}
}

// Register registers a connector with the dataset registry
func Register(store *objectstore.Store) {
	dataset.Register(New(store))
}

func (c *Connector) ShortName() string { return ShortName }
func (c *Connector) Package() string   { return Package }

// Count returns the number of entries of the tree
func (c *Connector) Count(ctx context.Context, src dataset.Source) (int64, error) {
	var n int64
	err := c.withTree(ctx, src, func(t rtree.Tree) error {
		n = t.Entries()
		return nil
	})
	return n, err
}

// Columns returns the names of the top level branches of the tree
func (c *Connector) Columns(ctx context.Context, src dataset.Source) ([]string, error) {
	var columns []string
	err := c.withTree(ctx, src, func(t rtree.Tree) error {
		for _, b := range t.Branches() {
			columns = append(columns, b.Name())
		}
		return nil
	})
	return columns, err
}

// withTree opens the locator, finds the tree and calls fn with it
func (c *Connector) withTree(ctx context.Context, src dataset.Source, fn func(rtree.Tree) error) error {
	name, ok := src.Options.Get(OptionTree)
	if !ok || name == "" {
		return errors.New(errors.MissingOption, "the root format needs the tree option")
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	path, cleanup, err := c.localize(ctx, src)
	if err != nil {
		return errors.Wrap(errors.SourceUnreachable, fmt.Sprintf("stage %s", src.Locator), err)
	}
	defer cleanup()

	f, err := groot.Open(path)
	if err != nil {
		return errors.Wrap(errors.SourceUnreachable, fmt.Sprintf("open %s", src.Locator), err)
	}
	defer f.Close()

	obj, err := riofs.Dir(f).Get(name)
	if err != nil {
		return errors.Wrap(errors.TreeNotFound, fmt.Sprintf("no tree %q in %s", name, src.Locator), err)
	}

	t, ok := obj.(rtree.Tree)
	if !ok {
		return errors.New(
			errors.NotATree,
			fmt.Sprintf("object %q in %s is a %s, not a tree", name, src.Locator, obj.Class()),
		)
	}

	log.WithFields(log.Fields{
		"Locator": src.Locator,
		"Tree":    name,
	}).Debug("Opened tree")

	return fn(t)
}

// localize returns a path groot can open for the locator, and a function
// removing anything staged for it
func (c *Connector) localize(ctx context.Context, src dataset.Source) (string, func(), error) {
	noop := func() {}

	switch {
	case objectstore.IsObjectLocator(src.Locator):
		if c.Store == nil {
			return "", noop, fmt.Errorf("no object store configured for %s", src.Locator)
		}
		object, err := objectstore.ParseLocator(src.Locator)
		if err != nil {
			return "", noop, err
		}
		filename, err := c.Store.Download(ctx, object, src.ScratchDir)
		if err != nil {
			return "", noop, err
		}
		return filename, func() { os.Remove(filename) }, nil
	case strings.HasPrefix(src.Locator, "file://"):
		return strings.TrimPrefix(src.Locator, "file://"), noop, nil
	default:
		return src.Locator, noop, nil
	}
}
