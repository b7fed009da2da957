package driver

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/spark-root/coffea-slurm/internal/config"
	"github.com/spark-root/coffea-slurm/internal/connector/rootfile"
	"github.com/spark-root/coffea-slurm/internal/dataset"
	"github.com/spark-root/coffea-slurm/internal/objectstore"
	"github.com/spark-root/coffea-slurm/internal/session"
)

// Driver runs the smoke test: build a session, count the records of the
// configured tree and print the effective session configuration
type Driver struct {
	Config *config.Config
	// WorkDir is the directory the jar is looked up in
	WorkDir string
	// Executable is exported to workers through session.WorkerExecutableEnv
	Executable string
	// ShowColumns prints the columns of the dataset after the count
	ShowColumns bool
}

// NewDriver creates a driver for the current working directory and
// executable, and registers the root connector
func NewDriver(conf *config.Config) (*Driver, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	exe, err := os.Executable()
	if err != nil {
		return nil, err
	}

	var store *objectstore.Store
	if hasObjectLocators(conf.Locators) {
		store, err = objectstore.NewStore(conf)
		if err != nil {
			return nil, err
		}
	}
	rootfile.Register(store)

	return &Driver{
		Config:     conf,
		WorkDir:    wd,
		Executable: exe,
	}, nil
}

func hasObjectLocators(locators []string) bool {
	for _, l := range locators {
		if objectstore.IsObjectLocator(l) {
			return true
		}
	}
	return false
}

// JarPath returns the absolute path of jar inside dir
func JarPath(dir, jar string) (string, error) {
	return filepath.Abs(filepath.Join(dir, jar))
}

// Session sets the worker executable and returns the session configured
// with the jar and connector package
func (d *Driver) Session() (*session.Session, error) {
	if err := os.Setenv(session.WorkerExecutableEnv, d.Executable); err != nil {
		return nil, err
	}

	jar, err := JarPath(d.WorkDir, d.Config.Jar)
	if err != nil {
		return nil, err
	}

	builder := session.NewBuilder().
		Master(d.Config.Master).
		AppName(d.Config.AppName)
	for k, v := range d.Config.Conf {
		builder.Config(k, v)
	}

	s, err := builder.
		Config(session.KeyJars, jar).
		Config(session.KeyDriverClassPath, jar).
		Config(session.KeyExecutorClassPath, jar).
		Config(session.KeyPackages, d.Config.Packages).
		GetOrCreate()
	if err != nil {
		return nil, err
	}

	if d.Config.EngineLogLevel != "" {
		if err := s.SetLogLevel(d.Config.EngineLogLevel); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Dataset describes the read of the configured tree
func (d *Driver) Dataset(s *session.Session) (*dataset.Dataset, error) {
	return s.Read().
		Format(d.Config.Format).
		Option(rootfile.OptionTree, d.Config.Tree).
		Load(d.Config.Locators...)
}

// Run executes the smoke test and writes the count and the configuration to out
func (d *Driver) Run(ctx context.Context, out io.Writer) error {
	s, err := d.Session()
	if err != nil {
		return err
	}

	ds, err := d.Dataset(s)
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"Format":   ds.Format(),
		"Tree":     d.Config.Tree,
		"Locators": strings.Join(ds.Locators(), ","),
	}).Info("Counting records")

	n, err := ds.Count(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, n)

	if d.ShowColumns {
		columns, err := ds.Columns(ctx)
		if err != nil {
			return err
		}
		for _, c := range columns {
			fmt.Fprintf(out, "column %s\n", c)
		}
	}

	return PrintConf(out, s.Conf())
}

// PrintConf writes every configuration pair, one per line, sorted by key
func PrintConf(out io.Writer, conf *session.Conf) error {
	for _, p := range conf.GetAll() {
		if _, err := fmt.Fprintln(out, p.String()); err != nil {
			return err
		}
	}
	return nil
}
