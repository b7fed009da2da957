package session

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/spark-root/coffea-slurm/internal/dataset"
	"github.com/spark-root/coffea-slurm/internal/errors"
	"github.com/spark-root/coffea-slurm/internal/logs"
)

const (
	// WorkerExecutableEnv names the executable workers are started with
	WorkerExecutableEnv = "PYSPARK_PYTHON"

	defaultMaster  = "local[*]"
	defaultAppName = "hepsmoke"
)

var (
	localN         = regexp.MustCompile(`^local\[([0-9]+|\*)\]$`)
	localNFailures = regexp.MustCompile(`^local\[([0-9]+|\*)\s*,\s*([0-9]+)\]$`)
)

var (
	activeMu sync.Mutex
	active   *Session
)

// Session is a handle to the processing context. At most one session is
// active per process.
type Session struct {
	conf        *Conf
	packages    []Coordinate
	parallelism int
	scratchDir  string
}

// Builder collects the options of a session
type Builder struct {
	options map[string]string
}

// NewBuilder returns an empty session builder
func NewBuilder() *Builder {
	return &Builder{options: make(map[string]string)}
}

// Master sets the master URL, e.g. local[4]
func (b *Builder) Master(master string) *Builder {
	return b.Config(KeyMaster, master)
}

// AppName sets the application name
func (b *Builder) AppName(name string) *Builder {
	return b.Config(KeyAppName, name)
}

// Config sets a configuration option
func (b *Builder) Config(key, value string) *Builder {
	b.options[key] = value
	return b
}

// GetOrCreate returns the active session, or creates one from the builder
// options. Options given while a session is active are applied to it.
func (b *Builder) GetOrCreate() (*Session, error) {
	activeMu.Lock()
	defer activeMu.Unlock()

	if active != nil {
		if len(b.options) > 0 {
			log.Warn("Using an existing session; only runtime options take effect")
		}
		for k, v := range b.options {
			active.conf.set(k, v)
		}
		return active, nil
	}

	s, err := newSession(b.options)
	if err != nil {
		return nil, err
	}
	active = s
	return s, nil
}

// Active returns the active session, if any
func Active() (*Session, bool) {
	activeMu.Lock()
	defer activeMu.Unlock()
	return active, active != nil
}

func newSession(options map[string]string) (*Session, error) {
	conf := newConf()
	for k, v := range options {
		conf.set(k, v)
	}

	master := conf.GetOrDefault(KeyMaster, defaultMaster)
	parallelism, err := parseMaster(master)
	if err != nil {
		return nil, err
	}

	packages, err := resolvePackages(conf.GetOrDefault(KeyPackages, ""))
	if err != nil {
		return nil, err
	}

	checkJars(conf)

	now := time.Now()
	host, err := os.Hostname()
	if err != nil {
		host = "localhost"
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	conf.setDefault(KeyMaster, master)
	conf.setDefault(KeyAppName, defaultAppName)
	conf.setDefault(KeyAppID, fmt.Sprintf("local-%d", now.UnixMilli()))
	conf.setDefault(KeyAppStartTime, strconv.FormatInt(now.UnixMilli(), 10))
	conf.setDefault(KeyDriverHost, host)
	conf.setDefault(KeyExecutorID, "driver")
	conf.setDefault(KeyDeployMode, "client")
	conf.setDefault(KeyLocalDir, os.TempDir())
	conf.setDefault(KeyWarehouseDir, "file:"+filepath.Join(cwd, "spark-warehouse"))
	conf.setDefault(KeyParallelism, strconv.Itoa(parallelism))
	if exe, ok := os.LookupEnv(WorkerExecutableEnv); ok {
		conf.setDefault(KeyExecutorEnvPrefix+WorkerExecutableEnv, exe)
	}

	localDir := conf.GetOrDefault(KeyLocalDir, os.TempDir())
	scratchDir := filepath.Join(localDir, "blockmgr-"+uuid.New().String())
	if err := os.MkdirAll(scratchDir, os.ModePerm); err != nil {
		return nil, err
	}

	s := &Session{
		conf:        conf,
		packages:    packages,
		parallelism: parallelism,
		scratchDir:  scratchDir,
	}

	log.WithFields(log.Fields{
		"Master":   master,
		"App ID":   conf.GetOrDefault(KeyAppID, ""),
		"Packages": len(packages),
	}).Info("Session started")

	return s, nil
}

// parseMaster returns the number of local workers for a master URL
func parseMaster(master string) (int, error) {
	if master == "local" {
		return 1, nil
	}

	var threads string
	if m := localN.FindStringSubmatch(master); m != nil {
		threads = m[1]
	} else if m := localNFailures.FindStringSubmatch(master); m != nil {
		threads = m[1]
	} else {
		return 0, errors.New(
			errors.UnsupportedMaster,
			fmt.Sprintf("could not parse master URL %q, only local, local[N] and local[*] are supported", master),
		)
	}

	if threads == "*" {
		return runtime.NumCPU(), nil
	}
	n, err := strconv.Atoi(threads)
	if err != nil || n <= 0 {
		return 0, errors.New(
			errors.UnsupportedMaster,
			fmt.Sprintf("master URL %q asks for %s workers", master, threads),
		)
	}
	return n, nil
}

// checkJars warns about jar and classpath entries missing on disk
func checkJars(conf *Conf) {
	entries := map[string]string{
		KeyJars:              ",",
		KeyDriverClassPath:   string(os.PathListSeparator),
		KeyExecutorClassPath: string(os.PathListSeparator),
	}

	for key, sep := range entries {
		value, ok := conf.Get(key)
		if !ok {
			continue
		}
		for _, path := range strings.Split(value, sep) {
			path = strings.TrimSpace(path)
			if path == "" {
				continue
			}
			if _, err := os.Stat(path); err != nil {
				log.WithFields(log.Fields{
					"Key":  key,
					"Path": path,
				}).WithError(err).Warn("Failed to add jar to the session")
			}
		}
	}
}

// Conf returns the session configuration
func (s *Session) Conf() *Conf {
	return s.conf
}

// Packages returns the resolved package coordinates
func (s *Session) Packages() []Coordinate {
	return append([]Coordinate(nil), s.packages...)
}

// Parallelism returns the number of local workers
func (s *Session) Parallelism() int {
	return s.parallelism
}

// ScratchDir returns the session's local working directory
func (s *Session) ScratchDir() string {
	return s.scratchDir
}

// Read returns a reader for a new dataset
func (s *Session) Read() *dataset.Reader {
	modules := make(map[string]bool, len(s.packages))
	for _, c := range s.packages {
		modules[c.Module()] = true
	}

	return dataset.NewReader(dataset.Env{
		Packages:    modules,
		Parallelism: s.parallelism,
		ScratchDir:  s.scratchDir,
	})
}

// SetLogLevel sets the process log level from an engine level name
func (s *Session) SetLogLevel(name string) error {
	level, err := logs.EngineLevelToLevel(name)
	if err != nil {
		return err
	}
	log.SetLevel(level)
	return nil
}

// Stop removes the session's scratch directory and clears the active session
func (s *Session) Stop() error {
	activeMu.Lock()
	defer activeMu.Unlock()

	if active == s {
		active = nil
	}
	return os.RemoveAll(s.scratchDir)
}
