package dataset

import (
	"fmt"
	"strings"

	"github.com/spark-root/coffea-slurm/internal/errors"
)

// Options are the case-insensitive key/value options of a read
type Options map[string]string

// Get returns the value of key, ignoring case
func (o Options) Get(key string) (string, bool) {
	v, ok := o[strings.ToLower(key)]
	return v, ok
}

func (o Options) clone() Options {
	c := make(Options, len(o))
	for k, v := range o {
		c[k] = v
	}
	return c
}

// Env is what a session exposes to the datasets it creates
type Env struct {
	// Packages holds the group:artifact of every resolved package
	Packages    map[string]bool
	Parallelism int
	ScratchDir  string
}

// Reader builds a Dataset. Nothing is read until a terminal operation
// runs on the Dataset.
type Reader struct {
	env     Env
	format  string
	options Options
}

// NewReader creates a reader bound to a session environment
func NewReader(env Env) *Reader {
	return &Reader{
		env:     env,
		options: make(Options),
	}
}

// Format sets the short name of the connector
func (r *Reader) Format(name string) *Reader {
	r.format = name
	return r
}

// Option adds a connector option
func (r *Reader) Option(key, value string) *Reader {
	r.options[strings.ToLower(key)] = value
	return r
}

// Options adds all the given connector options
func (r *Reader) Options(options map[string]string) *Reader {
	for k, v := range options {
		r.Option(k, v)
	}
	return r
}

// Load describes a read of the given locators. It resolves the connector
// but performs no I/O.
func (r *Reader) Load(locators ...string) (*Dataset, error) {
	if len(locators) == 0 {
		return nil, errors.New(errors.NoLocators, "load needs at least one resource locator")
	}

	c, ok := Lookup(r.format)
	if !ok || !r.env.Packages[c.Package()] {
		return nil, errors.New(
			errors.FormatNotFound,
			fmt.Sprintf("failed to find data source: %s, declare its package in spark.jars.packages", r.format),
		)
	}

	return &Dataset{
		connector: c,
		options:   r.options.clone(),
		locators:  append([]string(nil), locators...),
		env:       r.env,
	}, nil
}
