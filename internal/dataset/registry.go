package dataset

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// Source is one partition handed to a connector: a single resource locator
// together with the options of the read
type Source struct {
	Locator string
	Options Options
	// ScratchDir is a session owned directory connectors may stage files in
	ScratchDir string
}

// Connector reads one file format. Connectors are provided by a package
// which must be declared on the session before the format can be read.
type Connector interface {
	// ShortName is the format name passed to Reader.Format
	ShortName() string
	// Package is the group:artifact coordinate that provides the connector
	Package() string
	Count(ctx context.Context, src Source) (int64, error)
	Columns(ctx context.Context, src Source) ([]string, error)
}

var (
	connectorsMu sync.RWMutex
	connectors   = make(map[string]Connector)
)

// Register makes a connector available by its short name, replacing any
// connector registered under the same name
func Register(c Connector) {
	connectorsMu.Lock()
	defer connectorsMu.Unlock()
	connectors[strings.ToLower(c.ShortName())] = c
}

// Unregister removes the connector registered under name
func Unregister(name string) {
	connectorsMu.Lock()
	defer connectorsMu.Unlock()
	delete(connectors, strings.ToLower(name))
}

// Lookup returns the connector registered under name
func Lookup(name string) (Connector, bool) {
	connectorsMu.RLock()
	defer connectorsMu.RUnlock()
	c, ok := connectors[strings.ToLower(name)]
	return c, ok
}

// ProvidedBy returns the sorted short names of the connectors of a package
func ProvidedBy(pkg string) []string {
	connectorsMu.RLock()
	defer connectorsMu.RUnlock()

	var names []string
	for name, c := range connectors {
		if c.Package() == pkg {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
