package session

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Configuration keys set by the smoke test or filled in by the session
const (
	KeyMaster            = "spark.master"
	KeyAppName           = "spark.app.name"
	KeyAppID             = "spark.app.id"
	KeyAppStartTime      = "spark.app.startTime"
	KeyDriverHost        = "spark.driver.host"
	KeyExecutorID        = "spark.executor.id"
	KeyDeployMode        = "spark.submit.deployMode"
	KeyLocalDir          = "spark.local.dir"
	KeyWarehouseDir      = "spark.sql.warehouse.dir"
	KeyParallelism       = "spark.default.parallelism"
	KeyJars              = "spark.jars"
	KeyDriverClassPath   = "spark.driver.extraClassPath"
	KeyExecutorClassPath = "spark.executor.extraClassPath"
	KeyPackages          = "spark.jars.packages"
	KeyExecutorEnvPrefix = "spark.executorEnv."
)

// Pair is one configuration entry
type Pair struct {
	Key   string
	Value string
}

// String formats the pair as a quoted tuple, e.g. ('spark.master', 'local[*]')
func (p Pair) String() string {
	return fmt.Sprintf("(%s, %s)", quote(p.Key), quote(p.Value))
}

// quote wraps s in single quotes, switching to double quotes when s holds
// a single quote and no double quote
func quote(s string) string {
	q := "'"
	if strings.Contains(s, "'") && !strings.Contains(s, `"`) {
		q = `"`
	}
	r := strings.NewReplacer(`\`, `\\`, q, `\`+q, "\n", `\n`, "\t", `\t`, "\r", `\r`)
	return q + r.Replace(s) + q
}

// Conf is the configuration of a session: the build time options merged
// over the engine defaults
type Conf struct {
	mu     sync.RWMutex
	values map[string]string
}

func newConf() *Conf {
	return &Conf{values: make(map[string]string)}
}

func (c *Conf) set(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
}

// setDefault sets key only when it has no value yet
func (c *Conf) setDefault(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.values[key]; !ok {
		c.values[key] = value
	}
}

// Get returns the value of key
func (c *Conf) Get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.values[key]
	return v, ok
}

// GetOrDefault returns the value of key or def when it is not set
func (c *Conf) GetOrDefault(key, def string) string {
	if v, ok := c.Get(key); ok {
		return v
	}
	return def
}

// GetAll returns every entry sorted by key
func (c *Conf) GetAll() []Pair {
	c.mu.RLock()
	defer c.mu.RUnlock()

	pairs := make([]Pair, 0, len(c.values))
	for k, v := range c.values {
		pairs = append(pairs, Pair{Key: k, Value: v})
	}
	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].Key < pairs[j].Key
	})
	return pairs
}

// Len returns the number of entries
func (c *Conf) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.values)
}
