package geometry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

type Loader struct {
	dir string
}

func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

// Path returns the snapshot file for a design version.
func (l *Loader) Path(version string) string {
	return filepath.Join(l.dir, "geom_v"+version+".yaml")
}

func (l *Loader) Load(version string) (*Table, error) {
	data, err := os.ReadFile(l.Path(version))
	if err != nil {
		return nil, fmt.Errorf("load geometry v%s: %w", version, err)
	}
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse geometry v%s: %w", version, err)
	}
	if t.Version == "" {
		t.Version = version
	}
	if t.Version != version {
		return nil, fmt.Errorf("geometry file %s declares version %q, want %q", l.Path(version), t.Version, version)
	}
	t.tag()
	return &t, nil
}

// VersionFromParamName maps a parameter-set name such as "Mu2e_V13" to
// the geometry version "13".
func VersionFromParamName(name string) string {
	if i := strings.LastIndex(name, "_V"); i >= 0 {
		return name[i+2:]
	}
	return name
}

// Cache loads each version at most once.
type Cache struct {
	loader *Loader

	mu     sync.Mutex
	tables map[string]*Table
	loads  int
}

func NewCache(l *Loader) *Cache {
	return &Cache{loader: l, tables: make(map[string]*Table)}
}

func (c *Cache) Get(version string) (*Table, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t, ok := c.tables[version]; ok {
		return t, nil
	}
	t, err := c.loader.Load(version)
	if err != nil {
		return nil, err
	}
	c.loads++
	c.tables[version] = t
	return t, nil
}

// Loads reports how many snapshots were read from disk.
func (c *Cache) Loads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loads
}
