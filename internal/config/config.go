package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/helicalc/busgrid/internal/geometry"
	"github.com/helicalc/busgrid/internal/grid"
)

const (
	DefaultParamName    = "Mu2e_V13"
	DefaultRegion       = "DS"
	DefaultJacobianStep = 0.001
	DefaultDataDir      = "data"
	DefaultGeometryDir  = "configs/geometry"
)

type Config struct {
	ParamName    string  `yaml:"param_name"`
	DataDir      string  `yaml:"data_dir"`
	GeometryDir  string  `yaml:"geometry_dir"`
	Catalog      string  `yaml:"catalog"`
	LogLevel     string  `yaml:"log_level"`
	Workers      int     `yaml:"workers"`
	JacobianStep float64 `yaml:"jacobian_step"`

	Categories map[geometry.Category]CategoryConfig `yaml:"categories"`
	Regions    []grid.Region                        `yaml:"regions,omitempty"`
}

// CategoryConfig holds the per-category run defaults.
type CategoryConfig struct {
	BatchSize        int    `yaml:"batch_size"`
	TestRows         int    `yaml:"test_rows"`
	DefaultConductor int    `yaml:"default_conductor"`
	OutputDir        string `yaml:"output_dir"`
	Label            string `yaml:"label"`
}

func DefaultConfig() *Config {
	cats := make(map[geometry.Category]CategoryConfig, len(CategoryDefaults))
	for c, cc := range CategoryDefaults {
		cats[c] = cc
	}
	return &Config{
		ParamName:    DefaultParamName,
		DataDir:      DefaultDataDir,
		GeometryDir:  DefaultGeometryDir,
		Catalog:      "runs.db",
		LogLevel:     "info",
		JacobianStep: DefaultJacobianStep,
		Categories:   cats,
	}
}

// Load reads a YAML file over the defaults. Categories missing from the
// file keep their defaults; fields left at zero inside a listed category
// are filled from the defaults too.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.fill()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) fill() {
	if c.Categories == nil {
		c.Categories = make(map[geometry.Category]CategoryConfig, len(CategoryDefaults))
	}
	for cat, def := range CategoryDefaults {
		cc := c.Categories[cat]
		if cc.BatchSize == 0 {
			cc.BatchSize = def.BatchSize
		}
		if cc.TestRows == 0 {
			cc.TestRows = def.TestRows
		}
		if cc.DefaultConductor == 0 {
			cc.DefaultConductor = def.DefaultConductor
		}
		if cc.OutputDir == "" {
			cc.OutputDir = def.OutputDir
		}
		if cc.Label == "" {
			cc.Label = def.Label
		}
		c.Categories[cat] = cc
	}
}

func (c *Config) Validate() error {
	if c.ParamName == "" {
		return fmt.Errorf("param_name is empty")
	}
	if c.JacobianStep <= 0 {
		return fmt.Errorf("jacobian_step must be positive, got %g", c.JacobianStep)
	}
	for cat, cc := range c.Categories {
		if _, err := geometry.ParseCategory(string(cat)); err != nil {
			return err
		}
		if cc.BatchSize < 1 {
			return fmt.Errorf("%s: batch_size must be at least 1, got %d", cat, cc.BatchSize)
		}
		if cc.TestRows < 1 {
			return fmt.Errorf("%s: test_rows must be at least 1, got %d", cat, cc.TestRows)
		}
	}
	for _, r := range c.Regions {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) Category(cat geometry.Category) CategoryConfig {
	return c.Categories[cat]
}

// Registry returns the built-in regions extended by the configured ones.
func (c *Config) Registry() (grid.Registry, error) {
	reg := grid.Builtin()
	for _, r := range c.Regions {
		if err := reg.Add(r); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
