// Package config handles vkgen.toml generator configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the configuration file looked up by Load and FindAndLoad.
const FileName = "vkgen.toml"

// DefaultRuntimeImport is the package generated loaders import for libffi calls
// and load errors.
const DefaultRuntimeImport = "github.com/chazu/vkbind/vkrt"

// Config represents a vkgen.toml generator configuration.
type Config struct {
	Input   Input   `toml:"input"`
	Output  Output  `toml:"output"`
	Dialect Dialect `toml:"dialect"`
	Policy  Policy  `toml:"policy"`

	// Dir is the directory containing the vkgen.toml file (set at load time).
	Dir string `toml:"-"`
}

// Input names the declaration stream and the source of the API-level
// description: either an explicit scope file or a vk.xml registry.
type Input struct {
	Declarations string `toml:"declarations"`
	APIs         string `toml:"apis"`
	Registry     string `toml:"registry"`
	APIVersion   string `toml:"api-version"`
}

// Output configures the generated package.
type Output struct {
	Dir           string `toml:"dir"`
	Package       string `toml:"package"`
	Bindings      string `toml:"bindings"`
	Loader        string `toml:"loader"`
	RuntimeImport string `toml:"runtime-import"`
}

// Policy selects the load-time behaviour for unresolved symbols.
type Policy struct {
	Core       string `toml:"core"`
	Extensions string `toml:"extensions"`
}

// Policy values.
const (
	PolicyStrict  = "strict"
	PolicyLenient = "lenient"
)

// Default returns the configuration used when no vkgen.toml is present.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load parses a vkgen.toml file from the given directory.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	c.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	return c, nil
}

// Parse decodes configuration text and fills in defaults.
func Parse(data []byte) (*Config, error) {
	var c Config
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// FindAndLoad walks up from startDir to find a vkgen.toml file,
// then loads and returns the config. Returns nil if no file is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

func (c *Config) applyDefaults() {
	if c.Output.Dir == "" {
		c.Output.Dir = "vk"
	}
	if c.Output.Package == "" {
		c.Output.Package = filepath.Base(c.Output.Dir)
	}
	if c.Output.Bindings == "" {
		c.Output.Bindings = "bindings.go"
	}
	if c.Output.Loader == "" {
		c.Output.Loader = "loader.go"
	}
	if c.Output.RuntimeImport == "" {
		c.Output.RuntimeImport = DefaultRuntimeImport
	}
	if c.Input.APIVersion == "" {
		c.Input.APIVersion = "1.1"
	}
	if c.Policy.Core == "" {
		c.Policy.Core = PolicyStrict
	}
	if c.Policy.Extensions == "" {
		c.Policy.Extensions = PolicyLenient
	}
	c.Dialect = c.Dialect.WithDefaults()
}

// Validate reports configuration values that cannot be used.
func (c *Config) Validate() error {
	for _, p := range []struct{ key, val string }{
		{"policy.core", c.Policy.Core},
		{"policy.extensions", c.Policy.Extensions},
	} {
		if p.val != PolicyStrict && p.val != PolicyLenient {
			return fmt.Errorf("%s: invalid policy %q (want %q or %q)", p.key, p.val, PolicyStrict, PolicyLenient)
		}
	}
	if c.Input.APIs != "" && c.Input.Registry != "" {
		return fmt.Errorf("input: apis and registry are mutually exclusive")
	}
	return nil
}

// Path resolves a config-relative path against the config directory.
func (c *Config) Path(rel string) string {
	if rel == "" || filepath.IsAbs(rel) || c.Dir == "" {
		return rel
	}
	return filepath.Join(c.Dir, rel)
}

// OutputDir returns the absolute output directory.
func (c *Config) OutputDir() string {
	return c.Path(c.Output.Dir)
}
