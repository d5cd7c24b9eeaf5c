// Package config loads extension discovery settings from a YAML file and the
// environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/taigrr/extdiscovery/internal/types"
	"gopkg.in/yaml.v3"
)

// Env names for configuration. Empty or unset means use the default.
const (
	EnvConfig = "EXTDISCOVERY_CONFIG" // path to a YAML config file
	EnvIndex  = "EXTDISCOVERY_INDEX"  // SQLite index path, overrides the file
)

// ErrNotFound is returned by Load when the config file does not exist.
var ErrNotFound = errors.New("config file not found")

// Config holds extension discovery settings.
type Config struct {
	SearchPaths         []string           `yaml:"search_paths,omitempty"`
	Filter              types.FilterConfig `yaml:"filter,omitempty"`
	MaxEntriesPerSecond int                `yaml:"max_entries_per_second,omitempty"`
	Index               string             `yaml:"index,omitempty"`
}

// Default returns a Config with no search paths and the default filter.
func Default() *Config {
	return &Config{}
}

// Load reads the YAML file at path. Unknown keys are rejected. Relative
// search paths and index paths are resolved against the file's directory.
// An empty file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to read config: %s - %w", path, err)
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	base := filepath.Dir(path)
	for i, p := range cfg.SearchPaths {
		cfg.SearchPaths[i] = resolve(base, p)
	}
	if cfg.Index != "" && cfg.Index != ":memory:" {
		cfg.Index = resolve(base, cfg.Index)
	}

	return cfg, nil
}

// Resolve loads the config named by path, or by EXTDISCOVERY_CONFIG when path
// is empty, falling back to the defaults when neither is set. EXTDISCOVERY_INDEX
// overrides the index path in every case.
func Resolve(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfig)
	}

	cfg := Default()
	if path != "" {
		var err error
		cfg, err = Load(path)
		if err != nil {
			return nil, err
		}
	}

	if index := os.Getenv(EnvIndex); index != "" {
		cfg.Index = index
	}
	return cfg, nil
}

// Validate checks the config for values that cannot be used.
func (c *Config) Validate() error {
	if c.MaxEntriesPerSecond < 0 {
		return errors.New("max_entries_per_second must not be negative")
	}
	for _, p := range c.SearchPaths {
		if p == "" {
			return errors.New("search_paths must not contain empty entries")
		}
	}
	return nil
}

// Marshal renders the config as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

func resolve(base, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
