// Package config handles layered YAML configuration with environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/smileynet/addressbook/internal/codec"
	"github.com/smileynet/addressbook/internal/logging"
	"github.com/smileynet/addressbook/internal/mergesort"
)

// Config holds all addressbook configuration.
type Config struct {
	Store  Store  `yaml:"store"`
	Sort   Sort   `yaml:"sort"`
	Log    Log    `yaml:"log"`
	Browse Browse `yaml:"browse"`
}

// Store holds contacts file settings.
type Store struct {
	Path string `yaml:"path"`
}

// Sort holds merge sort tuning.
type Sort struct {
	ParallelThreshold int `yaml:"parallel_threshold"` // Sub-chain length that forks; 0 disables
	MaxWorkers        int `yaml:"max_workers"`        // 0 = GOMAXPROCS
}

// Log holds logger settings.
type Log struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // console | json
}

// Browse holds interactive browser settings.
type Browse struct {
	Watch bool `yaml:"watch"` // Reload when the contacts file changes on disk
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Store: Store{
			Path: codec.DefaultFile,
		},
		Sort: Sort{
			ParallelThreshold: mergesort.DefaultParallelThreshold,
		},
		Log: Log{
			Level:  "warn",
			Format: logging.FormatConsole,
		},
		Browse: Browse{
			Watch: true,
		},
	}
}

// SortOptions converts the sort settings into merge sort options.
func (c *Config) SortOptions() mergesort.Options {
	return mergesort.Options{
		ParallelThreshold: c.Sort.ParallelThreshold,
		MaxWorkers:        c.Sort.MaxWorkers,
	}
}

// Load reads a single YAML config file at path and returns a Config.
// For merging multiple config sources, use LoadLayered instead.
// If the file does not exist, defaults are returned without error.
// If the file contains invalid YAML or unknown fields, an error is returned.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if len(data) == 0 {
		return &cfg, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		// Comment-only YAML files produce EOF with no decoded content.
		if errors.Is(err, io.EOF) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return &cfg, nil
}

// LoadLayered loads config from multiple paths with increasing priority.
// Later paths override earlier ones. Missing files are skipped.
func LoadLayered(paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range paths {
		layer, err := loadLayer(path)
		if err != nil {
			return nil, err
		}
		if layer == nil {
			continue
		}
		cfg.merge(layer)
	}

	return &cfg, nil
}

// Validate checks that config values are usable.
func (c *Config) Validate() error {
	if c.Store.Path == "" {
		return errors.New("config: store.path cannot be empty")
	}
	if c.Sort.ParallelThreshold < 0 {
		return fmt.Errorf("config: sort.parallel_threshold must be non-negative, got %d", c.Sort.ParallelThreshold)
	}
	if c.Sort.MaxWorkers < 0 {
		return fmt.Errorf("config: sort.max_workers must be non-negative, got %d", c.Sort.MaxWorkers)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: log.level: %w", err)
	}
	if err := logging.ValidateFormat(c.Log.Format); err != nil {
		return fmt.Errorf("config: log.format: %w", err)
	}
	return nil
}

// ApplyEnv applies environment variable overrides to the config.
// Supported variables: ADDRESSBOOK_FILE, ADDRESSBOOK_PARALLEL_THRESHOLD,
// ADDRESSBOOK_MAX_WORKERS, ADDRESSBOOK_LOG_LEVEL.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("ADDRESSBOOK_FILE"); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv("ADDRESSBOOK_PARALLEL_THRESHOLD"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: invalid ADDRESSBOOK_PARALLEL_THRESHOLD %q: %w", v, err)
		}
		c.Sort.ParallelThreshold = n
	}
	if v := os.Getenv("ADDRESSBOOK_MAX_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: invalid ADDRESSBOOK_MAX_WORKERS %q: %w", v, err)
		}
		c.Sort.MaxWorkers = n
	}
	if v := os.Getenv("ADDRESSBOOK_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	return nil
}

// rawConfig mirrors Config but uses pointers to distinguish set vs unset fields.
type rawConfig struct {
	Store  *rawStore  `yaml:"store"`
	Sort   *rawSort   `yaml:"sort"`
	Log    *rawLog    `yaml:"log"`
	Browse *rawBrowse `yaml:"browse"`
}

type rawStore struct {
	Path *string `yaml:"path"`
}

type rawSort struct {
	ParallelThreshold *int `yaml:"parallel_threshold"`
	MaxWorkers        *int `yaml:"max_workers"`
}

type rawLog struct {
	Level  *string `yaml:"level"`
	Format *string `yaml:"format"`
}

type rawBrowse struct {
	Watch *bool `yaml:"watch"`
}

// loadLayer reads a single config file into a rawConfig for selective merging.
// Returns nil if the file does not exist. Rejects unknown fields.
func loadLayer(path string) (*rawConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if len(data) == 0 {
		return nil, nil
	}

	var raw rawConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return &raw, nil
}

// merge applies non-nil fields from a rawConfig layer onto this Config.
func (c *Config) merge(layer *rawConfig) {
	if layer.Store != nil {
		if layer.Store.Path != nil {
			c.Store.Path = *layer.Store.Path
		}
	}
	if layer.Sort != nil {
		if layer.Sort.ParallelThreshold != nil {
			c.Sort.ParallelThreshold = *layer.Sort.ParallelThreshold
		}
		if layer.Sort.MaxWorkers != nil {
			c.Sort.MaxWorkers = *layer.Sort.MaxWorkers
		}
	}
	if layer.Log != nil {
		if layer.Log.Level != nil {
			c.Log.Level = *layer.Log.Level
		}
		if layer.Log.Format != nil {
			c.Log.Format = *layer.Log.Format
		}
	}
	if layer.Browse != nil {
		if layer.Browse.Watch != nil {
			c.Browse.Watch = *layer.Browse.Watch
		}
	}
}
