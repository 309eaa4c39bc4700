package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Universe UniverseConfig `toml:"universe"`
	Spatial  SpatialConfig  `toml:"spatial"`
	View     ViewConfig     `toml:"view"`
	Logging  LoggingConfig  `toml:"logging"`
}

type UniverseConfig struct {
	File   string `toml:"file"`   // YAML universe definition; empty to skip
	Script string `toml:"script"` // Lua scenario run after File; empty to skip
	Player string `toml:"player"` // name of the entity navigation starts on; overrides the universe file
}

type SpatialConfig struct {
	Nearest    int `toml:"nearest"`     // default k for nearest-neighbour listings
	MaxResults int `toml:"max_results"` // upper bound on any listing
}

type ViewConfig struct {
	Title    string        `toml:"title"`
	TickRate time.Duration `toml:"tick_rate"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
	File   string `toml:"file"`   // log destination while the TUI owns the terminal
}

// Load reads the TOML file at path on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault behaves like Load but returns the defaults when path does
// not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Default returns the built-in configuration.
func Default() *Config {
	return defaults()
}

// Validate rejects values no component can work with.
func (c *Config) Validate() error {
	if c.Spatial.Nearest <= 0 {
		return fmt.Errorf("spatial.nearest must be positive, got %d", c.Spatial.Nearest)
	}
	if c.Spatial.MaxResults < c.Spatial.Nearest {
		return fmt.Errorf("spatial.max_results (%d) below spatial.nearest (%d)", c.Spatial.MaxResults, c.Spatial.Nearest)
	}
	if c.View.TickRate <= 0 {
		return fmt.Errorf("view.tick_rate must be positive, got %s", c.View.TickRate)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Universe: UniverseConfig{
			File: "data/universe.yaml",
		},
		Spatial: SpatialConfig{
			Nearest:    5,
			MaxResults: 100,
		},
		View: ViewConfig{
			Title:    "spacers",
			TickRate: 250 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			File:   "spacers.log",
		},
	}
}
