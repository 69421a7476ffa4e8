// Package config handles configuration parsing for quietpawn.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// EngineBinaryEnv overrides the configured engine binary path when set.
const EngineBinaryEnv = "QUIETPAWN_ENGINE"

// DefaultConfigPath returns the default config file path:
// $XDG_CONFIG_HOME/quietpawn/config.yaml or ~/.config/quietpawn/config.yaml
func DefaultConfigPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "quietpawn", "config.yaml")
}

// Config represents the top-level configuration.
type Config struct {
	Engine  EngineConfig  `yaml:"engine"`
	Logging LoggingConfig `yaml:"logging"`
}

// EngineConfig selects and tunes the UCI engine subprocess. The option
// fields map straight onto "setoption" commands sent after the greeting.
type EngineConfig struct {
	Path         string        `yaml:"path"`
	Threads      int           `yaml:"threads"`
	HashMB       int           `yaml:"hash_mb"`
	Ponder       bool          `yaml:"ponder"`
	SkillLevel   int           `yaml:"skill_level"`
	ReadyTimeout time.Duration `yaml:"ready_timeout"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// DefaultConfig returns the built-in defaults: a Stockfish binary at its
// usual install path, one search thread, a 512 MB hash, pondering on and
// the weakest skill level.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			Path:         "/usr/bin/stockfish",
			Threads:      1,
			HashMB:       512,
			Ponder:       true,
			SkillLevel:   0,
			ReadyTimeout: 3 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the config file at path, layered over the defaults. An empty
// path returns plain defaults. The QUIETPAWN_ENGINE environment variable
// overrides the engine binary path either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if bin := os.Getenv(EngineBinaryEnv); bin != "" {
		cfg.Engine.Path = bin
	}

	return cfg, nil
}

// Validate checks the configuration for values the adapter cannot run with.
func (c *Config) Validate() error {
	if c.Engine.Path == "" {
		return fmt.Errorf("engine.path is required")
	}
	if c.Engine.Threads < 1 {
		return fmt.Errorf("engine.threads must be at least 1, got %d", c.Engine.Threads)
	}
	if c.Engine.HashMB < 1 {
		return fmt.Errorf("engine.hash_mb must be at least 1, got %d", c.Engine.HashMB)
	}
	if c.Engine.SkillLevel < 0 || c.Engine.SkillLevel > 20 {
		return fmt.Errorf("engine.skill_level must be between 0 and 20, got %d", c.Engine.SkillLevel)
	}
	if c.Engine.ReadyTimeout <= 0 {
		return fmt.Errorf("engine.ready_timeout must be positive, got %s", c.Engine.ReadyTimeout)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}
	return nil
}
