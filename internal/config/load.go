package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	// Start with defaults
	cfg := Default()

	// Try to load from file (explicit path takes priority)
	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	// Apply CLI flags (highest priority)
	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./config.yaml",
		DefaultPath(),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDirEnv overrides the config directory when set.
const ConfigDirEnv = "MIDGARD_SCENE_CONFIG_DIR"

// ConfigDir returns $MIDGARD_SCENE_CONFIG_DIR, or midgard-scene inside the OS user
// config directory, or a relative .midgard-scene if neither is known.
func ConfigDir() string {
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		return dir
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return ".midgard-scene"
	}
	return filepath.Join(base, "midgard-scene")
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// ErrInvalidConfig is returned by Validate for out-of-range settings.
var ErrInvalidConfig = errors.New("invalid config")

// Validate checks that enumerated settings hold known values.
func (c *Config) Validate() error {
	switch c.Picking.Mode {
	case PickTrace, PickSphere:
	default:
		return fmt.Errorf("%w: picking mode %q", ErrInvalidConfig, c.Picking.Mode)
	}
	switch c.Camera.Projection {
	case ProjectionPerspective, ProjectionOrthographic:
	default:
		return fmt.Errorf("%w: camera projection %q", ErrInvalidConfig, c.Camera.Projection)
	}
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		return fmt.Errorf("%w: viewport %vx%v", ErrInvalidConfig, c.Viewport.Width, c.Viewport.Height)
	}
	return nil
}
