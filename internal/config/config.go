// Package config loads tool configuration and resolves the invoking identity.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath overrides the default config file location.
const EnvConfigPath = "HOSTKIT_CONFIG"

// DefaultConfigPath is relative to the invoking identity's home.
const DefaultConfigPath = ".config/hostkit/config.yaml"

type Config struct {
	HostsFile string          `yaml:"hosts_file" toml:"hosts_file"`
	BackupDir string          `yaml:"backup_dir" toml:"backup_dir"`
	Elevation ElevationConfig `yaml:"elevation" toml:"elevation"`
	Journal   JournalConfig   `yaml:"journal" toml:"journal"`
	Log       LogConfig       `yaml:"log" toml:"log"`
	Surface   SurfaceConfig   `yaml:"surface" toml:"surface"`
}

type ElevationConfig struct {
	Tool string `yaml:"tool" toml:"tool"`
}

type JournalConfig struct {
	// Enabled is a pointer so an explicit false survives setDefaults.
	Enabled *bool  `yaml:"enabled" toml:"enabled"`
	Path    string `yaml:"path" toml:"path"`
}

type LogConfig struct {
	Level   string `yaml:"level" toml:"level"`
	NoColor bool   `yaml:"no_color" toml:"no_color"`
}

type SurfaceConfig struct {
	Viewer string `yaml:"viewer" toml:"viewer"`
}

// JournalEnabled reports whether operations should be recorded.
func (c *Config) JournalEnabled() bool {
	return c.Journal.Enabled == nil || *c.Journal.Enabled
}

// Load reads the config file at path. An empty path or a missing file yields
// the defaults; a file that exists but does not parse is an error.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if err := decode(path, data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	setDefaults(&cfg)

	return &cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		_, err := toml.Decode(string(data), cfg)
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func setDefaults(cfg *Config) {
	if cfg.HostsFile == "" {
		cfg.HostsFile = "/etc/hosts"
	}
	if cfg.BackupDir == "" {
		cfg.BackupDir = ".hosts_backups"
	}
	if cfg.Elevation.Tool == "" {
		cfg.Elevation.Tool = "sudo"
	}
	if cfg.Journal.Path == "" {
		cfg.Journal.Path = "journal.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "warn"
	}
	if cfg.Surface.Viewer == "" {
		cfg.Surface.Viewer = "Tablecruncher"
	}
}

// ResolvePath returns the config file to load: the explicit flag value, then
// HOSTKIT_CONFIG, then DefaultConfigPath under home.
func ResolvePath(flagValue, home string, getenv func(string) string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := getenv(EnvConfigPath); v != "" {
		return v
	}
	if home == "" {
		return ""
	}
	return filepath.Join(home, DefaultConfigPath)
}
