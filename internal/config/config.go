package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable holding the config file path.
const EnvConfigPath = "SHIFTBOOK_CONFIG"

// Config is the application configuration.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
	Sync    SyncConfig    `yaml:"sync"`
}

// StorageConfig locates the local database.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// SyncConfig tunes backup documents.
type SyncConfig struct {
	AppName string `yaml:"app_name"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	_ = cfg.validateAndNormalize()
	return cfg
}

// Load reads and validates a YAML config file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Resolve picks the config file: the explicit path, then $SHIFTBOOK_CONFIG,
// then the per-user default when it exists. With none of them the built-in
// defaults are returned.
func Resolve(explicit string) (*Config, error) {
	if explicit != "" {
		return Load(explicit)
	}
	if env := os.Getenv(EnvConfigPath); env != "" {
		return Load(env)
	}

	path := defaultConfigPath()
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("config: stat %s: %w", path, err)
	}
	return Load(path)
}

func (c *Config) validateAndNormalize() error {
	if c.Storage.Path == "" {
		c.Storage.Path = filepath.Join(homeDir(), ".local", "share", "shiftbook", "shiftbook.db")
	}
	if strings.HasPrefix(c.Storage.Path, "~/") {
		c.Storage.Path = filepath.Join(homeDir(), c.Storage.Path[2:])
	}

	if err := c.Log.validateAndNormalize(); err != nil {
		return err
	}

	if c.Sync.AppName == "" {
		c.Sync.AppName = "Atlant Work Schedule Tracker"
	}
	return nil
}

func (l *LogConfig) validateAndNormalize() error {
	if l.Level == "" {
		l.Level = "warn"
	}
	if _, err := zapcore.ParseLevel(l.Level); err != nil {
		return fmt.Errorf("config: log.level: %w", err)
	}

	switch l.Format {
	case "":
		l.Format = "console"
	case "console", "json":
	default:
		return fmt.Errorf("config: log.format must be console or json, got %q", l.Format)
	}
	return nil
}

func defaultConfigPath() string {
	return filepath.Join(homeDir(), ".config", "shiftbook", "config.yaml")
}

func homeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return os.Getenv("HOME")
}
