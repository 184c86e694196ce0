// Package config handles the XDG configuration directory, file paths and settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	// AppName is the application directory name.
	AppName = "scrumboard"

	// SettingsFile is the optional YAML settings filename.
	SettingsFile = "config.yaml"

	// TokenFile is the stored access token filename.
	TokenFile = "localJWT"
)

// Settings are read from SettingsFile when present, otherwise from the environment.
type Settings struct {
	APIURL   string        `yaml:"api_url" env:"SCRUMBOARD_API_URL" env-default:"http://127.0.0.1:8000"`
	Timeout  time.Duration `yaml:"timeout" env:"SCRUMBOARD_TIMEOUT" env-default:"0s"`
	LogLevel string        `yaml:"log_level" env:"SCRUMBOARD_LOG_LEVEL" env-default:"WARN"`
}

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	Settings

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool
}

// New creates a Config with the default or specified config directory and
// default settings. It does not read the environment.
func New(configDir string) *Config {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return &Config{
		Dir: dir,
		Settings: Settings{
			APIURL:   "http://127.0.0.1:8000",
			LogLevel: "WARN",
		},
	}
}

// Load creates a Config and reads its settings from <dir>/config.yaml,
// falling back to the environment when the file does not exist.
func Load(configDir string) (*Config, error) {
	cfg := New(configDir)

	var s Settings
	path := cfg.SettingsPath()
	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &s); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", SettingsFile, err)
		}
	} else if err := cleanenv.ReadEnv(&s); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}

	cfg.Settings = s
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	return cfg, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// SettingsPath returns the path to the optional settings file.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.Dir, SettingsFile)
}

// TokenPath returns the path to the stored access token.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}
