package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Session storage back-ends
const (
	StorageKeychain = "keychain"
	StorageFile     = "file"
)

// Defaults
const (
	DefaultServerURL = "http://localhost:8080"
	DefaultTimeout   = 10 * time.Second
	DefaultPageSize  = 10
	DefaultLogLevel  = "info"
)

// Config holds the console configuration
type Config struct {
	Server struct {
		URL     string        `yaml:"url"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"server"`
	Session struct {
		Storage string `yaml:"storage"`
		File    string `yaml:"file,omitempty"`
	} `yaml:"session"`
	Logging struct {
		Level string `yaml:"level"`
		File  string `yaml:"file,omitempty"`
	} `yaml:"logging"`
	Grid struct {
		PageSize int `yaml:"page_size"`
	} `yaml:"grid"`
}

// Default returns a configuration with every field at its default
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// GetConfigDir returns the console's state directory. EMS_CONFIG_DIR
// overrides the default ~/.ems.
func GetConfigDir() string {
	if dir := os.Getenv("EMS_CONFIG_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".ems"
	}
	return filepath.Join(home, ".ems")
}

// GetConfigPath returns the path of config.yaml
func GetConfigPath() string {
	return filepath.Join(GetConfigDir(), "config.yaml")
}

// Load reads config.yaml if present, fills defaults and applies
// environment overrides
func Load() (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(GetConfigPath())
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", GetConfigPath(), err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if v := os.Getenv("EMS_SERVER_URL"); v != "" {
		cfg.Server.URL = v
	}
	if v := os.Getenv("EMS_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("EMS_SESSION_STORAGE"); v != "" {
		cfg.Session.Storage = v
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.URL == "" {
		c.Server.URL = DefaultServerURL
	}
	if c.Server.Timeout <= 0 {
		c.Server.Timeout = DefaultTimeout
	}
	if c.Session.Storage == "" {
		c.Session.Storage = StorageKeychain
	}
	if c.Session.File == "" {
		c.Session.File = filepath.Join(GetConfigDir(), "session.yaml")
	}
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.File == "" {
		c.Logging.File = filepath.Join(GetConfigDir(), "ems.log")
	}
	if c.Grid.PageSize == 0 {
		c.Grid.PageSize = DefaultPageSize
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.URL == "" {
		return errors.New("server URL cannot be empty")
	}
	u, err := url.Parse(c.Server.URL)
	if err != nil {
		return fmt.Errorf("invalid server URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("server URL must use http or https, got %q", c.Server.URL)
	}
	if u.Host == "" {
		return fmt.Errorf("server URL must include a host, got %q", c.Server.URL)
	}

	switch c.Session.Storage {
	case "", StorageKeychain, StorageFile:
	default:
		return fmt.Errorf("session storage must be %q or %q, got %q", StorageKeychain, StorageFile, c.Session.Storage)
	}

	switch c.Grid.PageSize {
	case 0, 5, 10, 25, 50:
	default:
		return fmt.Errorf("grid page size must be one of 5, 10, 25, 50, got %d", c.Grid.PageSize)
	}
	return nil
}

// IsInsecure reports whether the server URL sends credentials in clear text
// to a non-loopback host
func (c *Config) IsInsecure() bool {
	u, err := url.Parse(c.Server.URL)
	if err != nil || u.Scheme != "http" {
		return false
	}
	host := u.Hostname()
	if strings.EqualFold(host, "localhost") {
		return false
	}
	if ip := net.ParseIP(host); ip != nil && ip.IsLoopback() {
		return false
	}
	return true
}

// Save writes the configuration to config.yaml
func (c *Config) Save() error {
	if err := os.MkdirAll(GetConfigDir(), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(GetConfigPath(), data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
