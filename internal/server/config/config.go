// Package config loads the reference server settings from the environment
// and an optional YAML file.
package config

import (
	"crypto/tls"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/umardevX/ems-console/internal/server/auth"
)

const (
	DefaultPort         = "8080"
	DefaultMaxBodyBytes = int64(10 * 1024 * 1024)
	DefaultLogLevel     = "info"
)

// Config holds the server settings
type Config struct {
	Port           string
	Environment    string
	JWTSecret      string
	TokenTTL       time.Duration
	DatabaseURL    string
	AllowedOrigins []string
	MaxBodyBytes   int64
	LogLevel       string
	LogFile        string
	TLS            TLSConfig
}

// TLSConfig controls serving HTTPS directly
type TLSConfig struct {
	Enabled    bool
	CertFile   string
	KeyFile    string
	MinVersion string
}

// IsDevelopment reports whether weak secrets and plain database
// connections are tolerated
func (c *Config) IsDevelopment() bool {
	return auth.IsDevelopment(c.Environment)
}

// Load reads the settings. Environment variables win over configFile,
// which may be empty.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server_port", DefaultPort)
	v.SetDefault("environment", "production")
	v.SetDefault("token_ttl", auth.DefaultTokenTTL.String())
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("tls_min_version", "1.2")

	v.AutomaticEnv()
	// GO_ENV is honoured when ENVIRONMENT is unset
	_ = v.BindEnv("environment", "ENVIRONMENT", "GO_ENV")

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	ttl, err := parseTTL(v.GetString("token_ttl"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:           v.GetString("server_port"),
		Environment:    strings.ToLower(v.GetString("environment")),
		JWTSecret:      v.GetString("jwt_secret"),
		TokenTTL:       ttl,
		DatabaseURL:    v.GetString("database_url"),
		AllowedOrigins: ParseCORSOrigins(v.GetString("cors_allowed_origins")),
		MaxBodyBytes:   ParseMaxBodySize(v.GetString("max_body_size")),
		LogLevel:       v.GetString("log_level"),
		LogFile:        v.GetString("log_file"),
		TLS: TLSConfig{
			Enabled:    v.GetBool("tls_enabled"),
			CertFile:   v.GetString("tls_cert_file"),
			KeyFile:    v.GetString("tls_key_file"),
			MinVersion: v.GetString("tls_min_version"),
		},
	}

	return cfg, cfg.Validate()
}

// Validate checks the settings that would make the server unsafe or unable to start
func (c *Config) Validate() error {
	if _, err := strconv.ParseUint(c.Port, 10, 16); err != nil {
		return fmt.Errorf("invalid SERVER_PORT %q", c.Port)
	}
	if err := auth.ValidateSecret(c.JWTSecret, c.IsDevelopment()); err != nil {
		return fmt.Errorf("JWT secret validation failed: %w", err)
	}
	if c.TLS.Enabled {
		if c.TLS.CertFile == "" || c.TLS.KeyFile == "" {
			return errors.New("TLS_CERT_FILE and TLS_KEY_FILE are required when TLS_ENABLED is set")
		}
		if _, err := ParseTLSMinVersion(c.TLS.MinVersion); err != nil {
			return err
		}
	}
	return nil
}

func parseTTL(s string) (time.Duration, error) {
	ttl, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid TOKEN_TTL %q: %w", s, err)
	}
	if ttl <= 0 {
		return 0, fmt.Errorf("TOKEN_TTL must be positive (got %s)", s)
	}
	return ttl, nil
}

// ParseMaxBodySize reads sizes such as "512", "64KB", "10MB" or "1GB".
// Empty or unreadable values give DefaultMaxBodyBytes.
func ParseMaxBodySize(s string) int64 {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return DefaultMaxBodyBytes
	}

	multiplier := int64(1)
	for _, unit := range []struct {
		suffix string
		size   int64
	}{
		{"GB", 1 << 30},
		{"MB", 1 << 20},
		{"KB", 1 << 10},
	} {
		if strings.HasSuffix(s, unit.suffix) {
			multiplier = unit.size
			s = strings.TrimSuffix(s, unit.suffix)
			break
		}
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return DefaultMaxBodyBytes
	}
	return n * multiplier
}

// ParseTLSMinVersion maps "1.2" (or empty) and "1.3" onto tls constants
func ParseTLSMinVersion(s string) (uint16, error) {
	switch strings.TrimSpace(s) {
	case "", "1.2":
		return tls.VersionTLS12, nil
	case "1.3":
		return tls.VersionTLS13, nil
	default:
		return 0, fmt.Errorf("invalid TLS_MIN_VERSION %q (must be 1.2 or 1.3)", s)
	}
}

// ParseCORSOrigins splits a comma separated origin list
func ParseCORSOrigins(s string) []string {
	var origins []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
