package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// AWSConfig holds credential and endpoint settings.
type AWSConfig struct {
	Profile         string `toml:"profile"`
	EnvPrefix       string `toml:"env_prefix"`
	AccessKeyID     string `toml:"access_key_id"`
	SecretAccessKey string `toml:"secret_access_key"`
	RoleARN         string `toml:"role_arn"`
	AccountID       string `toml:"account_id"`
	RoleName        string `toml:"role_name"`
	EndpointURL     string `toml:"endpoint_url"`
}

// Config holds all cplog configuration.
type Config struct {
	Pipeline    string    `toml:"pipeline"`
	Region      string    `toml:"region"`
	LogLevel    string    `toml:"log_level"`
	Concurrency int       `toml:"concurrency"`
	MaxLogPages int       `toml:"max_log_pages"`
	AWS         AWSConfig `toml:"aws"`
}

const (
	defaultConcurrency = 8
	defaultMaxLogPages = 1
	defaultLogLevel    = "info"
)

// ConcurrencyOrDefault returns Concurrency if set, otherwise defaultConcurrency.
func (c Config) ConcurrencyOrDefault() int {
	if c.Concurrency > 0 {
		return c.Concurrency
	}
	return defaultConcurrency
}

// MaxLogPagesOrDefault returns MaxLogPages if set, otherwise a single page.
func (c Config) MaxLogPagesOrDefault() int {
	if c.MaxLogPages > 0 {
		return c.MaxLogPages
	}
	return defaultMaxLogPages
}

// LogLevelOrDefault returns LogLevel if set, otherwise "info".
func (c Config) LogLevelOrDefault() string {
	if c.LogLevel != "" {
		return c.LogLevel
	}
	return defaultLogLevel
}

// LoadFrom reads configuration from the given TOML file path.
// If the file does not exist, it returns an empty config without error.
// Environment variables always take precedence over file values:
//   - CPLOG_PIPELINE   overrides pipeline
//   - AWS_REGION       overrides region (AWS_DEFAULT_REGION when unset)
//   - CPLOG_LOG_LEVEL  overrides log_level
//   - AWS_PROFILE      overrides aws.profile
//   - CPLOG_ROLE_ARN   overrides aws.role_arn
//   - AWS_ENDPOINT_URL overrides aws.endpoint_url
func LoadFrom(path string) (Config, error) {
	var cfg Config
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("decoding %s: %w", path, err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("reading %s: %w", path, err)
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given .env files into the process
// environment without overriding variables that are already set. Missing files
// are ignored.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// DefaultConfigPath returns the default path for the cplog config file.
func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "cplog", "config.toml")
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CPLOG_PIPELINE"); v != "" {
		cfg.Pipeline = v
	}
	if v := os.Getenv("AWS_REGION"); v != "" {
		cfg.Region = v
	} else if v := os.Getenv("AWS_DEFAULT_REGION"); v != "" {
		cfg.Region = v
	}
	if v := os.Getenv("CPLOG_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("AWS_PROFILE"); v != "" {
		cfg.AWS.Profile = v
	}
	if v := os.Getenv("CPLOG_ROLE_ARN"); v != "" {
		cfg.AWS.RoleARN = v
	}
	if v := os.Getenv("AWS_ENDPOINT_URL"); v != "" {
		cfg.AWS.EndpointURL = v
	}
}

// Save writes cfg to the given TOML file path, creating parent directories as needed.
// Existing file contents are overwritten. Permissions on the written file are 0600.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("opening config file: %w", err)
	}
	if encErr := toml.NewEncoder(f).Encode(cfg); encErr != nil {
		f.Close()
		return encErr
	}
	return f.Close()
}
