package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

// DatabaseConfig holds persistence settings.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// GeneratorConfig holds text-generation backend settings.
type GeneratorConfig struct {
	Endpoint  string `yaml:"endpoint"`
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	TimeoutMS int    `yaml:"timeout_ms"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Generator GeneratorConfig `yaml:"generator"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// Default returns a configuration with baseline values applied.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind: "0.0.0.0",
			Port: 8317,
		},
		Database: DatabaseConfig{
			DSN: "file:data/mocksmith.db",
		},
		Generator: GeneratorConfig{
			Endpoint:  "https://api.openai.com/v1",
			Model:     "gpt-4o-mini",
			TimeoutMS: 120000,
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Load reads the YAML config at path, applies defaults and environment
// overrides, and validates the result. A missing file is not an error;
// defaults plus environment overrides are returned instead.
func Load(path string) (Config, error) {
	cfg := Default()

	if strings.TrimSpace(path) != "" {
		data, errRead := os.ReadFile(path)
		if errRead != nil {
			if !os.IsNotExist(errRead) {
				return Config{}, fmt.Errorf("config: read %s: %w", path, errRead)
			}
		} else if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, errUnmarshal)
		}
	}

	applyEnvOverrides(&cfg)

	if errValidate := cfg.validate(); errValidate != nil {
		return Config{}, errValidate
	}
	return cfg, nil
}

// applyEnvOverrides lets deploy environments inject secrets without
// writing them into the config file.
func applyEnvOverrides(cfg *Config) {
	if dsn := strings.TrimSpace(os.Getenv("MOCKSMITH_DATABASE_DSN")); dsn != "" {
		cfg.Database.DSN = dsn
	}
	if key := strings.TrimSpace(os.Getenv("MOCKSMITH_GENERATOR_API_KEY")); key != "" {
		cfg.Generator.APIKey = key
	}
	if endpoint := strings.TrimSpace(os.Getenv("MOCKSMITH_GENERATOR_ENDPOINT")); endpoint != "" {
		cfg.Generator.Endpoint = endpoint
	}
}

func (c Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: invalid server port %d", c.Server.Port)
	}
	if strings.TrimSpace(c.Database.DSN) == "" {
		return fmt.Errorf("config: database dsn is required")
	}
	if strings.TrimSpace(c.Generator.Endpoint) == "" {
		return fmt.Errorf("config: generator endpoint is required")
	}
	if strings.TrimSpace(c.Generator.Model) == "" {
		return fmt.Errorf("config: generator model is required")
	}
	if c.Generator.TimeoutMS < 0 {
		return fmt.Errorf("config: generator timeout_ms must not be negative")
	}
	return nil
}

// Addr returns the listen address in host:port form.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Bind, c.Port)
}

// Timeout returns the generator call timeout, zero meaning no timeout.
func (c GeneratorConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}
