package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// envPrefix scopes environment overrides, e.g. TASKBOARD_SERVER_PORT.
const envPrefix = "TASKBOARD"

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host            string        `mapstructure:"host" yaml:"host"`
	Port            int           `mapstructure:"port" yaml:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SeedConfig points at the one-shot bootstrap data.
// Empty paths mean the collections start empty.
type SeedConfig struct {
	Projects string `mapstructure:"projects" yaml:"projects"`
	Tasks    string `mapstructure:"tasks" yaml:"tasks"`
	SQLite   string `mapstructure:"sqlite" yaml:"sqlite"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// TaskConfig toggles optional strictness in the task service.
type TaskConfig struct {
	// RequireProject rejects tasks whose projectId names no stored project.
	RequireProject bool `mapstructure:"require_project" yaml:"require_project"`

	// StrictStatus rejects out-of-enum statuses inside the service itself.
	StrictStatus bool `mapstructure:"strict_status" yaml:"strict_status"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Server ServerConfig `mapstructure:"server" yaml:"server"`
	Seed   SeedConfig   `mapstructure:"seed" yaml:"seed"`
	Log    LogConfig    `mapstructure:"log" yaml:"log"`
	Tasks  TaskConfig   `mapstructure:"tasks" yaml:"tasks"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/taskboard/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "taskboard", "config.yaml")
}

// DefaultAppConfig returns a sensible default configuration.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ShutdownTimeout: 5 * time.Second,
			RequestTimeout:  3 * time.Second,
			CORSOrigins:     []string{"*"},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

func setDefaults(v *viper.Viper) {
	def := DefaultAppConfig()
	v.SetDefault("server.host", def.Server.Host)
	v.SetDefault("server.port", def.Server.Port)
	v.SetDefault("server.shutdown_timeout", def.Server.ShutdownTimeout)
	v.SetDefault("server.request_timeout", def.Server.RequestTimeout)
	v.SetDefault("server.cors_origins", def.Server.CORSOrigins)
	v.SetDefault("seed.projects", "")
	v.SetDefault("seed.tasks", "")
	v.SetDefault("seed.sqlite", "")
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.format", def.Log.Format)
	v.SetDefault("tasks.require_project", false)
	v.SetDefault("tasks.strict_status", false)
}

// LoadConfig reads configuration from the given YAML file path using Viper,
// then applies TASKBOARD_* environment overrides.
// If the file does not exist, defaults (plus environment) are used.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")

		if err := v.ReadInConfig(); err != nil {
			_, missing := err.(*os.PathError)
			if _, ok := err.(viper.ConfigFileNotFoundError); ok {
				missing = true
			}
			if !missing {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		}
	}

	cfg := DefaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for values the server cannot run with.
func (c *AppConfig) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 0 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be > 0")
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("server.request_timeout must be > 0")
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		return fmt.Errorf("log.format must be 'json' or 'console', got %q", c.Log.Format)
	}
	return nil
}
