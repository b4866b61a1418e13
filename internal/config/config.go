// Package config loads the CLI configuration from syncup.yaml and SYNCUP_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/syncup/syncup-go/syncauth/redisstore"
)

const (
	configName   = "syncup"
	configFormat = "yaml"
	envPrefix    = "SYNCUP"
)

// Store drivers
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Session  SessionConfig  `mapstructure:"session"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type APIConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type SessionConfig struct {
	Driver        string `mapstructure:"driver"`
	Path          string `mapstructure:"path"`
	Namespace     string `mapstructure:"namespace"`
	LoginPath     string `mapstructure:"login_path"`
	PublicSegment string `mapstructure:"public_segment"`
	PresenceOnly  bool   `mapstructure:"presence_only"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Timeout returns the HTTP timeout as a duration
func (c APIConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://localhost:8080")
	v.SetDefault("api.timeout_seconds", 15)
	v.SetDefault("session.driver", DriverFile)
	v.SetDefault("session.path", defaultSessionPath())
	v.SetDefault("session.namespace", "default")
	v.SetDefault("session.login_path", "/login")
	v.SetDefault("session.public_segment", "/auth/")
	v.SetDefault("session.presence_only", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("postgres.dsn", "")
	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "text")
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "syncup", "session.json")
}

// Load reads the config file at path. An empty path searches the working
// directory and the user config directory; a missing file is not an error.
// e.g. SYNCUP_API_BASE_URL overrides api.base_url
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType(configFormat)
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "syncup"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate checks cross-field requirements
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.API.BaseURL) == "" {
		errs = append(errs, errors.New("api.base_url is required"))
	}

	switch c.Session.Driver {
	case DriverMemory:
	case DriverFile:
		if c.Session.Path == "" {
			errs = append(errs, errors.New("session.path is required for the file driver"))
		}
	case DriverRedis:
		if c.Redis.Addr == "" {
			errs = append(errs, errors.New("redis.addr is required for the redis driver"))
		}
		if err := redisstore.ValidateNamespace(c.Session.Namespace); err != nil {
			errs = append(errs, fmt.Errorf("session.namespace: %w", err))
		}
	case DriverPostgres:
		if c.Postgres.DSN == "" {
			errs = append(errs, errors.New("postgres.dsn is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("session.driver %q is not one of memory, file, redis, postgres", c.Session.Driver))
	}

	if !strings.HasPrefix(c.Session.LoginPath, "/") {
		errs = append(errs, errors.New("session.login_path must start with /"))
	}
	if strings.TrimSpace(c.Session.PublicSegment) == "" {
		errs = append(errs, errors.New("session.public_segment is required"))
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level %q is invalid", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q is invalid", c.Logging.Format))
	}

	return errors.Join(errs...)
}
