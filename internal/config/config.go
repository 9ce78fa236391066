package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the complete application configuration
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Input   InputConfig   `mapstructure:"input"`
	Output  OutputConfig  `mapstructure:"output"`
	Storage StorageConfig `mapstructure:"storage"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// LoggingConfig defines logging behavior
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// InputConfig defines how session logs are read
type InputConfig struct {
	Format   string `mapstructure:"format"`   // empty infers from file extension
	Location string `mapstructure:"location"` // zone for timestamps without an offset
}

// OutputConfig defines how results are printed
type OutputConfig struct {
	Format string `mapstructure:"format"` // "text" or "json"
	Color  bool   `mapstructure:"color"`
}

// StorageConfig defines where stored sessions live
type StorageConfig struct {
	Type  string      `mapstructure:"type"` // "file" or "redis"
	Redis RedisConfig `mapstructure:"redis"`
}

// RedisConfig defines Redis connection settings
type RedisConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
	DialTimeout  string `mapstructure:"dial_timeout"`
	ReadTimeout  string `mapstructure:"read_timeout"`
	WriteTimeout string `mapstructure:"write_timeout"`
}

// MetricsConfig defines metric export settings
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"` // node_exporter textfile path, empty disables
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	SetDefaults(v)

	// Configure viper
	v.SetConfigFile(configPath)
	v.SetEnvPrefix("EQUTIL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, use defaults and environment variables
	}

	// Unmarshal config
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate config
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// SetDefaults sets default configuration values
func SetDefaults(v *viper.Viper) {
	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	// Input defaults
	v.SetDefault("input.format", "")
	v.SetDefault("input.location", "UTC")

	// Output defaults
	v.SetDefault("output.format", "text")
	v.SetDefault("output.color", true)

	// Storage defaults
	v.SetDefault("storage.type", "file")
	v.SetDefault("storage.redis.host", "localhost")
	v.SetDefault("storage.redis.port", 6379)
	v.SetDefault("storage.redis.password", "")
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.pool_size", 10)
	v.SetDefault("storage.redis.min_idle_conns", 2)
	v.SetDefault("storage.redis.dial_timeout", "5s")
	v.SetDefault("storage.redis.read_timeout", "3s")
	v.SetDefault("storage.redis.write_timeout", "3s")

	// Metrics defaults
	v.SetDefault("metrics.textfile", "")
}

// LoadLocation resolves the configured input time zone.
func (c InputConfig) LoadLocation() (*time.Location, error) {
	if c.Location == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Location)
}

// validate validates the configuration
func validate(cfg *Config) error {
	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level: %q", cfg.Logging.Level)
	}

	switch cfg.Output.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid output format: %q (must be text or json)", cfg.Output.Format)
	}

	if _, err := cfg.Input.LoadLocation(); err != nil {
		return fmt.Errorf("invalid input location: %w", err)
	}

	if cfg.Storage.Type == "" {
		cfg.Storage.Type = "file"
	}
	switch cfg.Storage.Type {
	case "file":
	case "redis":
		if cfg.Storage.Redis.Host == "" {
			return fmt.Errorf("storage.redis.host is required when storage type is redis")
		}
		for name, value := range map[string]string{
			"dial_timeout":  cfg.Storage.Redis.DialTimeout,
			"read_timeout":  cfg.Storage.Redis.ReadTimeout,
			"write_timeout": cfg.Storage.Redis.WriteTimeout,
		} {
			if _, err := time.ParseDuration(value); err != nil {
				return fmt.Errorf("invalid storage.redis.%s: %w", name, err)
			}
		}
	default:
		return fmt.Errorf("invalid storage type: %q (must be file or redis)", cfg.Storage.Type)
	}

	return nil
}
