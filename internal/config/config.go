// Package config provides configuration management for vmigrate.
//
// Configuration is loaded from:
// 1. config.yaml file (optional, or an explicit path)
// 2. Environment variables (standard names like SERVER_PORT, STORAGE_DATA_DIR)
// 3. Default values
//
// Import Path: vmigrate.io/vmigrate/internal/config
package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"vmigrate.io/vmigrate/internal/pkg/worker"
)

// Config is the root configuration structure.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Migration MigrationConfig `mapstructure:"migration"`
	Log       LogConfig       `mapstructure:"log"`
	Worker    WorkerConfig    `mapstructure:"worker"`
	Seed      SeedConfig      `mapstructure:"seed"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

// StorageConfig locates the document store. Each aggregate gets its own
// subdirectory of DataDir.
type StorageConfig struct {
	DataDir string `mapstructure:"data_dir"`
}

// MigrationConfig controls migration runs.
type MigrationConfig struct {
	// TransferDelay is how long the simulated transfer blocks.
	TransferDelay time.Duration `mapstructure:"transfer_delay"`
	// Async makes POST /migrations/:id/run return 202 and finish on the
	// migration worker pool.
	Async bool `mapstructure:"async"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

// WorkerConfig contains worker pool settings.
type WorkerConfig struct {
	GeneralPoolSize   int `mapstructure:"general_pool_size"`
	MigrationPoolSize int `mapstructure:"migration_pool_size"`
}

// SeedConfig points at the YAML fixture loaded by cmd/seed.
type SeedConfig struct {
	File string `mapstructure:"file"`
}

var (
	bootstrapLoggerOnce sync.Once
	bootstrapLogger     *zap.Logger
)

// Load reads configuration from file and environment variables.
// An empty path searches ., ./config and /etc/vmigrate for config.yaml;
// a non-empty path must exist.
// Nested keys map to env names by replacing dots: storage.data_dir → STORAGE_DATA_DIR.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/vmigrate")
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	cfg.warnUnsafe()

	return &cfg, nil
}

// Validate checks for critical configuration errors.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if strings.TrimSpace(c.Storage.DataDir) == "" {
		return fmt.Errorf("storage.data_dir must not be empty")
	}
	if c.Migration.TransferDelay < 0 {
		return fmt.Errorf("migration.transfer_delay must not be negative")
	}
	if c.Worker.GeneralPoolSize <= 0 {
		return fmt.Errorf("worker.general_pool_size must be positive")
	}
	if c.Worker.MigrationPoolSize <= 0 {
		return fmt.Errorf("worker.migration_pool_size must be positive")
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format must be json or console, got %q", c.Log.Format)
	}
	return nil
}

// warnUnsafe reports settings that are valid but risky. It runs before the
// global logger exists, so it uses a bootstrap logger.
func (c *Config) warnUnsafe() {
	for _, origin := range c.Server.AllowedOrigins {
		if origin == "*" {
			logBootstrapWarn("server.allowed_origins contains \"*\"; any site can call the API from a browser")
			return
		}
	}
}

func logBootstrapWarn(msg string, fields ...zap.Field) {
	bootstrapLoggerOnce.Do(func() {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)

		l, err := cfg.Build()
		if err != nil {
			bootstrapLogger = zap.NewNop()
			return
		}
		bootstrapLogger = l
	})

	bootstrapLogger.Warn(msg, fields...)
}

func setDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.allowed_origins", []string{})

	// Storage
	v.SetDefault("storage.data_dir", "./data")

	// Migration
	v.SetDefault("migration.transfer_delay", "0s")
	v.SetDefault("migration.async", false)

	// Log
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Worker pools
	pools := worker.DefaultPoolConfig()
	v.SetDefault("worker.general_pool_size", pools.GeneralPoolSize)
	v.SetDefault("worker.migration_pool_size", pools.MigrationPoolSize)

	// Seed
	v.SetDefault("seed.file", "")
}
