// Package config loads process configuration from an optional .env file, an
// optional YAML file, and the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// Config captures the settings of the campushub service.
type Config struct {
	HTTPPort        int
	StorageDriver   string
	SQLiteDSN       string
	SeedFile        string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	IdempotencyTTL  time.Duration
	LogLevel        string
	LogFormat       string
	MetricsEnabled  bool
	ShutdownTimeout time.Duration
}

// fileConfig mirrors the YAML layout. Values stay strings so file and
// environment go through the same parsing.
type fileConfig struct {
	HTTPPort string `yaml:"http_port"`
	Storage  struct {
		Driver    string `yaml:"driver"`
		SQLiteDSN string `yaml:"sqlite_dsn"`
		SeedFile  string `yaml:"seed_file"`
	} `yaml:"storage"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       string `yaml:"db"`
	} `yaml:"redis"`
	IdempotencyTTL string `yaml:"idempotency_ttl"`
	Log            struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	MetricsEnabled  string `yaml:"metrics_enabled"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		HTTPPort:        8080,
		StorageDriver:   DriverMemory,
		SQLiteDSN:       "file:campushub.db?_pragma=foreign_keys(1)",
		IdempotencyTTL:  24 * time.Hour,
		LogLevel:        "info",
		LogFormat:       "json",
		MetricsEnabled:  true,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Load reads .env from the working directory when present, then the YAML file
// named by CAMPUS_CONFIG_FILE, then the environment. Every invalid value is
// reported in a single error.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var file fileConfig
	if path := strings.TrimSpace(os.Getenv("CAMPUS_CONFIG_FILE")); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &file); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg := Default()
	invalid := make([]string, 0, 2)

	if v := value("CAMPUS_HTTP_PORT", file.HTTPPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			invalid = append(invalid, "CAMPUS_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if v := value("CAMPUS_STORAGE_DRIVER", file.Storage.Driver); v != "" {
		switch driver := strings.ToLower(v); driver {
		case DriverMemory, DriverSQLite:
			cfg.StorageDriver = driver
		default:
			invalid = append(invalid, "CAMPUS_STORAGE_DRIVER")
		}
	}

	if v := value("CAMPUS_SQLITE_DSN", file.Storage.SQLiteDSN); v != "" {
		cfg.SQLiteDSN = v
	}
	cfg.SeedFile = value("CAMPUS_SEED_FILE", file.Storage.SeedFile)
	cfg.RedisAddr = value("CAMPUS_REDIS_ADDR", file.Redis.Addr)
	cfg.RedisPassword = value("CAMPUS_REDIS_PASSWORD", file.Redis.Password)

	if v := value("CAMPUS_REDIS_DB", file.Redis.DB); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil || db < 0 {
			invalid = append(invalid, "CAMPUS_REDIS_DB")
		} else {
			cfg.RedisDB = db
		}
	}

	if v := value("CAMPUS_IDEMPOTENCY_TTL", file.IdempotencyTTL); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "CAMPUS_IDEMPOTENCY_TTL")
		} else {
			cfg.IdempotencyTTL = ttl
		}
	}

	if v := value("CAMPUS_LOG_LEVEL", file.Log.Level); v != "" {
		switch level := strings.ToLower(v); level {
		case "debug", "info", "warn", "error":
			cfg.LogLevel = level
		default:
			invalid = append(invalid, "CAMPUS_LOG_LEVEL")
		}
	}

	if v := value("CAMPUS_LOG_FORMAT", file.Log.Format); v != "" {
		switch format := strings.ToLower(v); format {
		case "json", "text":
			cfg.LogFormat = format
		default:
			invalid = append(invalid, "CAMPUS_LOG_FORMAT")
		}
	}

	if v := value("CAMPUS_METRICS_ENABLED", file.MetricsEnabled); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			invalid = append(invalid, "CAMPUS_METRICS_ENABLED")
		} else {
			cfg.MetricsEnabled = enabled
		}
	}

	if v := value("CAMPUS_SHUTDOWN_TIMEOUT", file.ShutdownTimeout); v != "" {
		timeout, err := time.ParseDuration(v)
		if err != nil || timeout <= 0 {
			invalid = append(invalid, "CAMPUS_SHUTDOWN_TIMEOUT")
		} else {
			cfg.ShutdownTimeout = timeout
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid configuration values: %s", strings.Join(invalid, ", "))
	}
	return cfg, nil
}

// value returns the environment value for key, falling back to the file value.
func value(key, fromFile string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return strings.TrimSpace(fromFile)
}
