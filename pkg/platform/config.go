// Package platform holds process-level plumbing shared by the binaries:
// configuration, logging and the HTTP client used for remote predictions.
package platform

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrInvalidTestSize        = errors.New("training.test_size must be between 0 and 1 exclusive")
	ErrInvalidEstimators      = errors.New("training.n_estimators must be at least 1")
	ErrInvalidMinSamplesSplit = errors.New("training.min_samples_split must be at least 2")
	ErrInvalidMinSamplesLeaf  = errors.New("training.min_samples_leaf must be at least 1")
	ErrInvalidMaxDepth        = errors.New("training.max_depth must be non-negative")
	ErrInvalidBackend         = errors.New("artifact.backend must be one of: file, postgres, clickhouse, s3")
	ErrMissingArtifactPath    = errors.New("artifact.path is required for the file backend")
	ErrMissingDSN             = errors.New("artifact.dsn is required for the postgres backend")
	ErrMissingClickHouseHost  = errors.New("artifact.clickhouse.host is required for the clickhouse backend")
	ErrMissingBucket          = errors.New("artifact.bucket and artifact.key are required for the s3 backend")
	ErrInvalidPort            = errors.New("server.port must be between 1 and 65535")
	ErrInvalidTimeout         = errors.New("server timeouts must be at least 1 second")
	ErrInvalidMaxRequestBytes = errors.New("server.max_request_bytes must be positive")
	ErrInvalidLogLevel        = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidLogFormat       = errors.New("logging.format must be 'json' or 'console'")
)

// Artifact backends.
const (
	BackendFile       = "file"
	BackendPostgres   = "postgres"
	BackendClickHouse = "clickhouse"
	BackendS3         = "s3"
)

// Config represents the complete service configuration.
type Config struct {
	Training TrainingConfig `yaml:"training"`
	Artifact ArtifactConfig `yaml:"artifact"`
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// TrainingConfig controls the offline training job.
type TrainingConfig struct {
	DataPath        string  `yaml:"data_path"`
	TestSize        float64 `yaml:"test_size"`
	Seed            int64   `yaml:"seed"`
	NEstimators     int     `yaml:"n_estimators"`
	MaxDepth        int     `yaml:"max_depth"`
	MinSamplesSplit int     `yaml:"min_samples_split"`
	MinSamplesLeaf  int     `yaml:"min_samples_leaf"`
	MaxFeatures     int     `yaml:"max_features"`
}

// ArtifactConfig selects where the model artifact is published and loaded.
type ArtifactConfig struct {
	Backend    string           `yaml:"backend"`
	Path       string           `yaml:"path"`
	DSN        string           `yaml:"dsn"`
	Bucket     string           `yaml:"bucket"`
	Key        string           `yaml:"key"`
	Region     string           `yaml:"region"`
	Endpoint   string           `yaml:"endpoint"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
}

// ClickHouseConfig holds ClickHouse connection settings.
type ClickHouseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// ServerConfig configures the HTTP shell.
type ServerConfig struct {
	Port              int      `yaml:"port"`
	ReadTimeoutSec    int      `yaml:"read_timeout_sec"`
	WriteTimeoutSec   int      `yaml:"write_timeout_sec"`
	RequestTimeoutSec int      `yaml:"request_timeout_sec"`
	MaxRequestBytes   int64    `yaml:"max_request_bytes"`
	CORSOrigins       []string `yaml:"cors_origins"`
	RequireAllFields  bool     `yaml:"require_all_fields"`
}

// ReadTimeout returns the read timeout as a duration.
func (s ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(s.ReadTimeoutSec) * time.Second
}

// WriteTimeout returns the write timeout as a duration.
func (s ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(s.WriteTimeoutSec) * time.Second
}

// RequestTimeout returns the per-request timeout as a duration.
func (s ServerConfig) RequestTimeout() time.Duration {
	return time.Duration(s.RequestTimeoutSec) * time.Second
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Training: TrainingConfig{
			DataPath:        "data/sports_car_prices.csv",
			TestSize:        0.2,
			Seed:            42,
			NEstimators:     100,
			MaxDepth:        10,
			MinSamplesSplit: 5,
			MinSamplesLeaf:  2,
		},
		Artifact: ArtifactConfig{
			Backend: BackendFile,
			Path:    "models/car_price_model.json",
			Key:     "models/car_price_model.json",
			ClickHouse: ClickHouseConfig{
				Host:     "localhost",
				Port:     9000,
				Database: "carprice",
				Username: "default",
			},
		},
		Server: ServerConfig{
			Port:              8000,
			ReadTimeoutSec:    30,
			WriteTimeoutSec:   30,
			RequestTimeoutSec: 60,
			MaxRequestBytes:   1 << 20,
			CORSOrigins:       []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadConfig loads configuration from a YAML file on top of the defaults.
// An empty path returns the validated defaults.
func LoadConfig(filepath string) (*Config, error) {
	cfg := DefaultConfig()
	if filepath == "" {
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// FromEnv builds a configuration from CARPRICE_* environment variables on
// top of the defaults, for container deployments without a config file.
func FromEnv() (*Config, error) {
	cfg := DefaultConfig()
	cfg.Artifact.Backend = GetEnv("CARPRICE_ARTIFACT_BACKEND", cfg.Artifact.Backend)
	cfg.Artifact.Path = GetEnv("CARPRICE_ARTIFACT_PATH", cfg.Artifact.Path)
	cfg.Artifact.DSN = GetEnv("CARPRICE_ARTIFACT_DSN", cfg.Artifact.DSN)
	cfg.Artifact.Bucket = GetEnv("CARPRICE_ARTIFACT_BUCKET", cfg.Artifact.Bucket)
	cfg.Artifact.Key = GetEnv("CARPRICE_ARTIFACT_KEY", cfg.Artifact.Key)
	cfg.Artifact.Region = GetEnv("AWS_REGION", cfg.Artifact.Region)
	cfg.Artifact.Endpoint = GetEnv("CARPRICE_S3_ENDPOINT", cfg.Artifact.Endpoint)
	cfg.Artifact.ClickHouse.Host = GetEnv("CLICKHOUSE_HOST", cfg.Artifact.ClickHouse.Host)
	cfg.Artifact.ClickHouse.Port = GetEnvInt("CLICKHOUSE_PORT", cfg.Artifact.ClickHouse.Port)
	cfg.Artifact.ClickHouse.Database = GetEnv("CLICKHOUSE_DATABASE", cfg.Artifact.ClickHouse.Database)
	cfg.Artifact.ClickHouse.Username = GetEnv("CLICKHOUSE_USER", cfg.Artifact.ClickHouse.Username)
	cfg.Artifact.ClickHouse.Password = GetEnv("CLICKHOUSE_PASSWORD", cfg.Artifact.ClickHouse.Password)
	cfg.Server.Port = GetEnvInt("PORT", cfg.Server.Port)
	cfg.Server.RequestTimeoutSec = GetEnvInt("CARPRICE_REQUEST_TIMEOUT_SEC", cfg.Server.RequestTimeoutSec)
	cfg.Server.CORSOrigins = GetEnvList("CARPRICE_CORS_ORIGINS", cfg.Server.CORSOrigins)
	cfg.Server.RequireAllFields = GetEnvBool("CARPRICE_REQUIRE_ALL_FIELDS", cfg.Server.RequireAllFields)
	cfg.Logging.Level = GetEnv("LOG_LEVEL", cfg.Logging.Level)
	if GetEnv("ENV", "") == "development" {
		cfg.Logging.Format = "console"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// SaveConfig saves configuration to YAML file.
func (c *Config) SaveConfig(filepath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	t := c.Training
	if t.TestSize <= 0 || t.TestSize >= 1 {
		return ErrInvalidTestSize
	}
	if t.NEstimators < 1 {
		return ErrInvalidEstimators
	}
	if t.MaxDepth < 0 {
		return ErrInvalidMaxDepth
	}
	if t.MinSamplesSplit < 2 {
		return ErrInvalidMinSamplesSplit
	}
	if t.MinSamplesLeaf < 1 {
		return ErrInvalidMinSamplesLeaf
	}

	a := c.Artifact
	switch a.Backend {
	case BackendFile:
		if a.Path == "" {
			return ErrMissingArtifactPath
		}
	case BackendPostgres:
		if a.DSN == "" {
			return ErrMissingDSN
		}
	case BackendClickHouse:
		if a.ClickHouse.Host == "" {
			return ErrMissingClickHouseHost
		}
	case BackendS3:
		if a.Bucket == "" || a.Key == "" {
			return ErrMissingBucket
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidBackend, a.Backend)
	}

	s := c.Server
	if s.Port < 1 || s.Port > 65535 {
		return ErrInvalidPort
	}
	if s.ReadTimeoutSec < 1 || s.WriteTimeoutSec < 1 || s.RequestTimeoutSec < 1 {
		return ErrInvalidTimeout
	}
	if s.MaxRequestBytes <= 0 {
		return ErrInvalidMaxRequestBytes
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return ErrInvalidLogLevel
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return ErrInvalidLogFormat
	}
	return nil
}
