package platform

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// Helper to create a temp config file.
func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create temp config file: %v", err)
	}

	return configPath
}

const validConfigYAML = `
training:
  data_path: "data/cars.csv"
  test_size: 0.25
  n_estimators: 50
artifact:
  backend: postgres
  dsn: "postgres://carprice@localhost/carprice?sslmode=disable"
server:
  port: 9090
  cors_origins: ["https://example.com"]
  require_all_fields: true
logging:
  level: debug
  format: console
`

func TestLoadConfig_Valid(t *testing.T) {
	cfg, err := LoadConfig(createTempConfigFile(t, validConfigYAML))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Training.TestSize != 0.25 || cfg.Training.NEstimators != 50 {
		t.Errorf("Training = %+v", cfg.Training)
	}
	// untouched keys keep their defaults
	if cfg.Training.MaxDepth != 10 || cfg.Training.Seed != 42 {
		t.Errorf("defaults lost: MaxDepth=%d Seed=%d", cfg.Training.MaxDepth, cfg.Training.Seed)
	}
	if cfg.Artifact.Backend != BackendPostgres {
		t.Errorf("Backend = %q, want postgres", cfg.Artifact.Backend)
	}
	if cfg.Server.Port != 9090 || !cfg.Server.RequireAllFields {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if len(cfg.Server.CORSOrigins) != 1 || cfg.Server.CORSOrigins[0] != "https://example.com" {
		t.Errorf("CORSOrigins = %v", cfg.Server.CORSOrigins)
	}
	if cfg.Server.RequestTimeout().Seconds() != 60 {
		t.Errorf("RequestTimeout = %v, want 60s", cfg.Server.RequestTimeout())
	}
}

func TestLoadConfig_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig(\"\"): %v", err)
	}
	if cfg.Artifact.Backend != BackendFile || cfg.Server.Port != 8000 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := LoadConfig(createTempConfigFile(t, "training: [")); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"test size", func(c *Config) { c.Training.TestSize = 1 }, ErrInvalidTestSize},
		{"estimators", func(c *Config) { c.Training.NEstimators = 0 }, ErrInvalidEstimators},
		{"split", func(c *Config) { c.Training.MinSamplesSplit = 1 }, ErrInvalidMinSamplesSplit},
		{"leaf", func(c *Config) { c.Training.MinSamplesLeaf = 0 }, ErrInvalidMinSamplesLeaf},
		{"depth", func(c *Config) { c.Training.MaxDepth = -1 }, ErrInvalidMaxDepth},
		{"backend", func(c *Config) { c.Artifact.Backend = "ftp" }, ErrInvalidBackend},
		{"file path", func(c *Config) { c.Artifact.Path = "" }, ErrMissingArtifactPath},
		{"dsn", func(c *Config) { c.Artifact.Backend = BackendPostgres }, ErrMissingDSN},
		{"bucket", func(c *Config) { c.Artifact.Backend = BackendS3 }, ErrMissingBucket},
		{"clickhouse", func(c *Config) {
			c.Artifact.Backend = BackendClickHouse
			c.Artifact.ClickHouse.Host = ""
		}, ErrMissingClickHouseHost},
		{"port", func(c *Config) { c.Server.Port = 0 }, ErrInvalidPort},
		{"timeout", func(c *Config) { c.Server.RequestTimeoutSec = 0 }, ErrInvalidTimeout},
		{"body", func(c *Config) { c.Server.MaxRequestBytes = 0 }, ErrInvalidMaxRequestBytes},
		{"level", func(c *Config) { c.Logging.Level = "trace" }, ErrInvalidLogLevel},
		{"format", func(c *Config) { c.Logging.Format = "xml" }, ErrInvalidLogFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := DefaultConfig()
	cfg.Server.Port = 7000
	if err := cfg.SaveConfig(path); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded.Server.Port != 7000 {
		t.Errorf("Port = %d, want 7000", loaded.Server.Port)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("CARPRICE_ARTIFACT_BACKEND", "s3")
	t.Setenv("CARPRICE_ARTIFACT_BUCKET", "models")
	t.Setenv("CARPRICE_CORS_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("CARPRICE_REQUIRE_ALL_FIELDS", "true")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Server.Port != 9999 || cfg.Artifact.Backend != BackendS3 || cfg.Artifact.Bucket != "models" {
		t.Errorf("cfg = %+v", cfg)
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "https://b.example" {
		t.Errorf("CORSOrigins = %v", cfg.Server.CORSOrigins)
	}
	if !cfg.Server.RequireAllFields {
		t.Error("RequireAllFields = false, want true")
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("CARPRICE_TEST_INT", "12")
	t.Setenv("CARPRICE_TEST_BAD_INT", "x")
	t.Setenv("CARPRICE_TEST_BOOL", "1")

	if got := GetEnvInt("CARPRICE_TEST_INT", 3); got != 12 {
		t.Errorf("GetEnvInt = %d, want 12", got)
	}
	if got := GetEnvInt("CARPRICE_TEST_BAD_INT", 3); got != 3 {
		t.Errorf("GetEnvInt(bad) = %d, want 3", got)
	}
	if !GetEnvBool("CARPRICE_TEST_BOOL", false) {
		t.Error("GetEnvBool = false, want true")
	}
	if got := GetEnv("CARPRICE_TEST_UNSET", "d"); got != "d" {
		t.Errorf("GetEnv = %q, want d", got)
	}
}
