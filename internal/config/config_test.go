package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("Port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.Dataset.CSVFile == "" {
		t.Error("CSVFile should have a default")
	}
	if cfg.Dataset.CacheDir != "" {
		t.Errorf("CacheDir = %q, want snapshots disabled by default", cfg.Dataset.CacheDir)
	}
	if cfg.Address() != "localhost:8000" {
		t.Errorf("Address() = %q", cfg.Address())
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DATA_PATH", "/data/sales.csv")
	t.Setenv("DATASET_CACHE_DIR", "/tmp/cache")
	t.Setenv("SERVER_READ_TIMEOUT", "3s")
	t.Setenv("SECURITY_ALLOWED_ORIGINS", "https://a.example, https://b.example,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Dataset.CSVFile != "/data/sales.csv" {
		t.Errorf("CSVFile = %q, want DATA_PATH fallback", cfg.Dataset.CSVFile)
	}
	if cfg.Dataset.CacheDir != "/tmp/cache" {
		t.Errorf("CacheDir = %q", cfg.Dataset.CacheDir)
	}
	if cfg.Server.ReadTimeout != 3*time.Second {
		t.Errorf("ReadTimeout = %v", cfg.Server.ReadTimeout)
	}
	if want := []string{"https://a.example", "https://b.example"}; !slices.Equal(cfg.Security.AllowedOrigins, want) {
		t.Errorf("AllowedOrigins = %v, want %v", cfg.Security.AllowedOrigins, want)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("CSV_FILE=from-dotenv.csv\n"), 0644); err != nil {
		t.Fatal(err)
	}
	// godotenv writes into the process env; make sure the test restores it.
	t.Setenv("CSV_FILE", "")
	os.Unsetenv("CSV_FILE")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Dataset.CSVFile != "from-dotenv.csv" {
		t.Errorf("CSVFile = %q, want value from .env", cfg.Dataset.CSVFile)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"SERVER_PORT", "70000"},
		{"LOG_LEVEL", "loud"},
		{"LOG_FORMAT", "xml"},
		{"SECURITY_RATE_LIMIT_RPS", "-1"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("Load() with %s=%s should fail", tt.key, tt.value)
			}
		})
	}
}
