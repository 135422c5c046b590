package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spitbox.toml")
	content := `
server_addr = ":8080"
upload_dir = "/srv/uploads"
cors_origins = ["https://a.example", "https://b.example"]
db_path = "from-file.db"
token_ttl_hours = 48
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DB_PATH", "from-env.db")
	t.Setenv("STORAGE_BACKEND", "LOCAL")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ServerAddr != ":8080" || cfg.UploadDir != "/srv/uploads" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.DBPath != "from-env.db" {
		t.Errorf("DBPath = %q, env should win over file", cfg.DBPath)
	}
	if cfg.StorageBackend != StorageLocal {
		t.Errorf("StorageBackend = %q", cfg.StorageBackend)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
	if cfg.TokenTTL() != 48*time.Hour {
		t.Errorf("TokenTTL = %v", cfg.TokenTTL())
	}
	if cfg.TempDir() != filepath.Join("/srv/uploads", ".tmp") {
		t.Errorf("TempDir = %q", cfg.TempDir())
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("Load() error = nil, want error for missing file")
	}
}

func TestGetEnvList(t *testing.T) {
	t.Setenv("SPITBOX_TEST_LIST", " a, ,b ,c")
	got := getEnvList("SPITBOX_TEST_LIST", nil)
	if strings.Join(got, "|") != "a|b|c" {
		t.Errorf("getEnvList = %v", got)
	}
	if got := getEnvList("SPITBOX_TEST_UNSET", []string{"x"}); len(got) != 1 || got[0] != "x" {
		t.Errorf("fallback = %v", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"unknown driver", func(c *Config) { c.DBDriver = "postgres" }, "unknown db driver"},
		{"unknown storage", func(c *Config) { c.StorageBackend = "ftp" }, "unknown storage backend"},
		{"minio without endpoint", func(c *Config) { c.StorageBackend = StorageMinio }, "MINIO_ENDPOINT"},
		{"minio ok", func(c *Config) { c.StorageBackend = StorageMinio; c.MinioEndpoint = "localhost:9000" }, ""},
		{"s3 without bucket", func(c *Config) { c.StorageBackend = StorageS3 }, "S3_BUCKET"},
		{"empty jwt secret", func(c *Config) { c.JWTSecret = "" }, "JWT_SECRET_KEY"},
		{"zero ttl", func(c *Config) { c.TokenTTLHours = 0 }, "token ttl"},
		{"zero upload limit", func(c *Config) { c.MaxUploadBytes = 0 }, "max upload size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestRedisSettings(t *testing.T) {
	cfg := Default()
	if cfg.RedisEnabled() {
		t.Error("Redis enabled without host")
	}
	cfg.RedisHost = "cache"
	if !cfg.RedisEnabled() || cfg.RedisAddr() != "cache:6379" {
		t.Errorf("RedisAddr = %q", cfg.RedisAddr())
	}
}
