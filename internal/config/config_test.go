package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"hrhelper/recruiter-service/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HRHELPER_STORAGE", "memory")
	t.Setenv("JWT_SECRET", "s3cret-value")

	cfg, err := config.Load(config.New(), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" || cfg.GRPCPort != "9090" {
		t.Errorf("ports = %s/%s", cfg.Port, cfg.GRPCPort)
	}
	if got := cfg.GRPCAddr(); got != "127.0.0.1:9090" {
		t.Errorf("grpc addr = %q, want loopback", got)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Errorf("session ttl = %s", cfg.SessionTTL)
	}
	if cfg.RescoreSchedule != "@every 6h" {
		t.Errorf("rescore schedule = %q", cfg.RescoreSchedule)
	}
	if cfg.JWTSecret != "s3cret-value" {
		t.Errorf("jwt secret = %q", cfg.JWTSecret)
	}
}

func TestLoad_PostgresRequiresURLs(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret-value")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")

	_, err := config.Load(config.New(), "")
	if err == nil || !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Fatalf("error = %v, want DATABASE_URL is required", err)
	}

	t.Setenv("DATABASE_URL", "postgres://localhost/hr")
	_, err = config.Load(config.New(), "")
	if err == nil || !strings.Contains(err.Error(), "REDIS_URL") {
		t.Fatalf("error = %v, want REDIS_URL is required", err)
	}

	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	cfg, err := config.Load(config.New(), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage != config.StoragePostgres || cfg.DatabaseURL != "postgres://localhost/hr" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("HRHELPER_STORAGE", "memory")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("JWT_SECRET_FILE", "")

	_, err := config.Load(config.New(), "")
	if err == nil || !strings.Contains(err.Error(), "JWT secret") {
		t.Errorf("error = %v, want a JWT secret error", err)
	}
}

func TestLoad_SecretFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jwt")
	if err := os.WriteFile(path, []byte("from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HRHELPER_STORAGE", "memory")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("JWT_SECRET_FILE", path)

	cfg, err := config.Load(config.New(), "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.JWTSecret != "from-file" {
		t.Errorf("jwt secret = %q", cfg.JWTSecret)
	}
}

func TestLoad_ShortSecretRejected(t *testing.T) {
	t.Setenv("HRHELPER_STORAGE", "memory")
	t.Setenv("JWT_SECRET_FILE", "")
	t.Setenv("JWT_SECRET", "s3cret")

	_, err := config.Load(config.New(), "")
	if err == nil || !strings.Contains(err.Error(), "at least 8 characters") {
		t.Errorf("error = %v, want a minimum length error", err)
	}
}

func TestLoad_GRPCHostOverride(t *testing.T) {
	t.Setenv("HRHELPER_STORAGE", "memory")
	t.Setenv("JWT_SECRET", "s3cret-value")
	t.Setenv("HRHELPER_GRPC_HOST", "0.0.0.0")

	cfg, err := config.Load(config.New(), "")
	if err != nil {
		t.Fatal(err)
	}
	if got := cfg.GRPCAddr(); got != "0.0.0.0:9090" {
		t.Errorf("grpc addr = %q", got)
	}
}

func TestLoad_UnknownStorage(t *testing.T) {
	t.Setenv("HRHELPER_STORAGE", "sqlite")
	t.Setenv("JWT_SECRET", "s3cret-value")
	if _, err := config.Load(config.New(), ""); err == nil {
		t.Error("unknown storage accepted")
	}
}

func TestLoad_YAMLFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hrhelper.yaml")
	yaml := `
storage: memory
port: "7000"
jwt-secret: from-yaml
rescore-schedule: "@every 30m"
allowed-origins:
  - https://hr.example.com
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("JWT_SECRET", "")
	t.Setenv("PORT", "")
	t.Setenv("HRHELPER_GRPC_PORT", "9999")

	cfg, err := config.Load(config.New(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "7000" || cfg.GRPCPort != "9999" {
		t.Errorf("ports = %s/%s, want 7000/9999", cfg.Port, cfg.GRPCPort)
	}
	if cfg.JWTSecret != "from-yaml" || cfg.RescoreSchedule != "@every 30m" {
		t.Errorf("cfg = %+v", cfg)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "https://hr.example.com" {
		t.Errorf("allowed origins = %v", cfg.AllowedOrigins)
	}
}

func TestLoadDotEnv_MissingFileIgnored(t *testing.T) {
	if err := config.LoadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Errorf("LoadDotEnv(missing) = %v", err)
	}
}

func TestLoadDotEnv_DoesNotOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("HRHELPER_TEST_A=from-file\nHRHELPER_TEST_B=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HRHELPER_TEST_A", "from-env")
	t.Setenv("HRHELPER_TEST_B", "")
	os.Unsetenv("HRHELPER_TEST_B")

	if err := config.LoadDotEnv(path); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("HRHELPER_TEST_B") })

	if got := os.Getenv("HRHELPER_TEST_A"); got != "from-env" {
		t.Errorf("A = %q, want from-env", got)
	}
	if got := os.Getenv("HRHELPER_TEST_B"); got != "from-file" {
		t.Errorf("B = %q, want from-file", got)
	}
}
