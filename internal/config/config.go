// Package config loads and validates runtime configuration at startup.
// Fail-fast: Load returns an error when a required value is missing.
//
// Sources, lowest to highest precedence: defaults, an optional YAML file,
// environment variables (HRHELPER_* plus the unprefixed DATABASE_URL,
// REDIS_URL, PORT, JWT_SECRET and JWT_SECRET_FILE) and command-line flags
// bound by the CLI. A .env file in the working directory is loaded into the
// environment first.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"hrhelper/recruiter-service/internal/secrets"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// MinJWTSecretLength is the shortest accepted HMAC signing secret.
const MinJWTSecretLength = 8

// Config holds all runtime configuration for the recruiter service.
type Config struct {
	Port            string        `mapstructure:"port"`
	GRPCHost        string        `mapstructure:"grpc-host"`
	GRPCPort        string        `mapstructure:"grpc-port"`
	Storage         string        `mapstructure:"storage"`
	DatabaseURL     string        `mapstructure:"database-url"`
	RedisURL        string        `mapstructure:"redis-url"`
	JWTSecret       string        `mapstructure:"jwt-secret"`
	JWTSecretFile   string        `mapstructure:"jwt-secret-file"`
	SessionTTL      time.Duration `mapstructure:"session-ttl"`
	RescoreSchedule string        `mapstructure:"rescore-schedule"`
	RescoreTimeout  time.Duration `mapstructure:"rescore-timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed-origins"`
	SecureCookies   bool          `mapstructure:"secure-cookies"`
	Migrate         bool          `mapstructure:"migrate"`
	JSON            bool          `mapstructure:"json"`
	Debug           bool          `mapstructure:"debug"`
}

var defaults = map[string]any{
	"port":             "8080",
	"grpc-host":        "127.0.0.1",
	"grpc-port":        "9090",
	"storage":          StoragePostgres,
	"database-url":     "",
	"redis-url":        "",
	"jwt-secret":       "",
	"jwt-secret-file":  "",
	"session-ttl":      "24h",
	"rescore-schedule": "@every 6h",
	"rescore-timeout":  "5m",
	"allowed-origins":  []string{},
	"secure-cookies":   false,
	"migrate":          true,
	"json":             false,
	"debug":            false,
}

var unprefixedEnv = map[string]string{
	"port":            "PORT",
	"database-url":    "DATABASE_URL",
	"redis-url":       "REDIS_URL",
	"jwt-secret":      "JWT_SECRET",
	"jwt-secret-file": "JWT_SECRET_FILE",
}

// New returns a viper instance with defaults and environment bindings set.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("HRHELPER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	for key, env := range unprefixedEnv {
		// Prefixed name first so HRHELPER_* wins over the bare variable.
		_ = v.BindEnv(key, "HRHELPER_"+strings.ToUpper(strings.ReplaceAll(key, "-", "_")), env)
	}
	return v
}

// LoadDotEnv loads variables from the given files into the process
// environment without overriding ones already set. Missing files are
// ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads the optional config file into v, decodes it and validates the
// result.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// GRPCAddr is the gRPC listen address. The gRPC surface trusts the
// x-user-id header, so it binds to loopback unless grpc-host says otherwise.
func (c *Config) GRPCAddr() string {
	return net.JoinHostPort(c.GRPCHost, c.GRPCPort)
}

// Validate checks required values and resolves the JWT secret.
func (c *Config) Validate() error {
	switch c.Storage {
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required")
		}
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("storage must be %q or %q, got %q", StoragePostgres, StorageMemory, c.Storage)
	}

	secret, err := secrets.Load(secrets.Source{
		Name:      "JWT secret",
		Value:     c.JWTSecret,
		File:      c.JWTSecretFile,
		MinLength: MinJWTSecretLength,
	})
	if err != nil {
		return fmt.Errorf("%w (set JWT_SECRET or JWT_SECRET_FILE)", err)
	}
	c.JWTSecret = secret

	if c.SessionTTL <= 0 {
		return fmt.Errorf("session-ttl must be positive, got %s", c.SessionTTL)
	}
	if c.RescoreTimeout <= 0 {
		return fmt.Errorf("rescore-timeout must be positive, got %s", c.RescoreTimeout)
	}
	return nil
}
