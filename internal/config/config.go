package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration for the client.
type Config struct {
	API    APIConfig
	Redis  RedisConfig
	Logger LoggerConfig
}

// APIConfig points at the helpdesk backend.
type APIConfig struct {
	BaseURL        string
	TimeoutSeconds int
	Token          string
}

// RedisConfig holds the optional snapshot tier connection values. An
// empty Addr disables snapshots.
type RedisConfig struct {
	Addr               string
	Password           string
	DB                 int
	SnapshotTTLSeconds int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// Load reads configuration from environment variables, applying defaults
// where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		API: APIConfig{
			BaseURL:        getEnv("HELPDESK_API_URL", "http://127.0.0.1:8000"),
			TimeoutSeconds: getEnvAsInt("HELPDESK_API_TIMEOUT_SECONDS", 30),
			Token:          os.Getenv("HELPDESK_TOKEN"),
		},
		Redis: RedisConfig{
			Addr:               os.Getenv("REDIS_ADDR"),
			Password:           os.Getenv("REDIS_PASSWORD"),
			DB:                 redisDB,
			SnapshotTTLSeconds: getEnvAsInt("REDIS_SNAPSHOT_TTL_SECONDS", 300),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	return cfg, nil
}

// fileConfig is the YAML shape for the optional config file used by the
// CLI. Unset fields keep the env/default value.
type fileConfig struct {
	APIURL         string `yaml:"api_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	Token          string `yaml:"token"`
	RedisAddr      string `yaml:"redis_addr"`
	RedisPassword  string `yaml:"redis_password"`
	RedisDB        *int   `yaml:"redis_db"`
	SnapshotTTL    int    `yaml:"snapshot_ttl_seconds"`
	LogLevel       string `yaml:"log_level"`
}

// ApplyFile overlays values from a YAML file onto cfg.
func (c *Config) ApplyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if fc.APIURL != "" {
		c.API.BaseURL = os.ExpandEnv(fc.APIURL)
	}
	if fc.TimeoutSeconds > 0 {
		c.API.TimeoutSeconds = fc.TimeoutSeconds
	}
	if fc.Token != "" {
		c.API.Token = os.ExpandEnv(fc.Token)
	}
	if fc.RedisAddr != "" {
		c.Redis.Addr = os.ExpandEnv(fc.RedisAddr)
	}
	if fc.RedisPassword != "" {
		c.Redis.Password = os.ExpandEnv(fc.RedisPassword)
	}
	if fc.RedisDB != nil {
		c.Redis.DB = *fc.RedisDB
	}
	if fc.SnapshotTTL > 0 {
		c.Redis.SnapshotTTLSeconds = fc.SnapshotTTL
	}
	if fc.LogLevel != "" {
		c.Logger.Level = fc.LogLevel
	}
	return nil
}

// Timeout returns the configured request timeout duration.
func (a APIConfig) Timeout() time.Duration {
	if a.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// SnapshotTTL returns the snapshot expiry duration.
func (r RedisConfig) SnapshotTTL() time.Duration {
	if r.SnapshotTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(r.SnapshotTTLSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}
