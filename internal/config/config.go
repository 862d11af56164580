// Package config loads service settings from an optional YAML file and the
// environment. Environment variables win over the file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvFile names the environment variable holding the YAML config path.
const EnvFile = "VENDZONE_CONFIG"

type Config struct {
	Port        string `yaml:"port"`
	DatabaseURL string `yaml:"database_url"`
	Migrate     bool   `yaml:"migrate"`
	MigrateDir  string `yaml:"migrate_dir"`
	RedisURL    string `yaml:"redis_url"`

	Log   Log   `yaml:"log"`
	Rate  Rate  `yaml:"rate"`
	Media Media `yaml:"media"`
}

type Log struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or text
}

// Rate limits citizen report submissions per client address.
type Rate struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type Media struct {
	S3Bucket  string `yaml:"s3_bucket"`
	AWSRegion string `yaml:"aws_region"`
	Prefix    string `yaml:"prefix"`
	MaxBytes  int64  `yaml:"max_bytes"`
}

func Default() Config {
	return Config{
		Port:       "8080",
		Migrate:    true,
		MigrateDir: "db/migrations",
		Log:        Log{Level: "info", Format: "json"},
		Rate:       Rate{RPS: 1, Burst: 5},
		Media:      Media{Prefix: "hygiene-reports/", MaxBytes: 8 << 20},
	}
}

// Load reads path when non-empty, otherwise the file named by VENDZONE_CONFIG
// if set, and then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv(EnvFile)
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	str("PORT", &c.Port)
	str("DATABASE_URL", &c.DatabaseURL)
	str("REDIS_URL", &c.RedisURL)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	str("MEDIA_S3_BUCKET", &c.Media.S3Bucket)
	str("AWS_REGION", &c.Media.AWSRegion)

	if v := getenv("DB_MIGRATE"); v != "" {
		c.Migrate = v != "false"
	}
	if v := getenv("RATE_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("RATE_RPS: %w", err)
		}
		c.Rate.RPS = f
	}
	if v := getenv("RATE_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RATE_BURST: %w", err)
		}
		c.Rate.Burst = n
	}
	return nil
}

func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port is required")
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("log format must be json or text, got %q", c.Log.Format)
	}
	if c.Rate.RPS < 0 || c.Rate.Burst < 0 {
		return fmt.Errorf("rate limits must not be negative")
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string { return ":" + c.Port }
