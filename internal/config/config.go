package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/AdvaitShete/Hospital-Mangement-System/internal/platform/db"
)

type Config struct {
	Env          string   `mapstructure:"ENV"`
	Port         string   `mapstructure:"PORT"`
	LogLevel     string   `mapstructure:"LOG_LEVEL"`
	DatabaseURL  string   `mapstructure:"DATABASE_URL"`
	DBMaxConns   int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns   int32    `mapstructure:"DB_MIN_CONNS"`
	CORSOrigins  []string `mapstructure:"CORS_ORIGINS"`
	InvoiceDir   string   `mapstructure:"INVOICE_DIR"`
	InvoiceTitle string   `mapstructure:"INVOICE_TITLE"`
	SeedOnStart  bool     `mapstructure:"SEED_ON_START"`

	RateLimitRPS   float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int           `mapstructure:"RATE_LIMIT_BURST"`
	BodyLimit      string        `mapstructure:"BODY_LIMIT"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	MetricsEnabled bool          `mapstructure:"METRICS_ENABLED"`
}

var keys = []string{
	"ENV", "PORT", "LOG_LEVEL", "DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS",
	"CORS_ORIGINS", "INVOICE_DIR", "INVOICE_TITLE", "SEED_ON_START",
	"RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "BODY_LIMIT", "REQUEST_TIMEOUT",
	"METRICS_ENABLED",
}

// Load reads configuration from the environment. Variables in envFiles
// (".env" when none are given) are loaded into the process first; a missing
// file is not an error, and variables already set win over the file.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("ENV", "development")
	v.SetDefault("PORT", "8000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DATABASE_URL", "sqlite://clinic.db")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 1)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("INVOICE_DIR", "invoices")
	v.SetDefault("INVOICE_TITLE", "Hospital Invoice")
	v.SetDefault("SEED_ON_START", false)
	v.SetDefault("RATE_LIMIT_RPS", 20)
	v.SetDefault("RATE_LIMIT_BURST", 40)
	v.SetDefault("BODY_LIMIT", "1M")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("METRICS_ENABLED", true)

	// Bind env vars explicitly so Unmarshal picks them up
	for _, k := range keys {
		v.BindEnv(k)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Comma-separated in the environment.
	cfg.CORSOrigins = nil
	for _, o := range strings.Split(v.GetString("CORS_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Dialect is the store backend selected by DATABASE_URL.
func (c *Config) Dialect() db.Dialect {
	d, _, _ := db.ParseURL(c.DatabaseURL)
	return d
}

// Validate checks that the configuration can open a store and write
// invoices.
func (c *Config) Validate() error {
	if _, _, err := db.ParseURL(c.DatabaseURL); err != nil {
		return fmt.Errorf("DATABASE_URL: %w", err)
	}
	if c.DBMaxConns <= 0 {
		return fmt.Errorf("DB_MAX_CONNS must be positive, got %d", c.DBMaxConns)
	}
	if c.DBMinConns <= 0 {
		return fmt.Errorf("DB_MIN_CONNS must be positive, got %d", c.DBMinConns)
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must not be negative")
	}
	if strings.TrimSpace(c.InvoiceDir) == "" {
		return fmt.Errorf("INVOICE_DIR must not be empty")
	}
	return nil
}
