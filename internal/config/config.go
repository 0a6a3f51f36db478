package config

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

type Config struct {
	Port                string        `mapstructure:"PORT"`
	Env                 string        `mapstructure:"ENV"`
	LogLevel            string        `mapstructure:"LOG_LEVEL"`
	DatabaseURL         string        `mapstructure:"DATABASE_URL"`
	DBMaxConns          int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns          int32         `mapstructure:"DB_MIN_CONNS"`
	DBSchema            string        `mapstructure:"DB_SCHEMA"`
	CORSOrigins         []string      `mapstructure:"CORS_ORIGINS"`
	AuthIssuer          string        `mapstructure:"AUTH_ISSUER"`
	AuthAudience        string        `mapstructure:"AUTH_AUDIENCE"`
	AuthSigningKey      string        `mapstructure:"AUTH_SIGNING_KEY"`
	SLAMonitorInterval  time.Duration `mapstructure:"SLA_MONITOR_INTERVAL"`
	SuggestCacheSize    int           `mapstructure:"SUGGEST_CACHE_SIZE"`
	RequestTimeout      time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	TicketRatePerMinute int           `mapstructure:"TICKET_RATE_PER_MINUTE"`
	TicketRateBurst     int           `mapstructure:"TICKET_RATE_BURST"`
	BodyLimit           string        `mapstructure:"BODY_LIMIT"`
}

var keys = []string{
	"PORT", "ENV", "LOG_LEVEL",
	"DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS", "DB_SCHEMA",
	"CORS_ORIGINS",
	"AUTH_ISSUER", "AUTH_AUDIENCE", "AUTH_SIGNING_KEY",
	"SLA_MONITOR_INTERVAL", "SUGGEST_CACHE_SIZE",
	"REQUEST_TIMEOUT", "TICKET_RATE_PER_MINUTE", "TICKET_RATE_BURST", "BODY_LIMIT",
}

// Load reads configuration from the environment and an optional .env file in
// the working directory. An empty DATABASE_URL selects in-memory storage.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("DB_SCHEMA", "public")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("SLA_MONITOR_INTERVAL", "30s")
	v.SetDefault("SUGGEST_CACHE_SIZE", 512)
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("TICKET_RATE_PER_MINUTE", 30)
	v.SetDefault("TICKET_RATE_BURST", 5)
	v.SetDefault("BODY_LIMIT", "64K")

	// Bind explicitly so Unmarshal sees variables that have no default.
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// .env is optional
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.CORSOrigins = splitList(v.GetString("CORS_ORIGINS"))
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// UsesDatabase reports whether patients are stored in Postgres.
func (c *Config) UsesDatabase() bool {
	return c.DatabaseURL != ""
}

// SigningKey decodes AUTH_SIGNING_KEY.
func (c *Config) SigningKey() ([]byte, error) {
	key, err := hex.DecodeString(c.AuthSigningKey)
	if err != nil {
		return nil, fmt.Errorf("AUTH_SIGNING_KEY is not valid hex: %w", err)
	}
	return key, nil
}

// Level parses LOG_LEVEL, falling back to info.
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// Validate checks that the configuration is safe to run. Outside development
// a signing key of at least 32 bytes is required so bearer tokens are
// enforced.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if c.DBMinConns < 0 || c.DBMaxConns < 1 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("invalid pool size: DB_MIN_CONNS=%d DB_MAX_CONNS=%d", c.DBMinConns, c.DBMaxConns)
	}
	if c.SLAMonitorInterval <= 0 {
		return fmt.Errorf("SLA_MONITOR_INTERVAL must be positive, got %s", c.SLAMonitorInterval)
	}
	if c.SuggestCacheSize < 0 {
		return fmt.Errorf("SUGGEST_CACHE_SIZE must not be negative, got %d", c.SuggestCacheSize)
	}
	if c.TicketRatePerMinute < 0 || c.TicketRateBurst < 0 {
		return fmt.Errorf("ticket rate limits must not be negative")
	}

	if c.AuthSigningKey != "" {
		key, err := c.SigningKey()
		if err != nil {
			return err
		}
		if len(key) < 32 {
			return fmt.Errorf("AUTH_SIGNING_KEY must be at least 32 bytes (64 hex chars), got %d bytes", len(key))
		}
	} else if !c.IsDev() {
		return fmt.Errorf("AUTH_SIGNING_KEY is required when ENV=%q", c.Env)
	}
	return nil
}
