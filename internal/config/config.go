package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type DatabaseConfig struct {
	Driver string
	DSN    string
}

type SessionConfig struct {
	Secret       []byte
	TTL          time.Duration
	CookieName   string
	CookieSecure bool

	// RequireCSRFToken turns on double-submit CSRF checks for unsafe methods on
	// authenticated routes. Off by default: the frontend calls the API with the
	// session cookie only and never echoes a token.
	RequireCSRFToken bool
}

type Config struct {
	Port           string
	GinMode        string
	LogLevel       string
	AllowedOrigins []string
	AuthRateLimit  int

	Database DatabaseConfig
	Session  SessionConfig
}

// Load reads the process environment, after merging an optional .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		Port:           getenv("PORT", "8080"),
		GinMode:        getenv("GIN_MODE", "release"),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		AllowedOrigins: splitList(getenv("ALLOWED_ORIGINS", "http://localhost:5173")),
		Database: DatabaseConfig{
			Driver: strings.ToLower(getenv("DB_DRIVER", DriverPostgres)),
			DSN:    getenv("POSTGRES_URL", os.Getenv("DATABASE_URL")),
		},
		Session: SessionConfig{
			Secret:     []byte(getenv("SESSION_SECRET", os.Getenv("JWT_SECRET"))),
			CookieName: getenv("SESSION_COOKIE_NAME", "sessionid"),
		},
	}

	var err error
	if cfg.AuthRateLimit, err = strconv.Atoi(getenv("AUTH_RATE_LIMIT", "20")); err != nil {
		return nil, fmt.Errorf("parse AUTH_RATE_LIMIT: %w", err)
	}
	if cfg.Session.TTL, err = time.ParseDuration(getenv("SESSION_TTL", "336h")); err != nil {
		return nil, fmt.Errorf("parse SESSION_TTL: %w", err)
	}
	if cfg.Session.CookieSecure, err = strconv.ParseBool(getenv("SESSION_COOKIE_SECURE", "false")); err != nil {
		return nil, fmt.Errorf("parse SESSION_COOKIE_SECURE: %w", err)
	}
	if cfg.Session.RequireCSRFToken, err = strconv.ParseBool(getenv("REQUIRE_CSRF_TOKEN", "false")); err != nil {
		return nil, fmt.Errorf("parse REQUIRE_CSRF_TOKEN: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("POSTGRES_URL (or DATABASE_URL) is required")
	}
	if len(c.Session.Secret) == 0 {
		return errors.New("SESSION_SECRET (or JWT_SECRET) is required")
	}
	if c.Session.TTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	if c.AuthRateLimit <= 0 {
		return errors.New("AUTH_RATE_LIMIT must be positive")
	}
	return nil
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
