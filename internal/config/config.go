package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/hongminglow/gatekeeper/internal/logging"
)

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"

	DefaultAdminEmail    = "admin@example.com"
	DefaultAdminPassword = "admin123"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port        string
	APIPrefix   string
	StoreDriver string
	DatabaseURL string
	MongoURI    string
	MongoDB     string
	JWTSecret   string
	JWTIssuer   string
	BcryptCost  int
	CORSOrigins []string

	Admin AdminConfig
	Login RateConfig
	Log   logging.Config
}

// AdminConfig is the account created when no administrator exists.
type AdminConfig struct {
	Name     string
	Email    string
	Password string
}

// RateConfig bounds unauthenticated credential requests per client.
type RateConfig struct {
	PerMinute int
	Burst     int
}

// Load reads configuration from the environment and validates it.
func Load() (Config, error) {
	cfg := Config{
		Port:        fallback(os.Getenv("PORT"), "3000"),
		APIPrefix:   normalizePrefix(os.Getenv("API_PREFIX")),
		StoreDriver: strings.ToLower(fallback(os.Getenv("STORE_DRIVER"), DriverPostgres)),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		MongoURI:    strings.TrimSpace(os.Getenv("MONGODB_URI")),
		MongoDB:     fallback(os.Getenv("MONGODB_DATABASE"), "authDB"),
		JWTSecret:   strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTIssuer:   fallback(os.Getenv("JWT_ISSUER"), "gatekeeper"),
		CORSOrigins: parseCSV(fallback(os.Getenv("CORS_ALLOWED_ORIGINS"), "*")),
		Admin: AdminConfig{
			Name:     fallback(os.Getenv("ADMIN_NAME"), "Admin"),
			Email:    fallback(os.Getenv("ADMIN_EMAIL"), DefaultAdminEmail),
			Password: fallback(os.Getenv("ADMIN_PASSWORD"), DefaultAdminPassword),
		},
		Log: logging.Config{
			Level: fallback(os.Getenv("LOG_LEVEL"), "info"),
			Dev:   os.Getenv("LOG_DEV") == "1",
		},
	}

	var err error
	if cfg.BcryptCost, err = intVar("BCRYPT_COST", 10); err != nil {
		return Config{}, err
	}
	if cfg.Login.PerMinute, err = intVar("LOGIN_RATE_PER_MINUTE", 20); err != nil {
		return Config{}, err
	}
	if cfg.Login.Burst, err = intVar("LOGIN_RATE_BURST", 10); err != nil {
		return Config{}, err
	}

	switch cfg.StoreDriver {
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, errors.New("DATABASE_URL is required")
		}
	case DriverMongo:
		if cfg.MongoURI == "" {
			return Config{}, errors.New("MONGODB_URI is required")
		}
	case DriverMemory:
	default:
		return Config{}, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}

	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func intVar(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer, got %q", key, raw)
	}
	return n, nil
}

func normalizePrefix(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return ""
	}
	return "/" + p
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
