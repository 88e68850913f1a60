package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage drivers recognised by STORAGE_DRIVER.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Lower bounds for the PBKDF2 parameters.
const (
	MinIterations = 1000
	MinSaltBytes  = 8
	MinKeyBytes   = 16
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port        string
	Driver      string
	MongoURI    string
	MongoDB     string
	DatabaseURL string
	JWTSecret   string
	JWTIssuer   string
	JWTTTL      time.Duration
	CORSOrigins []string

	Hashing Hashing

	CurrencySymbol     string
	NotificationsLimit int64

	LogLevel  string
	LogFormat string
}

// Hashing carries the PBKDF2-SHA256 work factor and sizes.
type Hashing struct {
	Iterations int
	SaltBytes  int
	KeyBytes   int
}

// DefaultHashing matches the parameters of hashes already stored by the
// Python deployment (passlib pbkdf2_sha256 defaults).
func DefaultHashing() Hashing {
	return Hashing{Iterations: 29000, SaltBytes: 16, KeyBytes: 32}
}

// Load reads configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	def := DefaultHashing()
	cfg := Config{
		Port:           fallback(os.Getenv("PORT"), "8080"),
		Driver:         strings.ToLower(fallback(os.Getenv("STORAGE_DRIVER"), DriverMongo)),
		MongoURI:       fallback(os.Getenv("MONGO_URI"), "mongodb://localhost:27017/"),
		MongoDB:        fallback(os.Getenv("MONGO_DATABASE"), "moneyhive_bank"),
		DatabaseURL:    strings.TrimSpace(os.Getenv("DATABASE_URL")),
		JWTSecret:      strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTIssuer:      fallback(os.Getenv("JWT_ISSUER"), "moneyhive-bank"),
		JWTTTL:         time.Duration(positiveInt(os.Getenv("JWT_TTL_MINUTES"), 60)) * time.Minute,
		CORSOrigins:    parseCSV(fallback(os.Getenv("CORS_ALLOWED_ORIGINS"), "*")),
		CurrencySymbol: fallback(os.Getenv("CURRENCY_SYMBOL"), "₹"),
		LogLevel:       strings.ToLower(fallback(os.Getenv("LOG_LEVEL"), "info")),
		LogFormat:      strings.ToLower(fallback(os.Getenv("LOG_FORMAT"), "json")),
	}

	var err error
	if cfg.Hashing.Iterations, err = intVar("PBKDF2_ITERATIONS", def.Iterations); err != nil {
		return Config{}, err
	}
	if cfg.Hashing.SaltBytes, err = intVar("PBKDF2_SALT_BYTES", def.SaltBytes); err != nil {
		return Config{}, err
	}
	if cfg.Hashing.KeyBytes, err = intVar("PBKDF2_KEY_BYTES", def.KeyBytes); err != nil {
		return Config{}, err
	}
	limit, err := intVar("NOTIFICATIONS_LIMIT", 0)
	if err != nil {
		return Config{}, err
	}
	cfg.NotificationsLimit = int64(limit)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Driver {
	case DriverMongo:
		if c.MongoURI == "" {
			return errors.New("MONGO_URI is required")
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Driver)
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.Hashing.Iterations < MinIterations {
		return fmt.Errorf("PBKDF2_ITERATIONS must be at least %d", MinIterations)
	}
	if c.Hashing.SaltBytes < MinSaltBytes {
		return fmt.Errorf("PBKDF2_SALT_BYTES must be at least %d", MinSaltBytes)
	}
	if c.Hashing.KeyBytes < MinKeyBytes {
		return fmt.Errorf("PBKDF2_KEY_BYTES must be at least %d", MinKeyBytes)
	}
	if c.NotificationsLimit < 0 {
		return errors.New("NOTIFICATIONS_LIMIT must not be negative")
	}
	return nil
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

func positiveInt(value string, def int) int {
	if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && n > 0 {
		return n
	}
	return def
}

func intVar(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not an integer", key, raw)
	}
	return n, nil
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
