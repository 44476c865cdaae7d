package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const devSessionSecret = "dev_fallback_secret"

// Config holds everything the server needs at startup.
type Config struct {
	Port string

	DB DBConfig

	SessionName   string
	SessionSecret string

	Cart CartConfig

	LogLevel  string
	LogFormat string
	GinMode   string

	CORSOrigins   []string
	FeaturedLimit int
}

type DBConfig struct {
	Driver          string // postgres | mysql | sqlite
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type CartConfig struct {
	Store         string // memory | redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TTL           time.Duration
}

// LoadDotenv overlays .env files on the environment. Works from the repo root
// and from cmd/server.
func LoadDotenv() {
	_ = godotenv.Overload(".env", "../.env", "../../.env")
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	cfg := Config{
		Port:          getenv("APP_PORT", "8080"),
		SessionName:   getenv("SESSION_NAME", "sf_session"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		LogLevel:      getenv("LOG_LEVEL", "info"),
		LogFormat:     getenv("LOG_FORMAT", "json"),
		GinMode:       os.Getenv("GIN_MODE"),
		DB: DBConfig{
			Driver: strings.ToLower(getenv("DB_DRIVER", "postgres")),
			DSN:    os.Getenv("DB_DSN"),
		},
		Cart: CartConfig{
			Store:         strings.ToLower(getenv("CART_STORE", "memory")),
			RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
			RedisPassword: os.Getenv("REDIS_PASSWORD"),
		},
	}

	var err error
	if cfg.DB.MaxOpenConns, err = intEnv("DB_MAX_OPEN_CONNS", 25); err != nil {
		return Config{}, err
	}
	if cfg.DB.MaxIdleConns, err = intEnv("DB_MAX_IDLE_CONNS", 25); err != nil {
		return Config{}, err
	}
	if cfg.DB.ConnMaxLifetime, err = durationEnv("DB_CONN_MAX_LIFETIME", 5*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.Cart.RedisDB, err = intEnv("REDIS_DB", 0); err != nil {
		return Config{}, err
	}
	if cfg.Cart.TTL, err = durationEnv("CART_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.FeaturedLimit, err = intEnv("FEATURED_LIMIT", 6); err != nil {
		return Config{}, err
	}

	cfg.CORSOrigins = splitList(getenv("CORS_ORIGINS", "*"))

	switch cfg.DB.Driver {
	case "postgres", "mysql":
		if cfg.DB.DSN == "" {
			return Config{}, fmt.Errorf("DB_DSN is empty (check your .env)")
		}
	case "sqlite":
		if cfg.DB.DSN == "" {
			cfg.DB.DSN = "storefront.db"
		}
	default:
		return Config{}, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DB.Driver)
	}

	switch cfg.Cart.Store {
	case "memory", "redis":
	default:
		return Config{}, fmt.Errorf("unsupported CART_STORE %q", cfg.Cart.Store)
	}

	if cfg.FeaturedLimit <= 0 {
		return Config{}, fmt.Errorf("FEATURED_LIMIT must be positive, got %d", cfg.FeaturedLimit)
	}

	return cfg, nil
}

// UsingDevSecret reports whether no SESSION_SECRET was configured; Secret
// then returns the development fallback.
func (c Config) UsingDevSecret() bool {
	return c.SessionSecret == ""
}

// Secret returns the session signing key, falling back to the dev default.
func (c Config) Secret() []byte {
	if c.SessionSecret == "" {
		return []byte(devSessionSecret)
	}
	return []byte(c.SessionSecret)
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
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
