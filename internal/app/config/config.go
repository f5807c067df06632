package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"logolate/go_backend/internal/domain/catalog"
)

type Config struct {
	HTTPAddr           string
	AppEnv             string
	LogLevel           string
	BackendURL         string
	BackendToken       string
	BackendTimeout     time.Duration
	InternalToken      string
	CORSAllowOrigin    string
	DatabaseURL        string
	RedisAddr          string
	RedisPassword      string
	CatalogCacheTTL    time.Duration
	CartIdleTTL        time.Duration
	QuoteValidity      time.Duration
	AdminFallbackEmail string
	CatalogLimits      catalog.Limits
}

func (c Config) Development() bool { return c.AppEnv == "development" }

// MustLoad reads .env (when present) and the process environment, exiting on error.
func MustLoad() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("config: .env not loaded: %v", err)
	}
	cfg, err := Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return cfg
}

func Load() (Config, error) {
	var errs []error
	required := func(k string) string {
		v := env(k, "")
		if v == "" {
			errs = append(errs, fmt.Errorf("missing env %s", k))
		}
		return v
	}
	duration := func(k string, def time.Duration) time.Duration {
		d, err := envDuration(k, def)
		if err != nil {
			errs = append(errs, err)
		}
		return d
	}

	cfg := Config{
		HTTPAddr:           env("HTTP_ADDR", ":8080"),
		AppEnv:             env("APP_ENV", "production"),
		LogLevel:           env("LOG_LEVEL", "info"),
		BackendURL:         required("BACKEND_URL"),
		BackendToken:       env("BACKEND_TOKEN", ""),
		BackendTimeout:     duration("BACKEND_TIMEOUT", 15*time.Second),
		InternalToken:      required("INTERNAL_TOKEN"),
		CORSAllowOrigin:    env("CORS_ALLOW_ORIGIN", "*"),
		DatabaseURL:        env("DATABASE_URL", ""),
		RedisAddr:          env("REDIS_ADDR", ""),
		RedisPassword:      env("REDIS_PASSWORD", ""),
		CatalogCacheTTL:    duration("CATALOG_CACHE_TTL", 5*time.Minute),
		CartIdleTTL:        duration("CART_IDLE_TTL", 2*time.Hour),
		AdminFallbackEmail: env("ADMIN_FALLBACK_EMAIL", "admin@logolate.com"),
		CatalogLimits:      catalog.DefaultLimits(),
	}

	days, err := strconv.Atoi(env("QUOTE_VALIDITY_DAYS", "30"))
	if err != nil || days < 0 {
		errs = append(errs, fmt.Errorf("invalid QUOTE_VALIDITY_DAYS %q", os.Getenv("QUOTE_VALIDITY_DAYS")))
	}
	cfg.QuoteValidity = time.Duration(days) * 24 * time.Hour

	if path := env("CATALOG_LIMITS_FILE", ""); path != "" {
		limits, err := LoadLimits(path)
		if err != nil {
			errs = append(errs, err)
		}
		cfg.CatalogLimits = limits
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadLimits reads carousel caps from a YAML file. Keys left out keep their defaults.
func LoadLimits(path string) (catalog.Limits, error) {
	limits := catalog.DefaultLimits()
	data, err := os.ReadFile(path)
	if err != nil {
		return limits, fmt.Errorf("read catalog limits: %w", err)
	}
	if err := yaml.Unmarshal(data, &limits); err != nil {
		return catalog.DefaultLimits(), fmt.Errorf("parse catalog limits %s: %w", path, err)
	}
	if limits.Novedades < 0 || limits.Chocolates < 0 || limits.Caramelos < 0 {
		return catalog.DefaultLimits(), fmt.Errorf("catalog limits in %s must not be negative", path)
	}
	return limits, nil
}

func env(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func envDuration(k string, def time.Duration) (time.Duration, error) {
	v := env(k, "")
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return def, fmt.Errorf("invalid %s %q", k, v)
	}
	return d, nil
}
