package config_test

import (
	"testing"
	"time"

	"github.com/candyhaus/sweetshop/internal/config"
)

// Clear everything Load reads so tests observe defaults, not the host env.
func clearEnv(t *testing.T) {
	t.Helper()

	keys := []string{
		"APP_ENV", "PORT", "DATABASE_URL",
		"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE",
		"JWT_SECRET", "JWT_EXPIRES_IN_HOURS",
		"ADMIN_USERNAME", "ADMIN_EMAIL", "ADMIN_PASSWORD",
		"CORS_ORIGINS",
		"AUTH_RATE_LIMIT", "AUTH_RATE_WINDOW_SECONDS",
		"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
		"CACHE_TTL_SECONDS",
		"OTEL_ENABLED", "OTEL_EXPORTER_OTLP_ENDPOINT",
		"SEED_SAMPLE_DATA", "MAX_BODY_BYTES",
	}
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := config.Load()

	if cfg.Env != "dev" {
		t.Errorf("got env %q, want dev", cfg.Env)
	}
	if cfg.Port != 3001 {
		t.Errorf("got port %d, want 3001", cfg.Port)
	}
	if cfg.JWTSecret != config.DefaultJWTSecret {
		t.Errorf("got secret %q, want the development fallback", cfg.JWTSecret)
	}
	if !cfg.UsingDefaultSecret() {
		t.Error("UsingDefaultSecret must report true without JWT_SECRET")
	}
	if cfg.JWTExpiresIn != 24*time.Hour {
		t.Errorf("got expiry %v, want 24h", cfg.JWTExpiresIn)
	}
	if cfg.DBURL == "" {
		t.Error("expected a built database url")
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "http://localhost:3000" {
		t.Errorf("unexpected default origins: %v", cfg.AllowedOrigins)
	}
	if !cfg.SeedSampleData {
		t.Error("dev environment should seed sample data by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)

	t.Setenv("APP_ENV", "production")
	t.Setenv("PORT", "8080")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/shop")
	t.Setenv("JWT_SECRET", "real-secret")
	t.Setenv("JWT_EXPIRES_IN_HOURS", "2")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("OTEL_ENABLED", "true")

	cfg := config.Load()

	if cfg.Env != "production" || cfg.Port != 8080 {
		t.Errorf("env/port overrides lost: %q %d", cfg.Env, cfg.Port)
	}
	if cfg.DBURL != "postgres://u:p@db:5432/shop" {
		t.Errorf("DATABASE_URL must win over DB_* parts, got %q", cfg.DBURL)
	}
	if cfg.UsingDefaultSecret() {
		t.Error("UsingDefaultSecret must report false with an explicit secret")
	}
	if cfg.JWTExpiresIn != 2*time.Hour {
		t.Errorf("got expiry %v, want 2h", cfg.JWTExpiresIn)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example.com" {
		t.Errorf("CSV origins not trimmed/split: %v", cfg.AllowedOrigins)
	}
	if cfg.RedisAddr != "redis:6379" {
		t.Errorf("redis addr lost: %q", cfg.RedisAddr)
	}
	if !cfg.OTELEnabled {
		t.Error("OTEL_ENABLED=true not honored")
	}
	if cfg.SeedSampleData {
		t.Error("production must not seed sample data by default")
	}
}

func TestLoadBadIntFallsBack(t *testing.T) {
	clearEnv(t)

	t.Setenv("PORT", "not-a-number")

	cfg := config.Load()

	if cfg.Port != 3001 {
		t.Errorf("got port %d, want the 3001 fallback", cfg.Port)
	}
}
