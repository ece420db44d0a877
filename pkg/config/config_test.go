package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	// Check defaults
	if cfg.Port != "8080" {
		t.Errorf("Expected Port to be 8080, got %s", cfg.Port)
	}

	if cfg.Env != "development" {
		t.Errorf("Expected Env to be development, got %s", cfg.Env)
	}

	if cfg.Database.MaxConns != 10 {
		t.Errorf("Expected DB MaxConns to be 10, got %d", cfg.Database.MaxConns)
	}

	if cfg.StrategyFile == "" {
		t.Error("Expected default StrategyFile to be set")
	}
}

func TestLoadWithCustomValues(t *testing.T) {
	os.Setenv("PORT", "9000")
	os.Setenv("ENV", "production")
	os.Setenv("STRATEGY_FILE", "/etc/rebalancer/strategy.yaml")
	os.Setenv("DB_MAX_CONNS", "50")
	os.Setenv("DB_MAX_CONN_LIFETIME", "2h")
	os.Setenv("LOG_LEVEL", "warn")
	os.Setenv("REDIS_ENABLED", "true")

	defer func() {
		os.Unsetenv("PORT")
		os.Unsetenv("ENV")
		os.Unsetenv("STRATEGY_FILE")
		os.Unsetenv("DB_MAX_CONNS")
		os.Unsetenv("DB_MAX_CONN_LIFETIME")
		os.Unsetenv("LOG_LEVEL")
		os.Unsetenv("REDIS_ENABLED")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "9000" {
		t.Errorf("Expected Port to be 9000, got %s", cfg.Port)
	}

	if cfg.Env != "production" {
		t.Errorf("Expected Env to be production, got %s", cfg.Env)
	}

	if cfg.StrategyFile != "/etc/rebalancer/strategy.yaml" {
		t.Errorf("Expected custom StrategyFile, got %s", cfg.StrategyFile)
	}

	if cfg.Database.MaxConns != 50 {
		t.Errorf("Expected DB MaxConns to be 50, got %d", cfg.Database.MaxConns)
	}

	if cfg.Database.MaxConnLifetime != 2*time.Hour {
		t.Errorf("Expected MaxConnLifetime to be 2h, got %s", cfg.Database.MaxConnLifetime)
	}

	if cfg.LogLevel != "warn" {
		t.Errorf("Expected LogLevel to be warn, got %s", cfg.LogLevel)
	}

	if !cfg.Redis.Enabled {
		t.Error("Expected Redis to be enabled")
	}
}

func TestValidateInvalidEnv(t *testing.T) {
	os.Setenv("ENV", "testing")
	defer os.Unsetenv("ENV")

	_, err := Load()
	if err == nil {
		t.Error("Expected error for invalid ENV, got nil")
	}
}

func TestValidateInvalidRateLimit(t *testing.T) {
	os.Setenv("RATE_LIMIT_PER_SECOND", "-1")
	defer os.Unsetenv("RATE_LIMIT_PER_SECOND")

	_, err := Load()
	if err == nil {
		t.Error("Expected error for negative rate limit, got nil")
	}
}

func TestGetEnvAsDurationFallback(t *testing.T) {
	os.Setenv("DB_MAX_CONN_IDLE_TIME", "not-a-duration")
	defer os.Unsetenv("DB_MAX_CONN_IDLE_TIME")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Database.MaxConnIdleTime != 30*time.Minute {
		t.Errorf("Expected fallback 30m, got %s", cfg.Database.MaxConnIdleTime)
	}
}
