package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Env != "development" {
		t.Errorf("expected development env, got %q", cfg.Env)
	}
	if cfg.TokenTTL != time.Hour {
		t.Errorf("expected 1h token ttl, got %v", cfg.TokenTTL)
	}
}

func TestLoad_EnvOverlay(t *testing.T) {
	t.Setenv("API_ADDR", ":9999")
	t.Setenv("TOKEN_TTL", "30m")
	t.Setenv("BCRYPT_COST", "12")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIAddr != ":9999" {
		t.Errorf("expected overlay addr, got %q", cfg.APIAddr)
	}
	if cfg.TokenTTL != 30*time.Minute {
		t.Errorf("expected 30m ttl, got %v", cfg.TokenTTL)
	}
	if cfg.BcryptCost != 12 {
		t.Errorf("expected cost 12, got %d", cfg.BcryptCost)
	}
}

func TestLoad_BadValues(t *testing.T) {
	t.Setenv("TOKEN_TTL", "soon")
	if _, err := Load(); err == nil {
		t.Error("expected error for bad TOKEN_TTL")
	}
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	if _, err := Load(); err == nil {
		t.Error("expected error for default secret in production")
	}

	t.Setenv("JWT_SECRET", "a-real-secret")
	if _, err := Load(); err != nil {
		t.Errorf("load with secret: %v", err)
	}
}
