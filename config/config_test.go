package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ANALYTICS_DEFAULT_DAYS", "")
	t.Setenv("STRIPE_TIMEOUT_SEC", "")
	t.Setenv("DATABASE_URL", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Analytics.DefaultDays != 30 {
		t.Errorf("DefaultDays = %d, want 30", cfg.Analytics.DefaultDays)
	}
	if cfg.Stripe.Timeout != 10*time.Second {
		t.Errorf("Stripe.Timeout = %v, want 10s", cfg.Stripe.Timeout)
	}
	if cfg.Database.MaxConns <= 0 {
		t.Errorf("MaxConns = %d, want positive", cfg.Database.MaxConns)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ANALYTICS_DEFAULT_DAYS", "90")
	t.Setenv("ANALYTICS_FETCH_CAP", "not-a-number")
	t.Setenv("STRIPE_BREAKER_FAILURES", "3")
	t.Setenv("EXPORT_WORKER_ENABLED", "false")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Analytics.DefaultDays != 90 {
		t.Errorf("DefaultDays = %d, want 90", cfg.Analytics.DefaultDays)
	}
	if cfg.Analytics.FetchCap != 5000 {
		t.Errorf("FetchCap = %d, want fallback 5000", cfg.Analytics.FetchCap)
	}
	if cfg.Stripe.BreakerFailures != 3 {
		t.Errorf("BreakerFailures = %d, want 3", cfg.Stripe.BreakerFailures)
	}
	if cfg.Export.Enabled {
		t.Error("Export.Enabled = true, want false")
	}
}

func TestDSN(t *testing.T) {
	c := DatabaseConfig{User: "u", Password: "p", Host: "h", Port: "5432", DBName: "d", SSLMode: "disable"}
	if got, want := c.DSN(), "postgres://u:p@h:5432/d?sslmode=disable"; got != want {
		t.Errorf("DSN = %q, want %q", got, want)
	}
	c.URL = "postgres://override"
	if got := c.DSN(); got != "postgres://override" {
		t.Errorf("DSN with URL = %q", got)
	}
}
