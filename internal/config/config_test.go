package config

import (
	"os"
	"testing"
	"time"

	appenv "github.com/drivehr/jobsync/internal/env"
)

func TestReadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/jobsync")

	cfg, err := Read()
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want %q", cfg.Port, "8080")
	}
	if cfg.MetricsPort != "9090" {
		t.Errorf("MetricsPort = %q, want %q", cfg.MetricsPort, "9090")
	}
	if cfg.Env != appenv.Development {
		t.Errorf("Env = %q, want %q", cfg.Env, appenv.Development)
	}
	if cfg.SyncSource != "drivehr" {
		t.Errorf("SyncSource = %q, want %q", cfg.SyncSource, "drivehr")
	}
	if !cfg.Webhook.Enabled {
		t.Error("Webhook.Enabled = false, want true")
	}
	if cfg.Webhook.Path != "/webhook/drivehr-sync" {
		t.Errorf("Webhook.Path = %q, want %q", cfg.Webhook.Path, "/webhook/drivehr-sync")
	}
	if cfg.Webhook.MaxJobs != 100 {
		t.Errorf("Webhook.MaxJobs = %d, want 100", cfg.Webhook.MaxJobs)
	}
	if got := cfg.Webhook.MaxDrift(); got != 300*time.Second {
		t.Errorf("Webhook.MaxDrift() = %v, want 5m0s", got)
	}
	if cfg.RateLimit.Limit != 10 {
		t.Errorf("RateLimit.Limit = %d, want 10", cfg.RateLimit.Limit)
	}
	if got := cfg.RateLimit.Window(); got != 60*time.Second {
		t.Errorf("RateLimit.Window() = %v, want 1m0s", got)
	}
}

func TestReadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/jobsync")
	t.Setenv("PORT", "9999")
	t.Setenv("ENV", "production")
	t.Setenv("WEBHOOK_SECRET", "s3cret")
	t.Setenv("WEBHOOK_ENABLED", "false")
	t.Setenv("WEBHOOK_MAX_JOBS", "25")
	t.Setenv("RATE_LIMIT", "3")
	t.Setenv("RATE_WINDOW_SECONDS", "30")

	cfg, err := Read()
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if cfg.Port != "9999" {
		t.Errorf("Port = %q, want %q", cfg.Port, "9999")
	}
	if cfg.Env != appenv.Production {
		t.Errorf("Env = %q, want %q", cfg.Env, appenv.Production)
	}
	if cfg.Webhook.Secret != "s3cret" {
		t.Errorf("Webhook.Secret = %q, want %q", cfg.Webhook.Secret, "s3cret")
	}
	if cfg.Webhook.Enabled {
		t.Error("Webhook.Enabled = true, want false")
	}
	if cfg.Webhook.MaxJobs != 25 {
		t.Errorf("Webhook.MaxJobs = %d, want 25", cfg.Webhook.MaxJobs)
	}
	if cfg.RateLimit.Limit != 3 {
		t.Errorf("RateLimit.Limit = %d, want 3", cfg.RateLimit.Limit)
	}
	if got := cfg.RateLimit.Window(); got != 30*time.Second {
		t.Errorf("RateLimit.Window() = %v, want 30s", got)
	}
}

func TestReadRequiresDatabaseURL(t *testing.T) {
	// t.Setenv registers the restore; the unset makes the var truly absent.
	t.Setenv("DATABASE_URL", "placeholder")
	os.Unsetenv("DATABASE_URL")

	if _, err := Read(); err == nil {
		t.Fatal("Read() error = nil, want missing DATABASE_URL failure")
	}
}
