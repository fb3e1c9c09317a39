package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// setRequiredEnv sets the variables LoadConfig refuses to start without.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("NEXT_PUBLIC_TENANT_ID", "tenant_demo")
	t.Setenv("CLERK_SECRET_KEY", "session-secret")
	t.Setenv("SERVER_MODE", "development")
	t.Setenv("NEXT_PUBLIC_APP_URL", "")
	t.Setenv("CSRF_KEY", "")
}

func missingFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.yaml")
}

func TestLoadConfigRequiresTenantID(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("NEXT_PUBLIC_TENANT_ID", "  ")

	_, err := LoadConfig(missingFile(t))
	if !errors.Is(err, ErrTenantIDMissing) {
		t.Fatalf("err = %v, want ErrTenantIDMissing", err)
	}
	if !strings.Contains(err.Error(), "NEXT_PUBLIC_TENANT_ID is not set") {
		t.Errorf("message = %q", err.Error())
	}
}

func TestLoadConfigRequiresSessionSecret(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CLERK_SECRET_KEY", "")

	_, err := LoadConfig(missingFile(t))
	if err == nil || !strings.Contains(err.Error(), "CLERK_SECRET_KEY is required") {
		t.Fatalf("err = %v, want missing CLERK_SECRET_KEY", err)
	}
}

func TestLoadConfigDefaultsAndEnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("POLL_SCHEDULER_INTERVAL", "30s")
	t.Setenv("NEXT_PUBLIC_API_BASE_URL", "http://backend.local:8080/")

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "backend:\n  tenant_id: from-file\nrate_limit:\n  requests: 42\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Backend.TenantID != "tenant_demo" {
		t.Errorf("tenant = %q, env must win over the file", cfg.Backend.TenantID)
	}
	if cfg.Backend.BaseURL != "http://backend.local:8080" {
		t.Errorf("base url = %q, trailing slash must be trimmed", cfg.Backend.BaseURL)
	}
	if cfg.Scheduler.PollInterval != 30*time.Second || cfg.RateLimit.Requests != 42 {
		t.Errorf("scheduler interval = %v, rate limit = %d", cfg.Scheduler.PollInterval, cfg.RateLimit.Requests)
	}
	if cfg.Messaging.ProgressPollInterval != 2*time.Second || cfg.Messaging.MarketingRecipientCap != 1000 {
		t.Errorf("messaging defaults = %+v", cfg.Messaging)
	}
	if cfg.Server.AppURL != "http://localhost:3000" {
		t.Errorf("app url = %q", cfg.Server.AppURL)
	}
}

func TestLoadConfigRejectsShortCSRFKey(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CSRF_KEY", "too-short")

	if _, err := LoadConfig(missingFile(t)); err == nil || !strings.Contains(err.Error(), "32 bytes") {
		t.Errorf("err = %v", err)
	}
}
