package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Addr != ":8090" {
		t.Fatalf("addr = %q", cfg.HTTP.Addr)
	}
	if cfg.Reminder.WindowDays != 7 {
		t.Fatalf("window_days = %d", cfg.Reminder.WindowDays)
	}
	if cfg.Push.Subject != "mailto:admin@payalert.app" {
		t.Fatalf("subject = %q", cfg.Push.Subject)
	}
	if cfg.PushConfigured() {
		t.Fatal("push should be unconfigured by default")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
http:
  addr: ":9000"
push:
  vapid_public_key: pub
  vapid_private_key: priv
reminder:
  window_days: 3
cron:
  secret: sweep-secret
  enabled: true
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Addr != ":9000" || cfg.Reminder.WindowDays != 3 {
		t.Fatalf("cfg = %+v", cfg)
	}
	if !cfg.PushConfigured() {
		t.Fatal("push should be configured")
	}
	if !cfg.Cron.Enabled || cfg.Cron.Secret != "sweep-secret" {
		t.Fatalf("cron cfg = %+v", cfg.Cron)
	}
}
