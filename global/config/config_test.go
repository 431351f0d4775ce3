package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 10000 || cfg.Archive.IntervalSec != 3600 {
		t.Fatalf("defaults wrong: %+v", cfg)
	}
}

func TestLoadYamlOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.yaml")
	yaml := `
port: 8080
webhook_url: https://discord.test/hook
presence_window_sec: 60
ranks:
  owner1:
    rank: Owner
    emoji: "👑"
    color: "#FFD700"
    level: 3
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 8080 {
		t.Fatalf("port not overridden: %d", cfg.Port)
	}
	if cfg.WebhookURL != "https://discord.test/hook" {
		t.Fatalf("webhook not loaded: %q", cfg.WebhookURL)
	}
	if cfg.PresenceWindowSec != 60 {
		t.Fatalf("presence window: %d", cfg.PresenceWindowSec)
	}
	e, ok := cfg.Ranks["owner1"]
	if !ok || e.Level != 3 || e.Rank != "Owner" {
		t.Fatalf("ranks not loaded: %+v", cfg.Ranks)
	}
	// yaml 没写的字段保留默认值
	if cfg.Archive.Dir != "archives" {
		t.Fatalf("default lost: %q", cfg.Archive.Dir)
	}
}

func TestEnvOverridesYaml(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("APP_SECRET", "from-env")
	t.Setenv("NATS_SERVERS", "nats://a:4222, nats://b:4222 ,")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 9999 {
		t.Fatalf("env port: %d", cfg.Port)
	}
	if cfg.AppSecret != "from-env" {
		t.Fatalf("env secret: %q", cfg.AppSecret)
	}
	if len(cfg.Nats.Servers) != 2 || cfg.Nats.Servers[1] != "nats://b:4222" {
		t.Fatalf("nats servers parse: %v", cfg.Nats.Servers)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("missing file should error")
	}
}
