package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "8080" || cfg.Quiz.Amount != 10 || cfg.OpenTDB.BaseURL != "https://opentdb.com" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
server:
  port: "9090"
quiz:
  amount: 5
  difficulty: hard
redis:
  addr: localhost:6379
sqlite:
  path: results.db
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Quiz.Amount != 5 || cfg.Quiz.Difficulty != "hard" {
		t.Fatalf("expected overrides, got %+v", cfg)
	}
	if cfg.Quiz.Type != "multiple" || cfg.Redis.TTL != "30m" {
		t.Fatalf("expected untouched defaults to survive, got %+v", cfg)
	}
	if cfg.Redis.Addr != "localhost:6379" || cfg.SQLite.Path != "results.db" {
		t.Fatalf("expected backends, got %+v", cfg)
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [oops"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestTTLDuration(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Duration
	}{
		{"", time.Minute},
		{"5s", 5 * time.Second},
		{"soon", time.Minute},
	}
	for _, tc := range tests {
		if got := TTLDuration(tc.raw, time.Minute); got != tc.want {
			t.Fatalf("TTLDuration(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}
