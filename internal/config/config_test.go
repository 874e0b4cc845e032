package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "8080"
trivia:
  defaultTtl: 45s
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Fatalf("port = %q", cfg.Server.Port)
	}
	if cfg.Trivia.DefaultAward != 25 {
		t.Fatalf("default award = %d, want 25", cfg.Trivia.DefaultAward)
	}
	if cfg.Trivia.ShinyMultiplier != 5 || cfg.Trivia.SuperQueueCap != 5 {
		t.Fatalf("defaults not applied: %+v", cfg.Trivia)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidateRejectsBadTunables(t *testing.T) {
	path := writeConfig(t, `
trivia:
  shinyProbability: 1.5
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected validation error for probability above 1")
	}
}

func TestValidateRejectsUnnamedSource(t *testing.T) {
	path := writeConfig(t, `
sources:
  - url: https://example.com/q
    weight: 1
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected validation error for a source without a name")
	}
}

func TestTTLDuration(t *testing.T) {
	if got := TTLDuration("90s", time.Minute); got != 90*time.Second {
		t.Fatalf("got %v", got)
	}
	if got := TTLDuration("", time.Minute); got != time.Minute {
		t.Fatalf("empty: got %v", got)
	}
	if got := TTLDuration("nonsense", time.Minute); got != time.Minute {
		t.Fatalf("malformed: got %v", got)
	}
}
