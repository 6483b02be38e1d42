package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	raw := `
server:
  port: "9090"
postgres:
  url: "postgres://localhost/quiz"
redis:
  addr: "localhost:6379"
  ttl: 5m
auth:
  issuer_url: "https://quiz.example.clerk.accounts.dev"
quiz:
  questions: 7
  points: 20
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("PORT", "")
	t.Setenv("DATABASE_URL", "")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Postgres.URL != "postgres://localhost/quiz" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Quiz.Questions != 7 || cfg.Quiz.Points != 20 {
		t.Fatalf("quiz section not parsed: %+v", cfg.Quiz)
	}

	t.Setenv("PORT", "3000")
	t.Setenv("CLERK_ISSUER_URL", "https://other.clerk.accounts.dev")
	cfg, err = Load(path)
	if err != nil {
		t.Fatalf("load with env: %v", err)
	}
	if cfg.Server.Port != "3000" {
		t.Fatalf("PORT env should override yaml, got %q", cfg.Server.Port)
	}
	if cfg.Auth.IssuerURL != "https://other.clerk.accounts.dev" {
		t.Fatalf("CLERK_ISSUER_URL env should override yaml, got %q", cfg.Auth.IssuerURL)
	}
}

func TestTTLDuration(t *testing.T) {
	if d := TTLDuration("", time.Minute); d != time.Minute {
		t.Fatalf("empty ttl = %v, want fallback", d)
	}
	if d := TTLDuration("30s", time.Minute); d != 30*time.Second {
		t.Fatalf("parsed ttl = %v, want 30s", d)
	}
	if d := TTLDuration("garbage", time.Minute); d != time.Minute {
		t.Fatalf("invalid ttl = %v, want fallback", d)
	}
}
