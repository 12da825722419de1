package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := `
server:
  port: "9090"
database:
  driver: sqlite
  dsn: file:test.db
ai:
  model: gemini-test
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Database.Driver != "sqlite" || cfg.AI.Model != "gemini-test" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.AI.TopK != 40 || cfg.AI.Temperature != 0.5 || cfg.Log.Level != "info" {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port == "" || cfg.AI.MaxOutputTokens != 16384 {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [unclosed"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	env := map[string]string{
		"PORT":                 "7000",
		"GEMINI_API_KEY":       "secret",
		"DATABASE_DRIVER":      "postgres",
		"DATABASE_DSN":         "postgres://localhost/quiz",
		"REDIS_ADDR":           "localhost:6379",
		"REDIS_DB":             "2",
		"CORS_ALLOWED_ORIGINS": "http://a.test,http://b.test",
		"LOG_LEVEL":            "   ",
	}
	cfg := Default()
	applyEnv(&cfg, func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	if cfg.Server.Port != "7000" || cfg.AI.APIKey != "secret" || cfg.Database.Driver != "postgres" {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if cfg.Redis.Addr != "localhost:6379" || cfg.Redis.DB != 2 || len(cfg.Server.AllowedOrigins) != 2 {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if cfg.Log.Level != "info" {
		t.Fatalf("blank env should not override, got %q", cfg.Log.Level)
	}
}

func TestTTLDuration(t *testing.T) {
	if got := TTLDuration("", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback, got %s", got)
	}
	if got := TTLDuration("bogus", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback for bad input, got %s", got)
	}
	if got := TTLDuration("90s", time.Minute); got != 90*time.Second {
		t.Fatalf("expected 90s, got %s", got)
	}
}
