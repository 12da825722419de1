package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"quiz-assessment-service/internal/config"
	"quiz-assessment-service/internal/domain"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"GEMINI_API_KEY", "DATABASE_DRIVER", "DATABASE_DSN", "REDIS_ADDR", "SEQUENCE_BACKEND"} {
		t.Setenv(key, "")
	}
}

func TestSequenceBackendDefaults(t *testing.T) {
	cases := []struct {
		driver, backend, want string
	}{
		{"", "", backendMemory},
		{"sqlite", "", backendSQL},
		{"postgres", "", backendSQL},
		{"postgres", "postgres", backendPostgres},
		{"", "redis", backendRedis},
	}
	for _, tc := range cases {
		cfg := config.Default()
		cfg.Database.Driver = tc.driver
		cfg.Sequence.Backend = tc.backend
		if got := sequenceBackend(cfg); got != tc.want {
			t.Fatalf("driver=%q backend=%q: expected %s, got %s", tc.driver, tc.backend, tc.want, got)
		}
	}
}

func TestBuildRuntimeRejectsUnusableSequence(t *testing.T) {
	ctx := context.Background()
	for _, backend := range []string{"sql", "redis", "postgres", "etcd"} {
		cfg := config.Default()
		cfg.Sequence.Backend = backend
		if _, err := buildRuntime(ctx, cfg); err == nil {
			t.Fatalf("backend %q: expected error without its dependency", backend)
		}
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.Database.Driver = "sqlite"
	cfg.Database.DSN = ":memory:"
	rt, err := buildRuntime(ctx, cfg)
	if err != nil {
		t.Fatalf("runtime: %v", err)
	}
	defer rt.Close()

	quizzes, err := loadSeed(seedYAML)
	if err != nil {
		t.Fatalf("load seed: %v", err)
	}
	if len(quizzes) != 8 {
		t.Fatalf("expected 8 starter quizzes, got %d", len(quizzes))
	}

	created, err := seed(ctx, rt.service, quizzes)
	if err != nil || created != 8 {
		t.Fatalf("first seed: created=%d err=%v", created, err)
	}
	created, err = seed(ctx, rt.service, quizzes)
	if err != nil || created != 0 {
		t.Fatalf("second seed: created=%d err=%v", created, err)
	}

	basics, err := rt.service.ListQuizzes(ctx, domain.QuizFilter{Category: "javascript", Level: "basic"})
	if err != nil || len(basics) != 1 {
		t.Fatalf("expected one javascript basic quiz, got %v (%v)", basics, err)
	}
	questions, err := rt.service.ListQuestions(ctx, basics[0].ID)
	if err != nil || len(questions) != 5 {
		t.Fatalf("expected 5 questions, got %d (%v)", len(questions), err)
	}

	shells, err := rt.service.ListQuizzes(ctx, domain.QuizFilter{Level: "advanced"})
	if err != nil || len(shells) != 4 {
		t.Fatalf("expected 4 advanced shells, got %d (%v)", len(shells), err)
	}
}

func TestGenerateCommandFallsBackToStaticBank(t *testing.T) {
	clearEnv(t)
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{
		"generate",
		"--config", filepath.Join(t.TempDir(), "missing.yaml"),
		"--topic", "Unmapped Topic XYZ",
		"--difficulty", "hard",
		"--count", "7",
	})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if got := out.String(); !strings.Contains(got, "with 7 questions (static)") {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestGenerateCommandValidatesInput(t *testing.T) {
	clearEnv(t)
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{
		"generate",
		"--config", filepath.Join(t.TempDir(), "missing.yaml"),
		"--topic", "Go",
		"--count", "2",
	})
	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestMigrateRequiresDriver(t *testing.T) {
	clearEnv(t)
	if err := runMigrationsWithConfig(context.Background(), config.Default()); err == nil {
		t.Fatalf("expected error without a database driver")
	}
}
