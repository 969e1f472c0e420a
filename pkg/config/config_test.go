package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNew_PopulatesDefaults(t *testing.T) {
	cfg := New()
	if cfg.Database.MaxOpenConns != 10 {
		t.Fatalf("expected default MaxOpenConns=10, got %d", cfg.Database.MaxOpenConns)
	}
	if !cfg.Database.MigrateOnStart {
		t.Fatalf("expected MigrateOnStart default true")
	}
	if cfg.Tokenization.Enabled {
		t.Fatalf("expected tokenization disabled by default")
	}
	if cfg.Scheduler.TickInterval != 30*time.Second {
		t.Fatalf("expected 30s default tick interval, got %v", cfg.Scheduler.TickInterval)
	}
	if cfg.Pagination.DefaultLimit != 20 || cfg.Pagination.MaxLimit != 100 {
		t.Fatalf("expected default pagination bounds 20/100, got %d/%d", cfg.Pagination.DefaultLimit, cfg.Pagination.MaxLimit)
	}
}

func TestLoad_AppliesYAMLOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlContent := "database:\n  dsn: \"postgres://example/test\"\n  max_open_conns: 42\n"
	if err := os.WriteFile(path, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Database.DSN != "postgres://example/test" {
		t.Fatalf("expected DSN override from yaml, got %q", cfg.Database.DSN)
	}
	if cfg.Database.MaxOpenConns != 42 {
		t.Fatalf("expected MaxOpenConns override from yaml, got %d", cfg.Database.MaxOpenConns)
	}
	if cfg.Tokenization.Enabled {
		t.Fatalf("expected untouched defaults to survive yaml overlay")
	}
}

func TestLoad_AppliesEnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("DATABASE_DSN", "postgres://env/test")
	t.Setenv("AUCTION_MIN_DURATION_SECONDS", "7200")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Database.DSN != "postgres://env/test" {
		t.Fatalf("expected DSN from env, got %q", cfg.Database.DSN)
	}
	if cfg.Auction.MinDurationSeconds != 7200 {
		t.Fatalf("expected MinDurationSeconds from env, got %d", cfg.Auction.MinDurationSeconds)
	}
}
