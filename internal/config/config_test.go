package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := load(t.TempDir())
	if err != nil {
		t.Fatalf("load without config file: %v", err)
	}
	if cfg.ReevaluateInterval != time.Minute {
		t.Fatalf("default reevaluate interval = %s", cfg.ReevaluateInterval)
	}
	if cfg.DispatcherBuffer != 64 {
		t.Fatalf("default dispatcher buffer = %d", cfg.DispatcherBuffer)
	}
	if cfg.DBPath == "" {
		t.Fatalf("db path default missing")
	}
}

func TestLoadReadsFile(t *testing.T) {
	dir := t.TempDir()
	raw := "db_path: /tmp/custom.db\nreevaluate_interval_sec: 5\ndispatcher_buffer: 8\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(raw), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBPath != "/tmp/custom.db" {
		t.Fatalf("db path = %q", cfg.DBPath)
	}
	if cfg.ReevaluateInterval != 5*time.Second {
		t.Fatalf("reevaluate interval = %s", cfg.ReevaluateInterval)
	}
	if cfg.DispatcherBuffer != 8 {
		t.Fatalf("dispatcher buffer = %d", cfg.DispatcherBuffer)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	dir := t.TempDir()
	raw := "reevaluate_interval_sec: 0\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(raw), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := load(dir); err == nil {
		t.Fatalf("expected error for non-positive interval")
	}
}
