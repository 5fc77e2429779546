package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_Success(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`storage:
  path: /var/lib/shiftbook/data.db

log:
  level: debug
  format: json

sync:
  app_name: Test Tracker
`)

	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Storage.Path != "/var/lib/shiftbook/data.db" {
		t.Errorf("unexpected storage path: %s", cfg.Storage.Path)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("unexpected log config: %+v", cfg.Log)
	}
	if cfg.Sync.AppName != "Test Tracker" {
		t.Errorf("unexpected app name: %s", cfg.Sync.AppName)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("{}"), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if !strings.HasSuffix(cfg.Storage.Path, filepath.Join("shiftbook", "shiftbook.db")) {
		t.Errorf("unexpected default storage path: %s", cfg.Storage.Path)
	}
	if cfg.Log.Level != "warn" || cfg.Log.Format != "console" {
		t.Errorf("unexpected default log config: %+v", cfg.Log)
	}
	if cfg.Sync.AppName == "" {
		t.Errorf("expected default app name")
	}
}

func TestLoad_InvalidLog(t *testing.T) {
	t.Parallel()

	for _, content := range []string{"log:\n  level: loud\n", "log:\n  format: xml\n"} {
		path := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("failed to write config file: %v", err)
		}
		if _, err := Load(path); err == nil {
			t.Fatalf("expected error for %q", content)
		}
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestResolve_Explicit(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("storage:\n  path: ~/x.db\n"), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Resolve(path)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if strings.HasPrefix(cfg.Storage.Path, "~") || !strings.HasSuffix(cfg.Storage.Path, "x.db") {
		t.Errorf("expected home-expanded path, got %s", cfg.Storage.Path)
	}
}
