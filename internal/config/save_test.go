package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.Database.DSN = "/var/lib/erp/erp.db"
	cfg.Connector.NewResponsibilityViews = true
	cfg.UI.Accent = "39"

	if err := SaveTo(path, cfg); err != nil {
		t.Fatalf("SaveTo returned error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("expected mode 0600, got %v", info.Mode().Perm())
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom returned error: %v", err)
	}
	if loaded.Database.DSN != cfg.Database.DSN {
		t.Errorf("expected dsn %q, got %q", cfg.Database.DSN, loaded.Database.DSN)
	}
	if !loaded.Connector.NewResponsibilityViews {
		t.Error("expected new_responsibility_views=true")
	}
	if loaded.Database.Dialect != "" {
		t.Errorf("expected empty dialect, got %q", loaded.Database.Dialect)
	}
	if loaded.UI.Accent != "39" {
		t.Errorf("expected accent 39, got %q", loaded.UI.Accent)
	}
}

func TestSaveToRequiresPath(t *testing.T) {
	if err := SaveTo("  ", Default()); err == nil {
		t.Fatal("expected error for empty path")
	}
}
