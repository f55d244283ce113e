package config

import (
	"testing"
	"time"
)

// --- Load ---

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DebounceWindow != 500*time.Millisecond {
		t.Errorf("DebounceWindow = %v, want 500ms default", cfg.DebounceWindow)
	}
	if cfg.LogJSON {
		t.Error("LogJSON should default to false")
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("RECERT_DATA_DIR", "/var/lib/recert")
	t.Setenv("RECERT_CATALOG_PATH", "/etc/recert/catalog.yaml")
	t.Setenv("RECERT_DEBOUNCE_WINDOW", "2s")
	t.Setenv("RECERT_LOG_JSON", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DataDir != "/var/lib/recert" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.CatalogPath != "/etc/recert/catalog.yaml" {
		t.Errorf("CatalogPath = %q", cfg.CatalogPath)
	}
	if cfg.DebounceWindow != 2*time.Second {
		t.Errorf("DebounceWindow = %v, want 2s", cfg.DebounceWindow)
	}
	if !cfg.LogJSON {
		t.Error("LogJSON should be true")
	}
}

func TestLoad_BadDuration(t *testing.T) {
	t.Setenv("RECERT_DEBOUNCE_WINDOW", "soon")
	if _, err := Load(); err == nil {
		t.Error("expected error for unparseable duration")
	}
}
