package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/recertlabs/recert/internal/config"
	"github.com/recertlabs/recert/internal/logging"
)

// --- New ---

func TestNew_WithEmbeddedCatalog(t *testing.T) {
	dir := t.TempDir()
	s, cleanup, err := New(config.Config{DataDir: dir}, logging.Nop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer cleanup()
	if s == nil {
		t.Fatal("server is nil")
	}

	if _, err := os.Stat(filepath.Join(dir, "recert.db")); err != nil {
		t.Errorf("database not created: %v", err)
	}
}

func TestNew_WithCatalogFile(t *testing.T) {
	dir := t.TempDir()
	catPath := filepath.Join(dir, "catalog.yaml")
	yaml := `
version: custom-1
categories: [general]
questions:
  - {id: Q1, requirement: CORE_1, text: t, weight: 1, category: general}
`
	if err := os.WriteFile(catPath, []byte(yaml), 0o600); err != nil {
		t.Fatalf("writing catalog: %v", err)
	}

	_, cleanup, err := New(config.Config{DataDir: dir, CatalogPath: catPath}, logging.Nop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	cleanup()
}

func TestNew_BadCatalogPath(t *testing.T) {
	_, cleanup, err := New(config.Config{
		DataDir:     t.TempDir(),
		CatalogPath: "/does/not/exist.yaml",
	}, logging.Nop())
	defer cleanup()
	if err == nil {
		t.Fatal("expected error for missing catalog file")
	}
}
