package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if !cfg.History.Enabled {
		t.Error("Expected history.enabled=true by default")
	}
	if cfg.History.DBPath != "" {
		t.Errorf("Expected empty history.db_path, got %s", cfg.History.DBPath)
	}
	if cfg.History.MaxEntries != 10000 {
		t.Errorf("Expected history.max_entries=10000, got %d", cfg.History.MaxEntries)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Expected log.level=warn, got %s", cfg.Log.Level)
	}
}

func TestLoadFromFile_Missing(t *testing.T) {
	cfg, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if !cfg.History.Enabled {
		t.Error("Missing file should yield defaults")
	}
}

func TestLoadFromFile_MergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("history:\n  enabled: false\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if cfg.History.Enabled {
		t.Error("Expected history.enabled=false from file")
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Unset fields keep defaults, got log.level=%s", cfg.Log.Level)
	}
}

func TestLoadFromFile_InvalidLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("log:\n  level: chatty\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFromFile(path); err == nil {
		t.Error("Expected validation error for bad log level")
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.History.MaxEntries = 42
	cfg.Log.Level = "debug"
	if err := cfg.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if loaded.History.MaxEntries != 42 {
		t.Errorf("Expected max_entries=42, got %d", loaded.History.MaxEntries)
	}
	if loaded.Log.Level != "debug" {
		t.Errorf("Expected log.level=debug, got %s", loaded.Log.Level)
	}
}
