package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("loading missing config: %v", err)
	}
	if cfg.ListenAddr != ":8787" {
		t.Errorf("expected default listen addr :8787, got %s", cfg.ListenAddr)
	}
	if cfg.DatabasePath == "" {
		t.Error("expected default database path to be set")
	}
	if cfg.Collections == nil {
		t.Error("expected collections map to be initialized")
	}
}

func TestLoadConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := &Config{
		ListenAddr:   ":9999",
		DatabasePath: filepath.Join(dir, "catalog.db"),
		Collections: map[string]CollectionInfo{
			"clinical_study": {Enabled: true},
			"data_domain":    {Enabled: false},
		},
	}
	if err := cfg.SaveConfig(path); err != nil {
		t.Fatalf("saving config: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}
	if loaded.ListenAddr != ":9999" {
		t.Errorf("expected listen addr :9999, got %s", loaded.ListenAddr)
	}
	if loaded.DatabasePath != cfg.DatabasePath {
		t.Errorf("expected database path %s, got %s", cfg.DatabasePath, loaded.DatabasePath)
	}
	if loaded.CollectionEnabled("data_domain") {
		t.Error("expected data_domain to be disabled")
	}
	if !loaded.CollectionEnabled("clinical_study") {
		t.Error("expected clinical_study to be enabled")
	}
}

func TestCollectionEnabledDefaultsToTrue(t *testing.T) {
	cfg := &Config{Collections: map[string]CollectionInfo{}}
	if !cfg.CollectionEnabled("scientific_paper") {
		t.Error("collections absent from config should be enabled")
	}

	cfg.SetCollectionEnabled("scientific_paper", false)
	if cfg.CollectionEnabled("scientific_paper") {
		t.Error("expected scientific_paper to be disabled after toggle")
	}
}

func TestSaveTemplateConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := &Config{DatabasePath: filepath.Join(dir, "catalog.db")}
	if err := cfg.SaveTemplateConfig(path); err != nil {
		t.Fatalf("saving template config: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading template config: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected template config to be non-empty")
	}
}

func TestListCollectionsSorted(t *testing.T) {
	cfg := &Config{Collections: map[string]CollectionInfo{
		"scientific_paper": {Enabled: true},
		"clinical_study":   {Enabled: true},
		"data_domain":      {Enabled: true},
	}}

	names := cfg.ListCollections()
	want := []string{"clinical_study", "data_domain", "scientific_paper"}
	if len(names) != len(want) {
		t.Fatalf("expected %d collections, got %d", len(want), len(names))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], names[i])
		}
	}
}
