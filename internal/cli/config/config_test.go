package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fmacia/subclass-ide-helper/internal/registry"
)

func TestLoad(t *testing.T) {
	// Test loading with no config file (should use defaults)
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	os.Chdir(tmpDir)
	defer os.Chdir(oldWd)

	cfg, err := Load(New(), "")
	if err != nil {
		t.Fatalf("expected no error loading defaults, got %v", err)
	}

	if cfg == nil {
		t.Fatal("expected config to be non-nil")
	}

	// Check defaults
	if cfg.EntityTypes != "node" {
		t.Errorf("expected default entity types 'node', got %s", cfg.EntityTypes)
	}

	if cfg.ResultFile != "" {
		t.Errorf("expected empty default result file, got %s", cfg.ResultFile)
	}

	if cfg.Source.Kind != registry.KindManifest {
		t.Errorf("expected default source kind %q, got %s", registry.KindManifest, cfg.Source.Kind)
	}

	if cfg.Source.Manifest != DefaultManifest {
		t.Errorf("expected default manifest %q, got %s", DefaultManifest, cfg.Source.Manifest)
	}

	if cfg.File != "" {
		t.Errorf("expected no config file, got %s", cfg.File)
	}
}

func TestLoadWithConfigFile(t *testing.T) {
	// Create temporary directory with config file
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	os.Chdir(tmpDir)
	defer os.Chdir(oldWd)

	configContent := `
entity_types: node, media
result_file: web/_ide_helper_subclassed_bundles.php
excluded_classes: Page
source:
  kind: database
  driver: sqlite3
  dsn: metadata.db
typed_data:
  default_list_class: App\Field\ItemList
  list_classes:
    text_long: App\Field\TextList
`
	os.WriteFile("sih.yml", []byte(configContent), 0644)

	cfg, err := Load(New(), "")
	if err != nil {
		t.Fatalf("expected no error loading config, got %v", err)
	}

	if cfg.EntityTypes != "node, media" {
		t.Errorf("expected entity types 'node, media', got %s", cfg.EntityTypes)
	}

	if cfg.ResultFile != "web/_ide_helper_subclassed_bundles.php" {
		t.Errorf("unexpected result file %s", cfg.ResultFile)
	}

	if cfg.ExcludedClasses != "Page" {
		t.Errorf("expected excluded classes 'Page', got %s", cfg.ExcludedClasses)
	}

	if cfg.Source.Kind != registry.KindDatabase || cfg.Source.Driver != registry.DriverSQLite || cfg.Source.DSN != "metadata.db" {
		t.Errorf("unexpected source config %+v", cfg.Source)
	}

	if cfg.TypedData.DefaultListClass != `App\Field\ItemList` {
		t.Errorf("unexpected default list class %s", cfg.TypedData.DefaultListClass)
	}

	if cfg.TypedData.ListClasses["text_long"] != `App\Field\TextList` {
		t.Errorf("unexpected list classes %v", cfg.TypedData.ListClasses)
	}

	// The discovered file is reported so it can be watched
	if filepath.Base(cfg.File) != "sih.yml" {
		t.Errorf("expected discovered config file sih.yml, got %q", cfg.File)
	}
}

func TestLoadExplicitPath(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "custom.yaml")
	os.WriteFile(path, []byte("entity_types: taxonomy_term\n"), 0644)

	cfg, err := Load(New(), path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.EntityTypes != "taxonomy_term" {
		t.Errorf("expected entity types 'taxonomy_term', got %s", cfg.EntityTypes)
	}

	if cfg.File != path {
		t.Errorf("expected config file %s, got %s", path, cfg.File)
	}
}

func TestLoadExplicitPathMissing(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "missing.yml"))
	if err == nil {
		t.Fatal("expected error for missing explicit config file")
	}

	if !strings.Contains(err.Error(), "failed to read config file") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadEnvironmentOverride(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	os.Chdir(tmpDir)
	defer os.Chdir(oldWd)

	t.Setenv("SIH_ENTITY_TYPES", "media")
	t.Setenv("SIH_SOURCE_MANIFEST", "export/metadata.yml")

	cfg, err := Load(New(), "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.EntityTypes != "media" {
		t.Errorf("expected entity types from env, got %s", cfg.EntityTypes)
	}

	if cfg.Source.Manifest != "export/metadata.yml" {
		t.Errorf("expected manifest from env, got %s", cfg.Source.Manifest)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		source  registry.SourceConfig
		wantErr bool
	}{
		{
			name:    "manifest source",
			source:  registry.SourceConfig{Kind: registry.KindManifest, Manifest: "metadata.yml"},
			wantErr: false,
		},
		{
			name:    "manifest source without path",
			source:  registry.SourceConfig{Kind: registry.KindManifest},
			wantErr: true,
		},
		{
			name:    "database source",
			source:  registry.SourceConfig{Kind: registry.KindDatabase, DSN: "postgres://localhost/site"},
			wantErr: false,
		},
		{
			name:    "database source without dsn",
			source:  registry.SourceConfig{Kind: registry.KindDatabase, Driver: registry.DriverPgx},
			wantErr: true,
		},
		{
			name:    "unknown driver",
			source:  registry.SourceConfig{Kind: registry.KindDatabase, Driver: "mysql", DSN: "x"},
			wantErr: true,
		},
		{
			name:    "unknown kind",
			source:  registry.SourceConfig{Kind: "ldap"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateConfig(&Config{Source: tt.source})
			if (err != nil) != tt.wantErr {
				t.Errorf("validateConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
