package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_appliesDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
analysis:
  endpoint: https://example.openai.azure.com
  deployment: gpt-4o
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "localhost" || cfg.Server.Port != 8080 {
		t.Errorf("server defaults: %+v", cfg.Server)
	}
	if cfg.Storage.Backend != BackendMemory {
		t.Errorf("storage backend default: %q", cfg.Storage.Backend)
	}
	if cfg.Analysis.APIVersion != "2024-06-01" {
		t.Errorf("api version default: %q", cfg.Analysis.APIVersion)
	}
	if cfg.Analysis.Timeout() != 45*time.Second {
		t.Errorf("analysis timeout default: %v", cfg.Analysis.Timeout())
	}
	if cfg.Analysis.MaxDocumentChars != 12000 {
		t.Errorf("max document chars default: %d", cfg.Analysis.MaxDocumentChars)
	}
	if cfg.Analysis.DefaultObjective == "" {
		t.Error("default objective missing")
	}
	if cfg.Download.MaxBytes != 10*1024*1024 {
		t.Errorf("download cap default: %d", cfg.Download.MaxBytes)
	}
}

func TestLoad_overridesDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
debug: true
server:
  host: 0.0.0.0
  port: 9090
storage:
  backend: sqlite
analysis:
  endpoint: https://example.openai.azure.com
  deployment: gpt-4o
  timeout_seconds: 10
  max_document_chars: 500
download:
  max_bytes: 1024
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug || cfg.Server.Host != "0.0.0.0" || cfg.Server.Port != 9090 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Analysis.Timeout() != 10*time.Second || cfg.Analysis.MaxDocumentChars != 500 {
		t.Errorf("analysis overrides: %+v", cfg.Analysis)
	}
	if cfg.Download.MaxBytes != 1024 {
		t.Errorf("download override: %d", cfg.Download.MaxBytes)
	}
}

func TestLoad_expandsDatabasePathRelativeToConfigDir(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
storage:
  backend: sqlite
  database_path: ./data/sessions.db
analysis:
  endpoint: https://example.openai.azure.com
  deployment: gpt-4o
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(dir, "data/sessions.db")
	if cfg.Storage.DatabasePath != want {
		t.Errorf("database path = %q, want %q", cfg.Storage.DatabasePath, want)
	}
}

func TestLoad_missingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_invalidYAML(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "server: [not: valid")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid yaml")
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		ApplyDefaults(cfg)
		cfg.Analysis.Endpoint = "https://example.openai.azure.com"
		cfg.Analysis.Deployment = "gpt-4o"
		return cfg
	}

	if err := base().Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}

	cfg := base()
	cfg.Analysis.Endpoint = ""
	if err := cfg.Validate(); err == nil {
		t.Error("missing endpoint accepted")
	}

	cfg = base()
	cfg.Analysis.Deployment = ""
	if err := cfg.Validate(); err == nil {
		t.Error("missing deployment accepted")
	}

	cfg = base()
	cfg.Storage.Backend = "postgres"
	if err := cfg.Validate(); err == nil {
		t.Error("unknown backend accepted")
	}
}
