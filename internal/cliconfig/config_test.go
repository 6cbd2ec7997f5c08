package cliconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_RequiresBaseURL(t *testing.T) {
	t.Setenv("TUSCLIENT_CONFIG_PATH", "")
	t.Setenv("TUSCLIENT_BASE_URL", "")
	chdirTemp(t)

	if _, _, err := Load(); err == nil {
		t.Error("expected error when no base URL is configured")
	}
}

func TestLoad_FromFile(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "tusclient.yaml")
	content := "baseUrl: https://uploads.example.com\napiPath: /v2/files\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, source, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != "https://uploads.example.com" {
		t.Errorf("expected base URL from file, got %q", cfg.BaseURL)
	}
	if cfg.APIPath != "/v2/files" {
		t.Errorf("expected api path from file, got %q", cfg.APIPath)
	}
	if source != path {
		t.Errorf("expected source %q, got %q", path, source)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "tusclient.yaml")
	content := "baseUrl: https://from-file.example.com\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("TUSCLIENT_BASE_URL", "https://from-env.example.com")

	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != "https://from-env.example.com" {
		t.Errorf("expected env var to override file, got %q", cfg.BaseURL)
	}
}

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(orig) })
	return dir
}
