package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "amaris.yaml"))
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}

	if cfg.Version != 1 || cfg.PackageManager != "bun" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.OverwriteScriptsEnabled() {
		t.Fatal("OverwriteScriptsEnabled() = true, want false by default")
	}
	if cfg.InstallTimeout() != 600*time.Second || cfg.FetchTimeout() != 60*time.Second {
		t.Fatalf("timeouts = %v / %v", cfg.InstallTimeout(), cfg.FetchTimeout())
	}
}

func TestLoadOverridesAndFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "amaris.yaml")
	content := `version: 1
providers_dir: ./team-providers
overwrite_scripts: true
timeouts:
  install_s: 120
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}

	if cfg.ProvidersDir != "./team-providers" {
		t.Fatalf("ProvidersDir = %q", cfg.ProvidersDir)
	}
	if !cfg.OverwriteScriptsEnabled() {
		t.Fatal("OverwriteScriptsEnabled() = false, want true")
	}
	if cfg.InstallTimeout() != 120*time.Second {
		t.Fatalf("InstallTimeout() = %v, want 120s", cfg.InstallTimeout())
	}
	// Omitted nested field falls back.
	if cfg.FetchTimeout() != 60*time.Second {
		t.Fatalf("FetchTimeout() = %v, want default 60s", cfg.FetchTimeout())
	}
	if cfg.PackageManager != "bun" {
		t.Fatalf("PackageManager = %q, want default bun", cfg.PackageManager)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "amaris.yaml")
	if err := os.WriteFile(path, []byte("version: [unclosed"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("Load() = nil, want parse error")
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	overwrite := true
	in := Default()
	in.ProvidersDir = "/srv/providers"
	in.OverwriteScripts = &overwrite

	data, err := in.Marshal()
	if err != nil {
		t.Fatalf("Marshal() = %v", err)
	}

	path := filepath.Join(t.TempDir(), "amaris.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	out, err := Load(path)
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	if out.ProvidersDir != in.ProvidersDir || !out.OverwriteScriptsEnabled() {
		t.Fatalf("round trip = %+v", out)
	}
}
