package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/etnz/cambio"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("CAMBIO_DIR", "")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if cfg.HomeCurrency != cambio.DefaultHomeCurrency {
		t.Errorf("HomeCurrency = %q, want %q", cfg.HomeCurrency, cambio.DefaultHomeCurrency)
	}
	if cfg.DefaultWallet != "Caja principal" {
		t.Errorf("DefaultWallet = %q, want %q", cfg.DefaultWallet, "Caja principal")
	}
	if cfg.DataDir == "" {
		t.Error("DataDir is empty, want a default location")
	}
}

func TestLoadConfig_File(t *testing.T) {
	t.Setenv("CAMBIO_DIR", "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "data_dir: /srv/cambio\nhome_currency: EUR\ndefault_wallet: Front desk\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if cfg.DataDir != "/srv/cambio" {
		t.Errorf("DataDir = %q, want /srv/cambio", cfg.DataDir)
	}
	if cfg.HomeCurrency != "EUR" {
		t.Errorf("HomeCurrency = %q, want EUR", cfg.HomeCurrency)
	}
	if cfg.DefaultWallet != "Front desk" {
		t.Errorf("DefaultWallet = %q, want %q", cfg.DefaultWallet, "Front desk")
	}
}

func TestLoadConfig_EnvOverridesDataDir(t *testing.T) {
	t.Setenv("CAMBIO_DIR", "/tmp/override")
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("data_dir: /srv/cambio\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if cfg.DataDir != "/tmp/override" {
		t.Errorf("DataDir = %q, want the CAMBIO_DIR override", cfg.DataDir)
	}
}

func TestLoadConfig_BadYAML(t *testing.T) {
	t.Setenv("CAMBIO_DIR", "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("{not yaml"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("LoadConfig() with bad YAML = nil error, want one")
	}
}
