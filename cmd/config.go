package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/etnz/cambio"
	"gopkg.in/yaml.v3"
)

// Config holds the CLI-side settings; the engine itself is configured from
// it once at load time.
type Config struct {
	// DataDir is where the book snapshot lives. Overridden by CAMBIO_DIR.
	DataDir string `yaml:"data_dir"`
	// HomeCurrency denominates rates, totals and capital.
	HomeCurrency string `yaml:"home_currency"`
	// DefaultWallet names the wallet created on first run.
	DefaultWallet string `yaml:"default_wallet"`
}

// LoadConfig reads the YAML config at path, or the default location under
// the data dir. A missing file yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		DataDir:       defaultDataDir(),
		HomeCurrency:  cambio.DefaultHomeCurrency,
		DefaultWallet: "Caja principal",
	}
	if dir := os.Getenv("CAMBIO_DIR"); dir != "" {
		cfg.DataDir = dir
	}

	if path == "" {
		path = filepath.Join(cfg.DataDir, "config.yaml")
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("could not read config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("could not parse config %q: %w", path, err)
	}
	if dir := os.Getenv("CAMBIO_DIR"); dir != "" {
		cfg.DataDir = dir
	}
	return cfg, nil
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".cambio"
	}
	return filepath.Join(home, ".cambio")
}
