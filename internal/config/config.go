// Package config loads the optional TOML configuration file.
package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

type Config struct {
	// DatabasePath locates the sqlite snapshot database.
	DatabasePath string `toml:"database_path"`
	// DefaultCurrency seeds the currency of a store that has never been
	// written. Cosmetic only; recorded entries keep their own code.
	DefaultCurrency string `toml:"default_currency"`
}

func DefaultConfig() Config {
	return Config{
		DatabasePath:    filepath.Join(dataDir(), "timeismoney.db"),
		DefaultCurrency: "USD",
	}
}

// DefaultPath is where Load looks when no --config flag is given.
func DefaultPath() string {
	return filepath.Join(configHome(), "timeismoney", "config.toml")
}

// Load reads the config file at path, or DefaultPath when path is empty.
// A missing file is not an error: defaults apply, and fields absent from
// the file keep their default values.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	cfg := DefaultConfig()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func configHome() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	if runtime.GOOS == "windows" {
		return filepath.Join(home, "AppData", "Roaming")
	}
	return filepath.Join(home, ".config")
}

func dataDir() string {
	return filepath.Join(configHome(), "timeismoney")
}
