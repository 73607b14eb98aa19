package config

import (
	"os"
	"path/filepath"
)

const appDir = "fretdrill"

// baseDir resolves an XDG base directory: the environment override
// wins, otherwise the conventional path under the home directory, with
// the working directory as a last resort.
func baseDir(envVar string, fallback ...string) string {
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(append([]string{home}, fallback...)...)
}

// DefaultDBPath returns the default path for the SQLite database.
func DefaultDBPath() string {
	return filepath.Join(baseDir("XDG_DATA_HOME", ".local", "share"), appDir, "fretdrill.db")
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(baseDir("XDG_CONFIG_HOME", ".config"), appDir, "config.toml")
}
