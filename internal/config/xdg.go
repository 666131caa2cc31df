// Package config provides XDG path helpers and configuration loading.
package config

import (
	"os"
	"path/filepath"
)

const appDir = "stroop"

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

// XDGDataHome returns the XDG data home or a default fallback.
func XDGDataHome() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".local", "share")
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), appDir, "config.toml")
}

// DefaultDBPath returns the default path for the SQLite database.
func DefaultDBPath() string {
	return filepath.Join(XDGDataHome(), appDir, "stroop.db")
}

// DefaultJSONPath returns the default path of the JSON profile file.
func DefaultJSONPath() string {
	return filepath.Join(XDGDataHome(), appDir, "stroop_user_data.json")
}

// DefaultLogPath returns the log file used while a TUI owns the terminal.
func DefaultLogPath() string {
	return filepath.Join(XDGDataHome(), appDir, "stroop.log")
}

// DefaultStorePath returns the default data path for a store backend.
func DefaultStorePath(backend string) string {
	if backend == "json" {
		return DefaultJSONPath()
	}
	return DefaultDBPath()
}
