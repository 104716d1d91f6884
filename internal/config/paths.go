package config

import (
	"os"
	"path/filepath"
)

// UserConfigPath returns the path to the user-level config file.
// This follows the XDG Base Directory Specification:
// - Linux: ~/.config/quacker/config.yml
// - macOS: ~/Library/Application Support/quacker/config.yml
// - Windows: %APPDATA%\quacker\config.yml
//
// If XDG_CONFIG_HOME is set, it will be respected on Linux.
func UserConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "quacker", "config.yml"), nil
}

// ProjectConfigPath returns the path to the project-level config file.
// This is always .quacker/config.yml relative to the current directory.
func ProjectConfigPath() string {
	return filepath.Join(".quacker", "config.yml")
}

// LegacyProjectConfigPath returns the path to the legacy project-level JSON config file.
func LegacyProjectConfigPath() string {
	return filepath.Join(".quacker", "config.json")
}
