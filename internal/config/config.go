package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// FilePermissions is the default permission mode for regular files (read/write for owner, read for others)
	FilePermissions = 0644
	// DirPermissions is the default permission mode for directories (rwxr-xr-x)
	DirPermissions = 0755

	// LocalSettingsFile overrides the global settings when present in the working directory
	LocalSettingsFile = ".text2image.yaml"
)

var (
	// ConfigDir is the global configuration directory (~/.text2image)
	ConfigDir string

	// SettingsFile is the global settings file
	SettingsFile string

	// KeybindsFile holds TUI keybinding overrides
	KeybindsFile string

	// JournalPath is the SQLite generation journal
	JournalPath string

	// LogFile receives logs while the TUI owns the terminal
	LogFile string
)

const defaultSettingsYAML = `# text2image settings
base_url: http://localhost:5000
# timeout: 60s
resolve_policy: last-resolved
history_limit: 10
journal: true
log_level: info
`

// Initialize sets up the configuration directory and default files.
// It creates ~/.text2image/ if it doesn't exist.
func Initialize() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	ConfigDir = filepath.Join(homeDir, ".text2image")
	SettingsFile = filepath.Join(ConfigDir, "config.yaml")
	KeybindsFile = filepath.Join(ConfigDir, "keybinds.json")
	JournalPath = filepath.Join(ConfigDir, "journal.db")
	LogFile = filepath.Join(ConfigDir, "text2image.log")

	if err := os.MkdirAll(ConfigDir, DirPermissions); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", ConfigDir, err)
	}

	if _, err := os.Stat(SettingsFile); os.IsNotExist(err) {
		if err := os.WriteFile(SettingsFile, []byte(defaultSettingsYAML), FilePermissions); err != nil {
			return fmt.Errorf("failed to create settings file: %w", err)
		}
	}

	return nil
}

// GetSettingsFilePath returns the settings file path (local or global)
func GetSettingsFilePath() string {
	if _, err := os.Stat(LocalSettingsFile); err == nil {
		return LocalSettingsFile
	}
	return SettingsFile
}

// ExpandPath expands a leading ~/ to the home directory.
// Relative paths are kept relative to the working directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, path[2:]), nil
}
