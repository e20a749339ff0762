package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// AppDirName is the per-user directory name shared by the app and the CLI.
const AppDirName = "gitdesk"

// Well-known file names inside the data directory.
const (
	RegistryFile = "repositories.json"
	SettingsFile = "settings.yaml"
	JournalFile  = "journal.db"
	LogFile      = "gitdesk.log"
)

// DataDir returns the directory to store application data.
// Mirrors common desktop app conventions:
// - Linux: $XDG_DATA_HOME or ~/.local/share/gitdesk
// - macOS: ~/Library/Application Support/gitdesk
// - Windows: %APPDATA%/gitdesk (fallbacks to UserConfigDir)
//
// GITDESK_DATA_DIR overrides the platform default.
func DataDir() (string, error) {
	dir := os.Getenv("GITDESK_DATA_DIR")
	if dir == "" {
		var err error
		dir, err = platformDir()
		if err != nil {
			return "", err
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("ensure data directory: %w", err)
	}
	return dir, nil
}

func platformDir() (string, error) {
	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		return filepath.Join(home, "Library", "Application Support", AppDirName), nil
	case "windows":
		base := os.Getenv("APPDATA")
		if base == "" {
			var err error
			base, err = os.UserConfigDir()
			if err != nil {
				return "", fmt.Errorf("resolve config directory: %w", err)
			}
		}
		return filepath.Join(base, AppDirName), nil
	default:
		base := os.Getenv("XDG_DATA_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("resolve home directory: %w", err)
			}
			base = filepath.Join(home, ".local", "share")
		}
		return filepath.Join(base, AppDirName), nil
	}
}
