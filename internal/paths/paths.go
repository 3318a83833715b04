// Package paths resolves the per-user data directory shared by the
// widget and producer processes, and names the files inside it.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// File names inside the data directory.
const (
	ProgressFile = "progress.json"
	PositionFile = "widget_position.json"
	LockFile     = "pulse.lock"
)

// EnvDir overrides the computed data directory when set.
const EnvDir = "PULSE_DIR"

// Dir returns the pulse data directory without creating it. Resolution
// order: PULSE_DIR, %APPDATA%\pulse on Windows, ~/pulse otherwise. The
// home directory fallback keeps the directory reachable even on systems
// without a configured application-data location.
func Dir() string {
	if dir := os.Getenv(EnvDir); dir != "" {
		return dir
	}

	var base string
	if runtime.GOOS == "windows" {
		base = os.Getenv("APPDATA")
	}
	if base == "" {
		if home, err := os.UserHomeDir(); err == nil {
			base = home
		} else {
			base = "."
		}
	}
	return filepath.Join(base, "pulse")
}

// Ensure creates dir if it does not exist. The widget cannot function
// without its data directory, so callers treat a failure here as fatal.
func Ensure(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}
	return nil
}
