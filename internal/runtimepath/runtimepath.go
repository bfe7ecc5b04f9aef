package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
)

// CacheDir returns the cache directory for uifind state. Priority:
// 1) $XDG_CACHE_HOME/uifind (if set)
// 2) ~/.cache/uifind
// 3) /tmp/uifind-cache-<uid>
func CacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, "uifind"), nil
	}

	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, ".cache", "uifind"), nil
	}

	tmpDir := fmt.Sprintf("/tmp/uifind-cache-%d", os.Getuid())
	if err := os.MkdirAll(tmpDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create cache dir: %w", err)
	}
	return tmpDir, nil
}

// PositionStoreDir returns where window position maps are persisted. A
// non-empty override wins.
func PositionStoreDir(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	cacheDir, err := CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, "positions"), nil
}

// LogPath returns the default log file path.
func LogPath() (string, error) {
	cacheDir, err := CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, "uifind.log"), nil
}
