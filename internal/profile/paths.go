// Package profile resolves per-profile filesystem locations under
// ~/.relay. A profile groups the config, logs, attachment cache, and
// instance lock for one bridge account.
package profile

import (
	"os"
	"path/filepath"
)

// DefaultName is the profile used when none is configured.
const DefaultName = "main"

// BaseDir returns ~/.relay.
func BaseDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".relay")
}

// Dir returns the profile-specific directory.
func Dir(name string) string {
	return filepath.Join(BaseDir(), "profiles", name)
}

// LockPath returns the instance lock file path for a profile.
func LockPath(name string) string {
	return filepath.Join(Dir(name), "LOCK")
}

// CacheDBPath returns the attachment cache database path.
func CacheDBPath(name string) string {
	return filepath.Join(Dir(name), "attachments.db")
}

// LogDir returns the log directory for a profile.
func LogDir(name string) string {
	return filepath.Join(Dir(name), "logs")
}

// LogPath returns the client log file path.
func LogPath(name string) string {
	return filepath.Join(LogDir(name), "relay.log")
}

// ConfigPath returns the global config file path.
func ConfigPath() string {
	return filepath.Join(BaseDir(), "config.toml")
}

// EnsureDir creates the profile directory tree with 0700 permissions.
func EnsureDir(name string) error {
	for _, d := range []string{Dir(name), LogDir(name)} {
		if err := os.MkdirAll(d, 0700); err != nil {
			return err
		}
	}
	return nil
}
