package profile

import (
	"os"
	"path/filepath"
)

// BaseDir returns ~/.nikki, or $NIKKI_HOME when set.
func BaseDir() string {
	if dir := os.Getenv("NIKKI_HOME"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".nikki")
}

// GlobalConfigPath returns the config file holding the default profile.
func GlobalConfigPath() string {
	return filepath.Join(BaseDir(), "config.toml")
}

// Dir returns the profile-specific directory.
func Dir(name string) string {
	return filepath.Join(BaseDir(), "profiles", name)
}

// SettingsPath returns the per-profile settings file.
func SettingsPath(name string) string {
	return filepath.Join(Dir(name), "settings.toml")
}

// QueuePath returns the offline queue snapshot.
func QueuePath(name string) string {
	return filepath.Join(Dir(name), "offline_queue.json")
}

// HistoryPath returns the local history snapshot.
func HistoryPath(name string) string {
	return filepath.Join(Dir(name), "local_history.json")
}

// TokenPath returns the default OAuth token location.
func TokenPath(name string) string {
	return filepath.Join(Dir(name), "token.json")
}

// JournalPath returns the delivery journal database.
func JournalPath(name string) string {
	return filepath.Join(Dir(name), "journal.db")
}

// SocketPath returns the control socket of the profile daemon.
func SocketPath(name string) string {
	return filepath.Join(Dir(name), "nikkid.sock")
}

// LogDir returns the log directory for a profile.
func LogDir(name string) string {
	return filepath.Join(Dir(name), "logs")
}

// LogPath returns the daemon log file path.
func LogPath(name string) string {
	return filepath.Join(LogDir(name), "nikkid.log")
}

// ResolvePath makes a possibly relative path absolute against the profile dir.
func ResolvePath(name, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(Dir(name), p)
}

// EnsureDir creates the profile directory tree with owner-only permissions.
func EnsureDir(name string) error {
	for _, d := range []string{Dir(name), LogDir(name)} {
		if err := os.MkdirAll(d, 0700); err != nil {
			return err
		}
	}
	return nil
}
