package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
)

func validSettings() *Settings {
	s := &Settings{
		SpreadsheetID:   "sheet-123",
		CredentialsFile: "credentials.json",
		Hotkey:          "ctrl+shift+space",
	}
	s.ApplyDefaults()
	return s
}

func TestGlobalSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	if err := SaveGlobal(path, &Global{DefaultProfile: "work"}); err != nil {
		t.Fatalf("SaveGlobal() error = %v", err)
	}
	g, err := LoadGlobal(path)
	if err != nil {
		t.Fatalf("LoadGlobal() error = %v", err)
	}
	if g.DefaultProfile != "work" {
		t.Errorf("DefaultProfile = %q, want work", g.DefaultProfile)
	}
}

func TestLoadGlobalMissing(t *testing.T) {
	if _, err := LoadGlobal("/nonexistent/config.toml"); err == nil {
		t.Error("LoadGlobal() expected error for missing file")
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	s := validSettings()
	s.SheetName = "Log"
	s.DrainDelay = Duration{2 * time.Second}

	if err := SaveSettings(path, s); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}
	if loaded.SheetName != "Log" {
		t.Errorf("SheetName = %q, want Log", loaded.SheetName)
	}
	if loaded.DrainDelay.Duration != 2*time.Second {
		t.Errorf("DrainDelay = %v, want 2s", loaded.DrainDelay)
	}
	if loaded.MonitorInterval.Duration != DefaultMonitorInterval {
		t.Errorf("MonitorInterval = %v, want default", loaded.MonitorInterval)
	}
}

func TestSettingsPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	if err := SaveSettings(path, validSettings()); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file permission = %o, want 0600", perm)
	}
}

func TestLoadSettingsDurationsFromText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	content := `spreadsheet_id = "abc"
credentials_file = "creds.json"
hotkey = "alt+n"
drain_delay = "250ms"
monitor_interval = "5m"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	s, err := LoadSettings(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.DrainDelay.Duration != 250*time.Millisecond {
		t.Errorf("DrainDelay = %v, want 250ms", s.DrainDelay)
	}
	if s.MonitorInterval.Duration != 5*time.Minute {
		t.Errorf("MonitorInterval = %v, want 5m", s.MonitorInterval)
	}
	if s.QueueWarnDepth != DefaultQueueWarnDepth {
		t.Errorf("QueueWarnDepth = %d, want %d", s.QueueWarnDepth, DefaultQueueWarnDepth)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Settings)
		wantMissing int
		wantErr     bool
	}{
		{"valid", func(*Settings) {}, 0, false},
		{"no spreadsheet", func(s *Settings) { s.SpreadsheetID = "" }, 1, true},
		{"placeholder spreadsheet", func(s *Settings) { s.SpreadsheetID = PlaceholderSpreadsheetID }, 0, true},
		{"no credentials", func(s *Settings) { s.CredentialsFile = " " }, 1, true},
		{"no hotkey", func(s *Settings) { s.Hotkey = "" }, 1, true},
		{"bad hotkey", func(s *Settings) { s.Hotkey = "ctrl+shift" }, 0, true},
		{"bad log level", func(s *Settings) { s.LogLevel = "loud" }, 0, true},
		{"everything missing", func(s *Settings) { *s = Settings{} }, 3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSettings()
			tt.mutate(s)
			err := s.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if len(verr.Missing) != tt.wantMissing {
				t.Errorf("missing = %v, want %d entries", verr.Missing, tt.wantMissing)
			}
		})
	}
}

func TestSampleIsRejectedUntilEdited(t *testing.T) {
	s := Sample()
	if err := s.Validate(); err == nil {
		t.Fatal("sample settings should not validate with the placeholder id")
	}
	s.SpreadsheetID = "real-id"
	if err := s.Validate(); err != nil {
		t.Errorf("edited sample should validate: %v", err)
	}
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.toml")
	if err := SaveSettings(path, validSettings()); err != nil {
		t.Fatal(err)
	}

	got := make(chan *Settings, 4)
	w, err := NewWatcher(path, func(s *Settings) { got <- s }, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	w.Start(t.Context())
	defer w.Stop()

	s := validSettings()
	s.SheetName = "Journal"
	if err := SaveSettings(path, s); err != nil {
		t.Fatal(err)
	}

	select {
	case reloaded := <-got:
		if reloaded.SheetName != "Journal" {
			t.Errorf("SheetName = %q, want Journal", reloaded.SheetName)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for reload")
	}
}

func TestWatcherIgnoresInvalidEdit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.toml")
	if err := SaveSettings(path, validSettings()); err != nil {
		t.Fatal(err)
	}

	got := make(chan *Settings, 4)
	w, err := NewWatcher(path, func(s *Settings) { got <- s }, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	w.Start(t.Context())
	defer w.Stop()

	if err := os.WriteFile(path, []byte("hotkey = \"\"\n"), 0600); err != nil {
		t.Fatal(err)
	}

	select {
	case s := <-got:
		t.Errorf("invalid settings delivered: %+v", s)
	case <-time.After(600 * time.Millisecond):
	}
}
