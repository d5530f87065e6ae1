package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/matheus3301/nikki/internal/hotkey"
)

const (
	DefaultDrainDelay      = time.Second
	DefaultMonitorInterval = 60 * time.Second
	DefaultQueueWarnDepth  = 100
	DefaultHotkey          = "ctrl+shift+space"

	// PlaceholderSpreadsheetID is shipped in the sample settings file.
	PlaceholderSpreadsheetID = "YOUR_SPREADSHEET_ID_HERE"
)

// Duration is a time.Duration stored as a string ("1s", "2m") in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Settings is the per-profile settings.toml.
type Settings struct {
	SpreadsheetID   string   `toml:"spreadsheet_id"`
	SheetName       string   `toml:"sheet_name"`
	CredentialsFile string   `toml:"credentials_file"`
	TokenFile       string   `toml:"token_file"`
	DriveFolderID   string   `toml:"drive_folder_id"`
	Hotkey          string   `toml:"hotkey"`
	DrainDelay      Duration `toml:"drain_delay"`
	MonitorInterval Duration `toml:"monitor_interval"`
	QueueWarnDepth  int      `toml:"queue_warn_depth"`
	MetricsAddr     string   `toml:"metrics_addr"`
	LogLevel        string   `toml:"log_level"`
}

// ValidationError lists every problem found in a settings file.
type ValidationError struct {
	Missing  []string
	Problems []string
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing required fields: "+strings.Join(e.Missing, ", "))
	}
	parts = append(parts, e.Problems...)
	return "invalid settings: " + strings.Join(parts, "; ")
}

// LoadSettings decodes, defaults and validates a settings file.
func LoadSettings(path string) (*Settings, error) {
	s, err := ReadSettings(path)
	if err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// ReadSettings decodes and defaults a settings file without validating it,
// for tools that edit one field of a half-filled file.
func ReadSettings(path string) (*Settings, error) {
	var s Settings
	if _, err := toml.DecodeFile(path, &s); err != nil {
		return nil, fmt.Errorf("read settings %s: %w", path, err)
	}
	s.ApplyDefaults()
	return &s, nil
}

// SaveSettings writes s to path with 0600 permissions.
func SaveSettings(path string, s *Settings) error {
	return writeTOML(path, s)
}

// ApplyDefaults fills zero-valued optional fields.
func (s *Settings) ApplyDefaults() {
	if s.DrainDelay.Duration <= 0 {
		s.DrainDelay.Duration = DefaultDrainDelay
	}
	if s.MonitorInterval.Duration <= 0 {
		s.MonitorInterval.Duration = DefaultMonitorInterval
	}
	if s.QueueWarnDepth <= 0 {
		s.QueueWarnDepth = DefaultQueueWarnDepth
	}
	if s.LogLevel == "" {
		s.LogLevel = "info"
	}
}

// Validate checks required fields and the hotkey syntax. It does not check
// that the spreadsheet or folder exist.
func (s *Settings) Validate() error {
	verr := &ValidationError{}
	if strings.TrimSpace(s.SpreadsheetID) == "" {
		verr.Missing = append(verr.Missing, "spreadsheet_id")
	} else if s.SpreadsheetID == PlaceholderSpreadsheetID {
		verr.Problems = append(verr.Problems, "spreadsheet_id still holds the placeholder value")
	}
	if strings.TrimSpace(s.CredentialsFile) == "" {
		verr.Missing = append(verr.Missing, "credentials_file")
	}
	if strings.TrimSpace(s.Hotkey) == "" {
		verr.Missing = append(verr.Missing, "hotkey")
	} else if _, err := hotkey.Parse(s.Hotkey); err != nil {
		verr.Problems = append(verr.Problems, err.Error())
	}
	switch s.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		verr.Problems = append(verr.Problems, fmt.Sprintf("unknown log_level %q", s.LogLevel))
	}
	if len(verr.Missing) > 0 || len(verr.Problems) > 0 {
		return verr
	}
	return nil
}

// Sample returns the settings written by "nikkictl init".
func Sample() *Settings {
	s := &Settings{
		SpreadsheetID:   PlaceholderSpreadsheetID,
		SheetName:       "",
		CredentialsFile: "credentials.json",
		DriveFolderID:   "",
		Hotkey:          DefaultHotkey,
	}
	s.ApplyDefaults()
	return s
}
