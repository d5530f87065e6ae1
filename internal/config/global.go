package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Global represents ~/.nikki/config.toml.
type Global struct {
	DefaultProfile string `toml:"default_profile"`
}

// LoadGlobal reads the global config. A missing file is an error.
func LoadGlobal(path string) (*Global, error) {
	var g Global
	if _, err := toml.DecodeFile(path, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// SaveGlobal writes the global config, creating parent dirs as needed.
func SaveGlobal(path string, g *Global) error {
	return writeTOML(path, g)
}

func writeTOML(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(v)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}
