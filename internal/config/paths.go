package config

import (
	"os"
	"path/filepath"
)

const appDirName = ".helm"

// DataDir returns the base data directory for Helm.
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, appDirName), nil
}

// CoreConfigPath returns the path to the core TOML configuration.
func CoreConfigPath() (string, error) {
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "config.toml"), nil
}

// UIConfigPath returns the path to the UI TOML configuration.
func UIConfigPath() (string, error) {
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "ui.toml"), nil
}

// DBPath returns the path to the bbolt repository database.
func DBPath() (string, error) {
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "helm.db"), nil
}

// SessionsPath returns the path to the file-backed session registry.
func SessionsPath() (string, error) {
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "sessions.json"), nil
}

// StatePath returns the path to the file-backed UI state.
func StatePath() (string, error) {
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "state.json"), nil
}

// LogPath returns the path of the UI process log file.
func LogPath() (string, error) {
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "helm.log"), nil
}
