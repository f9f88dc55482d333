package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	appName   = "fixit"
	dbName    = "fixit.db"
	logName   = "fixit.log"
	prefsName = "config.yaml"
	keysName  = "keys"

	// EnvHome overrides the state directory entirely.
	EnvHome = "FIXIT_HOME"
)

// Dir resolves the state directory: $FIXIT_HOME, then
// $XDG_CONFIG_HOME/fixit, then ~/.config/fixit.
func Dir() (string, error) {
	return resolve(os.Getenv, os.UserHomeDir)
}

func resolve(getenv func(string) string, home func() (string, error)) (string, error) {
	if dir := getenv(EnvHome); dir != "" {
		return filepath.Clean(dir), nil
	}
	if xdg := getenv("XDG_CONFIG_HOME"); filepath.IsAbs(xdg) {
		return filepath.Join(xdg, appName), nil
	}
	h, err := home()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(h, ".config", appName), nil
}

// EnsureDir resolves the state directory and creates it owner-only.
func EnsureDir() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	return dir, nil
}

func DB() (string, error)    { return within(dbName) }
func Log() (string, error)   { return within(logName) }
func Prefs() (string, error) { return within(prefsName) }

// Keys is the directory of the file-backed keyring.
func Keys() (string, error) { return within(keysName) }

func within(name string) (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}
