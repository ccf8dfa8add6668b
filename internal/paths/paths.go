// Package paths resolves configuration and data directory locations.
package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultDirName is the directory under the user's home that holds the
// database, the attachments tree and config.yaml.
const DefaultDirName = ".mindstore"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "MINDSTORE_CONFIG_DIR"
	EnvDataDir   = "MINDSTORE_DATA_DIR"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir func() (string, error)
}{
	homeDir: os.UserHomeDir,
}

// DefaultDataDir returns <home>/.mindstore.
func DefaultDataDir() (string, error) {
	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DefaultDirName), nil
}

// DefaultConfigDir returns the default configuration directory. Config
// lives next to the data, so this is the same as DefaultDataDir.
func DefaultConfigDir() (string, error) {
	return DefaultDataDir()
}

// ResolveConfigDir returns the configuration directory following the precedence
// chain: explicit > MINDSTORE_CONFIG_DIR env > DefaultConfigDir().
func ResolveConfigDir(explicit string) (string, error) {
	if explicit != "" {
		return filepath.Abs(explicit)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the data directory following the precedence chain:
// explicit > configValue > MINDSTORE_DATA_DIR env > DefaultDataDir().
//
// A leading "~/" in any of the values expands to the home directory.
func ResolveDataDir(explicit, configValue string) (string, error) {
	for _, candidate := range []string{explicit, configValue, os.Getenv(EnvDataDir)} {
		if candidate == "" {
			continue
		}
		expanded, err := expandHome(candidate)
		if err != nil {
			return "", err
		}
		return filepath.Abs(expanded)
	}
	return DefaultDataDir()
}

func expandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") && !strings.HasPrefix(p, "~"+string(filepath.Separator)) {
		return p, nil
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, p[1:]), nil
}
