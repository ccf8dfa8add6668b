// Package config loads config.yaml for a mindstore installation.
//
// Values come from three layers, highest first: MINDSTORE_* environment
// variables, config.yaml in the config directory, and built-in defaults.
// The data_dir key is the exception; it is never read from the
// environment here because paths.ResolveDataDir applies its own
// precedence with MINDSTORE_DATA_DIR below the file value.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/mindstore/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	envPrefix = "MINDSTORE"
)

// Config keys.
const (
	KeyDataDir              = "data_dir"
	KeyReminderHorizon      = "reminders.horizon"
	KeyDefaultSnoozeMinutes = "reminders.default_snooze_minutes"
	KeyRefreshSeconds       = "reminders.refresh_seconds"
	KeyStartupView          = "ui.startup_view"
	KeyLogLevel             = "log.level"
)

// Defaults.
const (
	DefaultRefreshSeconds = types.DefaultReminderRefreshSeconds
	DefaultStartupView    = types.DefaultStartupView
	DefaultLogLevel       = "info"
)

// ErrInvalidConfig is returned when a config value is out of range or
// cannot be parsed.
var ErrInvalidConfig = errors.New("invalid config")

// defaultConfigYAML is the content written to config.yaml on first run.
const defaultConfigYAML = `# mindstore configuration

# Directory holding mindstore.db and attachments/ (default ~/.mindstore)
# data_dir:

reminders:
  # How far ahead reminders count as upcoming
  horizon: 72h
  default_snooze_minutes: 10
  refresh_seconds: 30

ui:
  startup_view: Inbox

log:
  # debug, info, warn or error
  level: info
`

// Settings is the validated content of config.yaml.
type Settings struct {
	// DataDir is the raw data_dir value; empty when unset. Resolve it
	// with paths.ResolveDataDir.
	DataDir              string
	ReminderHorizon      time.Duration
	DefaultSnoozeMinutes int
	RefreshSeconds       int
	StartupView          string
	LogLevel             slog.Level

	// File is the config file that was read, empty when none was.
	File string
}

// StoreConfig builds the store configuration for a resolved data directory.
func (s *Settings) StoreConfig(dataDir string) types.Config {
	return types.Config{
		Backend:                types.BackendSQLite,
		DataDir:                dataDir,
		ReminderHorizon:        s.ReminderHorizon,
		DefaultSnoozeMinutes:   s.DefaultSnoozeMinutes,
		ReminderRefreshSeconds: s.RefreshSeconds,
		StartupView:            s.StartupView,
	}
}

// Load reads config.yaml from configDir. It creates the directory and a
// default config.yaml on first run. A config.yaml that vanishes between
// creation and reading is not an error; defaults apply.
func Load(configDir string) (*Settings, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := newViper()
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return decode(v)
}

// newViper returns a viper instance with defaults and environment bindings
// but no config source.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)

	v.SetDefault(KeyReminderHorizon, types.DefaultReminderHorizon.String())
	v.SetDefault(KeyDefaultSnoozeMinutes, types.DefaultSnoozeMinutes)
	v.SetDefault(KeyRefreshSeconds, DefaultRefreshSeconds)
	v.SetDefault(KeyStartupView, DefaultStartupView)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range []string{
		KeyReminderHorizon,
		KeyDefaultSnoozeMinutes,
		KeyRefreshSeconds,
		KeyStartupView,
		KeyLogLevel,
	} {
		// BindEnv only errors on an empty key.
		_ = v.BindEnv(key)
	}
	return v
}

func decode(v *viper.Viper) (*Settings, error) {
	s := &Settings{
		DataDir:     strings.TrimSpace(v.GetString(KeyDataDir)),
		StartupView: strings.TrimSpace(v.GetString(KeyStartupView)),
		File:        v.ConfigFileUsed(),
	}

	horizon, err := time.ParseDuration(strings.TrimSpace(v.GetString(KeyReminderHorizon)))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, KeyReminderHorizon, err)
	}
	if horizon < 0 {
		return nil, fmt.Errorf("%w: %s must not be negative", ErrInvalidConfig, KeyReminderHorizon)
	}
	s.ReminderHorizon = horizon

	if s.DefaultSnoozeMinutes, err = positiveInt(v, KeyDefaultSnoozeMinutes); err != nil {
		return nil, err
	}
	if s.RefreshSeconds, err = positiveInt(v, KeyRefreshSeconds); err != nil {
		return nil, err
	}

	if s.StartupView == "" {
		return nil, fmt.Errorf("%w: %s is empty", ErrInvalidConfig, KeyStartupView)
	}

	if err := s.LogLevel.UnmarshalText([]byte(strings.TrimSpace(v.GetString(KeyLogLevel)))); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, KeyLogLevel, err)
	}
	return s, nil
}

// positiveInt reads key as an integer of at least one. viper's GetInt
// silently maps garbage to zero, which the range check then rejects.
func positiveInt(v *viper.Viper, key string) (int, error) {
	n := v.GetInt(key)
	if n < 1 {
		return 0, fmt.Errorf("%w: %s must be a positive integer, got %q", ErrInvalidConfig, key, v.GetString(key))
	}
	return n, nil
}

// ensureDefaultConfigFile creates a default config.yaml if the file does not
// exist in the config directory.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
