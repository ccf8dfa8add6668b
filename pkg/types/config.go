package types

import (
	"errors"
	"time"
)

// Config holds backend selection and parameters for Store.Attach.
type Config struct {
	Backend string `json:"backend" yaml:"backend"`
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// ReminderHorizon is the look-ahead window used by
	// ReminderRepository.FindDue. Zero selects DefaultReminderHorizon.
	ReminderHorizon time.Duration `json:"reminder_horizon" yaml:"reminder_horizon"`

	// DefaultSnoozeMinutes is used by ReminderRepository.Snooze when it is
	// called with zero minutes.
	// Zero selects DefaultSnoozeMinutes.
	DefaultSnoozeMinutes int `json:"default_snooze_minutes" yaml:"default_snooze_minutes"`

	// ReminderRefreshSeconds is how often a UI should poll FindDue.
	// Zero selects DefaultReminderRefreshSeconds.
	ReminderRefreshSeconds int `json:"reminder_refresh_seconds" yaml:"reminder_refresh_seconds"`

	// StartupView names the view a UI opens first. Empty selects
	// DefaultStartupView.
	StartupView string `json:"startup_view" yaml:"startup_view"`

	// NoSeed skips inserting the starter ideas into an empty store.
	NoSeed bool `json:"no_seed" yaml:"no_seed"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
)

// Defaults applied when the corresponding Config field is zero.
const (
	DefaultReminderHorizon = 72 * time.Hour
	DefaultSnoozeMinutes   = 10

	DefaultReminderRefreshSeconds = 30
	DefaultStartupView            = "Inbox"
)

// Config validation errors.
var (
	ErrBackendEmpty         = errors.New("backend must not be empty")
	ErrBackendUnknown       = errors.New("unknown backend")
	ErrDataDirEmpty         = errors.New("data dir must not be empty")
	ErrReminderHorizonRange = errors.New("reminder horizon must not be negative")
	ErrSnoozeMinutesRange   = errors.New("default snooze minutes must not be negative")
	ErrRefreshSecondsRange  = errors.New("reminder refresh seconds must not be negative")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite: true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.DataDir == "" {
		return ErrDataDirEmpty
	}
	if c.ReminderHorizon < 0 {
		return ErrReminderHorizonRange
	}
	if c.DefaultSnoozeMinutes < 0 {
		return ErrSnoozeMinutesRange
	}
	if c.ReminderRefreshSeconds < 0 {
		return ErrRefreshSecondsRange
	}
	return nil
}

// WithDefaults returns a copy of c with zero-valued tunables replaced by
// their defaults.
func (c Config) WithDefaults() Config {
	if c.Backend == "" {
		c.Backend = BackendSQLite
	}
	if c.ReminderHorizon == 0 {
		c.ReminderHorizon = DefaultReminderHorizon
	}
	if c.DefaultSnoozeMinutes == 0 {
		c.DefaultSnoozeMinutes = DefaultSnoozeMinutes
	}
	if c.ReminderRefreshSeconds == 0 {
		c.ReminderRefreshSeconds = DefaultReminderRefreshSeconds
	}
	if c.StartupView == "" {
		c.StartupView = DefaultStartupView
	}
	return c
}
