package types

import (
	"errors"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:    "empty backend returns ErrBackendEmpty",
			config:  Config{Backend: "", DataDir: "/tmp/data"},
			wantErr: ErrBackendEmpty,
		},
		{
			name:    "unknown backend returns ErrBackendUnknown",
			config:  Config{Backend: "postgres", DataDir: "/tmp/data"},
			wantErr: ErrBackendUnknown,
		},
		{
			name:    "empty data dir returns ErrDataDirEmpty",
			config:  Config{Backend: "sqlite", DataDir: ""},
			wantErr: ErrDataDirEmpty,
		},
		{
			name:    "negative horizon returns ErrReminderHorizonRange",
			config:  Config{Backend: "sqlite", DataDir: "/tmp/data", ReminderHorizon: -time.Minute},
			wantErr: ErrReminderHorizonRange,
		},
		{
			name:    "negative snooze returns ErrSnoozeMinutesRange",
			config:  Config{Backend: "sqlite", DataDir: "/tmp/data", DefaultSnoozeMinutes: -1},
			wantErr: ErrSnoozeMinutesRange,
		},
		{
			name:    "negative refresh returns ErrRefreshSecondsRange",
			config:  Config{Backend: "sqlite", DataDir: "/tmp/data", ReminderRefreshSeconds: -1},
			wantErr: ErrRefreshSecondsRange,
		},
		{
			name:    "valid sqlite config",
			config:  Config{Backend: "sqlite", DataDir: "/tmp/data"},
			wantErr: nil,
		},
		{
			name:    "zero horizon is valid and means default",
			config:  Config{Backend: "sqlite", DataDir: "/tmp/data", ReminderHorizon: 0},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error %v, got nil", tt.wantErr)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfigWithDefaults(t *testing.T) {
	got := Config{DataDir: "/tmp/data"}.WithDefaults()
	if got.Backend != BackendSQLite {
		t.Fatalf("expected backend %q, got %q", BackendSQLite, got.Backend)
	}
	if got.ReminderHorizon != DefaultReminderHorizon {
		t.Fatalf("expected horizon %v, got %v", DefaultReminderHorizon, got.ReminderHorizon)
	}
	if got.DefaultSnoozeMinutes != DefaultSnoozeMinutes {
		t.Fatalf("expected snooze %d, got %d", DefaultSnoozeMinutes, got.DefaultSnoozeMinutes)
	}
	if got.ReminderRefreshSeconds != DefaultReminderRefreshSeconds {
		t.Fatalf("expected refresh %d, got %d", DefaultReminderRefreshSeconds, got.ReminderRefreshSeconds)
	}
	if got.StartupView != DefaultStartupView {
		t.Fatalf("expected startup view %q, got %q", DefaultStartupView, got.StartupView)
	}

	kept := Config{DataDir: "/tmp/data", ReminderHorizon: 30 * time.Minute, DefaultSnoozeMinutes: 5}.WithDefaults()
	if kept.ReminderHorizon != 30*time.Minute || kept.DefaultSnoozeMinutes != 5 {
		t.Fatalf("explicit values overwritten: %+v", kept)
	}
}
