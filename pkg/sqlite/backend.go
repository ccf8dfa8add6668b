// Package sqlite is the public entry point for the SQLite idea store.
// It exposes the backend factory and an Open helper that wires
// config.yaml, directory resolution and the backend together, while
// keeping implementation details internal.
package sqlite

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/mesh-intelligence/mindstore/internal/config"
	"github.com/mesh-intelligence/mindstore/internal/paths"
	"github.com/mesh-intelligence/mindstore/internal/sqlite"
	"github.com/mesh-intelligence/mindstore/pkg/types"
)

// Option configures a backend.
type Option = sqlite.Option

// WithLogger sets the structured logger used for migrations and
// best-effort failures.
func WithLogger(logger *slog.Logger) Option { return sqlite.WithLogger(logger) }

// WithClock overrides the wall clock used for timestamps and snoozing.
func WithClock(now func() time.Time) Option { return sqlite.WithClock(now) }

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
//
// Example:
//
//	store := sqlite.NewBackend()
//	err := store.Attach(ctx, types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: "/home/ada/.mindstore",
//	})
//	defer store.Detach()
func NewBackend(opts ...Option) types.Store {
	return sqlite.NewBackend(opts...)
}

// Open loads config.yaml from configDir (empty selects the default
// location), resolves the data directory and returns an attached store.
// Unless opts carry a logger, logs go to stderr at the configured level.
func Open(ctx context.Context, configDir string, opts ...Option) (types.Store, error) {
	dir, err := paths.ResolveConfigDir(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolve config dir: %w", err)
	}
	settings, err := config.Load(dir)
	if err != nil {
		return nil, err
	}
	dataDir, err := paths.ResolveDataDir("", settings.DataDir)
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: settings.LogLevel}))
	store := sqlite.NewBackend(append([]Option{sqlite.WithLogger(logger)}, opts...)...)
	if err := store.Attach(ctx, settings.StoreConfig(dataDir)); err != nil {
		return nil, fmt.Errorf("attach store at %s: %w", dataDir, err)
	}
	return store, nil
}
