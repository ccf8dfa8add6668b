package types

import (
	"context"
	"errors"
)

// Store defines the interface for attaching to an idea store and reaching
// its repositories. Callers attach to a backend, use the repositories, and
// detach when done.
type Store interface {
	// Attach validates config, opens the store under config.DataDir and
	// runs Bootstrap. Returns ErrAlreadyAttached if called while attached.
	Attach(ctx context.Context, config Config) error

	// Bootstrap brings an attached store up to the current schema, seeds an
	// empty store, and creates the attachments directory. Safe to call any
	// number of times.
	Bootstrap(ctx context.Context) error

	// Detach releases backend resources. Idempotent: multiple calls succeed.
	// After Detach, repository calls return ErrStoreDetached.
	Detach() error

	// Config returns the attached configuration with defaults applied, or
	// the zero Config while detached.
	Config() Config

	Ideas() IdeaRepository
	Tags() TagRepository
	Reminders() ReminderRepository
	Attachments() AttachmentStore
	Settings() SettingsRepository
}

// Store lifecycle errors.
var (
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
)
