// Package sqlite implements the embedded SQLite store for mindstore.
//
// A Backend owns one database file under the configured data directory,
// brings it to the current schema on every Bootstrap, and hands out the
// idea, tag, reminder, attachment and settings repositories.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/mindstore/pkg/types"
)

//go:embed schema.sql
var schemaSQL string

const (
	driverName     = "sqlite"
	dbFileName     = "mindstore.db"
	attachmentsDir = "attachments"
	busyTimeoutMS  = 5000
)

// Backend implements the Store interface on a single SQLite file.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	dataDir  string // absolute
	dbPath   string
	db       *sql.DB

	logger *slog.Logger
	now    func() time.Time

	// settings table is created lazily on first settings call.
	settingsMu    sync.Mutex
	settingsReady bool

	ideas       *ideasTable
	tags        *tagsTable
	reminders   *remindersTable
	attachments *attachmentsTable
	settings    *settingsTable
}

// Option configures a Backend.
type Option func(*Backend)

// WithLogger sets the logger used for bootstrap and best-effort failures.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Backend) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithClock replaces time.Now for timestamps the store assigns itself.
func WithClock(now func() time.Time) Option {
	return func(b *Backend) {
		if now != nil {
			b.now = now
		}
	}
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend(opts ...Option) *Backend {
	b := &Backend{
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.ideas = &ideasTable{backend: b}
	b.tags = &tagsTable{backend: b}
	b.reminders = &remindersTable{backend: b}
	b.attachments = &attachmentsTable{backend: b}
	b.settings = &settingsTable{backend: b}
	return b
}

// Compile-time interface check.
var _ types.Store = (*Backend)(nil)

// Attach validates config, opens the store and bootstraps it.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(ctx context.Context, config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir, err := filepath.Abs(config.DataDir)
	if err != nil {
		return fmt.Errorf("resolving data dir: %w", err)
	}
	b.config = config.WithDefaults()
	b.dataDir = dataDir
	b.dbPath = filepath.Join(dataDir, dbFileName)

	if err := b.bootstrapLocked(ctx); err != nil {
		b.closeLocked()
		return err
	}

	b.attached = true
	b.logger.Info("store attached", "path", b.dbPath)
	return nil
}

// Bootstrap re-runs the idempotent bootstrap sequence on an attached store.
func (b *Backend) Bootstrap(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}
	return b.bootstrapLocked(ctx)
}

// Detach closes the database. After Detach, all operations return
// ErrStoreDetached. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	b.attached = false
	return b.closeLocked()
}

// Config returns the attached configuration with defaults applied. While
// detached it returns the zero Config.
func (b *Backend) Config() types.Config {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return types.Config{}
	}
	return b.config
}

// Ideas returns the idea repository.
func (b *Backend) Ideas() types.IdeaRepository { return b.ideas }

// Tags returns the tag repository, which also manages idea-tag links.
func (b *Backend) Tags() types.TagRepository { return b.tags }

// Reminders returns the reminder repository.
func (b *Backend) Reminders() types.ReminderRepository { return b.reminders }

// Attachments returns the attachment store.
func (b *Backend) Attachments() types.AttachmentStore { return b.attachments }

// Settings returns the key/value settings repository.
func (b *Backend) Settings() types.SettingsRepository { return b.settings }

// DataDir returns the absolute data directory of the attached store.
func (b *Backend) DataDir() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.dataDir
}

// AttachmentsDir returns the root of the managed attachments tree.
func (b *Backend) AttachmentsDir() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return filepath.Join(b.dataDir, attachmentsDir)
}

// bootstrapLocked runs the bootstrap sequence. The caller holds b.mu.
func (b *Backend) bootstrapLocked(ctx context.Context) error {
	if err := os.MkdirAll(b.dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	if b.db == nil {
		db, err := openDB(ctx, b.dbPath)
		if err != nil {
			return err
		}
		b.db = db
	}

	if err := ensureSchema(ctx, b.db, b.dbPath, schemaSQL); err != nil {
		return err
	}

	if !b.config.NoSeed {
		n, err := seedIdeasIfEmpty(ctx, b.db, b.now().Unix())
		if err != nil {
			return err
		}
		if n > 0 {
			b.logger.Info("seeded default ideas", "count", n)
		}
	}

	b.migrate(ctx, b.db)

	if err := os.MkdirAll(filepath.Join(b.dataDir, attachmentsDir), 0o755); err != nil {
		return fmt.Errorf("creating attachments dir: %w", err)
	}
	return nil
}

func (b *Backend) closeLocked() error {
	b.settingsMu.Lock()
	b.settingsReady = false
	b.settingsMu.Unlock()

	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	return err
}

// acquire returns the open database and holds a read lock until release
// is called, so Detach cannot close the handle mid-operation.
func (b *Backend) acquire() (*sql.DB, func(), error) {
	b.mu.RLock()
	if !b.attached || b.db == nil {
		b.mu.RUnlock()
		return nil, nil, types.ErrStoreDetached
	}
	return b.db, b.mu.RUnlock, nil
}

func (b *Backend) nowUnix() int64 {
	return b.now().Unix()
}

// openDB opens path with a single pooled connection, so connection-scoped
// pragmas apply to every statement.
func openDB(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open(driverName, sqliteDSN(path))
	if err != nil {
		return nil, storageErr("open store", "", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, storageErr("open store", "", err)
	}
	if err := applyPragmas(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func sqliteDSN(path string) string {
	u := url.URL{Scheme: "file", Path: path}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyTimeoutMS))
	u.RawQuery = q.Encode()
	return u.String()
}

// applyPragmas sets the session configuration outside any transaction.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		fmt.Sprintf("PRAGMA busy_timeout = %d", busyTimeoutMS),
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return storageErr("apply pragma", pragma, err)
		}
	}
	return nil
}

// schemaLatch records whether the base schema has been applied to one
// store file in this process.
type schemaLatch struct {
	mu   sync.Mutex
	done bool
}

var (
	schemaLatchesMu sync.Mutex
	schemaLatches   = map[string]*schemaLatch{}
)

func latchFor(path string) *schemaLatch {
	schemaLatchesMu.Lock()
	defer schemaLatchesMu.Unlock()
	l, ok := schemaLatches[path]
	if !ok {
		l = &schemaLatch{}
		schemaLatches[path] = l
	}
	return l
}

// ensureSchema applies script to the store at path once per process.
// Concurrent first callers block until the first one finishes; a failed
// attempt leaves the latch open for the next caller. A latched path whose
// file has since been replaced by an empty one gets the schema again.
func ensureSchema(ctx context.Context, db *sql.DB, path, script string) error {
	l := latchFor(path)
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.done {
		ok, err := schemaObjectExists(ctx, db, "table", "idea")
		if err != nil {
			return storageErr("check schema", "", err)
		}
		if ok {
			return nil
		}
	}
	if err := applySchema(ctx, db, script); err != nil {
		return err
	}
	l.done = true
	return nil
}

var errEmptySchema = errors.New("embedded schema is empty")

// applySchema runs PRAGMA statements first, outside a transaction, then
// every other statement in one transaction. Transaction markers in the
// script are ignored.
func applySchema(ctx context.Context, db *sql.DB, script string) error {
	stmts := SplitStatements(script)
	if len(stmts) == 0 {
		return storageErr("apply schema", "", errEmptySchema)
	}

	for _, stmt := range stmts {
		if !isPragma(stmt) {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return storageErr("apply schema", stmt, err)
		}
	}

	return withTx(ctx, db, func(tx *sql.Tx) error {
		for _, stmt := range stmts {
			if isPragma(stmt) || isTransactionMarker(stmt) {
				continue
			}
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return storageErr("apply schema", stmt, err)
			}
		}
		return nil
	})
}
