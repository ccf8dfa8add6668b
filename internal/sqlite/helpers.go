package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mesh-intelligence/mindstore/pkg/types"
)

// querier is satisfied by *sql.DB and *sql.Tx so lookups can run inside or
// outside a transaction. With a single pooled connection, a query issued on
// the *sql.DB while a *sql.Tx is open blocks forever; code inside a
// transaction must use the transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// storageErr wraps a driver failure with its operation and statement.
func storageErr(op, stmt string, err error) error {
	return &types.StorageError{Op: op, Statement: stmt, Err: err}
}

// withTx runs fn inside a transaction, committing on success and rolling
// back on any error.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("begin transaction", "", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return storageErr("commit transaction", "", err)
	}
	return nil
}

// execAffected runs a mutation and returns the affected row count.
func execAffected(ctx context.Context, q querier, op, stmt string, args ...any) (int64, error) {
	res, err := q.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, storageErr(op, stmt, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storageErr(op, stmt, err)
	}
	return n, nil
}

// insertID runs an INSERT and returns the new row id. When the driver
// cannot report it, last_insert_rowid() is read on the same querier.
func insertID(ctx context.Context, q querier, op, stmt string, args ...any) (int64, error) {
	res, err := q.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, storageErr(op, stmt, err)
	}
	if id, err := res.LastInsertId(); err == nil && id > 0 {
		return id, nil
	}
	var id int64
	if err := q.QueryRowContext(ctx, "SELECT last_insert_rowid()").Scan(&id); err != nil {
		return 0, storageErr(op, "SELECT last_insert_rowid()", err)
	}
	if id <= 0 {
		return 0, storageErr(op, stmt, errors.New("no row id returned"))
	}
	return id, nil
}

// Null conversions between pointer fields and driver values.

func nullInt(p *int) any {
	if p == nil {
		return nil
	}
	return int64(*p)
}

func nullInt64(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullString(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func int64Ptr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
