package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/goliatone/go-blog/pkg/storage"
)

// SQLExecutor captures the database/sql surface shared by *sql.DB and
// *sql.Conn so either can back the provider.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// SQLAdapter exposes a storage.Provider over a live SQL handle.
type SQLAdapter struct {
	db SQLExecutor
}

// NewSQLAdapter wraps the executor in the storage provider contract.
func NewSQLAdapter(db SQLExecutor) storage.Provider {
	return &SQLAdapter{db: db}
}

func (a *SQLAdapter) Query(ctx context.Context, query string, args ...any) (storage.Rows, error) {
	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		return nil, nil
	}
	return &sqlRows{rows: rows}, nil
}

func (a *SQLAdapter) Exec(ctx context.Context, query string, args ...any) (storage.Result, error) {
	result, err := a.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return sqlResult{Result: result}, nil
}

func (a *SQLAdapter) Transaction(ctx context.Context, fn func(tx storage.Transaction) error) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	wrapped := &sqlTx{tx: tx}
	if err := fn(wrapped); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed after error %w: %v", err, rbErr)
		}
		return err
	}
	return tx.Commit()
}

type sqlRows struct {
	rows *sql.Rows
}

func (r *sqlRows) Next() bool {
	if r.rows == nil {
		return false
	}
	return r.rows.Next()
}

func (r *sqlRows) Scan(dest ...any) error {
	if r.rows == nil {
		return errors.New("no rows available")
	}
	return r.rows.Scan(dest...)
}

func (r *sqlRows) Close() error {
	if r.rows == nil {
		return nil
	}
	return r.rows.Close()
}

type sqlResult struct {
	sql.Result
}

type sqlTx struct {
	tx *sql.Tx
}

func (t *sqlTx) Query(ctx context.Context, query string, args ...any) (storage.Rows, error) {
	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		return nil, nil
	}
	return &sqlRows{rows: rows}, nil
}

func (t *sqlTx) Exec(ctx context.Context, query string, args ...any) (storage.Result, error) {
	result, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return sqlResult{Result: result}, nil
}

func (t *sqlTx) Transaction(context.Context, func(storage.Transaction) error) error {
	return errors.New("nested transactions not supported")
}

func (t *sqlTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqlTx) Rollback() error {
	return t.tx.Rollback()
}

// NoOpProvider satisfies storage.Provider for hosts running without a
// database (pure in-memory mode).
type NoOpProvider struct{}

// NewNoOpProvider constructs the no-op provider.
func NewNoOpProvider() storage.Provider {
	return &NoOpProvider{}
}

func (*NoOpProvider) Query(context.Context, string, ...any) (storage.Rows, error) {
	return nil, nil
}

func (*NoOpProvider) Exec(context.Context, string, ...any) (storage.Result, error) {
	return sqlResult{}, nil
}

func (*NoOpProvider) Transaction(_ context.Context, fn func(tx storage.Transaction) error) error {
	if fn == nil {
		return nil
	}
	return fn(&noopTx{})
}

type noopTx struct{}

func (noopTx) Query(context.Context, string, ...any) (storage.Rows, error) {
	return nil, nil
}

func (noopTx) Exec(context.Context, string, ...any) (storage.Result, error) {
	return sqlResult{}, nil
}

func (noopTx) Transaction(context.Context, func(storage.Transaction) error) error {
	return nil
}

func (noopTx) Commit() error {
	return nil
}

func (noopTx) Rollback() error {
	return nil
}
