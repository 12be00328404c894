package storage

import "context"

// Provider encapsulates the raw SQL operations required by go-blog
// repositories. Implementations wrap *sql.DB, a bun.IDB, or a test stub.
type Provider interface {
	Query(ctx context.Context, query string, args ...any) (Rows, error)
	Exec(ctx context.Context, query string, args ...any) (Result, error)
	Transaction(ctx context.Context, fn func(tx Transaction) error) error
}

// Config captures the runtime configuration for a storage provider. Detailed
// schema validation is handled by higher layers (runtimeconfig).
type Config struct {
	Driver string
	DSN    string
}

type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Close() error
}

type Result interface {
	RowsAffected() (int64, error)
	LastInsertId() (int64, error)
}

type Transaction interface {
	Provider
	Commit() error
	Rollback() error
}
