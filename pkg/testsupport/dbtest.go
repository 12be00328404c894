package testsupport

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"

	_ "github.com/mattn/go-sqlite3"
)

// NewSQLiteMemoryDB opens a shared in-memory SQLite database suitable for
// integration tests that exercise the bun repositories.
func NewSQLiteMemoryDB() (*sql.DB, error) {
	return sql.Open("sqlite3", "file::memory:?cache=shared")
}

// CreateTables provisions the supplied bun models, ignoring tables that
// already exist so tests can share a database handle.
func CreateTables(ctx context.Context, db *bun.DB, models ...any) error {
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table for %T: %w", model, err)
		}
	}
	return nil
}
