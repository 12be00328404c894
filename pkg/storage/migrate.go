package storage

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

// MigrationsDir is where the blog package embeds its schema files.
const MigrationsDir = "data/sql/migrations"

// statement separator inside one migration file.
const splitMarker = "---bun:split"

// Migrate applies every *.up.sql file under dir in lexical order. The shipped
// migrations use IF NOT EXISTS guards, so applying them repeatedly against
// the same database is safe without a tracking table.
func Migrate(ctx context.Context, db *sql.DB, fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("storage: read migrations dir %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".up.sql") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		raw, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return fmt.Errorf("storage: read migration %s: %w", name, err)
		}
		if err := applyStatements(ctx, db, string(raw)); err != nil {
			return fmt.Errorf("storage: apply migration %s: %w", name, err)
		}
	}
	return nil
}

func applyStatements(ctx context.Context, db *sql.DB, content string) error {
	for _, chunk := range strings.Split(content, splitMarker) {
		statement := strings.TrimSpace(chunk)
		if statement == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, statement); err != nil {
			return err
		}
	}
	return nil
}
