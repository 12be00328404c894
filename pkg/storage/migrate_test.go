package storage_test

import (
	"context"
	"testing"
	"time"

	blog "github.com/goliatone/go-blog"
	"github.com/goliatone/go-blog/pkg/storage"
	"github.com/goliatone/go-blog/pkg/testsupport"
	"github.com/google/uuid"
)

func TestMigrateAppliesInitialSchema(t *testing.T) {
	db, err := testsupport.NewSQLiteMemoryDB()
	if err != nil {
		t.Fatalf("open sqlite db: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := storage.Migrate(ctx, db, blog.GetMigrationsFS(), storage.MigrationsDir); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	id := uuid.NewString()
	if _, err := db.ExecContext(ctx,
		`INSERT INTO posts (id, slug, title, body, status, date) VALUES (?, ?, ?, ?, ?, ?)`,
		id, "migrated-"+id[:8], "Migrated", "body", "draft", time.Now().UTC(),
	); err != nil {
		t.Fatalf("insert post: %v", err)
	}

	if _, err := db.ExecContext(ctx,
		`INSERT INTO post_versions (id, post_id, version, status, snapshot) VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), id, 1, "draft", `{"title":"Migrated","body":"body"}`,
	); err != nil {
		t.Fatalf("insert version: %v", err)
	}

	// IF NOT EXISTS guards make reapplication a no-op.
	if err := storage.Migrate(ctx, db, blog.GetMigrationsFS(), storage.MigrationsDir); err != nil {
		t.Fatalf("second migrate: %v", err)
	}

	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts WHERE id = ?`, id).Scan(&count); err != nil {
		t.Fatalf("count posts: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 post, got %d", count)
	}
}
