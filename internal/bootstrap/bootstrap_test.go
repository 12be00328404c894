package bootstrap_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goliatone/go-blog/internal/bootstrap"
	"github.com/goliatone/go-blog/posts"
)

func TestLoadConfigMissingFileKeepsDefaults(t *testing.T) {
	cfg, err := bootstrap.LoadConfig(bootstrap.Options{
		ConfigPath: filepath.Join(t.TempDir(), "nope.yaml"),
	})
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Site.Title != "Blog" {
		t.Fatalf("expected default site title, got %q", cfg.Site.Title)
	}
	if cfg.Content.Dir != "content" {
		t.Fatalf("expected default content dir, got %q", cfg.Content.Dir)
	}
}

func TestLoadConfigFlagOverridesBeatFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "blog.yaml")
	data := "site:\n  title: From File\ncontent:\n  dir: file-content\n"
	if err := os.WriteFile(cfgPath, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := bootstrap.LoadConfig(bootstrap.Options{
		ConfigPath: cfgPath,
		ContentDir: "flag-content",
		LogLevel:   "debug",
	})
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Site.Title != "From File" {
		t.Fatalf("expected file value kept, got %q", cfg.Site.Title)
	}
	if cfg.Content.Dir != "flag-content" {
		t.Fatalf("expected flag override to win, got %q", cfg.Content.Dir)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected log level override, got %q", cfg.Logging.Level)
	}
}

func TestLoadConfigBrokenFileFails(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "blog.yaml")
	if err := os.WriteFile(cfgPath, []byte("site: [not a mapping\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := bootstrap.LoadConfig(bootstrap.Options{ConfigPath: cfgPath}); err == nil {
		t.Fatalf("expected parse error for broken config")
	}
}

// Build opens the database, migrates it, and hands back a working module:
// a create/read round-trip through the bun repository proves the schema
// actually landed.
func TestBuildRuntimeMigratesAndServes(t *testing.T) {
	root := t.TempDir()
	ctx := context.Background()

	rt, err := bootstrap.Build(ctx, bootstrap.Options{
		ConfigPath: filepath.Join(root, "blog.yaml"),
		ContentDir: filepath.Join(root, "content"),
		OutputDir:  filepath.Join(root, "dist"),
		DSN:        "file:" + filepath.Join(root, "blog.db") + "?cache=shared&_fk=1",
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer rt.Close()

	if rt.Logger == nil {
		t.Fatalf("expected runtime logger")
	}

	created, err := rt.Module.Posts().Create(ctx, posts.CreatePostRequest{
		Title:  "Bootstrap Round Trip",
		Body:   "stored through the migrated schema",
		Status: "draft",
		Date:   time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	found, err := rt.Module.Posts().GetBySlug(ctx, created.Slug)
	if err != nil {
		t.Fatalf("GetBySlug: %v", err)
	}
	if found.Title != "Bootstrap Round Trip" {
		t.Fatalf("unexpected post %q", found.Title)
	}

	if _, err := os.Stat(filepath.Join(root, "blog.db")); err != nil {
		t.Fatalf("expected database file created: %v", err)
	}
}
