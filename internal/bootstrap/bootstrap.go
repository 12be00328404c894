package bootstrap

import (
	"context"
	"fmt"
	"os"
	"strings"

	blog "github.com/goliatone/go-blog"
	"github.com/goliatone/go-blog/internal/di"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/internal/schema"
	"github.com/goliatone/go-blog/pkg/interfaces"
	"github.com/goliatone/go-blog/pkg/storage"
	"github.com/uptrace/bun"
)

// Options captures configuration for CLI bootstraps. Flag values override
// the loaded file; empty strings leave the file or default value in place.
type Options struct {
	ConfigPath     string
	ContentDir     string
	OutputDir      string
	DSN            string
	Addr           string
	LogLevel       string
	Version        string
	LoggerProvider interfaces.LoggerProvider
}

// Runtime wraps the blog module plus the persistent pieces a CLI run owns:
// the resolved configuration, a module-scoped logger, and the database
// handle that Close releases.
type Runtime struct {
	Module *blog.Module
	Config blog.Config
	Logger interfaces.Logger

	db *bun.DB
}

// LoadConfig resolves the effective configuration: the YAML file when it
// exists, defaults when it does not, with flag overrides applied on top. A
// config path that exists but fails to parse is an error; a missing file is
// not, so a bare working directory still works.
func LoadConfig(opts Options) (blog.Config, error) {
	cfg := blog.DefaultConfig()

	if path := strings.TrimSpace(opts.ConfigPath); path != "" {
		if _, err := os.Stat(path); err == nil {
			loaded, loadErr := blog.LoadConfig(path)
			if loadErr != nil {
				return cfg, loadErr
			}
			cfg = loaded
		} else if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("bootstrap: stat config %s: %w", path, err)
		}
	}

	if dir := strings.TrimSpace(opts.ContentDir); dir != "" {
		cfg.Content.Dir = dir
	}
	if dir := strings.TrimSpace(opts.OutputDir); dir != "" {
		cfg.Generator.OutputDir = dir
	}
	if dsn := strings.TrimSpace(opts.DSN); dsn != "" {
		cfg.Storage.DSN = dsn
	}
	if addr := strings.TrimSpace(opts.Addr); addr != "" {
		cfg.Preview.Addr = addr
	}
	if level := strings.TrimSpace(opts.LogLevel); level != "" {
		cfg.Logging.Level = level
	}
	return cfg, nil
}

// Build assembles a blog runtime for a CLI invocation: it opens the
// configured database, applies the shipped migrations, and wires the module
// on top. Callers must Close the runtime when finished.
func Build(ctx context.Context, opts Options) (*Runtime, error) {
	cfg, err := LoadConfig(opts)
	if err != nil {
		return nil, err
	}

	sqlDB, err := storage.Open(storage.Config{
		Driver: cfg.Storage.Driver,
		DSN:    cfg.Storage.DSN,
	})
	if err != nil {
		return nil, fmt.Errorf("bootstrap: open database: %w", err)
	}
	if err := storage.Migrate(ctx, sqlDB, blog.GetMigrationsFS(), storage.MigrationsDir); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("bootstrap: apply migrations: %w", err)
	}
	bunDB, err := storage.NewBunDB(sqlDB, cfg.Storage.Driver)
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("bootstrap: wrap database: %w", err)
	}

	diOpts := []di.Option{di.WithBunDB(bunDB)}
	if opts.LoggerProvider != nil {
		diOpts = append(diOpts, di.WithLoggerProvider(opts.LoggerProvider))
	}

	module, err := blog.New(cfg, diOpts...)
	if err != nil {
		bunDB.Close()
		return nil, fmt.Errorf("bootstrap: initialise blog module: %w", err)
	}

	logger := logging.ModuleLogger(module.Container().LoggerProvider(), "cli")

	// The schema registry only feeds HTTP consumers, and go-crud keeps it
	// process-wide. A rejection here must not take the CLI down with it.
	if err := schema.RegisterPostSchemas(ctx, cfg.Site.Title, apiVersion(opts.Version)); err != nil {
		logger.Warn("bootstrap: schema registration skipped", "error", err)
	}

	return &Runtime{
		Module: module,
		Config: cfg,
		Logger: logger,
		db:     bunDB,
	}, nil
}

// Close releases the database handle. Safe on a nil runtime.
func (r *Runtime) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func apiVersion(version string) string {
	trimmed := strings.TrimSpace(version)
	if trimmed == "" {
		return "dev"
	}
	return trimmed
}
