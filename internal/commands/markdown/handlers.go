package markdowncmd

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-blog/internal/commands"
	"github.com/goliatone/go-blog/internal/lint"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/pkg/interfaces"
	command "github.com/goliatone/go-command"
)

const (
	importOperation = "markdown.import_directory"
	syncOperation   = "markdown.sync_directory"
	lintOperation   = "markdown.lint_directory"
)

var (
	// ErrMarkdownFeatureDisabled is returned when the markdown feature flag is disabled at runtime.
	ErrMarkdownFeatureDisabled = errors.New("markdown command: feature disabled")
	// ErrLinterRequired is returned when a lint command runs without a configured linter.
	ErrLinterRequired = errors.New("markdown command: linter is required")
)

var (
	_ command.Commander[ImportDirectoryCommand] = (*ImportDirectoryHandler)(nil)
	_ command.Commander[SyncDirectoryCommand]   = (*SyncDirectoryHandler)(nil)
	_ command.Commander[LintDirectoryCommand]   = (*LintDirectoryHandler)(nil)
)

// ImportDirectoryHandler orchestrates Markdown directory imports via the shared command handler foundation.
type ImportDirectoryHandler struct {
	inner *commands.Handler[ImportDirectoryCommand]
}

// NewImportDirectoryHandler creates a handler bound to the supplied Markdown service.
func NewImportDirectoryHandler(service interfaces.MarkdownService, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[ImportDirectoryCommand]) *ImportDirectoryHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg ImportDirectoryCommand) error {
		if !gates.markdownEnabled() {
			return ErrMarkdownFeatureDisabled
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		importOpts := interfaces.ImportOptions{
			DefaultStatus: strings.TrimSpace(msg.DefaultStatus),
			DryRun:        msg.DryRun,
		}

		result, err := service.ImportDirectory(ctx, msg.Directory, importOpts)
		if err != nil {
			return err
		}
		if result != nil {
			logging.WithFields(baseLogger, map[string]any{
				"created_count":   len(result.CreatedPostIDs),
				"updated_count":   len(result.UpdatedPostIDs),
				"skipped_count":   len(result.SkippedPostIDs),
				"scheduled_count": len(result.ScheduledPostIDs),
				"error_count":     len(result.Errors),
				"dry_run":         msg.DryRun,
			}).Info("markdown.command.import_directory.completed")
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[ImportDirectoryCommand]{
		commands.WithLogger[ImportDirectoryCommand](baseLogger),
		commands.WithOperation[ImportDirectoryCommand](importOperation),
		commands.WithMessageFields(func(msg ImportDirectoryCommand) map[string]any {
			fields := map[string]any{
				"directory": msg.Directory,
			}
			if status := strings.TrimSpace(msg.DefaultStatus); status != "" {
				fields["default_status"] = status
			}
			if msg.DryRun {
				fields["dry_run"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[ImportDirectoryCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ImportDirectoryHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[ImportDirectoryCommand].
func (h *ImportDirectoryHandler) Execute(ctx context.Context, msg ImportDirectoryCommand) error {
	return h.inner.Execute(ctx, msg)
}

// SyncDirectoryHandler orchestrates Markdown sync workflows via the shared command handler foundation.
type SyncDirectoryHandler struct {
	inner *commands.Handler[SyncDirectoryCommand]
}

// NewSyncDirectoryHandler creates a handler bound to the supplied Markdown service.
func NewSyncDirectoryHandler(service interfaces.MarkdownService, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[SyncDirectoryCommand]) *SyncDirectoryHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg SyncDirectoryCommand) error {
		if !gates.markdownEnabled() {
			return ErrMarkdownFeatureDisabled
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		syncOpts := interfaces.SyncOptions{
			ImportOptions: interfaces.ImportOptions{
				DefaultStatus: strings.TrimSpace(msg.DefaultStatus),
				DryRun:        msg.DryRun,
			},
			ArchiveOrphans: msg.ArchiveOrphans,
			UpdateExisting: msg.UpdateExisting,
		}

		result, err := service.Sync(ctx, msg.Directory, syncOpts)
		if err != nil {
			return err
		}
		if result != nil {
			logging.WithFields(baseLogger, map[string]any{
				"created_count":   result.Created,
				"updated_count":   result.Updated,
				"skipped_count":   result.Skipped,
				"scheduled_count": result.Scheduled,
				"archived_count":  result.Archived,
				"error_count":     len(result.Errors),
				"dry_run":         msg.DryRun,
				"archive_orphans": msg.ArchiveOrphans,
				"update_existing": msg.UpdateExisting,
			}).Info("markdown.command.sync_directory.completed")
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[SyncDirectoryCommand]{
		commands.WithLogger[SyncDirectoryCommand](baseLogger),
		commands.WithOperation[SyncDirectoryCommand](syncOperation),
		commands.WithMessageFields(func(msg SyncDirectoryCommand) map[string]any {
			fields := map[string]any{
				"directory": msg.Directory,
			}
			if status := strings.TrimSpace(msg.DefaultStatus); status != "" {
				fields["default_status"] = status
			}
			if msg.DryRun {
				fields["dry_run"] = true
			}
			if msg.ArchiveOrphans {
				fields["archive_orphans"] = true
			}
			if msg.UpdateExisting {
				fields["update_existing"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[SyncDirectoryCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &SyncDirectoryHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[SyncDirectoryCommand].
func (h *SyncDirectoryHandler) Execute(ctx context.Context, msg SyncDirectoryCommand) error {
	return h.inner.Execute(ctx, msg)
}

// LintDirectoryHandler loads a Markdown directory and runs the content linter
// over the corpus. Loader failures surface inside the report as file issues
// rather than failing the command; only a walk that produces nothing at all
// is treated as an execution error.
type LintDirectoryHandler struct {
	inner *commands.Handler[LintDirectoryCommand]
}

// NewLintDirectoryHandler creates a handler bound to the supplied Markdown service and linter.
func NewLintDirectoryHandler(service interfaces.MarkdownService, linter *lint.Linter, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[LintDirectoryCommand]) *LintDirectoryHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg LintDirectoryCommand) error {
		if !gates.markdownEnabled() {
			return ErrMarkdownFeatureDisabled
		}
		if linter == nil {
			return ErrLinterRequired
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		docs, loadErr := service.LoadDirectory(ctx, msg.Directory, interfaces.LoadOptions{
			Pattern: strings.TrimSpace(msg.Pattern),
		})
		if docs == nil && loadErr != nil {
			return loadErr
		}

		report := linter.Lint(docs, loadErr)
		if msg.ReportCallback != nil {
			msg.ReportCallback(report)
		}

		logging.WithFields(baseLogger, map[string]any{
			"checked_count": report.Checked,
			"issue_count":   len(report.Issues),
			"error_count":   report.Count(lint.SeverityError),
			"warning_count": report.Count(lint.SeverityWarning),
		}).Info("markdown.command.lint_directory.completed")
		return nil
	}

	handlerOpts := []commands.HandlerOption[LintDirectoryCommand]{
		commands.WithLogger[LintDirectoryCommand](baseLogger),
		commands.WithOperation[LintDirectoryCommand](lintOperation),
		commands.WithMessageFields(func(msg LintDirectoryCommand) map[string]any {
			fields := map[string]any{
				"directory": msg.Directory,
			}
			if pattern := strings.TrimSpace(msg.Pattern); pattern != "" {
				fields["pattern"] = pattern
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[LintDirectoryCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &LintDirectoryHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[LintDirectoryCommand].
func (h *LintDirectoryHandler) Execute(ctx context.Context, msg LintDirectoryCommand) error {
	return h.inner.Execute(ctx, msg)
}
