package markdowncmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-blog/internal/domain"
	"github.com/goliatone/go-blog/internal/lint"
)

const (
	importDirectoryMessageType = "blog.markdown.import_directory"
	syncDirectoryMessageType   = "blog.markdown.sync_directory"
	lintDirectoryMessageType   = "blog.markdown.lint_directory"
)

// ReportCallback receives the lint report produced by a lint run. The callback
// is optional and is invoked synchronously from the handler.
type ReportCallback func(*lint.Report)

// ImportDirectoryCommand triggers a filesystem walk for Markdown documents
// under the provided Directory. The command mirrors markdown.Service
// ImportDirectory semantics, allowing callers to supply import options that
// map directly onto interfaces.ImportOptions for post creation.
type ImportDirectoryCommand struct {
	// Directory selects the filesystem path (relative or absolute) to load Markdown files from.
	Directory string `json:"directory"`
	// DefaultStatus applies to documents that carry neither a draft flag nor a status key.
	DefaultStatus string `json:"default_status,omitempty"`
	// DryRun toggles preview mode to collect import results without persisting changes.
	DryRun bool `json:"dry_run,omitempty"`
}

// Type implements command.Message.
func (ImportDirectoryCommand) Type() string { return importDirectoryMessageType }

// Validate ensures directory input is present before handlers execute.
func (cmd ImportDirectoryCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Directory, validation.Required, validation.By(func(value any) error {
			if strings.TrimSpace(value.(string)) == "" {
				return validation.NewError("blog.markdown.import_directory.directory_required", "directory is required")
			}
			return nil
		})),
		validation.Field(&cmd.DefaultStatus, validation.By(validateStatusValue("blog.markdown.import_directory.status_invalid"))),
	)
}

// SyncDirectoryCommand orchestrates a Markdown sync run for the provided
// Directory, applying archival or update flags consistent with
// interfaces.SyncOptions.
type SyncDirectoryCommand struct {
	// Directory selects the filesystem path (relative or absolute) to load Markdown files from.
	Directory string `json:"directory"`
	// DefaultStatus applies to documents that carry neither a draft flag nor a status key.
	DefaultStatus string `json:"default_status,omitempty"`
	// DryRun toggles preview mode to collect sync results without persisting changes.
	DryRun bool `json:"dry_run,omitempty"`
	// ArchiveOrphans archives stored posts whose source files disappeared when true.
	ArchiveOrphans bool `json:"archive_orphans,omitempty"`
	// UpdateExisting overwrites stored posts when Markdown files have changed.
	UpdateExisting bool `json:"update_existing,omitempty"`
}

// Type implements command.Message.
func (SyncDirectoryCommand) Type() string { return syncDirectoryMessageType }

// Validate ensures directory input is present before handlers execute.
func (cmd SyncDirectoryCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Directory, validation.Required, validation.By(func(value any) error {
			if strings.TrimSpace(value.(string)) == "" {
				return validation.NewError("blog.markdown.sync_directory.directory_required", "directory is required")
			}
			return nil
		})),
		validation.Field(&cmd.DefaultStatus, validation.By(validateStatusValue("blog.markdown.sync_directory.status_invalid"))),
	)
}

// LintDirectoryCommand loads every Markdown document under Directory and runs
// the content lint rules over the corpus. Findings reach the caller through
// the optional ReportCallback; lint findings never fail the command.
type LintDirectoryCommand struct {
	// Directory selects the filesystem path (relative or absolute) to load Markdown files from.
	Directory string `json:"directory"`
	// Pattern narrows the walk to matching file names, defaulting to the service pattern.
	Pattern string `json:"pattern,omitempty"`
	// ReportCallback receives the lint report when the run completes.
	ReportCallback ReportCallback `json:"-"`
}

// Type implements command.Message.
func (LintDirectoryCommand) Type() string { return lintDirectoryMessageType }

// Validate ensures directory input is present before handlers execute.
func (cmd LintDirectoryCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Directory, validation.Required, validation.By(func(value any) error {
			if strings.TrimSpace(value.(string)) == "" {
				return validation.NewError("blog.markdown.lint_directory.directory_required", "directory is required")
			}
			return nil
		})),
	)
}

func validateStatusValue(code string) func(value any) error {
	return func(value any) error {
		raw, _ := value.(string)
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			return nil
		}
		if !domain.Status(strings.ToLower(trimmed)).IsValid() {
			return validation.NewError(code, "status must be draft, published, scheduled, or archived")
		}
		return nil
	}
}
