package interfaces

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MarkdownParser defines how raw Markdown bytes are converted into HTML.
// Implementations should support reusable parser instances and extension
// toggles so hosts can tailor rendering without rewriting the core service.
type MarkdownParser interface {
	// Parse converts Markdown into HTML using the parser's default settings.
	Parse(markdown []byte) ([]byte, error)
	// ParseWithOptions converts Markdown into HTML using the supplied overrides.
	ParseWithOptions(markdown []byte, opts ParseOptions) ([]byte, error)
}

// ParseOptions customises Markdown parsing behaviour, keeping option names
// readable for configuration unmarshalling and CLI flags.
type ParseOptions struct {
	Extensions []string
	Sanitize   bool
	HardWraps  bool
	SafeMode   bool
}

// MarkdownService exposes the file workflows the blog engine is built around:
// load Markdown posts from disk, render them to HTML, and synchronise them
// with the post store.
type MarkdownService interface {
	Load(ctx context.Context, path string, opts LoadOptions) (*Document, error)
	LoadDirectory(ctx context.Context, dir string, opts LoadOptions) ([]*Document, error)
	Render(ctx context.Context, markdown []byte, opts ParseOptions) ([]byte, error)
	RenderDocument(ctx context.Context, doc *Document, opts ParseOptions) ([]byte, error)
	Import(ctx context.Context, doc *Document, opts ImportOptions) (*ImportResult, error)
	ImportDirectory(ctx context.Context, dir string, opts ImportOptions) (*ImportResult, error)
	Sync(ctx context.Context, dir string, opts SyncOptions) (*SyncResult, error)
}

// Document represents a Markdown post file with parsed metadata and content.
// The struct is shared between the interfaces package and internal
// implementations so consumers can depend on a stable contract.
type Document struct {
	FilePath     string
	Slug         string
	FrontMatter  FrontMatter
	Body         []byte
	BodyHTML     []byte
	LastModified time.Time
	// Checksum stores a digest of the original file content (typically SHA-256)
	// so sync workflows can detect changes without re-importing unchanged files.
	Checksum []byte
}

// FrontMatter models the metadata header of a post file. The canonical keys
// are title (quoted string), date (timestamp with timezone offset), and draft
// (boolean); the Custom map keeps any additional keys the file carries.
type FrontMatter struct {
	Title    string         `yaml:"title" json:"title"`
	Slug     string         `yaml:"slug" json:"slug"`
	Summary  string         `yaml:"summary" json:"summary"`
	Status   string         `yaml:"status" json:"status"`
	Template string         `yaml:"template" json:"template"`
	Tags     []string       `yaml:"tags" json:"tags"`
	Author   string         `yaml:"author" json:"author"`
	Date     time.Time      `yaml:"date" json:"date"`
	Draft    bool           `yaml:"draft" json:"draft"`
	Custom   map[string]any `yaml:",inline" json:"custom"`
	Raw      map[string]any `yaml:"-" json:"raw"`
}

// LoadOptions fine-tunes how documents are discovered and parsed from disk.
type LoadOptions struct {
	Recursive *bool
	Pattern   string
	Parser    ParseOptions
}

// ImportOptions controls how Markdown documents are converted into stored posts.
type ImportOptions struct {
	// DefaultStatus applies when a document carries no draft flag or status key.
	DefaultStatus string
	DryRun        bool
}

// SyncOptions extends ImportOptions to handle update/orphan semantics for
// repeated synchronisation runs. Orphaned posts are archived, never deleted.
type SyncOptions struct {
	ImportOptions
	ArchiveOrphans bool
	UpdateExisting bool
}

// ImportResult reports the outcome of a single import operation, exposing
// counts and IDs so callers can audit behaviour or trigger follow-up actions.
type ImportResult struct {
	CreatedPostIDs   []uuid.UUID
	UpdatedPostIDs   []uuid.UUID
	SkippedPostIDs   []uuid.UUID
	ScheduledPostIDs []uuid.UUID
	Errors           []error
}

// SyncResult summarises a bulk sync run across many files.
type SyncResult struct {
	Created   int
	Updated   int
	Skipped   int
	Scheduled int
	Archived  int
	Errors    []error
}
