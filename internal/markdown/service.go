package markdown

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/pkg/interfaces"
	"github.com/goliatone/go-blog/posts"
)

// Config controls how the markdown service discovers and parses post files.
type Config struct {
	BasePath  string
	Pattern   string
	Recursive bool
	// DefaultStatus applies to documents that carry neither a draft flag nor a
	// status key.
	DefaultStatus string
	Parser        interfaces.ParseOptions
}

// ServiceOption configures optional service collaborators.
type ServiceOption func(*Service)

// WithPostService wires the post store the import and sync workflows write to.
func WithPostService(svc posts.Service) ServiceOption {
	return func(s *Service) {
		if svc != nil {
			s.posts = svc
		}
	}
}

// WithLogger overrides the service logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the clock used for publish-window decisions.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *Service) {
		if clock != nil {
			s.now = clock
		}
	}
}

// Service implements interfaces.MarkdownService for filesystem-backed posts.
type Service struct {
	cfg      Config
	parser   interfaces.MarkdownParser
	loader   *Loader
	posts    posts.Service
	logger   interfaces.Logger
	now      func() time.Time
	importer *Importer
}

// NewService constructs a markdown service rooted at the configured base path.
// When parser is nil, a goldmark parser with the provided default options is
// created. Import and Sync require a post service supplied through
// WithPostService.
func NewService(cfg Config, parser interfaces.MarkdownParser, opts ...ServiceOption) (*Service, error) {
	filesystem, err := prepareFilesystem(cfg.BasePath)
	if err != nil {
		return nil, err
	}

	if parser == nil {
		parser = NewGoldmarkParser(cfg.Parser)
	}

	loader := NewLoader(filesystem, LoaderConfig{
		BasePath:  cfg.BasePath,
		Pattern:   cfg.Pattern,
		Recursive: cfg.Recursive,
	})

	svc := &Service{
		cfg:    cfg,
		parser: parser,
		loader: loader,
		logger: logging.NoOp(),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(svc)
	}

	if svc.posts != nil {
		svc.importer = NewImporter(ImporterConfig{
			Posts:  svc.posts,
			Logger: svc.logger,
			Clock:  svc.now,
		})
	}

	return svc, nil
}

// Load reads a single markdown document relative to the configured base path.
func (s *Service) Load(ctx context.Context, path string, opts interfaces.LoadOptions) (*interfaces.Document, error) {
	result, err := s.loader.LoadFile(ctx, s.normalisePath(path), toLoaderParams(opts))
	if err != nil {
		return nil, err
	}
	if err := s.renderDocument(ctx, result.Document, opts.Parser); err != nil {
		return nil, err
	}
	return result.Document, nil
}

// LoadDirectory reads every markdown document within the supplied directory.
// Documents that load cleanly are returned even when the error is non-nil;
// the error joins the per-file failures so one malformed post cannot hide the
// rest of the corpus.
func (s *Service) LoadDirectory(ctx context.Context, dir string, opts interfaces.LoadOptions) ([]*interfaces.Document, error) {
	results, fileErrs, err := s.loader.LoadDirectory(ctx, s.normalisePath(dir), toLoaderParams(opts))
	if err != nil {
		return nil, err
	}

	docs := make([]*interfaces.Document, 0, len(results))
	for _, result := range results {
		html, renderErr := s.Render(ctx, result.Document.Body, opts.Parser)
		if renderErr != nil {
			fileErrs = append(fileErrs, &FileError{Path: result.Document.FilePath, Err: renderErr})
			continue
		}
		result.Document.BodyHTML = html
		docs = append(docs, result.Document)
	}

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].FilePath < docs[j].FilePath
	})
	return docs, joinFileErrors(fileErrs)
}

// Render parses markdown bytes into HTML using the configured parser.
func (s *Service) Render(ctx context.Context, markdown []byte, opts interfaces.ParseOptions) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	return s.parser.ParseWithOptions(markdown, mergeParseOptions(s.cfg.Parser, opts))
}

// RenderDocument converts the document's markdown body into HTML using the
// configured parser.
func (s *Service) RenderDocument(ctx context.Context, doc *interfaces.Document, opts interfaces.ParseOptions) ([]byte, error) {
	if doc == nil {
		return nil, errors.New("markdown service: document is nil")
	}
	html, err := s.Render(ctx, doc.Body, opts)
	if err != nil {
		return nil, err
	}
	doc.BodyHTML = html
	return html, nil
}

// Import persists a single document to the post store.
func (s *Service) Import(ctx context.Context, doc *interfaces.Document, opts interfaces.ImportOptions) (*interfaces.ImportResult, error) {
	imp, err := s.requireImporter()
	if err != nil {
		return nil, err
	}
	return imp.ImportDocument(ctx, doc, s.importDefaults(opts))
}

// ImportDirectory loads every document under dir and persists them to the
// post store. Files that fail to load are reported in the result errors while
// the remaining documents still import.
func (s *Service) ImportDirectory(ctx context.Context, dir string, opts interfaces.ImportOptions) (*interfaces.ImportResult, error) {
	imp, err := s.requireImporter()
	if err != nil {
		return nil, err
	}

	docs, fileErrs, err := s.loadForImport(ctx, dir)
	if err != nil {
		return nil, err
	}

	result, err := imp.ImportDocuments(ctx, docs, s.importDefaults(opts))
	if result == nil {
		return nil, err
	}
	for _, fileErr := range fileErrs {
		result.Errors = append(result.Errors, fileErr)
	}
	if err == nil && len(fileErrs) > 0 {
		err = fileErrs[0]
	}
	return result, err
}

// Sync reconciles the post store with the directory contents: new files
// create posts, changed files update them, and stored posts whose files
// vanished are archived when the options ask for it.
func (s *Service) Sync(ctx context.Context, dir string, opts interfaces.SyncOptions) (*interfaces.SyncResult, error) {
	imp, err := s.requireImporter()
	if err != nil {
		return nil, err
	}

	docs, fileErrs, err := s.loadForImport(ctx, dir)
	if err != nil {
		return nil, err
	}

	if len(fileErrs) > 0 && opts.ArchiveOrphans {
		// A file that fails to load still exists on disk; treating its post
		// as an orphan would archive a live entry.
		opts.ArchiveOrphans = false
		s.logger.Warn("markdown service: skipping orphan archival, some files failed to load", "failed", len(fileErrs))
	}

	opts.ImportOptions = s.importDefaults(opts.ImportOptions)
	result, err := imp.SyncDocuments(ctx, docs, opts)
	if result == nil {
		return nil, err
	}
	for _, fileErr := range fileErrs {
		result.Errors = append(result.Errors, fileErr)
	}
	if err == nil && len(fileErrs) > 0 {
		err = fileErrs[0]
	}
	return result, err
}

// Importer exposes the underlying importer, or nil when no post service is
// wired.
func (s *Service) Importer() *Importer {
	return s.importer
}

func (s *Service) requireImporter() (*Importer, error) {
	if s.importer == nil {
		return nil, ErrPostServiceRequired
	}
	return s.importer, nil
}

func (s *Service) importDefaults(opts interfaces.ImportOptions) interfaces.ImportOptions {
	if strings.TrimSpace(opts.DefaultStatus) == "" {
		opts.DefaultStatus = s.cfg.DefaultStatus
	}
	return opts
}

func (s *Service) loadForImport(ctx context.Context, dir string) ([]*interfaces.Document, []*FileError, error) {
	results, fileErrs, err := s.loader.LoadDirectory(ctx, s.normalisePath(dir), LoadParams{})
	if err != nil {
		return nil, nil, err
	}

	docs := make([]*interfaces.Document, 0, len(results))
	for _, result := range results {
		html, renderErr := s.Render(ctx, result.Document.Body, interfaces.ParseOptions{})
		if renderErr != nil {
			fileErrs = append(fileErrs, &FileError{Path: result.Document.FilePath, Err: renderErr})
			continue
		}
		result.Document.BodyHTML = html
		docs = append(docs, result.Document)
	}
	return docs, fileErrs, nil
}

func (s *Service) renderDocument(ctx context.Context, doc *interfaces.Document, overrides interfaces.ParseOptions) error {
	if doc == nil {
		return nil
	}
	html, err := s.Render(ctx, doc.Body, overrides)
	if err != nil {
		return fmt.Errorf("markdown render document %s: %w", doc.FilePath, err)
	}
	doc.BodyHTML = html
	return nil
}

func (s *Service) normalisePath(path string) string {
	if strings.TrimSpace(path) == "" {
		return "."
	}
	clean := filepath.Clean(path)
	if filepath.IsAbs(clean) && strings.TrimSpace(s.cfg.BasePath) != "" {
		if rel, err := filepath.Rel(s.cfg.BasePath, clean); err == nil {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(clean)
}

func joinFileErrors(fileErrs []*FileError) error {
	if len(fileErrs) == 0 {
		return nil
	}
	errs := make([]error, 0, len(fileErrs))
	for _, fileErr := range fileErrs {
		errs = append(errs, fileErr)
	}
	return errors.Join(errs...)
}

func mergeParseOptions(base, override interfaces.ParseOptions) interfaces.ParseOptions {
	result := base
	if len(override.Extensions) > 0 {
		result.Extensions = append([]string(nil), override.Extensions...)
	}
	if override.Sanitize {
		result.Sanitize = true
	}
	if override.HardWraps {
		result.HardWraps = true
	}
	if override.SafeMode {
		result.SafeMode = true
	}
	return result
}

func toLoaderParams(opts interfaces.LoadOptions) LoadParams {
	return LoadParams{
		Pattern:   opts.Pattern,
		Recursive: opts.Recursive,
	}
}

func prepareFilesystem(basePath string) (fs.FS, error) {
	if strings.TrimSpace(basePath) == "" {
		basePath = "."
	}
	if _, err := os.Stat(basePath); err != nil {
		return nil, fmt.Errorf("markdown service: stat base path %s: %w", basePath, err)
	}
	return os.DirFS(basePath), nil
}
