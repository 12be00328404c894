package blog

import (
	"github.com/goliatone/go-blog/internal/di"
	"github.com/goliatone/go-blog/internal/export"
	"github.com/goliatone/go-blog/internal/generator"
	"github.com/goliatone/go-blog/internal/jobs"
	"github.com/goliatone/go-blog/internal/lint"
	"github.com/goliatone/go-blog/internal/markdown"
	"github.com/goliatone/go-blog/internal/preview"
	"github.com/goliatone/go-blog/internal/search"
	"github.com/goliatone/go-blog/pkg/interfaces"
	"github.com/goliatone/go-blog/posts"
)

// PostService exports the post lifecycle contract for consumers of the blog package.
type PostService = posts.Service

// MarkdownService exports the markdown load/import/sync contract.
type MarkdownService = interfaces.MarkdownService

// Importer exports the markdown importer used for one-shot and sync imports.
type Importer = markdown.Importer

// GeneratorService exports the static site generator contract.
type GeneratorService = generator.Service

// Linter exports the content linter.
type Linter = lint.Linter

// Exporter exports the site archive contract.
type Exporter = export.Exporter

// SearchIndex exports the on-disk search index.
type SearchIndex = search.Index

// PreviewServer exports the local preview server.
type PreviewServer = preview.Server

// Worker exports the scheduled-publish worker.
type Worker = jobs.Worker

// Module represents the top level blog runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a blog module using the provided configuration and optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Posts returns the configured post service.
func (m *Module) Posts() PostService {
	return m.container.PostService()
}

// Markdown returns the markdown service.
func (m *Module) Markdown() MarkdownService {
	return m.container.MarkdownService()
}

// Importer returns the markdown importer backing import and sync runs.
func (m *Module) Importer() *Importer {
	if m == nil || m.container == nil || m.container.MarkdownService() == nil {
		return nil
	}
	return m.container.MarkdownService().Importer()
}

// Generator returns the configured generator service.
func (m *Module) Generator() GeneratorService {
	return m.container.GeneratorService()
}

// Scheduler returns the scheduler used for publish automation, nil when the
// scheduling feature is off.
func (m *Module) Scheduler() interfaces.Scheduler {
	return m.container.Scheduler()
}

// Worker returns the scheduled-publish worker, nil unless the scheduler
// section is enabled.
func (m *Module) Worker() *Worker {
	return m.container.Worker()
}

// Lint returns the content linter.
func (m *Module) Lint() *Linter {
	return m.container.Linter()
}

// Exporter returns the site archive exporter.
func (m *Module) Exporter() Exporter {
	return m.container.Exporter()
}

// Search returns the on-disk search index, opening it on first use.
func (m *Module) Search() (*SearchIndex, error) {
	return m.container.SearchIndex()
}

// Preview returns the local preview server, building it on first use.
func (m *Module) Preview() (*PreviewServer, error) {
	return m.container.PreviewServer()
}
