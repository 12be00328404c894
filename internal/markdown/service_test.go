package markdown

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-blog/pkg/interfaces"
)

func newSiteService(tb testing.TB) *Service {
	tb.Helper()

	svc, err := NewService(Config{
		BasePath:  filepath.Join("testdata", "site"),
		Pattern:   "*.md",
		Recursive: true,
	}, nil)
	if err != nil {
		tb.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestServiceLoad(t *testing.T) {
	svc := newSiteService(t)

	doc, err := svc.Load(context.Background(), "posts/hello-world.md", interfaces.LoadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if doc.Slug != "hello-world" {
		t.Fatalf("expected slug derived from filename, got %q", doc.Slug)
	}
	if !strings.Contains(string(doc.BodyHTML), "<h1") {
		t.Fatalf("expected rendered HTML, got %q", string(doc.BodyHTML))
	}
	if len(doc.Checksum) == 0 {
		t.Fatalf("expected checksum to be populated")
	}
	if doc.FrontMatter.Draft {
		t.Fatalf("expected a published entry")
	}
	if doc.FrontMatter.Date.IsZero() {
		t.Fatalf("expected front-matter date to parse")
	}
}

func TestServiceLoadDirectory(t *testing.T) {
	svc := newSiteService(t)

	docs, err := svc.LoadDirectory(context.Background(), ".", interfaces.LoadOptions{})
	if err != nil {
		t.Fatalf("LoadDirectory: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("expected 3 documents, got %d", len(docs))
	}
	if docs[0].FilePath != "posts/drafts/caching-notes.md" {
		t.Fatalf("expected path ordering, got %q first", docs[0].FilePath)
	}
	for _, doc := range docs {
		if len(doc.BodyHTML) == 0 {
			t.Fatalf("expected %s to be rendered", doc.FilePath)
		}
	}
}

func TestServiceLoadDirectoryNonRecursive(t *testing.T) {
	svc := newSiteService(t)

	recurse := false
	docs, err := svc.LoadDirectory(context.Background(), "posts", interfaces.LoadOptions{Recursive: &recurse})
	if err != nil {
		t.Fatalf("LoadDirectory: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected the drafts directory to be skipped, got %d documents", len(docs))
	}
}

func TestServiceLoadDirectoryReportsBrokenFiles(t *testing.T) {
	svc, err := NewService(Config{
		BasePath:  filepath.Join("testdata", "partial"),
		Recursive: true,
	}, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	docs, err := svc.LoadDirectory(context.Background(), ".", interfaces.LoadOptions{})
	if len(docs) != 1 {
		t.Fatalf("expected the healthy document to survive, got %d", len(docs))
	}
	if err == nil {
		t.Fatalf("expected the broken file to surface as an error")
	}

	var fileErr *FileError
	if !errors.As(err, &fileErr) {
		t.Fatalf("expected a *FileError, got %v", err)
	}
	if fileErr.Path != "broken-date.md" {
		t.Fatalf("unexpected failing path %q", fileErr.Path)
	}
}

func TestServiceImportRequiresPostService(t *testing.T) {
	svc := newSiteService(t)
	ctx := context.Background()

	if _, err := svc.ImportDirectory(ctx, ".", interfaces.ImportOptions{}); !errors.Is(err, ErrPostServiceRequired) {
		t.Fatalf("expected ErrPostServiceRequired from ImportDirectory, got %v", err)
	}
	if _, err := svc.Sync(ctx, ".", interfaces.SyncOptions{}); !errors.Is(err, ErrPostServiceRequired) {
		t.Fatalf("expected ErrPostServiceRequired from Sync, got %v", err)
	}
	if _, err := svc.Import(ctx, &interfaces.Document{Slug: "x"}, interfaces.ImportOptions{}); !errors.Is(err, ErrPostServiceRequired) {
		t.Fatalf("expected ErrPostServiceRequired from Import, got %v", err)
	}
}

func TestServiceRejectsMissingBasePath(t *testing.T) {
	if _, err := NewService(Config{BasePath: filepath.Join("testdata", "missing")}, nil); err == nil {
		t.Fatalf("expected missing base path to fail")
	}
}

func TestServiceRenderDocument(t *testing.T) {
	svc := newSiteService(t)

	doc := &interfaces.Document{Body: []byte("A **bold** claim.")}
	html, err := svc.RenderDocument(context.Background(), doc, interfaces.ParseOptions{})
	if err != nil {
		t.Fatalf("RenderDocument: %v", err)
	}
	if !strings.Contains(string(html), "<strong>bold</strong>") {
		t.Fatalf("unexpected HTML %q", string(html))
	}
	if string(doc.BodyHTML) != string(html) {
		t.Fatalf("expected document BodyHTML to be set")
	}

	if _, err := svc.RenderDocument(context.Background(), nil, interfaces.ParseOptions{}); err == nil {
		t.Fatalf("expected nil document to fail")
	}
}
