package markdown

import (
	"bytes"
	"context"
	"crypto/sha256"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoaderLoadFile(t *testing.T) {
	loader := NewLoader(os.DirFS("testdata"), LoaderConfig{Pattern: "*.md", Recursive: true})

	result, err := loader.LoadFile(context.Background(), "basic.md", LoadParams{})
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	raw := readFixture(t, filepath.Join("testdata", "basic.md"))
	if !bytes.Equal(result.Source, raw) {
		t.Fatalf("expected Source to carry the raw file bytes")
	}

	sum := sha256.Sum256(raw)
	if !bytes.Equal(result.Document.Checksum, sum[:]) {
		t.Fatalf("checksum mismatch: %x", result.Document.Checksum)
	}
	if result.Document.Slug != "shipping-a-side-project" {
		t.Fatalf("unexpected slug %q", result.Document.Slug)
	}
	if result.Document.LastModified.IsZero() {
		t.Fatalf("expected LastModified to come from file info")
	}
}

func TestLoaderLoadDirectory(t *testing.T) {
	loader := NewLoader(os.DirFS(filepath.Join("testdata", "site")), LoaderConfig{Pattern: "*.md", Recursive: true})

	results, fileErrs, err := loader.LoadDirectory(context.Background(), ".", LoadParams{})
	if err != nil {
		t.Fatalf("LoadDirectory: %v", err)
	}
	if len(fileErrs) != 0 {
		t.Fatalf("expected no file errors, got %v", fileErrs)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 documents, got %d", len(results))
	}

	want := []string{
		"posts/drafts/caching-notes.md",
		"posts/hello-world.md",
		"posts/launch-week.md",
	}
	for i, path := range want {
		if results[i].Document.FilePath != path {
			t.Fatalf("expected %s at index %d, got %s", path, i, results[i].Document.FilePath)
		}
	}
}

func TestLoaderLoadDirectoryNonRecursive(t *testing.T) {
	loader := NewLoader(os.DirFS(filepath.Join("testdata", "site")), LoaderConfig{Pattern: "*.md", Recursive: true})

	recurse := false
	results, fileErrs, err := loader.LoadDirectory(context.Background(), "posts", LoadParams{Recursive: &recurse})
	if err != nil {
		t.Fatalf("LoadDirectory: %v", err)
	}
	if len(fileErrs) != 0 {
		t.Fatalf("expected no file errors, got %v", fileErrs)
	}
	if len(results) != 2 {
		t.Fatalf("expected the drafts directory to be skipped, got %d documents", len(results))
	}
}

func TestLoaderLoadDirectoryCollectsFileErrors(t *testing.T) {
	loader := NewLoader(os.DirFS(filepath.Join("testdata", "partial")), LoaderConfig{Pattern: "*.md", Recursive: true})

	results, fileErrs, err := loader.LoadDirectory(context.Background(), ".", LoadParams{})
	if err != nil {
		t.Fatalf("LoadDirectory: %v", err)
	}
	if len(results) != 1 || results[0].Document.Slug != "field-notes" {
		t.Fatalf("expected the healthy document to load, got %d results", len(results))
	}
	if len(fileErrs) != 1 {
		t.Fatalf("expected one file error, got %d", len(fileErrs))
	}
	if fileErrs[0].Path != "broken-date.md" {
		t.Fatalf("unexpected failing path %q", fileErrs[0].Path)
	}
	if !strings.Contains(fileErrs[0].Error(), "unrecognized date") {
		t.Fatalf("unexpected error: %v", fileErrs[0])
	}
}

func TestLoaderPatternOverride(t *testing.T) {
	loader := NewLoader(os.DirFS(filepath.Join("testdata", "site")), LoaderConfig{Pattern: "*.md", Recursive: true})

	results, fileErrs, err := loader.LoadDirectory(context.Background(), ".", LoadParams{Pattern: "*.markdown"})
	if err != nil {
		t.Fatalf("LoadDirectory: %v", err)
	}
	if len(results) != 0 || len(fileErrs) != 0 {
		t.Fatalf("expected no matches for *.markdown, got %d documents", len(results))
	}
}
