package generator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ArtifactKind labels generator outputs for writers and diagnostics.
type ArtifactKind string

const (
	KindPost     ArtifactKind = "post"
	KindPage     ArtifactKind = "page"
	KindAsset    ArtifactKind = "asset"
	KindFeed     ArtifactKind = "feed"
	KindSitemap  ArtifactKind = "sitemap"
	KindRobots   ArtifactKind = "robots"
	KindManifest ArtifactKind = "manifest"
)

// WriteRequest describes one file write routed through an ArtifactWriter.
type WriteRequest struct {
	Path        string
	Content     io.Reader
	Size        int64
	Kind        ArtifactKind
	ContentType string
	Checksum    string
	Metadata    map[string]string
}

// ArtifactWriter abstracts where build outputs land. Paths are relative to
// the writer's root; the default implementation is the output directory on
// disk, tests substitute an in-memory recorder.
type ArtifactWriter interface {
	EnsureDir(ctx context.Context, path string) error
	WriteFile(ctx context.Context, req WriteRequest) error
	ReadFile(ctx context.Context, path string) ([]byte, error)
	Remove(ctx context.Context, path string) error
}

// NewDirWriter returns an ArtifactWriter rooted at dir.
func NewDirWriter(dir string) ArtifactWriter {
	return &dirWriter{root: strings.TrimSpace(dir)}
}

type dirWriter struct {
	root string
}

func (w *dirWriter) resolve(rel string) (string, error) {
	rel = strings.TrimSpace(rel)
	if rel == "" || rel == "." {
		return "", errors.New("generator: artifact path required")
	}
	cleaned := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("generator: artifact path %q escapes the output directory", rel)
	}
	if w.root == "" {
		return cleaned, nil
	}
	return filepath.Join(w.root, cleaned), nil
}

func (w *dirWriter) EnsureDir(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(path) == "" || path == "." {
		return nil
	}
	full, err := w.resolve(path)
	if err != nil {
		return err
	}
	return os.MkdirAll(full, 0o755)
}

func (w *dirWriter) WriteFile(ctx context.Context, req WriteRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if req.Content == nil {
		return errors.New("generator: write requires content reader")
	}
	full, err := w.resolve(req.Path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	data, err := io.ReadAll(req.Content)
	if err != nil {
		return fmt.Errorf("generator: read artifact content for %s: %w", req.Path, err)
	}
	return os.WriteFile(full, data, 0o644)
}

func (w *dirWriter) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full, err := w.resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (w *dirWriter) Remove(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := w.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	// Drop directories the removal emptied, stopping at the root.
	for dir := filepath.Dir(full); dir != "." && dir != w.root; dir = filepath.Dir(dir) {
		if err := os.Remove(dir); err != nil {
			break
		}
	}
	return nil
}

type noopWriter struct{}

func (noopWriter) EnsureDir(context.Context, string) error { return nil }

func (noopWriter) WriteFile(context.Context, WriteRequest) error { return nil }

func (noopWriter) ReadFile(context.Context, string) ([]byte, error) { return nil, fs.ErrNotExist }

func (noopWriter) Remove(context.Context, string) error { return nil }
