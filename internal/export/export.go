// Package export packages a built site directory into a portable
// tar.gz archive, verifying the directory against its build manifest
// first so half-finished or hand-edited output never ships by accident.
package export

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/goliatone/go-blog/internal/generator"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/pkg/interfaces"
	"github.com/goliatone/go-blog/posts"
)

var (
	// ErrServiceDisabled is returned when exporting is turned off.
	ErrServiceDisabled = errors.New("export: service disabled")
	// ErrNoManifest is returned when the output directory was never built.
	ErrNoManifest = errors.New("export: output directory has no build manifest")
	// ErrDirtyOutput is returned when the output directory diverged from
	// its manifest. VerificationError carries the details.
	ErrDirtyOutput = errors.New("export: output directory does not match its manifest")

	errOutputDirRequired = errors.New("export: output directory is required")
	errNothingToExport   = errors.New("export: output directory holds no files")
)

// Exporter packages the built site into a timestamped archive.
type Exporter interface {
	Export(ctx context.Context, opts Options) (*Result, error)
}

// Options control a single export run.
type Options struct {
	// Name overrides the archive base name. Defaults to the slugified
	// site title, then "site".
	Name string
	// Force packages the directory even when verification fails or no
	// manifest exists.
	Force bool
}

// Result summarizes a packaged site.
type Result struct {
	ArchivePath string
	Files       int
	Bytes       int64
	ArchiveSize int64
	GeneratedAt time.Time
	CreatedAt   time.Time
}

// Config carries the exporter settings.
type Config struct {
	// OutputDir is the built site directory to package.
	OutputDir string
	// Dir is where archives land. Defaults to the working directory.
	Dir string
	// SiteTitle seeds the default archive base name.
	SiteTitle string
}

// Dependencies lists the collaborating services.
type Dependencies struct {
	Logger interfaces.Logger
}

type service struct {
	cfg    Config
	logger interfaces.Logger
	now    func() time.Time
}

// NewService builds the exporter.
func NewService(cfg Config, deps Dependencies) Exporter {
	logger := deps.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	return &service{cfg: cfg, logger: logger, now: time.Now}
}

// NewDisabledService returns an exporter that rejects every call.
func NewDisabledService() Exporter {
	return disabledService{}
}

func (s *service) Export(ctx context.Context, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	outputDir := strings.TrimSpace(s.cfg.OutputDir)
	if outputDir == "" {
		return nil, errOutputDirRequired
	}

	manifest, err := generator.ReadManifestDir(outputDir)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist):
		if !opts.Force {
			return nil, fmt.Errorf("%w: %s", ErrNoManifest, outputDir)
		}
		manifest = nil
	default:
		return nil, err
	}

	files, err := collectFiles(outputDir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errNothingToExport
	}

	if manifest != nil {
		if verr := verifyAgainstManifest(outputDir, manifest, files); verr != nil {
			if !opts.Force {
				return nil, verr
			}
			s.logger.Warn("export: packaging a dirty output directory",
				"missing", len(verr.Missing),
				"changed", len(verr.Changed),
				"untracked", len(verr.Untracked),
			)
		}
	}

	createdAt := s.now().UTC()
	modTime := createdAt
	var generatedAt time.Time
	if manifest != nil && !manifest.GeneratedAt.IsZero() {
		generatedAt = manifest.GeneratedAt
		modTime = manifest.GeneratedAt.UTC()
	}

	archiveName := fmt.Sprintf("%s-%s.tar.gz", archiveBaseName(opts.Name, s.cfg.SiteTitle), createdAt.Format("20060102-150405"))
	archiveDir := strings.TrimSpace(s.cfg.Dir)
	if archiveDir == "" {
		archiveDir = "."
	}
	archivePath := filepath.Join(archiveDir, archiveName)

	written, err := writeArchive(ctx, outputDir, files, archivePath, modTime)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(archivePath)
	if err != nil {
		return nil, fmt.Errorf("export: stat archive: %w", err)
	}

	s.logger.Info("site export finished",
		"archive", archivePath,
		"files", len(files),
		"bytes", written,
		"archive_size", info.Size(),
	)

	return &Result{
		ArchivePath: archivePath,
		Files:       len(files),
		Bytes:       written,
		ArchiveSize: info.Size(),
		GeneratedAt: generatedAt,
		CreatedAt:   createdAt,
	}, nil
}

// collectFiles lists every regular file under dir as sorted slash-relative
// paths, so archives of the same build are laid out identically.
func collectFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("export: walk output: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

func writeArchive(ctx context.Context, dir string, files []string, archivePath string, modTime time.Time) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(archivePath), 0o755); err != nil {
		return 0, fmt.Errorf("export: prepare archive dir: %w", err)
	}
	out, err := os.OpenFile(archivePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, fmt.Errorf("export: create archive: %w", err)
	}

	written, err := fillArchive(ctx, out, dir, files, modTime)
	if err != nil {
		out.Close()
		os.Remove(archivePath)
		return 0, err
	}
	if err := out.Close(); err != nil {
		os.Remove(archivePath)
		return 0, fmt.Errorf("export: close archive: %w", err)
	}
	return written, nil
}

func fillArchive(ctx context.Context, out io.Writer, dir string, files []string, modTime time.Time) (int64, error) {
	zw, err := gzip.NewWriterLevel(out, gzip.BestCompression)
	if err != nil {
		return 0, fmt.Errorf("export: gzip writer: %w", err)
	}
	zw.ModTime = modTime
	tw := tar.NewWriter(zw)

	var total int64
	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		full := filepath.Join(dir, filepath.FromSlash(rel))
		info, err := os.Stat(full)
		if err != nil {
			return 0, fmt.Errorf("export: stat %s: %w", rel, err)
		}
		header := &tar.Header{
			Name:    rel,
			Mode:    0o644,
			Size:    info.Size(),
			ModTime: modTime,
			Format:  tar.FormatPAX,
		}
		if err := tw.WriteHeader(header); err != nil {
			return 0, fmt.Errorf("export: write header %s: %w", rel, err)
		}
		src, err := os.Open(full)
		if err != nil {
			return 0, fmt.Errorf("export: open %s: %w", rel, err)
		}
		n, err := io.Copy(tw, src)
		src.Close()
		if err != nil {
			return 0, fmt.Errorf("export: archive %s: %w", rel, err)
		}
		total += n
	}

	// Close order matters: tar trailer, then gzip frame, then the file.
	if err := tw.Close(); err != nil {
		return 0, fmt.Errorf("export: finish tar: %w", err)
	}
	if err := zw.Close(); err != nil {
		return 0, fmt.Errorf("export: finish gzip: %w", err)
	}
	return total, nil
}

// archiveBaseName normalizes the requested name, then the site title,
// into a slug suitable for a file name.
func archiveBaseName(name, title string) string {
	for _, candidate := range []string{name, title} {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		if normalized, err := posts.NormalizeSlug(candidate); err == nil && normalized != "" {
			return normalized
		}
		fields := strings.Fields(strings.ToLower(candidate))
		if len(fields) > 0 {
			return strings.Join(fields, "-")
		}
	}
	return "site"
}

type disabledService struct{}

func (disabledService) Export(context.Context, Options) (*Result, error) {
	return nil, ErrServiceDisabled
}
