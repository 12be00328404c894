package generator

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	gotheme "github.com/goliatone/go-theme"
)

// ThemingConfig controls theme resolution for rendered pages.
type ThemingConfig struct {
	// Dir holds one subdirectory per theme, each with a go-theme manifest.
	Dir               string
	DefaultTheme      string
	DefaultVariant    string
	CSSVariablePrefix string
	PartialFallbacks  map[string]string
}

type themeManifestLoader interface {
	Load(themePath string) (*gotheme.Manifest, error)
}

type fsThemeManifestLoader struct{}

func (fsThemeManifestLoader) Load(themePath string) (*gotheme.Manifest, error) {
	cleaned := filepath.Clean(strings.TrimSpace(themePath))
	if cleaned == "" {
		return nil, fmt.Errorf("theme path required")
	}

	return gotheme.LoadDir(os.DirFS(cleaned), ".")
}

type themeSelector struct {
	registry       *gotheme.MemoryRegistry
	loader         themeManifestLoader
	dir            string
	defaultTheme   string
	defaultVariant string

	mu        sync.Mutex
	manifests map[string]*gotheme.Manifest
}

func newThemeSelector(cfg ThemingConfig, loader themeManifestLoader) *themeSelector {
	if loader == nil {
		loader = fsThemeManifestLoader{}
	}
	return &themeSelector{
		registry:       gotheme.NewRegistry(),
		loader:         loader,
		dir:            strings.TrimSpace(cfg.Dir),
		defaultTheme:   strings.TrimSpace(cfg.DefaultTheme),
		defaultVariant: strings.TrimSpace(cfg.DefaultVariant),
		manifests:      map[string]*gotheme.Manifest{},
	}
}

// Selection resolves the configured theme. A blank theme name means the
// site runs on the built-in templates and gets a nil selection.
func (s *themeSelector) Selection(name, variant string) (*gotheme.Selection, error) {
	themeName := strings.TrimSpace(name)
	if themeName == "" {
		themeName = s.defaultTheme
	}
	if themeName == "" {
		return nil, nil
	}

	if _, err := s.ensureManifest(themeName); err != nil {
		return nil, err
	}

	selector := gotheme.Selector{
		Registry:       s.registry,
		DefaultTheme:   s.defaultTheme,
		DefaultVariant: s.defaultVariant,
	}

	resolvedVariant := strings.TrimSpace(variant)
	if resolvedVariant == "" {
		resolvedVariant = s.defaultVariant
	}

	selection, err := selector.Select(themeName, resolvedVariant)
	if err != nil {
		return nil, fmt.Errorf("select theme %s: %w", themeName, err)
	}
	return selection, nil
}

// ThemePath returns the on-disk directory for a theme name.
func (s *themeSelector) ThemePath(name string) string {
	name = strings.TrimSpace(name)
	if name == "" || s.dir == "" {
		return ""
	}
	return filepath.Join(s.dir, name)
}

func (s *themeSelector) ensureManifest(name string) (*gotheme.Manifest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if manifest, ok := s.manifests[name]; ok {
		return manifest, nil
	}

	themePath := s.ThemePath(name)
	if themePath == "" {
		return nil, fmt.Errorf("theme directory not configured for %s", name)
	}
	manifest, err := s.loader.Load(themePath)
	if err != nil {
		return nil, fmt.Errorf("load theme manifest from %s: %w", themePath, err)
	}

	normalized := *manifest
	if strings.TrimSpace(normalized.Name) == "" || !strings.EqualFold(normalized.Name, name) {
		normalized.Name = name
	}

	if err := s.registry.Register(&normalized); err != nil {
		return nil, fmt.Errorf("register theme manifest: %w", err)
	}
	s.manifests[name] = &normalized
	return &normalized, nil
}
