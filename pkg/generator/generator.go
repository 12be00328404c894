// Package generator exposes the static site generation API for go-blog hosts.
// Use NewService with Config and Dependencies to render the site into an
// output directory, or the manifest helpers to inspect a previous build.
package generator

import internal "github.com/goliatone/go-blog/internal/generator"

type (
	Service              = internal.Service
	Config               = internal.Config
	ThemingConfig        = internal.ThemingConfig
	BuildOptions         = internal.BuildOptions
	BuildResult          = internal.BuildResult
	RenderedPage         = internal.RenderedPage
	RenderDiagnostic     = internal.RenderDiagnostic
	Dependencies         = internal.Dependencies
	ArtifactKind         = internal.ArtifactKind
	ArtifactWriter       = internal.ArtifactWriter
	WriteRequest         = internal.WriteRequest
	AssetSource          = internal.AssetSource
	NoOpAssetSource      = internal.NoOpAssetSource
	Manifest             = internal.Manifest
	ManifestArtifact     = internal.ManifestArtifact
	TemplateContext      = internal.TemplateContext
	SiteMetadata         = internal.SiteMetadata
	PostRenderingContext = internal.PostRenderingContext
	DependencyMetadata   = internal.DependencyMetadata
)

// ManifestFileName is the manifest's filename inside the output directory.
const ManifestFileName = internal.ManifestFileName

var ErrServiceDisabled = internal.ErrServiceDisabled

// NewService wires a static site generator with the supplied configuration
// and dependencies.
func NewService(cfg Config, deps Dependencies) Service {
	return internal.NewService(cfg, deps)
}

// NewDisabledService returns a Service that fails all operations with
// ErrServiceDisabled.
func NewDisabledService() Service {
	return internal.NewDisabledService()
}

// NewDirWriter returns an ArtifactWriter rooted at dir.
func NewDirWriter(dir string) ArtifactWriter {
	return internal.NewDirWriter(dir)
}

// NewDirAssetSource serves static assets from a directory on disk.
func NewDirAssetSource(dir string) AssetSource {
	return internal.NewDirAssetSource(dir)
}

// ReadManifestDir loads the build manifest from an output directory.
func ReadManifestDir(dir string) (*Manifest, error) {
	return internal.ReadManifestDir(dir)
}

// ParseManifest decodes manifest JSON.
func ParseManifest(data []byte) (*Manifest, error) {
	return internal.ParseManifest(data)
}
