package staticcmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-blog/internal/export"
	"github.com/goliatone/go-blog/internal/generator"
	"github.com/google/uuid"
)

const (
	buildSiteMessageType  = "blog.static.build"
	diffSiteMessageType   = "blog.static.diff"
	cleanSiteMessageType  = "blog.static.clean"
	exportSiteMessageType = "blog.static.export"
)

// ResultCallback receives build results produced by generator operations. The callback is optional
// and is invoked synchronously from the handler when a BuildResult is available.
type ResultCallback func(ResultEnvelope)

// ResultEnvelope captures the outcome of a static command execution that generated a BuildResult.
type ResultEnvelope struct {
	Result   *generator.BuildResult
	Metadata map[string]any
}

// ExportCallback receives the archive description produced by an export run.
type ExportCallback func(*export.Result)

// BuildSiteCommand executes a generator build using the provided filters.
type BuildSiteCommand struct {
	PostIDs        []uuid.UUID    `json:"post_ids,omitempty"`
	Tags           []string       `json:"tags,omitempty"`
	Theme          string         `json:"theme,omitempty"`
	ThemeVariant   string         `json:"theme_variant,omitempty"`
	Force          bool           `json:"force,omitempty"`
	DryRun         bool           `json:"dry_run,omitempty"`
	AssetsOnly     bool           `json:"assets_only,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (BuildSiteCommand) Type() string { return buildSiteMessageType }

// Validate ensures tags are well-formed and post identifiers are valid UUIDs.
func (m BuildSiteCommand) Validate() error {
	errs := validation.Errors{}
	for _, tag := range m.Tags {
		if strings.TrimSpace(tag) == "" {
			errs["tags"] = validation.NewError("blog.static.build.tag_invalid", "tags must not contain empty values")
			break
		}
	}
	for _, id := range m.PostIDs {
		if id == uuid.Nil {
			errs["post_ids"] = validation.NewError("blog.static.build.post_id_invalid", "post_ids must contain valid identifiers")
			break
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// DiffSiteCommand performs a dry-run build to surface differences without writing artifacts.
type DiffSiteCommand struct {
	PostIDs        []uuid.UUID    `json:"post_ids,omitempty"`
	Tags           []string       `json:"tags,omitempty"`
	Force          bool           `json:"force,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (DiffSiteCommand) Type() string { return diffSiteMessageType }

// Validate ensures tags and post identifiers are well-formed.
func (m DiffSiteCommand) Validate() error {
	errs := validation.Errors{}
	for _, id := range m.PostIDs {
		if id == uuid.Nil {
			errs["post_ids"] = validation.NewError("blog.static.diff.post_id_invalid", "post_ids must contain valid identifiers")
			break
		}
	}
	for _, tag := range m.Tags {
		if strings.TrimSpace(tag) == "" {
			errs["tags"] = validation.NewError("blog.static.diff.tag_invalid", "tags must not contain empty values")
			break
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// CleanSiteCommand clears generator artifacts listed in the build manifest.
type CleanSiteCommand struct{}

// Type implements command.Message.
func (CleanSiteCommand) Type() string { return cleanSiteMessageType }

// Validate satisfies command.Message; there are no payload constraints.
func (CleanSiteCommand) Validate() error { return nil }

// ExportSiteCommand packages the generated site into a compressed archive.
type ExportSiteCommand struct {
	// Name overrides the archive base name, defaulting to the site title.
	Name string `json:"name,omitempty"`
	// Force packages the output even when it disagrees with the manifest.
	Force          bool           `json:"force,omitempty"`
	ExportCallback ExportCallback `json:"-"`
}

// Type implements command.Message.
func (ExportSiteCommand) Type() string { return exportSiteMessageType }

// Validate satisfies command.Message; the exporter normalises the name itself.
func (ExportSiteCommand) Validate() error { return nil }

// FeatureGates exposes runtime switches used to guard handler execution. The
// generator is opt-in, so a missing gate keeps build commands disabled.
type FeatureGates struct {
	GeneratorEnabled func() bool
}

func (g FeatureGates) generatorEnabled() bool {
	if g.GeneratorEnabled == nil {
		return false
	}
	return g.GeneratorEnabled()
}
