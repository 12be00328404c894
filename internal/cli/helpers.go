package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-blog/internal/bootstrap"
	staticcmd "github.com/goliatone/go-blog/internal/commands/static"
	"github.com/goliatone/go-blog/posts"
)

const (
	timePrecision     = time.Millisecond
	timeDisplayLayout = "2006-01-02 15:04:05 MST"
)

// generatorGates reads the generator toggles the same way the container
// does when deciding between the live and disabled service.
func generatorGates(rt *bootstrap.Runtime) staticcmd.FeatureGates {
	return staticcmd.FeatureGates{
		GeneratorEnabled: func() bool {
			return rt.Config.Features.Generator && rt.Config.Generator.Enabled
		},
	}
}

// exportGates always allow packaging. The output directory may have been
// produced by an earlier run with different toggles, and tarring it up
// needs nothing from the generator itself.
func exportGates() staticcmd.FeatureGates {
	return staticcmd.FeatureGates{
		GeneratorEnabled: func() bool { return true },
	}
}

func resolvePost(cmd *cobra.Command, rt *bootstrap.Runtime, slug string) (*posts.Post, error) {
	record, err := rt.Module.Posts().GetBySlug(cmd.Context(), strings.TrimSpace(slug))
	if err != nil {
		return nil, fmt.Errorf("resolve post %q: %w", slug, err)
	}
	return record, nil
}

func parseTimeFlag(value string) (*time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	at, err := time.Parse(time.RFC3339, trimmed)
	if err != nil {
		return nil, fmt.Errorf("invalid time %q, want RFC 3339 like 2026-09-01T09:00:00-05:00", value)
	}
	return &at, nil
}
