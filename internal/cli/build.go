package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	staticcmd "github.com/goliatone/go-blog/internal/commands/static"
	"github.com/goliatone/go-blog/internal/generator"
)

var (
	buildForce      bool
	buildDryRun     bool
	buildAssetsOnly bool
	buildTheme      string
	buildVariant    string
	buildTags       []string
	buildPosts      []string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Generate the static site",
	Long: `Render every publishable post plus the index, tag, and archive pages
into the output directory. Unchanged artifacts are skipped unless
--force; --dry-run reports what would be written without writing it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := getRuntime(cmd)
		if err != nil {
			return err
		}

		postIDs, err := parsePostIDs(buildPosts)
		if err != nil {
			return err
		}

		var outcome *generator.BuildResult
		handler := staticcmd.NewBuildSiteHandler(rt.Module.Generator(), rt.Logger, generatorGates(rt))
		msg := staticcmd.BuildSiteCommand{
			PostIDs:      postIDs,
			Tags:         buildTags,
			Theme:        buildTheme,
			ThemeVariant: buildVariant,
			Force:        buildForce,
			DryRun:       buildDryRun,
			AssetsOnly:   buildAssetsOnly,
			ResultCallback: func(envelope staticcmd.ResultEnvelope) {
				outcome = envelope.Result
			},
		}
		if err := handler.Execute(cmd.Context(), msg); err != nil {
			return fmt.Errorf("build failed: %w", err)
		}

		printBuildResult(outcome)
		return nil
	},
}

func printBuildResult(result *generator.BuildResult) {
	if result == nil {
		fmt.Println("Build produced no result.")
		return
	}

	verb := "Built"
	if result.DryRun {
		verb = "Would build"
	}
	fmt.Printf("%s %d post(s), %d page(s), %d asset(s), %d feed(s) in %s.\n",
		verb, result.PostsBuilt, result.PagesBuilt, result.AssetsBuilt, result.FeedsBuilt,
		result.Duration.Round(timePrecision))
	if skipped := result.PostsSkipped + result.PagesSkipped + result.AssetsSkipped; skipped > 0 {
		fmt.Printf("Skipped %d unchanged artifact(s).\n", skipped)
	}
	for _, pruned := range result.Pruned {
		fmt.Printf("  - pruned %s\n", pruned)
	}
	for _, buildErr := range result.Errors {
		fmt.Printf("  ✗ %v\n", buildErr)
	}
}

func parsePostIDs(values []string) ([]uuid.UUID, error) {
	if len(values) == 0 {
		return nil, nil
	}
	ids := make([]uuid.UUID, 0, len(values))
	for _, value := range values {
		id, err := uuid.Parse(value)
		if err != nil {
			return nil, fmt.Errorf("invalid post id %q: %w", value, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func init() {
	buildCmd.Flags().BoolVar(&buildForce, "force", false, "rebuild artifacts even when unchanged")
	buildCmd.Flags().BoolVar(&buildDryRun, "dry-run", false, "report what would be built without writing")
	buildCmd.Flags().BoolVar(&buildAssetsOnly, "assets-only", false, "copy assets without rendering pages")
	buildCmd.Flags().StringVar(&buildTheme, "theme", "", "theme override for this build")
	buildCmd.Flags().StringVar(&buildVariant, "variant", "", "theme variant override for this build")
	buildCmd.Flags().StringSliceVar(&buildTags, "tag", nil, "limit the build to posts carrying the tag (repeatable)")
	buildCmd.Flags().StringSliceVar(&buildPosts, "post", nil, "limit the build to the given post IDs (repeatable)")
}
