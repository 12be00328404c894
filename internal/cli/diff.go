package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	staticcmd "github.com/goliatone/go-blog/internal/commands/static"
	"github.com/goliatone/go-blog/internal/generator"
)

var (
	diffForce bool
	diffTags  []string
	diffPosts []string
)

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Show what a build would change",
	Long: `Run the generator in dry-run mode and list every artifact a real build
would write or prune. Nothing touches the output directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := getRuntime(cmd)
		if err != nil {
			return err
		}

		postIDs, err := parsePostIDs(diffPosts)
		if err != nil {
			return err
		}

		var outcome *generator.BuildResult
		handler := staticcmd.NewDiffSiteHandler(rt.Module.Generator(), rt.Logger, generatorGates(rt))
		msg := staticcmd.DiffSiteCommand{
			PostIDs: postIDs,
			Tags:    diffTags,
			Force:   diffForce,
			ResultCallback: func(envelope staticcmd.ResultEnvelope) {
				outcome = envelope.Result
			},
		}
		if err := handler.Execute(cmd.Context(), msg); err != nil {
			return fmt.Errorf("diff failed: %w", err)
		}

		printDiffResult(outcome)
		return nil
	},
}

func printDiffResult(result *generator.BuildResult) {
	if result == nil {
		fmt.Println("Diff produced no result.")
		return
	}

	changes := len(result.Rendered) + len(result.Pruned)
	if changes == 0 {
		fmt.Println("No changes. Output is up to date.")
		return
	}

	for _, page := range result.Rendered {
		fmt.Printf("  ~ %s\n", page.Output)
	}
	for _, pruned := range result.Pruned {
		fmt.Printf("  - %s\n", pruned)
	}
	fmt.Printf("%d change(s) pending. Run build to apply.\n", changes)
}

func init() {
	diffCmd.Flags().BoolVar(&diffForce, "force", false, "treat every artifact as changed")
	diffCmd.Flags().StringSliceVar(&diffTags, "tag", nil, "limit the diff to posts carrying the tag (repeatable)")
	diffCmd.Flags().StringSliceVar(&diffPosts, "post", nil, "limit the diff to the given post IDs (repeatable)")
}
