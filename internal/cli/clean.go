package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	staticcmd "github.com/goliatone/go-blog/internal/commands/static"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove generated artifacts",
	Long: `Delete every file the build manifest lists from the output directory.
Files the generator never wrote are left alone.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := getRuntime(cmd)
		if err != nil {
			return err
		}

		handler := staticcmd.NewCleanSiteHandler(rt.Module.Generator(), rt.Logger, generatorGates(rt))
		if err := handler.Execute(cmd.Context(), staticcmd.CleanSiteCommand{}); err != nil {
			return fmt.Errorf("clean failed: %w", err)
		}

		fmt.Println("Clean complete.")
		return nil
	},
}
