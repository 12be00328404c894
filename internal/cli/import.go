package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	markdowncmd "github.com/goliatone/go-blog/internal/commands/markdown"
)

var (
	importDir           string
	importDefaultStatus string
	importDryRun        bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import markdown files into the post store",
	Long: `Walk the content directory and create or refresh a post for every
markdown file found. Unchanged files are skipped by checksum. Import
never touches posts whose files are gone; use sync to archive those.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := getRuntime(cmd)
		if err != nil {
			return err
		}

		handler := markdowncmd.NewImportDirectoryHandler(rt.Module.Markdown(), rt.Logger, markdowncmd.FeatureGates{})
		msg := markdowncmd.ImportDirectoryCommand{
			Directory:     importDir,
			DefaultStatus: importDefaultStatus,
			DryRun:        importDryRun,
		}
		if err := handler.Execute(cmd.Context(), msg); err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		if importDryRun {
			fmt.Println("Dry run mode. No posts persisted.")
			return nil
		}
		fmt.Println("Import complete.")
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importDir, "dir", ".", "directory to import, relative to the content root")
	importCmd.Flags().StringVar(&importDefaultStatus, "default-status", "", "status for files without a draft flag or status key")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "preview the import without persisting posts")
}
