package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	markdowncmd "github.com/goliatone/go-blog/internal/commands/markdown"
)

var (
	syncDir            string
	syncDefaultStatus  string
	syncDryRun         bool
	syncArchiveOrphans bool
	syncUpdateExisting bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile the post store with the content directory",
	Long: `Compare the content directory against the post store: new files create
posts, changed files update them, and posts whose files vanished are
archived. Nothing is ever deleted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := getRuntime(cmd)
		if err != nil {
			return err
		}

		handler := markdowncmd.NewSyncDirectoryHandler(rt.Module.Markdown(), rt.Logger, markdowncmd.FeatureGates{})
		msg := markdowncmd.SyncDirectoryCommand{
			Directory:      syncDir,
			DefaultStatus:  syncDefaultStatus,
			DryRun:         syncDryRun,
			ArchiveOrphans: syncArchiveOrphans,
			UpdateExisting: syncUpdateExisting,
		}
		if err := handler.Execute(cmd.Context(), msg); err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}

		if syncDryRun {
			fmt.Println("Dry run mode. No changes persisted.")
			return nil
		}
		fmt.Println("Sync complete.")
		return nil
	},
}

func init() {
	syncCmd.Flags().StringVar(&syncDir, "dir", ".", "directory to sync, relative to the content root")
	syncCmd.Flags().StringVar(&syncDefaultStatus, "default-status", "", "status for files without a draft flag or status key")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "preview the sync without persisting changes")
	syncCmd.Flags().BoolVar(&syncArchiveOrphans, "archive-orphans", true, "archive posts whose source files disappeared")
	syncCmd.Flags().BoolVar(&syncUpdateExisting, "update", true, "update posts whose source files changed")
}
