package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	postcmd "github.com/goliatone/go-blog/internal/commands/post"
)

var archiveReason string

var archiveCmd = &cobra.Command{
	Use:   "archive <slug>",
	Short: "Retire a post from the published site",
	Long: `Archive the post with the given slug. The record and its history stay
in the store; archiving replaces deletion.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := getRuntime(cmd)
		if err != nil {
			return err
		}

		record, err := resolvePost(cmd, rt, args[0])
		if err != nil {
			return err
		}

		handler := postcmd.NewArchivePostHandler(rt.Module.Posts(), rt.Logger)
		msg := postcmd.ArchivePostCommand{
			ID:     record.ID,
			Reason: archiveReason,
		}
		if err := handler.Execute(cmd.Context(), msg); err != nil {
			return fmt.Errorf("archive %q failed: %w", args[0], err)
		}

		fmt.Printf("Archived %s.\n", args[0])
		return nil
	},
}

func init() {
	archiveCmd.Flags().StringVar(&archiveReason, "reason", "", "note recorded with the archival")
}
