package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	postcmd "github.com/goliatone/go-blog/internal/commands/post"
	"github.com/goliatone/go-blog/posts"
)

var publishAt string

var publishCmd = &cobra.Command{
	Use:   "publish <slug>",
	Short: "Publish a post",
	Long: `Move the post with the given slug to published. A pending schedule is
cancelled; --at backdates or forward-dates the published timestamp.`,
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

		at, err := parseTimeFlag(publishAt)
		if err != nil {
			return err
		}

		var published *posts.Post
		handler := postcmd.NewPublishPostHandler(rt.Module.Posts(), rt.Logger)
		msg := postcmd.PublishPostCommand{
			ID: record.ID,
			At: at,
			ResultCallback: func(post *posts.Post) {
				published = post
			},
		}
		if err := handler.Execute(cmd.Context(), msg); err != nil {
			return fmt.Errorf("publish %q failed: %w", args[0], err)
		}

		if published != nil && published.PublishedAt != nil {
			fmt.Printf("Published %s (published_at %s).\n", published.Slug, published.PublishedAt.Format(timeDisplayLayout))
			return nil
		}
		fmt.Printf("Published %s.\n", args[0])
		return nil
	},
}

func init() {
	publishCmd.Flags().StringVar(&publishAt, "at", "", "published timestamp override, RFC 3339")
}
