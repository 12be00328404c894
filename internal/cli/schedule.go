package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	postcmd "github.com/goliatone/go-blog/internal/commands/post"
	"github.com/goliatone/go-blog/posts"
)

var (
	scheduleAt     string
	scheduleCancel bool
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule <slug>",
	Short: "Schedule a post for future publishing",
	Long: `Park the post until the given time; the background worker publishes it
once the clock passes --at. Use --cancel to clear a pending schedule
and return the post to its previous state.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !scheduleCancel && scheduleAt == "" {
			return fmt.Errorf("either --at or --cancel is required")
		}

		rt, err := getRuntime(cmd)
		if err != nil {
			return err
		}

		record, err := resolvePost(cmd, rt, args[0])
		if err != nil {
			return err
		}

		msg := postcmd.SchedulePostCommand{ID: record.ID}
		if !scheduleCancel {
			at, err := parseTimeFlag(scheduleAt)
			if err != nil {
				return err
			}
			msg.PublishAt = at
		}

		var scheduled *posts.Post
		msg.ResultCallback = func(post *posts.Post) {
			scheduled = post
		}

		handler := postcmd.NewSchedulePostHandler(rt.Module.Posts(), rt.Logger, postcmd.FeatureGates{
			SchedulingEnabled: func() bool { return rt.Config.Features.Scheduling },
		})
		if err := handler.Execute(cmd.Context(), msg); err != nil {
			return fmt.Errorf("schedule %q failed: %w", args[0], err)
		}

		if scheduleCancel {
			status := "draft"
			if scheduled != nil {
				status = string(scheduled.Status)
			}
			fmt.Printf("Schedule cancelled; %s is %s again.\n", args[0], status)
			return nil
		}
		if scheduled != nil && scheduled.PublishAt != nil {
			fmt.Printf("Scheduled %s for %s.\n", scheduled.Slug, scheduled.PublishAt.Format(timeDisplayLayout))
			return nil
		}
		fmt.Printf("Scheduled %s.\n", args[0])
		return nil
	},
}

func init() {
	scheduleCmd.Flags().StringVar(&scheduleAt, "at", "", "publish time, RFC 3339")
	scheduleCmd.Flags().BoolVar(&scheduleCancel, "cancel", false, "clear any pending schedule")
}
