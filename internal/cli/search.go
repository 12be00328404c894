package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-blog/internal/search"
	"github.com/goliatone/go-blog/posts"
)

var (
	searchDrafts bool
	searchLimit  int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>...",
	Short: "Search the post corpus",
	Long: `Query the full-text index over titles, bodies, and tags. Drafts stay
out of the results unless --drafts is set.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := getRuntime(cmd)
		if err != nil {
			return err
		}

		idx, err := rt.Module.Search()
		if err != nil {
			return fmt.Errorf("search unavailable: %w", err)
		}
		defer idx.Close()

		// Rebuilding per invocation keeps the index honest for a corpus
		// this size; the preview server maintains its own live index.
		items, err := rt.Module.Posts().List(cmd.Context(), posts.ListOptions{})
		if err != nil {
			return fmt.Errorf("load posts: %w", err)
		}
		if err := idx.Rebuild(cmd.Context(), items); err != nil {
			return fmt.Errorf("rebuild index: %w", err)
		}

		hits, err := idx.Search(cmd.Context(), search.Query{
			Text:          strings.Join(args, " "),
			IncludeDrafts: searchDrafts,
			Limit:         searchLimit,
		})
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}

		if len(hits) == 0 {
			fmt.Println("No matches.")
			return nil
		}
		for rank, hit := range hits {
			fmt.Printf("%2d. %s  %s  [%s]\n", rank+1, hit.Slug, hit.Date.Format("2006-01-02"), hit.Status)
			if snippet := strings.TrimSpace(hit.Snippet); snippet != "" {
				fmt.Printf("    %s\n", snippet)
			}
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().BoolVar(&searchDrafts, "drafts", false, "include draft posts in results")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 10, "maximum number of results")
}
