package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-blog/internal/bootstrap"
)

var (
	newSlug   string
	newTags   []string
	newAuthor string
)

var newCmd = &cobra.Command{
	Use:   "new <title>...",
	Short: "Scaffold a draft post file",
	Long: `Create a markdown file in the content directory with front-matter ready
to edit: quoted title, the current time with offset, and draft: true.
The file name is the date plus a slug derived from the title.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// Scaffolding only needs the content directory, so the database
		// stays untouched and new works before the first import.
		cfg, err := bootstrap.LoadConfig(bootstrap.Options{
			ConfigPath: cfgFile,
			ContentDir: contentDir,
		})
		if err != nil {
			return err
		}

		title := strings.TrimSpace(strings.Join(args, " "))
		if title == "" {
			return fmt.Errorf("title is required")
		}

		now := time.Now()
		name, err := scaffoldFilename(title, newSlug, now)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(cfg.Content.Dir, 0o755); err != nil {
			return fmt.Errorf("create content dir: %w", err)
		}

		path := filepath.Join(cfg.Content.Dir, name)
		file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err != nil {
			if errors.Is(err, fs.ErrExist) {
				return fmt.Errorf("%s already exists; pick another slug with --slug", path)
			}
			return fmt.Errorf("create %s: %w", path, err)
		}
		defer file.Close()

		if _, err := file.WriteString(scaffoldDocument(title, newTags, newAuthor, now)); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}

		fmt.Printf("Created %s\n", path)
		return nil
	},
}

func init() {
	newCmd.Flags().StringVar(&newSlug, "slug", "", "slug override for the file name")
	newCmd.Flags().StringSliceVar(&newTags, "tag", nil, "tag to include in the front-matter (repeatable)")
	newCmd.Flags().StringVar(&newAuthor, "author", "", "author recorded in the front-matter")
}
