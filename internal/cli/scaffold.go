package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-blog/posts"
)

// scaffoldDocument renders the front-matter block and starter body for a
// fresh draft. The title is double-quoted so punctuation survives YAML, and
// the date carries the local offset so it round-trips through the loader.
func scaffoldDocument(title string, tags []string, author string, now time.Time) string {
	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "title: %s\n", strconv.Quote(title))
	fmt.Fprintf(&b, "date: %s\n", now.Format(time.RFC3339))
	b.WriteString("draft: true\n")
	if len(tags) > 0 {
		b.WriteString("tags:\n")
		for _, tag := range tags {
			if trimmed := strings.TrimSpace(tag); trimmed != "" {
				fmt.Fprintf(&b, "  - %s\n", trimmed)
			}
		}
	}
	if trimmed := strings.TrimSpace(author); trimmed != "" {
		fmt.Fprintf(&b, "author: %s\n", trimmed)
	}
	b.WriteString("---\n")
	b.WriteString("\n")
	b.WriteString("Start writing.\n")
	return b.String()
}

// scaffoldFilename derives the date-prefixed file name for a new draft. An
// explicit slug wins over one derived from the title.
func scaffoldFilename(title, slugOverride string, now time.Time) (string, error) {
	source := strings.TrimSpace(slugOverride)
	if source == "" {
		source = title
	}
	slug, err := posts.NormalizeSlug(source)
	if err != nil {
		return "", fmt.Errorf("derive slug from %q: %w", source, err)
	}
	return fmt.Sprintf("%s-%s.md", now.Format("2006-01-02"), slug), nil
}
