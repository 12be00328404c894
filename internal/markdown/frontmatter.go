package markdown

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/frontmatter"

	"github.com/goliatone/go-blog/pkg/interfaces"
	"github.com/goliatone/go-blog/posts"
)

// dateLayouts lists the timestamp shapes accepted for the front-matter date
// key. The publishing convention is an ISO-8601 timestamp with an explicit
// timezone offset; the remaining layouts keep older files loading and are
// read as UTC.
var dateLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02 15:04:05 -07:00",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// offsetLayouts mirrors the subset of dateLayouts that spell out a timezone.
var offsetLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02 15:04:05 -07:00",
	"2006-01-02 15:04:05 -0700",
}

// ParseDate interprets a front-matter date value. Offset-carrying layouts are
// tried first; offset-less values are accepted and anchored to UTC. An empty
// value yields the zero time without an error so callers can distinguish a
// missing date from a malformed one.
func ParseDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("markdown: unrecognized date %q", value)
}

// DateHasOffset reports whether the raw date value carries an explicit
// timezone offset (or the Z suffix).
func DateHasOffset(value string) bool {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return false
	}
	for _, layout := range offsetLayouts {
		if _, err := time.Parse(layout, trimmed); err == nil {
			return true
		}
	}
	return false
}

// ParseFrontMatter extracts metadata and markdown body content from the
// provided source bytes. It returns the structured front-matter, the markdown
// body without delimiters, and any error encountered. A file without a
// front-matter block parses cleanly with empty metadata.
func ParseFrontMatter(source []byte) (interfaces.FrontMatter, []byte, error) {
	var meta frontMatterEnvelope

	// Strip a UTF-8 BOM so the delimiter scan still finds the header block.
	source = bytes.TrimPrefix(source, []byte("\xef\xbb\xbf"))

	reader := bytes.NewReader(source)
	body, err := frontmatter.Parse(reader, &meta)
	if err != nil {
		return interfaces.FrontMatter{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}

	parsed, err := envelopeToFrontMatter(meta)
	if err != nil {
		return interfaces.FrontMatter{}, nil, err
	}
	return parsed, body, nil
}

// BuildDocument assembles an interfaces.Document from the supplied file path,
// raw content, and modification time. The document slug falls back to the file
// name when the header omits one. BodyHTML is intentionally left empty so
// callers can render lazily.
func BuildDocument(path string, source []byte, modified time.Time) (*interfaces.Document, error) {
	meta, body, err := ParseFrontMatter(source)
	if err != nil {
		return nil, err
	}

	return &interfaces.Document{
		FilePath:     path,
		Slug:         documentSlug(path, meta),
		FrontMatter:  meta,
		Body:         body,
		LastModified: modified,
	}, nil
}

// SlugFromFilename derives a slug from a source file name. The extension and
// any leading YYYY-MM-DD- date prefix are dropped before normalization, so
// "posts/2024-03-09-shipping-it.md" becomes "shipping-it".
func SlugFromFilename(path string) string {
	base := filepath.Base(filepath.ToSlash(path))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = trimDatePrefix(base)

	normalized, err := posts.NormalizeSlug(base)
	if err != nil {
		return ""
	}
	return normalized
}

func documentSlug(path string, meta interfaces.FrontMatter) string {
	if slugValue := strings.TrimSpace(meta.Slug); slugValue != "" {
		return slugValue
	}
	return SlugFromFilename(path)
}

func trimDatePrefix(name string) string {
	if len(name) < 12 {
		return name
	}
	for i, r := range name[:10] {
		switch i {
		case 4, 7:
			if r != '-' {
				return name
			}
		default:
			if r < '0' || r > '9' {
				return name
			}
		}
	}
	if name[10] != '-' {
		return name
	}
	return name[11:]
}

type frontMatterEnvelope struct {
	Title    string         `yaml:"title"`
	Slug     string         `yaml:"slug"`
	Summary  string         `yaml:"summary"`
	Status   string         `yaml:"status"`
	Template string         `yaml:"template"`
	Tags     []string       `yaml:"tags"`
	Author   string         `yaml:"author"`
	Date     string         `yaml:"date"`
	Draft    *bool          `yaml:"draft"`
	Custom   map[string]any `yaml:",inline"`
}

func envelopeToFrontMatter(env frontMatterEnvelope) (interfaces.FrontMatter, error) {
	if env.Custom == nil {
		env.Custom = map[string]any{}
	}

	date, err := ParseDate(env.Date)
	if err != nil {
		return interfaces.FrontMatter{}, fmt.Errorf("parse frontmatter: %w", err)
	}

	raw := make(map[string]any, len(env.Custom)+8)
	for key, value := range env.Custom {
		raw[key] = value
	}

	if env.Title != "" {
		raw["title"] = env.Title
	}
	if env.Slug != "" {
		raw["slug"] = env.Slug
	}
	if env.Summary != "" {
		raw["summary"] = env.Summary
	}
	if env.Status != "" {
		raw["status"] = env.Status
	}
	if env.Template != "" {
		raw["template"] = env.Template
	}
	if len(env.Tags) > 0 {
		raw["tags"] = append([]string(nil), env.Tags...)
	}
	if env.Author != "" {
		raw["author"] = env.Author
	}
	if strings.TrimSpace(env.Date) != "" {
		// Keep the raw spelling; lint checks offsets against the original text.
		raw["date"] = strings.TrimSpace(env.Date)
	}
	if env.Draft != nil {
		raw["draft"] = *env.Draft
	}

	return interfaces.FrontMatter{
		Title:    env.Title,
		Slug:     env.Slug,
		Summary:  env.Summary,
		Status:   env.Status,
		Template: env.Template,
		Tags:     append([]string(nil), env.Tags...),
		Author:   env.Author,
		Date:     date,
		Draft:    env.Draft != nil && *env.Draft,
		Custom:   cloneMap(env.Custom),
		Raw:      raw,
	}, nil
}

func cloneMap(input map[string]any) map[string]any {
	if input == nil {
		return map[string]any{}
	}

	out := make(map[string]any, len(input))
	for key, value := range input {
		out[key] = value
	}
	return out
}
