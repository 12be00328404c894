package generator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-blog/domain"
	"github.com/goliatone/go-blog/posts"
	"github.com/google/uuid"
)

var errPostsServiceRequired = errors.New("generator: posts service is required")

// BuildContext aggregates everything a build run needs: the publishable
// posts, their routes and hashes, and the site metadata templates see.
type BuildContext struct {
	GeneratedAt time.Time
	Site        SiteMetadata
	Posts       []*PostData
	Tags        []TagGroup
	Years       []YearGroup
	Options     BuildOptions
}

// PostData carries one publishable post plus its derived build facts.
type PostData struct {
	Post      *posts.Post
	Route     string
	Permalink string
	Output    string
	Metadata  DependencyMetadata
}

// TagGroup collects the posts sharing a tag, newest first.
type TagGroup struct {
	Tag   string
	Slug  string
	Route string
	Posts []*PostData
}

// YearGroup collects the posts published in one year, newest first.
type YearGroup struct {
	Year  int
	Route string
	Posts []*PostData
}

// DependencyMetadata tracks hashes and timestamps for incremental builds.
type DependencyMetadata struct {
	Sources      map[string]string
	Hash         string
	LastModified time.Time
}

func (s *service) loadContext(ctx context.Context, opts BuildOptions) (*BuildContext, error) {
	if s.deps.Posts == nil {
		return nil, errPostsServiceRequired
	}

	records, err := s.loadPosts(ctx, opts.PostIDs)
	if err != nil {
		return nil, err
	}

	tagFilter := normalizeTagFilter(opts.Tags)

	var data []*PostData
	for _, record := range records {
		if record == nil || !publishable(record) {
			continue
		}
		if len(tagFilter) > 0 && !hasAnyTag(record.Tags, tagFilter) {
			continue
		}
		permalink, err := s.routes.Post(record.Slug)
		if err != nil {
			return nil, err
		}
		data = append(data, &PostData{
			Post:      record,
			Route:     postRoute(record.Slug),
			Permalink: permalink,
			Output:    postOutputPath(record.Slug),
			Metadata:  computePostMetadata(record),
		})
	}

	sort.Slice(data, func(i, j int) bool {
		left, right := data[i].Post, data[j].Post
		if !left.Date.Equal(right.Date) {
			return left.Date.After(right.Date)
		}
		return left.Slug < right.Slug
	})

	buildCtx := &BuildContext{
		GeneratedAt: s.now(),
		Site: SiteMetadata{
			BaseURL:     strings.TrimRight(strings.TrimSpace(s.cfg.BaseURL), "/"),
			Title:       strings.TrimSpace(s.cfg.SiteTitle),
			Description: strings.TrimSpace(s.cfg.SiteDescription),
			Author:      strings.TrimSpace(s.cfg.Author),
			Language:    strings.TrimSpace(s.cfg.Language),
			Metadata:    map[string]any{},
		},
		Posts:   data,
		Options: opts,
	}
	buildCtx.Tags = groupByTag(data)
	buildCtx.Years = groupByYear(data)
	return buildCtx, nil
}

func (s *service) loadPosts(ctx context.Context, ids []uuid.UUID) ([]*posts.Post, error) {
	if len(ids) == 0 {
		return s.deps.Posts.List(ctx, posts.ListOptions{PublishedOnly: true})
	}

	unique := make(map[uuid.UUID]struct{}, len(ids))
	var result []*posts.Post
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, seen := unique[id]; seen {
			continue
		}
		unique[id] = struct{}{}
		record, err := s.deps.Posts.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if record != nil {
			result = append(result, record)
		}
	}
	return result, nil
}

// publishable keeps drafts, scheduled, and archived posts out of the
// generated site.
func publishable(record *posts.Post) bool {
	status := record.EffectiveStatus
	if status == "" {
		status = record.Status
	}
	return status == domain.StatusPublished
}

func normalizeTagFilter(tags []string) map[string]struct{} {
	if len(tags) == 0 {
		return nil
	}
	filter := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		trimmed := strings.ToLower(strings.TrimSpace(tag))
		if trimmed == "" {
			continue
		}
		filter[trimmed] = struct{}{}
	}
	return filter
}

func hasAnyTag(tags []string, filter map[string]struct{}) bool {
	for _, tag := range tags {
		if _, ok := filter[strings.ToLower(strings.TrimSpace(tag))]; ok {
			return true
		}
	}
	return false
}

func groupByTag(data []*PostData) []TagGroup {
	byTag := map[string]*TagGroup{}
	for _, entry := range data {
		for _, tag := range entry.Post.Tags {
			trimmed := strings.TrimSpace(tag)
			if trimmed == "" {
				continue
			}
			slug := tagSlug(trimmed)
			if slug == "" {
				continue
			}
			group := byTag[slug]
			if group == nil {
				group = &TagGroup{Tag: trimmed, Slug: slug, Route: tagRoute(slug)}
				byTag[slug] = group
			}
			group.Posts = append(group.Posts, entry)
		}
	}

	groups := make([]TagGroup, 0, len(byTag))
	for _, group := range byTag {
		groups = append(groups, *group)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Slug < groups[j].Slug
	})
	return groups
}

func groupByYear(data []*PostData) []YearGroup {
	byYear := map[int]*YearGroup{}
	for _, entry := range data {
		year := entry.Post.Date.Year()
		group := byYear[year]
		if group == nil {
			group = &YearGroup{Year: year, Route: archiveRoute(year)}
			byYear[year] = group
		}
		group.Posts = append(group.Posts, entry)
	}

	groups := make([]YearGroup, 0, len(byYear))
	for _, group := range byYear {
		groups = append(groups, *group)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Year > groups[j].Year
	})
	return groups
}

func computePostMetadata(record *posts.Post) DependencyMetadata {
	sources := map[string]string{
		"post": joinParts(
			record.ID.String(),
			record.Slug,
			string(record.Status),
			record.Date.UTC().Format(time.RFC3339Nano),
			strconv.Itoa(record.CurrentVersion),
			intPointerValue(record.PublishedVersion),
		),
		"body": computeHashFromString(record.Body),
	}
	if record.HTML != "" {
		sources["html"] = computeHashFromString(record.HTML)
	}
	if record.Title != "" {
		sources["title"] = record.Title
	}
	if record.Summary != nil && *record.Summary != "" {
		sources["summary"] = *record.Summary
	}
	if len(record.Tags) > 0 {
		tags := append([]string(nil), record.Tags...)
		sort.Strings(tags)
		sources["tags"] = joinParts(tags...)
	}
	if record.Template != nil && *record.Template != "" {
		sources["template"] = *record.Template
	}

	lastModified := maxTime(record.UpdatedAt, record.Date)

	return DependencyMetadata{
		Sources:      sources,
		Hash:         hashSources(sources),
		LastModified: lastModified,
	}
}

func joinParts(parts ...string) string {
	return strings.Join(parts, "|")
}

func intPointerValue(value *int) string {
	if value == nil {
		return "nil"
	}
	return strconv.Itoa(*value)
}

func hashSources(sources map[string]string) string {
	if len(sources) == 0 {
		return ""
	}
	keys := make([]string, 0, len(sources))
	for key := range sources {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	hasher := sha256.New()
	for _, key := range keys {
		hasher.Write([]byte(key))
		hasher.Write([]byte("="))
		hasher.Write([]byte(sources[key]))
		hasher.Write([]byte{0})
	}
	return hex.EncodeToString(hasher.Sum(nil))
}

func computeHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func computeHashFromString(content string) string {
	return computeHash([]byte(content))
}

func maxTime(times ...time.Time) time.Time {
	var latest time.Time
	for _, t := range times {
		if t.After(latest) {
			latest = t
		}
	}
	return latest
}
