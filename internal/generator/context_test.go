package generator

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-blog/domain"
	"github.com/goliatone/go-blog/posts"
)

func TestLoadContextCollectsPublishedPosts(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	fixtures := newBuildFixtures(t, now)
	svc := newBuildService(fixtures, &recordingRenderer{}, newRecordingWriter(), now)

	buildCtx, err := svc.loadContext(context.Background(), BuildOptions{})
	if err != nil {
		t.Fatalf("load context: %v", err)
	}

	if !buildCtx.GeneratedAt.Equal(now) {
		t.Fatalf("unexpected generated at %s", buildCtx.GeneratedAt)
	}
	if buildCtx.Site.BaseURL != "https://blog.example.com" || buildCtx.Site.Title != "Example Blog" {
		t.Fatalf("unexpected site metadata %+v", buildCtx.Site)
	}
	if len(buildCtx.Posts) != 2 {
		t.Fatalf("expected 2 publishable posts, got %d", len(buildCtx.Posts))
	}

	// Newest first: the March post sorts ahead of the January one.
	newest := buildCtx.Posts[0]
	if newest.Post.Slug != "deploying-static-sites" {
		t.Fatalf("expected newest post first, got %q", newest.Post.Slug)
	}
	if newest.Route != "/posts/deploying-static-sites/" {
		t.Fatalf("unexpected route %q", newest.Route)
	}
	if newest.Permalink != "https://blog.example.com/posts/deploying-static-sites/" {
		t.Fatalf("unexpected permalink %q", newest.Permalink)
	}
	if newest.Output != "posts/deploying-static-sites/index.html" {
		t.Fatalf("unexpected output path %q", newest.Output)
	}
	if newest.Metadata.Hash == "" {
		t.Fatal("expected dependency hash to be computed")
	}
	if !newest.Metadata.LastModified.Equal(now) {
		t.Fatalf("unexpected last modified %s", newest.Metadata.LastModified)
	}

	slugs := make([]string, 0, len(buildCtx.Tags))
	for _, group := range buildCtx.Tags {
		slugs = append(slugs, group.Slug)
	}
	if len(slugs) != 3 || slugs[0] != "deploy" || slugs[1] != "go" || slugs[2] != "tutorial" {
		t.Fatalf("unexpected tag groups %v", slugs)
	}
	goGroup := buildCtx.Tags[1]
	if len(goGroup.Posts) != 2 || goGroup.Posts[0].Post.Slug != "deploying-static-sites" {
		t.Fatalf("expected go tag group newest first, got %+v", goGroup.Posts)
	}
	if goGroup.Route != "/tags/go/" {
		t.Fatalf("unexpected tag route %q", goGroup.Route)
	}

	if len(buildCtx.Years) != 1 || buildCtx.Years[0].Year != 2024 {
		t.Fatalf("unexpected year groups %+v", buildCtx.Years)
	}
	if buildCtx.Years[0].Route != "/archive/2024/" {
		t.Fatalf("unexpected archive route %q", buildCtx.Years[0].Route)
	}
	if len(buildCtx.Years[0].Posts) != 2 {
		t.Fatalf("expected both posts in 2024 group, got %d", len(buildCtx.Years[0].Posts))
	}
}

func TestLoadContextFiltersByTag(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	fixtures := newBuildFixtures(t, now)
	svc := newBuildService(fixtures, &recordingRenderer{}, newRecordingWriter(), now)

	buildCtx, err := svc.loadContext(context.Background(), BuildOptions{Tags: []string{" Deploy "}})
	if err != nil {
		t.Fatalf("load context: %v", err)
	}

	if len(buildCtx.Posts) != 1 || buildCtx.Posts[0].Post.Slug != "deploying-static-sites" {
		t.Fatalf("expected only the deploy-tagged post, got %+v", buildCtx.Posts)
	}
	if len(buildCtx.Tags) != 2 {
		t.Fatalf("expected tag groups from the filtered set, got %+v", buildCtx.Tags)
	}
}

func TestLoadContextHonorsRequestedIDs(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	fixtures := newBuildFixtures(t, now)
	svc := newBuildService(fixtures, &recordingRenderer{}, newRecordingWriter(), now)

	buildCtx, err := svc.loadContext(context.Background(), BuildOptions{
		PostIDs: []uuid.UUID{fixtures.First.ID, fixtures.First.ID, uuid.Nil},
	})
	if err != nil {
		t.Fatalf("load context: %v", err)
	}
	if len(buildCtx.Posts) != 1 || buildCtx.Posts[0].Post.ID != fixtures.First.ID {
		t.Fatalf("expected one deduplicated post, got %+v", buildCtx.Posts)
	}

	buildCtx, err = svc.loadContext(context.Background(), BuildOptions{
		PostIDs: []uuid.UUID{fixtures.Draft.ID},
	})
	if err != nil {
		t.Fatalf("load context for draft: %v", err)
	}
	if len(buildCtx.Posts) != 0 {
		t.Fatalf("drafts must not enter the build context, got %+v", buildCtx.Posts)
	}
}

func TestPostMetadataHashTracksContent(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	fixtures := newBuildFixtures(t, now)

	base := computePostMetadata(fixtures.First)
	if base.Hash == "" {
		t.Fatal("expected a hash for a populated post")
	}
	if again := computePostMetadata(fixtures.First); again.Hash != base.Hash {
		t.Fatalf("hash must be stable: %s vs %s", base.Hash, again.Hash)
	}

	edited := *fixtures.First
	edited.Body = "Install the toolchain last."
	if computePostMetadata(&edited).Hash == base.Hash {
		t.Fatal("body edits must change the hash")
	}

	retitled := *fixtures.First
	retitled.Title = "Getting Started with Go, Revisited"
	if computePostMetadata(&retitled).Hash == base.Hash {
		t.Fatal("title edits must change the hash")
	}

	reordered := *fixtures.First
	reordered.Tags = []string{"tutorial", "go"}
	if computePostMetadata(&reordered).Hash != base.Hash {
		t.Fatal("tag order must not change the hash")
	}
}

func TestPublishableStatuses(t *testing.T) {
	cases := []struct {
		name string
		post posts.Post
		want bool
	}{
		{"published", posts.Post{Status: domain.StatusPublished, EffectiveStatus: domain.StatusPublished}, true},
		{"status fallback", posts.Post{Status: domain.StatusPublished}, true},
		{"draft", posts.Post{Status: domain.StatusDraft, EffectiveStatus: domain.StatusDraft}, false},
		{"scheduled", posts.Post{Status: domain.StatusScheduled, EffectiveStatus: domain.StatusScheduled}, false},
		{"archived", posts.Post{Status: domain.StatusArchived, EffectiveStatus: domain.StatusArchived}, false},
		{"archived after publish", posts.Post{Status: domain.StatusPublished, EffectiveStatus: domain.StatusArchived}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			record := tc.post
			if got := publishable(&record); got != tc.want {
				t.Fatalf("publishable(%s) = %v, want %v", tc.name, got, tc.want)
			}
		})
	}
}

func TestGroupByTagSkipsBlankTags(t *testing.T) {
	entry := &PostData{Post: &posts.Post{
		Slug: "tagged",
		Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Tags: []string{"go", "   ", ""},
	}}

	groups := groupByTag([]*PostData{entry})
	if len(groups) != 1 || groups[0].Slug != "go" {
		t.Fatalf("expected a single go group, got %+v", groups)
	}
	if groups[0].Route != "/tags/go/" {
		t.Fatalf("unexpected route %q", groups[0].Route)
	}
}

func TestGroupByYearNewestFirst(t *testing.T) {
	mk := func(slug string, date time.Time) *PostData {
		return &PostData{Post: &posts.Post{Slug: slug, Title: slug, Date: date}}
	}
	data := []*PostData{
		mk("newest", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)),
		mk("mid-year", time.Date(2023, 7, 4, 0, 0, 0, 0, time.UTC)),
		mk("same-year", time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)),
		mk("oldest", time.Date(2022, 12, 31, 0, 0, 0, 0, time.UTC)),
	}

	groups := groupByYear(data)
	if len(groups) != 3 {
		t.Fatalf("expected 3 year groups, got %d", len(groups))
	}
	years := []int{groups[0].Year, groups[1].Year, groups[2].Year}
	if years[0] != 2024 || years[1] != 2023 || years[2] != 2022 {
		t.Fatalf("expected years newest first, got %v", years)
	}
	if len(groups[1].Posts) != 2 {
		t.Fatalf("expected two posts in 2023, got %d", len(groups[1].Posts))
	}
}
