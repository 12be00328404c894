package generator

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

var (
	manifestPostOne = uuid.MustParse("11111111-1111-4111-8111-111111111111")
	manifestPostTwo = uuid.MustParse("22222222-2222-4222-8222-222222222222")
)

func sampleManifest(now time.Time) *Manifest {
	manifest := NewManifest()
	manifest.GeneratedAt = now
	manifest.setPost(ManifestPost{
		PostID:     manifestPostOne.String(),
		Slug:       "getting-started",
		Route:      "/posts/getting-started/",
		Output:     "posts/getting-started/index.html",
		Template:   "post",
		Hash:       "hash-one",
		Checksum:   "sum-one",
		RenderedAt: now,
	})
	manifest.setPost(ManifestPost{
		PostID:     manifestPostTwo.String(),
		Slug:       "deploying",
		Route:      "/posts/deploying/",
		Output:     "posts/deploying/index.html",
		Template:   "post",
		Hash:       "hash-two",
		Checksum:   "sum-two",
		RenderedAt: now,
	})
	manifest.setPage(ManifestPage{Key: "index", Kind: string(KindPage), Route: "/", Output: "index.html", Checksum: "sum-home", RenderedAt: now})
	manifest.setPage(ManifestPage{Key: "feed:rss", Kind: string(KindFeed), Route: "/feed.xml", Output: "feed.xml", Checksum: "sum-feed", RenderedAt: now})
	manifest.setAsset(ManifestAsset{Key: "static:css/site.css", Source: "css/site.css", Output: "css/site.css", Checksum: "sum-css", Size: 42, CopiedAt: now})
	return manifest
}

func TestManifestMarshalIsDeterministic(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	first := sampleManifest(now)

	// Insert the same entries in the opposite order.
	second := NewManifest()
	second.GeneratedAt = now
	second.setAsset(ManifestAsset{Key: "static:css/site.css", Source: "css/site.css", Output: "css/site.css", Checksum: "sum-css", Size: 42, CopiedAt: now})
	second.setPage(ManifestPage{Key: "feed:rss", Kind: string(KindFeed), Route: "/feed.xml", Output: "feed.xml", Checksum: "sum-feed", RenderedAt: now})
	second.setPage(ManifestPage{Key: "index", Kind: string(KindPage), Route: "/", Output: "index.html", Checksum: "sum-home", RenderedAt: now})
	second.setPost(ManifestPost{
		PostID:     manifestPostTwo.String(),
		Slug:       "deploying",
		Route:      "/posts/deploying/",
		Output:     "posts/deploying/index.html",
		Template:   "post",
		Hash:       "hash-two",
		Checksum:   "sum-two",
		RenderedAt: now,
	})
	second.setPost(ManifestPost{
		PostID:     manifestPostOne.String(),
		Slug:       "getting-started",
		Route:      "/posts/getting-started/",
		Output:     "posts/getting-started/index.html",
		Template:   "post",
		Hash:       "hash-one",
		Checksum:   "sum-one",
		RenderedAt: now,
	})

	firstData, err := first.Marshal()
	if err != nil {
		t.Fatalf("marshal first: %v", err)
	}
	secondData, err := second.Marshal()
	if err != nil {
		t.Fatalf("marshal second: %v", err)
	}
	if !bytes.Equal(firstData, secondData) {
		t.Fatalf("marshaled bytes differ:\n%s\n---\n%s", firstData, secondData)
	}

	idx := bytes.Index(firstData, []byte("deploying"))
	if idx == -1 || bytes.Index(firstData, []byte("getting-started")) < idx {
		t.Fatalf("expected posts sorted by slug:\n%s", firstData)
	}
}

func TestManifestRoundTrip(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	manifest := sampleManifest(now)

	data, err := manifest.Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	parsed, err := ParseManifest(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if parsed.Version != manifestFileVersion {
		t.Fatalf("unexpected version %d", parsed.Version)
	}
	if !parsed.GeneratedAt.Equal(now) {
		t.Fatalf("unexpected generated_at %s", parsed.GeneratedAt)
	}
	entry, ok := parsed.lookupPost(manifestPostOne)
	if !ok {
		t.Fatal("expected post entry to survive the round trip")
	}
	if entry.Hash != "hash-one" || entry.Output != "posts/getting-started/index.html" {
		t.Fatalf("unexpected post entry %+v", entry)
	}
	if _, ok := parsed.lookupPage("feed:rss"); !ok {
		t.Fatal("expected feed page entry to survive the round trip")
	}
	if _, ok := parsed.lookupAsset("static:css/site.css"); !ok {
		t.Fatal("expected asset entry to survive the round trip")
	}
}

func TestParseManifestToleratesSparseInput(t *testing.T) {
	empty, err := ParseManifest(nil)
	if err != nil {
		t.Fatalf("parse empty: %v", err)
	}
	if empty.Version != manifestFileVersion || empty.Posts == nil || empty.Pages == nil || empty.Assets == nil {
		t.Fatalf("expected initialized empty manifest, got %+v", empty)
	}

	sparse, err := ParseManifest([]byte(`{"generated_at":"2024-01-01T00:00:00Z"}`))
	if err != nil {
		t.Fatalf("parse sparse: %v", err)
	}
	if sparse.Version != manifestFileVersion {
		t.Fatalf("expected defaulted version, got %d", sparse.Version)
	}
	if sparse.Posts == nil || sparse.Pages == nil || sparse.Assets == nil {
		t.Fatal("expected maps initialized on sparse manifest")
	}

	if _, err := ParseManifest([]byte("{not json")); err == nil {
		t.Fatal("expected error for malformed manifest")
	}
}

func TestManifestSkipChecks(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	manifest := sampleManifest(now)

	if !manifest.shouldSkipPost(manifestPostOne, "hash-one", "posts/getting-started/index.html") {
		t.Fatal("expected unchanged post to be skippable")
	}
	if manifest.shouldSkipPost(manifestPostOne, "hash-changed", "posts/getting-started/index.html") {
		t.Fatal("changed hash must force a rebuild")
	}
	if manifest.shouldSkipPost(manifestPostOne, "hash-one", "posts/renamed/index.html") {
		t.Fatal("changed output path must force a rebuild")
	}
	if manifest.shouldSkipPost(uuid.MustParse("33333333-3333-4333-8333-333333333333"), "hash-one", "posts/getting-started/index.html") {
		t.Fatal("unknown post must not be skippable")
	}

	if !manifest.shouldSkipPage("index", "sum-home", "index.html") {
		t.Fatal("expected unchanged page to be skippable")
	}
	if manifest.shouldSkipPage("index", "sum-other", "index.html") {
		t.Fatal("changed page checksum must force a rebuild")
	}
	if !manifest.shouldSkipAsset("static:css/site.css", "sum-css", "css/site.css") {
		t.Fatal("expected unchanged asset to be skippable")
	}
	if manifest.shouldSkipAsset("static:css/site.css", "sum-new", "css/site.css") {
		t.Fatal("changed asset checksum must force a copy")
	}
}

func TestManifestPruneDropsDeadEntries(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	manifest := sampleManifest(now)

	live := map[string]struct{}{
		"post:" + strings.ToLower(manifestPostOne.String()): {},
		"page:index": {},
	}
	removed := manifest.prune(live)

	want := []string{"css/site.css", "feed.xml", "posts/deploying/index.html"}
	if len(removed) != len(want) {
		t.Fatalf("expected %d pruned outputs, got %v", len(want), removed)
	}
	for i, output := range want {
		if removed[i] != output {
			t.Fatalf("expected pruned output %q at %d, got %v", output, i, removed)
		}
	}
	if len(manifest.Posts) != 1 || len(manifest.Pages) != 1 || len(manifest.Assets) != 0 {
		t.Fatalf("unexpected surviving entries: posts=%d pages=%d assets=%d", len(manifest.Posts), len(manifest.Pages), len(manifest.Assets))
	}
	if _, ok := manifest.lookupPost(manifestPostOne); !ok {
		t.Fatal("live post must survive pruning")
	}
}

func TestManifestArtifactsSorted(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	manifest := sampleManifest(now)

	artifacts := manifest.Artifacts()
	if len(artifacts) != 5 {
		t.Fatalf("expected 5 artifacts, got %d", len(artifacts))
	}
	for i := 1; i < len(artifacts); i++ {
		if artifacts[i-1].Output > artifacts[i].Output {
			t.Fatalf("artifacts not sorted: %q before %q", artifacts[i-1].Output, artifacts[i].Output)
		}
	}
	if artifacts[0].Output != "css/site.css" || artifacts[0].Checksum != "sum-css" {
		t.Fatalf("unexpected first artifact %+v", artifacts[0])
	}
}

func TestReadManifestDir(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	manifest := sampleManifest(now)

	data, err := manifest.Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestFileName), data, 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	loaded, err := ReadManifestDir(dir)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	if len(loaded.Posts) != 2 || len(loaded.Pages) != 2 || len(loaded.Assets) != 1 {
		t.Fatalf("unexpected manifest contents: %+v", loaded)
	}

	if _, err := ReadManifestDir(filepath.Join(dir, "never-built")); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected fs.ErrNotExist for missing manifest, got %v", err)
	}
}
