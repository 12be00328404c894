package preview

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/goliatone/go-blog/internal/markdown"
	"github.com/goliatone/go-blog/internal/post"
	"github.com/goliatone/go-blog/posts"
)

func newPreviewHarness(tb testing.TB, cfg Config, opts ...Option) (*Server, posts.Service) {
	tb.Helper()

	store := post.NewService(post.NewMemoryPostRepository())

	if cfg.ContentDir == "" {
		cfg.ContentDir = tb.TempDir()
	}
	content, err := markdown.NewService(markdown.Config{
		BasePath:  cfg.ContentDir,
		Pattern:   "*.md",
		Recursive: true,
	}, nil, markdown.WithPostService(store))
	if err != nil {
		tb.Fatalf("markdown service: %v", err)
	}

	server, err := New(cfg, store, content, opts...)
	if err != nil {
		tb.Fatalf("preview server: %v", err)
	}
	return server, store
}

func seedPosts(tb testing.TB, store posts.Service) {
	tb.Helper()
	ctx := context.Background()

	if _, err := store.Create(ctx, posts.CreatePostRequest{
		Title:  "Hello World",
		Body:   "The first post.",
		HTML:   "<h1>Hello World</h1><p>The first post.</p>",
		Status: "published",
		Date:   time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC),
	}); err != nil {
		tb.Fatalf("seed published post: %v", err)
	}

	if _, err := store.Create(ctx, posts.CreatePostRequest{
		Title:  "Rough Notes",
		Body:   "Not ready yet.",
		Status: "draft",
		Date:   time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC),
	}); err != nil {
		tb.Fatalf("seed draft post: %v", err)
	}
}

func get(tb testing.TB, s *Server, path string, auth string) *httptest.ResponseRecorder {
	tb.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.SetBasicAuth("writer", auth)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestIndexListsDraftsWithBadge(t *testing.T) {
	server, store := newPreviewHarness(t, Config{})
	seedPosts(t, store)

	rec := get(t, server, "/", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Hello World") || !strings.Contains(body, "Rough Notes") {
		t.Fatalf("expected both posts listed, got:\n%s", body)
	}
	if !strings.Contains(body, `class="badge"`) || !strings.Contains(body, "draft") {
		t.Fatalf("expected the draft badge, got:\n%s", body)
	}
	if ct := rec.Header().Get(headerContentType); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("expected an html response, got %q", ct)
	}
}

func TestGatedIndexHidesDraftsFromAnonymous(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("letmein"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	server, store := newPreviewHarness(t, Config{PasswordHash: string(hash)})
	seedPosts(t, store)

	anon := get(t, server, "/", "")
	if body := anon.Body.String(); !strings.Contains(body, "Hello World") || strings.Contains(body, "Rough Notes") {
		t.Fatalf("expected the anonymous index published-only, got:\n%s", body)
	}

	authed := get(t, server, "/", "letmein")
	if body := authed.Body.String(); !strings.Contains(body, "Rough Notes") {
		t.Fatalf("expected drafts for the authenticated writer, got:\n%s", body)
	}
}

func TestPostPageRendersStoredHTML(t *testing.T) {
	server, store := newPreviewHarness(t, Config{})
	seedPosts(t, store)

	rec := get(t, server, "/posts/hello-world", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "<h1>Hello World</h1>") {
		t.Fatalf("expected the rendered html, got:\n%s", rec.Body.String())
	}

	missing := get(t, server, "/posts/no-such-post", "")
	if missing.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for an unknown slug, got %d", missing.Code)
	}
}

func TestDraftPostRequiresPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("letmein"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	server, store := newPreviewHarness(t, Config{PasswordHash: string(hash)})
	seedPosts(t, store)

	anon := get(t, server, "/posts/rough-notes", "")
	if anon.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for the draft, got %d", anon.Code)
	}
	if anon.Header().Get("WWW-Authenticate") == "" {
		t.Fatalf("expected a basic-auth challenge")
	}

	wrong := get(t, server, "/posts/rough-notes", "guessing")
	if wrong.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a wrong password, got %d", wrong.Code)
	}

	authed := get(t, server, "/posts/rough-notes", "letmein")
	if authed.Code != http.StatusOK {
		t.Fatalf("expected 200 with the password, got %d", authed.Code)
	}
	if !strings.Contains(authed.Body.String(), `class="badge"`) {
		t.Fatalf("expected the draft badge on the post page")
	}
}

func TestDraftsListingShowsPendingOnly(t *testing.T) {
	server, store := newPreviewHarness(t, Config{})
	seedPosts(t, store)

	rec := get(t, server, "/drafts", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Rough Notes") {
		t.Fatalf("expected the draft listed, got:\n%s", body)
	}
	if strings.Contains(body, "Hello World") {
		t.Fatalf("expected published posts excluded from /drafts, got:\n%s", body)
	}
}

func TestAPIPostsListsJSON(t *testing.T) {
	server, store := newPreviewHarness(t, Config{})
	seedPosts(t, store)

	rec := get(t, server, "/api/posts", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get(headerContentType); ct != mimeJSON {
		t.Fatalf("expected %q, got %q", mimeJSON, ct)
	}

	var published struct {
		Posts []apiPost `json:"posts"`
		Count int       `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &published); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if published.Count != 1 || published.Posts[0].Slug != "hello-world" {
		t.Fatalf("expected the published post only, got %#v", published)
	}
	if published.Posts[0].URL != "/posts/hello-world" {
		t.Fatalf("unexpected post url %q", published.Posts[0].URL)
	}

	withDrafts := get(t, server, "/api/posts?drafts=1", "")
	var all struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(withDrafts.Body.Bytes(), &all); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if all.Count != 2 {
		t.Fatalf("expected both posts with drafts=1, got %d", all.Count)
	}
}

func TestAPIRebuildImportsContentDir(t *testing.T) {
	dir := t.TempDir()
	source := "---\n" +
		"title: \"From Disk\"\n" +
		"date: 2024-03-01T09:00:00-05:00\n" +
		"draft: false\n" +
		"---\n\n" +
		"Disk content arrived.\n"
	if err := os.WriteFile(filepath.Join(dir, "from-disk.md"), []byte(source), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	server, store := newPreviewHarness(t, Config{ContentDir: dir})

	req := httptest.NewRequest(http.MethodPost, "/api/rebuild", nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var result struct {
		Created int `json:"created"`
		Failed  int `json:"failed"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Created != 1 || result.Failed != 0 {
		t.Fatalf("expected one created post, got %#v", result)
	}

	imported, err := store.GetBySlug(context.Background(), "from-disk")
	if err != nil {
		t.Fatalf("expected the post imported: %v", err)
	}
	if imported.Title != "From Disk" {
		t.Fatalf("unexpected imported title %q", imported.Title)
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	store := post.NewService(post.NewMemoryPostRepository())
	content, err := markdown.NewService(markdown.Config{BasePath: t.TempDir()}, nil)
	if err != nil {
		t.Fatalf("markdown service: %v", err)
	}

	if _, err := New(Config{}, nil, content); !errors.Is(err, ErrStoreRequired) {
		t.Fatalf("expected ErrStoreRequired, got %v", err)
	}
	if _, err := New(Config{}, store, nil); !errors.Is(err, ErrContentRequired) {
		t.Fatalf("expected ErrContentRequired, got %v", err)
	}
	if _, err := New(Config{PasswordHash: "hunter2"}, store, content); !errors.Is(err, ErrPasswordHashInvalid) {
		t.Fatalf("expected ErrPasswordHashInvalid for plaintext, got %v", err)
	}
}

func TestSnapshotDirDetectsPostEdits(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "note.md")
	if err := os.WriteFile(path, []byte("first draft"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	before, err := snapshotDir(dir, "*.md")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	if err := os.WriteFile(path, []byte("second draft, longer"), 0o644); err != nil {
		t.Fatalf("rewrite file: %v", err)
	}
	after, err := snapshotDir(dir, "*.md")
	if err != nil {
		t.Fatalf("snapshot after edit: %v", err)
	}
	if before == after {
		t.Fatalf("expected the fingerprint to change after an edit")
	}

	if err := os.WriteFile(filepath.Join(dir, "scratch.txt"), []byte("ignored"), 0o644); err != nil {
		t.Fatalf("write unrelated file: %v", err)
	}
	unrelated, err := snapshotDir(dir, "*.md")
	if err != nil {
		t.Fatalf("snapshot with unrelated file: %v", err)
	}
	if unrelated != after {
		t.Fatalf("expected non-post files ignored by the fingerprint")
	}
}
