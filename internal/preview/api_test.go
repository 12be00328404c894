package preview

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/goliatone/go-blog/internal/schema"
	"github.com/goliatone/go-blog/internal/search"
)

func postJSON(tb testing.TB, s *Server, path, body, auth string) *httptest.ResponseRecorder {
	tb.Helper()

	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(http.MethodPost, path, reader)
	if auth != "" {
		req.SetBasicAuth("writer", auth)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestAPISearchEndpoint(t *testing.T) {
	index, err := search.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open index: %v", err)
	}
	t.Cleanup(func() { _ = index.Close() })

	hash, err := bcrypt.GenerateFromPassword([]byte("letmein"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	server, store := newPreviewHarness(t, Config{PasswordHash: string(hash)}, WithSearchIndex(index))
	seedPosts(t, store)
	server.refreshIndex(context.Background())

	rec := postJSON(t, server, "/api/search", `{"query":"hello"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var payload struct {
		Results []struct {
			Slug    string `json:"slug"`
			Snippet string `json:"snippet"`
		} `json:"results"`
		Count int `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Count != 1 || len(payload.Results) != 1 {
		t.Fatalf("expected one hit, got %+v", payload)
	}
	if payload.Results[0].Slug != "hello-world" {
		t.Fatalf("expected hello-world, got %q", payload.Results[0].Slug)
	}

	// Draft search is gated the same way the draft pages are.
	rec = postJSON(t, server, "/api/search", `{"query":"notes","drafts":true}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for anonymous draft search, got %d", rec.Code)
	}
	rec = postJSON(t, server, "/api/search", `{"query":"notes","drafts":true}`, "letmein")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with the password, got %d: %s", rec.Code, rec.Body.String())
	}
	if body := rec.Body.String(); !strings.Contains(body, "rough-notes") {
		t.Fatalf("expected the draft in results, got:\n%s", body)
	}

	rec = postJSON(t, server, "/api/search", `{"query":"x"}`, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a one-letter query, got %d", rec.Code)
	}
}

func TestAPISchemaEndpoint(t *testing.T) {
	server, _ := newPreviewHarness(t, Config{})

	// The registry is process-wide, so the unregistered case is checked
	// before registering in the same test.
	missing := get(t, server, "/api/schema", "")
	if missing.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before registration, got %d", missing.Code)
	}

	if err := schema.RegisterPostSchemas(context.Background(), "Preview", "v1.0.0"); err != nil {
		t.Fatalf("register schemas: %v", err)
	}

	rec := get(t, server, "/api/schema", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var doc map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode document: %v", err)
	}
	if doc["openapi"] != "3.0.3" {
		t.Fatalf("expected an OpenAPI document, got %#v", doc["openapi"])
	}
	if _, ok := doc["components"]; !ok {
		t.Fatalf("expected components in the served document")
	}
}

func TestAPISearchAbsentWithoutIndex(t *testing.T) {
	server, store := newPreviewHarness(t, Config{})
	seedPosts(t, store)

	rec := postJSON(t, server, "/api/search", `{"query":"hello"}`, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 when no index is attached, got %d", rec.Code)
	}
}
