package preview

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-blog/domain"
	"github.com/goliatone/go-blog/internal/schema"
	"github.com/goliatone/go-blog/internal/search"
	"github.com/goliatone/go-blog/pkg/interfaces"
	"github.com/goliatone/go-blog/posts"
)

const (
	headerContentType = "Content-Type"
	mimeJSON          = "application/json"
)

func contentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(headerContentType, mimeJSON)
		next.ServeHTTP(w, r)
	})
}

type apiPost struct {
	ID     uuid.UUID     `json:"id"`
	Slug   string        `json:"slug"`
	Title  string        `json:"title"`
	Status domain.Status `json:"status"`
	Date   time.Time     `json:"date"`
	Tags   []string      `json:"tags,omitempty"`
	URL    string        `json:"url"`
}

func (s *Server) handleAPIPosts(w http.ResponseWriter, r *http.Request) {
	withDrafts, _ := strconv.ParseBool(r.URL.Query().Get("drafts"))
	if withDrafts && !s.draftsAllowed(r) {
		respondError(w, http.StatusUnauthorized, "password required")
		return
	}

	items, err := s.store.List(r.Context(), posts.ListOptions{PublishedOnly: !withDrafts})
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]apiPost, 0, len(items))
	for _, item := range items {
		out = append(out, apiPost{
			ID:     item.ID,
			Slug:   item.Slug,
			Title:  item.Title,
			Status: viewStatus(item),
			Date:   item.Date,
			Tags:   item.Tags,
			URL:    "/posts/" + item.Slug,
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"posts": out,
		"count": len(out),
	})
}

// handleAPISchema serves the OpenAPI document registered for the post API.
// Registration happens at startup; an unregistered schema is a 404, not an
// error.
func (s *Server) handleAPISchema(w http.ResponseWriter, _ *http.Request) {
	doc, ok := schema.Lookup("post")
	if !ok {
		respondError(w, http.StatusNotFound, "no schema registered")
		return
	}
	respondJSON(w, http.StatusOK, doc)
}

type rebuildRequest struct {
	ArchiveOrphans bool `json:"archive_orphans"`
	// UpdateExisting defaults to true; a sync that ignores edits would
	// surprise everyone previewing them.
	UpdateExisting *bool `json:"update_existing"`
}

func (s *Server) handleAPIRebuild(w http.ResponseWriter, r *http.Request) {
	if s.cfg.ContentDir == "" {
		respondError(w, http.StatusBadRequest, "no content directory configured")
		return
	}

	var req rebuildRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := s.validate.Struct(&req); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	updateExisting := true
	if req.UpdateExisting != nil {
		updateExisting = *req.UpdateExisting
	}

	result, err := s.content.Sync(r.Context(), s.cfg.ContentDir, interfaces.SyncOptions{
		ArchiveOrphans: req.ArchiveOrphans,
		UpdateExisting: updateExisting,
	})
	if result == nil {
		message := "sync failed"
		if err != nil {
			message = err.Error()
		}
		respondError(w, http.StatusInternalServerError, message)
		return
	}

	s.refreshIndex(r.Context())
	s.hub.broadcast(reloadPayload)

	respondJSON(w, http.StatusOK, map[string]any{
		"created":   result.Created,
		"updated":   result.Updated,
		"skipped":   result.Skipped,
		"scheduled": result.Scheduled,
		"archived":  result.Archived,
		"failed":    len(result.Errors),
	})
}

type searchRequest struct {
	Query  string `json:"query" validate:"required,min=2"`
	Limit  int    `json:"limit" validate:"gte=0,lte=50"`
	Drafts bool   `json:"drafts"`
}

func (s *Server) handleAPISearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Drafts && !s.draftsAllowed(r) {
		respondError(w, http.StatusUnauthorized, "password required")
		return
	}

	results, err := s.index.Search(r.Context(), search.Query{
		Text:          req.Query,
		IncludeDrafts: req.Drafts,
		Limit:         req.Limit,
	})
	if err != nil {
		if errors.Is(err, search.ErrEmptyQuery) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"results": results,
		"count":   len(results),
	})
}

// refreshIndex rebuilds the search index from the store after content
// changes so queries track what the preview shows.
func (s *Server) refreshIndex(ctx context.Context) {
	if s.index == nil {
		return
	}
	items, err := s.store.List(ctx, posts.ListOptions{})
	if err != nil {
		s.logger.Error("preview: list posts for index", "error", err)
		return
	}
	if err := s.index.Rebuild(ctx, items); err != nil {
		s.logger.Error("preview: rebuild index", "error", err)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, 1<<20)
	defer body.Close()
	return json.NewDecoder(body).Decode(dst)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set(headerContentType, mimeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
