package schema

import (
	"github.com/goliatone/go-blog/internal/domain"
	"github.com/goliatone/go-blog/posts"
)

// PostSchema describes the post resource as it marshals to JSON. Optional
// columns carry omitempty tags, so they are typed plainly instead of as
// nullable unions; absent means unset.
func PostSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"required": []string{
			"id", "slug", "title", "body", "status", "date",
			"current_version", "created_at", "updated_at",
			"effective_status", "is_visible",
		},
		"properties": map[string]any{
			"id":                map[string]any{"type": "string", "format": "uuid"},
			"slug":              map[string]any{"type": "string"},
			"title":             map[string]any{"type": "string"},
			"summary":           map[string]any{"type": "string"},
			"body":              map[string]any{"type": "string", "description": "Markdown source"},
			"html":              map[string]any{"type": "string", "description": "Rendered body"},
			"status":            map[string]any{"type": "string", "enum": statusEnum()},
			"date":              map[string]any{"type": "string", "format": "date-time"},
			"tags":              map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"author":            map[string]any{"type": "string"},
			"template":          map[string]any{"type": "string"},
			"source_path":       map[string]any{"type": "string"},
			"checksum":          map[string]any{"type": "string"},
			"metadata":          map[string]any{"type": "object", "additionalProperties": true},
			"current_version":   map[string]any{"type": "integer", "minimum": 1},
			"published_version": map[string]any{"type": "integer", "minimum": 1},
			"publish_at":        map[string]any{"type": "string", "format": "date-time"},
			"published_at":      map[string]any{"type": "string", "format": "date-time"},
			"archived_at":       map[string]any{"type": "string", "format": "date-time"},
			"created_at":        map[string]any{"type": "string", "format": "date-time"},
			"updated_at":        map[string]any{"type": "string", "format": "date-time"},
			"versions": map[string]any{
				"type":  "array",
				"items": map[string]any{"$ref": componentRef("post version")},
			},
			"effective_status": map[string]any{"type": "string", "enum": statusEnum()},
			"is_visible":       map[string]any{"type": "boolean"},
		},
	}
}

// VersionSchema describes one entry of a post's version history. It refers to
// the snapshot component, so projections must embed SnapshotSchema alongside.
func VersionSchema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"id", "post_id", "version", "status", "snapshot", "created_at"},
		"properties": map[string]any{
			"id":           map[string]any{"type": "string", "format": "uuid"},
			"post_id":      map[string]any{"type": "string", "format": "uuid"},
			"version":      map[string]any{"type": "integer", "minimum": 1},
			"status":       map[string]any{"type": "string", "enum": statusEnum()},
			"snapshot":     map[string]any{"$ref": componentRef("post version snapshot")},
			"created_at":   map[string]any{"type": "string", "format": "date-time"},
			"published_at": map[string]any{"type": "string", "format": "date-time"},
		},
	}
}

// SnapshotSchema mirrors the snapshot contract the persistence layer already
// validates against.
func SnapshotSchema() map[string]any {
	return cloneMap(posts.PostVersionSnapshotSchema)
}

// SummarySchema describes the trimmed listing shape the preview API returns
// from GET /api/posts.
func SummarySchema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"id", "slug", "title", "status", "date", "url"},
		"properties": map[string]any{
			"id":     map[string]any{"type": "string", "format": "uuid"},
			"slug":   map[string]any{"type": "string"},
			"title":  map[string]any{"type": "string"},
			"status": map[string]any{"type": "string", "enum": statusEnum()},
			"date":   map[string]any{"type": "string", "format": "date-time"},
			"tags":   map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"url":    map[string]any{"type": "string"},
		},
	}
}

func statusEnum() []any {
	return []any{
		string(domain.StatusDraft),
		string(domain.StatusScheduled),
		string(domain.StatusPublished),
		string(domain.StatusArchived),
	}
}
