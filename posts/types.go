package posts

import (
	"time"

	"github.com/goliatone/go-blog/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Post is the canonical record for a single blog entry. Posts are never
// deleted: retired entries move to StatusArchived and keep their history.
type Post struct {
	bun.BaseModel `bun:"table:posts,alias:p"`

	ID               uuid.UUID      `bun:",pk,type:uuid" json:"id"`
	Slug             string         `bun:"slug,notnull,unique" json:"slug"`
	Title            string         `bun:"title,notnull" json:"title"`
	Summary          *string        `bun:"summary" json:"summary,omitempty"`
	Body             string         `bun:"body,notnull" json:"body"`
	HTML             string         `bun:"html" json:"html,omitempty"`
	Status           domain.Status  `bun:"status,notnull,default:'draft'" json:"status"`
	Date             time.Time      `bun:"date,notnull" json:"date"`
	Tags             []string       `bun:"tags,type:jsonb" json:"tags,omitempty"`
	Author           *string        `bun:"author" json:"author,omitempty"`
	Template         *string        `bun:"template" json:"template,omitempty"`
	SourcePath       *string        `bun:"source_path" json:"source_path,omitempty"`
	Checksum         *string        `bun:"checksum" json:"checksum,omitempty"`
	Metadata         map[string]any `bun:"metadata,type:jsonb" json:"metadata,omitempty"`
	CurrentVersion   int            `bun:"current_version,notnull,default:1" json:"current_version"`
	PublishedVersion *int           `bun:"published_version" json:"published_version,omitempty"`
	PublishAt        *time.Time     `bun:"publish_at,nullzero" json:"publish_at,omitempty"`
	PublishedAt      *time.Time     `bun:"published_at,nullzero" json:"published_at,omitempty"`
	ArchivedAt       *time.Time     `bun:"archived_at,nullzero" json:"archived_at,omitempty"`
	CreatedAt        time.Time      `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt        time.Time      `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`

	Versions []*PostVersion `bun:"rel:has-many,join:id=post_id" json:"versions,omitempty"`

	EffectiveStatus domain.Status `bun:"-" json:"effective_status"`
	IsVisible       bool          `bun:"-" json:"is_visible"`
}

// PostVersion captures immutable snapshots of post payloads for the
// draft/publish workflow.
type PostVersion struct {
	bun.BaseModel `bun:"table:post_versions,alias:pv"`

	ID          uuid.UUID           `bun:",pk,type:uuid" json:"id"`
	PostID      uuid.UUID           `bun:"post_id,notnull,type:uuid" json:"post_id"`
	Version     int                 `bun:"version,notnull" json:"version"`
	Status      domain.Status       `bun:"status,notnull,default:'draft'" json:"status"`
	Snapshot    PostVersionSnapshot `bun:"snapshot,type:jsonb,notnull" json:"snapshot"`
	CreatedAt   time.Time           `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	PublishedAt *time.Time          `bun:"published_at,nullzero" json:"published_at,omitempty"`

	Post *Post `bun:"rel:belongs-to,join:post_id=id" json:"post,omitempty"`
}

// PostVersionSnapshot describes the persisted JSON snapshot for version history.
type PostVersionSnapshot struct {
	Title    string         `json:"title"`
	Summary  *string        `json:"summary,omitempty"`
	Body     string         `json:"body"`
	Tags     []string       `json:"tags,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// PostVersionSnapshotSchema captures the JSON schema used to validate snapshots.
var PostVersionSnapshotSchema = map[string]any{
	"type":     "object",
	"required": []string{"title", "body"},
	"properties": map[string]any{
		"title": map[string]any{"type": "string"},
		"summary": map[string]any{
			"type": []any{"string", "null"},
		},
		"body": map[string]any{"type": "string"},
		"tags": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
		"metadata": map[string]any{
			"type":                 "object",
			"additionalProperties": true,
		},
	},
}
