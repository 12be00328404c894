package posts

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Service exposes post management use cases.
type Service interface {
	Create(ctx context.Context, req CreatePostRequest) (*Post, error)
	Update(ctx context.Context, req UpdatePostRequest) (*Post, error)
	Get(ctx context.Context, id uuid.UUID) (*Post, error)
	GetBySlug(ctx context.Context, slug string) (*Post, error)
	List(ctx context.Context, opts ListOptions) ([]*Post, error)
	Publish(ctx context.Context, req PublishPostRequest) (*Post, error)
	Schedule(ctx context.Context, req SchedulePostRequest) (*Post, error)
	Archive(ctx context.Context, req ArchivePostRequest) (*Post, error)
	CreateDraft(ctx context.Context, req CreatePostDraftRequest) (*PostVersion, error)
	PublishDraft(ctx context.Context, req PublishPostDraftRequest) (*PostVersion, error)
	ListVersions(ctx context.Context, postID uuid.UUID) ([]*PostVersion, error)
	RestoreVersion(ctx context.Context, req RestorePostVersionRequest) (*PostVersion, error)
}

// CreatePostRequest captures the information required to create a post.
// When Slug is empty the service derives one from the title. A non-zero ID
// persists the post under the caller-supplied identifier; importers use this
// to keep file-derived posts stable across databases. Identifier uniqueness
// rests with the repository, like every other write.
type CreatePostRequest struct {
	ID          uuid.UUID
	Slug        string
	Title       string
	Summary     *string
	Body        string
	HTML        string
	Status      string
	Date        time.Time
	Tags        []string
	Author      *string
	Template    *string
	SourcePath  *string
	Checksum    *string
	Metadata    map[string]any
	PublishAt   *time.Time
	PublishedAt *time.Time
}

// UpdatePostRequest captures mutable fields for an existing post. Nil pointer
// fields leave the stored value untouched; a nil Tags slice and a nil Metadata
// map are likewise treated as "no change".
type UpdatePostRequest struct {
	ID         uuid.UUID
	Slug       *string
	Title      *string
	Summary    *string
	Body       *string
	HTML       *string
	Status     *string
	Date       *time.Time
	Tags       []string
	Author     *string
	Template   *string
	SourcePath *string
	Checksum   *string
	Metadata   map[string]any
}

// ListOptions filters and paginates post listings. The zero value returns
// every post ordered by date, newest first.
type ListOptions struct {
	Status        string
	Tag           string
	PublishedOnly bool
	Limit         int
	Offset        int
}

// PublishPostRequest captures the information required to publish a post.
// At overrides the published timestamp; it defaults to the service clock.
type PublishPostRequest struct {
	ID uuid.UUID
	At *time.Time
}

// SchedulePostRequest captures details to schedule a future publish. A nil
// PublishAt cancels any pending schedule.
type SchedulePostRequest struct {
	ID        uuid.UUID
	PublishAt *time.Time
}

// ArchivePostRequest captures the information required to archive a post.
// Archiving replaces deletion: the record is retired, never removed.
type ArchivePostRequest struct {
	ID     uuid.UUID
	Reason string
}

// CreatePostDraftRequest captures the payload needed to record a draft snapshot.
type CreatePostDraftRequest struct {
	PostID      uuid.UUID
	Snapshot    PostVersionSnapshot
	BaseVersion *int
}

// PublishPostDraftRequest captures the information required to publish a
// draft version.
type PublishPostDraftRequest struct {
	PostID      uuid.UUID
	Version     int
	PublishedAt *time.Time
}

// RestorePostVersionRequest captures the request to restore a prior version.
type RestorePostVersionRequest struct {
	PostID  uuid.UUID
	Version int
}
