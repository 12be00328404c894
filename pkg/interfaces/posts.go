package interfaces

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PostService abstracts the blog post service so markdown imports and the
// preview server can provision or update records without depending on
// internal implementations.
type PostService interface {
	Create(ctx context.Context, req PostCreateRequest) (*PostRecord, error)
	Update(ctx context.Context, req PostUpdateRequest) (*PostRecord, error)
	GetBySlug(ctx context.Context, slug string) (*PostRecord, error)
	List(ctx context.Context, opts PostListOptions) ([]*PostRecord, error)
	Publish(ctx context.Context, req PostPublishRequest) (*PostRecord, error)
	Schedule(ctx context.Context, req PostScheduleRequest) (*PostRecord, error)
	Archive(ctx context.Context, req PostArchiveRequest) (*PostRecord, error)
}

// PostRecord is the transport-friendly projection of a stored post.
type PostRecord struct {
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
	ArchivedAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PostCreateRequest captures the fields required to create a post record.
type PostCreateRequest struct {
	Slug       string
	Title      string
	Summary    *string
	Body       string
	Status     string
	Date       time.Time
	Tags       []string
	Author     *string
	Template   *string
	SourcePath *string
	Checksum   *string
	Metadata   map[string]any
}

// PostUpdateRequest captures mutable fields for an existing post record.
type PostUpdateRequest struct {
	ID         uuid.UUID
	Title      string
	Summary    *string
	Body       string
	Status     string
	Date       time.Time
	Tags       []string
	Author     *string
	Template   *string
	SourcePath *string
	Checksum   *string
	Metadata   map[string]any
}

// PostListOptions filters list reads.
type PostListOptions struct {
	Status        string
	Tag           string
	PublishedOnly bool
	Limit         int
	Offset        int
}

// PostPublishRequest flips a draft to published, optionally backdating the
// publication instant.
type PostPublishRequest struct {
	ID uuid.UUID
	At *time.Time
}

// PostScheduleRequest registers (or, with a nil timestamp, cancels) a future
// publish for the post.
type PostScheduleRequest struct {
	ID        uuid.UUID
	PublishAt *time.Time
}

// PostArchiveRequest retires a post from the site while keeping the record.
type PostArchiveRequest struct {
	ID     uuid.UUID
	Reason string
}
