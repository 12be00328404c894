package postcmd

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-blog/internal/domain"
	"github.com/goliatone/go-blog/posts"
	"github.com/google/uuid"
)

const (
	createPostMessageType   = "blog.post.create"
	publishPostMessageType  = "blog.post.publish"
	schedulePostMessageType = "blog.post.schedule"
	archivePostMessageType  = "blog.post.archive"
)

// ResultCallback receives the post affected by a command. The callback is
// optional and is invoked synchronously from the handler on success.
type ResultCallback func(*posts.Post)

// CreatePostCommand creates a new post through posts.Service. When Slug is
// empty the service derives one from the title; when Status is empty the post
// starts as a draft.
type CreatePostCommand struct {
	// Title names the post and seeds the slug when none is supplied.
	Title string `json:"title"`
	// Slug overrides the derived URL identifier.
	Slug string `json:"slug,omitempty"`
	// Summary optionally sets the teaser shown on listings and feeds.
	Summary string `json:"summary,omitempty"`
	// Body holds the Markdown source for the post.
	Body string `json:"body,omitempty"`
	// Status selects the initial lifecycle state, defaulting to draft.
	Status string `json:"status,omitempty"`
	// Tags label the post for tag listings.
	Tags []string `json:"tags,omitempty"`
	// Author optionally attributes the post.
	Author string `json:"author,omitempty"`
	// Date overrides the post date, defaulting to the current time.
	Date *time.Time `json:"date,omitempty"`
	// ResultCallback receives the created post.
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (CreatePostCommand) Type() string { return createPostMessageType }

// Validate ensures a title is present and any status value is a known state.
func (cmd CreatePostCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Title, validation.Required, validation.By(func(value any) error {
			if strings.TrimSpace(value.(string)) == "" {
				return validation.NewError("blog.post.create.title_required", "title is required")
			}
			return nil
		})),
		validation.Field(&cmd.Status, validation.By(func(value any) error {
			raw, _ := value.(string)
			trimmed := strings.TrimSpace(raw)
			if trimmed == "" {
				return nil
			}
			if !domain.Status(strings.ToLower(trimmed)).IsValid() {
				return validation.NewError("blog.post.create.status_invalid", "status must be draft, published, scheduled, or archived")
			}
			return nil
		})),
	)
}

// PublishPostCommand transitions an existing post to published. A nil At
// publishes immediately with the service clock.
type PublishPostCommand struct {
	// ID identifies the post to publish.
	ID uuid.UUID `json:"id"`
	// At backdates or forward-dates the publish timestamp.
	At *time.Time `json:"at,omitempty"`
	// ResultCallback receives the published post.
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (PublishPostCommand) Type() string { return publishPostMessageType }

// Validate ensures the post identifier is present.
func (cmd PublishPostCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.ID, validation.By(requireUUID("blog.post.publish.id_required"))),
	)
}

// SchedulePostCommand arranges a future publish for the post. A nil PublishAt
// cancels any pending schedule and returns the post to draft.
type SchedulePostCommand struct {
	// ID identifies the post to schedule.
	ID uuid.UUID `json:"id"`
	// PublishAt selects the future publish time; nil cancels the schedule.
	PublishAt *time.Time `json:"publish_at,omitempty"`
	// ResultCallback receives the scheduled post.
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (SchedulePostCommand) Type() string { return schedulePostMessageType }

// Validate ensures the post identifier is present.
func (cmd SchedulePostCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.ID, validation.By(requireUUID("blog.post.schedule.id_required"))),
	)
}

// ArchivePostCommand retires a post from the published site while keeping the
// stored record. Archival replaces deletion.
type ArchivePostCommand struct {
	// ID identifies the post to archive.
	ID uuid.UUID `json:"id"`
	// Reason records why the post was retired.
	Reason string `json:"reason,omitempty"`
	// ResultCallback receives the archived post.
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (ArchivePostCommand) Type() string { return archivePostMessageType }

// Validate ensures the post identifier is present.
func (cmd ArchivePostCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.ID, validation.By(requireUUID("blog.post.archive.id_required"))),
	)
}

func requireUUID(code string) func(value any) error {
	return func(value any) error {
		id, _ := value.(uuid.UUID)
		if id == uuid.Nil {
			return validation.NewError(code, "post id is required")
		}
		return nil
	}
}
