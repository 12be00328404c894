package post

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/goliatone/go-blog/internal/domain"
	"github.com/goliatone/go-blog/internal/identity"
	blogscheduler "github.com/goliatone/go-blog/internal/scheduler"
	"github.com/goliatone/go-blog/pkg/activity"
	"github.com/goliatone/go-blog/pkg/interfaces"
	blogposts "github.com/goliatone/go-blog/posts"
	"github.com/google/uuid"
)

// PostRepository abstracts storage operations for post entities. There is no
// delete: posts leave circulation through Archive only.
type PostRepository interface {
	Create(ctx context.Context, record *Post) (*Post, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Post, error)
	GetBySlug(ctx context.Context, slug string) (*Post, error)
	List(ctx context.Context) ([]*Post, error)
	Update(ctx context.Context, record *Post) (*Post, error)
	CreateVersion(ctx context.Context, version *PostVersion) (*PostVersion, error)
	ListVersions(ctx context.Context, postID uuid.UUID) ([]*PostVersion, error)
	GetVersion(ctx context.Context, postID uuid.UUID, number int) (*PostVersion, error)
	UpdateVersion(ctx context.Context, version *PostVersion) (*PostVersion, error)
}

// ServiceOption configures the service at construction time.
type ServiceOption func(*service)

// WithClock overrides the clock used to stamp records.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

type IDGenerator func() uuid.UUID

func WithIDGenerator(generator IDGenerator) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.id = generator
		}
	}
}

// WithVersioningEnabled toggles the draft snapshot workflow for the service.
func WithVersioningEnabled(enabled bool) ServiceOption {
	return func(s *service) {
		s.versioningEnabled = enabled
	}
}

// WithVersionRetentionLimit constrains how many versions are retained per post.
func WithVersionRetentionLimit(limit int) ServiceOption {
	return func(s *service) {
		if limit < 0 {
			limit = 0
		}
		s.versionRetentionLimit = limit
	}
}

// WithScheduler overrides the scheduler used to register publish jobs.
func WithScheduler(scheduler interfaces.Scheduler) ServiceOption {
	return func(svc *service) {
		if scheduler != nil {
			svc.scheduler = scheduler
		}
	}
}

// WithSchedulingEnabled toggles scheduling-related workflows.
func WithSchedulingEnabled(enabled bool) ServiceOption {
	return func(svc *service) {
		svc.schedulingEnabled = enabled
	}
}

// WithActivityEmitter attaches an emitter that records lifecycle events.
func WithActivityEmitter(emitter *activity.Emitter) ServiceOption {
	return func(svc *service) {
		if emitter != nil {
			svc.activity = emitter
		}
	}
}

// service implements Service.
type service struct {
	posts                 PostRepository
	now                   func() time.Time
	id                    IDGenerator
	versioningEnabled     bool
	versionRetentionLimit int
	scheduler             interfaces.Scheduler
	schedulingEnabled     bool
	activity              *activity.Emitter
}

// NewService constructs a post service with the required dependencies.
func NewService(posts PostRepository, opts ...ServiceOption) Service {
	s := &service{
		posts:     posts,
		now:       time.Now,
		id:        uuid.New,
		scheduler: blogscheduler.NewNoOp(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Create validates and stores a new post. Slugs default to the normalized
// title when the request omits one.
func (s *service) Create(ctx context.Context, req CreatePostRequest) (*Post, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if req.Date.IsZero() {
		return nil, ErrDateRequired
	}

	slugValue := strings.TrimSpace(req.Slug)
	if slugValue == "" {
		normalized, err := blogposts.NormalizeSlug(title)
		if err != nil {
			return nil, ErrSlugInvalid
		}
		slugValue = normalized
	}
	if !blogposts.IsValidSlug(slugValue) {
		return nil, ErrSlugInvalid
	}

	if existing, err := s.posts.GetBySlug(ctx, slugValue); err == nil && existing != nil {
		return nil, ErrSlugExists
	} else if err != nil {
		var notFound *NotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	now := s.now()

	recordID := req.ID
	if recordID == uuid.Nil {
		recordID = s.id()
	}

	record := &Post{
		ID:             recordID,
		Slug:           slugValue,
		Title:          title,
		Summary:        cloneStringPtr(req.Summary),
		Body:           req.Body,
		HTML:           req.HTML,
		Status:         domain.ParseStatus(req.Status),
		Date:           req.Date,
		Tags:           cloneTags(req.Tags),
		Author:         cloneStringPtr(req.Author),
		Template:       cloneStringPtr(req.Template),
		SourcePath:     cloneStringPtr(req.SourcePath),
		Checksum:       cloneStringPtr(req.Checksum),
		Metadata:       cloneMap(req.Metadata),
		CurrentVersion: 1,
		PublishAt:      cloneTimePtr(req.PublishAt),
		PublishedAt:    cloneTimePtr(req.PublishedAt),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if record.Status == domain.StatusPublished && record.PublishedAt == nil {
		published := now
		record.PublishedAt = &published
	}

	created, err := s.posts.Create(ctx, record)
	if err != nil {
		return nil, err
	}

	s.emitActivity(ctx, "create", created.ID, map[string]any{
		"slug":   created.Slug,
		"status": string(created.Status),
	})

	return s.decoratePost(created), nil
}

// Update applies the non-nil request fields to an existing post.
func (s *service) Update(ctx context.Context, req UpdatePostRequest) (*Post, error) {
	if req.ID == uuid.Nil {
		return nil, ErrPostIDRequired
	}

	record, err := s.posts.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	now := s.now()

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, ErrTitleRequired
		}
		record.Title = title
	}
	if req.Date != nil {
		if req.Date.IsZero() {
			return nil, ErrDateInvalid
		}
		record.Date = *req.Date
	}
	if req.Slug != nil {
		slugValue := strings.TrimSpace(*req.Slug)
		if slugValue == "" {
			return nil, ErrSlugRequired
		}
		if !blogposts.IsValidSlug(slugValue) {
			return nil, ErrSlugInvalid
		}
		if slugValue != record.Slug {
			if existing, lookupErr := s.posts.GetBySlug(ctx, slugValue); lookupErr == nil && existing != nil && existing.ID != record.ID {
				return nil, ErrSlugExists
			} else if lookupErr != nil {
				var notFound *NotFoundError
				if !errors.As(lookupErr, &notFound) {
					return nil, lookupErr
				}
			}
			record.Slug = slugValue
		}
	}
	if req.Summary != nil {
		record.Summary = optionalString(*req.Summary)
	}
	if req.Body != nil {
		record.Body = *req.Body
	}
	if req.HTML != nil {
		record.HTML = *req.HTML
	}
	if req.Tags != nil {
		record.Tags = cloneTags(req.Tags)
	}
	if req.Author != nil {
		record.Author = optionalString(*req.Author)
	}
	if req.Template != nil {
		record.Template = optionalString(*req.Template)
	}
	if req.SourcePath != nil {
		record.SourcePath = optionalString(*req.SourcePath)
	}
	if req.Checksum != nil {
		record.Checksum = optionalString(*req.Checksum)
	}
	if req.Metadata != nil {
		record.Metadata = cloneMap(req.Metadata)
	}
	if req.Status != nil {
		s.applyStatusChange(record, domain.ParseStatus(*req.Status), now)
	}

	record.UpdatedAt = now

	updated, err := s.posts.Update(ctx, record)
	if err != nil {
		return nil, err
	}

	return s.decoratePost(updated), nil
}

// applyStatusChange reconciles lifecycle timestamps with the requested status.
// Reverting to draft clears the published marker so the entry drops out of the
// published index again.
func (s *service) applyStatusChange(record *Post, status domain.Status, now time.Time) {
	if status == record.Status {
		return
	}
	switch status {
	case domain.StatusPublished:
		if record.PublishedAt == nil {
			published := now
			record.PublishedAt = &published
		}
		record.PublishAt = nil
		record.ArchivedAt = nil
	case domain.StatusArchived:
		if record.ArchivedAt == nil {
			archived := now
			record.ArchivedAt = &archived
		}
	case domain.StatusDraft:
		record.PublishedAt = nil
		record.PublishAt = nil
		record.ArchivedAt = nil
	case domain.StatusScheduled:
		record.ArchivedAt = nil
	}
	record.Status = status
}

// Get fetches a post by identifier.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*Post, error) {
	if id == uuid.Nil {
		return nil, ErrPostIDRequired
	}
	record, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.decoratePost(record), nil
}

// GetBySlug fetches a post by slug.
func (s *service) GetBySlug(ctx context.Context, slug string) (*Post, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, ErrSlugRequired
	}
	record, err := s.posts.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.decoratePost(record), nil
}

// List returns posts matching the supplied filters, newest first. Status
// filters match the effective status so a scheduled entry whose publish time
// has passed counts as published.
func (s *service) List(ctx context.Context, opts ListOptions) ([]*Post, error) {
	records, err := s.posts.List(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	statusFilter := domain.Status(strings.ToLower(strings.TrimSpace(opts.Status)))

	filtered := make([]*Post, 0, len(records))
	for _, record := range records {
		if record == nil {
			continue
		}
		effective := effectivePostStatus(record, now)
		record.EffectiveStatus = effective
		record.IsVisible = effective == domain.StatusPublished

		if opts.PublishedOnly && !record.IsVisible {
			continue
		}
		if statusFilter != "" && effective != statusFilter {
			continue
		}
		if opts.Tag != "" && !hasTag(record.Tags, opts.Tag) {
			continue
		}
		filtered = append(filtered, record)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		if filtered[i].Date.Equal(filtered[j].Date) {
			return filtered[i].Slug < filtered[j].Slug
		}
		return filtered[i].Date.After(filtered[j].Date)
	})

	if opts.Offset > 0 {
		if opts.Offset >= len(filtered) {
			return []*Post{}, nil
		}
		filtered = filtered[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < len(filtered) {
		filtered = filtered[:opts.Limit]
	}

	return filtered, nil
}

// Publish flips a post to published. Publishing an already-published post is
// a no-op that preserves the original published timestamp.
func (s *service) Publish(ctx context.Context, req PublishPostRequest) (*Post, error) {
	if req.ID == uuid.Nil {
		return nil, ErrPostIDRequired
	}

	record, err := s.posts.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if record.Status == domain.StatusPublished && record.PublishedAt != nil {
		return s.decoratePost(record), nil
	}

	now := s.now()
	publishedAt := now
	if req.At != nil && !req.At.IsZero() {
		publishedAt = *req.At
	}

	record.Status = domain.StatusPublished
	record.PublishedAt = &publishedAt
	record.PublishAt = nil
	record.ArchivedAt = nil
	record.UpdatedAt = now

	if s.scheduler != nil {
		if err := s.scheduler.CancelByKey(ctx, blogscheduler.PostPublishJobKey(record.ID)); err != nil && !errors.Is(err, interfaces.ErrJobNotFound) {
			return nil, err
		}
	}

	updated, err := s.posts.Update(ctx, record)
	if err != nil {
		return nil, err
	}

	s.emitActivity(ctx, "publish", updated.ID, map[string]any{
		"slug":         updated.Slug,
		"published_at": updated.PublishedAt,
	})

	return s.decoratePost(updated), nil
}

// Schedule registers a future publish for a post and dispatches the scheduler
// job. A nil PublishAt cancels any pending schedule.
func (s *service) Schedule(ctx context.Context, req SchedulePostRequest) (*Post, error) {
	if !s.schedulingEnabled {
		return nil, ErrSchedulingDisabled
	}
	if req.ID == uuid.Nil {
		return nil, ErrPostIDRequired
	}
	if req.PublishAt != nil && req.PublishAt.IsZero() {
		return nil, ErrScheduleTimestampInvalid
	}

	record, err := s.posts.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	record.PublishAt = cloneTimePtr(req.PublishAt)
	record.UpdatedAt = now

	if record.PublishAt != nil {
		record.Status = domain.StatusScheduled
		record.ArchivedAt = nil
	} else if record.PublishedAt != nil {
		record.Status = domain.StatusPublished
	} else {
		record.Status = domain.StatusDraft
	}

	if s.scheduler != nil {
		if record.PublishAt != nil {
			payload := map[string]any{
				"post_id": record.ID.String(),
				"slug":    record.Slug,
			}
			if _, err := s.scheduler.Enqueue(ctx, interfaces.JobSpec{
				Key:     blogscheduler.PostPublishJobKey(record.ID),
				Type:    blogscheduler.JobTypePostPublish,
				RunAt:   *record.PublishAt,
				Payload: payload,
			}); err != nil {
				return nil, err
			}
		} else if cancelErr := s.scheduler.CancelByKey(ctx, blogscheduler.PostPublishJobKey(record.ID)); cancelErr != nil && !errors.Is(cancelErr, interfaces.ErrJobNotFound) {
			return nil, cancelErr
		}
	}

	updated, err := s.posts.Update(ctx, record)
	if err != nil {
		return nil, err
	}

	if updated.PublishAt != nil {
		s.emitActivity(ctx, "schedule", updated.ID, map[string]any{
			"slug":       updated.Slug,
			"publish_at": updated.PublishAt,
		})
	} else {
		s.emitActivity(ctx, "unschedule", updated.ID, map[string]any{
			"slug": updated.Slug,
		})
	}

	return s.decoratePost(updated), nil
}

// Archive retires a post. Records are retained with their history; nothing in
// this service removes a row.
func (s *service) Archive(ctx context.Context, req ArchivePostRequest) (*Post, error) {
	if req.ID == uuid.Nil {
		return nil, ErrPostIDRequired
	}

	record, err := s.posts.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if record.Status == domain.StatusArchived && record.ArchivedAt != nil {
		return s.decoratePost(record), nil
	}

	now := s.now()
	archived := now
	record.Status = domain.StatusArchived
	record.ArchivedAt = &archived
	record.PublishAt = nil
	record.UpdatedAt = now
	if reason := strings.TrimSpace(req.Reason); reason != "" {
		if record.Metadata == nil {
			record.Metadata = map[string]any{}
		}
		record.Metadata["archive_reason"] = reason
	}

	if s.scheduler != nil {
		if err := s.scheduler.CancelByKey(ctx, blogscheduler.PostPublishJobKey(record.ID)); err != nil && !errors.Is(err, interfaces.ErrJobNotFound) {
			return nil, err
		}
	}

	updated, err := s.posts.Update(ctx, record)
	if err != nil {
		return nil, err
	}

	meta := map[string]any{"slug": updated.Slug}
	if reason := strings.TrimSpace(req.Reason); reason != "" {
		meta["archive_reason"] = reason
	}
	s.emitActivity(ctx, "archive", updated.ID, meta)

	return s.decoratePost(updated), nil
}

func (s *service) CreateDraft(ctx context.Context, req CreatePostDraftRequest) (*PostVersion, error) {
	if !s.versioningEnabled {
		return nil, ErrVersioningDisabled
	}
	if req.PostID == uuid.Nil {
		return nil, ErrPostIDRequired
	}

	record, err := s.posts.GetByID(ctx, req.PostID)
	if err != nil {
		return nil, err
	}

	versions, err := s.posts.ListVersions(ctx, req.PostID)
	if err != nil {
		return nil, err
	}

	if s.versionRetentionLimit > 0 && len(versions) >= s.versionRetentionLimit {
		return nil, ErrVersionRetentionExceeded
	}

	next := nextVersionNumber(versions)
	if req.BaseVersion != nil && *req.BaseVersion != next-1 {
		return nil, ErrVersionConflict
	}

	now := s.now()
	version := &PostVersion{
		ID:        identity.VersionUUID(req.PostID, next),
		PostID:    req.PostID,
		Version:   next,
		Status:    domain.StatusDraft,
		Snapshot:  cloneSnapshot(req.Snapshot),
		CreatedAt: now,
	}

	created, err := s.posts.CreateVersion(ctx, version)
	if err != nil {
		return nil, err
	}

	record.CurrentVersion = created.Version
	record.UpdatedAt = now
	if record.PublishedVersion == nil {
		record.Status = domain.StatusDraft
	}

	if _, err := s.posts.Update(ctx, record); err != nil {
		return nil, err
	}

	return cloneVersion(created), nil
}

// PublishDraft publishes a draft version, applies its snapshot to the post
// record, and archives the previously published version.
func (s *service) PublishDraft(ctx context.Context, req PublishPostDraftRequest) (*PostVersion, error) {
	if !s.versioningEnabled {
		return nil, ErrVersioningDisabled
	}
	if req.PostID == uuid.Nil {
		return nil, ErrPostIDRequired
	}
	if req.Version <= 0 {
		return nil, ErrVersionRequired
	}

	record, err := s.posts.GetByID(ctx, req.PostID)
	if err != nil {
		return nil, err
	}

	version, err := s.posts.GetVersion(ctx, req.PostID, req.Version)
	if err != nil {
		return nil, err
	}
	if version.Status == domain.StatusPublished {
		return nil, ErrVersionAlreadyPublished
	}
	if strings.TrimSpace(version.Snapshot.Title) == "" {
		return nil, ErrTitleRequired
	}

	publishedAt := s.now()
	if req.PublishedAt != nil && !req.PublishedAt.IsZero() {
		publishedAt = *req.PublishedAt
	}

	version.Status = domain.StatusPublished
	version.PublishedAt = &publishedAt

	updatedVersion, err := s.posts.UpdateVersion(ctx, version)
	if err != nil {
		return nil, err
	}

	if record.PublishedVersion != nil && *record.PublishedVersion != updatedVersion.Version {
		prev, prevErr := s.posts.GetVersion(ctx, req.PostID, *record.PublishedVersion)
		if prevErr == nil && prev.Status == domain.StatusPublished {
			prev.Status = domain.StatusArchived
			if _, archiveErr := s.posts.UpdateVersion(ctx, prev); archiveErr != nil {
				return nil, archiveErr
			}
		}
	}

	applySnapshot(record, updatedVersion.Snapshot)
	record.PublishedVersion = &updatedVersion.Version
	record.PublishedAt = &publishedAt
	record.Status = domain.StatusPublished
	record.ArchivedAt = nil
	if updatedVersion.Version > record.CurrentVersion {
		record.CurrentVersion = updatedVersion.Version
	}
	record.UpdatedAt = s.now()

	if _, err := s.posts.Update(ctx, record); err != nil {
		return nil, err
	}

	s.emitActivity(ctx, "publish", record.ID, map[string]any{
		"slug":    record.Slug,
		"version": updatedVersion.Version,
	})

	return cloneVersion(updatedVersion), nil
}

func (s *service) ListVersions(ctx context.Context, postID uuid.UUID) ([]*PostVersion, error) {
	if !s.versioningEnabled {
		return nil, ErrVersioningDisabled
	}
	if postID == uuid.Nil {
		return nil, ErrPostIDRequired
	}

	versions, err := s.posts.ListVersions(ctx, postID)
	if err != nil {
		return nil, err
	}
	return cloneVersions(versions), nil
}

func (s *service) RestoreVersion(ctx context.Context, req RestorePostVersionRequest) (*PostVersion, error) {
	if !s.versioningEnabled {
		return nil, ErrVersioningDisabled
	}
	if req.PostID == uuid.Nil {
		return nil, ErrPostIDRequired
	}
	if req.Version <= 0 {
		return nil, ErrVersionRequired
	}

	version, err := s.posts.GetVersion(ctx, req.PostID, req.Version)
	if err != nil {
		return nil, err
	}

	return s.CreateDraft(ctx, CreatePostDraftRequest{
		PostID:      req.PostID,
		Snapshot:    cloneSnapshot(version.Snapshot),
		BaseVersion: nil,
	})
}

// applySnapshot copies a published payload onto the post record so reads and
// site builds reflect it. Rendered HTML is cleared; the next build re-renders
// from the snapshot body.
func applySnapshot(record *Post, snapshot PostVersionSnapshot) {
	record.Title = snapshot.Title
	record.Summary = cloneStringPtr(snapshot.Summary)
	record.Body = snapshot.Body
	record.HTML = ""
	if snapshot.Tags != nil {
		record.Tags = cloneTags(snapshot.Tags)
	}
	if snapshot.Metadata != nil {
		record.Metadata = cloneMap(snapshot.Metadata)
	}
}

func (s *service) emitActivity(ctx context.Context, verb string, objectID uuid.UUID, meta map[string]any) {
	if s.activity == nil || !s.activity.Enabled() || objectID == uuid.Nil {
		return
	}
	_ = s.activity.Emit(ctx, activity.Event{
		Verb:       verb,
		ObjectType: "post",
		ObjectID:   objectID.String(),
		Metadata:   meta,
	})
}

func (s *service) decoratePost(record *Post) *Post {
	if record == nil {
		return nil
	}
	status := effectivePostStatus(record, s.now())
	record.EffectiveStatus = status
	record.IsVisible = status == domain.StatusPublished
	return record
}

func effectivePostStatus(record *Post, now time.Time) domain.Status {
	if record == nil {
		return domain.StatusDraft
	}
	status := record.Status
	if status == "" {
		status = domain.StatusDraft
	}
	if record.ArchivedAt != nil && !record.ArchivedAt.After(now) {
		return domain.StatusArchived
	}
	if record.PublishAt != nil {
		if record.PublishAt.After(now) {
			return domain.StatusScheduled
		}
		return domain.StatusPublished
	}
	if record.PublishedAt != nil && !record.PublishedAt.After(now) {
		return domain.StatusPublished
	}
	return status
}

func hasTag(tags []string, tag string) bool {
	for _, candidate := range tags {
		if strings.EqualFold(candidate, tag) {
			return true
		}
	}
	return false
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func cloneStringPtr(value *string) *string {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneTimePtr(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneTags(tags []string) []string {
	if tags == nil {
		return nil
	}
	out := make([]string, len(tags))
	copy(out, tags)
	return out
}

func cloneMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

func cloneSnapshot(snapshot PostVersionSnapshot) PostVersionSnapshot {
	cloned := snapshot
	cloned.Summary = cloneStringPtr(snapshot.Summary)
	cloned.Tags = cloneTags(snapshot.Tags)
	cloned.Metadata = cloneMap(snapshot.Metadata)
	return cloned
}

func cloneVersion(version *PostVersion) *PostVersion {
	if version == nil {
		return nil
	}
	cloned := *version
	cloned.Snapshot = cloneSnapshot(version.Snapshot)
	cloned.PublishedAt = cloneTimePtr(version.PublishedAt)
	cloned.Post = nil
	return &cloned
}

func cloneVersions(versions []*PostVersion) []*PostVersion {
	out := make([]*PostVersion, 0, len(versions))
	for _, version := range versions {
		out = append(out, cloneVersion(version))
	}
	return out
}

func nextVersionNumber(records []*PostVersion) int {
	max := 0
	for _, version := range records {
		if version == nil {
			continue
		}
		if version.Version > max {
			max = version.Version
		}
	}
	return max + 1
}
