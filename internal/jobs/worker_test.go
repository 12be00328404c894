package jobs_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-blog/internal/domain"
	"github.com/goliatone/go-blog/internal/jobs"
	"github.com/goliatone/go-blog/internal/post"
	blogscheduler "github.com/goliatone/go-blog/internal/scheduler"
	"github.com/goliatone/go-blog/pkg/activity"
	"github.com/goliatone/go-blog/pkg/interfaces"
	"github.com/google/uuid"
)

func TestWorkerProcessPostPublish(t *testing.T) {
	ctx := context.Background()
	scheduler := blogscheduler.NewInMemory()
	postRepo := post.NewMemoryPostRepository()
	audit := jobs.NewInMemoryAuditRecorder()
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	worker := jobs.NewWorker(scheduler, postRepo, jobs.WithAuditRecorder(audit), jobs.WithClock(func() time.Time { return now }))

	postID := uuid.New()
	record := &post.Post{
		ID:        postID,
		Slug:      "hello-world",
		Title:     "Hello World",
		Body:      "# Hello",
		Status:    domain.StatusScheduled,
		Date:      now.Add(-24 * time.Hour),
		PublishAt: ptrTime(now.Add(-time.Minute)),
		UpdatedAt: now.Add(-time.Hour),
	}
	if _, err := postRepo.Create(ctx, record); err != nil {
		t.Fatalf("create post: %v", err)
	}

	enqueued, err := scheduler.Enqueue(ctx, interfaces.JobSpec{
		Key:   blogscheduler.PostPublishJobKey(postID),
		Type:  blogscheduler.JobTypePostPublish,
		RunAt: now.Add(-time.Minute),
		Payload: map[string]any{
			"post_id": postID.String(),
			"slug":    record.Slug,
		},
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	if err := worker.Process(ctx); err != nil {
		t.Fatalf("process: %v", err)
	}

	updated, err := postRepo.GetByID(ctx, postID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if updated.Status != domain.StatusPublished {
		t.Fatalf("expected published status, got %s", updated.Status)
	}
	if updated.PublishAt != nil {
		t.Fatalf("expected publish_at cleared")
	}
	if updated.PublishedAt == nil || !updated.PublishedAt.Equal(now.Add(-time.Minute)) {
		t.Fatalf("unexpected published_at %v", updated.PublishedAt)
	}

	auditEvents := audit.Events()
	if len(auditEvents) != 1 {
		t.Fatalf("expected 1 audit event, got %d", len(auditEvents))
	}
	if auditEvents[0].Action != "publish" {
		t.Fatalf("expected publish action, got %s", auditEvents[0].Action)
	}
	if auditEvents[0].EntityType != "post" || auditEvents[0].EntityID != postID.String() {
		t.Fatalf("unexpected audit target %s/%s", auditEvents[0].EntityType, auditEvents[0].EntityID)
	}

	stored, err := scheduler.Get(ctx, enqueued.ID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if stored.Status != interfaces.JobStatusCompleted {
		t.Fatalf("expected job completed, got %s", stored.Status)
	}
}

func TestWorkerSkipsAlreadyPublishedPost(t *testing.T) {
	ctx := context.Background()
	scheduler := blogscheduler.NewInMemory()
	postRepo := post.NewMemoryPostRepository()
	audit := jobs.NewInMemoryAuditRecorder()
	now := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)
	worker := jobs.NewWorker(scheduler, postRepo, jobs.WithAuditRecorder(audit), jobs.WithClock(func() time.Time { return now }))

	postID := uuid.New()
	publishedAt := now.Add(-time.Hour)
	record := &post.Post{
		ID:          postID,
		Slug:        "already-live",
		Title:       "Already Live",
		Body:        "text",
		Status:      domain.StatusPublished,
		Date:        now.Add(-48 * time.Hour),
		PublishedAt: &publishedAt,
		UpdatedAt:   now.Add(-time.Hour),
	}
	if _, err := postRepo.Create(ctx, record); err != nil {
		t.Fatalf("create post: %v", err)
	}

	enqueued, err := scheduler.Enqueue(ctx, interfaces.JobSpec{
		Key:     blogscheduler.PostPublishJobKey(postID),
		Type:    blogscheduler.JobTypePostPublish,
		RunAt:   now.Add(-time.Minute),
		Payload: map[string]any{"post_id": postID.String()},
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	if err := worker.Process(ctx); err != nil {
		t.Fatalf("process: %v", err)
	}

	updated, err := postRepo.GetByID(ctx, postID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if updated.PublishedAt == nil || !updated.PublishedAt.Equal(publishedAt) {
		t.Fatalf("expected original published_at preserved, got %v", updated.PublishedAt)
	}
	if len(audit.Events()) != 0 {
		t.Fatalf("expected no audit events for already published post, got %d", len(audit.Events()))
	}

	stored, err := scheduler.Get(ctx, enqueued.ID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if stored.Status != interfaces.JobStatusCompleted {
		t.Fatalf("expected job completed, got %s", stored.Status)
	}
}

func TestWorkerMarksFailedOnMissingPost(t *testing.T) {
	ctx := context.Background()
	scheduler := blogscheduler.NewInMemory()
	postRepo := post.NewMemoryPostRepository()
	now := time.Date(2024, 5, 3, 10, 0, 0, 0, time.UTC)
	worker := jobs.NewWorker(scheduler, postRepo, jobs.WithClock(func() time.Time { return now }))

	missingID := uuid.New()
	enqueued, err := scheduler.Enqueue(ctx, interfaces.JobSpec{
		Key:     blogscheduler.PostPublishJobKey(missingID),
		Type:    blogscheduler.JobTypePostPublish,
		RunAt:   now.Add(-time.Minute),
		Payload: map[string]any{"post_id": missingID.String()},
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	if err := worker.Process(ctx); err != nil {
		t.Fatalf("process: %v", err)
	}

	stored, err := scheduler.Get(ctx, enqueued.ID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if stored.Status == interfaces.JobStatusCompleted {
		t.Fatal("expected job to stay uncompleted for missing post")
	}
	if stored.Attempt != 1 {
		t.Fatalf("expected attempt 1, got %d", stored.Attempt)
	}
	if stored.LastError == "" {
		t.Fatal("expected last error recorded")
	}
}

func TestWorkerEmitsActivity(t *testing.T) {
	ctx := context.Background()
	scheduler := blogscheduler.NewInMemory()
	postRepo := post.NewMemoryPostRepository()
	hook := &activity.CaptureHook{}
	emitter := activity.NewEmitter(activity.Hooks{hook}, activity.Config{Enabled: true, Channel: "blog"})
	now := time.Date(2024, 5, 4, 10, 0, 0, 0, time.UTC)
	worker := jobs.NewWorker(scheduler, postRepo, jobs.WithActivityEmitter(emitter), jobs.WithClock(func() time.Time { return now }))

	postID := uuid.New()
	record := &post.Post{
		ID:        postID,
		Slug:      "announce",
		Title:     "Announce",
		Body:      "soon",
		Status:    domain.StatusScheduled,
		Date:      now.Add(-time.Hour),
		PublishAt: ptrTime(now.Add(-time.Minute)),
	}
	if _, err := postRepo.Create(ctx, record); err != nil {
		t.Fatalf("create post: %v", err)
	}
	if _, err := scheduler.Enqueue(ctx, interfaces.JobSpec{
		Key:     blogscheduler.PostPublishJobKey(postID),
		Type:    blogscheduler.JobTypePostPublish,
		RunAt:   now.Add(-time.Minute),
		Payload: map[string]any{"post_id": postID.String()},
	}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	if err := worker.Process(ctx); err != nil {
		t.Fatalf("process: %v", err)
	}

	if len(hook.Events) != 1 {
		t.Fatalf("expected 1 activity event, got %d", len(hook.Events))
	}
	event := hook.Events[0]
	if event.Verb != "publish" || event.ObjectType != "post" || event.ObjectID != postID.String() {
		t.Fatalf("unexpected activity event: %+v", event)
	}
	if event.Metadata["slug"] != "announce" {
		t.Fatalf("expected slug metadata, got %v", event.Metadata["slug"])
	}
	if event.Channel != "blog" {
		t.Fatalf("expected channel blog got %q", event.Channel)
	}
}

func TestSchedulingCancellation(t *testing.T) {
	ctx := context.Background()
	scheduler := blogscheduler.NewInMemory()
	postRepo := post.NewMemoryPostRepository()

	svc := post.NewService(
		postRepo,
		post.WithScheduler(scheduler),
		post.WithSchedulingEnabled(true),
	)

	record, err := svc.Create(ctx, post.CreatePostRequest{
		Slug:  "cancel-me",
		Title: "Cancel Me",
		Body:  "pending",
		Date:  time.Now().Add(-time.Hour),
	})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	publishAt := time.Now().Add(time.Hour)
	if _, err := svc.Schedule(ctx, post.SchedulePostRequest{ID: record.ID, PublishAt: &publishAt}); err != nil {
		t.Fatalf("schedule publish: %v", err)
	}
	if _, err := svc.Schedule(ctx, post.SchedulePostRequest{ID: record.ID}); err != nil {
		t.Fatalf("cancel schedule: %v", err)
	}

	if _, err := scheduler.GetByKey(ctx, blogscheduler.PostPublishJobKey(record.ID)); !errors.Is(err, interfaces.ErrJobNotFound) {
		t.Fatalf("expected publish job removal, got %v", err)
	}
}

func ptrTime(value time.Time) *time.Time {
	return &value
}
