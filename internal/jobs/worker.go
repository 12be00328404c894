// Package jobs runs scheduled publish work: it drains due jobs from the
// scheduler and flips the targeted posts live, recording an audit trail and
// emitting activity events along the way.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-blog/internal/domain"
	blogscheduler "github.com/goliatone/go-blog/internal/scheduler"
	"github.com/goliatone/go-blog/pkg/activity"
	"github.com/goliatone/go-blog/pkg/interfaces"
	"github.com/goliatone/go-blog/posts"
	"github.com/google/uuid"
)

// PostRepository is the slice of post storage the worker needs. The worker
// writes records directly instead of going through the post service so a
// publish never cancels the job it is currently processing.
type PostRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*posts.Post, error)
	Update(ctx context.Context, record *posts.Post) (*posts.Post, error)
}

type Worker struct {
	scheduler interfaces.Scheduler
	posts     PostRepository
	audit     AuditRecorder
	activity  *activity.Emitter
	now       func() time.Time
	batchSize int
}

type Option func(*Worker)

func WithAuditRecorder(recorder AuditRecorder) Option {
	return func(w *Worker) {
		w.audit = recorder
	}
}

func WithActivityEmitter(emitter *activity.Emitter) Option {
	return func(w *Worker) {
		if emitter != nil {
			w.activity = emitter
		}
	}
}

func WithClock(clock func() time.Time) Option {
	return func(w *Worker) {
		if clock != nil {
			w.now = clock
		}
	}
}

func WithBatchSize(size int) Option {
	return func(w *Worker) {
		if size > 0 {
			w.batchSize = size
		}
	}
}

func NewWorker(scheduler interfaces.Scheduler, postsRepo PostRepository, opts ...Option) *Worker {
	w := &Worker{
		scheduler: scheduler,
		posts:     postsRepo,
		now:       time.Now,
		batchSize: 50,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Worker) emitActivity(ctx context.Context, verb, objectType string, objectID uuid.UUID, meta map[string]any) {
	if w.activity == nil || !w.activity.Enabled() || objectID == uuid.Nil {
		return
	}
	event := activity.Event{
		Verb:       verb,
		ObjectType: objectType,
		ObjectID:   objectID.String(),
		Metadata:   meta,
	}
	_ = w.activity.Emit(ctx, event)
}

// Process drains one batch of due jobs. Jobs that fail are marked failed and
// retried on a later pass; successful jobs are marked done.
func (w *Worker) Process(ctx context.Context) error {
	if w.scheduler == nil {
		return errors.New("jobs: scheduler is nil")
	}
	deadline := w.now()
	jobs, err := w.scheduler.ListDue(ctx, deadline, w.batchSize)
	if err != nil {
		return err
	}
	for _, job := range jobs {
		if job == nil {
			continue
		}
		if err := w.handleJob(ctx, job, deadline); err != nil {
			_ = w.scheduler.MarkFailed(ctx, job.ID, err)
			continue
		}
		_ = w.scheduler.MarkDone(ctx, job.ID)
	}
	return nil
}

func (w *Worker) handleJob(ctx context.Context, job *interfaces.Job, now time.Time) error {
	switch job.Type {
	case blogscheduler.JobTypePostPublish:
		return w.processPostPublish(ctx, job, now)
	default:
		return nil
	}
}

func (w *Worker) processPostPublish(ctx context.Context, job *interfaces.Job, now time.Time) error {
	if w.posts == nil {
		return errors.New("jobs: post repository is nil")
	}
	id, err := parsePostID(job.Payload)
	if err != nil {
		return err
	}
	record, err := w.posts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	originalStatus := determinePostStatus(record, now)
	statusChanged := originalStatus != domain.StatusPublished
	if record.PublishAt != nil {
		record.PublishAt = nil
		statusChanged = true
	}
	if statusChanged {
		record.Status = domain.StatusPublished
		publishedAt := job.RunAt
		if publishedAt.IsZero() {
			publishedAt = now
		}
		record.PublishedAt = &publishedAt
		record.ArchivedAt = nil
		record.UpdatedAt = now
		if _, err := w.posts.Update(ctx, record); err != nil {
			return err
		}
		w.recordAudit(ctx, AuditEvent{
			EntityType: "post",
			EntityID:   id.String(),
			Action:     "publish",
			OccurredAt: now,
			Metadata:   buildAuditMetadata(job),
		})
	}
	w.emitActivity(ctx, "publish", "post", id, map[string]any{
		"job_id":       job.ID,
		"job_type":     job.Type,
		"slug":         record.Slug,
		"status":       string(record.Status),
		"published_at": record.PublishedAt,
	})
	return nil
}

func (w *Worker) recordAudit(ctx context.Context, event AuditEvent) {
	if w.audit == nil {
		return
	}
	_ = w.audit.Record(ctx, event)
}

func parsePostID(payload map[string]any) (uuid.UUID, error) {
	if payload == nil {
		return uuid.Nil, fmt.Errorf("jobs: missing payload")
	}
	rawID, ok := payload["post_id"]
	if !ok {
		return uuid.Nil, fmt.Errorf("jobs: payload missing post_id")
	}
	idStr, ok := rawID.(string)
	if !ok {
		return uuid.Nil, fmt.Errorf("jobs: invalid post_id payload")
	}
	return uuid.Parse(idStr)
}

func buildAuditMetadata(job *interfaces.Job) map[string]any {
	return map[string]any{
		"job_id":   job.ID,
		"job_type": job.Type,
		"run_at":   job.RunAt,
		"attempt":  job.Attempt,
	}
}

func determinePostStatus(record *posts.Post, now time.Time) domain.Status {
	if record == nil {
		return domain.StatusDraft
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
	if record.Status == "" {
		return domain.StatusDraft
	}
	return record.Status
}
