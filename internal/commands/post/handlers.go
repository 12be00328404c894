package postcmd

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-blog/internal/commands"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/pkg/interfaces"
	"github.com/goliatone/go-blog/posts"
	command "github.com/goliatone/go-command"
)

const (
	createOperation   = "post.create"
	publishOperation  = "post.publish"
	scheduleOperation = "post.schedule"
	archiveOperation  = "post.archive"
)

var (
	// ErrSchedulingFeatureDisabled is returned when the scheduling feature flag is disabled at runtime.
	ErrSchedulingFeatureDisabled = errors.New("post command: scheduling feature disabled")
)

var (
	_ command.Commander[CreatePostCommand]   = (*CreatePostHandler)(nil)
	_ command.Commander[PublishPostCommand]  = (*PublishPostHandler)(nil)
	_ command.Commander[SchedulePostCommand] = (*SchedulePostHandler)(nil)
	_ command.Commander[ArchivePostCommand]  = (*ArchivePostHandler)(nil)
)

// CreatePostHandler creates posts via the shared command handler foundation.
type CreatePostHandler struct {
	inner *commands.Handler[CreatePostCommand]
}

// NewCreatePostHandler creates a handler bound to the supplied post service.
func NewCreatePostHandler(service posts.Service, logger interfaces.Logger, opts ...commands.HandlerOption[CreatePostCommand]) *CreatePostHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg CreatePostCommand) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		req := posts.CreatePostRequest{
			Slug:   strings.TrimSpace(msg.Slug),
			Title:  strings.TrimSpace(msg.Title),
			Body:   msg.Body,
			Status: strings.TrimSpace(msg.Status),
			Tags:   msg.Tags,
		}
		if msg.Date != nil {
			req.Date = *msg.Date
		}
		if summary := strings.TrimSpace(msg.Summary); summary != "" {
			req.Summary = &summary
		}
		if author := strings.TrimSpace(msg.Author); author != "" {
			req.Author = &author
		}

		post, err := service.Create(ctx, req)
		if err != nil {
			return err
		}
		if post != nil {
			logging.WithFields(baseLogger, map[string]any{
				"post_id": post.ID,
				"slug":    post.Slug,
				"status":  string(post.Status),
			}).Info("post.command.create.completed")
			invokeCallback(msg.ResultCallback, post)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[CreatePostCommand]{
		commands.WithLogger[CreatePostCommand](baseLogger),
		commands.WithOperation[CreatePostCommand](createOperation),
		commands.WithMessageFields(func(msg CreatePostCommand) map[string]any {
			fields := map[string]any{
				"title": strings.TrimSpace(msg.Title),
			}
			if slug := strings.TrimSpace(msg.Slug); slug != "" {
				fields["slug"] = slug
			}
			if status := strings.TrimSpace(msg.Status); status != "" {
				fields["status"] = status
			}
			if len(msg.Tags) > 0 {
				fields["tags"] = len(msg.Tags)
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[CreatePostCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &CreatePostHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[CreatePostCommand].
func (h *CreatePostHandler) Execute(ctx context.Context, msg CreatePostCommand) error {
	return h.inner.Execute(ctx, msg)
}

// PublishPostHandler publishes posts via the shared command handler foundation.
type PublishPostHandler struct {
	inner *commands.Handler[PublishPostCommand]
}

// NewPublishPostHandler creates a handler bound to the supplied post service.
func NewPublishPostHandler(service posts.Service, logger interfaces.Logger, opts ...commands.HandlerOption[PublishPostCommand]) *PublishPostHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg PublishPostCommand) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		post, err := service.Publish(ctx, posts.PublishPostRequest{
			ID: msg.ID,
			At: msg.At,
		})
		if err != nil {
			return err
		}
		if post != nil {
			fields := map[string]any{
				"post_id": post.ID,
				"slug":    post.Slug,
			}
			if post.PublishedAt != nil {
				fields["published_at"] = post.PublishedAt.UTC()
			}
			logging.WithFields(baseLogger, fields).Info("post.command.publish.completed")
			invokeCallback(msg.ResultCallback, post)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[PublishPostCommand]{
		commands.WithLogger[PublishPostCommand](baseLogger),
		commands.WithOperation[PublishPostCommand](publishOperation),
		commands.WithMessageFields(func(msg PublishPostCommand) map[string]any {
			fields := map[string]any{
				"post_id": msg.ID,
			}
			if msg.At != nil {
				fields["publish_at"] = msg.At.UTC()
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[PublishPostCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &PublishPostHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[PublishPostCommand].
func (h *PublishPostHandler) Execute(ctx context.Context, msg PublishPostCommand) error {
	return h.inner.Execute(ctx, msg)
}

// SchedulePostHandler schedules future publishes via the shared command handler foundation.
type SchedulePostHandler struct {
	inner *commands.Handler[SchedulePostCommand]
}

// NewSchedulePostHandler creates a handler bound to the supplied post service.
func NewSchedulePostHandler(service posts.Service, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[SchedulePostCommand]) *SchedulePostHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg SchedulePostCommand) error {
		if !gates.schedulingEnabled() {
			return ErrSchedulingFeatureDisabled
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		post, err := service.Schedule(ctx, posts.SchedulePostRequest{
			ID:        msg.ID,
			PublishAt: msg.PublishAt,
		})
		if err != nil {
			return err
		}
		if post != nil {
			fields := map[string]any{
				"post_id": post.ID,
				"slug":    post.Slug,
			}
			if post.PublishAt != nil {
				fields["publish_at"] = post.PublishAt.UTC()
			} else {
				fields["canceled"] = true
			}
			logging.WithFields(baseLogger, fields).Info("post.command.schedule.completed")
			invokeCallback(msg.ResultCallback, post)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[SchedulePostCommand]{
		commands.WithLogger[SchedulePostCommand](baseLogger),
		commands.WithOperation[SchedulePostCommand](scheduleOperation),
		commands.WithMessageFields(func(msg SchedulePostCommand) map[string]any {
			fields := map[string]any{
				"post_id": msg.ID,
			}
			if msg.PublishAt != nil {
				fields["publish_at"] = msg.PublishAt.UTC()
			} else {
				fields["cancel"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[SchedulePostCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &SchedulePostHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[SchedulePostCommand].
func (h *SchedulePostHandler) Execute(ctx context.Context, msg SchedulePostCommand) error {
	return h.inner.Execute(ctx, msg)
}

// ArchivePostHandler retires posts via the shared command handler foundation.
type ArchivePostHandler struct {
	inner *commands.Handler[ArchivePostCommand]
}

// NewArchivePostHandler creates a handler bound to the supplied post service.
func NewArchivePostHandler(service posts.Service, logger interfaces.Logger, opts ...commands.HandlerOption[ArchivePostCommand]) *ArchivePostHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg ArchivePostCommand) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		post, err := service.Archive(ctx, posts.ArchivePostRequest{
			ID:     msg.ID,
			Reason: strings.TrimSpace(msg.Reason),
		})
		if err != nil {
			return err
		}
		if post != nil {
			logging.WithFields(baseLogger, map[string]any{
				"post_id": post.ID,
				"slug":    post.Slug,
			}).Info("post.command.archive.completed")
			invokeCallback(msg.ResultCallback, post)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[ArchivePostCommand]{
		commands.WithLogger[ArchivePostCommand](baseLogger),
		commands.WithOperation[ArchivePostCommand](archiveOperation),
		commands.WithMessageFields(func(msg ArchivePostCommand) map[string]any {
			fields := map[string]any{
				"post_id": msg.ID,
			}
			if reason := strings.TrimSpace(msg.Reason); reason != "" {
				fields["reason"] = reason
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[ArchivePostCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ArchivePostHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[ArchivePostCommand].
func (h *ArchivePostHandler) Execute(ctx context.Context, msg ArchivePostCommand) error {
	return h.inner.Execute(ctx, msg)
}

func invokeCallback(cb ResultCallback, post *posts.Post) {
	if cb == nil {
		return
	}
	cb(post)
}
