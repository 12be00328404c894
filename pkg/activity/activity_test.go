package activity_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-blog/pkg/activity"
)

func TestEmitterDefaultsTimestampAndChannel(t *testing.T) {
	hook := &activity.CaptureHook{}
	emitter := activity.NewEmitter(activity.Hooks{hook}, activity.Config{
		Enabled: true,
		Channel: "editorial",
	})

	if !emitter.Enabled() {
		t.Fatal("expected emitter with hooks to be enabled")
	}

	err := emitter.Emit(context.Background(), activity.Event{
		Verb:       "publish",
		ObjectType: "post",
		ObjectID:   "hello-world",
	})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}

	if len(hook.Events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(hook.Events))
	}
	event := hook.Events[0]
	if event.OccurredAt.IsZero() {
		t.Fatal("expected occurred_at to be set")
	}
	if event.Channel != "editorial" {
		t.Fatalf("expected configured channel, got %q", event.Channel)
	}
}

func TestEmitterFallsBackToDefaultChannel(t *testing.T) {
	hook := &activity.CaptureHook{}
	emitter := activity.NewEmitter(activity.Hooks{hook}, activity.Config{Enabled: true})

	if err := emitter.Emit(context.Background(), activity.Event{Verb: "import"}); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if len(hook.Events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(hook.Events))
	}
	if hook.Events[0].Channel != activity.DefaultChannel {
		t.Fatalf("expected channel %q got %q", activity.DefaultChannel, hook.Events[0].Channel)
	}
}

func TestEmitterPreservesExplicitFields(t *testing.T) {
	hook := &activity.CaptureHook{}
	emitter := activity.NewEmitter(activity.Hooks{hook}, activity.Config{
		Enabled: true,
		Channel: "editorial",
	})

	occurredAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	if err := emitter.Emit(context.Background(), activity.Event{
		Verb:       "archive",
		Channel:    "ops",
		OccurredAt: occurredAt,
	}); err != nil {
		t.Fatalf("emit: %v", err)
	}

	event := hook.Events[0]
	if event.Channel != "ops" {
		t.Fatalf("expected explicit channel preserved, got %q", event.Channel)
	}
	if !event.OccurredAt.Equal(occurredAt) {
		t.Fatalf("expected explicit occurred_at preserved, got %v", event.OccurredAt)
	}
}

func TestEmitterDropsEventsWithoutVerb(t *testing.T) {
	hook := &activity.CaptureHook{}
	emitter := activity.NewEmitter(activity.Hooks{hook}, activity.Config{Enabled: true})

	if err := emitter.Emit(context.Background(), activity.Event{ObjectType: "post"}); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if len(hook.Events) != 0 {
		t.Fatalf("expected no events, got %d", len(hook.Events))
	}
}

func TestEmitterWithoutHooksIsDisabled(t *testing.T) {
	emitter := activity.NewEmitter(nil, activity.Config{Enabled: true})
	if emitter.Enabled() {
		t.Fatal("expected emitter without hooks to report disabled")
	}

	var nilEmitter *activity.Emitter
	if nilEmitter.Enabled() {
		t.Fatal("expected nil emitter to report disabled")
	}
}

func TestEmitterJoinsHookErrors(t *testing.T) {
	boom := errors.New("sink offline")
	failing := &activity.CaptureHook{Err: boom}
	healthy := &activity.CaptureHook{}
	emitter := activity.NewEmitter(activity.Hooks{failing, healthy}, activity.Config{Enabled: true})

	err := emitter.Emit(context.Background(), activity.Event{Verb: "import"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected hook error, got %v", err)
	}
	if len(healthy.Events) != 1 {
		t.Fatalf("expected delivery to continue past failing hook, got %d events", len(healthy.Events))
	}
}

func TestEmitterDisabledDropsEverything(t *testing.T) {
	hook := &activity.CaptureHook{}
	emitter := activity.NewEmitter(activity.Hooks{hook}, activity.Config{Enabled: false})

	if emitter.Enabled() {
		t.Fatal("expected disabled emitter")
	}
	if err := emitter.Emit(context.Background(), activity.Event{Verb: "publish"}); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if len(hook.Events) != 0 {
		t.Fatalf("expected no events, got %d", len(hook.Events))
	}
}

func TestEmitterRegisterEnablesDelivery(t *testing.T) {
	emitter := activity.NewEmitter(nil, activity.Config{Enabled: true})
	hook := &activity.CaptureHook{}
	emitter.Register(hook)

	if !emitter.Enabled() {
		t.Fatal("expected emitter to be enabled after Register")
	}
	if err := emitter.Emit(context.Background(), activity.Event{Verb: "archive"}); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if len(hook.Events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(hook.Events))
	}
}
