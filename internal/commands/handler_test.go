package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-blog/pkg/interfaces"
	goerrors "github.com/goliatone/go-errors"
)

type testMessage struct{}

func (testMessage) Type() string { return "blog.test.message" }

func (testMessage) Validate() error { return nil }

type invalidMessage struct{}

func (invalidMessage) Type() string { return "blog.test.invalid" }

func (invalidMessage) Validate() error {
	return validationError()
}

func validationError() error {
	return errors.New("missing slug")
}

type spyEntry struct {
	level string
	msg   string
	args  []any
}

type spyLogger struct {
	fields  []map[string]any
	entries []spyEntry
}

func (s *spyLogger) log(level, msg string, args ...any) {
	s.entries = append(s.entries, spyEntry{level: level, msg: msg, args: args})
}

func (s *spyLogger) Trace(msg string, args ...any) { s.log("trace", msg, args...) }
func (s *spyLogger) Debug(msg string, args ...any) { s.log("debug", msg, args...) }
func (s *spyLogger) Info(msg string, args ...any)  { s.log("info", msg, args...) }
func (s *spyLogger) Warn(msg string, args ...any)  { s.log("warn", msg, args...) }
func (s *spyLogger) Error(msg string, args ...any) { s.log("error", msg, args...) }
func (s *spyLogger) Fatal(msg string, args ...any) { s.log("fatal", msg, args...) }

func (s *spyLogger) WithFields(fields map[string]any) interfaces.Logger {
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	s.fields = append(s.fields, copied)
	return s
}

func (s *spyLogger) WithContext(context.Context) interfaces.Logger {
	return s
}

func (s *spyLogger) hasEntry(level, msg string) bool {
	for _, entry := range s.entries {
		if entry.level == level && entry.msg == msg {
			return true
		}
	}
	return false
}

func (s *spyLogger) lastFields() map[string]any {
	if len(s.fields) == 0 {
		return nil
	}
	return s.fields[len(s.fields)-1]
}

func TestHandlerExecuteSuccess(t *testing.T) {
	called := false
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		called = true
		return nil
	})

	if err := h.Execute(context.Background(), testMessage{}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !called {
		t.Fatal("expected handler to be invoked")
	}
}

func TestHandlerValidationShortCircuitsExecution(t *testing.T) {
	called := false
	h := NewHandler[invalidMessage](func(ctx context.Context, msg invalidMessage) error {
		called = true
		return nil
	})

	err := h.Execute(context.Background(), invalidMessage{})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	if called {
		t.Fatal("expected handler not to run when validation fails")
	}
}

func TestHandlerContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		called = true
		return nil
	})

	err := h.Execute(ctx, testMessage{})
	if err == nil {
		t.Fatal("expected context cancellation error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
	if called {
		t.Fatal("expected handler not to run when context is cancelled")
	}
}

func TestHandlerWrapsExecutionError(t *testing.T) {
	execErr := errors.New("boom")
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		return execErr
	})

	err := h.Execute(context.Background(), testMessage{})
	if err == nil {
		t.Fatal("expected wrapped execution error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
	if !goerrors.HasCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category to propagate, got %v", err)
	}
}

func TestHandlerHonoursTimeoutOption(t *testing.T) {
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(20 * time.Millisecond):
			return nil
		}
	}, WithTimeout[testMessage](10*time.Millisecond))

	err := h.Execute(context.Background(), testMessage{})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category for timeout, got %v", err)
	}
}

func TestHandlerMessageFieldsReachLogs(t *testing.T) {
	logger := &spyLogger{}
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		return nil
	},
		WithLogger[testMessage](logger),
		WithOperation[testMessage]("publish_post"),
		WithMessageFields[testMessage](func(testMessage) map[string]any {
			return map[string]any{"slug": "hello-world"}
		}),
	)

	if err := h.Execute(context.Background(), testMessage{}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	fields := logger.lastFields()
	if fields == nil {
		t.Fatal("expected execution fields to be recorded")
	}
	if fields["command"] != "blog.test.message" {
		t.Fatalf("expected command field, got %v", fields["command"])
	}
	if fields["operation"] != "publish_post" {
		t.Fatalf("expected operation field, got %v", fields["operation"])
	}
	if fields["slug"] != "hello-world" {
		t.Fatalf("expected message-derived slug field, got %v", fields["slug"])
	}
	if !logger.hasEntry("debug", "command.execute.start") {
		t.Fatal("expected start entry")
	}
	if !logger.hasEntry("info", "command.execute.success") {
		t.Fatal("expected success entry")
	}
}

func TestHandlerTelemetryReportsSuccess(t *testing.T) {
	var captured TelemetryInfo
	invoked := false
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		return nil
	}, WithTelemetry[testMessage](func(_ context.Context, _ testMessage, info TelemetryInfo) {
		invoked = true
		captured = info
	}))

	if err := h.Execute(context.Background(), testMessage{}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !invoked {
		t.Fatal("expected telemetry callback to run")
	}
	if captured.Status != TelemetryStatusSuccess {
		t.Fatalf("expected success status, got %q", captured.Status)
	}
	if captured.Command != "blog.test.message" {
		t.Fatalf("expected command name, got %q", captured.Command)
	}
	if captured.Error != nil {
		t.Fatalf("expected nil telemetry error, got %v", captured.Error)
	}
	if captured.Fields["command"] != "blog.test.message" {
		t.Fatalf("expected command field in telemetry, got %v", captured.Fields)
	}
	if captured.Logger == nil {
		t.Fatal("expected telemetry logger to be set")
	}
}

func TestHandlerTelemetryReportsFailure(t *testing.T) {
	var captured TelemetryInfo
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		return errors.New("boom")
	}, WithTelemetry[testMessage](func(_ context.Context, _ testMessage, info TelemetryInfo) {
		captured = info
	}))

	if err := h.Execute(context.Background(), testMessage{}); err == nil {
		t.Fatal("expected execution error")
	}
	if captured.Status != TelemetryStatusFailed {
		t.Fatalf("expected failed status, got %q", captured.Status)
	}
	if captured.Error == nil {
		t.Fatal("expected telemetry error to be set")
	}
	if !goerrors.IsCategory(captured.Error, goerrors.CategoryCommand) {
		t.Fatalf("expected command category on telemetry error, got %v", captured.Error)
	}
}
