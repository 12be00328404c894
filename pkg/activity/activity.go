package activity

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// DefaultChannel is stamped on events when neither the event nor the emitter
// configuration names a channel.
const DefaultChannel = "blog"

// Event describes a single occurrence worth recording: an import, a publish,
// a site build. Identifier fields carry string forms so emitters stay
// decoupled from any particular ID representation.
type Event struct {
	Verb           string
	ActorID        string
	UserID         string
	TenantID       string
	ObjectType     string
	ObjectID       string
	Channel        string
	DefinitionCode string
	Recipients     []string
	Metadata       map[string]any
	OccurredAt     time.Time
}

// Hook receives emitted events. Implementations must tolerate repeated
// delivery of the same event.
type Hook interface {
	Notify(ctx context.Context, event Event) error
}

// HookFunc adapts a function to the Hook interface.
type HookFunc func(ctx context.Context, event Event) error

func (f HookFunc) Notify(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Hooks is an ordered collection of hooks.
type Hooks []Hook

// Config controls emitter behavior.
type Config struct {
	// Enabled gates all emission; a disabled emitter drops every event.
	Enabled bool
	// Channel is applied to events that do not name their own channel.
	Channel string
}

// Emitter fans events out to registered hooks.
type Emitter struct {
	mu     sync.RWMutex
	hooks  Hooks
	config Config
	now    func() time.Time
}

// NewEmitter constructs an emitter with the supplied hooks.
func NewEmitter(hooks Hooks, config Config) *Emitter {
	e := &Emitter{
		config: config,
		now:    time.Now,
	}
	for _, hook := range hooks {
		if hook != nil {
			e.hooks = append(e.hooks, hook)
		}
	}
	return e
}

// Enabled reports whether the emitter forwards events.
func (e *Emitter) Enabled() bool {
	if e == nil {
		return false
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.config.Enabled && len(e.hooks) > 0
}

// Register appends a hook. Nil hooks are ignored.
func (e *Emitter) Register(hook Hook) {
	if e == nil || hook == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hooks = append(e.hooks, hook)
}

// Emit delivers the event to every hook, joining any hook errors. Events
// without a verb are dropped; missing timestamps and channels receive
// defaults before delivery.
func (e *Emitter) Emit(ctx context.Context, event Event) error {
	if !e.Enabled() {
		return nil
	}
	if strings.TrimSpace(event.Verb) == "" {
		return nil
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = e.now()
	}
	if strings.TrimSpace(event.Channel) == "" {
		event.Channel = e.config.Channel
	}
	if strings.TrimSpace(event.Channel) == "" {
		event.Channel = DefaultChannel
	}

	e.mu.RLock()
	hooks := make(Hooks, len(e.hooks))
	copy(hooks, e.hooks)
	e.mu.RUnlock()

	var errs []error
	for _, hook := range hooks {
		if err := hook.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// CaptureHook buffers emitted events for inspection in tests.
type CaptureHook struct {
	mu     sync.Mutex
	Events []Event
	Err    error
}

// Notify records the event and returns the configured error, if any.
func (h *CaptureHook) Notify(_ context.Context, event Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Events = append(h.Events, event)
	return h.Err
}
