// Package usersink bridges blog activity events into the go-users activity
// feed so publishes and imports show up alongside account activity.
package usersink

import (
	"context"
	"strings"

	"github.com/goliatone/go-blog/pkg/activity"
	"github.com/goliatone/go-blog/pkg/interfaces"
	"github.com/google/uuid"
)

// Hook forwards emitted events to an ActivitySink.
type Hook struct {
	Sink interfaces.ActivitySink
}

// Notify maps the event onto an activity record and logs it. Events without a
// verb carry no useful signal and are skipped.
func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	if h.Sink == nil {
		return nil
	}
	if strings.TrimSpace(event.Verb) == "" {
		return nil
	}

	record := interfaces.ActivityRecord{
		ActorID:    parseID(event.ActorID),
		UserID:     parseID(event.UserID),
		TenantID:   parseID(event.TenantID),
		Verb:       event.Verb,
		ObjectType: event.ObjectType,
		ObjectID:   event.ObjectID,
		Channel:    event.Channel,
		OccurredAt: event.OccurredAt,
		Data:       buildData(event),
	}

	return h.Sink.Log(ctx, record)
}

func parseID(raw string) uuid.UUID {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil
	}
	return id
}

func buildData(event activity.Event) map[string]any {
	data := make(map[string]any, len(event.Metadata)+2)
	for key, value := range event.Metadata {
		data[key] = value
	}
	if event.DefinitionCode != "" {
		data["definition_code"] = event.DefinitionCode
	}
	if len(event.Recipients) > 0 {
		recipients := make([]string, len(event.Recipients))
		copy(recipients, event.Recipients)
		data["recipients"] = recipients
	}
	if len(data) == 0 {
		return nil
	}
	return data
}
