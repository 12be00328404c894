package posts

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/goliatone/go-blog/domain"
	"github.com/google/uuid"
)

func TestPostJSONUsesMetadataField(t *testing.T) {
	postID := uuid.New()

	record := Post{
		ID:     postID,
		Slug:   "hello-world",
		Title:  "Hello World",
		Status: domain.StatusDraft,
		Date:   time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC),
		Metadata: map[string]any{
			"series": "getting-started",
		},
	}

	payload, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("marshal post: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(payload, &raw); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if _, ok := raw["metadata"]; !ok {
		t.Fatalf("expected metadata field in JSON payload")
	}
	if _, ok := raw["Metadata"]; ok {
		t.Fatalf("expected Metadata field to be absent from JSON payload")
	}

	input := fmt.Sprintf(`{"id":"%s","slug":"hello-world","metadata":{"series":"getting-started"}}`, postID)
	var decoded Post
	if err := json.Unmarshal([]byte(input), &decoded); err != nil {
		t.Fatalf("unmarshal post: %v", err)
	}
	if decoded.Metadata == nil {
		t.Fatalf("expected metadata to decode")
	}
	if got, ok := decoded.Metadata["series"].(string); !ok || got != "getting-started" {
		t.Fatalf("expected metadata series %q got %v", "getting-started", decoded.Metadata["series"])
	}
}
