package validation

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNormalizeSchemaFieldList(t *testing.T) {
	schema := map[string]any{
		"fields": []any{
			map[string]any{"name": "cover", "type": "string", "required": true},
			map[string]any{"name": "rating", "type": "number"},
			"series",
		},
	}

	normalized := NormalizeSchema(schema)
	if normalized == nil {
		t.Fatal("expected a normalized schema")
	}
	if normalized["type"] != "object" {
		t.Fatalf("expected object schema, got %v", normalized["type"])
	}

	properties, ok := normalized["properties"].(map[string]any)
	if !ok {
		t.Fatalf("expected properties map, got %T", normalized["properties"])
	}
	cover, ok := properties["cover"].(map[string]any)
	if !ok || cover["type"] != "string" {
		t.Fatalf("expected cover to be string typed, got %v", properties["cover"])
	}
	if _, ok := properties["series"]; !ok {
		t.Fatal("expected bare field name to become an open property")
	}

	required, ok := normalized["required"].([]string)
	if !ok || len(required) != 1 || required[0] != "cover" {
		t.Fatalf("expected required [cover], got %v", normalized["required"])
	}

	// A field list must not lock out the standard header keys.
	if normalized["additionalProperties"] != true {
		t.Fatalf("expected additionalProperties true, got %v", normalized["additionalProperties"])
	}
}

func TestNormalizeSchemaHonoursAdditionalPropertiesOverride(t *testing.T) {
	schema := map[string]any{
		"fields":               []any{map[string]any{"name": "cover", "type": "string"}},
		"additionalProperties": false,
	}
	normalized := NormalizeSchema(schema)
	if normalized == nil || normalized["additionalProperties"] != false {
		t.Fatalf("expected override to stick, got %v", normalized)
	}
}

func TestNormalizeSchemaPassthroughClones(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"cover": map[string]any{"type": "string"},
		},
	}

	normalized := NormalizeSchema(schema)
	if normalized == nil {
		t.Fatal("expected passthrough of a JSON schema")
	}
	normalized["type"] = "array"
	props := normalized["properties"].(map[string]any)
	props["cover"].(map[string]any)["type"] = "number"

	if schema["type"] != "object" {
		t.Fatal("expected the input schema to stay untouched")
	}
	if schema["properties"].(map[string]any)["cover"].(map[string]any)["type"] != "string" {
		t.Fatal("expected nested input maps to stay untouched")
	}
}

func TestCompileRejectsUnsupportedKeyword(t *testing.T) {
	schema := map[string]any{
		"type":              "object",
		"patternProperties": map[string]any{},
	}
	_, err := Compile(schema)
	if !errors.Is(err, ErrSchemaInvalid) {
		t.Fatalf("expected ErrSchemaInvalid, got %v", err)
	}
	if !strings.Contains(err.Error(), "patternProperties") {
		t.Fatalf("expected the offending keyword in the message, got %q", err)
	}
}

func TestCompileEmptySchemaIsNoop(t *testing.T) {
	compiled, err := Compile(nil)
	if err != nil || compiled != nil {
		t.Fatalf("expected nil compile result, got %v, %v", compiled, err)
	}
	if err := compiled.Validate(map[string]any{"anything": "goes"}); err != nil {
		t.Fatalf("expected nil CompiledSchema to accept everything, got %v", err)
	}
	if err := ValidateSchema(map[string]any{}); err != nil {
		t.Fatalf("expected empty schema to validate, got %v", err)
	}
}

func TestValidatePayloadReportsInstanceLocations(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"cover":  map[string]any{"type": "string"},
			"rating": map[string]any{"type": "number"},
		},
		"required": []any{"cover"},
	}
	payload := map[string]any{"rating": "high"}

	err := ValidatePayload(schema, payload)
	if err == nil {
		t.Fatal("expected validation failure")
	}
	if !errors.Is(err, ErrSchemaValidation) {
		t.Fatalf("expected ErrSchemaValidation in the chain, got %v", err)
	}

	var payloadErr *PayloadValidationError
	if !errors.As(err, &payloadErr) {
		t.Fatalf("expected PayloadValidationError, got %T", err)
	}

	issues := Issues(err)
	if len(issues) < 2 {
		t.Fatalf("expected issues for the missing field and the wrong type, got %v", issues)
	}
	foundRating := false
	for _, issue := range issues {
		if issue.Location == "/rating" {
			foundRating = true
		}
	}
	if !foundRating {
		t.Fatalf("expected an issue located at /rating, got %v", issues)
	}
}

func TestValidatePartialPayloadSkipsRequired(t *testing.T) {
	schema := map[string]any{
		"fields": []any{
			map[string]any{"name": "cover", "type": "string", "required": true},
		},
	}

	if err := ValidatePartialPayload(schema, map[string]any{}); err != nil {
		t.Fatalf("expected partial validation to pass, got %v", err)
	}
	if err := ValidatePayload(schema, map[string]any{}); err == nil {
		t.Fatal("expected full validation to fail on the missing required field")
	}
}

func TestValidatePayloadAcceptsYAMLDecodedValues(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"rating":  map[string]any{"type": "number"},
			"updated": map[string]any{"type": "string"},
		},
	}
	payload := map[string]any{
		"rating":  5,
		"updated": time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
	}

	if err := ValidatePayload(schema, payload); err != nil {
		t.Fatalf("expected YAML-origin values to validate after re-encoding, got %v", err)
	}
}

func TestPayloadValidationErrorMessage(t *testing.T) {
	err := &PayloadValidationError{Issues: []ValidationIssue{
		{Location: "/rating", Message: "expected number"},
		{Location: "", Message: "missing properties: 'cover'"},
	}}
	got := err.Error()
	if got != "#/rating: expected number; #: missing properties: 'cover'" {
		t.Fatalf("unexpected message: %q", got)
	}

	cause := errors.New("boom")
	fallback := &PayloadValidationError{Cause: cause}
	if fallback.Error() != "boom" {
		t.Fatalf("expected cause fallback, got %q", fallback.Error())
	}
}

func TestIssuesFallsBackToPlainError(t *testing.T) {
	issues := Issues(errors.New("walk failed"))
	if len(issues) != 1 || issues[0].Message != "walk failed" {
		t.Fatalf("unexpected issues: %v", issues)
	}
	if Issues(nil) != nil {
		t.Fatal("expected nil issues for nil error")
	}
}
