package storage

import "testing"

func TestConfigSchemaParses(t *testing.T) {
	schema, err := ConfigSchema()
	if err != nil {
		t.Fatalf("parse config schema: %v", err)
	}

	required, ok := schema["required"].([]any)
	if !ok || len(required) != 1 || required[0] != "dsn" {
		t.Fatalf("expected dsn to be the only required field, got %v", schema["required"])
	}

	props, ok := schema["properties"].(map[string]any)
	if !ok {
		t.Fatalf("expected properties map, got %T", schema["properties"])
	}
	for _, name := range []string{"driver", "dsn"} {
		if _, ok := props[name]; !ok {
			t.Fatalf("schema missing property %q", name)
		}
	}
}
