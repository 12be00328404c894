package schema

import (
	"context"
	"testing"

	crud "github.com/goliatone/go-crud"
)

func TestPostSchemaCoversRequiredColumns(t *testing.T) {
	schema := PostSchema()

	properties, ok := schema["properties"].(map[string]any)
	if !ok {
		t.Fatalf("expected properties map, got %#v", schema["properties"])
	}
	required, ok := schema["required"].([]string)
	if !ok {
		t.Fatalf("expected required list, got %#v", schema["required"])
	}
	for _, name := range required {
		if _, ok := properties[name]; !ok {
			t.Fatalf("required field %q has no property definition", name)
		}
	}

	status, ok := properties["status"].(map[string]any)
	if !ok {
		t.Fatalf("expected status property")
	}
	enum, ok := status["enum"].([]any)
	if !ok || len(enum) != 4 {
		t.Fatalf("expected the four lifecycle statuses, got %#v", status["enum"])
	}
}

func TestProjectToOpenAPIRequiresName(t *testing.T) {
	if _, err := ProjectToOpenAPI("   ", "Anything", "1.0.0", map[string]any{"type": "object"}, nil); err == nil {
		t.Fatalf("expected an error for a blank resource name")
	}
}

func TestProjectToOpenAPINormalizesComponentNames(t *testing.T) {
	projection, err := ProjectToOpenAPI("field note", "", "v2.1.0", map[string]any{"type": "object"}, []RelatedSchema{
		{Name: "Field Note Attachment", Schema: map[string]any{"type": "object"}},
		{Name: "   ", Schema: map[string]any{"type": "object"}},
		{Name: "skipped", Schema: nil},
	})
	if err != nil {
		t.Fatalf("project: %v", err)
	}

	doc := projection.Document.AsMap()
	if doc["openapi"] != "3.0.3" {
		t.Fatalf("expected an OpenAPI 3.0.3 document, got %v", doc["openapi"])
	}
	info, ok := doc["info"].(map[string]any)
	if !ok || info["title"] != "field note" || info["version"] != "2.1.0" {
		t.Fatalf("unexpected info block %#v", doc["info"])
	}

	components, ok := doc["components"].(map[string]any)
	if !ok {
		t.Fatalf("expected components in document")
	}
	schemas, ok := components["schemas"].(map[string]any)
	if !ok {
		t.Fatalf("expected schemas in document")
	}
	if _, ok := schemas["field_note"]; !ok {
		t.Fatalf("expected the resource component, got %#v", schemas)
	}
	if _, ok := schemas["field_note_attachment"]; !ok {
		t.Fatalf("expected the related component, got %#v", schemas)
	}
	if len(schemas) != 2 {
		t.Fatalf("blank and nil related entries must be skipped, got %#v", schemas)
	}

	meta, ok := doc["x-blog"].(map[string]any)
	if !ok || meta["resource"] != "field note" {
		t.Fatalf("expected x-blog metadata, got %#v", doc["x-blog"])
	}
}

func TestPostProjectionDocument(t *testing.T) {
	projection, err := PostProjection("My Site", "v1.0.0")
	if err != nil {
		t.Fatalf("project: %v", err)
	}
	if projection.Name != "post" {
		t.Fatalf("expected the post resource, got %q", projection.Name)
	}

	doc := projection.Document.AsMap()
	info := doc["info"].(map[string]any)
	if info["title"] != "My Site content API" || info["version"] != "1.0.0" {
		t.Fatalf("unexpected info block %#v", info)
	}

	schemas := doc["components"].(map[string]any)["schemas"].(map[string]any)
	for _, name := range []string{"post", "post_version", "post_version_snapshot", "post_summary"} {
		if _, ok := schemas[name]; !ok {
			t.Fatalf("expected %s component, got %#v", name, schemas)
		}
	}

	paths, ok := doc["paths"].(map[string]any)
	if !ok {
		t.Fatalf("expected paths in document")
	}
	listing, ok := paths["/api/posts"].(map[string]any)
	if !ok {
		t.Fatalf("expected the listing path documented, got %#v", paths)
	}
	if _, ok := listing["get"]; !ok {
		t.Fatalf("expected a get operation on the listing path")
	}
}

func TestRegisterPostSchemas(t *testing.T) {
	if err := RegisterPostSchemas(context.Background(), "My Site", "v1.0.0"); err != nil {
		t.Fatalf("register: %v", err)
	}

	entry, ok := crud.GetSchema("post")
	if !ok {
		t.Fatalf("expected the post schema registered")
	}
	if entry.Document["openapi"] == nil {
		t.Fatalf("expected openapi document in registry")
	}
	components, ok := entry.Document["components"].(map[string]any)
	if !ok {
		t.Fatalf("expected components in document")
	}
	schemas, ok := components["schemas"].(map[string]any)
	if !ok {
		t.Fatalf("expected schemas in document")
	}
	if _, ok := schemas[componentName("post")]; !ok {
		t.Fatalf("expected post schema component")
	}
	if meta, ok := entry.Document["x-blog"].(map[string]any); !ok || meta["resource"] != "post" {
		t.Fatalf("expected x-blog metadata for post")
	}
}

func TestRegisterProjectionsSkipsEmptyInput(t *testing.T) {
	if err := RegisterProjections(context.Background(), nil, nil); err != nil {
		t.Fatalf("expected nil registry to be a no-op, got %v", err)
	}
	if err := RegisterProjections(context.Background(), CrudRegistry{}, []*Projection{nil, {Name: "hollow"}}); err != nil {
		t.Fatalf("expected nil projections to be skipped, got %v", err)
	}
}
