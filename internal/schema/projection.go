package schema

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-blog/internal/openapi"
	"github.com/goliatone/go-slug"
)

// RelatedSchema names an additional component embedded in a projection, such
// as the snapshot shape a version entry refers to.
type RelatedSchema struct {
	Name   string
	Schema map[string]any
}

// Projection is an OpenAPI rendering of one resource, ready for a registry.
type Projection struct {
	Name     string
	Document *openapi.Document
}

// ProjectToOpenAPI wraps a resource schema and its related components in a
// minimal OpenAPI document.
func ProjectToOpenAPI(name string, title string, apiVersion string, schema map[string]any, related []RelatedSchema) (*Projection, error) {
	resource := strings.TrimSpace(name)
	if resource == "" {
		return nil, fmt.Errorf("schema: resource name required for projection")
	}
	heading := strings.TrimSpace(title)
	if heading == "" {
		heading = resource
	}
	doc := openapi.NewDocument(heading, strings.TrimPrefix(strings.TrimSpace(apiVersion), "v"))
	doc.AddSchema(componentName(resource), cloneMap(schema))
	for _, extra := range related {
		if extra.Schema == nil || strings.TrimSpace(extra.Name) == "" {
			continue
		}
		doc.AddSchema(componentName(extra.Name), cloneMap(extra.Schema))
	}
	doc.SetExtension("x-blog", map[string]any{
		"resource": resource,
	})
	return &Projection{
		Name:     resource,
		Document: doc,
	}, nil
}

// PostProjection builds the document for the post API: the full post model,
// its version history components, the listing summary, and the preview
// endpoint that serves it.
func PostProjection(siteTitle string, apiVersion string) (*Projection, error) {
	title := strings.TrimSpace(siteTitle)
	if title == "" {
		title = "Blog"
	}
	projection, err := ProjectToOpenAPI("post", title+" content API", apiVersion, PostSchema(), []RelatedSchema{
		{Name: "post version", Schema: VersionSchema()},
		{Name: "post version snapshot", Schema: SnapshotSchema()},
		{Name: "post summary", Schema: SummarySchema()},
	})
	if err != nil {
		return nil, err
	}
	projection.Document.SetPath("/api/posts", postListPath())
	return projection, nil
}

// postListPath documents the preview server's listing endpoint. Drafts only
// appear when the session is authorized for them.
func postListPath() map[string]any {
	return map[string]any{
		"get": map[string]any{
			"summary": "List posts, newest first",
			"parameters": []any{
				map[string]any{
					"name":        "drafts",
					"in":          "query",
					"description": "Include drafts and scheduled posts",
					"schema":      map[string]any{"type": "boolean"},
				},
			},
			"responses": map[string]any{
				"200": map[string]any{
					"description": "Matching posts",
					"content": map[string]any{
						"application/json": map[string]any{
							"schema": map[string]any{
								"type":     "object",
								"required": []string{"posts", "count"},
								"properties": map[string]any{
									"posts": map[string]any{
										"type":  "array",
										"items": map[string]any{"$ref": componentRef("post summary")},
									},
									"count": map[string]any{"type": "integer"},
								},
							},
						},
					},
				},
				"401": map[string]any{
					"description": "Drafts requested without the preview password",
				},
			},
		},
	}
}

func componentName(value string) string {
	normalized, err := slug.Normalize(value)
	if err != nil || normalized == "" {
		normalized = value
	}
	return strings.ReplaceAll(normalized, "-", "_")
}

func componentRef(value string) string {
	return "#/components/schemas/" + componentName(value)
}
