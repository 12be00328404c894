package schema

import (
	"context"
	"fmt"

	crud "github.com/goliatone/go-crud"
)

// Registry is a destination for OpenAPI schema documents.
type Registry interface {
	Register(ctx context.Context, name string, doc map[string]any) error
}

// CrudRegistry publishes documents into the process-wide go-crud schema
// registry, where HTTP consumers look them up by resource name.
type CrudRegistry struct{}

// Register stores the document under the resource name and its naive plural.
func (CrudRegistry) Register(_ context.Context, name string, doc map[string]any) error {
	if ok := crud.RegisterSchemaDocument(name, name+"s", doc); !ok {
		return fmt.Errorf("schema: crud registry rejected %q", name)
	}
	return nil
}

// RegisterProjections registers each projection under its resource name.
func RegisterProjections(ctx context.Context, registry Registry, projections []*Projection) error {
	if registry == nil || len(projections) == 0 {
		return nil
	}
	for _, projection := range projections {
		if projection == nil || projection.Document == nil {
			continue
		}
		if err := registry.Register(ctx, projection.Name, projection.Document.AsMap()); err != nil {
			return err
		}
	}
	return nil
}

// RegisterPostSchemas projects the post API and registers it with the crud
// registry. Callers wire this once at startup.
func RegisterPostSchemas(ctx context.Context, siteTitle string, apiVersion string) error {
	projection, err := PostProjection(siteTitle, apiVersion)
	if err != nil {
		return err
	}
	return RegisterProjections(ctx, CrudRegistry{}, []*Projection{projection})
}

// Lookup returns a previously registered document by resource name.
func Lookup(name string) (map[string]any, bool) {
	entry, ok := crud.GetSchema(name)
	if !ok {
		return nil, false
	}
	return entry.Document, true
}
