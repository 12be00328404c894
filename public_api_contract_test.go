package blog_test

import (
	"reflect"
	"strings"
	"testing"

	blog "github.com/goliatone/go-blog"
	"github.com/goliatone/go-blog/domain"
	"github.com/goliatone/go-blog/posts"
)

var _ func(*blog.Module) posts.Service = (*blog.Module).Posts
var _ posts.Service = (blog.PostService)(nil)

func TestPublicContractsDoNotReferenceInternalPackages(t *testing.T) {
	t.Parallel()

	types := map[string]reflect.Type{
		"posts.Service":                   reflect.TypeOf((*posts.Service)(nil)).Elem(),
		"posts.Post":                      reflect.TypeOf(posts.Post{}),
		"posts.PostVersion":               reflect.TypeOf(posts.PostVersion{}),
		"posts.PostVersionSnapshot":       reflect.TypeOf(posts.PostVersionSnapshot{}),
		"posts.CreatePostRequest":         reflect.TypeOf(posts.CreatePostRequest{}),
		"posts.UpdatePostRequest":         reflect.TypeOf(posts.UpdatePostRequest{}),
		"posts.ListOptions":               reflect.TypeOf(posts.ListOptions{}),
		"posts.PublishPostRequest":        reflect.TypeOf(posts.PublishPostRequest{}),
		"posts.SchedulePostRequest":       reflect.TypeOf(posts.SchedulePostRequest{}),
		"posts.ArchivePostRequest":        reflect.TypeOf(posts.ArchivePostRequest{}),
		"posts.CreatePostDraftRequest":    reflect.TypeOf(posts.CreatePostDraftRequest{}),
		"posts.PublishPostDraftRequest":   reflect.TypeOf(posts.PublishPostDraftRequest{}),
		"posts.RestorePostVersionRequest": reflect.TypeOf(posts.RestorePostVersionRequest{}),
		"posts.NotFoundError":             reflect.TypeOf(posts.NotFoundError{}),

		"domain.Status": reflect.TypeOf(domain.StatusDraft),
	}

	for name, typ := range types {
		assertNoInternalTypeRefs(t, name, typ, map[reflect.Type]bool{})
	}

	method, ok := reflect.TypeOf((*blog.Module)(nil)).MethodByName("Posts")
	if !ok {
		t.Fatal("expected blog.Module.Posts method")
	}
	if method.Type.NumOut() != 1 {
		t.Fatalf("expected blog.Module.Posts to return one value, got %d", method.Type.NumOut())
	}
	assertNoInternalTypeRefs(t, "blog.Module.Posts", method.Type.Out(0), map[reflect.Type]bool{})
}

func assertNoInternalTypeRefs(t *testing.T, name string, typ reflect.Type, seen map[reflect.Type]bool) {
	t.Helper()

	if typ == nil {
		return
	}
	if seen[typ] {
		return
	}
	seen[typ] = true

	if pkgPath := typ.PkgPath(); strings.Contains(pkgPath, "/internal/") && !isAllowedInternalAliasType(typ) {
		t.Fatalf("%s references internal package type %s (%s)", name, typ.String(), pkgPath)
	}

	switch typ.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Array, reflect.Chan:
		assertNoInternalTypeRefs(t, name, typ.Elem(), seen)
	case reflect.Map:
		assertNoInternalTypeRefs(t, name, typ.Key(), seen)
		assertNoInternalTypeRefs(t, name, typ.Elem(), seen)
	case reflect.Struct:
		for i := 0; i < typ.NumField(); i++ {
			assertNoInternalTypeRefs(t, name+"."+typ.Field(i).Name, typ.Field(i).Type, seen)
		}
	case reflect.Interface:
		for i := 0; i < typ.NumMethod(); i++ {
			method := typ.Method(i)
			assertNoInternalTypeRefs(t, name+"."+method.Name, method.Type, seen)
		}
	case reflect.Func:
		for i := 0; i < typ.NumIn(); i++ {
			assertNoInternalTypeRefs(t, name, typ.In(i), seen)
		}
		for i := 0; i < typ.NumOut(); i++ {
			assertNoInternalTypeRefs(t, name, typ.Out(i), seen)
		}
	}
}

// The status enum is the one internal type the public packages re-export by
// alias; everything else must stay behind the contract packages.
func isAllowedInternalAliasType(typ reflect.Type) bool {
	return typ.PkgPath() == "github.com/goliatone/go-blog/internal/domain" && typ.Name() == "Status"
}
