package generator

import (
	"path"
	"strconv"
	"strings"

	"github.com/goliatone/go-blog/posts"
	urlkit "github.com/goliatone/go-urlkit"
)

// siteRoutes builds absolute URLs for every page kind through a go-urlkit
// route group, so templates, feeds, and the sitemap agree on permalinks.
type siteRoutes struct {
	group *urlkit.Group
}

func newSiteRoutes(baseURL string) *siteRoutes {
	manager := urlkit.NewRouteManager(&urlkit.Config{
		Groups: []urlkit.GroupConfig{
			{
				Name:    "site",
				BaseURL: baseURLWithFallback(baseURL),
				Paths: map[string]string{
					"home":    "/",
					"post":    "/posts/:slug/",
					"tag":     "/tags/:tag/",
					"archive": "/archive/:year/",
					"rss":     "/feed.xml",
					"atom":    "/atom.xml",
					"sitemap": "/sitemap.xml",
				},
			},
		},
	})
	return &siteRoutes{group: manager.Group("site")}
}

func (r *siteRoutes) Home() (string, error) {
	return r.group.Builder("home").Build()
}

func (r *siteRoutes) Post(slug string) (string, error) {
	return r.group.Builder("post").WithParam("slug", slug).Build()
}

func (r *siteRoutes) Tag(tag string) (string, error) {
	return r.group.Builder("tag").WithParam("tag", tag).Build()
}

func (r *siteRoutes) Archive(year int) (string, error) {
	return r.group.Builder("archive").WithParam("year", strconv.Itoa(year)).Build()
}

func (r *siteRoutes) RSS() (string, error) {
	return r.group.Builder("rss").Build()
}

func (r *siteRoutes) Atom() (string, error) {
	return r.group.Builder("atom").Build()
}

func baseURLWithFallback(base string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(base), "/")
	if trimmed == "" {
		return "http://localhost"
	}
	return trimmed
}

// Site-relative routes and writer-relative output paths are derived from
// the slug directly; only absolute URLs go through urlkit.

func postRoute(slug string) string {
	return "/posts/" + slug + "/"
}

func postOutputPath(slug string) string {
	return path.Join("posts", slug, "index.html")
}

func tagRoute(tagSlug string) string {
	return "/tags/" + tagSlug + "/"
}

func tagOutputPath(tagSlug string) string {
	return path.Join("tags", tagSlug, "index.html")
}

func archiveRoute(year int) string {
	return "/archive/" + strconv.Itoa(year) + "/"
}

func archiveOutputPath(year int) string {
	return path.Join("archive", strconv.Itoa(year), "index.html")
}

// tagSlug normalizes a free-form tag into a URL segment.
func tagSlug(tag string) string {
	normalized, err := posts.NormalizeSlug(tag)
	if err != nil || normalized == "" {
		fields := strings.Fields(strings.ToLower(strings.TrimSpace(tag)))
		return strings.Join(fields, "-")
	}
	return normalized
}

func absoluteURL(base, route string) string {
	targetBase := baseURLWithFallback(base)
	normalized := strings.TrimSpace(route)
	if normalized == "" {
		return targetBase
	}
	if !strings.HasPrefix(normalized, "/") {
		normalized = "/" + normalized
	}
	return targetBase + normalized
}
