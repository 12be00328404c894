package generator

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

type sitemapEntry struct {
	Location string
	LastMod  time.Time
}

// buildSitemap lists every page the site serves: home, each post, each
// tag index, and each archive year. It works from the build context
// rather than the rendered pages so entries survive incremental skips.
func buildSitemap(buildCtx *BuildContext) string {
	if buildCtx == nil {
		return ""
	}
	base := baseURLWithFallback(buildCtx.Site.BaseURL)
	fallback := buildCtx.GeneratedAt

	entries := make([]sitemapEntry, 0, 1+len(buildCtx.Posts)+len(buildCtx.Tags)+len(buildCtx.Years))
	seen := map[string]struct{}{}
	add := func(route string, lastMod time.Time) {
		route = strings.TrimSpace(route)
		if route == "" {
			route = "/"
		}
		if !strings.HasPrefix(route, "/") {
			route = "/" + route
		}
		location := base + route
		if _, ok := seen[location]; ok {
			return
		}
		seen[location] = struct{}{}
		if lastMod.IsZero() {
			lastMod = fallback
		}
		entries = append(entries, sitemapEntry{Location: location, LastMod: lastMod})
	}

	add("/", newestModification(buildCtx.Posts, fallback))
	for _, data := range buildCtx.Posts {
		add(data.Route, data.Metadata.LastModified)
	}
	for _, group := range buildCtx.Tags {
		add(group.Route, newestModification(group.Posts, fallback))
	}
	for _, group := range buildCtx.Years {
		add(group.Route, newestModification(group.Posts, fallback))
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Location < entries[j].Location
	})

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">` + "\n")
	for _, entry := range entries {
		builder.WriteString("  <url>\n")
		builder.WriteString(fmt.Sprintf("    <loc>%s</loc>\n", escapeXML(entry.Location)))
		if !entry.LastMod.IsZero() {
			builder.WriteString(fmt.Sprintf("    <lastmod>%s</lastmod>\n", entry.LastMod.UTC().Format(time.RFC3339)))
		}
		builder.WriteString("  </url>\n")
	}
	builder.WriteString(`</urlset>` + "\n")
	return builder.String()
}

func newestModification(data []*PostData, fallback time.Time) time.Time {
	var latest time.Time
	for _, entry := range data {
		if entry.Metadata.LastModified.After(latest) {
			latest = entry.Metadata.LastModified
		}
	}
	if latest.IsZero() {
		return fallback
	}
	return latest
}

func buildRobots(baseURL string, includeSitemap bool) string {
	var builder strings.Builder
	builder.WriteString("User-agent: *\n")
	builder.WriteString("Allow: /\n")
	if includeSitemap {
		builder.WriteString("\n")
		builder.WriteString(fmt.Sprintf("Sitemap: %s/sitemap.xml\n", baseURLWithFallback(baseURL)))
	}
	return builder.String()
}
