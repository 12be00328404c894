package generator

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	gotheme "github.com/goliatone/go-theme"
	"github.com/google/uuid"

	"github.com/goliatone/go-blog/posts"
)

// TemplateContext is the data contract handed to TemplateRenderer
// implementations for every generated page.
type TemplateContext struct {
	Site    SiteMetadata
	Page    PageContext
	Post    *PostRenderingContext
	Posts   []*PostData
	Build   BuildMetadata
	Theme   ThemeContext
	Helpers TemplateHelpers
}

// SiteMetadata exposes site-wide information to templates.
type SiteMetadata struct {
	BaseURL     string
	Title       string
	Description string
	Author      string
	Language    string
	Metadata    map[string]any
}

// PageContext identifies the page being rendered.
type PageContext struct {
	Kind  ArtifactKind
	Title string
	Route string
}

// PostRenderingContext carries one post for a post page render.
type PostRenderingContext struct {
	Post      *posts.Post
	HTML      template.HTML
	Route     string
	Permalink string
	Metadata  DependencyMetadata
}

// BuildMetadata surfaces high level build information to templates.
type BuildMetadata struct {
	GeneratedAt time.Time
	Options     BuildOptions
}

// ThemeContext surfaces go-theme selection data to templates.
type ThemeContext struct {
	Name      string
	Variant   string
	Tokens    map[string]string
	CSSVars   map[string]string
	Partials  map[string]string
	AssetURL  func(string) string
	Template  func(string, string) string
	Selection *gotheme.Selection
}

// RootCSS renders the selection's CSS variables as a :root block for
// inline style tags. html/template's CSS sanitizer rejects custom
// property names, so the block is assembled here and marked safe.
func (t ThemeContext) RootCSS() template.CSS {
	if len(t.CSSVars) == 0 {
		return ""
	}
	names := make([]string, 0, len(t.CSSVars))
	for name := range t.CSSVars {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString(":root{")
	for _, name := range names {
		sb.WriteString(name)
		sb.WriteString(":")
		sb.WriteString(t.CSSVars[name])
		sb.WriteString(";")
	}
	sb.WriteString("}")
	return template.CSS(sb.String())
}

func buildThemeContext(selection *gotheme.Selection, cfg ThemingConfig) ThemeContext {
	empty := ThemeContext{
		Tokens:   map[string]string{},
		CSSVars:  map[string]string{},
		Partials: map[string]string{},
		AssetURL: func(string) string { return "" },
		Template: func(_ string, fallback string) string { return fallback },
	}
	if selection == nil {
		return empty
	}

	return ThemeContext{
		Name:      selection.Theme,
		Variant:   selection.Variant,
		Tokens:    selection.Tokens(),
		CSSVars:   selection.CSSVariables(cfg.CSSVariablePrefix),
		Partials:  selection.Partials(cfg.PartialFallbacks),
		AssetURL:  func(key string) string { url, _ := selection.Asset(key); return url },
		Template:  selection.Template,
		Selection: selection,
	}
}

// TemplateHelpers exposes convenience helpers for template authors.
type TemplateHelpers struct {
	baseURL string
}

func newTemplateHelpers(baseURL string) TemplateHelpers {
	return TemplateHelpers{baseURL: strings.TrimRight(baseURL, "/")}
}

// BaseURL returns the configured site base URL.
func (h TemplateHelpers) BaseURL() string {
	return h.baseURL
}

// WithBaseURL prefixes the provided path with the configured base URL.
func (h TemplateHelpers) WithBaseURL(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return h.baseURL
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if h.baseURL == "" {
		return path
	}
	return h.baseURL + path
}

// FormatDate renders a timestamp the way post bylines show it.
func (h TemplateHelpers) FormatDate(t time.Time) string {
	return t.Format("January 2, 2006")
}

// ISODate renders a timestamp for datetime attributes.
func (h TemplateHelpers) ISODate(t time.Time) string {
	return t.Format(time.RFC3339)
}

// RenderedPage captures one rendered artifact awaiting persistence.
type RenderedPage struct {
	PostID   uuid.UUID
	Kind     ArtifactKind
	Key      string
	Route    string
	Output   string
	Template string
	HTML     string
	Metadata DependencyMetadata
	Duration time.Duration
	Checksum string
}

// RenderDiagnostic records rendering timing and errors per artifact.
type RenderDiagnostic struct {
	PostID   uuid.UUID
	Kind     ArtifactKind
	Route    string
	Template string
	Duration time.Duration
	Skipped  bool
	Err      error
}

type renderOutcome struct {
	page       RenderedPage
	diagnostic RenderDiagnostic
	err        error
	skipped    bool
}

const (
	templatePost  = "post"
	templateIndex = "index"
)

// builtinRenderer renders the default site with html/template when no
// external TemplateRenderer is injected.
type builtinRenderer struct {
	mu        sync.Mutex
	funcs     template.FuncMap
	templates map[string]*template.Template
}

func newBuiltinRenderer() *builtinRenderer {
	r := &builtinRenderer{funcs: template.FuncMap{}}
	r.parse()
	return r
}

func (r *builtinRenderer) parse() {
	r.templates = map[string]*template.Template{
		templatePost:  template.Must(template.New(templatePost).Funcs(r.funcs).Parse(builtinPostTemplate)),
		templateIndex: template.Must(template.New(templateIndex).Funcs(r.funcs).Parse(builtinIndexTemplate)),
	}
}

func (r *builtinRenderer) Render(name string, data any, out ...io.Writer) (string, error) {
	return r.RenderTemplate(name, data, out...)
}

func (r *builtinRenderer) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	r.mu.Lock()
	tpl, ok := r.templates[strings.TrimSpace(name)]
	r.mu.Unlock()
	if !ok {
		// Theme templates resolve to file paths the built-in set does not
		// carry; fall back on the page kind they shadow.
		if strings.Contains(name, templatePost) {
			tpl = r.templates[templatePost]
		} else {
			tpl = r.templates[templateIndex]
		}
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", err
	}
	for _, w := range out {
		if w == nil {
			continue
		}
		if _, err := w.Write(buf.Bytes()); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

func (r *builtinRenderer) RenderString(templateContent string, data any, out ...io.Writer) (string, error) {
	r.mu.Lock()
	funcs := r.funcs
	r.mu.Unlock()
	tpl, err := template.New("inline").Funcs(funcs).Parse(templateContent)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", err
	}
	for _, w := range out {
		if w == nil {
			continue
		}
		if _, err := w.Write(buf.Bytes()); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

func (r *builtinRenderer) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	name = strings.TrimSpace(name)
	if name == "" || fn == nil {
		return fmt.Errorf("generator: filter requires a name and function")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[name] = func(input any, param any) (any, error) {
		return fn(input, param)
	}
	r.parse()
	return nil
}

func (r *builtinRenderer) GlobalContext(data any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs["globals"] = func() any { return data }
	r.parse()
	return nil
}

const builtinStyle = `body{max-width:46rem;margin:2rem auto;padding:0 1rem;font-family:Georgia,serif;line-height:1.6;color:var(--blog-fg,#222);background:var(--blog-bg,#fff)}
a{color:var(--blog-link,#0064c1)}
header.site{margin-bottom:2rem;border-bottom:1px solid #ddd;padding-bottom:1rem}
time{color:#666}
ul.posts{list-style:none;padding:0}
ul.posts li{margin:0.6rem 0}
ul.tags{list-style:none;padding:0;display:inline}
ul.tags li{display:inline;margin-right:0.5rem}
pre{background:#f6f6f6;padding:1rem;overflow-x:auto}`

const builtinPostTemplate = `<!DOCTYPE html>
<html lang="{{with .Site.Language}}{{.}}{{else}}en{{end}}">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Post.Post.Title}} | {{.Site.Title}}</title>
{{- with .Site.Description}}
<meta name="description" content="{{.}}">
{{- end}}
<link rel="alternate" type="application/rss+xml" title="{{.Site.Title}}" href="{{.Helpers.WithBaseURL "/feed.xml"}}">
<style>` + builtinStyle + `
{{.Theme.RootCSS}}</style>
</head>
<body>
<header class="site"><a href="{{.Helpers.WithBaseURL "/"}}">{{.Site.Title}}</a></header>
<main>
<article>
<h1>{{.Post.Post.Title}}</h1>
<p><time datetime="{{.Helpers.ISODate .Post.Post.Date}}">{{.Helpers.FormatDate .Post.Post.Date}}</time>{{with .Post.Post.Author}} &middot; {{.}}{{end}}</p>
{{if .Post.HTML}}{{.Post.HTML}}{{else}}<pre>{{.Post.Post.Body}}</pre>{{end}}
{{- if .Post.Post.Tags}}
<p>Tagged: <ul class="tags">{{range .Post.Post.Tags}}<li><a href="{{$.Helpers.WithBaseURL (printf "/tags/%s/" .)}}">{{.}}</a></li>{{end}}</ul></p>
{{- end}}
</article>
</main>
</body>
</html>
`

const builtinIndexTemplate = `<!DOCTYPE html>
<html lang="{{with .Site.Language}}{{.}}{{else}}en{{end}}">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Page.Title}}</title>
{{- with .Site.Description}}
<meta name="description" content="{{.}}">
{{- end}}
<link rel="alternate" type="application/rss+xml" title="{{.Site.Title}}" href="{{.Helpers.WithBaseURL "/feed.xml"}}">
<style>` + builtinStyle + `
{{.Theme.RootCSS}}</style>
</head>
<body>
<header class="site"><a href="{{.Helpers.WithBaseURL "/"}}">{{.Site.Title}}</a></header>
<main>
<h1>{{.Page.Title}}</h1>
<ul class="posts">
{{- range .Posts}}
<li><time datetime="{{$.Helpers.ISODate .Post.Date}}">{{.Post.Date.Format "2006-01-02"}}</time> <a href="{{.Permalink}}">{{.Post.Title}}</a></li>
{{- else}}
<li>Nothing published yet.</li>
{{- end}}
</ul>
</main>
</body>
</html>
`
