package preview

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/goliatone/go-blog/domain"
	"github.com/goliatone/go-blog/posts"
)

type postView struct {
	Slug   string
	Title  string
	Date   time.Time
	Status domain.Status
	Draft  bool
}

type listPageData struct {
	Title  string
	Posts  []postView
	Reload template.HTML
}

type postPageData struct {
	postView
	HTML   template.HTML
	Body   string
	Reload template.HTML
}

// handleIndex lists every post, drafts wearing their status badge. When a
// password gate is configured, unauthenticated visitors see the published
// subset instead of a challenge.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	opts := posts.ListOptions{}
	if !s.draftsAllowed(r) {
		opts.PublishedOnly = true
	}

	items, err := s.store.List(r.Context(), opts)
	if err != nil {
		s.renderError(w, err)
		return
	}
	s.renderPage(w, "index", listPageData{
		Title:  "All posts",
		Posts:  viewsOf(items),
		Reload: s.reloadSnippet(),
	})
}

func (s *Server) handleDrafts(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.List(r.Context(), posts.ListOptions{})
	if err != nil {
		s.renderError(w, err)
		return
	}

	var pending []*posts.Post
	for _, item := range items {
		switch viewStatus(item) {
		case domain.StatusDraft, domain.StatusScheduled:
			pending = append(pending, item)
		}
	}
	s.renderPage(w, "index", listPageData{
		Title:  "Drafts",
		Posts:  viewsOf(pending),
		Reload: s.reloadSnippet(),
	})
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]

	post, err := s.store.GetBySlug(r.Context(), slug)
	if err != nil {
		var notFound *posts.NotFoundError
		if errors.As(err, &notFound) {
			http.NotFound(w, r)
			return
		}
		s.renderError(w, err)
		return
	}

	if viewStatus(post) != domain.StatusPublished && !s.draftsAllowed(r) {
		unauthorized(w)
		return
	}

	s.renderPage(w, "post", postPageData{
		postView: viewOf(post),
		HTML:     template.HTML(post.HTML),
		Body:     post.Body,
		Reload:   s.reloadSnippet(),
	})
}

func (s *Server) renderPage(w http.ResponseWriter, name string, data any) {
	tmpl, ok := pageTemplates[name]
	if !ok {
		s.renderError(w, errors.New("preview: unknown template "+name))
		return
	}

	// Render into a buffer so a template fault cannot emit half a page.
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		s.renderError(w, err)
		return
	}
	w.Header().Set(headerContentType, "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Server) renderError(w http.ResponseWriter, err error) {
	s.logger.Error("preview: render failed", "error", err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func (s *Server) reloadSnippet() template.HTML {
	if !s.cfg.LiveReload {
		return ""
	}
	return template.HTML(reloadScript)
}

func viewsOf(items []*posts.Post) []postView {
	views := make([]postView, 0, len(items))
	for _, item := range items {
		views = append(views, viewOf(item))
	}
	return views
}

func viewOf(post *posts.Post) postView {
	status := viewStatus(post)
	return postView{
		Slug:   post.Slug,
		Title:  post.Title,
		Date:   post.Date,
		Status: status,
		Draft:  status != domain.StatusPublished,
	}
}

func viewStatus(post *posts.Post) domain.Status {
	if post.EffectiveStatus != "" {
		return post.EffectiveStatus
	}
	return post.Status
}

var pageTemplates = map[string]*template.Template{
	"index": template.Must(template.New("index").Parse(indexPage)),
	"post":  template.Must(template.New("post").Parse(postPage)),
}

const pageStyle = `<style>
body { font: 16px/1.6 system-ui, sans-serif; max-width: 42rem; margin: 2rem auto; padding: 0 1rem; color: #222; }
nav a { margin-right: .75rem; }
ul.posts { list-style: none; padding: 0; }
ul.posts li { padding: .3rem 0; }
time { color: #777; font-size: .85em; margin-left: .5rem; }
.badge { background: #b23; color: #fff; border-radius: 3px; padding: 0 .4em; font-size: .75em; text-transform: uppercase; }
article pre { background: #f5f5f5; padding: 1rem; overflow-x: auto; }
</style>`

const indexPage = `<!doctype html>
<html>
<head><meta charset="utf-8"><title>{{.Title}} · preview</title>` + pageStyle + `</head>
<body>
<header><h1>{{.Title}}</h1><nav><a href="/">all posts</a><a href="/drafts">drafts</a></nav></header>
<ul class="posts">
{{range .Posts}}<li><a href="/posts/{{.Slug}}">{{.Title}}</a><time>{{.Date.Format "2006-01-02"}}</time>{{if .Draft}} <span class="badge">{{.Status}}</span>{{end}}</li>
{{else}}<li>nothing here yet</li>
{{end}}</ul>
{{.Reload}}
</body>
</html>`

const postPage = `<!doctype html>
<html>
<head><meta charset="utf-8"><title>{{.Title}} · preview</title>` + pageStyle + `</head>
<body>
<nav><a href="/">all posts</a><a href="/drafts">drafts</a></nav>
<article>
<h1>{{.Title}}</h1>
<p><time>{{.Date.Format "January 2, 2006"}}</time>{{if .Draft}} <span class="badge">{{.Status}}</span>{{end}}</p>
{{if .HTML}}{{.HTML}}{{else}}<pre>{{.Body}}</pre>{{end}}
</article>
{{.Reload}}
</body>
</html>`
