package generator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	gotheme "github.com/goliatone/go-theme"
	"github.com/google/uuid"

	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/pkg/interfaces"
	"github.com/goliatone/go-blog/posts"
)

var (
	// ErrServiceDisabled indicates the generator feature is disabled.
	ErrServiceDisabled  = errors.New("generator: service disabled")
	errPostIDRequired   = errors.New("generator: post id is required")
	errRendererRequired = errors.New("generator: template renderer is required")
)

// Service describes the static site generator contract.
type Service interface {
	Build(ctx context.Context, opts BuildOptions) (*BuildResult, error)
	BuildPost(ctx context.Context, postID uuid.UUID, opts BuildOptions) (*BuildResult, error)
	BuildIndex(ctx context.Context, opts BuildOptions) (*BuildResult, error)
	BuildAssets(ctx context.Context, opts BuildOptions) (*BuildResult, error)
	Clean(ctx context.Context) error
}

// Config captures runtime behaviour toggles for the generator.
type Config struct {
	OutputDir       string
	BaseURL         string
	SiteTitle       string
	SiteDescription string
	Author          string
	Language        string
	Workers         int
	Incremental     bool
	CleanOrphans    bool
	GenerateSitemap bool
	GenerateRobots  bool
	GenerateFeeds   bool
	Theming         ThemingConfig
}

// BuildOptions narrows the scope of a generator run.
type BuildOptions struct {
	PostIDs      []uuid.UUID
	Tags         []string
	Theme        string
	ThemeVariant string
	Force        bool
	DryRun       bool
}

// BuildResult reports aggregated build metadata.
type BuildResult struct {
	StartedAt     time.Time
	Duration      time.Duration
	DryRun        bool
	PostsBuilt    int
	PostsSkipped  int
	PagesBuilt    int
	PagesSkipped  int
	AssetsBuilt   int
	AssetsSkipped int
	FeedsBuilt    int
	Pruned        []string
	Rendered      []RenderedPage
	Diagnostics   []RenderDiagnostic
	Errors        []error
}

// Dependencies lists the collaborators required by the generator. Posts is
// mandatory; everything else has a working default.
type Dependencies struct {
	Posts    posts.Service
	Renderer interfaces.TemplateRenderer
	Writer   ArtifactWriter
	Assets   AssetSource
	Logger   interfaces.Logger
}

// NewService wires a generator implementation with the provided
// configuration and dependencies.
func NewService(cfg Config, deps Dependencies) Service {
	s := &service{
		cfg:    cfg,
		deps:   deps,
		routes: newSiteRoutes(cfg.BaseURL),
		themes: newThemeSelector(cfg.Theming, nil),
		now:    time.Now,
	}

	s.writer = deps.Writer
	if s.writer == nil {
		s.writer = NewDirWriter(cfg.OutputDir)
	}
	s.renderer = deps.Renderer
	if s.renderer == nil {
		s.renderer = newBuiltinRenderer()
	}
	s.logger = deps.Logger
	if s.logger == nil {
		s.logger = logging.NoOp()
	}
	return s
}

// NewDisabledService returns a Service that fails all operations with
// ErrServiceDisabled.
func NewDisabledService() Service {
	return disabledService{}
}

type service struct {
	cfg      Config
	deps     Dependencies
	routes   *siteRoutes
	themes   *themeSelector
	writer   ArtifactWriter
	renderer interfaces.TemplateRenderer
	logger   interfaces.Logger
	now      func() time.Time
}

type disabledService struct{}

// buildPlan selects which build phases a run executes.
type buildPlan struct {
	posts      bool
	aggregates bool
	assets     bool
}

func (s *service) Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	full := len(opts.PostIDs) == 0 && len(opts.Tags) == 0
	// Partial builds rebuild the requested post pages only; indexes and
	// feeds would lie if computed from a filtered context.
	return s.run(ctx, opts, buildPlan{posts: true, aggregates: full, assets: full})
}

func (s *service) BuildPost(ctx context.Context, postID uuid.UUID, opts BuildOptions) (*BuildResult, error) {
	if postID == uuid.Nil {
		return nil, errPostIDRequired
	}
	opts.PostIDs = []uuid.UUID{postID}
	return s.run(ctx, opts, buildPlan{posts: true})
}

func (s *service) BuildIndex(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	opts.PostIDs = nil
	opts.Tags = nil
	return s.run(ctx, opts, buildPlan{aggregates: true})
}

func (s *service) BuildAssets(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	opts.PostIDs = nil
	opts.Tags = nil
	return s.run(ctx, opts, buildPlan{assets: true})
}

func (s *service) Clean(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	data, err := s.writer.ReadFile(ctx, ManifestFileName)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("generator: read manifest: %w", err)
	}
	manifest, err := ParseManifest(data)
	if err != nil {
		return err
	}
	for _, artifact := range manifest.Artifacts() {
		if strings.TrimSpace(artifact.Output) == "" {
			continue
		}
		if err := s.writer.Remove(ctx, artifact.Output); err != nil {
			return err
		}
	}
	return s.writer.Remove(ctx, ManifestFileName)
}

func (s *service) run(ctx context.Context, opts BuildOptions, plan buildPlan) (*BuildResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.renderer == nil {
		return nil, errRendererRequired
	}

	buildCtx, err := s.loadContext(ctx, opts)
	if err != nil {
		return nil, err
	}

	selection, err := s.themes.Selection(opts.Theme, opts.ThemeVariant)
	if err != nil {
		return nil, err
	}
	themeCtx := buildThemeContext(selection, s.cfg.Theming)

	result := &BuildResult{
		StartedAt:   buildCtx.GeneratedAt,
		DryRun:      opts.DryRun,
		Diagnostics: make([]RenderDiagnostic, 0, len(buildCtx.Posts)),
	}

	manifest := s.loadManifest(ctx)

	writer := s.writer
	if opts.DryRun {
		writer = noopWriter{}
	}

	var (
		mu       sync.Mutex
		rendered []RenderedPage
		errs     []error
		live     = map[string]struct{}{}
	)

	collect := func(outcome renderOutcome) {
		mu.Lock()
		defer mu.Unlock()
		result.Diagnostics = append(result.Diagnostics, outcome.diagnostic)
		if outcome.diagnostic.PostID != uuid.Nil {
			live["post:"+manifest.postKey(outcome.diagnostic.PostID)] = struct{}{}
		}
		if outcome.err != nil {
			errs = append(errs, outcome.err)
			return
		}
		if outcome.skipped {
			result.PostsSkipped++
			return
		}
		result.PostsBuilt++
		rendered = append(rendered, outcome.page)
	}

	if plan.posts {
		if err := s.renderPosts(ctx, buildCtx, themeCtx, opts, manifest, collect); err != nil {
			result.Duration = s.now().Sub(buildCtx.GeneratedAt)
			return result, err
		}

		sort.Slice(rendered, func(i, j int) bool {
			return rendered[i].Output < rendered[j].Output
		})
		if err := s.persistPosts(ctx, writer, manifest, buildCtx, rendered); err != nil {
			errs = append(errs, err)
		}
		result.Rendered = append(result.Rendered, rendered...)
	}

	if plan.aggregates {
		pages, aggErrs := s.buildAggregates(ctx, writer, manifest, buildCtx, themeCtx, opts, live, result)
		result.Rendered = append(result.Rendered, pages...)
		errs = append(errs, aggErrs...)
	}

	if plan.assets {
		summary, err := s.copyAssets(ctx, writer, manifest, selection, opts, live)
		if err != nil {
			errs = append(errs, err)
		}
		result.AssetsBuilt += summary.Built
		result.AssetsSkipped += summary.Skipped
	}

	fullScope := plan.posts && plan.aggregates && plan.assets &&
		len(opts.PostIDs) == 0 && len(opts.Tags) == 0
	if s.cfg.CleanOrphans && fullScope && !opts.DryRun && len(errs) == 0 {
		removed := manifest.prune(live)
		for _, output := range removed {
			if err := writer.Remove(ctx, output); err != nil {
				errs = append(errs, err)
			}
		}
		result.Pruned = removed
	}

	if !opts.DryRun && len(errs) == 0 {
		manifest.GeneratedAt = buildCtx.GeneratedAt
		if err := s.persistManifest(ctx, writer, manifest); err != nil {
			errs = append(errs, err)
		}
	}

	result.Duration = s.now().Sub(buildCtx.GeneratedAt)
	s.logger.Debug("site build finished",
		"posts_built", result.PostsBuilt,
		"posts_skipped", result.PostsSkipped,
		"pages_built", result.PagesBuilt,
		"assets_built", result.AssetsBuilt,
		"pruned", len(result.Pruned),
		"dry_run", result.DryRun,
		"errors", len(errs),
	)
	if len(errs) > 0 {
		result.Errors = append(result.Errors, errs...)
		return result, errors.Join(errs...)
	}
	return result, nil
}

func (s *service) renderPosts(
	ctx context.Context,
	buildCtx *BuildContext,
	themeCtx ThemeContext,
	opts BuildOptions,
	manifest *Manifest,
	collect func(renderOutcome),
) error {
	if len(buildCtx.Posts) == 0 {
		return nil
	}

	workers := s.effectiveWorkerCount(len(buildCtx.Posts))
	if workers <= 1 || len(buildCtx.Posts) == 1 {
		for _, data := range buildCtx.Posts {
			if err := ctx.Err(); err != nil {
				return err
			}
			collect(s.renderPost(ctx, buildCtx, themeCtx, data, opts, manifest))
		}
		return nil
	}

	jobs := make(chan *PostData)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for data := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
					collect(s.renderPost(ctx, buildCtx, themeCtx, data, opts, manifest))
				}
			}
		}()
	}

	var feedErr error
	for _, data := range buildCtx.Posts {
		select {
		case <-ctx.Done():
			feedErr = ctx.Err()
		case jobs <- data:
			continue
		}
		break
	}
	close(jobs)
	wg.Wait()
	return feedErr
}

func (s *service) renderPost(
	ctx context.Context,
	buildCtx *BuildContext,
	themeCtx ThemeContext,
	data *PostData,
	opts BuildOptions,
	manifest *Manifest,
) renderOutcome {
	outcome := renderOutcome{
		diagnostic: RenderDiagnostic{
			PostID: data.Post.ID,
			Kind:   KindPost,
			Route:  data.Route,
		},
	}

	select {
	case <-ctx.Done():
		outcome.err = ctx.Err()
		outcome.diagnostic.Err = ctx.Err()
		return outcome
	default:
	}

	templateName := postTemplateName(data, themeCtx)
	outcome.diagnostic.Template = templateName

	if s.cfg.Incremental && !opts.Force &&
		manifest.shouldSkipPost(data.Post.ID, data.Metadata.Hash, data.Output) {
		outcome.skipped = true
		outcome.diagnostic.Skipped = true
		return outcome
	}

	templateCtx := TemplateContext{
		Site: buildCtx.Site,
		Page: PageContext{
			Kind:  KindPost,
			Title: data.Post.Title,
			Route: data.Route,
		},
		Post: &PostRenderingContext{
			Post:      data.Post,
			HTML:      template.HTML(data.Post.HTML),
			Route:     data.Route,
			Permalink: data.Permalink,
			Metadata:  data.Metadata,
		},
		Build: BuildMetadata{
			GeneratedAt: buildCtx.GeneratedAt,
			Options:     buildCtx.Options,
		},
		Theme:   themeCtx,
		Helpers: newTemplateHelpers(buildCtx.Site.BaseURL),
	}

	start := time.Now()
	html, err := s.renderer.RenderTemplate(templateName, templateCtx)
	duration := time.Since(start)
	outcome.diagnostic.Duration = duration
	if err != nil {
		wrapped := fmt.Errorf("generator: render template %q for post %s: %w", templateName, data.Post.Slug, err)
		outcome.err = wrapped
		outcome.diagnostic.Err = wrapped
		return outcome
	}

	outcome.page = RenderedPage{
		PostID:   data.Post.ID,
		Kind:     KindPost,
		Route:    data.Route,
		Output:   data.Output,
		Template: templateName,
		HTML:     html,
		Metadata: data.Metadata,
		Duration: duration,
		Checksum: computeHashFromString(html),
	}
	return outcome
}

func (s *service) persistPosts(
	ctx context.Context,
	writer ArtifactWriter,
	manifest *Manifest,
	buildCtx *BuildContext,
	pages []RenderedPage,
) error {
	for i := range pages {
		req := WriteRequest{
			Path:        pages[i].Output,
			Content:     strings.NewReader(pages[i].HTML),
			Size:        int64(len(pages[i].HTML)),
			Kind:        KindPost,
			ContentType: "text/html; charset=utf-8",
			Checksum:    pages[i].Checksum,
			Metadata: map[string]string{
				"post_id":  pages[i].PostID.String(),
				"route":    pages[i].Route,
				"template": pages[i].Template,
			},
		}
		if err := writer.WriteFile(ctx, req); err != nil {
			return fmt.Errorf("generator: write %s: %w", pages[i].Output, err)
		}
		manifest.setPost(ManifestPost{
			PostID:       pages[i].PostID.String(),
			Slug:         strings.TrimSuffix(strings.TrimPrefix(pages[i].Route, "/posts/"), "/"),
			Route:        pages[i].Route,
			Output:       pages[i].Output,
			Template:     pages[i].Template,
			Hash:         pages[i].Metadata.Hash,
			Checksum:     pages[i].Checksum,
			LastModified: pages[i].Metadata.LastModified,
			RenderedAt:   buildCtx.GeneratedAt,
		})
	}
	return nil
}

// aggregateSpec describes one list page derived from the whole site.
type aggregateSpec struct {
	key         string
	templateKey string
	title       string
	route       string
	output      string
	posts       []*PostData
}

func (s *service) buildAggregates(
	ctx context.Context,
	writer ArtifactWriter,
	manifest *Manifest,
	buildCtx *BuildContext,
	themeCtx ThemeContext,
	opts BuildOptions,
	live map[string]struct{},
	result *BuildResult,
) ([]RenderedPage, []error) {
	var (
		pages []RenderedPage
		errs  []error
	)

	specs := make([]aggregateSpec, 0, 1+len(buildCtx.Tags)+len(buildCtx.Years))
	homeTitle := buildCtx.Site.Title
	if homeTitle == "" {
		homeTitle = "Home"
	}
	specs = append(specs, aggregateSpec{
		key:         "home",
		templateKey: "index",
		title:       homeTitle,
		route:       "/",
		output:      "index.html",
		posts:       buildCtx.Posts,
	})
	for _, group := range buildCtx.Tags {
		specs = append(specs, aggregateSpec{
			key:         "tag:" + group.Slug,
			templateKey: "tag",
			title:       fmt.Sprintf("Posts tagged %s", group.Tag),
			route:       group.Route,
			output:      tagOutputPath(group.Slug),
			posts:       group.Posts,
		})
	}
	for _, group := range buildCtx.Years {
		specs = append(specs, aggregateSpec{
			key:         "archive:" + strconv.Itoa(group.Year),
			templateKey: "archive",
			title:       fmt.Sprintf("Posts from %d", group.Year),
			route:       group.Route,
			output:      archiveOutputPath(group.Year),
			posts:       group.Posts,
		})
	}

	for _, spec := range specs {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			return pages, errs
		}
		page, written, err := s.renderAggregate(ctx, writer, manifest, buildCtx, themeCtx, spec, opts, live)
		result.Diagnostics = append(result.Diagnostics, RenderDiagnostic{
			Kind:     KindPage,
			Route:    spec.route,
			Template: page.Template,
			Duration: page.Duration,
			Skipped:  !written && err == nil,
			Err:      err,
		})
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if written {
			result.PagesBuilt++
			pages = append(pages, page)
		} else {
			result.PagesSkipped++
		}
	}

	if s.cfg.GenerateFeeds {
		items := buildFeedItems(buildCtx)
		feeds := []struct {
			key         string
			output      string
			contentType string
			kind        ArtifactKind
			content     string
		}{
			{"feed:rss", "feed.xml", "application/rss+xml", KindFeed, buildRSSFeed(buildCtx.Site, items, buildCtx.GeneratedAt)},
			{"feed:atom", "atom.xml", "application/atom+xml", KindFeed, buildAtomFeed(buildCtx.Site, items, buildCtx.GeneratedAt)},
		}
		for _, feed := range feeds {
			written, err := s.writeDocument(ctx, writer, manifest, live, documentWrite{
				Key:         feed.key,
				Kind:        feed.kind,
				Route:       "/" + feed.output,
				Output:      feed.output,
				ContentType: feed.contentType,
				Content:     feed.content,
			}, opts, buildCtx.GeneratedAt)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if written {
				result.FeedsBuilt++
			}
		}
	}

	if s.cfg.GenerateSitemap {
		written, err := s.writeDocument(ctx, writer, manifest, live, documentWrite{
			Key:         "sitemap",
			Kind:        KindSitemap,
			Route:       "/sitemap.xml",
			Output:      "sitemap.xml",
			ContentType: "application/xml",
			Content:     buildSitemap(buildCtx),
		}, opts, buildCtx.GeneratedAt)
		if err != nil {
			errs = append(errs, err)
		} else if written {
			result.PagesBuilt++
		} else {
			result.PagesSkipped++
		}
	}

	if s.cfg.GenerateRobots {
		written, err := s.writeDocument(ctx, writer, manifest, live, documentWrite{
			Key:         "robots",
			Kind:        KindRobots,
			Route:       "/robots.txt",
			Output:      "robots.txt",
			ContentType: "text/plain; charset=utf-8",
			Content:     buildRobots(buildCtx.Site.BaseURL, s.cfg.GenerateSitemap),
		}, opts, buildCtx.GeneratedAt)
		if err != nil {
			errs = append(errs, err)
		} else if written {
			result.PagesBuilt++
		} else {
			result.PagesSkipped++
		}
	}

	return pages, errs
}

func (s *service) renderAggregate(
	ctx context.Context,
	writer ArtifactWriter,
	manifest *Manifest,
	buildCtx *BuildContext,
	themeCtx ThemeContext,
	spec aggregateSpec,
	opts BuildOptions,
	live map[string]struct{},
) (RenderedPage, bool, error) {
	templateName := themeCtx.Template(spec.templateKey, templateIndex)

	templateCtx := TemplateContext{
		Site: buildCtx.Site,
		Page: PageContext{
			Kind:  KindPage,
			Title: spec.title,
			Route: spec.route,
		},
		Posts: spec.posts,
		Build: BuildMetadata{
			GeneratedAt: buildCtx.GeneratedAt,
			Options:     buildCtx.Options,
		},
		Theme:   themeCtx,
		Helpers: newTemplateHelpers(buildCtx.Site.BaseURL),
	}

	start := time.Now()
	html, err := s.renderer.RenderTemplate(templateName, templateCtx)
	duration := time.Since(start)
	page := RenderedPage{
		Kind:     KindPage,
		Key:      spec.key,
		Route:    spec.route,
		Output:   spec.output,
		Template: templateName,
		Duration: duration,
	}
	if err != nil {
		return page, false, fmt.Errorf("generator: render %s page: %w", spec.key, err)
	}
	page.HTML = html
	page.Checksum = computeHashFromString(html)

	live["page:"+spec.key] = struct{}{}

	// Aggregates depend on the whole post set, so the skip decision
	// compares rendered output instead of input hashes.
	if s.cfg.Incremental && !opts.Force &&
		manifest.shouldSkipPage(spec.key, page.Checksum, spec.output) {
		return page, false, nil
	}

	req := WriteRequest{
		Path:        spec.output,
		Content:     strings.NewReader(html),
		Size:        int64(len(html)),
		Kind:        KindPage,
		ContentType: "text/html; charset=utf-8",
		Checksum:    page.Checksum,
		Metadata: map[string]string{
			"page":     spec.key,
			"route":    spec.route,
			"template": templateName,
		},
	}
	if err := writer.WriteFile(ctx, req); err != nil {
		return page, false, fmt.Errorf("generator: write %s: %w", spec.output, err)
	}
	manifest.setPage(ManifestPage{
		Key:        spec.key,
		Kind:       string(KindPage),
		Route:      spec.route,
		Output:     spec.output,
		Checksum:   page.Checksum,
		RenderedAt: buildCtx.GeneratedAt,
	})
	return page, true, nil
}

// documentWrite carries one non-template artifact: a feed, the sitemap,
// or robots.txt.
type documentWrite struct {
	Key         string
	Kind        ArtifactKind
	Route       string
	Output      string
	ContentType string
	Content     string
}

func (s *service) writeDocument(
	ctx context.Context,
	writer ArtifactWriter,
	manifest *Manifest,
	live map[string]struct{},
	doc documentWrite,
	opts BuildOptions,
	generatedAt time.Time,
) (bool, error) {
	checksum := computeHashFromString(doc.Content)
	live["page:"+doc.Key] = struct{}{}

	if s.cfg.Incremental && !opts.Force &&
		manifest.shouldSkipPage(doc.Key, checksum, doc.Output) {
		return false, nil
	}

	req := WriteRequest{
		Path:        doc.Output,
		Content:     strings.NewReader(doc.Content),
		Size:        int64(len(doc.Content)),
		Kind:        doc.Kind,
		ContentType: doc.ContentType,
		Checksum:    checksum,
	}
	if err := writer.WriteFile(ctx, req); err != nil {
		return false, fmt.Errorf("generator: write %s: %w", doc.Output, err)
	}
	manifest.setPage(ManifestPage{
		Key:        doc.Key,
		Kind:       string(doc.Kind),
		Route:      doc.Route,
		Output:     doc.Output,
		Checksum:   checksum,
		RenderedAt: generatedAt,
	})
	return true, nil
}

type assetCopySummary struct {
	Built   int
	Skipped int
}

func (s *service) copyAssets(
	ctx context.Context,
	writer ArtifactWriter,
	manifest *Manifest,
	selection *gotheme.Selection,
	opts BuildOptions,
	live map[string]struct{},
) (assetCopySummary, error) {
	summary := assetCopySummary{}

	if selection != nil {
		source := NewDirAssetSource(s.themes.ThemePath(selection.Theme))
		for _, rel := range collectThemeAssets(selection) {
			key := "theme:" + selection.Theme + ":" + rel
			output := path.Join("assets", selection.Theme, rel)
			copied, err := s.copyAsset(ctx, writer, manifest, source, rel, key, output, selection.Theme, opts, live)
			if err != nil {
				return summary, err
			}
			if copied {
				summary.Built++
			} else {
				summary.Skipped++
			}
		}
	}

	if s.deps.Assets != nil {
		names, err := s.deps.Assets.List(ctx)
		if err != nil {
			return summary, err
		}
		// Static files mirror the output root, so a static favicon.ico
		// lands at /favicon.ico.
		for _, rel := range names {
			key := "static:" + rel
			copied, err := s.copyAsset(ctx, writer, manifest, s.deps.Assets, rel, key, rel, "", opts, live)
			if err != nil {
				return summary, err
			}
			if copied {
				summary.Built++
			} else {
				summary.Skipped++
			}
		}
	}

	return summary, nil
}

func (s *service) copyAsset(
	ctx context.Context,
	writer ArtifactWriter,
	manifest *Manifest,
	source AssetSource,
	rel, key, output, theme string,
	opts BuildOptions,
	live map[string]struct{},
) (bool, error) {
	reader, err := source.Open(ctx, rel)
	if err != nil {
		return false, fmt.Errorf("generator: open asset %s: %w", rel, err)
	}
	data, err := io.ReadAll(reader)
	_ = reader.Close()
	if err != nil {
		return false, fmt.Errorf("generator: read asset %s: %w", rel, err)
	}

	checksum := computeHash(data)
	live["asset:"+key] = struct{}{}

	if s.cfg.Incremental && !opts.Force &&
		manifest.shouldSkipAsset(key, checksum, output) {
		return false, nil
	}

	metadata := map[string]string{"source": rel}
	if theme != "" {
		metadata["theme"] = theme
	}
	req := WriteRequest{
		Path:        output,
		Content:     bytes.NewReader(data),
		Size:        int64(len(data)),
		Kind:        KindAsset,
		ContentType: detectAssetContentType(rel),
		Checksum:    checksum,
		Metadata:    metadata,
	}
	if err := writer.WriteFile(ctx, req); err != nil {
		return false, fmt.Errorf("generator: write asset %s: %w", output, err)
	}
	manifest.setAsset(ManifestAsset{
		Key:      key,
		Theme:    theme,
		Source:   rel,
		Output:   output,
		Checksum: checksum,
		Size:     int64(len(data)),
		CopiedAt: s.now(),
	})
	return true, nil
}

// loadManifest reads the previous build's manifest. A missing or corrupt
// manifest degrades to a full rebuild instead of failing the run.
func (s *service) loadManifest(ctx context.Context) *Manifest {
	data, err := s.writer.ReadFile(ctx, ManifestFileName)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("generator: manifest unreadable, rebuilding from scratch", "error", err)
		}
		return NewManifest()
	}
	manifest, err := ParseManifest(data)
	if err != nil {
		s.logger.Warn("generator: manifest corrupt, rebuilding from scratch", "error", err)
		return NewManifest()
	}
	return manifest
}

func (s *service) persistManifest(ctx context.Context, writer ArtifactWriter, manifest *Manifest) error {
	data, err := manifest.Marshal()
	if err != nil {
		return fmt.Errorf("generator: marshal manifest: %w", err)
	}
	req := WriteRequest{
		Path:        ManifestFileName,
		Content:     bytes.NewReader(data),
		Size:        int64(len(data)),
		Kind:        KindManifest,
		ContentType: "application/json",
		Checksum:    computeHash(data),
	}
	if err := writer.WriteFile(ctx, req); err != nil {
		return fmt.Errorf("generator: write manifest: %w", err)
	}
	return nil
}

func (s *service) effectiveWorkerCount(jobCount int) int {
	workers := s.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers < 1 {
		workers = 1
	}
	if jobCount > 0 && workers > jobCount {
		return jobCount
	}
	return workers
}

func postTemplateName(data *PostData, themeCtx ThemeContext) string {
	if data.Post.Template != nil {
		if name := strings.TrimSpace(*data.Post.Template); name != "" {
			return name
		}
	}
	return themeCtx.Template(templatePost, templatePost)
}

func (disabledService) Build(context.Context, BuildOptions) (*BuildResult, error) {
	return nil, ErrServiceDisabled
}

func (disabledService) BuildPost(context.Context, uuid.UUID, BuildOptions) (*BuildResult, error) {
	return nil, ErrServiceDisabled
}

func (disabledService) BuildIndex(context.Context, BuildOptions) (*BuildResult, error) {
	return nil, ErrServiceDisabled
}

func (disabledService) BuildAssets(context.Context, BuildOptions) (*BuildResult, error) {
	return nil, ErrServiceDisabled
}

func (disabledService) Clean(context.Context) error {
	return ErrServiceDisabled
}
