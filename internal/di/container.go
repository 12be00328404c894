package di

import (
	"fmt"
	"os"
	"strings"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"

	storageadapter "github.com/goliatone/go-blog/internal/adapters/storage"
	"github.com/goliatone/go-blog/internal/export"
	"github.com/goliatone/go-blog/internal/generator"
	"github.com/goliatone/go-blog/internal/jobs"
	"github.com/goliatone/go-blog/internal/lint"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/internal/logging/console"
	"github.com/goliatone/go-blog/internal/logging/gologger"
	"github.com/goliatone/go-blog/internal/markdown"
	"github.com/goliatone/go-blog/internal/post"
	"github.com/goliatone/go-blog/internal/preview"
	"github.com/goliatone/go-blog/internal/runtimeconfig"
	"github.com/goliatone/go-blog/internal/scheduler"
	"github.com/goliatone/go-blog/internal/search"
	"github.com/goliatone/go-blog/pkg/activity"
	"github.com/goliatone/go-blog/pkg/interfaces"
	"github.com/goliatone/go-blog/pkg/storage"
	"github.com/goliatone/go-blog/posts"
)

// Container wires the blog services together. Zero-value collaborators are
// replaced with defaults driven by the configuration: an in-memory post
// repository unless a bun.DB is supplied, an in-memory scheduler when the
// scheduling feature is on, and disabled stand-ins for switched-off modules.
type Container struct {
	Config runtimeconfig.Config

	clock          func() time.Time
	loggerProvider interfaces.LoggerProvider

	bunDB         *bun.DB
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	storageProvider storage.Provider

	postRepo post.PostRepository

	schedulerSvc interfaces.Scheduler
	hooks        activity.Hooks
	emitter      *activity.Emitter

	postSvc      posts.Service
	markdownSvc  *markdown.Service
	generatorSvc generator.Service
	linter       *lint.Linter
	exporter     export.Exporter
	worker       *jobs.Worker

	renderer interfaces.TemplateRenderer
	assets   generator.AssetSource

	searchIdx  *search.Index
	previewSrv *preview.Server
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithBunDB switches the post repository from the in-memory default to the
// database-backed implementation.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the repository cache pair used by the bun repository.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithStorageProvider overrides the raw SQL provider derived from the
// database handle.
func WithStorageProvider(sp storage.Provider) Option {
	return func(c *Container) {
		c.storageProvider = sp
	}
}

// WithClock overrides the clock shared by every constructed service.
func WithClock(clock func() time.Time) Option {
	return func(c *Container) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithLoggerProvider overrides the provider built from the logging config.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithScheduler overrides the in-memory scheduler default.
func WithScheduler(s interfaces.Scheduler) Option {
	return func(c *Container) {
		c.schedulerSvc = s
	}
}

// WithActivityHooks registers sinks for lifecycle events.
func WithActivityHooks(hooks ...activity.Hook) Option {
	return func(c *Container) {
		c.hooks = append(c.hooks, hooks...)
	}
}

// WithTemplate overrides the generator's built-in template renderer.
func WithTemplate(tr interfaces.TemplateRenderer) Option {
	return func(c *Container) {
		c.renderer = tr
	}
}

// WithAssetSource overrides the asset source derived from the assets dir.
func WithAssetSource(src generator.AssetSource) Option {
	return func(c *Container) {
		c.assets = src
	}
}

// WithPostRepository overrides the post repository.
func WithPostRepository(repo post.PostRepository) Option {
	return func(c *Container) {
		c.postRepo = repo
	}
}

// WithPostService overrides the post service.
func WithPostService(svc posts.Service) Option {
	return func(c *Container) {
		c.postSvc = svc
	}
}

// WithMarkdownService overrides the markdown service.
func WithMarkdownService(svc *markdown.Service) Option {
	return func(c *Container) {
		c.markdownSvc = svc
	}
}

// WithGeneratorService overrides the static site generator.
func WithGeneratorService(svc generator.Service) Option {
	return func(c *Container) {
		c.generatorSvc = svc
	}
}

// WithLinter overrides the content linter.
func WithLinter(l *lint.Linter) Option {
	return func(c *Container) {
		c.linter = l
	}
}

// WithExporter overrides the site exporter.
func WithExporter(e export.Exporter) Option {
	return func(c *Container) {
		c.exporter = e
	}
}

// NewContainer validates the configuration and builds the service graph.
// Construction is eager except for the search index and the preview server,
// which touch the filesystem and are opened on first use.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{Config: cfg}
	for _, opt := range opts {
		opt(c)
	}

	if c.clock == nil {
		c.clock = time.Now
	}

	if err := c.configureLogging(); err != nil {
		return nil, err
	}
	c.configureCacheDefaults()
	c.configureRepositories()
	c.configureStorageProvider()
	c.configureScheduling()
	c.configureActivity()

	if c.postSvc == nil {
		c.postSvc = post.NewService(c.postRepo, c.postServiceOptions()...)
	}

	if err := c.configureMarkdown(); err != nil {
		return nil, err
	}
	c.configureGenerator()
	c.configureLint()
	c.configureExport()
	c.configureWorker()

	return c, nil
}

func (c *Container) configureLogging() error {
	if c.loggerProvider != nil {
		return nil
	}

	logCfg := c.Config.Logging
	switch strings.ToLower(strings.TrimSpace(logCfg.Provider)) {
	case "", "console":
		opts := console.Options{}
		if level, ok := console.ParseLevel(logCfg.Level); ok {
			opts.MinLevel = &level
		}
		c.loggerProvider = console.NewProvider(opts)
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     logCfg.Level,
			Format:    logCfg.Format,
			AddSource: logCfg.AddSource,
			Focus:     logCfg.Focus,
		})
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	default:
		return fmt.Errorf("di: unsupported logging provider %q", logCfg.Provider)
	}
	return nil
}

func (c *Container) configureCacheDefaults() {
	if c.bunDB == nil || !c.Config.Cache.Enabled {
		return
	}

	if c.cacheService == nil {
		cacheCfg := repocache.DefaultConfig()
		if ttl := c.Config.Cache.TTL.Std(); ttl > 0 {
			cacheCfg.TTL = ttl
		}
		service, err := repocache.NewCacheService(cacheCfg)
		if err == nil {
			c.cacheService = service
		}
	}

	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) configureRepositories() {
	if c.postRepo != nil {
		return
	}
	if c.bunDB != nil {
		c.postRepo = post.NewBunPostRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		return
	}
	c.postRepo = post.NewMemoryPostRepository()
}

func (c *Container) configureStorageProvider() {
	if c.storageProvider != nil {
		return
	}
	if c.bunDB != nil {
		c.storageProvider = storageadapter.NewSQLAdapter(c.bunDB.DB)
		return
	}
	c.storageProvider = storageadapter.NewNoOpProvider()
}

// configureScheduling builds the scheduler whenever the feature is on. The
// Scheduler.Enabled toggle only gates the background worker; a post can be
// scheduled even when nothing is draining the queue yet.
func (c *Container) configureScheduling() {
	if c.schedulerSvc != nil || !c.Config.Features.Scheduling {
		return
	}
	c.schedulerSvc = scheduler.NewInMemory(scheduler.WithClock(c.clock))
}

func (c *Container) configureActivity() {
	if c.emitter != nil {
		return
	}
	c.emitter = activity.NewEmitter(c.hooks, activity.Config{
		Enabled: c.Config.Features.Activity,
		Channel: "blog",
	})
}

func (c *Container) postServiceOptions() []post.ServiceOption {
	opts := []post.ServiceOption{
		post.WithClock(c.clock),
		post.WithVersioningEnabled(c.Config.Features.Versioning),
		post.WithSchedulingEnabled(c.Config.Features.Scheduling),
		post.WithActivityEmitter(c.emitter),
	}
	if c.schedulerSvc != nil {
		opts = append(opts, post.WithScheduler(c.schedulerSvc))
	}
	return opts
}

func (c *Container) configureMarkdown() error {
	if c.markdownSvc != nil {
		return nil
	}

	// The markdown service refuses a missing base path, but a fresh project
	// has no content tree yet. Creating it here keeps first-run setup to a
	// single NewContainer call.
	if err := os.MkdirAll(c.Config.Content.Dir, 0o755); err != nil {
		return fmt.Errorf("di: create content dir: %w", err)
	}

	svc, err := markdown.NewService(markdown.Config{
		BasePath:      c.Config.Content.Dir,
		Pattern:       c.Config.Content.Pattern,
		Recursive:     c.Config.Content.Recursive,
		DefaultStatus: c.Config.Content.DefaultStatus,
	}, nil,
		markdown.WithPostService(c.postSvc),
		markdown.WithLogger(logging.MarkdownLogger(c.loggerProvider)),
		markdown.WithClock(c.clock),
	)
	if err != nil {
		return err
	}
	c.markdownSvc = svc
	return nil
}

func (c *Container) configureGenerator() {
	if c.generatorSvc != nil {
		return
	}
	if !c.Config.Features.Generator || !c.Config.Generator.Enabled {
		c.generatorSvc = generator.NewDisabledService()
		return
	}

	if c.assets == nil && c.Config.Generator.AssetsDir != "" {
		c.assets = generator.NewDirAssetSource(c.Config.Generator.AssetsDir)
	}

	c.generatorSvc = generator.NewService(generator.Config{
		OutputDir:       c.Config.Generator.OutputDir,
		BaseURL:         c.Config.Site.BaseURL,
		SiteTitle:       c.Config.Site.Title,
		SiteDescription: c.Config.Site.Description,
		Author:          c.Config.Site.Author,
		Language:        c.Config.Site.Language,
		Workers:         c.Config.Generator.Workers,
		Incremental:     c.Config.Generator.Incremental,
		CleanOrphans:    c.Config.Generator.CleanOrphans,
		GenerateSitemap: c.Config.Generator.GenerateSitemap,
		GenerateRobots:  c.Config.Generator.GenerateRobots,
		GenerateFeeds:   c.Config.Generator.GenerateFeeds,
		Theming: generator.ThemingConfig{
			Dir:            c.Config.Generator.ThemesDir,
			DefaultTheme:   c.Config.Generator.Theme,
			DefaultVariant: c.Config.Generator.ThemeVariant,
		},
	}, generator.Dependencies{
		Posts:    c.postSvc,
		Renderer: c.renderer,
		Assets:   c.assets,
		Logger:   logging.GeneratorLogger(c.loggerProvider),
	})
}

func (c *Container) configureLint() {
	if c.linter != nil {
		return
	}
	c.linter = lint.New(
		lint.WithTypoOverrides(c.Config.Lint.TypoOverrides),
		lint.WithDuplicateThreshold(c.Config.Lint.DuplicateThreshold),
		lint.WithShingleSize(c.Config.Lint.ShingleSize),
		lint.WithMetadataSchema(c.Config.Lint.MetadataSchema),
		lint.WithLogger(logging.LintLogger(c.loggerProvider)),
		lint.WithClock(c.clock),
	)
}

// configureExport always builds a live exporter. Packaging only needs the
// output directory on disk, which may well have been produced by an earlier
// run with different toggles.
func (c *Container) configureExport() {
	if c.exporter != nil {
		return
	}
	c.exporter = export.NewService(export.Config{
		OutputDir: c.Config.Generator.OutputDir,
		Dir:       c.Config.Export.Dir,
		SiteTitle: c.Config.Site.Title,
	}, export.Dependencies{
		Logger: logging.ExportLogger(c.loggerProvider),
	})
}

func (c *Container) configureWorker() {
	if c.worker != nil || c.schedulerSvc == nil || !c.Config.Scheduler.Enabled {
		return
	}
	c.worker = jobs.NewWorker(c.schedulerSvc, c.postRepo,
		jobs.WithClock(c.clock),
		jobs.WithActivityEmitter(c.emitter),
		jobs.WithBatchSize(c.Config.Scheduler.BatchSize),
	)
}

// Clock exposes the shared time source.
func (c *Container) Clock() func() time.Time {
	return c.clock
}

// LoggerProvider exposes the configured logger provider.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// DB exposes the configured database handle, nil for in-memory setups.
func (c *Container) DB() *bun.DB {
	return c.bunDB
}

// StorageProvider exposes raw SQL access over the configured database, a
// no-op provider for in-memory setups.
func (c *Container) StorageProvider() storage.Provider {
	return c.storageProvider
}

// PostRepository exposes the configured post repository.
func (c *Container) PostRepository() post.PostRepository {
	return c.postRepo
}

// PostService exposes the post lifecycle service.
func (c *Container) PostService() posts.Service {
	return c.postSvc
}

// MarkdownService exposes the markdown load/import/sync service.
func (c *Container) MarkdownService() *markdown.Service {
	return c.markdownSvc
}

// GeneratorService exposes the static site generator.
func (c *Container) GeneratorService() generator.Service {
	return c.generatorSvc
}

// Scheduler exposes the publish-job scheduler, nil when scheduling is off.
func (c *Container) Scheduler() interfaces.Scheduler {
	return c.schedulerSvc
}

// ActivityEmitter exposes the lifecycle event emitter.
func (c *Container) ActivityEmitter() *activity.Emitter {
	return c.emitter
}

// Linter exposes the content linter.
func (c *Container) Linter() *lint.Linter {
	return c.linter
}

// Exporter exposes the site archive exporter.
func (c *Container) Exporter() export.Exporter {
	return c.exporter
}

// Worker exposes the scheduled-publish worker, nil unless both the
// scheduling feature and the scheduler section are enabled.
func (c *Container) Worker() *jobs.Worker {
	return c.worker
}

// SearchIndex opens the on-disk search index on first use (lazy).
func (c *Container) SearchIndex() (*search.Index, error) {
	if c.searchIdx != nil {
		return c.searchIdx, nil
	}
	if !c.Config.Features.Search || !c.Config.Search.Enabled {
		return nil, search.ErrIndexDisabled
	}

	idx, err := search.Open(c.Config.Search.Dir,
		search.WithLogger(logging.SearchLogger(c.loggerProvider)))
	if err != nil {
		return nil, err
	}
	c.searchIdx = idx
	return c.searchIdx, nil
}

// PreviewServer builds the local preview server on first use (lazy). The
// search index rides along when both features are enabled.
func (c *Container) PreviewServer() (*preview.Server, error) {
	if c.previewSrv != nil {
		return c.previewSrv, nil
	}
	if !c.Config.Features.Preview || !c.Config.Preview.Enabled {
		return nil, preview.ErrServerDisabled
	}

	opts := []preview.Option{
		preview.WithLogger(logging.PreviewLogger(c.loggerProvider)),
	}
	if c.Config.Features.Search && c.Config.Search.Enabled {
		index, err := c.SearchIndex()
		if err != nil {
			return nil, err
		}
		opts = append(opts, preview.WithSearchIndex(index))
	}

	srv, err := preview.New(preview.Config{
		Addr:         c.Config.Preview.Addr,
		ContentDir:   c.Config.Content.Dir,
		AssetsDir:    c.Config.Preview.AssetsDir,
		Pattern:      c.Config.Content.Pattern,
		PasswordHash: c.Config.Preview.PasswordHash,
		LiveReload:   c.Config.Preview.LiveReload,
	}, c.postSvc, c.markdownSvc, opts...)
	if err != nil {
		return nil, err
	}
	c.previewSrv = srv
	return c.previewSrv, nil
}
