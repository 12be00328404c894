package runtimeconfig

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-blog/internal/domain"
	"github.com/goliatone/go-blog/internal/validation"
	"github.com/goliatone/go-blog/pkg/storage"
)

var ErrContentDirRequired = errors.New("blog config: content directory is required")
var ErrDefaultStatusInvalid = errors.New("blog config: content default status is invalid")
var ErrStorageDSNRequired = errors.New("blog config: storage dsn is required")
var ErrStorageConfigInvalid = errors.New("blog config: storage section is invalid")

// ErrGeneratorFeatureRequired keeps section toggles and feature flags consistent.
var ErrGeneratorFeatureRequired = errors.New("blog config: generator feature must be enabled to configure builds")
var ErrGeneratorOutputDirRequired = errors.New("blog config: generator output directory is required when generator is enabled")
var ErrPreviewFeatureRequired = errors.New("blog config: preview feature must be enabled to configure the preview server")

// ErrPreviewPasswordNotHashed refuses plaintext passwords in config files.
var ErrPreviewPasswordNotHashed = errors.New("blog config: preview password must be a bcrypt hash")
var ErrSearchFeatureRequired = errors.New("blog config: search feature must be enabled to configure the index")
var ErrSearchDirRequired = errors.New("blog config: search directory is required when search is enabled")
var ErrSchedulerFeatureRequired = errors.New("blog config: scheduling feature must be enabled to configure the scheduler")
var ErrSchedulerIntervalInvalid = errors.New("blog config: scheduler interval must be positive")
var ErrCacheTTLInvalid = errors.New("blog config: cache ttl must not be negative")
var ErrDuplicateThresholdInvalid = errors.New("blog config: lint duplicate threshold must be within (0, 1]")
var ErrShingleSizeInvalid = errors.New("blog config: lint shingle size must be positive")
var ErrMetadataSchemaInvalid = errors.New("blog config: lint metadata schema is invalid")
var ErrLoggingProviderRequired = errors.New("blog config: logging provider is required")
var ErrLoggingProviderUnknown = errors.New("blog config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("blog config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("blog config: logging format is invalid")

// Config aggregates site metadata, feature flags, and per-subsystem settings.
// Fields use simple types so host applications can build one in code as
// easily as loading it from YAML.
type Config struct {
	Site      SiteConfig      `yaml:"site"`
	Content   ContentConfig   `yaml:"content"`
	Storage   StorageConfig   `yaml:"storage"`
	Cache     CacheConfig     `yaml:"cache"`
	Generator GeneratorConfig `yaml:"generator"`
	Preview   PreviewConfig   `yaml:"preview"`
	Search    SearchConfig    `yaml:"search"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Lint      LintConfig      `yaml:"lint"`
	Export    ExportConfig    `yaml:"export"`
	Features  Features        `yaml:"features"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// SiteConfig carries the identity stamped into generated pages and feeds.
type SiteConfig struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	BaseURL     string `yaml:"base_url"`
	Author      string `yaml:"author"`
	Language    string `yaml:"language"`
}

// ContentConfig locates the markdown tree and sets import behaviour.
type ContentConfig struct {
	Dir       string `yaml:"dir"`
	Pattern   string `yaml:"pattern"`
	Recursive bool   `yaml:"recursive"`
	// DefaultStatus applies to files that carry neither a draft flag nor a
	// status key.
	DefaultStatus string `yaml:"default_status"`
}

// StorageConfig selects the database backing the post repository.
type StorageConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// CacheConfig controls the read-through cache wrapped around the database
// post repository. It has no effect on the in-memory repository.
type CacheConfig struct {
	Enabled bool     `yaml:"enabled"`
	TTL     Duration `yaml:"ttl"`
}

// GeneratorConfig captures behaviour for the static site generator.
type GeneratorConfig struct {
	Enabled         bool   `yaml:"enabled"`
	OutputDir       string `yaml:"output_dir"`
	AssetsDir       string `yaml:"assets_dir"`
	Workers         int    `yaml:"workers"`
	Incremental     bool   `yaml:"incremental"`
	CleanOrphans    bool   `yaml:"clean_orphans"`
	GenerateSitemap bool   `yaml:"generate_sitemap"`
	GenerateRobots  bool   `yaml:"generate_robots"`
	GenerateFeeds   bool   `yaml:"generate_feeds"`
	ThemesDir       string `yaml:"themes_dir"`
	Theme           string `yaml:"theme"`
	ThemeVariant    string `yaml:"theme_variant"`
}

// PreviewConfig configures the local preview server.
type PreviewConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	// PasswordHash gates draft routes when non-empty. Bcrypt only;
	// plaintext in a config file is refused at validation.
	PasswordHash string `yaml:"password_hash"`
	LiveReload   bool   `yaml:"live_reload"`
	AssetsDir    string `yaml:"assets_dir"`
}

// SearchConfig locates the on-disk search index.
type SearchConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

// SchedulerConfig drives the scheduled-publishing worker.
type SchedulerConfig struct {
	Enabled   bool     `yaml:"enabled"`
	Interval  Duration `yaml:"interval"`
	BatchSize int      `yaml:"batch_size"`
}

// LintConfig tunes the content linter.
type LintConfig struct {
	// TypoOverrides merges over the built-in catalog; an empty replacement
	// removes the entry.
	TypoOverrides      map[string]string `yaml:"typo_overrides"`
	DuplicateThreshold float64           `yaml:"duplicate_threshold"`
	ShingleSize        int               `yaml:"shingle_size"`
	// MetadataSchema validates custom front-matter fields. Raw JSON Schema
	// or a {fields: [{name, type, required}]} list.
	MetadataSchema map[string]any `yaml:"metadata_schema"`
}

// ExportConfig places site archives.
type ExportConfig struct {
	Dir string `yaml:"dir"`
}

// Features toggles module functionality.
type Features struct {
	Versioning bool `yaml:"versioning"`
	Scheduling bool `yaml:"scheduling"`
	Search     bool `yaml:"search"`
	Preview    bool `yaml:"preview"`
	Generator  bool `yaml:"generator"`
	Activity   bool `yaml:"activity"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `yaml:"provider"`
	Level     string   `yaml:"level"`
	Format    string   `yaml:"format"`
	AddSource bool     `yaml:"add_source"`
	Focus     []string `yaml:"focus"`
}

// Duration wraps time.Duration so YAML configs can say "30s" or "5m".
type Duration time.Duration

// UnmarshalYAML parses Go duration syntax.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var text string
	if err := value.Decode(&text); err != nil {
		return fmt.Errorf("blog config: invalid duration: %w", err)
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(trimmed)
	if err != nil {
		return fmt.Errorf("blog config: invalid duration %q: %w", text, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the canonical duration string.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// DefaultConfig returns opinionated defaults for a single-author site: a
// sqlite file next to the content tree, every feature on, preview with live
// reload, console logging.
func DefaultConfig() Config {
	return Config{
		Site: SiteConfig{
			Title:    "Blog",
			Language: "en",
		},
		Content: ContentConfig{
			Dir:           "content",
			Pattern:       "*.md",
			Recursive:     true,
			DefaultStatus: string(domain.StatusDraft),
		},
		Storage: StorageConfig{
			Driver: "sqlite3",
			DSN:    "file:blog.db?cache=shared&_fk=1",
		},
		Cache: CacheConfig{
			Enabled: true,
		},
		Generator: GeneratorConfig{
			Enabled:         true,
			OutputDir:       "dist",
			GenerateSitemap: true,
			GenerateFeeds:   true,
		},
		Preview: PreviewConfig{
			Enabled:    true,
			Addr:       ":8080",
			LiveReload: true,
		},
		Search: SearchConfig{
			Enabled: true,
			Dir:     ".blog/search",
		},
		Scheduler: SchedulerConfig{
			Enabled:   true,
			Interval:  Duration(time.Minute),
			BatchSize: 50,
		},
		Lint: LintConfig{
			DuplicateThreshold: 0.6,
			ShingleSize:        5,
		},
		Export: ExportConfig{
			Dir: "exports",
		},
		Features: Features{
			Versioning: true,
			Scheduling: true,
			Search:     true,
			Preview:    true,
			Generator:  true,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Content.Dir) == "" {
		return ErrContentDirRequired
	}
	if status := strings.TrimSpace(cfg.Content.DefaultStatus); status != "" {
		if !domain.Status(strings.ToLower(status)).IsValid() {
			return fmt.Errorf("%w: %s", ErrDefaultStatusInvalid, status)
		}
	}
	if strings.TrimSpace(cfg.Storage.DSN) == "" {
		return ErrStorageDSNRequired
	}
	if err := validateStorageSection(cfg.Storage); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageConfigInvalid, err)
	}
	if cfg.Generator.Enabled {
		if !cfg.Features.Generator {
			return ErrGeneratorFeatureRequired
		}
		if strings.TrimSpace(cfg.Generator.OutputDir) == "" {
			return ErrGeneratorOutputDirRequired
		}
	}
	if cfg.Preview.Enabled && !cfg.Features.Preview {
		return ErrPreviewFeatureRequired
	}
	if hash := strings.TrimSpace(cfg.Preview.PasswordHash); hash != "" && !strings.HasPrefix(hash, "$2") {
		return ErrPreviewPasswordNotHashed
	}
	if cfg.Search.Enabled {
		if !cfg.Features.Search {
			return ErrSearchFeatureRequired
		}
		if strings.TrimSpace(cfg.Search.Dir) == "" {
			return ErrSearchDirRequired
		}
	}
	if cfg.Scheduler.Enabled {
		if !cfg.Features.Scheduling {
			return ErrSchedulerFeatureRequired
		}
		if cfg.Scheduler.Interval <= 0 {
			return ErrSchedulerIntervalInvalid
		}
	}
	if cfg.Cache.TTL < 0 {
		return ErrCacheTTLInvalid
	}
	if threshold := cfg.Lint.DuplicateThreshold; threshold != 0 && (threshold <= 0 || threshold > 1) {
		return fmt.Errorf("%w: %v", ErrDuplicateThresholdInvalid, threshold)
	}
	if cfg.Lint.ShingleSize < 0 {
		return fmt.Errorf("%w: %d", ErrShingleSizeInvalid, cfg.Lint.ShingleSize)
	}
	if len(cfg.Lint.MetadataSchema) > 0 {
		if err := validation.ValidateSchema(cfg.Lint.MetadataSchema); err != nil {
			return fmt.Errorf("%w: %v", ErrMetadataSchemaInvalid, err)
		}
	}
	provider := normalizeProvider(cfg.Logging.Provider)
	if provider == "" {
		return ErrLoggingProviderRequired
	}
	if !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

// LoadFile reads a YAML config over the defaults, expanding ${VAR}
// environment references first. Unknown keys are an error; a missing or
// empty file keeps the defaults.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("blog config: read %s: %w", path, err)
	}

	decoder := yaml.NewDecoder(strings.NewReader(os.ExpandEnv(string(raw))))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("blog config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// validateStorageSection checks the storage section against the JSON schema
// published for it, so YAML files and configs built in code fail the same
// way. Driver identifiers are matched after normalization.
func validateStorageSection(sc StorageConfig) error {
	schema, err := storage.ConfigSchema()
	if err != nil {
		return err
	}
	return validation.ValidatePayload(schema, map[string]any{
		"driver": strings.ToLower(strings.TrimSpace(sc.Driver)),
		"dsn":    strings.TrimSpace(sc.DSN),
	})
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
