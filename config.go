package blog

import "github.com/goliatone/go-blog/internal/runtimeconfig"

var (
	ErrContentDirRequired         = runtimeconfig.ErrContentDirRequired
	ErrDefaultStatusInvalid       = runtimeconfig.ErrDefaultStatusInvalid
	ErrStorageDSNRequired         = runtimeconfig.ErrStorageDSNRequired
	ErrStorageConfigInvalid       = runtimeconfig.ErrStorageConfigInvalid
	ErrCacheTTLInvalid            = runtimeconfig.ErrCacheTTLInvalid
	ErrGeneratorFeatureRequired   = runtimeconfig.ErrGeneratorFeatureRequired
	ErrGeneratorOutputDirRequired = runtimeconfig.ErrGeneratorOutputDirRequired
	ErrPreviewFeatureRequired     = runtimeconfig.ErrPreviewFeatureRequired
	ErrPreviewPasswordNotHashed   = runtimeconfig.ErrPreviewPasswordNotHashed
	ErrSearchFeatureRequired      = runtimeconfig.ErrSearchFeatureRequired
	ErrSearchDirRequired          = runtimeconfig.ErrSearchDirRequired
	ErrSchedulerFeatureRequired   = runtimeconfig.ErrSchedulerFeatureRequired
	ErrSchedulerIntervalInvalid   = runtimeconfig.ErrSchedulerIntervalInvalid
	ErrDuplicateThresholdInvalid  = runtimeconfig.ErrDuplicateThresholdInvalid
	ErrShingleSizeInvalid         = runtimeconfig.ErrShingleSizeInvalid
	ErrMetadataSchemaInvalid      = runtimeconfig.ErrMetadataSchemaInvalid
	ErrLoggingProviderRequired    = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown     = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid        = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid       = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config          = runtimeconfig.Config
	SiteConfig      = runtimeconfig.SiteConfig
	ContentConfig   = runtimeconfig.ContentConfig
	StorageConfig   = runtimeconfig.StorageConfig
	CacheConfig     = runtimeconfig.CacheConfig
	GeneratorConfig = runtimeconfig.GeneratorConfig
	PreviewConfig   = runtimeconfig.PreviewConfig
	SearchConfig    = runtimeconfig.SearchConfig
	SchedulerConfig = runtimeconfig.SchedulerConfig
	LintConfig      = runtimeconfig.LintConfig
	ExportConfig    = runtimeconfig.ExportConfig
	Features        = runtimeconfig.Features
	LoggingConfig   = runtimeconfig.LoggingConfig
	Duration        = runtimeconfig.Duration
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads a YAML config file, layering it over DefaultConfig with
// environment variable expansion.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.LoadFile(path)
}
