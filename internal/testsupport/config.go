package testsupport

import (
	"path/filepath"
	"testing"

	"inkcast/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.LLM.Model = "test-model"
	cfgVal.LLM.BaseURL = "http://127.0.0.1:0"
	cfgVal.Paths.InboxDir = filepath.Join(base, "inbox")
	cfgVal.Paths.LibraryDir = filepath.Join(base, "library")
	cfgVal.Paths.PodcastDir = filepath.Join(base, "podcast")
	cfgVal.Paths.TemplateDir = filepath.Join(base, "templates")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Publish.Enabled = false

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithLLM overrides the translation endpoint on the test config.
func WithLLM(baseURL, model string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.LLM.BaseURL = baseURL
		b.cfg.LLM.Model = model
	}
}

// WithPublishEnabled turns on git publishing for the test config.
func WithPublishEnabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Publish.Enabled = true
	}
}

// WithChunkSize overrides the translation chunk size on the test config.
func WithChunkSize(size int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Translation.ChunkSize = size
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.InboxDir)
}
