package testsupport

import (
	"path/filepath"
	"testing"

	"curator/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.SourceDir = filepath.Join(base, "inbox")
	cfg.Paths.LibraryDir = filepath.Join(base, "library")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.DBDir = filepath.Join(base, "state")
	cfg.Taxonomy.Path = filepath.Join(base, "taxonomy.yaml")
	cfg.Inference.RequestsPerSecond = 0
	cfg.Inference.RetryBaseMillis = 1
	cfg.Inference.RetryMaxMillis = 5

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithBackend sets the inference backend selection on the test config.
func WithBackend(backend, baseURL string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Inference.Backend = backend
		cfg.Inference.BaseURL = baseURL
	}
}

// WithFallback overrides the fallback category on the test config.
func WithFallback(category string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Taxonomy.FallbackCategory = category
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.SourceDir)
}
