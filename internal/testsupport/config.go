package testsupport

import (
	"path/filepath"
	"testing"

	"tccretro/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Feedback is disabled unless a test opts in.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.OutputDir = filepath.Join(base, "reports")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Feedback.Enabled = false
	cfgVal.Feedback.APIKey = ""

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

// WithFeedback enables feedback against provider with a fixed key and base URL.
func WithFeedback(provider, apiKey, baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Feedback.Enabled = true
		b.cfg.Feedback.Provider = provider
		b.cfg.Feedback.APIKey = apiKey
		b.cfg.Feedback.BaseURL = baseURL
		b.cfg.Feedback.Model = config.DefaultModel(provider)
	}
}

// WithRowCap overrides the prompt sample cap.
func WithRowCap(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Analysis.RowCap = n
	}
}

// WithCharts toggles chart rendering.
func WithCharts(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Analysis.Charts = enabled
	}
}

// WithFormat sets the report format.
func WithFormat(format string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Report.Format = format
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.OutputDir)
}
