package testsupport

import (
	"path/filepath"
	"testing"

	"merakireboot/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with a unique temp state directory per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.API.RequestTimeout = 5
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.History.Path = filepath.Join(base, "state", "history.db")

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

// WithBaseURL points the Dashboard client at a fake server.
func WithBaseURL(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.API.BaseURL = baseURL
	}
}

// WithHistory enables the run ledger.
func WithHistory() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = true
	}
}

// WithAbortOnListFailure opts into aborting when the device list cannot be fetched.
func WithAbortOnListFailure() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Reboot.AbortOnListFailure = true
	}
}

// WithSingleRun enables the per-network run lock.
func WithSingleRun() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Reboot.SingleRun = true
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
