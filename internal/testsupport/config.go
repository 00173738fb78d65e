package testsupport

import (
	"path/filepath"
	"testing"

	"tscproj/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// History is disabled and logs stay on stderr unless an option enables them.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Logging.Dir = ""
	cfgVal.Logging.Level = "error"
	cfgVal.History.Enabled = false
	cfgVal.History.Path = filepath.Join(base, "data", "history.db")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return builder.cfg
}

// WithHistory enables the run journal inside the test's temp directory.
func WithHistory() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = true
	}
}

// WithLogDir enables per-run log files inside the test's temp directory.
func WithLogDir() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Logging.Dir = filepath.Join(b.baseDir, "logs")
	}
}

// WithBackup toggles writing a backup before in-place saves.
func WithBackup(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Output.Backup = enabled
	}
}

// WithWorkers sets the batch worker count.
func WithWorkers(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Batch.Workers = n
	}
}
