package testsupport

import (
	"path/filepath"
	"testing"

	"clearout/internal/config"
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
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.GalleryDB = filepath.Join(base, "data", "gallery.db")
	cfgVal.Paths.APIBind = "127.0.0.1:0"

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

// WithAPIToken sets the bearer token guarding the identify endpoint.
func WithAPIToken(token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.APIToken = token
	}
}

// WithVisionFixtures points the mock vision provider at a fixtures directory.
func WithVisionFixtures(dir string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Vision.FixturesDir = dir
	}
}

// WithCalibrationPath sets the calibration map location on the test config.
func WithCalibrationPath(path string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Calibration.Path = path
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
