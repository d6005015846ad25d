package testsupport

import (
	"testing"

	"clearout/internal/config"
	"clearout/internal/gallery"
)

// MustOpenGallery opens the configured gallery store for tests and registers
// cleanup.
func MustOpenGallery(t testing.TB, cfg *config.Config) *gallery.Store {
	t.Helper()

	store, err := gallery.Open(cfg.Paths.GalleryDB)
	if err != nil {
		t.Fatalf("gallery.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
