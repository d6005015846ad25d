package gallery

import (
	"context"
	"path/filepath"
	"testing"
)

func openCacheStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "gallery.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestLoadServesFromCache(t *testing.T) {
	store := openCacheStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "a.jpg", 0, []float32{1, 0}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Put(ctx, "b.jpg", 1, []float32{0, 1}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	entries, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}

	// A write that sidesteps Put must not be visible until invalidation.
	if _, err := store.db.ExecContext(ctx, `DELETE FROM gallery`); err != nil {
		t.Fatalf("delete rows: %v", err)
	}
	entries, err = store.Load(ctx)
	if err != nil {
		t.Fatalf("Load cached: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("cached entries = %d, want 2", len(entries))
	}
}

func TestPutInvalidatesCache(t *testing.T) {
	store := openCacheStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "a.jpg", 0, []float32{1, 0}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := store.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := store.Put(ctx, "b.jpg", 1, []float32{0, 1}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	entries, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load after Put: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2 after invalidation", len(entries))
	}
}
