package gallery_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"clearout/internal/gallery"
	"clearout/internal/identify/neighbors"
	"clearout/internal/testsupport"
)

func openStore(t *testing.T) *gallery.Store {
	t.Helper()
	return testsupport.MustOpenGallery(t, testsupport.NewConfig(t))
}

func TestPutAndLoadOrdered(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "b.jpg", 1, []float32{0, 1}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Put(ctx, "a.jpg", 0, []float32{1, 0}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	entries, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ID != "a.jpg" || entries[1].ID != "b.jpg" {
		t.Fatalf("unexpected order: %v %v", entries[0].ID, entries[1].ID)
	}
	if entries[0].Vec[0] != 1 || entries[0].Vec[1] != 0 {
		t.Fatalf("vector round trip failed: %v", entries[0].Vec)
	}
}

func TestPutReplacesExisting(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "x.jpg", 0, []float32{1}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Put(ctx, "x.jpg", 3, []float32{2}); err != nil {
		t.Fatalf("Put replace: %v", err)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 entry, got %d", count)
	}
	entries, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if entries[0].Vec[0] != 2 {
		t.Fatalf("expected replaced vector, got %v", entries[0].Vec)
	}
}

func TestPutRejectsEmptyID(t *testing.T) {
	store := openStore(t)
	if err := store.Put(context.Background(), "  ", 0, []float32{1}); err == nil {
		t.Fatal("expected error for empty id")
	}
}

func TestImportDir(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	dir := t.TempDir()
	testsupport.WriteImageDir(t, dir, "mug.jpg", "book.jpg", "skillet.jpg")

	imported, err := store.ImportDir(ctx, dir, neighbors.HashEmbedder{})
	if err != nil {
		t.Fatalf("ImportDir: %v", err)
	}
	if imported != 3 {
		t.Fatalf("expected 3 imports, got %d", imported)
	}

	entries, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].ID != "book.jpg" || entries[1].ID != "mug.jpg" || entries[2].ID != "skillet.jpg" {
		t.Fatalf("unexpected filename order: %v %v %v", entries[0].ID, entries[1].ID, entries[2].ID)
	}
	if len(entries[0].Vec) != neighbors.Dim {
		t.Fatalf("unexpected embedding dim: %d", len(entries[0].Vec))
	}

	// Re-import replaces previous contents.
	if err := os.Remove(filepath.Join(dir, "mug.jpg")); err != nil {
		t.Fatal(err)
	}
	imported, err = store.ImportDir(ctx, dir, nil)
	if err != nil {
		t.Fatalf("ImportDir: %v", err)
	}
	if imported != 2 {
		t.Fatalf("expected 2 imports, got %d", imported)
	}
	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected previous entries cleared, got %d", count)
	}
}
