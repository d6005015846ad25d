package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteImageDir fills dir with one small fixture file per name. Contents are
// derived from the name so hash embeddings differ between files.
func WriteImageDir(t testing.TB, dir string, names ...string) {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	for _, name := range names {
		target := filepath.Join(dir, name)
		if err := os.WriteFile(target, []byte("img:"+name), 0o644); err != nil {
			t.Fatalf("write %s: %v", target, err)
		}
	}
}
