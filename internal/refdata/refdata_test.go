package refdata_test

import (
	"os"
	"path/filepath"
	"testing"

	"clearout/internal/refdata"
)

func TestEmbeddedDefaults(t *testing.T) {
	store := refdata.NewStore("")

	ruleSet, err := store.Rules()
	if err != nil {
		t.Fatalf("Rules: %v", err)
	}
	if len(ruleSet) == 0 {
		t.Fatal("expected embedded rules")
	}

	classifier, err := store.Classifier()
	if err != nil {
		t.Fatalf("Classifier: %v", err)
	}
	match := classifier.ClassifyFromText("ISBN 9780306406157", nil)
	if match.Category != "Media > Books" {
		t.Fatalf("unexpected category: %q", match.Category)
	}

	catalog, err := store.Catalog()
	if err != nil {
		t.Fatalf("Catalog: %v", err)
	}
	if got := catalog.CanonicalCategory("denim jacket"); got != "clothing" {
		t.Fatalf("CanonicalCategory = %q", got)
	}
	if got := catalog.NormalizeBrand("levis"); got != "Levi's" {
		t.Fatalf("NormalizeBrand = %q", got)
	}
	if brand, ok := catalog.BrandForRN("RN12345"); !ok || brand != "Levi's" {
		t.Fatalf("BrandForRN = %q %v", brand, ok)
	}
}

func TestDirectoryOverridesEmbedded(t *testing.T) {
	dir := t.TempDir()
	override := `[{"pattern":"\\bwidget\\b","category":"Widgets","brand":"Acme"}]`
	if err := os.WriteFile(filepath.Join(dir, "keyword_rules.json"), []byte(override), 0o644); err != nil {
		t.Fatal(err)
	}

	store := refdata.NewStore(dir)
	classifier, err := store.Classifier()
	if err != nil {
		t.Fatalf("Classifier: %v", err)
	}
	match := classifier.ClassifyFromText("one widget here", nil)
	if match.Category != "Widgets" || match.Brand != "Acme" {
		t.Fatalf("unexpected match: %+v", match)
	}
	if got := classifier.ClassifyFromText("ISBN 9780306406157", nil); got.Category != "" {
		t.Fatalf("expected embedded rules replaced, got %q", got.Category)
	}

	// Taxonomy falls back to embedded defaults.
	catalog, err := store.Catalog()
	if err != nil {
		t.Fatalf("Catalog: %v", err)
	}
	if got := catalog.CanonicalCategory("skillet"); got != "kitchenware" {
		t.Fatalf("CanonicalCategory = %q", got)
	}
}

func TestMalformedOverrideSurfacesError(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "taxonomy.json"), []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	store := refdata.NewStore(dir)
	if _, err := store.Catalog(); err == nil {
		t.Fatal("expected parse error")
	}
}
