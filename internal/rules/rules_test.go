package rules_test

import (
	"testing"

	"clearout/internal/rules"
)

func testClassifier(t *testing.T) *rules.Classifier {
	t.Helper()
	c, err := rules.NewClassifier([]rules.Rule{
		{Pattern: `\bisbn\b|paperback|hardcover`, Category: "Media > Books"},
		{Pattern: `magsafe|\bac power adapter\b|\b85w\b|\badapter\b`, Category: "Electronics > Computers > Computer Accessories > Laptop Chargers & Adapters", Brand: "Apple"},
		{Pattern: `\bjacket\b|outer shell|\brn\s*[:#]?\s*\d{5,}\b`, Category: "Apparel & Accessories > Clothing > Outerwear > Jackets"},
		{Pattern: `cast iron|skillet|\blodge\b`, Category: "Home & Garden > Kitchen & Dining > Cookware", Brand: "Lodge"},
	})
	if err != nil {
		t.Fatalf("NewClassifier: %v", err)
	}
	return c
}

func TestClassifyAdapter(t *testing.T) {
	c := testClassifier(t)
	got := c.ClassifyFromText("Apple MagSafe AC Power Adapter model A1718 85W", nil)
	if got.Category != "Electronics > Computers > Computer Accessories > Laptop Chargers & Adapters" {
		t.Fatalf("unexpected category: %q", got.Category)
	}
	if got.Brand != "Apple" {
		t.Fatalf("unexpected brand: %q", got.Brand)
	}
	if got.Model != "A1718" {
		t.Fatalf("unexpected model: %q", got.Model)
	}
	if len(got.Signals) < 2 {
		t.Fatalf("expected multiple signals, got %v", got.Signals)
	}
}

func TestClassifyISBN(t *testing.T) {
	c := testClassifier(t)
	got := c.ClassifyFromText("ISBN 9780306406157", nil)
	if got.Category != "Media > Books" {
		t.Fatalf("unexpected category: %q", got.Category)
	}
	if got.Brand != "" {
		t.Fatalf("expected no brand, got %q", got.Brand)
	}
}

func TestClassifyJacketRN(t *testing.T) {
	c := testClassifier(t)
	got := c.ClassifyFromText("Outer shell 100% cotton RN12345 Jacket", nil)
	if got.Category != "Apparel & Accessories > Clothing > Outerwear > Jackets" {
		t.Fatalf("unexpected category: %q", got.Category)
	}
}

func TestClassifyRespectsAllowedCategories(t *testing.T) {
	c := testClassifier(t)
	allowed := []string{"Media > Books"}
	got := c.ClassifyFromText("cast iron skillet", allowed)
	if got.Category != "" {
		t.Fatalf("expected no match outside allowed set, got %q", got.Category)
	}
}

func TestClassifyMostSignalsWins(t *testing.T) {
	c := testClassifier(t)
	got := c.ClassifyFromText("lodge cast iron skillet with isbn sticker", nil)
	if got.Category != "Home & Garden > Kitchen & Dining > Cookware" {
		t.Fatalf("expected cookware to win on signal count, got %q", got.Category)
	}
	if len(got.Signals) != 3 {
		t.Fatalf("expected 3 signals, got %v", got.Signals)
	}
}

func TestClassifyNoMatch(t *testing.T) {
	c := testClassifier(t)
	got := c.ClassifyFromText("completely unrelated text", nil)
	if got.Category != "" || got.Brand != "" || len(got.Signals) != 0 {
		t.Fatalf("expected empty match, got %+v", got)
	}
}

func TestNewClassifierRejectsBadPattern(t *testing.T) {
	_, err := rules.NewClassifier([]rules.Rule{{Pattern: `([`, Category: "x"}})
	if err == nil {
		t.Fatal("expected compile error")
	}
}

func TestDonateFriendly(t *testing.T) {
	for _, category := range []string{"books", "clothing", "toys"} {
		if !rules.DonateFriendly(category) {
			t.Errorf("expected %q donate-friendly", category)
		}
	}
	if rules.DonateFriendly("electronics") {
		t.Error("expected electronics not donate-friendly")
	}
}
