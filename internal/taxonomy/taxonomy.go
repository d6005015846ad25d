package taxonomy

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Entry is one canonical category with its match synonyms.
type Entry struct {
	ID       string   `json:"id"`
	Synonyms []string `json:"synonyms"`
}

// Fallback is the category assigned when no entry matches.
const Fallback = "misc"

// Catalog resolves free-text hints to canonical categories and brand names.
type Catalog struct {
	entries    []Entry
	brands     map[string]string
	brandKeys  []string
	rnRegistry map[string]string
}

// New builds a catalog from category entries, a brand lexicon keyed by
// folded brand text, and an RN registry keyed by canonical RN form.
func New(entries []Entry, brandLexicon map[string]string, rnRegistry map[string]string) *Catalog {
	c := &Catalog{
		entries:    entries,
		brands:     make(map[string]string, len(brandLexicon)),
		rnRegistry: make(map[string]string, len(rnRegistry)),
	}
	for key, name := range brandLexicon {
		folded := BrandKey(key)
		if folded == "" {
			continue
		}
		c.brands[folded] = name
	}
	c.brandKeys = make([]string, 0, len(c.brands))
	for key := range c.brands {
		c.brandKeys = append(c.brandKeys, key)
	}
	sort.Strings(c.brandKeys)
	for rn, name := range rnRegistry {
		c.rnRegistry[rnKey(rn)] = name
	}
	return c
}

// CanonicalCategory maps a free-text hint to a canonical category id. An
// exact id match wins, then the first entry with a synonym contained in the
// hint. Unmatched hints land in the fallback category.
func (c *Catalog) CanonicalCategory(hint string) string {
	hint = strings.ToLower(strings.TrimSpace(hint))
	if hint == "" {
		return Fallback
	}
	for _, entry := range c.entries {
		if entry.ID == hint {
			return entry.ID
		}
		for _, syn := range entry.Synonyms {
			if strings.Contains(hint, syn) {
				return entry.ID
			}
		}
	}
	return Fallback
}

// NormalizeBrand resolves brand text to its canonical lexicon form. Exact
// folded-key matches win, then a prefix match against lexicon keys. Unknown
// brands pass through unchanged.
func (c *Catalog) NormalizeBrand(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ""
	}
	key := BrandKey(trimmed)
	if name, ok := c.brands[key]; ok {
		return name
	}
	for _, candidate := range c.brandKeys {
		if strings.HasPrefix(key, candidate) {
			return c.brands[candidate]
		}
	}
	return trimmed
}

// BrandForRN looks up the garment brand registered under an RN identifier.
func (c *Catalog) BrandForRN(rn string) (string, bool) {
	name, ok := c.rnRegistry[rnKey(rn)]
	return name, ok
}

var foldTransformer = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// BrandKey folds brand text into its lookup form: diacritics stripped,
// lowercased, non-alphanumerics removed.
func BrandKey(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		folded = s
	}
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func rnKey(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToUpper(s) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
