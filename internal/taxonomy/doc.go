// Package taxonomy maps free-text category hints to a canonical category
// tree and normalizes brand mentions against a lexicon, including RN garment
// registry lookups. The data itself (entries, lexicon, registry) is supplied
// by the refdata package; this package holds only the matching rules.
package taxonomy
