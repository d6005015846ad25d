// Package refdata serves the reference data sets behind identification:
// keyword classification rules, the canonical category taxonomy, the brand
// lexicon, and the RN garment registry. Embedded defaults ship with the
// binary; a configured refdata directory overrides them file by file.
package refdata
