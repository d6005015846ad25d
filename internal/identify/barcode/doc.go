// Package barcode finds product codes on item images. Decoding is delegated
// to a pluggable Decoder tried across four rotations per image; results are
// tagged with their symbol format. A filename fallback covers fixtures and
// demos when explicitly allowed.
package barcode
