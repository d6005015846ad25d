// Package gallery persists the visual-neighbor reference gallery in SQLite:
// one row per reference image holding its precomputed embedding. Imports
// re-embed a directory of images under a file lock; the analyzer loads the
// whole gallery into memory for scoring.
package gallery
