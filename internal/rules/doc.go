// Package rules is the baseline keyword classifier: regex rules over OCR
// text that map label phrases to marketplace categories and brands. It is
// deliberately dumb and fast; the fusion layer weighs its output against the
// other detectors.
package rules
