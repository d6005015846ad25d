// Package identify is the analysis pipeline. It fans item photos out to the
// detector stages (barcode, OCR, vision description, visual neighbors), runs
// each under its own deadline, classifies the recognized text against the
// keyword rules, and fuses the evidence into one scored identification with
// a recommended next step.
package identify
