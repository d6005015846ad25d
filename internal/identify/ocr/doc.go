// Package ocr reads text off item images and turns it into identification
// signals: raw lines, product identifiers, hazard keywords, and brand hints.
// Text recognition itself is delegated to a pluggable Engine asked to read
// named regions (care-label strip, center tag, full frame).
package ocr
