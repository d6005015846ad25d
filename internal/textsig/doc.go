// Package textsig extracts structured signals from free text: product
// identifiers (ISBN, FCC ID, RN, CA, model numbers), hazard keywords, and
// garment registration numbers. The OCR and fusion layers lean on it to turn
// raw label text into evidence.
package textsig
