package identify

import (
	"strings"

	"clearout/internal/calibration"
	"clearout/internal/identify/barcode"
	"clearout/internal/identify/neighbors"
	"clearout/internal/identify/ocr"
	"clearout/internal/identify/vision"
	"clearout/internal/rules"
	"clearout/internal/taxonomy"
	"clearout/internal/textsig"
)

// maxEvidenceLines caps how much recognized text a result carries.
const maxEvidenceLines = 10

type fusionInput struct {
	codes     []string
	ocr       ocr.Result
	desc      vision.Description
	neighbors []neighbors.Neighbor
	rule      rules.Match
}

// fuse combines detector evidence into a scored identification. Signal
// weights come from configuration; the partial factors reflect how reliable
// each signal is relative to a decoded product code.
func (a *Analyzer) fuse(in fusionInput) Result {
	joined := joinLines(in.ocr.Lines, "\n")

	brand := a.resolveBrand(in, joined)
	model := in.desc.ModelGuess
	if model == "" {
		model = in.rule.Model
	}
	canonical := a.canonicalCategory(in, joined)

	w := a.cfg.Weights
	score := 0.0
	if len(in.codes) > 0 {
		score += w.Code
	}
	if model != "" {
		score += 0.8 * w.Model
	}
	if brand != "" {
		score += 0.7 * w.Brand
	}
	if best := bestNeighborScore(in.neighbors); best > 0 {
		score += w.Neighbor * best
	}
	if in.desc.Category != "" {
		score += 0.6 * w.Vision
	}
	if len(in.ocr.Lines) > 0 {
		score += 0.5 * w.OCRText
	}
	score = clamp01(score)
	confidence := calibration.Apply(score, a.deps.Calibration)

	resolution := ResolutionCategoryOnly
	switch {
	case len(in.codes) > 0:
		resolution = ResolutionSKU
	case brand != "" && model != "":
		resolution = ResolutionBrandModel
	case brand != "":
		resolution = ResolutionBrandCategory
	}

	hazards := mergeHazards(in.desc.Hazards, in.ocr.Hazards)
	next := a.nextStep(resolution, confidence, hazards, canonical)

	lines := in.ocr.Lines
	if len(lines) > maxEvidenceLines {
		lines = lines[:maxEvidenceLines]
	}

	return Result{
		ResolutionLevel: resolution,
		Attributes: Attributes{
			Brand:    brand,
			Model:    model,
			Material: firstOf(in.desc.Materials),
			Category: a.displayCategory(in),
		},
		Hazards:    hazards,
		Confidence: confidence,
		Evidence: Evidence{
			Codes:     orEmpty(in.codes),
			OCR:       orEmpty(lines),
			Logos:     orEmpty(in.ocr.BrandHints),
			Neighbors: orEmptyNeighbors(in.neighbors),
		},
		NextStep: next,
	}
}

// resolveBrand prefers the vision guess, then an RN registry hit in the
// recognized text, then the keyword rule.
func (a *Analyzer) resolveBrand(in fusionInput, joined string) string {
	if brand := a.normalizeBrand(in.desc.BrandGuess); brand != "" {
		return brand
	}
	if a.deps.Catalog != nil {
		for _, rn := range textsig.ExtractRN(joined) {
			if mapped, ok := a.deps.Catalog.BrandForRN(rn); ok {
				return mapped
			}
		}
	}
	return in.rule.Brand
}

func (a *Analyzer) canonicalCategory(in fusionInput, joined string) string {
	hint := in.desc.Category
	if hint == "" {
		hint = strings.ReplaceAll(joined, "\n", " ")
	}
	if a.deps.Catalog == nil {
		return taxonomy.Fallback
	}
	return a.deps.Catalog.CanonicalCategory(hint)
}

// displayCategory is the marketplace category surfaced in attributes: the
// keyword rule wins, then a code-implied category, then misc.
func (a *Analyzer) displayCategory(in fusionInput) string {
	if in.rule.Category != "" {
		return in.rule.Category
	}
	for _, code := range in.codes {
		if mapped := barcode.MapCodeToCategory(code); mapped != "" {
			return mapped
		}
	}
	return taxonomy.Fallback
}

func (a *Analyzer) nextStep(resolution string, confidence float64, hazards []string, canonical string) string {
	next := NextNeedsMoreInfo
	switch {
	case resolution == ResolutionSKU:
		next = NextSell
	case resolution == ResolutionBrandModel && confidence >= a.cfg.Thresholds.SellConfidence:
		next = NextSell
	case len(hazards) > 0:
		next = NextRecycle
	case rules.DonateFriendly(canonical):
		next = NextGive
	}
	if next == NextSell && containsAny(hazards, "battery", "aerosol") {
		next = NextRecycle
	}
	return next
}

func (a *Analyzer) normalizeBrand(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if a.deps.Catalog == nil {
		return raw
	}
	return a.deps.Catalog.NormalizeBrand(raw)
}

func mergeHazards(groups ...[]string) []string {
	var merged []string
	seen := make(map[string]struct{})
	for _, group := range groups {
		for _, hazard := range group {
			hazard = strings.ToLower(strings.TrimSpace(hazard))
			if hazard == "" {
				continue
			}
			if _, dup := seen[hazard]; dup {
				continue
			}
			seen[hazard] = struct{}{}
			merged = append(merged, hazard)
		}
	}
	return orEmpty(merged)
}

func bestNeighborScore(matches []neighbors.Neighbor) float64 {
	best := 0.0
	for _, match := range matches {
		if match.Score > best {
			best = match.Score
		}
	}
	return best
}

func joinLines(lines []string, sep string) string {
	return strings.Join(lines, sep)
}

func firstOf(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func containsAny(values []string, wanted ...string) bool {
	for _, value := range values {
		for _, w := range wanted {
			if value == w {
				return true
			}
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func orEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func orEmptyNeighbors(values []neighbors.Neighbor) []neighbors.Neighbor {
	if values == nil {
		return []neighbors.Neighbor{}
	}
	return values
}
