package textsig

import "regexp"

var (
	isbnPattern  = regexp.MustCompile(`(?i)\b(?:ISBN(?:-1[03])?:?\s*)?((?:97[89][ -]?)?[0-9][0-9 -]{8,}[0-9X])\b`)
	fccPattern   = regexp.MustCompile(`(?i)\bFCC\s*ID\s*[:#]?\s*([A-Z0-9-]{5,})\b`)
	rnPattern    = regexp.MustCompile(`(?i)\bRN\s*[:#]?\s*(\d{5,})\b`)
	caPattern    = regexp.MustCompile(`(?i)\bCA\s*[:#]?\s*(\d{5,})\b`)
	modelPattern = regexp.MustCompile(`(?i)\b(?:model|type|p/?n|m/?n|part|no\.)\s*[:#]?\s*([A-Z0-9-]{2,})\b`)

	idPatterns = []*regexp.Regexp{isbnPattern, fccPattern, rnPattern, caPattern, modelPattern}
)

var hazardPatterns = []struct {
	label   string
	pattern *regexp.Regexp
}{
	{"battery", regexp.MustCompile(`(?i)(lithium|li-ion|nimh|battery)`)},
	{"aerosol", regexp.MustCompile(`(?i)(aerosol|propane|butane|co2|pressur)`)},
	{"chemical", regexp.MustCompile(`(?i)(flammable|corrosive|acid|alkali|chemical)`)},
	{"blade", regexp.MustCompile(`(?i)(blade|knife|razor|cutter)`)},
	{"pressurized", regexp.MustCompile(`(?i)(pressur|compressed)`)},
}

// ExtractIDs pulls identifier candidates out of free text. Each recognizer
// contributes at most its first match; results are deduplicated in order.
func ExtractIDs(text string) []string {
	var out []string
	seen := make(map[string]struct{}, len(idPatterns))
	for _, pattern := range idPatterns {
		match := pattern.FindStringSubmatch(text)
		if len(match) < 2 || match[1] == "" {
			continue
		}
		if _, ok := seen[match[1]]; ok {
			continue
		}
		seen[match[1]] = struct{}{}
		out = append(out, match[1])
	}
	return out
}

// DetectHazards scans text for hazard keywords and returns the matching
// hazard labels in recognizer order.
func DetectHazards(text string) []string {
	var out []string
	for _, hazard := range hazardPatterns {
		if hazard.pattern.MatchString(text) {
			out = append(out, hazard.label)
		}
	}
	return out
}

var rnAllPattern = regexp.MustCompile(`(?i)\bRN\s*[:#]?\s*(\d{5,})\b`)

// ExtractRN returns every registered identification number in text, in
// canonical RN-prefixed form, deduplicated in order of appearance.
func ExtractRN(text string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, match := range rnAllPattern.FindAllStringSubmatch(text, -1) {
		rn := "RN" + match[1]
		if _, ok := seen[rn]; ok {
			continue
		}
		seen[rn] = struct{}{}
		out = append(out, rn)
	}
	return out
}
