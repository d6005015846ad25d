package identify

import (
	"fmt"
	"strings"
)

// Stage names one detector stage.
type Stage string

const (
	StageBarcode   Stage = "barcode"
	StageOCR       Stage = "ocr"
	StageVision    Stage = "vision"
	StageNeighbors Stage = "neighbors"
)

// Stages lists every detector stage in pipeline order.
var Stages = []Stage{StageBarcode, StageOCR, StageVision, StageNeighbors}

// stageAliases carries the stage names the HTTP and CLI surfaces have
// always accepted for the vision and neighbor stages.
var stageAliases = map[string]Stage{
	"vlm":  StageVision,
	"clip": StageNeighbors,
}

// ParseStage resolves a raw stage name, case-insensitively, accepting the
// vlm and clip aliases alongside the canonical names.
func ParseStage(raw string) (Stage, bool) {
	name := strings.ToLower(strings.TrimSpace(raw))
	if stage, ok := stageAliases[name]; ok {
		return stage, true
	}
	for _, known := range Stages {
		if Stage(name) == known {
			return known, true
		}
	}
	return "", false
}

// Options tune one analysis call. The zero value runs every configured stage
// with configured deadlines.
type Options struct {
	// EnableStages overrides the configured stage toggles per stage. A
	// missing key keeps the configured default.
	EnableStages map[Stage]bool
	// AllowFilenameText permits detectors to read planted hints from image
	// filenames, overriding the configured default when set.
	AllowFilenameText *bool
	// AllowedCategories restricts the keyword classifier to these
	// categories. Empty means no restriction.
	AllowedCategories []string
	// MockID selects a vision fixture by name instead of the image filename
	// stem.
	MockID string
	// TimeoutMS overrides every stage deadline when positive.
	TimeoutMS int
	// DebugDir, when set, receives one JSON artifact per analysis for
	// offline inspection.
	DebugDir string
}

// Validate rejects option values the pipeline cannot honor.
func (o Options) Validate() error {
	if o.TimeoutMS < 0 {
		return fmt.Errorf("timeout_ms must not be negative: %d", o.TimeoutMS)
	}
	for stage := range o.EnableStages {
		switch stage {
		case StageBarcode, StageOCR, StageVision, StageNeighbors:
		default:
			return fmt.Errorf("unknown stage %q", stage)
		}
	}
	return nil
}
