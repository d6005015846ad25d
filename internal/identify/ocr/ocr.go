package ocr

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"clearout/internal/logging"
	"clearout/internal/taxonomy"
	"clearout/internal/textsig"
)

// Region names a crop of the item image worth reading. Engines own the pixel
// math; detectors only pick which regions to try.
type Region string

const (
	// RegionFull is the whole frame.
	RegionFull Region = "full"
	// RegionBottomStrip is the bottom 30% of the frame, where care labels
	// and stamps usually sit.
	RegionBottomStrip Region = "bottom_strip"
	// RegionCenterTag is the center 50%x50% of the frame, aimed at sewn-in
	// tags.
	RegionCenterTag Region = "center_tag"
)

// Engine recognizes text in one region of an image.
type Engine interface {
	Recognize(ctx context.Context, image []byte, region Region) (string, error)
}

// NopEngine recognizes nothing. It stands in when no OCR runtime is wired,
// leaving filename tokens as the only text source.
type NopEngine struct{}

func (NopEngine) Recognize(context.Context, []byte, Region) (string, error) {
	return "", nil
}

// Result carries recognized text plus the signals extracted from it.
type Result struct {
	Lines      []string
	IDs        []string
	Hazards    []string
	BrandHints []string
}

// Request describes one recognition pass.
type Request struct {
	Images            [][]byte
	ImageNames        []string
	AllowFilenameText bool
}

const (
	maxLines      = 50
	maxBrandHints = 10
)

var regions = []Region{RegionBottomStrip, RegionCenterTag, RegionFull}

var brandHintPattern = regexp.MustCompile(`[A-Z][A-Za-z\-']{2,}`)

// Detector runs OCR over item images and distills the text into identifier,
// hazard, and brand signals.
type Detector struct {
	engine  Engine
	catalog *taxonomy.Catalog
	logger  *slog.Logger
}

// NewDetector builds a detector. A nil engine falls back to NopEngine.
func NewDetector(engine Engine, catalog *taxonomy.Catalog, logger *slog.Logger) *Detector {
	if engine == nil {
		engine = NopEngine{}
	}
	return &Detector{
		engine:  engine,
		catalog: catalog,
		logger:  logging.NewComponentLogger(logger, "ocr"),
	}
}

// Detect reads label regions then the full frame for each image, optionally
// folds in filename tokens, and extracts structured signals from the
// combined text. Lines are capped at 50 and brand hints at 10.
func (d *Detector) Detect(ctx context.Context, req Request) Result {
	var lines []string

	for i, image := range req.Images {
		if ctx.Err() != nil {
			break
		}
		for _, region := range regions {
			text, err := d.engine.Recognize(ctx, image, region)
			if err != nil {
				d.logger.DebugContext(ctx, "recognize failed",
					logging.Int("image", i),
					logging.String("region", string(region)),
					logging.Error(err))
				continue
			}
			if strings.TrimSpace(text) != "" {
				lines = append(lines, text)
			}
		}
	}

	if req.AllowFilenameText {
		replacer := strings.NewReplacer("_", " ", ".", " ", "-", " ")
		for _, name := range req.ImageNames {
			lines = append(lines, replacer.Replace(name))
		}
	}

	allText := strings.Join(lines, "\n")

	var brandHints []string
	seen := make(map[string]struct{})
	for _, raw := range brandHintPattern.FindAllString(allText, maxBrandHints) {
		hint := d.normalizeBrand(raw)
		if hint == "" {
			continue
		}
		if _, dup := seen[hint]; dup {
			continue
		}
		seen[hint] = struct{}{}
		brandHints = append(brandHints, hint)
	}

	if len(lines) > maxLines {
		lines = lines[:maxLines]
	}

	return Result{
		Lines:      lines,
		IDs:        textsig.ExtractIDs(allText),
		Hazards:    textsig.DetectHazards(allText),
		BrandHints: brandHints,
	}
}

func (d *Detector) normalizeBrand(text string) string {
	if d.catalog == nil {
		return strings.TrimSpace(text)
	}
	return d.catalog.NormalizeBrand(text)
}
