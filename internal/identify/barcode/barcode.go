package barcode

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"clearout/internal/logging"
)

// Code is one decoded symbol.
type Code struct {
	Format string
	Text   string
}

// Decoder attempts to decode a barcode from image bytes at a given rotation.
// Returning ok=false means no symbol was found at that orientation.
type Decoder interface {
	Decode(ctx context.Context, image []byte, rotationDeg int) (Code, bool, error)
}

// NopDecoder never finds a symbol. It stands in when no symbol library is
// wired up, leaving the filename fallback as the only source of codes.
type NopDecoder struct{}

func (NopDecoder) Decode(context.Context, []byte, int) (Code, bool, error) {
	return Code{}, false, nil
}

// Result carries the codes found across all images, each tagged with its
// source format as "FORMAT:text".
type Result struct {
	Codes []string
}

// Request describes one detection pass.
type Request struct {
	Images            [][]byte
	ImageNames        []string
	AllowFilenameText bool
}

var rotations = []int{0, 90, 180, 270}

var filenameCodePattern = regexp.MustCompile(`(?i)(97[89]\d{10}|\b\d{12,13}\b|ISBN[\d-]+)`)

// Detector runs barcode decoding over item images.
type Detector struct {
	decoder Decoder
	logger  *slog.Logger
}

// NewDetector builds a detector. A nil decoder falls back to NopDecoder.
func NewDetector(decoder Decoder, logger *slog.Logger) *Detector {
	if decoder == nil {
		decoder = NopDecoder{}
	}
	return &Detector{
		decoder: decoder,
		logger:  logging.NewComponentLogger(logger, "barcode"),
	}
}

// Detect tries every rotation of every image, stopping at the first symbol
// per image. Codes are deduplicated in discovery order. When nothing decodes
// and filename text is allowed, code-shaped tokens in image names fill in.
func (d *Detector) Detect(ctx context.Context, req Request) Result {
	var codes []string
	seen := make(map[string]struct{})

	for i, image := range req.Images {
		if ctx.Err() != nil {
			break
		}
		for _, rotation := range rotations {
			code, ok, err := d.decoder.Decode(ctx, image, rotation)
			if err != nil {
				d.logger.DebugContext(ctx, "decode attempt failed",
					logging.Int("image", i),
					logging.Int("rotation", rotation),
					logging.Error(err))
				continue
			}
			if !ok {
				continue
			}
			tagged := code.Format + ":" + code.Text
			if _, dup := seen[tagged]; !dup {
				seen[tagged] = struct{}{}
				codes = append(codes, tagged)
			}
			break
		}
	}

	if len(codes) == 0 && req.AllowFilenameText {
		for _, name := range req.ImageNames {
			match := filenameCodePattern.FindStringSubmatch(name)
			if len(match) < 2 {
				continue
			}
			tagged := "FILENAME:" + match[1]
			if _, dup := seen[tagged]; !dup {
				seen[tagged] = struct{}{}
				codes = append(codes, tagged)
			}
		}
	}

	return Result{Codes: codes}
}

var isbnDigitsPattern = regexp.MustCompile(`^(97[89]\d{10}|\d{9}[\dXx])$`)

// MapCodeToCategory maps a tagged code to a marketplace category where the
// numbering scheme implies one. ISBN-10 and ISBN-13 imply books.
func MapCodeToCategory(taggedCode string) string {
	raw := taggedCode
	if idx := strings.LastIndex(taggedCode, ":"); idx >= 0 {
		raw = taggedCode[idx+1:]
	}
	if raw == "" {
		return ""
	}
	var digits strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == 'X' || r == 'x' {
			digits.WriteRune(r)
		}
	}
	if isbnDigitsPattern.MatchString(digits.String()) {
		return "Media > Books"
	}
	return ""
}
