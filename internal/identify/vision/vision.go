package vision

import (
	"context"
	"fmt"
	"strings"
)

// Description is the structured answer a vision-language model gives about an
// item's photos.
type Description struct {
	Category   string   `json:"category,omitempty"`
	BrandGuess string   `json:"brand_guess,omitempty"`
	ModelGuess string   `json:"model_guess,omitempty"`
	Materials  []string `json:"materials,omitempty"`
	Hazards    []string `json:"hazards,omitempty"`
}

// Empty reports whether the description carries no information.
func (d Description) Empty() bool {
	return d.Category == "" && d.BrandGuess == "" && d.ModelGuess == "" &&
		len(d.Materials) == 0 && len(d.Hazards) == 0
}

// Request carries the inputs a describer may use.
type Request struct {
	Images     [][]byte
	ImageNames []string
	// MockID selects a fixture by name for the mock provider.
	MockID string
}

// Describer asks a vision-language provider to describe item photos.
type Describer interface {
	Describe(ctx context.Context, req Request) (Description, error)
}

// SystemPrompt constrains the model to the evidence schema.
const SystemPrompt = `Reply ONLY with JSON keys: category, brand_guess, model_guess, materials, hazards.
Category must be a taxonomy category. Hazards can include: battery, aerosol, blade, chemical, pressurized.`

// UserPrompt is the per-request instruction.
const UserPrompt = "Describe item"

var allowedHazards = map[string]struct{}{
	"battery":     {},
	"aerosol":     {},
	"blade":       {},
	"chemical":    {},
	"pressurized": {},
}

// Validate enforces the closed hazard vocabulary. Anything outside it means
// the provider ignored the schema, so the whole description is suspect.
func Validate(d Description) error {
	for _, hazard := range d.Hazards {
		if _, ok := allowedHazards[strings.ToLower(strings.TrimSpace(hazard))]; !ok {
			return fmt.Errorf("vision description: unknown hazard %q", hazard)
		}
	}
	return nil
}
