package identify

import "clearout/internal/identify/neighbors"

// Resolution levels, strongest first.
const (
	ResolutionSKU           = "sku"
	ResolutionBrandModel    = "brand_model"
	ResolutionBrandCategory = "brand_category"
	ResolutionCategoryOnly  = "category_only"
)

// Next steps.
const (
	NextSell          = "sell"
	NextGive          = "give"
	NextRecycle       = "recycle"
	NextNeedsMoreInfo = "needs_more_info"
)

// Attributes are the item facts worth surfacing to a seller.
type Attributes struct {
	Brand     string `json:"brand,omitempty"`
	Model     string `json:"model,omitempty"`
	Material  string `json:"material,omitempty"`
	SizeClass string `json:"size_class,omitempty"`
	Power     string `json:"power,omitempty"`
	Category  string `json:"category,omitempty"`
}

// Evidence exposes the raw signals behind a result so callers can audit it.
type Evidence struct {
	Codes     []string             `json:"codes"`
	OCR       []string             `json:"ocr"`
	Logos     []string             `json:"logos"`
	Neighbors []neighbors.Neighbor `json:"neighbors"`
}

// Result is the outcome of analyzing one item.
type Result struct {
	ResolutionLevel string     `json:"resolution_level"`
	Attributes      Attributes `json:"attributes"`
	Hazards         []string   `json:"hazards"`
	Confidence      float64    `json:"confidence"`
	Evidence        Evidence   `json:"evidence"`
	NextStep        string     `json:"next_step"`
	CorrelationID   string     `json:"correlation_id,omitempty"`
}
