package config

const (
	defaultDataDir          = "~/.local/share/clearout"
	defaultLogDir           = "~/.local/share/clearout/logs"
	defaultGalleryDB        = "~/.local/share/clearout/gallery.db"
	defaultAPIBind          = "127.0.0.1:7787"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 60

	defaultWeightCode     = 0.9
	defaultWeightModel    = 0.6
	defaultWeightBrand    = 0.45
	defaultWeightNeighbor = 0.35
	defaultWeightVision   = 0.4
	defaultWeightOCRText  = 0.25

	defaultSellConfidence = 0.7

	defaultBarcodeTimeoutMS   = 800
	defaultOCRTimeoutMS       = 2000
	defaultVisionTimeoutMS    = 800
	defaultNeighborsTimeoutMS = 800

	defaultVisionProvider = "mock"
	defaultVisionBaseURL  = "https://openrouter.ai/api/v1/chat/completions"
	defaultVisionModel    = "google/gemini-3-flash-preview"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:   defaultDataDir,
			LogDir:    defaultLogDir,
			GalleryDB: defaultGalleryDB,
			APIBind:   defaultAPIBind,
		},
		Weights: Weights{
			Code:     defaultWeightCode,
			Model:    defaultWeightModel,
			Brand:    defaultWeightBrand,
			Neighbor: defaultWeightNeighbor,
			Vision:   defaultWeightVision,
			OCRText:  defaultWeightOCRText,
		},
		Thresholds: Thresholds{
			SellConfidence: defaultSellConfidence,
		},
		Timeouts: Timeouts{
			BarcodeMS:   defaultBarcodeTimeoutMS,
			OCRMS:       defaultOCRTimeoutMS,
			VisionMS:    defaultVisionTimeoutMS,
			NeighborsMS: defaultNeighborsTimeoutMS,
		},
		Stages: Stages{
			Barcode:   true,
			OCR:       true,
			Vision:    true,
			Neighbors: true,
		},
		Vision: Vision{
			Provider: defaultVisionProvider,
			BaseURL:  defaultVisionBaseURL,
			Model:    defaultVisionModel,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
