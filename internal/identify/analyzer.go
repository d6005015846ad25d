package identify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"clearout/internal/calibration"
	"clearout/internal/config"
	"clearout/internal/identify/barcode"
	"clearout/internal/identify/neighbors"
	"clearout/internal/identify/ocr"
	"clearout/internal/identify/vision"
	"clearout/internal/logging"
	"clearout/internal/rules"
	"clearout/internal/services"
	"clearout/internal/taxonomy"
)

// topNeighbors is how many gallery matches the neighbor stage reports.
const topNeighbors = 5

// GallerySource supplies reference embeddings for the neighbor stage.
type GallerySource interface {
	Load(ctx context.Context) ([]neighbors.Entry, error)
}

// Deps wires the detectors and reference data the analyzer runs on. Nil
// detectors disable their stage.
type Deps struct {
	Barcode     *barcode.Detector
	OCR         *ocr.Detector
	Vision      vision.Describer
	Embedder    neighbors.Embedder
	Gallery     GallerySource
	Classifier  *rules.Classifier
	Catalog     *taxonomy.Catalog
	Calibration *calibration.Map
	Logger      *slog.Logger
}

// Analyzer fans item photos out to the detector stages and fuses their
// evidence into a single identification.
type Analyzer struct {
	cfg    *config.Config
	deps   Deps
	logger *slog.Logger
}

// New builds an analyzer from configuration and wired dependencies.
func New(cfg *config.Config, deps Deps) *Analyzer {
	if deps.Embedder == nil {
		deps.Embedder = neighbors.HashEmbedder{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Analyzer{
		cfg:    cfg,
		deps:   deps,
		logger: logging.NewComponentLogger(logger, "identify"),
	}
}

// Analyze runs the enabled detector stages concurrently, each under its own
// deadline, classifies the recognized text, and fuses everything into one
// result. Detector failures degrade the evidence rather than fail the call.
func (a *Analyzer) Analyze(ctx context.Context, images []Image, opts Options) (Result, error) {
	if len(images) == 0 {
		return Result{}, services.Wrap(services.ErrValidation, "identify", "analyze", "no images provided", nil)
	}
	if err := opts.Validate(); err != nil {
		return Result{}, services.Wrap(services.ErrValidation, "identify", "analyze", "invalid options", err)
	}

	correlationID := uuid.NewString()
	ctx = services.WithRequestID(ctx, correlationID)
	logger := logging.WithContext(ctx, a.logger)

	payloads := Payloads(images)
	names := Names(images)
	allowFilename := a.cfg.Stages.AllowFilenameText
	if opts.AllowFilenameText != nil {
		allowFilename = *opts.AllowFilenameText
	}

	start := time.Now()
	logger.InfoContext(ctx, "analysis started", logging.Int("images", len(images)))

	var (
		wg       sync.WaitGroup
		codeRes  barcode.Result
		ocrRes   ocr.Result
		desc     vision.Description
		neighRes []neighbors.Neighbor

		codeErr, ocrErr, visionErr, neighErr error
	)

	if a.stageEnabled(opts, StageBarcode) && a.deps.Barcode != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			codeRes, codeErr = runStage(ctx, logger, StageBarcode, a.stageTimeout(opts, a.cfg.BarcodeTimeout()),
				func(stageCtx context.Context) (barcode.Result, error) {
					return a.deps.Barcode.Detect(stageCtx, barcode.Request{
						Images:            payloads,
						ImageNames:        names,
						AllowFilenameText: allowFilename,
					}), nil
				})
		}()
	}

	if a.stageEnabled(opts, StageOCR) && a.deps.OCR != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ocrRes, ocrErr = runStage(ctx, logger, StageOCR, a.stageTimeout(opts, a.cfg.OCRTimeout()),
				func(stageCtx context.Context) (ocr.Result, error) {
					return a.deps.OCR.Detect(stageCtx, ocr.Request{
						Images:            payloads,
						ImageNames:        names,
						AllowFilenameText: allowFilename,
					}), nil
				})
		}()
	}

	if a.stageEnabled(opts, StageVision) && a.deps.Vision != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			desc, visionErr = runStage(ctx, logger, StageVision, a.stageTimeout(opts, a.cfg.VisionTimeout()),
				func(stageCtx context.Context) (vision.Description, error) {
					return a.deps.Vision.Describe(stageCtx, vision.Request{
						Images:     payloads,
						ImageNames: names,
						MockID:     opts.MockID,
					})
				})
		}()
	}

	if a.stageEnabled(opts, StageNeighbors) && a.deps.Gallery != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			neighRes, neighErr = runStage(ctx, logger, StageNeighbors, a.stageTimeout(opts, a.cfg.NeighborsTimeout()),
				func(stageCtx context.Context) ([]neighbors.Neighbor, error) {
					return a.lookupNeighbors(stageCtx, payloads)
				})
		}()
	}

	wg.Wait()

	if err := firstError(codeErr, ocrErr, visionErr, neighErr); err != nil {
		return Result{}, err
	}

	match := a.classify(ocrRes, opts.AllowedCategories)
	result := a.fuse(fusionInput{
		codes:     codeRes.Codes,
		ocr:       ocrRes,
		desc:      desc,
		neighbors: neighRes,
		rule:      match,
	})
	result.CorrelationID = correlationID

	if opts.DebugDir != "" {
		if err := writeDebugArtifact(opts.DebugDir, correlationID, result); err != nil {
			logger.WarnContext(ctx, "debug artifact write failed", logging.Error(err))
		}
	}

	logger.InfoContext(ctx, "analysis completed",
		logging.String("resolution", result.ResolutionLevel),
		logging.String("next_step", result.NextStep),
		logging.Float64("confidence", result.Confidence),
		logging.Duration("elapsed", time.Since(start)))
	return result, nil
}

func (a *Analyzer) lookupNeighbors(ctx context.Context, payloads [][]byte) ([]neighbors.Neighbor, error) {
	gallery, err := a.deps.Gallery.Load(ctx)
	if err != nil {
		return nil, err
	}
	if len(gallery) == 0 {
		return nil, nil
	}
	vecs := make([][]float32, 0, len(payloads))
	for _, payload := range payloads {
		vec, err := a.deps.Embedder.Embed(ctx, payload)
		if err != nil {
			return nil, err
		}
		vecs = append(vecs, vec)
	}
	return neighbors.TopK(neighbors.Average(vecs), gallery, topNeighbors), nil
}

func (a *Analyzer) classify(ocrRes ocr.Result, allowed []string) rules.Match {
	if a.deps.Classifier == nil {
		return rules.Match{}
	}
	return a.deps.Classifier.ClassifyFromText(joinLines(ocrRes.Lines, " "), allowed)
}

func (a *Analyzer) stageEnabled(opts Options, stage Stage) bool {
	if enabled, ok := opts.EnableStages[stage]; ok {
		return enabled
	}
	switch stage {
	case StageBarcode:
		return a.cfg.Stages.Barcode
	case StageOCR:
		return a.cfg.Stages.OCR
	case StageVision:
		return a.cfg.Stages.Vision
	case StageNeighbors:
		return a.cfg.Stages.Neighbors
	}
	return false
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) stageTimeout(opts Options, configured time.Duration) time.Duration {
	if opts.TimeoutMS > 0 {
		return time.Duration(opts.TimeoutMS) * time.Millisecond
	}
	return configured
}
