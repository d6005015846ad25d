package main

import (
	"fmt"
	"strings"
	"sync"

	"log/slog"

	"github.com/spf13/cobra"

	"clearout/internal/calibration"
	"clearout/internal/config"
	"clearout/internal/gallery"
	"clearout/internal/identify"
	"clearout/internal/identify/barcode"
	"clearout/internal/identify/neighbors"
	"clearout/internal/identify/ocr"
	"clearout/internal/identify/vision"
	"clearout/internal/logging"
	"clearout/internal/refdata"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func newCommandLogger(cfg *config.Config) (*slog.Logger, error) {
	return logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stdout"},
	})
}

// buildAnalyzerDeps assembles the detector set from configuration. The
// returned cleanup closes the gallery store when one was opened.
func buildAnalyzerDeps(cfg *config.Config, logger *slog.Logger, withGallery bool) (identify.Deps, map[string]vision.Describer, func(), error) {
	store := refdata.NewStore(cfg.Paths.RefDataDir)
	classifier, err := store.Classifier()
	if err != nil {
		return identify.Deps{}, nil, nil, fmt.Errorf("load keyword rules: %w", err)
	}
	catalog, err := store.Catalog()
	if err != nil {
		return identify.Deps{}, nil, nil, fmt.Errorf("load taxonomy: %w", err)
	}

	var calMap *calibration.Map
	if cfg.Calibration.Path != "" {
		calMap, err = calibration.Load(cfg.Calibration.Path)
		if err != nil {
			logger.Warn("calibration map unavailable", logging.Error(err))
		}
	}

	describers := map[string]vision.Describer{
		"mock": vision.NewMockDescriber(cfg.Vision.FixturesDir),
	}
	if cfg.Vision.BaseURL != "" && cfg.Vision.Model != "" {
		describers["live"] = vision.NewLiveDescriber(vision.Config{
			APIKey:  cfg.Vision.APIKey,
			BaseURL: cfg.Vision.BaseURL,
			Model:   cfg.Vision.Model,
		})
	}

	deps := identify.Deps{
		Barcode:     barcode.NewDetector(nil, logger),
		OCR:         ocr.NewDetector(nil, catalog, logger),
		Vision:      describers[cfg.Vision.Provider],
		Embedder:    neighbors.HashEmbedder{},
		Classifier:  classifier,
		Catalog:     catalog,
		Calibration: calMap,
		Logger:      logger,
	}

	cleanup := func() {}
	if withGallery {
		galleryStore, err := gallery.Open(cfg.Paths.GalleryDB)
		if err != nil {
			return identify.Deps{}, nil, nil, fmt.Errorf("open gallery: %w", err)
		}
		deps.Gallery = galleryStore
		cleanup = func() { _ = galleryStore.Close() }
	}
	return deps, describers, cleanup, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
