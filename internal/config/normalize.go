package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeVision(); err != nil {
		return err
	}
	if err := c.normalizeCalibration(); err != nil {
		return err
	}
	c.normalizeTimeouts()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.GalleryDB) == "" {
		c.Paths.GalleryDB = defaultGalleryDB
	}
	if c.Paths.GalleryDB, err = expandPath(c.Paths.GalleryDB); err != nil {
		return fmt.Errorf("paths.gallery_db: %w", err)
	}
	if strings.TrimSpace(c.Paths.RefDataDir) != "" {
		if c.Paths.RefDataDir, err = expandPath(c.Paths.RefDataDir); err != nil {
			return fmt.Errorf("paths.refdata_dir: %w", err)
		}
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	return nil
}

func (c *Config) normalizeVision() error {
	c.Vision.Provider = strings.ToLower(strings.TrimSpace(c.Vision.Provider))
	if c.Vision.Provider == "" {
		c.Vision.Provider = defaultVisionProvider
	}
	c.Vision.APIKey = strings.TrimSpace(c.Vision.APIKey)
	if c.Vision.APIKey == "" {
		if value, ok := os.LookupEnv("CLEAROUT_VISION_API_KEY"); ok {
			c.Vision.APIKey = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("OPENROUTER_API_KEY"); ok {
			c.Vision.APIKey = strings.TrimSpace(value)
		}
	}
	c.Vision.BaseURL = strings.TrimSpace(c.Vision.BaseURL)
	if c.Vision.BaseURL == "" {
		c.Vision.BaseURL = defaultVisionBaseURL
	}
	c.Vision.Model = strings.TrimSpace(c.Vision.Model)
	if c.Vision.Model == "" {
		c.Vision.Model = defaultVisionModel
	}
	if strings.TrimSpace(c.Vision.FixturesDir) != "" {
		expanded, err := expandPath(c.Vision.FixturesDir)
		if err != nil {
			return fmt.Errorf("vision.fixtures_dir: %w", err)
		}
		c.Vision.FixturesDir = expanded
	}
	return nil
}

func (c *Config) normalizeCalibration() error {
	if strings.TrimSpace(c.Calibration.Path) == "" {
		c.Calibration.Path = ""
		return nil
	}
	expanded, err := expandPath(c.Calibration.Path)
	if err != nil {
		return fmt.Errorf("calibration.path: %w", err)
	}
	c.Calibration.Path = expanded
	return nil
}

func (c *Config) normalizeTimeouts() {
	if c.Timeouts.BarcodeMS <= 0 {
		c.Timeouts.BarcodeMS = defaultBarcodeTimeoutMS
	}
	if c.Timeouts.OCRMS <= 0 {
		c.Timeouts.OCRMS = defaultOCRTimeoutMS
	}
	if c.Timeouts.VisionMS <= 0 {
		c.Timeouts.VisionMS = defaultVisionTimeoutMS
	}
	if c.Timeouts.NeighborsMS <= 0 {
		c.Timeouts.NeighborsMS = defaultNeighborsTimeoutMS
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
