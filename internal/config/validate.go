package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateWeights(); err != nil {
		return err
	}
	if err := c.validateThresholds(); err != nil {
		return err
	}
	if err := c.validateTimeouts(); err != nil {
		return err
	}
	if err := c.validateVision(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateWeights() error {
	for name, value := range map[string]float64{
		"weights.code":     c.Weights.Code,
		"weights.model":    c.Weights.Model,
		"weights.brand":    c.Weights.Brand,
		"weights.neighbor": c.Weights.Neighbor,
		"weights.vision":   c.Weights.Vision,
		"weights.ocr_text": c.Weights.OCRText,
	} {
		if value < 0 || value > 1 {
			return fmt.Errorf("%s must be between 0 and 1", name)
		}
	}
	return nil
}

func (c *Config) validateThresholds() error {
	if c.Thresholds.SellConfidence <= 0 || c.Thresholds.SellConfidence > 1 {
		return errors.New("thresholds.sell_confidence must be between 0 (exclusive) and 1")
	}
	return nil
}

func (c *Config) validateTimeouts() error {
	for name, value := range map[string]int{
		"timeouts.barcode_ms":   c.Timeouts.BarcodeMS,
		"timeouts.ocr_ms":       c.Timeouts.OCRMS,
		"timeouts.vision_ms":    c.Timeouts.VisionMS,
		"timeouts.neighbors_ms": c.Timeouts.NeighborsMS,
	} {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	return nil
}

func (c *Config) validateVision() error {
	switch c.Vision.Provider {
	case "mock", "live":
	default:
		return fmt.Errorf("vision.provider must be %q or %q", "mock", "live")
	}
	if c.Vision.Provider == "live" {
		if c.Vision.BaseURL == "" {
			return errors.New("vision.base_url must be set when vision.provider is \"live\"")
		}
		if c.Vision.Model == "" {
			return errors.New("vision.model must be set when vision.provider is \"live\"")
		}
	}
	return nil
}
