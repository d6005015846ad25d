package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	DataDir    string `toml:"data_dir"`
	LogDir     string `toml:"log_dir"`
	RefDataDir string `toml:"refdata_dir"`
	GalleryDB  string `toml:"gallery_db"`
	APIBind    string `toml:"api_bind"`
	APIToken   string `toml:"api_token"`
}

// Weights contains the per-signal fusion weights.
type Weights struct {
	Code     float64 `toml:"code"`
	Model    float64 `toml:"model"`
	Brand    float64 `toml:"brand"`
	Neighbor float64 `toml:"neighbor"`
	Vision   float64 `toml:"vision"`
	OCRText  float64 `toml:"ocr_text"`
}

// Thresholds contains decision cutoffs.
type Thresholds struct {
	SellConfidence float64 `toml:"sell_confidence"`
}

// Timeouts contains per-stage deadlines in milliseconds.
type Timeouts struct {
	BarcodeMS   int `toml:"barcode_ms"`
	OCRMS       int `toml:"ocr_ms"`
	VisionMS    int `toml:"vision_ms"`
	NeighborsMS int `toml:"neighbors_ms"`
}

// Stages controls which detector stages run.
type Stages struct {
	Barcode   bool `toml:"barcode"`
	OCR       bool `toml:"ocr"`
	Vision    bool `toml:"vision"`
	Neighbors bool `toml:"neighbors"`
	// AllowFilenameText permits detectors to read planted hints from image
	// filenames. Useful for fixtures and demos, off in production.
	AllowFilenameText bool `toml:"allow_filename_text"`
}

// Vision contains configuration for the vision-language describer.
type Vision struct {
	Provider    string `toml:"provider"`
	APIKey      string `toml:"api_key"`
	BaseURL     string `toml:"base_url"`
	Model       string `toml:"model"`
	FixturesDir string `toml:"fixtures_dir"`
}

// Calibration contains configuration for the confidence calibration map.
type Calibration struct {
	Path string `toml:"path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for clearout.
//
// Configuration sections by subsystem:
//   - Paths: data directories, gallery database, API bind address
//   - Weights: per-signal fusion weights
//   - Thresholds: decision cutoffs (sell confidence)
//   - Timeouts: per-stage detector deadlines
//   - Stages: detector stage toggles
//   - Vision: vision-language describer provider settings
//   - Calibration: optional confidence calibration map
//   - Logging: log format, level, and retention
type Config struct {
	Paths       Paths       `toml:"paths"`
	Weights     Weights     `toml:"weights"`
	Thresholds  Thresholds  `toml:"thresholds"`
	Timeouts    Timeouts    `toml:"timeouts"`
	Stages      Stages      `toml:"stages"`
	Vision      Vision      `toml:"vision"`
	Calibration Calibration `toml:"calibration"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/clearout/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		if err := decodeFile(resolvedPath, &cfg); err != nil {
			return nil, "", false, err
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func decodeFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	if err := toml.NewDecoder(file).Decode(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("clearout.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the analyzer and API server need.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if db := strings.TrimSpace(c.Paths.GalleryDB); db != "" {
		if dir := filepath.Dir(db); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create gallery directory %q: %w", dir, err)
			}
		}
	}
	return nil
}

// BarcodeTimeout returns the barcode stage deadline.
func (c *Config) BarcodeTimeout() time.Duration {
	return time.Duration(c.Timeouts.BarcodeMS) * time.Millisecond
}

// OCRTimeout returns the OCR stage deadline.
func (c *Config) OCRTimeout() time.Duration {
	return time.Duration(c.Timeouts.OCRMS) * time.Millisecond
}

// VisionTimeout returns the vision stage deadline.
func (c *Config) VisionTimeout() time.Duration {
	return time.Duration(c.Timeouts.VisionMS) * time.Millisecond
}

// NeighborsTimeout returns the visual neighbor stage deadline.
func (c *Config) NeighborsTimeout() time.Duration {
	return time.Duration(c.Timeouts.NeighborsMS) * time.Millisecond
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
