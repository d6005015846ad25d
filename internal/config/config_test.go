package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"clearout/internal/config"
)

func TestLoadDefaultsAndExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("CLEAROUT_VISION_API_KEY", "")
	t.Setenv("OPENROUTER_API_KEY", "")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "clearout")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Paths.GalleryDB != filepath.Join(wantData, "gallery.db") {
		t.Fatalf("unexpected gallery db: %q", cfg.Paths.GalleryDB)
	}
	if cfg.Paths.APIBind != "127.0.0.1:7787" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if cfg.Weights.Code != 0.9 || cfg.Weights.OCRText != 0.25 {
		t.Fatalf("unexpected weight defaults: %+v", cfg.Weights)
	}
	if cfg.Thresholds.SellConfidence != 0.7 {
		t.Fatalf("unexpected sell confidence: %v", cfg.Thresholds.SellConfidence)
	}
	if !cfg.Stages.Barcode || !cfg.Stages.OCR || !cfg.Stages.Vision || !cfg.Stages.Neighbors {
		t.Fatalf("expected all stages enabled by default: %+v", cfg.Stages)
	}
	if cfg.Stages.AllowFilenameText {
		t.Fatal("expected filename text disabled by default")
	}
	if cfg.Vision.Provider != "mock" {
		t.Fatalf("unexpected vision provider: %q", cfg.Vision.Provider)
	}
	if got := cfg.OCRTimeout().Milliseconds(); got != 2000 {
		t.Fatalf("unexpected ocr timeout: %d", got)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "clearout.toml")

	type payload struct {
		Weights struct {
			Code float64 `toml:"code"`
		} `toml:"weights"`
		Thresholds struct {
			SellConfidence float64 `toml:"sell_confidence"`
		} `toml:"thresholds"`
		Stages struct {
			Vision bool `toml:"vision"`
		} `toml:"stages"`
		Timeouts struct {
			OCRMS int `toml:"ocr_ms"`
		} `toml:"timeouts"`
	}
	custom := payload{}
	custom.Weights.Code = 0.8
	custom.Thresholds.SellConfidence = 0.6
	custom.Stages.Vision = false
	custom.Timeouts.OCRMS = 1500
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Weights.Code != 0.8 {
		t.Fatalf("expected code weight override, got %v", cfg.Weights.Code)
	}
	if cfg.Thresholds.SellConfidence != 0.6 {
		t.Fatalf("expected sell confidence override, got %v", cfg.Thresholds.SellConfidence)
	}
	if cfg.Stages.Vision {
		t.Fatal("expected vision stage disabled")
	}
	if cfg.Timeouts.OCRMS != 1500 {
		t.Fatalf("expected ocr timeout override, got %d", cfg.Timeouts.OCRMS)
	}
	if cfg.Weights.Model != 0.6 {
		t.Fatalf("expected untouched weight to keep default, got %v", cfg.Weights.Model)
	}
}

func TestEnvVarSuppliesVisionKey(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("CLEAROUT_VISION_API_KEY", "env-vision")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Vision.APIKey != "env-vision" {
		t.Fatalf("expected vision key from env, got %q", cfg.Vision.APIKey)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "sell_confidence") {
		t.Fatalf("sample config missing threshold key: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.Weights.Code != 0.9 {
		t.Fatalf("expected sample weights to match defaults, got %v", cfg.Weights.Code)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cfg := config.Default()
	cfg.Weights.Code = 1.5
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for out-of-range weight")
	}

	cfg = config.Default()
	cfg.Thresholds.SellConfidence = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero sell confidence")
	}

	cfg = config.Default()
	cfg.Timeouts.BarcodeMS = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative timeout")
	}

	cfg = config.Default()
	cfg.Vision.Provider = "remote"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown vision provider")
	}
}
