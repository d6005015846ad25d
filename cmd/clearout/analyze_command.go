package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"clearout/internal/identify"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var stagesFlag string
	var allowFilename bool
	var timeoutMS int
	var mockID string
	var provider string
	var debugDir string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "analyze <image>...",
		Short: "Identify a household item from photos",
		Long: `Run the detector pipeline over one or more item photos and print the
fused identification: resolution level, attributes, hazards, confidence, and
the recommended next step.

Examples:
  clearout analyze front.jpg back.jpg
  clearout analyze --stages barcode,ocr --json label.jpg
  clearout analyze --provider mock --mock-id skillet pan.jpg`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			logger, err := newCommandLogger(cfg)
			if err != nil {
				return fmt.Errorf("setup logging: %w", err)
			}

			deps, describers, cleanup, err := buildAnalyzerDeps(cfg, logger, true)
			if err != nil {
				return err
			}
			defer cleanup()

			if provider != "" {
				describer, ok := describers[provider]
				if !ok {
					return fmt.Errorf("unknown vision provider %q", provider)
				}
				deps.Vision = describer
			}

			images := make([]identify.Image, 0, len(args))
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read image %q: %w", path, err)
				}
				images = append(images, identify.Image{Name: filepath.Base(path), Data: data})
			}

			opts := identify.Options{MockID: mockID, TimeoutMS: timeoutMS, DebugDir: debugDir}
			if cmd.Flags().Changed("allow-filename-text") {
				opts.AllowFilenameText = &allowFilename
			}
			if strings.TrimSpace(stagesFlag) != "" {
				enabled, err := parseStageList(stagesFlag)
				if err != nil {
					return err
				}
				opts.EnableStages = enabled
			}

			result, err := identify.New(cfg, deps).Analyze(cmd.Context(), images, opts)
			if err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(cmd, result)
			}
			renderResult(cmd, result)
			return nil
		},
	}

	cmd.Flags().StringVar(&stagesFlag, "stages", "", "Comma-separated detector stages to run (barcode,ocr,vision,neighbors)")
	cmd.Flags().BoolVar(&allowFilename, "allow-filename-text", false, "Let detectors read hints from image filenames")
	cmd.Flags().IntVar(&timeoutMS, "timeout-ms", 0, "Per-stage deadline in milliseconds (0 uses configured values)")
	cmd.Flags().StringVar(&mockID, "mock-id", "", "Vision fixture id for the mock provider")
	cmd.Flags().StringVar(&provider, "provider", "", "Vision provider (mock or live; default from config)")
	cmd.Flags().StringVar(&debugDir, "debug-dir", "", "Write a JSON artifact per analysis to this directory")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the result as JSON")

	return cmd
}

// parseStageList turns a comma-separated stage list into a full toggle map.
// Stages absent from the list are disabled.
func parseStageList(raw string) (map[identify.Stage]bool, error) {
	enabled := make(map[identify.Stage]bool, len(identify.Stages))
	for _, stage := range identify.Stages {
		enabled[stage] = false
	}
	for _, part := range strings.Split(raw, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		stage, ok := identify.ParseStage(part)
		if !ok {
			return nil, fmt.Errorf("unknown stage %q", strings.TrimSpace(part))
		}
		enabled[stage] = true
	}
	return enabled, nil
}

func renderResult(cmd *cobra.Command, result identify.Result) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	rows := [][]string{
		{"Resolution", result.ResolutionLevel},
		{"Brand", orDash(result.Attributes.Brand)},
		{"Model", orDash(result.Attributes.Model)},
		{"Material", orDash(result.Attributes.Material)},
		{"Category", orDash(result.Attributes.Category)},
		{"Hazards", orDash(strings.Join(result.Hazards, ", "))},
		{"Confidence", fmt.Sprintf("%.2f", result.Confidence)},
	}
	fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, rows, []columnAlignment{alignLeft, alignLeft}))

	if len(result.Evidence.Codes) > 0 {
		fmt.Fprintf(out, "Codes: %s\n", strings.Join(result.Evidence.Codes, ", "))
	}
	if len(result.Evidence.Neighbors) > 0 {
		parts := make([]string, 0, len(result.Evidence.Neighbors))
		for _, n := range result.Evidence.Neighbors {
			parts = append(parts, fmt.Sprintf("%s (%.2f)", n.ID, n.Score))
		}
		fmt.Fprintf(out, "Neighbors: %s\n", strings.Join(parts, ", "))
	}

	kind := statusInfo
	switch result.NextStep {
	case identify.NextSell:
		kind = statusOK
	case identify.NextRecycle:
		kind = statusWarn
	}
	fmt.Fprintln(out, renderStatusLine("Next step", kind, result.NextStep, colorize))
}

func orDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
