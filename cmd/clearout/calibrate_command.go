package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"clearout/internal/calibration"
	"clearout/internal/config"
)

func newCalibrateCommand(ctx *commandContext) *cobra.Command {
	calibrateCmd := &cobra.Command{
		Use:   "calibrate",
		Short: "Fit and inspect the confidence calibration map",
	}

	calibrateCmd.AddCommand(newCalibrateFitCommand(ctx))
	calibrateCmd.AddCommand(newCalibrateShowCommand(ctx))

	return calibrateCmd
}

func newCalibrateFitCommand(ctx *commandContext) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "fit <samples.json>",
		Short: "Fit an isotonic calibration map from labeled samples",
		Long: `Fit a monotone calibration map from a JSON array of labeled samples:
[{"score": 0.4, "label": 0}, {"score": 0.8, "label": 1}, ...]
The map is written to calibration.path from the configuration unless --out
is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read samples: %w", err)
			}
			var samples []calibration.Sample
			if err := json.Unmarshal(data, &samples); err != nil {
				return fmt.Errorf("parse samples: %w", err)
			}
			if len(samples) < 2 {
				return fmt.Errorf("need at least 2 samples, got %d", len(samples))
			}

			target := strings.TrimSpace(outPath)
			if target == "" {
				target = cfg.Calibration.Path
			}
			if target == "" {
				return fmt.Errorf("no output path: set calibration.path in config or pass --out")
			}
			expanded, err := config.ExpandPath(target)
			if err != nil {
				return fmt.Errorf("resolve output path: %w", err)
			}

			fitted := calibration.FitIsotonic(samples)
			if err := fitted.Save(expanded); err != nil {
				return fmt.Errorf("save calibration map: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Fitted calibration map with %d knots from %d samples\n", len(fitted.Xs), len(samples))
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", expanded)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Destination for the calibration map")
	return cmd
}

func newCalibrateShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the configured calibration map",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			if cfg.Calibration.Path == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "No calibration map configured; scores pass through unchanged")
				return nil
			}
			m, err := calibration.Load(cfg.Calibration.Path)
			if err != nil {
				return fmt.Errorf("load calibration map: %w", err)
			}
			if m == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "No calibration map found; scores pass through unchanged")
				return nil
			}
			return writeJSON(cmd, m)
		},
	}
}
