package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"clearout/internal/refdata"
)

func newClassifyCommand(ctx *commandContext) *cobra.Command {
	var allowed []string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "classify <text>...",
		Short: "Run the keyword rule classifier over label text",
		Long: `Classify free text against the keyword rules without running any
detectors. Useful for checking how a care label or product description would
be categorized.

Examples:
  clearout classify "cast iron skillet"
  clearout classify --allowed books,toys "lego star wars set"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			classifier, err := refdata.NewStore(cfg.Paths.RefDataDir).Classifier()
			if err != nil {
				return fmt.Errorf("load keyword rules: %w", err)
			}

			match := classifier.ClassifyFromText(strings.Join(args, " "), allowed)
			if jsonOut {
				return writeJSON(cmd, match)
			}

			out := cmd.OutOrStdout()
			if match.Category == "" {
				fmt.Fprintln(out, "No rule matched")
				return nil
			}
			rows := [][]string{
				{"Category", match.Category},
				{"Brand", orDash(match.Brand)},
				{"Model", orDash(match.Model)},
				{"Signals", orDash(strings.Join(match.Signals, ", "))},
			}
			fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, rows, []columnAlignment{alignLeft, alignLeft}))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&allowed, "allowed", nil, "Restrict matches to these categories")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the match as JSON")
	return cmd
}
