package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"clearout/internal/config"
	"clearout/internal/gallery"
)

func newGalleryCommand(ctx *commandContext) *cobra.Command {
	galleryCmd := &cobra.Command{
		Use:   "gallery",
		Short: "Manage the visual neighbor reference gallery",
	}

	galleryCmd.AddCommand(newGalleryImportCommand(ctx))
	galleryCmd.AddCommand(newGalleryListCommand(ctx))

	return galleryCmd
}

func newGalleryImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <dir>",
		Short: "Replace the gallery with embeddings of every image in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			dir, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve directory: %w", err)
			}

			store, err := gallery.Open(cfg.Paths.GalleryDB)
			if err != nil {
				return fmt.Errorf("open gallery: %w", err)
			}
			defer store.Close()

			count, err := store.ImportDir(cmd.Context(), dir, nil)
			if err != nil {
				return fmt.Errorf("import gallery: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d reference images into %s\n", count, store.Path())
			return nil
		},
	}
}

func newGalleryListCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List gallery entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}

			store, err := gallery.Open(cfg.Paths.GalleryDB)
			if err != nil {
				return fmt.Errorf("open gallery: %w", err)
			}
			defer store.Close()

			entries, err := store.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("load gallery: %w", err)
			}

			if jsonOut {
				ids := make([]string, 0, len(entries))
				for _, entry := range entries {
					ids = append(ids, entry.ID)
				}
				return writeJSON(cmd, map[string]any{"count": len(ids), "ids": ids})
			}

			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Gallery is empty")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for i, entry := range entries {
				rows = append(rows, []string{strconv.Itoa(i + 1), entry.ID})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"#", "ID"}, rows, []columnAlignment{alignRight, alignLeft}))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print gallery ids as JSON")
	return cmd
}
