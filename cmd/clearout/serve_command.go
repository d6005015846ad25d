package main

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"clearout/internal/api"
	"clearout/internal/logging"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the identification HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			if strings.TrimSpace(bind) != "" {
				cfg.Paths.APIBind = bind
			}

			runID := time.Now().UTC().Format("20060102T150405Z")
			logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("clearout-%s.log", runID))
			logger, err := logging.New(logging.Options{
				Level:       cfg.Logging.Level,
				Format:      cfg.Logging.Format,
				OutputPaths: []string{"stdout", logPath},
			})
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			deps, describers, cleanup, err := buildAnalyzerDeps(cfg, logger, true)
			if err != nil {
				return err
			}
			defer cleanup()

			server := api.NewServer(cfg, deps, describers)
			if err := server.Start(signalCtx); err != nil {
				return err
			}
			defer server.Stop()

			fmt.Fprintf(cmd.OutOrStdout(), "Listening on %s\n", server.Addr())
			<-signalCtx.Done()
			logger.Info("api server shutting down")
			return nil
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (overrides api_bind from config)")
	return cmd
}
