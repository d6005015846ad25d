package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"clearout/internal/config"
	"clearout/internal/identify"
	"clearout/internal/identify/vision"
	"clearout/internal/logging"
)

// Server exposes the identification pipeline over HTTP.
type Server struct {
	cfg        *config.Config
	deps       identify.Deps
	describers map[string]vision.Describer
	logger     *slog.Logger

	handler  http.Handler
	listener net.Listener
	server   *http.Server
}

// NewServer builds the HTTP server. deps.Vision is the default describer;
// describers maps provider names selectable per request via the provider
// query parameter.
func NewServer(cfg *config.Config, deps identify.Deps, describers map[string]vision.Describer) *Server {
	if describers == nil {
		describers = map[string]vision.Describer{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	srv := &Server{
		cfg:        cfg,
		deps:       deps,
		describers: describers,
		logger:     logging.NewComponentLogger(logger, "api-server"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", srv.handleHealth)
	mux.HandleFunc("/api/identify", authMiddleware(cfg.Paths.APIToken, srv.handleIdentify))
	srv.handler = mux

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

// Handler returns the route table without starting a listener.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start listens on the configured bind address and serves until ctx is
// cancelled.
func (s *Server) Start(ctx context.Context) error {
	bind := strings.TrimSpace(s.cfg.Paths.APIBind)
	if bind == "" {
		return fmt.Errorf("api bind address is empty")
	}
	listener, err := net.Listen("tcp", bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Stop shuts the server down, waiting briefly for in-flight requests.
func (s *Server) Stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

// Addr returns the bound listen address, or empty before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
