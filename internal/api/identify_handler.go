package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"clearout/internal/identify"
	"clearout/internal/logging"
	"clearout/internal/services"
)

const (
	maxFiles        = 6
	maxFileBytes    = 10 << 20
	maxRequestBytes = maxFiles*maxFileBytes + (1 << 20)

	defaultStages    = "barcode,ocr"
	defaultProvider  = "mock"
	defaultTimeoutMS = 2000
)

func (s *Server) handleIdentify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid multipart payload")
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	files := r.MultipartForm.File["images"]
	if len(files) == 0 {
		s.writeError(w, http.StatusBadRequest, "no files")
		return
	}
	if len(files) > maxFiles {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("too many files: limit is %d", maxFiles))
		return
	}

	images := make([]identify.Image, 0, len(files))
	for _, header := range files {
		if header.Size > maxFileBytes {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("file %q exceeds the %d byte limit", header.Filename, maxFileBytes))
			return
		}
		file, err := header.Open()
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "unreadable upload")
			return
		}
		data, err := io.ReadAll(file)
		_ = file.Close()
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "unreadable upload")
			return
		}
		images = append(images, identify.Image{Name: header.Filename, Data: data})
	}

	query := r.URL.Query()

	stagesRaw := query.Get("enableStages")
	if strings.TrimSpace(stagesRaw) == "" {
		stagesRaw = defaultStages
	}
	enabled, err := parseStages(stagesRaw)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	allowFilename := true
	if raw := strings.TrimSpace(query.Get("allowFilenameText")); raw != "" {
		allowFilename = raw == "1" || strings.EqualFold(raw, "true")
	}

	timeoutMS := defaultTimeoutMS
	if raw := strings.TrimSpace(query.Get("timeoutMs")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			s.writeError(w, http.StatusBadRequest, "invalid timeoutMs")
			return
		}
		timeoutMS = parsed
	}

	deps := s.deps
	provider := strings.TrimSpace(query.Get("provider"))
	if provider == "" {
		provider = defaultProvider
	}
	if describer, ok := s.describers[provider]; ok {
		deps.Vision = describer
	} else if provider != defaultProvider {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown provider %q", provider))
		return
	}

	result, err := identify.New(s.cfg, deps).Analyze(r.Context(), images, identify.Options{
		EnableStages:      enabled,
		AllowFilenameText: &allowFilename,
		MockID:            strings.TrimSpace(query.Get("mockId")),
		TimeoutMS:         timeoutMS,
	})
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("identify request failed", logging.Error(err))
		s.writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

// parseStages turns a comma-separated stage list into a full toggle map.
// Stages absent from the list are disabled.
func parseStages(raw string) (map[identify.Stage]bool, error) {
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
