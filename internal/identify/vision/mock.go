package vision

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// MockDescriber answers from JSON fixtures on disk, selected by the request's
// MockID or the first image's filename stem. Missing or malformed fixtures
// fall back to a bare misc description, keeping offline runs deterministic.
type MockDescriber struct {
	dir string
}

// NewMockDescriber serves fixtures from dir.
func NewMockDescriber(dir string) *MockDescriber {
	return &MockDescriber{dir: dir}
}

func (m *MockDescriber) Describe(_ context.Context, req Request) (Description, error) {
	fallback := Description{Category: "misc", Materials: []string{}, Hazards: []string{}}

	id := strings.TrimSpace(req.MockID)
	if id == "" && len(req.ImageNames) > 0 {
		base := filepath.Base(req.ImageNames[0])
		id = strings.SplitN(base, ".", 2)[0]
	}
	if id == "" {
		id = "default"
	}

	data, err := os.ReadFile(filepath.Join(m.dir, id+".json"))
	if err != nil {
		return fallback, nil
	}
	var desc Description
	if err := json.Unmarshal(data, &desc); err != nil {
		return fallback, nil
	}
	if err := Validate(desc); err != nil {
		return fallback, nil
	}
	return desc, nil
}
