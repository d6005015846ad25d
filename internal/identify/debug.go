package identify

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// writeDebugArtifact drops the full result next to its correlation id so a
// run can be inspected after the fact.
func writeDebugArtifact(dir, correlationID string, result Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, correlationID+".json"), data, 0o644)
}
