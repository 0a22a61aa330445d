package reconcile

import (
	"encoding/json"
	"fmt"
	"time"

	"golang-netstate/internal/port"
)

// DebugWriter dumps desired states into uniquely named files for troubleshooting.
// Files are written once and never read back.
type DebugWriter struct {
	fileMgr port.FileManager
	dir     string
}

// NewDebugWriter creates a writer placing files in dir. An empty dir means the system temp dir.
func NewDebugWriter(fileMgr port.FileManager, dir string) *DebugWriter {
	return &DebugWriter{fileMgr: fileMgr, dir: dir}
}

// Write serializes state as indented JSON into a new file named after the operation and
// the current time, and returns the file path.
func (w *DebugWriter) Write(operation string, state interface{}, now time.Time) (string, error) {
	data, err := json.MarshalIndent(state, "", "    ")
	if err != nil {
		return "", fmt.Errorf("failed to encode debug state: %w", err)
	}

	pattern := fmt.Sprintf("%s_debug-%d-*", operation, now.Unix())
	path, err := w.fileMgr.CreateTemp(w.dir, pattern, data)
	if err != nil {
		return "", fmt.Errorf("failed to write debug state: %w", err)
	}
	return path, nil
}
