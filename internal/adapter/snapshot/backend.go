// Package snapshot implements the StateBackend port over a state document on disk.
// The document uses the same schema as the observed state and may be YAML or JSON.
// It backs dry environments and tests where the host network must not be touched.
package snapshot

import (
	"context"
	"fmt"

	"golang-netstate/internal/pkg/logging"
	"golang-netstate/internal/port"
	"golang-netstate/internal/types"

	"gopkg.in/yaml.v3"
)

// Backend is a StateBackend adapter reading and rewriting one state document.
type Backend struct {
	fileMgr port.FileManager
	path    string
}

// Ensure Backend implements the StateBackend port
var _ port.StateBackend = (*Backend)(nil)

// NewBackend creates a snapshot backend for the document at path.
func NewBackend(fileMgr port.FileManager, path string) *Backend {
	return &Backend{fileMgr: fileMgr, path: path}
}

// Observe decodes the state document. A missing document is an empty state.
func (b *Backend) Observe(ctx context.Context) (types.NetworkState, error) {
	state := types.NetworkState{Interfaces: []types.Interface{}}
	if !b.fileMgr.FileExists(b.path) {
		return state, nil
	}

	data, err := b.fileMgr.ReadFile(b.path)
	if err != nil {
		return types.NetworkState{}, err
	}
	if err := yaml.Unmarshal(data, &state); err != nil {
		return types.NetworkState{}, fmt.Errorf("failed to parse state file %s: %w", b.path, err)
	}
	if state.Interfaces == nil {
		state.Interfaces = []types.Interface{}
	}
	return state, nil
}

// Apply overlays desired onto the stored document and rewrites it.
func (b *Backend) Apply(ctx context.Context, desired types.NetworkState) error {
	current, err := b.Observe(ctx)
	if err != nil {
		return err
	}

	merged, err := Overlay(current, desired)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(merged)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	if err := b.fileMgr.WriteFile(b.path, data, 0644); err != nil {
		return err
	}

	logging.WithComponent("snapshot").WithFields(map[string]interface{}{
		"file":       b.path,
		"interfaces": desired.InterfaceNames(),
	}).Info("Wrote state file")
	return nil
}
