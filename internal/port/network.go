// Package port defines the primary ports (interfaces) for the application.
// This follows the Ports and Adapters (Hexagonal Architecture) pattern.
package port

//go:generate mockgen -source=network.go -destination=../mock/mock_network.go -package=mock

import (
	"context"

	"golang-netstate/internal/types"
)

// StateBackend is the primary port for reading and changing the host network state.
// The reconciler treats it as an opaque transactional store: one Observe, at most one Apply,
// then one more Observe per cycle.
type StateBackend interface {
	// Observe returns the complete current network state. It has no side effects and
	// returns equal states when called twice without an intervening change.
	Observe(ctx context.Context) (types.NetworkState, error)

	// Apply changes the live configuration to match the given (partial) state.
	// Fields and interfaces that are not mentioned are left untouched.
	Apply(ctx context.Context, desired types.NetworkState) error
}

// Journal is a port for recording the outcome of reconciliation runs.
type Journal interface {
	// Record stores one run
	Record(ctx context.Context, entry types.JournalEntry) error

	// List returns up to limit runs, newest first
	List(ctx context.Context, limit int) ([]types.JournalEntry, error)

	// Close releases the underlying storage
	Close() error
}
