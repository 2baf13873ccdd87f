package store

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/vaultflow/internal/bundle"
)

// SavedStateStore keeps the restart state of screens, keyed by flow and by the
// screen's depth in the flow's stack.
// Version: 1.0
type SavedStateStore interface {
	// SaveState stores state for the screen at depth, replacing any previous
	// snapshot. Snapshots of deeper screens are discarded, since those screens
	// no longer exist once a shallower screen is being saved.
	SaveState(ctx context.Context, flowID uuid.UUID, depth int, state *bundle.Bundle) error

	// LoadState returns the snapshot for the screen at depth.
	// Returns ErrStateNotFound if none was saved.
	LoadState(ctx context.Context, flowID uuid.UUID, depth int) (*bundle.Bundle, error)

	// DeleteFlowStates removes every snapshot of the flow. Deleting a flow
	// without snapshots is not an error.
	DeleteFlowStates(ctx context.Context, flowID uuid.UUID) error
}

type stateKey struct {
	flowID uuid.UUID
	depth  int
}

// MemoryStateStore is an in-process SavedStateStore.
type MemoryStateStore struct {
	mu     sync.RWMutex
	states map[stateKey]*bundle.Bundle
}

var _ SavedStateStore = (*MemoryStateStore)(nil)

// NewMemoryStateStore creates an empty MemoryStateStore.
func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{states: make(map[stateKey]*bundle.Bundle)}
}

// SaveState implements SavedStateStore.
func (s *MemoryStateStore) SaveState(ctx context.Context, flowID uuid.UUID, depth int, state *bundle.Bundle) error {
	if depth < 0 {
		return NewStoreError("saved_state", "save", "depth must not be negative", ErrInvalidEntity)
	}
	if state == nil {
		return NewStoreError("saved_state", "save", "state cannot be nil", ErrInvalidEntity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for k := range s.states {
		if k.flowID == flowID && k.depth > depth {
			delete(s.states, k)
		}
	}
	s.states[stateKey{flowID: flowID, depth: depth}] = state.Clone()
	return nil
}

// LoadState implements SavedStateStore.
func (s *MemoryStateStore) LoadState(ctx context.Context, flowID uuid.UUID, depth int) (*bundle.Bundle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.states[stateKey{flowID: flowID, depth: depth}]
	if !ok {
		return nil, ErrStateNotFound
	}
	return state.Clone(), nil
}

// DeleteFlowStates implements SavedStateStore.
func (s *MemoryStateStore) DeleteFlowStates(ctx context.Context, flowID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k := range s.states {
		if k.flowID == flowID {
			delete(s.states, k)
		}
	}
	return nil
}

// Len returns the number of stored snapshots.
func (s *MemoryStateStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.states)
}
