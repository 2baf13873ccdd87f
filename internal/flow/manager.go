package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/vaultflow/internal/bundle"
	"github.com/phrazzld/vaultflow/internal/events"
	"github.com/phrazzld/vaultflow/internal/store"
	"github.com/phrazzld/vaultflow/internal/task"
)

// ErrTooManyFlows is returned when the manager is at capacity.
var ErrTooManyFlows = errors.New("too many active flows")

// Manager keeps the live flows of a host. Every operation on a flow runs
// while holding that flow's lock, so a Flow only ever sees one caller.
type Manager struct {
	registry *task.Registry
	states   store.SavedStateStore
	logger   *slog.Logger
	maxFlows int
	emitter  events.EventEmitter

	mu    sync.Mutex
	flows map[uuid.UUID]*managedFlow
}

type managedFlow struct {
	mu   sync.Mutex
	flow *Flow
}

// NewManager creates a Manager. maxFlows <= 0 means no limit.
func NewManager(registry *task.Registry, states store.SavedStateStore, logger *slog.Logger, maxFlows int) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		registry: registry,
		states:   states,
		logger:   logger.With("component", "flow_manager"),
		maxFlows: maxFlows,
		flows:    make(map[uuid.UUID]*managedFlow),
	}
}

// SetEventEmitter makes the manager publish flow lifecycle events to e.
// It must be called before the manager is used.
func (m *Manager) SetEventEmitter(e events.EventEmitter) {
	m.emitter = e
}

// Registry returns the task registry shared by the managed flows.
func (m *Manager) Registry() *task.Registry {
	return m.registry
}

// Start creates a flow and launches its first screen from intent. The slot is
// reserved before the flow starts, so a rejected flow never starts.
func (m *Manager) Start(ctx context.Context, intent *bundle.Intent) (View, error) {
	f := New(m.registry, m.states, m.logger)
	mf := &managedFlow{flow: f}
	mf.mu.Lock()
	defer mf.mu.Unlock()

	m.mu.Lock()
	if m.maxFlows > 0 && len(m.flows) >= m.maxFlows {
		m.mu.Unlock()
		m.logger.WarnContext(ctx, "refusing new flow, manager at capacity", "max_flows", m.maxFlows)
		return View{}, ErrTooManyFlows
	}
	m.flows[f.ID()] = mf
	m.mu.Unlock()

	if err := f.Start(ctx, intent); err != nil {
		m.remove(f.ID())
		return View{}, err
	}

	view := f.View()
	m.emit(ctx, events.TypeFlowStarted, view)
	return view, nil
}

// Do runs fn on the flow with the given ID. Flows that are closed when fn
// returns are dropped from the manager.
func (m *Manager) Do(ctx context.Context, id uuid.UUID, fn func(f *Flow) error) (View, error) {
	m.mu.Lock()
	mf, ok := m.flows[id]
	m.mu.Unlock()
	if !ok {
		return View{}, ErrFlowNotFound
	}

	mf.mu.Lock()
	defer mf.mu.Unlock()

	err := fn(mf.flow)
	view := mf.flow.View()
	if mf.flow.Closed() && m.remove(id) {
		m.emit(ctx, events.TypeFlowClosed, view)
	}
	return view, err
}

// Get returns a view of the flow with the given ID.
func (m *Manager) Get(ctx context.Context, id uuid.UUID) (View, error) {
	return m.Do(ctx, id, func(*Flow) error { return nil })
}

// Close ends the flow with the given ID and deletes its saved state.
func (m *Manager) Close(ctx context.Context, id uuid.UUID) error {
	_, err := m.Do(ctx, id, func(f *Flow) error { return f.Close(ctx) })
	if err != nil {
		return fmt.Errorf("failed to close flow %s: %w", id, err)
	}
	return nil
}

// CloseAll closes every live flow and returns how many were closed. Failures
// are logged and the flow is still dropped.
func (m *Manager) CloseAll(ctx context.Context) int {
	m.mu.Lock()
	ids := make([]uuid.UUID, 0, len(m.flows))
	for id := range m.flows {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	closed := 0
	for _, id := range ids {
		if err := m.Close(ctx, id); err != nil {
			m.logger.ErrorContext(ctx, "failed to close flow", "flow_id", id.String(), "error", err)
			m.remove(id)
			continue
		}
		closed++
	}
	return closed
}

// Len returns the number of live flows.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.flows)
}

// remove drops the flow and reports whether it was still registered.
func (m *Manager) remove(id uuid.UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.flows[id]
	delete(m.flows, id)
	return ok
}

// emit publishes a lifecycle event. Emission failures are logged and never
// fail the flow operation.
func (m *Manager) emit(ctx context.Context, eventType string, view View) {
	if m.emitter == nil {
		return
	}
	var taskKind string
	if top := view.Top(); top != nil {
		taskKind = top.TaskKind
	}
	event := events.NewFlowEvent(eventType, view.ID, taskKind, view.Result != nil)
	if err := m.emitter.EmitEvent(ctx, event); err != nil {
		m.logger.WarnContext(ctx, "failed to emit flow event",
			"event_type", eventType,
			"flow_id", view.ID.String(),
			"error", err)
	}
}
