package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Flow event types.
const (
	TypeFlowStarted = "flow.started"
	TypeFlowClosed  = "flow.closed"
)

// FlowEvent reports a change in a flow's lifecycle.
type FlowEvent struct {
	ID     uuid.UUID `json:"id"`
	Type   string    `json:"type"`
	FlowID uuid.UUID `json:"flow_id"`

	// TaskKind is the kind of the task on the top screen when the event was
	// raised. Empty once a flow has no screens left.
	TaskKind string `json:"task_kind,omitempty"`

	// HasResult reports whether a closed flow handed an entry back.
	HasResult bool `json:"has_result"`

	CreatedAt time.Time `json:"created_at"`
}

// NewFlowEvent creates a FlowEvent with a fresh ID.
func NewFlowEvent(eventType string, flowID uuid.UUID, taskKind string, hasResult bool) *FlowEvent {
	return &FlowEvent{
		ID:        uuid.New(),
		Type:      eventType,
		FlowID:    flowID,
		TaskKind:  taskKind,
		HasResult: hasResult,
		CreatedAt: time.Now().UTC(),
	}
}

// EventHandler processes flow events.
type EventHandler interface {
	HandleEvent(ctx context.Context, event *FlowEvent) error
}

// EventHandlerFunc adapts a function to EventHandler.
type EventHandlerFunc func(ctx context.Context, event *FlowEvent) error

// HandleEvent implements EventHandler.
func (f EventHandlerFunc) HandleEvent(ctx context.Context, event *FlowEvent) error {
	return f(ctx, event)
}

// EventEmitter publishes flow events.
type EventEmitter interface {
	EmitEvent(ctx context.Context, event *FlowEvent) error
}

// NewLogHandler returns a handler that writes every event to logger at info
// level.
func NewLogHandler(logger *slog.Logger) EventHandler {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "flow_events")
	return EventHandlerFunc(func(ctx context.Context, event *FlowEvent) error {
		logger.InfoContext(ctx, "flow event",
			"event_id", event.ID.String(),
			"event_type", event.Type,
			"flow_id", event.FlowID.String(),
			"task_kind", event.TaskKind,
			"has_result", event.HasResult)
		return nil
	})
}
