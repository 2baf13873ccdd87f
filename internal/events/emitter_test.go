package events

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/vaultflow/internal/platform/logger"
	"github.com/stretchr/testify/assert"
)

// recordingHandler keeps the events it receives.
type recordingHandler struct {
	mu     sync.Mutex
	events []*FlowEvent
	err    error
}

func (h *recordingHandler) HandleEvent(_ context.Context, event *FlowEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return h.err
}

func TestInMemoryEventEmitter(t *testing.T) {
	log, _ := logger.GetTestLogger(t)

	t.Run("no handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(log)
		err := emitter.EmitEvent(context.Background(), NewFlowEvent(TypeFlowStarted, uuid.New(), "NullTask", false))
		assert.NoError(t, err)
	})

	t.Run("every handler receives the event", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(log)
		first, second := &recordingHandler{}, &recordingHandler{}
		emitter.RegisterHandler(first)
		emitter.RegisterHandler(second)

		event := NewFlowEvent(TypeFlowClosed, uuid.New(), "", true)
		assert.NoError(t, emitter.EmitEvent(context.Background(), event))

		assert.Equal(t, []*FlowEvent{event}, first.events)
		assert.Equal(t, []*FlowEvent{event}, second.events)
	})

	t.Run("failing handler does not stop the others", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(log)
		failing := &recordingHandler{err: errors.New("handler error")}
		ok := &recordingHandler{}
		emitter.RegisterHandler(failing)
		emitter.RegisterHandler(ok)

		err := emitter.EmitEvent(context.Background(), NewFlowEvent(TypeFlowStarted, uuid.New(), "NullTask", false))

		assert.EqualError(t, err, "handler error")
		assert.Len(t, failing.events, 1)
		assert.Len(t, ok.events, 1)
	})
}

func TestNewFlowEvent(t *testing.T) {
	flowID := uuid.New()

	a := NewFlowEvent(TypeFlowStarted, flowID, "SearchUrlTask", false)
	b := NewFlowEvent(TypeFlowStarted, flowID, "SearchUrlTask", false)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, flowID, a.FlowID)
	assert.Equal(t, "SearchUrlTask", a.TaskKind)
	assert.False(t, a.CreatedAt.IsZero())
}

func TestLogHandler(t *testing.T) {
	log, buf := logger.GetTestLogger(t)
	flowID := uuid.New()

	err := NewLogHandler(log).HandleEvent(context.Background(),
		NewFlowEvent(TypeFlowClosed, flowID, "", true))

	assert.NoError(t, err)
	logger.AssertLogField(t, buf, "event_type", TypeFlowClosed)
	logger.AssertLogField(t, buf, "flow_id", flowID.String())
	logger.AssertLogField(t, buf, "has_result", true)
}
