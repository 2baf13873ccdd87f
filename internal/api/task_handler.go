package api

import (
	"net/http"

	"github.com/phrazzld/vaultflow/internal/api/shared"
	"github.com/phrazzld/vaultflow/internal/bundle"
	"github.com/phrazzld/vaultflow/internal/task"
)

// TaskHandler resolves serialized tasks without opening a flow.
type TaskHandler struct {
	registry *task.Registry
}

// NewTaskHandler creates a TaskHandler.
func NewTaskHandler(registry *task.Registry) *TaskHandler {
	return &TaskHandler{registry: registry}
}

// Resolve handles POST /api/tasks/resolve. The container goes through the
// same Load path a screen uses, so malformed input resolves to a NullTask
// rather than failing.
func (h *TaskHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req TaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	t := h.registry.Load(req.Task)
	normalized := bundle.New()
	h.registry.Store(t, normalized)

	shared.RespondWithJSON(w, r, http.StatusOK, TaskResponse{
		Kind: t.Kind(),
		Task: normalized,
	})
}

// Kinds handles GET /api/tasks/kinds.
func (h *TaskHandler) Kinds(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, map[string][]string{"kinds": h.registry.Kinds()})
}
