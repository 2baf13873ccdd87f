package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/vaultflow/internal/api/shared"
	"github.com/phrazzld/vaultflow/internal/bundle"
	"github.com/phrazzld/vaultflow/internal/flow"
	"github.com/phrazzld/vaultflow/internal/platform/logger"
	"github.com/phrazzld/vaultflow/internal/redact"
	"github.com/phrazzld/vaultflow/internal/task"
)

// FlowHandler handles flow HTTP requests.
type FlowHandler struct {
	manager *flow.Manager
}

// NewFlowHandler creates a FlowHandler.
func NewFlowHandler(manager *flow.Manager) *FlowHandler {
	return &FlowHandler{manager: manager}
}

// StartFlow handles POST /api/flows.
func (h *FlowHandler) StartFlow(w http.ResponseWriter, r *http.Request) {
	var req StartFlowRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	intent := &bundle.Intent{Screen: req.Screen, Extras: req.Extras}
	view, err := h.manager.Start(r.Context(), intent)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	logger.FromContext(r.Context()).Info("flow opened",
		"flow_id", view.ID.String(),
		"screen", req.Screen)
	shared.RespondWithJSON(w, r, http.StatusCreated, flowToResponse(view))
}

// GetFlow handles GET /api/flows/{id}.
func (h *FlowHandler) GetFlow(w http.ResponseWriter, r *http.Request) {
	id, ok := h.flowID(w, r)
	if !ok {
		return
	}
	view, err := h.manager.Get(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, flowToResponse(view))
}

// DeleteFlow handles DELETE /api/flows/{id}.
func (h *FlowHandler) DeleteFlow(w http.ResponseWriter, r *http.Request) {
	id, ok := h.flowID(w, r)
	if !ok {
		return
	}
	if err := h.manager.Close(r.Context(), id); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Unlock handles POST /api/flows/{id}/unlock.
func (h *FlowHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, func(ctx context.Context, f *flow.Flow) error {
		return f.Unlock(ctx)
	})
}

// Recreate handles POST /api/flows/{id}/recreate.
func (h *FlowHandler) Recreate(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, func(ctx context.Context, f *flow.Flow) error {
		return f.Recreate(ctx)
	})
}

// Back handles POST /api/flows/{id}/back.
func (h *FlowHandler) Back(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, func(ctx context.Context, f *flow.Flow) error {
		return f.Back(ctx)
	})
}

// ReplaceTask handles PUT /api/flows/{id}/task.
func (h *FlowHandler) ReplaceTask(w http.ResponseWriter, r *http.Request) {
	id, ok := h.flowID(w, r)
	if !ok {
		return
	}
	var req TaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	t := h.manager.Registry().Load(req.Task)
	view, err := h.manager.Do(r.Context(), id, func(f *flow.Flow) error {
		return f.ReplaceTask(r.Context(), t)
	})
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, flowToResponse(view))
}

// CreateEntry handles POST /api/flows/{id}/entries.
func (h *FlowHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	h.commitEntry(w, r, http.StatusCreated, (*flow.Flow).CreateEntry)
}

// SelectEntry handles POST /api/flows/{id}/selection.
func (h *FlowHandler) SelectEntry(w http.ResponseWriter, r *http.Request) {
	h.commitEntry(w, r, http.StatusOK, (*flow.Flow).SelectEntry)
}

type entryOp func(f *flow.Flow, ctx context.Context, entry task.NewEntry) (*flow.EntryOutcome, error)

func (h *FlowHandler) commitEntry(w http.ResponseWriter, r *http.Request, status int, op entryOp) {
	id, ok := h.flowID(w, r)
	if !ok {
		return
	}
	var req EntryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	var outcome *flow.EntryOutcome
	view, err := h.manager.Do(r.Context(), id, func(f *flow.Flow) error {
		var err error
		outcome, err = op(f, r.Context(), req.toEntry())
		return err
	})
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	logger.FromContext(r.Context()).Info("entry committed",
		"flow_id", id.String(),
		"url_host", redact.URLHost(outcome.Entry.URL),
		"flow_closed", outcome.FlowClosed)
	shared.RespondWithJSON(w, r, status, EntryResponse{
		Entry:      outcome.Entry,
		FlowClosed: outcome.FlowClosed,
		Flow:       flowToResponse(view),
	})
}

func (h *FlowHandler) run(w http.ResponseWriter, r *http.Request, fn func(context.Context, *flow.Flow) error) {
	id, ok := h.flowID(w, r)
	if !ok {
		return
	}
	view, err := h.manager.Do(r.Context(), id, func(f *flow.Flow) error {
		return fn(r.Context(), f)
	})
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, flowToResponse(view))
}

func (h *FlowHandler) flowID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid flow ID", err)
		return uuid.Nil, false
	}
	return id, true
}
