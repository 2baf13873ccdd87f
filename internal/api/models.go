package api

import (
	"github.com/phrazzld/vaultflow/internal/bundle"
	"github.com/phrazzld/vaultflow/internal/flow"
	"github.com/phrazzld/vaultflow/internal/task"
)

// StartFlowRequest is the launch intent that opens a flow.
type StartFlowRequest struct {
	Screen string         `json:"screen" validate:"required,max=128"`
	Extras *bundle.Bundle `json:"extras"`
}

// EntryRequest is an entry draft to create, or an existing entry to select.
type EntryRequest struct {
	Title    string `json:"title"              validate:"required,max=512"`
	Username string `json:"username,omitempty" validate:"max=512"`
	URL      string `json:"url,omitempty"      validate:"max=2048"`
	Notes    string `json:"notes,omitempty"    validate:"max=65536"`
}

// TaskRequest carries a serialized task.
type TaskRequest struct {
	Task *bundle.Bundle `json:"task" validate:"required"`
}

// ScreenResponse describes one screen of a flow.
type ScreenResponse struct {
	Name     string         `json:"name"`
	TaskKind string         `json:"task_kind"`
	Task     *bundle.Bundle `json:"task"`
}

// FlowResponse describes a flow.
type FlowResponse struct {
	ID      string           `json:"id"`
	Closed  bool             `json:"closed"`
	Screen  *ScreenResponse  `json:"screen,omitempty"`
	Screens []ScreenResponse `json:"screens"`
	Result  *task.NewEntry   `json:"result,omitempty"`
}

// EntryResponse is returned after an entry was created or selected.
type EntryResponse struct {
	Entry      task.NewEntry `json:"entry"`
	FlowClosed bool          `json:"flow_closed"`
	Flow       FlowResponse  `json:"flow"`
}

// TaskResponse describes a resolved task.
type TaskResponse struct {
	Kind string         `json:"kind"`
	Task *bundle.Bundle `json:"task"`
}

func (r EntryRequest) toEntry() task.NewEntry {
	return task.NewEntry{
		Title:    r.Title,
		Username: r.Username,
		URL:      r.URL,
		Notes:    r.Notes,
	}
}

func flowToResponse(v flow.View) FlowResponse {
	resp := FlowResponse{
		ID:      v.ID.String(),
		Closed:  v.Closed,
		Screens: make([]ScreenResponse, 0, len(v.Screens)),
		Result:  v.Result,
	}
	for _, s := range v.Screens {
		resp.Screens = append(resp.Screens, ScreenResponse{
			Name:     s.Name,
			TaskKind: s.TaskKind,
			Task:     s.Task,
		})
	}
	if n := len(resp.Screens); n > 0 {
		top := resp.Screens[n-1]
		resp.Screen = &top
	}
	return resp
}
