package flow

import (
	"github.com/google/uuid"
	"github.com/phrazzld/vaultflow/internal/bundle"
	"github.com/phrazzld/vaultflow/internal/task"
)

// View is a copy of a flow's observable state.
type View struct {
	ID      uuid.UUID
	Closed  bool
	Screens []ScreenView
	Result  *task.NewEntry
}

// ScreenView describes one screen, bottom of the stack first.
type ScreenView struct {
	Name     string
	TaskKind string
	// Task is the screen's task serialized the same way it would be written
	// into an intent.
	Task *bundle.Bundle
}

// Top returns the topmost screen view, or nil.
func (v View) Top() *ScreenView {
	if len(v.Screens) == 0 {
		return nil
	}
	return &v.Screens[len(v.Screens)-1]
}

// View returns a snapshot of the flow.
func (f *Flow) View() View {
	v := View{ID: f.id, Closed: f.closed}
	if f.result != nil {
		r := *f.result
		v.Result = &r
	}
	for _, s := range f.stack.items {
		sv := ScreenView{Name: s.Name, Task: bundle.New()}
		if s.task != nil {
			sv.TaskKind = s.task.Kind()
			f.registry.Store(s.task, sv.Task)
		}
		v.Screens = append(v.Screens, sv)
	}
	return v
}
