package flow

import (
	"github.com/phrazzld/vaultflow/internal/bundle"
	"github.com/phrazzld/vaultflow/internal/task"
)

// Screen is one live screen of a flow.
type Screen struct {
	Name     string
	Incoming *bundle.Intent

	// task is nil while the screen is destroyed.
	task task.Task
}

// Task returns the screen's current task.
func (s *Screen) Task() task.Task {
	return s.task
}

// ScreenStack holds a flow's screens, topmost last.
type ScreenStack struct {
	items []*Screen
}

func (s *ScreenStack) Push(screen *Screen) {
	if screen == nil {
		return
	}
	s.items = append(s.items, screen)
}

func (s *ScreenStack) Pop() *Screen {
	if len(s.items) == 0 {
		return nil
	}
	last := s.items[len(s.items)-1]
	s.items[len(s.items)-1] = nil
	s.items = s.items[:len(s.items)-1]
	return last
}

func (s ScreenStack) Top() *Screen {
	if len(s.items) == 0 {
		return nil
	}
	return s.items[len(s.items)-1]
}

func (s ScreenStack) Len() int {
	return len(s.items)
}
