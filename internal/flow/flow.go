package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/vaultflow/internal/bundle"
	"github.com/phrazzld/vaultflow/internal/store"
	"github.com/phrazzld/vaultflow/internal/task"
)

// ScreenUnlock is the screen a flow usually starts on.
const ScreenUnlock = "unlock"

var (
	// ErrFlowNotFound is returned when no live flow has the requested ID.
	ErrFlowNotFound = errors.New("flow not found")

	// ErrFlowClosed is returned when an operation targets a flow that ended.
	ErrFlowClosed = errors.New("flow is closed")

	// ErrNoScreen is returned when a flow has no screen to act on.
	ErrNoScreen = errors.New("flow has no screen")

	// ErrInvalidEntry is returned when an entry cannot be committed.
	ErrInvalidEntry = errors.New("invalid entry")

	// ErrInvalidIntent is returned when an intent has no target screen.
	ErrInvalidIntent = errors.New("intent must name a screen")
)

// Flow is one user flow.
type Flow struct {
	id       uuid.UUID
	stack    ScreenStack
	registry *task.Registry
	states   store.SavedStateStore
	logger   *slog.Logger

	closed bool
	result *task.NewEntry
}

// New creates an empty flow. Start must be called before anything else.
func New(registry *task.Registry, states store.SavedStateStore, logger *slog.Logger) *Flow {
	id := uuid.New()
	if logger == nil {
		logger = slog.Default()
	}
	return &Flow{
		id:       id,
		registry: registry,
		states:   states,
		logger:   logger.With("component", "flow", "flow_id", id.String()),
	}
}

// ID returns the flow's identifier.
func (f *Flow) ID() uuid.UUID { return f.id }

// Closed reports whether the flow has ended.
func (f *Flow) Closed() bool { return f.closed }

// Result returns the entry handed back to the caller when the flow ended
// after creating or selecting one.
func (f *Flow) Result() *task.NewEntry { return f.result }

// Top returns the topmost screen, or nil.
func (f *Flow) Top() *Screen { return f.stack.Top() }

// Depth returns the number of live screens.
func (f *Flow) Depth() int { return f.stack.Len() }

// Start launches the first screen of the flow from an external intent.
func (f *Flow) Start(ctx context.Context, intent *bundle.Intent) error {
	if f.closed {
		return ErrFlowClosed
	}
	if f.stack.Len() > 0 {
		return fmt.Errorf("flow %s already started", f.id)
	}
	if err := f.launch(intent); err != nil {
		return err
	}
	f.logger.InfoContext(ctx, "flow started",
		"screen", intent.Screen,
		"task_kind", f.Top().task.Kind())
	return nil
}

// StartScreen implements task.Navigator.
func (f *Flow) StartScreen(intent *bundle.Intent) error {
	if f.closed {
		return ErrFlowClosed
	}
	return f.launch(intent)
}

// launch pushes a screen and runs its create path. The launched screen gets
// its own copy of the intent, so the sender cannot change it afterwards.
func (f *Flow) launch(intent *bundle.Intent) error {
	if intent == nil || strings.TrimSpace(intent.Screen) == "" {
		return ErrInvalidIntent
	}
	screen := &Screen{Name: intent.Screen, Incoming: intent.Clone()}
	screen.task = f.registry.LoadOnCreate(nil, screen.Incoming)
	f.stack.Push(screen)

	f.logger.Debug("screen launched",
		"screen", screen.Name,
		"depth", f.stack.Len()-1,
		"task_kind", screen.task.Kind())
	return nil
}

// Recreate destroys the top screen and builds it again, the way a host does
// after reclaiming a screen in the background. Only what the screen stored
// in its restart state survives.
func (f *Flow) Recreate(ctx context.Context) error {
	screen, err := f.activeTop()
	if err != nil {
		return err
	}
	depth := f.stack.Len() - 1

	saved := bundle.New()
	f.registry.Store(screen.task, saved)
	if err := f.states.SaveState(ctx, f.id, depth, saved); err != nil {
		return fmt.Errorf("failed to save state of screen %s: %w", screen.Name, err)
	}

	previousKind := screen.task.Kind()
	screen.task = nil

	restored, err := f.states.LoadState(ctx, f.id, depth)
	if err != nil {
		// Falling back to the launch intent loses only in-flight changes.
		f.logger.WarnContext(ctx, "saved state unavailable, recreating from launch intent",
			"screen", screen.Name,
			"depth", depth,
			"error", err)
		restored = nil
	}
	screen.task = f.registry.LoadOnCreate(restored, screen.Incoming)

	f.logger.InfoContext(ctx, "screen recreated",
		"screen", screen.Name,
		"depth", depth,
		"task_kind_before", previousKind,
		"task_kind_after", screen.task.Kind())
	return nil
}

// ReplaceTask supersedes the top screen's task. Tasks are replaced, never
// mutated in place.
func (f *Flow) ReplaceTask(ctx context.Context, t task.Task) error {
	screen, err := f.activeTop()
	if err != nil {
		return err
	}
	if t == nil {
		t = &task.NullTask{}
	}
	f.logger.InfoContext(ctx, "task replaced",
		"screen", screen.Name,
		"task_kind_before", screen.task.Kind(),
		"task_kind_after", t.Kind())
	screen.task = t
	return nil
}

// Unlock tells the top screen's task that the protected store is available.
func (f *Flow) Unlock(ctx context.Context) error {
	screen, err := f.activeTop()
	if err != nil {
		return err
	}
	if err := screen.task.AfterUnlock(f); err != nil {
		return fmt.Errorf("after-unlock hook of %s failed: %w", screen.task.Kind(), err)
	}
	f.logger.InfoContext(ctx, "store unlocked",
		"task_kind", screen.task.Kind(),
		"next_screen", f.Top().Name)
	return nil
}

// EntryOutcome describes what happened after an entry was created or selected.
type EntryOutcome struct {
	Entry      task.NewEntry
	FlowClosed bool
}

// CreateEntry opens the entry editor under the current task, commits draft,
// and lets the task decide whether the flow is over.
func (f *Flow) CreateEntry(ctx context.Context, draft task.NewEntry) (*EntryOutcome, error) {
	screen, err := f.activeTop()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(draft.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidEntry)
	}

	intent := bundle.NewIntent(task.ScreenEntryEdit)
	f.registry.Store(screen.task, intent)
	if err := f.launch(intent); err != nil {
		return nil, err
	}
	editor := f.Top()
	editor.task.PrepareNewEntry(&draft)

	if err := editor.task.AfterAddNewEntry(&entryScreen{flow: f, entry: draft}); err != nil {
		// The hook may have launched screens on top of the editor; leave those.
		if f.Top() == editor {
			f.stack.Pop()
		}
		return nil, fmt.Errorf("after-add-entry hook of %s failed: %w", editor.task.Kind(), err)
	}
	f.logger.InfoContext(ctx, "entry created",
		"task_kind", editor.task.Kind(),
		"has_url", draft.URL != "")

	return f.finishWithEntry(ctx, editor.task, editor, draft)
}

// SelectEntry hands an existing entry to the current task.
func (f *Flow) SelectEntry(ctx context.Context, entry task.NewEntry) (*EntryOutcome, error) {
	screen, err := f.activeTop()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(entry.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidEntry)
	}
	f.logger.DebugContext(ctx, "entry selected", "task_kind", screen.task.Kind())
	return f.finishWithEntry(ctx, screen.task, nil, entry)
}

// finishWithEntry asks t whether the flow is over. If not, the editor (when
// one is open) closes and the flow goes on; otherwise the whole flow ends with
// entry as its result.
func (f *Flow) finishWithEntry(ctx context.Context, t task.Task, editor *Screen, entry task.NewEntry) (*EntryOutcome, error) {
	if !t.CloseEntryScreenAfterCreate() {
		if editor != nil && f.Top() == editor {
			f.stack.Pop()
		}
		return &EntryOutcome{Entry: entry}, nil
	}

	f.result = &entry
	if err := f.Close(ctx); err != nil {
		return nil, err
	}
	return &EntryOutcome{Entry: entry, FlowClosed: true}, nil
}

// Back closes the top screen. Closing the last screen ends the flow.
func (f *Flow) Back(ctx context.Context) error {
	if _, err := f.activeTop(); err != nil {
		return err
	}
	popped := f.stack.Pop()
	f.logger.DebugContext(ctx, "screen closed", "screen", popped.Name)
	if f.stack.Len() == 0 {
		return f.Close(ctx)
	}
	return nil
}

// Close ends the flow and drops its restart state. Closing twice is a no-op.
func (f *Flow) Close(ctx context.Context) error {
	if f.closed {
		return nil
	}
	f.closed = true
	for f.stack.Len() > 0 {
		f.stack.Pop()
	}
	if err := f.states.DeleteFlowStates(ctx, f.id); err != nil {
		return fmt.Errorf("failed to delete saved state of flow %s: %w", f.id, err)
	}
	f.logger.InfoContext(ctx, "flow closed", "has_result", f.result != nil)
	return nil
}

func (f *Flow) activeTop() (*Screen, error) {
	if f.closed {
		return nil, ErrFlowClosed
	}
	screen := f.stack.Top()
	if screen == nil {
		return nil, ErrNoScreen
	}
	return screen, nil
}

// entryScreen is the editor as handed to AfterAddNewEntry.
type entryScreen struct {
	flow  *Flow
	entry task.NewEntry
}

func (s *entryScreen) StartScreen(intent *bundle.Intent) error {
	return s.flow.StartScreen(intent)
}

func (s *entryScreen) Entry() task.NewEntry {
	return s.entry
}
