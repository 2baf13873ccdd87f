package task

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/phrazzld/vaultflow/internal/bundle"
)

var (
	// ErrEmptyKind is returned when registering a variant without a kind tag.
	ErrEmptyKind = errors.New("task kind cannot be empty")

	// ErrDuplicateKind is returned when a kind tag is already registered.
	ErrDuplicateKind = errors.New("task kind already registered")
)

// Constructor returns a zero-valued task of one variant.
type Constructor func() Task

// builtinVariants lists the shipped variants by kind tag.
func builtinVariants() map[string]Constructor {
	return map[string]Constructor{
		KindNull:                 func() Task { return &NullTask{} },
		KindSearchURL:            func() Task { return &SearchUrlTask{} },
		KindSelectEntry:          func() Task { return &SelectEntryTask{} },
		KindCreateEntryThenClose: func() Task { return &CreateEntryThenCloseTask{} },
	}
}

// Registry rebuilds tasks from containers. Resolution never fails: anything it
// cannot make sense of becomes a NullTask.
type Registry struct {
	variants map[string]Constructor
	logger   *slog.Logger
}

// NewRegistry creates a registry holding the shipped variants.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		variants: builtinVariants(),
		logger:   logger.With("component", "task_registry"),
	}
}

// Register adds a variant. Kind tags are unique across the registry. Register
// is not safe to call once the registry is shared between goroutines.
func (r *Registry) Register(kind string, ctor Constructor) error {
	if kind == "" {
		return ErrEmptyKind
	}
	if ctor == nil {
		return fmt.Errorf("task kind %q: constructor cannot be nil", kind)
	}
	if _, exists := r.variants[kind]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateKind, kind)
	}
	r.variants[kind] = ctor
	return nil
}

// Kinds returns the registered kind tags in sorted order.
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.variants))
	for k := range r.variants {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Load rebuilds the task encoded in c.
//
// A nil container, a missing or empty kind tag, and an unknown kind tag all
// yield a NullTask. Unknown tags are logged, since they usually mean a payload
// from another app or a variant that was renamed.
func (r *Registry) Load(c bundle.Container) Task {
	if isNilContainer(c) {
		return &NullTask{}
	}

	kind := readString(c, KeyTaskType)
	if kind == "" {
		return &NullTask{}
	}

	ctor, ok := r.variants[kind]
	if !ok {
		r.logger.Warn("unknown task kind, falling back to null task",
			"task_kind", kind,
			"known_kinds", r.Kinds())
		return &NullTask{}
	}

	t := ctor()
	t.Setup(c)
	r.logger.Debug("task loaded", "task_kind", kind)
	return t
}

// Store writes t into c. See the package-level Store.
func (r *Registry) Store(t Task, c bundle.Container) {
	if isNilContainer(c) {
		return
	}
	Store(t, c)
}

// LoadOnCreate resolves the task of a screen that is being created. Saved
// state from a previous instance of the same screen wins over the launch
// message: the flow may have moved on since the screen was first launched.
func (r *Registry) LoadOnCreate(saved, incoming bundle.Container) Task {
	if !isNilContainer(saved) {
		return r.Load(saved)
	}
	return r.Load(incoming)
}

// isNilContainer also catches typed nil pointers stored in the interface.
func isNilContainer(c bundle.Container) bool {
	switch v := c.(type) {
	case nil:
		return true
	case *bundle.Bundle:
		return v == nil
	case *bundle.Intent:
		return v == nil
	}
	return false
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// Default returns the process-wide registry, which logs through slog.Default.
func Default() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry(nil)
	})
	return defaultRegistry
}

// Load rebuilds a task using the default registry.
func Load(c bundle.Container) Task {
	return Default().Load(c)
}

// LoadOnCreate resolves a screen's task using the default registry.
func LoadOnCreate(saved, incoming bundle.Container) Task {
	return Default().LoadOnCreate(saved, incoming)
}
