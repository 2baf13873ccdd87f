package task

import "github.com/phrazzld/vaultflow/internal/bundle"

// Kind tags. A kind tag identifies a variant in serialized form and is the
// registry lookup key, so it must never be reused or renamed.
const (
	KindNull                 = "NullTask"
	KindSearchURL            = "SearchUrlTask"
	KindSelectEntry          = "SelectEntryTask"
	KindCreateEntryThenClose = "CreateEntryThenCloseTask"
)

// Reserved container keys.
const (
	// KeyTaskType holds the kind tag.
	KeyTaskType = "KP2A_APP_TASK_TYPE"

	KeyURLToSearch    = "UrlToSearch"
	KeyCreateEntryURL = "CreateEntry_Url"
)

// Screens a task may navigate to.
const (
	ScreenGroup           = "group"
	ScreenShareURLResults = "share_url_results"
	ScreenEntryEdit       = "entry_edit"
)

// Task is a serializable descriptor of what the user is trying to do.
type Task interface {
	// Kind returns the variant's kind tag.
	Kind() string

	// Fields returns the task's state. Keys are unique; the result is the
	// only thing serialization looks at.
	Fields() []Field

	// Setup reads the task's fields back from c.
	Setup(c bundle.Container)

	// AfterUnlock is called once the protected store has been unlocked and
	// decides which screen comes next.
	AfterUnlock(nav Navigator) error

	// PrepareNewEntry lets the task pre-fill a draft before the editor opens.
	PrepareNewEntry(entry *NewEntry)

	// AfterAddNewEntry is called after an entry was committed under this task.
	AfterAddNewEntry(screen EntryScreen) error

	// CloseEntryScreenAfterCreate reports whether the entry editor, and with it
	// the flow, should end once an entry was created or selected.
	CloseEntryScreenAfterCreate() bool
}

// Navigator launches screens. Implemented by the flow host.
type Navigator interface {
	StartScreen(intent *bundle.Intent) error
}

// EntryScreen is the entry editor as seen by AfterAddNewEntry.
type EntryScreen interface {
	Navigator

	// Entry returns the entry that was just committed.
	Entry() NewEntry
}

// NewEntry is the editor's draft of an entry.
type NewEntry struct {
	Title    string `json:"title"`
	Username string `json:"username,omitempty"`
	URL      string `json:"url,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// Store writes t's kind tag followed by its fields into c. A nil task is stored
// as a NullTask; a nil container is ignored.
func Store(t Task, c bundle.Container) {
	if c == nil {
		return
	}
	if t == nil {
		t = &NullTask{}
	}
	NewField(KeyTaskType, t.Kind()).Write(c)
	for _, f := range t.Fields() {
		f.Write(c)
	}
}

// launchWithTask starts screen with t copied into the outgoing intent.
func launchWithTask(nav Navigator, screen string, t Task) error {
	intent := bundle.NewIntent(screen)
	Store(t, intent)
	return nav.StartScreen(intent)
}
