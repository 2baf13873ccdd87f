package task

import "github.com/phrazzld/vaultflow/internal/bundle"

// NullTask means there is no special intent. It is also what every malformed
// or unrecognized payload resolves to.
type NullTask struct{}

// Kind returns KindNull.
func (*NullTask) Kind() string { return KindNull }

// Fields returns nothing; only the kind tag is stored.
func (*NullTask) Fields() []Field { return nil }

// Setup reads nothing.
func (*NullTask) Setup(bundle.Container) {}

// PrepareNewEntry leaves the draft untouched.
func (*NullTask) PrepareNewEntry(*NewEntry) {}

// CloseEntryScreenAfterCreate is false: a new entry does not end the flow.
func (*NullTask) CloseEntryScreenAfterCreate() bool { return false }

// AfterUnlock opens the group browser.
func (t *NullTask) AfterUnlock(nav Navigator) error {
	return launchWithTask(nav, ScreenGroup, t)
}

// AfterAddNewEntry does nothing.
func (*NullTask) AfterAddNewEntry(EntryScreen) error { return nil }

// SearchUrlTask asks for the entries matching a URL once the store is unlocked.
type SearchUrlTask struct {
	UrlToSearch string
}

// Kind returns KindSearchURL.
func (*SearchUrlTask) Kind() string { return KindSearchURL }

// Fields returns the URL to search for.
func (t *SearchUrlTask) Fields() []Field {
	return []Field{NewField(KeyURLToSearch, t.UrlToSearch)}
}

// Setup reads the URL to search for; absent or null reads as "".
func (t *SearchUrlTask) Setup(c bundle.Container) {
	t.UrlToSearch = readString(c, KeyURLToSearch)
}

// AfterUnlock skips the group browser and goes straight to the search results.
func (t *SearchUrlTask) AfterUnlock(nav Navigator) error {
	return launchWithTask(nav, ScreenShareURLResults, t)
}

// PrepareNewEntry leaves the draft untouched.
func (*SearchUrlTask) PrepareNewEntry(*NewEntry) {}

// AfterAddNewEntry does nothing.
func (*SearchUrlTask) AfterAddNewEntry(EntryScreen) error { return nil }

// CloseEntryScreenAfterCreate is true: the caller gets one entry back and the
// flow is over.
func (*SearchUrlTask) CloseEntryScreenAfterCreate() bool { return true }

// SelectEntryTask is active while the user picks an entry for a caller.
type SelectEntryTask struct{}

// Kind returns KindSelectEntry.
func (*SelectEntryTask) Kind() string { return KindSelectEntry }

// Fields returns nothing; only the kind tag is stored.
func (*SelectEntryTask) Fields() []Field { return nil }

// Setup reads nothing.
func (*SelectEntryTask) Setup(bundle.Container) {}

// AfterUnlock opens the group browser so the user can pick an entry.
func (t *SelectEntryTask) AfterUnlock(nav Navigator) error {
	return launchWithTask(nav, ScreenGroup, t)
}

// PrepareNewEntry leaves the draft untouched.
func (*SelectEntryTask) PrepareNewEntry(*NewEntry) {}

// AfterAddNewEntry does nothing.
func (*SelectEntryTask) AfterAddNewEntry(EntryScreen) error { return nil }

// CloseEntryScreenAfterCreate is true: a new entry is the selection.
func (*SelectEntryTask) CloseEntryScreenAfterCreate() bool { return true }

// CreateEntryThenCloseTask creates a new entry, optionally pre-filled with a URL.
type CreateEntryThenCloseTask struct {
	Url string
}

// Kind returns KindCreateEntryThenClose.
func (*CreateEntryThenCloseTask) Kind() string { return KindCreateEntryThenClose }

// Fields returns the pre-fill URL.
func (t *CreateEntryThenCloseTask) Fields() []Field {
	return []Field{NewField(KeyCreateEntryURL, t.Url)}
}

// Setup reads the pre-fill URL; absent or null reads as "".
func (t *CreateEntryThenCloseTask) Setup(c bundle.Container) {
	t.Url = readString(c, KeyCreateEntryURL)
}

// AfterUnlock opens the group browser, where the entry editor is started.
func (t *CreateEntryThenCloseTask) AfterUnlock(nav Navigator) error {
	return launchWithTask(nav, ScreenGroup, t)
}

// PrepareNewEntry fills in the URL unless the draft already carries one.
func (t *CreateEntryThenCloseTask) PrepareNewEntry(entry *NewEntry) {
	if entry == nil || t.Url == "" || entry.URL != "" {
		return
	}
	entry.URL = t.Url
}

// AfterAddNewEntry does nothing.
func (*CreateEntryThenCloseTask) AfterAddNewEntry(EntryScreen) error { return nil }

// CloseEntryScreenAfterCreate stays false: creating the entry does not finish
// the flow, the user may still have to pick it.
func (*CreateEntryThenCloseTask) CloseEntryScreenAfterCreate() bool { return false }
