package bundle

// Intent is the message sent when one screen launches another. Its extras are
// the cross-boundary container.
type Intent struct {
	Screen string  `json:"screen"`
	Extras *Bundle `json:"extras"`
}

// NewIntent creates an Intent targeting screen with empty extras.
func NewIntent(screen string) *Intent {
	return &Intent{Screen: screen, Extras: New()}
}

// GetString implements Container. A nil Intent reads as empty.
func (i *Intent) GetString(key string) (*string, bool) {
	if i == nil {
		return nil, false
	}
	return i.Extras.GetString(key)
}

// PutString implements Container.
func (i *Intent) PutString(key string, value *string) {
	if i == nil {
		return
	}
	if i.Extras == nil {
		i.Extras = New()
	}
	i.Extras.PutString(key, value)
}

// Clone returns a deep copy of the intent.
func (i *Intent) Clone() *Intent {
	if i == nil {
		return nil
	}
	return &Intent{Screen: i.Screen, Extras: i.Extras.Clone()}
}
