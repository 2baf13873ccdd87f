package bundle

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Container is the read/write surface shared by restart state and launch messages.
type Container interface {
	// GetString returns the value stored at key. ok is false when the key was
	// never written; a nil value with ok true means null was written.
	GetString(key string) (value *string, ok bool)

	// PutString stores value at key, replacing whatever was there.
	PutString(key string, value *string)
}

// Bundle is a map-backed Container. A nil *Bundle reads as empty.
type Bundle struct {
	values map[string]*string
}

// New creates an empty Bundle.
func New() *Bundle {
	return &Bundle{values: make(map[string]*string)}
}

// FromMap creates a Bundle holding a copy of the given values.
func FromMap(values map[string]string) *Bundle {
	b := New()
	for k, v := range values {
		b.PutString(k, String(v))
	}
	return b
}

// GetString implements Container.
func (b *Bundle) GetString(key string) (*string, bool) {
	if b == nil || b.values == nil {
		return nil, false
	}
	v, ok := b.values[key]
	if !ok {
		return nil, false
	}
	if v == nil {
		return nil, true
	}
	out := *v
	return &out, true
}

// PutString implements Container. Writes into a nil Bundle are dropped.
func (b *Bundle) PutString(key string, value *string) {
	if b == nil {
		return
	}
	if b.values == nil {
		b.values = make(map[string]*string)
	}
	if value == nil {
		b.values[key] = nil
		return
	}
	v := *value
	b.values[key] = &v
}

// Remove deletes key from the bundle.
func (b *Bundle) Remove(key string) {
	if b == nil {
		return
	}
	delete(b.values, key)
}

// Len returns the number of keys, null values included.
func (b *Bundle) Len() int {
	if b == nil {
		return 0
	}
	return len(b.values)
}

// Keys returns the stored keys in sorted order.
func (b *Bundle) Keys() []string {
	if b == nil {
		return nil
	}
	keys := make([]string, 0, len(b.values))
	for k := range b.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a deep copy. Cloning a nil Bundle returns nil.
func (b *Bundle) Clone() *Bundle {
	if b == nil {
		return nil
	}
	out := New()
	for k, v := range b.values {
		out.PutString(k, v)
	}
	return out
}

// MarshalJSON encodes the bundle as a flat JSON object. Null values are kept.
func (b *Bundle) MarshalJSON() ([]byte, error) {
	if b == nil || b.values == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(b.values)
}

// UnmarshalJSON decodes a flat JSON object. String and null values are kept;
// values of any other type are dropped, the same as a typed extra reads as
// absent through GetString. Anything but an object is an error.
func (b *Bundle) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode bundle: %w", err)
	}

	values := make(map[string]*string, len(raw))
	for k, v := range raw {
		var s *string
		if err := json.Unmarshal(v, &s); err != nil {
			continue
		}
		values[k] = s
	}
	b.values = values
	return nil
}

// String returns a pointer to v, for use with PutString.
func String(v string) *string {
	return &v
}

// Deref returns the pointed-to string, or "" for nil.
func Deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
