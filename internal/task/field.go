package task

import "github.com/phrazzld/vaultflow/internal/bundle"

// Field is one named value of a task's state.
type Field struct {
	Key   string
	Value *string
}

// NewField creates a Field holding a non-null value.
func NewField(key, value string) Field {
	return Field{Key: key, Value: bundle.String(value)}
}

// Write stores the field in c, overwriting any previous value at Key.
func (f Field) Write(c bundle.Container) {
	c.PutString(f.Key, f.Value)
}

// readString returns the value stored at key, or "" when it is absent or null.
func readString(c bundle.Container, key string) string {
	v, _ := c.GetString(key)
	return bundle.Deref(v)
}
