package bundle

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBundle_NullIsDistinctFromAbsent(t *testing.T) {
	b := New()
	b.PutString("empty", nil)

	v, ok := b.GetString("empty")
	assert.True(t, ok, "null value should be reported as present")
	assert.Nil(t, v)

	v, ok = b.GetString("missing")
	assert.False(t, ok)
	assert.Nil(t, v)
}

func TestBundle_PutOverwrites(t *testing.T) {
	b := New()
	b.PutString("k", String("first"))
	b.PutString("k", String("second"))

	v, ok := b.GetString("k")
	require.True(t, ok)
	assert.Equal(t, "second", *v)

	b.PutString("k", nil)
	v, ok = b.GetString("k")
	require.True(t, ok)
	assert.Nil(t, v)
}

func TestBundle_ValuesAreCopied(t *testing.T) {
	b := New()
	s := "original"
	b.PutString("k", &s)
	s = "changed"

	v, _ := b.GetString("k")
	assert.Equal(t, "original", *v)

	*v = "mutated by reader"
	again, _ := b.GetString("k")
	assert.Equal(t, "original", *again)
}

func TestBundle_NilReceiver(t *testing.T) {
	var b *Bundle

	v, ok := b.GetString("k")
	assert.False(t, ok)
	assert.Nil(t, v)
	assert.Equal(t, 0, b.Len())
	assert.Nil(t, b.Keys())
	assert.Nil(t, b.Clone())

	// Must not panic.
	b.PutString("k", String("v"))
	b.Remove("k")
}

func TestBundle_CloneIsIndependent(t *testing.T) {
	b := FromMap(map[string]string{"a": "1"})
	c := b.Clone()
	c.PutString("a", String("2"))
	c.PutString("b", nil)

	v, _ := b.GetString("a")
	assert.Equal(t, "1", *v)
	assert.Equal(t, 1, b.Len())
	assert.Equal(t, []string{"a", "b"}, c.Keys())
}

func TestBundle_JSONPreservesNulls(t *testing.T) {
	b := New()
	b.PutString("url", String("http://x"))
	b.PutString("none", nil)

	data, err := json.Marshal(b)
	require.NoError(t, err)
	assert.JSONEq(t, `{"url":"http://x","none":null}`, string(data))

	decoded := New()
	require.NoError(t, json.Unmarshal(data, decoded))

	v, ok := decoded.GetString("none")
	assert.True(t, ok)
	assert.Nil(t, v)

	v, ok = decoded.GetString("url")
	require.True(t, ok)
	assert.Equal(t, "http://x", *v)
}

func TestBundle_UnmarshalDropsNonStrings(t *testing.T) {
	b := New()
	err := json.Unmarshal([]byte(`{"n":5,"flag":true,"list":["a"],"obj":{"k":"v"},"s":"kept","z":null}`), b)
	require.NoError(t, err)

	assert.Equal(t, []string{"s", "z"}, b.Keys())
	v, ok := b.GetString("s")
	require.True(t, ok)
	assert.Equal(t, "kept", *v)
	v, ok = b.GetString("z")
	assert.True(t, ok)
	assert.Nil(t, v)
	_, ok = b.GetString("n")
	assert.False(t, ok)
}

func TestBundle_UnmarshalRejectsNonObjects(t *testing.T) {
	for _, input := range []string{`5`, `"text"`, `["a"]`} {
		b := New()
		assert.Error(t, json.Unmarshal([]byte(input), b), input)
	}
}

func TestIntent_DelegatesToExtras(t *testing.T) {
	i := NewIntent("group")
	i.PutString("k", String("v"))

	v, ok := i.Extras.GetString("k")
	require.True(t, ok)
	assert.Equal(t, "v", *v)

	var nilIntent *Intent
	_, ok = nilIntent.GetString("k")
	assert.False(t, ok)

	bare := &Intent{Screen: "x"}
	bare.PutString("k", nil)
	_, ok = bare.GetString("k")
	assert.True(t, ok)
}

func TestDeref(t *testing.T) {
	assert.Equal(t, "", Deref(nil))
	assert.Equal(t, "v", Deref(String("v")))
}
