package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type handle struct{ content string }

func TestKeyEquality(t *testing.T) {
	h := &handle{"ab"}

	k1, err := NewKey("tokens", h, 3)
	require.NoError(t, err)
	k2, err := NewKey("tokens", h, 3)
	require.NoError(t, err)

	assert.Equal(t, k1, k2)
	assert.True(t, k1 == k2)

	m := map[Key]int{k1: 1}
	assert.Equal(t, 1, m[k2])
}

func TestKeyDiscrimination(t *testing.T) {
	a := &handle{"same"}
	b := &handle{"same"}

	cases := []struct {
		name string
		x, y func() (Key, error)
	}{
		{"different name", func() (Key, error) { return NewKey("a", 1) }, func() (Key, error) { return NewKey("b", 1) }},
		{"different arg", func() (Key, error) { return NewKey("a", 1) }, func() (Key, error) { return NewKey("a", 2) }},
		{"different arity", func() (Key, error) { return NewKey("a") }, func() (Key, error) { return NewKey("a", nil) }},
		{"different pointers", func() (Key, error) { return NewKey("a", a) }, func() (Key, error) { return NewKey("a", b) }},
		{"different dynamic type", func() (Key, error) { return NewKey("a", 1) }, func() (Key, error) { return NewKey("a", int64(1)) }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			x, err := tc.x()
			require.NoError(t, err)
			y, err := tc.y()
			require.NoError(t, err)
			assert.NotEqual(t, x, y)
		})
	}
}

func TestKeyRejectsUncomparableArgs(t *testing.T) {
	_, err := NewKey("a", []string{"x"})
	assert.ErrorIs(t, err, ErrUnhashableArgument)

	_, err = NewKey("a", map[string]int{})
	assert.ErrorIs(t, err, ErrUnhashableArgument)

	_, err = NewKey("a", struct{ v any }{v: []int{1}})
	assert.ErrorIs(t, err, ErrUnhashableArgument)
}

func TestKeyArity(t *testing.T) {
	args := make([]any, MaxArgs+1)
	_, err := NewKey("a", args...)
	assert.ErrorIs(t, err, ErrTooManyArguments)

	k, err := NewKey("a", 1, "x")
	require.NoError(t, err)
	assert.Equal(t, 2, k.Arity())
	assert.Equal(t, []any{1, "x"}, k.Args())
	assert.Equal(t, "a(int, string)", k.String())
}
