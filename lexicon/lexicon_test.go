package lexicon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortedAssignsDenseIDs(t *testing.T) {
	l := NewSorted([]string{"z", "b", "c"})
	require.Equal(t, 3, l.Len())

	id, ok := l.IDOf("b")
	require.True(t, ok)
	assert.EqualValues(t, 0, id)

	id, ok = l.IDOf("c")
	require.True(t, ok)
	assert.EqualValues(t, 1, id)

	id, ok = l.IDOf("z")
	require.True(t, ok)
	assert.EqualValues(t, 2, id)

	term, ok := l.TermOf(0)
	require.True(t, ok)
	assert.Equal(t, "b", term)
}

func TestSortedMissingTerm(t *testing.T) {
	l := NewSorted([]string{"a", "b"})
	_, ok := l.IDOf("absent")
	assert.False(t, ok)

	_, ok = l.TermOf(99)
	assert.False(t, ok)
}

func TestSortedDedup(t *testing.T) {
	l := NewSorted([]string{"a", "a", "b"})
	assert.Equal(t, 2, l.Len())
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	l := NewSorted([]string{"b", "c", "z"})
	data := l.Encode()

	decoded, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, l.Len(), decoded.Len())
	for i := 0; i < l.Len(); i++ {
		want, _ := l.TermOf(uint32(i))
		got, _ := decoded.TermOf(uint32(i))
		assert.Equal(t, want, got)
	}
}

func TestDecodeEmpty(t *testing.T) {
	decoded, err := Decode(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, decoded.Len())
}

func TestOrderedPreservesPositionalIDs(t *testing.T) {
	l := NewOrdered([]string{"z", "b", "c"})
	require.Equal(t, 3, l.Len())

	term, ok := l.TermOf(0)
	require.True(t, ok)
	assert.Equal(t, "z", term)

	id, ok := l.IDOf("c")
	require.True(t, ok)
	assert.EqualValues(t, 2, id)
}

func TestOrderedEncodeDecodeRoundTrip(t *testing.T) {
	l := NewOrdered([]string{"z", "b", "c"})
	data := l.Encode()

	decoded, err := DecodeOrdered(data)
	require.NoError(t, err)
	require.Equal(t, l.Len(), decoded.Len())
	for i := 0; i < l.Len(); i++ {
		want, _ := l.TermOf(uint32(i))
		got, _ := decoded.TermOf(uint32(i))
		assert.Equal(t, want, got)
	}
}
