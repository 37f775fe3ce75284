package intcodec

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVarByteRoundTrip(t *testing.T) {
	cases := [][]uint64{
		{},
		{0},
		{0, 213, 12_148_409_321},
		{1, 2, 3, 4, 5, 6, 7},
		{127, 128, 129, 16383, 16384},
	}
	var c VarByte
	for _, xs := range cases {
		data := c.Encode(xs)
		got := c.Decode(data, len(xs))
		assert.Equal(t, xs, got)
	}
}

func TestVarByteZeroIsOneByte(t *testing.T) {
	var c VarByte
	data := c.Encode([]uint64{0})
	assert.Equal(t, []byte{0x80}, data)
}

func TestVarByteDeltaRoundTrip(t *testing.T) {
	var c VarByte
	deltas := []uint64{3, 7, 7, 25, 48}
	data := c.Encode(deltas)
	want := make([]uint64, len(deltas))
	var sum uint64
	for i, d := range deltas {
		sum += d
		want[i] = sum
	}
	got := c.DecodeDelta(data, len(deltas))
	assert.Equal(t, want, got)
}

func TestStreamVarByteRoundTrip(t *testing.T) {
	cases := [][]uint64{
		{},
		{0},
		{0, 1, 2},
		{0, 1, 2, 3, 4},
		{255, 256, 65535, 65536, 16777215, 16777216, 4294967295},
	}
	var c StreamVByte
	for _, xs := range cases {
		data := c.Encode(xs)
		got := c.Decode(data, len(xs))
		assert.Equal(t, xs, got)
	}
}

func TestStreamVarByteRandom(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	var c StreamVByte
	for trial := 0; trial < 50; trial++ {
		n := r.Intn(40)
		xs := make([]uint64, n)
		for i := range xs {
			xs[i] = uint64(r.Uint32()) >> uint(r.Intn(32))
		}
		data := c.Encode(xs)
		got := c.Decode(data, n)
		assert.Equal(t, xs, got)
	}
}

func TestByID(t *testing.T) {
	assert.IsType(t, VarByte{}, ByID(VarByteID))
	assert.IsType(t, StreamVByte{}, ByID(StreamVarByteID))
}
