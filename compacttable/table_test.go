package compacttable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildAndOpenRoundTrip(t *testing.T) {
	xs := []uint64{0, 213, 12_148_409_321}
	data := Build(xs, DefaultBlockSize, false)

	table, err := Open(data)
	require.NoError(t, err)
	require.Equal(t, 3, table.Size())

	for i, want := range xs {
		got, err := table.At(i)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestDeltaEncodedRoundTrip(t *testing.T) {
	xs := []uint64{0, 2, 3, 10, 55, 1000}
	data := Build(xs, DefaultBlockSize, true)

	table, err := Open(data)
	require.NoError(t, err)
	for i, want := range xs {
		got, err := table.At(i)
		require.NoError(t, err)
		assert.Equal(t, want, got, "position %d", i)
	}
}

func TestBlockBoundaries(t *testing.T) {
	blockSize := 4

	xs := make([]uint64, blockSize)
	for i := range xs {
		xs[i] = uint64(i * 10)
	}
	data := Build(xs, blockSize, false)
	table, err := Open(data)
	require.NoError(t, err)
	assert.Equal(t, 1, len(table.leaders))
	for i, want := range xs {
		got, err := table.At(i)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	xs2 := make([]uint64, blockSize+1)
	for i := range xs2 {
		xs2[i] = uint64(i * 10)
	}
	data2 := Build(xs2, blockSize, false)
	table2, err := Open(data2)
	require.NoError(t, err)
	assert.Equal(t, 2, len(table2.leaders))
	for i, want := range xs2 {
		got, err := table2.At(i)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestAtOutOfRange(t *testing.T) {
	data := Build([]uint64{1, 2, 3}, DefaultBlockSize, false)
	table, err := Open(data)
	require.NoError(t, err)

	_, err = table.At(3)
	assert.Error(t, err)
	_, err = table.At(-1)
	assert.Error(t, err)
}

func TestEmptyTable(t *testing.T) {
	data := Build(nil, DefaultBlockSize, false)
	table, err := Open(data)
	require.NoError(t, err)
	assert.Equal(t, 0, table.Size())
}

func TestThreeTermOffsetTables(t *testing.T) {
	// A small three-entry offset table, one strictly increasing byte
	// offset per term, delta-encoded the same way doc.idoff is.
	offsets := []uint64{0, 2, 3}
	data := Build(offsets, DefaultBlockSize, true)
	table, err := Open(data)
	require.NoError(t, err)
	for i, want := range offsets {
		got, err := table.At(i)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestOpenRejectsUnknownFlags(t *testing.T) {
	data := Build([]uint64{1, 2, 3}, DefaultBlockSize, false)
	data[8] = 0xFE // stomp the flags word with reserved bits
	_, err := Open(data)
	assert.Error(t, err)
}

func TestOpenRejectsTruncatedHeader(t *testing.T) {
	_, err := Open([]byte{1, 2, 3})
	assert.Error(t, err)
}
