package indexfmt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pombredanne/irkit/intcodec"
	"github.com/pombredanne/irkit/store"
)

func TestBuildRejectsNonIncreasingDocIDs(t *testing.T) {
	dir := store.NewMemDir()
	in := BuildInput{
		Terms: []TermPostings{
			{Term: "a", Docs: []uint64{1, 1}, Freqs: []uint64{1, 1}},
		},
		DocumentSizes: []uint64{10},
		Titles:        []string{"Doc1"},
		SkipBlockSize: 4,
		Codec:         intcodec.VarByteID,
	}
	err := Build(dir, in)
	assert.Error(t, err)
}

func TestBuildRejectsMismatchedTitlesAndSizes(t *testing.T) {
	dir := store.NewMemDir()
	in := BuildInput{
		DocumentSizes: []uint64{10, 20},
		Titles:        []string{"Doc1"},
		SkipBlockSize: 4,
		Codec:         intcodec.VarByteID,
	}
	err := Build(dir, in)
	assert.Error(t, err)
}

func TestBuildPropertiesRoundTrip(t *testing.T) {
	dir := store.NewMemDir()
	in := BuildInput{
		Terms: []TermPostings{
			{Term: "only", Docs: []uint64{0, 2, 5}, Freqs: []uint64{1, 1, 3}},
		},
		DocumentSizes: []uint64{4, 6, 8, 2, 9, 1},
		Titles:        []string{"d0", "d1", "d2", "d3", "d4", "d5"},
		SkipBlockSize: 2,
		Codec:         intcodec.StreamVarByteID,
	}
	require.NoError(t, Build(dir, in))

	ix, err := Open(dir)
	require.NoError(t, err)
	defer ix.Close()

	props := ix.Properties()
	assert.EqualValues(t, 6, props.Documents)
	assert.EqualValues(t, 5, props.Occurrences)
	assert.Equal(t, 2, props.SkipBlockSize)
	assert.InDelta(t, 30.0/6.0, props.AvgDocumentSize, 1e-9)
	assert.Equal(t, intcodec.StreamVarByteID, ix.Codec())

	tid, ok := ix.TermID("only")
	require.True(t, ok)
	occ, err := ix.TermOccurrences(tid)
	require.NoError(t, err)
	assert.EqualValues(t, 5, occ)
}

func TestBuildSingleTermIndex(t *testing.T) {
	dir := store.NewMemDir()
	in := BuildInput{
		Terms: []TermPostings{
			{Term: "solo", Docs: []uint64{0}, Freqs: []uint64{1}},
		},
		DocumentSizes: []uint64{3},
		Titles:        []string{"only doc"},
		SkipBlockSize: 8,
		Codec:         intcodec.VarByteID,
	}
	require.NoError(t, Build(dir, in))

	ix, err := Open(dir)
	require.NoError(t, err)
	defer ix.Close()

	tid, ok := ix.TermID("solo")
	require.True(t, ok)
	assert.EqualValues(t, 0, tid)

	term, ok := ix.Term(0)
	require.True(t, ok)
	assert.Equal(t, "solo", term)
}
