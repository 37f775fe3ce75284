package indexfmt

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pombredanne/irkit/intcodec"
	"github.com/pombredanne/irkit/store"
)

func buildThreeTermIndex(t *testing.T) *Index {
	dir := store.NewMemDir()
	in := BuildInput{
		Terms: []TermPostings{
			{Term: "b", Docs: []uint64{0, 1}, Freqs: []uint64{1, 2}},
			{Term: "c", Docs: []uint64{1}, Freqs: []uint64{1}},
			{Term: "z", Docs: []uint64{0}, Freqs: []uint64{2}},
		},
		DocumentSizes: []uint64{10, 20, 30},
		Titles:        []string{"Doc1", "Doc2", "Doc3"},
		SkipBlockSize: 4,
		Codec:         intcodec.VarByteID,
	}
	require.NoError(t, Build(dir, in))

	ix, err := Open(dir)
	require.NoError(t, err)
	t.Cleanup(func() { ix.Close() })
	return ix
}

func TestBuildThreeTermIndexPostings(t *testing.T) {
	ix := buildThreeTermIndex(t)

	assert.Equal(t, 3, ix.CollectionSize())

	expect := map[string][][2]uint64{
		"b": {{0, 1}, {1, 2}},
		"c": {{1, 1}},
		"z": {{0, 2}},
	}
	for term, want := range expect {
		it, err := ix.PostingsByTerm(term)
		require.NoError(t, err)
		var got [][2]uint64
		for {
			p, ok := it.Next()
			if !ok {
				break
			}
			got = append(got, [2]uint64{p.Document, p.Payload})
		}
		assert.Equal(t, want, got, "term %q", term)
	}
}

func TestBuildThreeTermIndexOffsetSelection(t *testing.T) {
	ix := buildThreeTermIndex(t)

	tid, ok := ix.TermID("z")
	require.True(t, ok)

	docs, err := ix.Documents(tid)
	require.NoError(t, err)
	require.Equal(t, 1, docs.Len())

	v, ok := docs.Iterator().Next()
	require.True(t, ok)
	assert.EqualValues(t, 0, v)
}

func TestBuildThreeTermIndexMissingTerm(t *testing.T) {
	ix := buildThreeTermIndex(t)

	_, ok := ix.TermID("absent")
	assert.False(t, ok)

	it, err := ix.PostingsByTerm("absent")
	require.NoError(t, err)
	_, ok = it.Next()
	assert.False(t, ok)
}

func TestBuildThreeTermIndexTitlesAndSizes(t *testing.T) {
	ix := buildThreeTermIndex(t)

	title, ok := ix.Title(1)
	require.True(t, ok)
	assert.Equal(t, "Doc2", title)

	sz, err := ix.DocumentSize(2)
	require.NoError(t, err)
	assert.EqualValues(t, 30, sz)
}

func TestBuildThreeTermIndexCopyDocumentList(t *testing.T) {
	ix := buildThreeTermIndex(t)

	tid, ok := ix.TermID("z")
	require.True(t, ok)

	var buf bytes.Buffer
	n, err := ix.CopyDocumentList(tid, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NotEmpty(t, buf.Bytes())
}

func TestZeroPostingTermIsEmpty(t *testing.T) {
	dir := store.NewMemDir()
	in := BuildInput{
		Terms: []TermPostings{
			{Term: "a", Docs: nil, Freqs: nil},
			{Term: "b", Docs: []uint64{0}, Freqs: []uint64{1}},
		},
		DocumentSizes: []uint64{5},
		Titles:        []string{"Doc1"},
		SkipBlockSize: 4,
		Codec:         intcodec.VarByteID,
	}
	require.NoError(t, Build(dir, in))

	ix, err := Open(dir)
	require.NoError(t, err)
	defer ix.Close()

	tid, ok := ix.TermID("a")
	require.True(t, ok)

	tdf, err := ix.TDF(tid)
	require.NoError(t, err)
	assert.Equal(t, 0, tdf)

	var buf bytes.Buffer
	n, err := ix.CopyDocumentList(tid, &buf)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Empty(t, buf.Bytes())

	docs, err := ix.Documents(tid)
	require.NoError(t, err)
	assert.Equal(t, 0, docs.Len())
	_, ok = docs.Iterator().Next()
	assert.False(t, ok)
}

func TestTermScorerBM25AndQueryLikelihood(t *testing.T) {
	ix := buildThreeTermIndex(t)

	tid, ok := ix.TermID("b")
	require.True(t, ok)

	bm25, err := ix.TermScorer(tid, BM25)
	require.NoError(t, err)
	assert.Greater(t, bm25(2, 20), 0.0)

	ql, err := ix.TermScorer(tid, QueryLikelihood)
	require.NoError(t, err)
	// Query-likelihood scores are smoothed probabilities, in [0, 1].
	v := ql(2, 20)
	assert.GreaterOrEqual(t, v, 0.0)
	assert.LessOrEqual(t, v, 1.0)
}

func TestStringKeyedScoredPostingsWithoutScoreTuple(t *testing.T) {
	ix := buildThreeTermIndex(t)

	_, err := ix.ScoredPostingsByTerm("b", "")
	assert.Error(t, err)
}
