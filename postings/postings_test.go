package postings

import (
	"testing"

	"github.com/pombredanne/irkit/intcodec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentListRoundTrip(t *testing.T) {
	docs := []uint64{0, 1, 1000, 1001, 50000}
	data := BuildDocumentList(docs, 2, intcodec.VarByteID)

	list, err := OpenDocumentList(data, len(docs), 2, intcodec.VarByteID)
	require.NoError(t, err)
	assert.Equal(t, len(docs), list.Len())

	it := list.Iterator()
	var got []uint64
	for {
		v, ok := it.Next()
		if !ok {
			break
		}
		got = append(got, v)
	}
	assert.Equal(t, docs, got)
}

func TestSkipTo(t *testing.T) {
	docs := []uint64{3, 10, 17, 42, 90}
	data := BuildDocumentList(docs, 2, intcodec.VarByteID)
	list, err := OpenDocumentList(data, len(docs), 2, intcodec.VarByteID)
	require.NoError(t, err)

	it := list.Iterator()
	v, ok := it.SkipTo(11)
	require.True(t, ok)
	assert.EqualValues(t, 17, v)

	v, ok = it.SkipTo(42)
	require.True(t, ok)
	assert.EqualValues(t, 42, v)

	_, ok = it.SkipTo(91)
	assert.False(t, ok)
}

func TestSkipToFromFreshIterator(t *testing.T) {
	docs := []uint64{3, 10, 17, 42, 90}
	data := BuildDocumentList(docs, 2, intcodec.VarByteID)
	list, err := OpenDocumentList(data, len(docs), 2, intcodec.VarByteID)
	require.NoError(t, err)

	it := list.Iterator()
	v, ok := it.SkipTo(0)
	require.True(t, ok)
	assert.EqualValues(t, 3, v)
}

func TestPayloadListRoundTrip(t *testing.T) {
	freqs := []uint64{1, 2, 1, 5, 9, 2}
	data := BuildPayloadList(freqs, 4, intcodec.VarByteID)
	list, err := OpenPayloadList(data, len(freqs), 4, intcodec.VarByteID)
	require.NoError(t, err)

	it := list.Iterator()
	var got []uint64
	for {
		v, ok := it.Next()
		if !ok {
			break
		}
		got = append(got, v)
	}
	assert.Equal(t, freqs, got)
}

func TestPostingIterator(t *testing.T) {
	docs := []uint64{0, 1}
	freqs := []uint64{1, 2}

	docData := BuildDocumentList(docs, 256, intcodec.VarByteID)
	freqData := BuildPayloadList(freqs, 256, intcodec.VarByteID)

	docList, err := OpenDocumentList(docData, len(docs), 256, intcodec.VarByteID)
	require.NoError(t, err)
	freqList, err := OpenPayloadList(freqData, len(freqs), 256, intcodec.VarByteID)
	require.NoError(t, err)

	it, err := NewPostingIterator(docList, freqList)
	require.NoError(t, err)

	var got []Posting
	for {
		p, ok := it.Next()
		if !ok {
			break
		}
		got = append(got, p)
	}
	assert.Equal(t, []Posting{{0, 1}, {1, 2}}, got)
}

func TestPostingIteratorLengthMismatch(t *testing.T) {
	docData := BuildDocumentList([]uint64{0, 1}, 256, intcodec.VarByteID)
	freqData := BuildPayloadList([]uint64{1}, 256, intcodec.VarByteID)

	docList, err := OpenDocumentList(docData, 2, 256, intcodec.VarByteID)
	require.NoError(t, err)
	freqList, err := OpenPayloadList(freqData, 1, 256, intcodec.VarByteID)
	require.NoError(t, err)

	_, err = NewPostingIterator(docList, freqList)
	assert.Error(t, err)
}

func TestEmptyDocumentList(t *testing.T) {
	data := BuildDocumentList(nil, 256, intcodec.VarByteID)
	list, err := OpenDocumentList(data, 0, 256, intcodec.VarByteID)
	require.NoError(t, err)
	assert.Equal(t, 0, list.Len())
	_, ok := list.Iterator().Next()
	assert.False(t, ok)
}

func TestEmptyPostingIterator(t *testing.T) {
	it := Empty()
	_, ok := it.Next()
	assert.False(t, ok)
}

func TestDeclaredCountMismatch(t *testing.T) {
	data := BuildDocumentList([]uint64{0, 1, 2}, 256, intcodec.VarByteID)
	_, err := OpenDocumentList(data, 99, 256, intcodec.VarByteID)
	assert.Error(t, err)
}

func TestStreamVarByteDocumentList(t *testing.T) {
	docs := []uint64{5, 5000, 70000, 16000000, 16000001}
	data := BuildDocumentList(docs, 2, intcodec.StreamVarByteID)
	list, err := OpenDocumentList(data, len(docs), 2, intcodec.StreamVarByteID)
	require.NoError(t, err)

	var got []uint64
	it := list.Iterator()
	for {
		v, ok := it.Next()
		if !ok {
			break
		}
		got = append(got, v)
	}
	assert.Equal(t, docs, got)
}
