package postings

import (
	"github.com/pombredanne/irkit/intcodec"
	"github.com/pombredanne/irkit/irkerr"
)

// DocumentList is a lazily-decoded, strictly increasing sequence of
// document ids for one term.
type DocumentList struct {
	data      []byte
	blockSize int
	codec     intcodec.Codec
	h         header
}

// OpenDocumentList parses a term's document-list slice. declaredCount
// must equal the list's own header count (normally the term's document
// frequency, tdf); a mismatch is a malformed index.
func OpenDocumentList(data []byte, declaredCount, blockSize int, codecID intcodec.ID) (*DocumentList, error) {
	if declaredCount == 0 {
		// A term with zero postings occupies zero bytes in the blob (the
		// builder writes nothing for it); there is no framing to parse.
		return &DocumentList{data: data, blockSize: blockSize, codec: intcodec.ByID(codecID)}, nil
	}
	h, err := parseHeader(data, blockSize)
	if err != nil {
		return nil, err
	}
	if h.n != declaredCount {
		return nil, irkerr.Newf(irkerr.Malformed, "document list: declared count %d does not match header count %d", declaredCount, h.n)
	}
	return &DocumentList{data: data, blockSize: blockSize, codec: intcodec.ByID(codecID), h: h}, nil
}

// Len returns the number of documents in the list.
func (l *DocumentList) Len() int { return l.h.n }

// Iterator returns a fresh forward iterator. Iterators are not
// thread-safe and must not be shared across goroutines.
func (l *DocumentList) Iterator() *DocIterator {
	return newDocIterator(l)
}

// BuildDocumentList encodes a strictly increasing sequence of document
// ids into the on-disk list layout, grouping skipBlockSize ids per block.
func BuildDocumentList(docIDs []uint64, skipBlockSize int, codecID intcodec.ID) []byte {
	codec := intcodec.ByID(codecID)
	n := len(docIDs)
	numBlocks := (n + skipBlockSize - 1) / skipBlockSize

	hints := make([]uint64, numBlocks)
	blocks := make([][]byte, numBlocks)

	var prevBlockLast uint64
	for b := 0; b < numBlocks; b++ {
		start := b * skipBlockSize
		end := start + skipBlockSize
		if end > n {
			end = n
		}
		block := docIDs[start:end]
		deltas := make([]uint64, len(block))
		base := prevBlockLast
		if b == 0 {
			base = 0
		}
		for i, id := range block {
			deltas[i] = id - base
			base = id
		}
		hints[b] = block[len(block)-1]
		blocks[b] = codec.Encode(deltas)
		prevBlockLast = hints[b]
	}

	return buildHeader(n, hints, blocks)
}

// DocIterator is the lazy forward cursor over a DocumentList. State
// machine: {current_block_index, offset_within_block, decoded_buffer,
// consumed_count}, terminal when consumed_count == Len().
type DocIterator struct {
	list     *DocumentList
	curBlock int // index of the block currently in decoded, -1 if none yet
	decoded  []uint64
	blockPos int // position within decoded
	consumed int
}

func newDocIterator(list *DocumentList) *DocIterator {
	return &DocIterator{list: list, curBlock: -1}
}

// Next advances the iterator and returns the next document id, or
// ok == false once exhausted.
func (it *DocIterator) Next() (uint64, bool) {
	if it.consumed >= it.list.h.n {
		return 0, false
	}
	if it.decoded == nil || it.blockPos >= len(it.decoded) {
		if !it.decodeBlock(it.curBlock + 1) {
			return 0, false
		}
	}
	v := it.decoded[it.blockPos]
	it.blockPos++
	it.consumed++
	return v, true
}

// SkipTo advances the iterator so the next value returned is >= d,
// using the block index to jump directly to the first candidate block.
// Returns the found id and true, or false if the iterator is exhausted
// (no remaining document id is >= d).
func (it *DocIterator) SkipTo(d uint64) (uint64, bool) {
	blocks := it.list.h.blocks
	target := it.curBlock
	if target < 0 {
		target = 0
	}
	for target < len(blocks) && blocks[target].hint < d {
		target++
	}
	if target >= len(blocks) {
		it.consumed = it.list.h.n
		return 0, false
	}
	if target != it.curBlock {
		if !it.decodeBlock(target) {
			return 0, false
		}
	}
	for {
		for it.blockPos < len(it.decoded) {
			v := it.decoded[it.blockPos]
			it.blockPos++
			it.consumed++
			if v >= d {
				return v, true
			}
		}
		if !it.decodeBlock(it.curBlock + 1) {
			return 0, false
		}
	}
}

func (it *DocIterator) decodeBlock(b int) bool {
	blocks := it.list.h.blocks
	if b >= len(blocks) {
		return false
	}
	start := it.list.h.blockBytesStart + blocks[b].offset
	count := it.list.blockSize
	if b == len(blocks)-1 {
		count = it.list.h.n - b*it.list.blockSize
	}

	var base uint64
	if b > 0 {
		base = blocks[b-1].hint
	}

	deltas := it.list.codec.DecodeDelta(it.list.data[start:], count)
	decoded := make([]uint64, count)
	for i, d := range deltas {
		decoded[i] = base + d
	}

	it.curBlock = b
	it.decoded = decoded
	it.blockPos = 0
	it.consumed = b * it.list.blockSize
	return true
}
