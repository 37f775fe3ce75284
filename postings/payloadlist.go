package postings

import (
	"github.com/pombredanne/irkit/intcodec"
	"github.com/pombredanne/irkit/irkerr"
)

// PayloadList is a lazily-decoded sequence of payload values (term
// frequencies or quantized scores) for one term, aligned by position with
// the term's DocumentList.
type PayloadList struct {
	data      []byte
	blockSize int
	codec     intcodec.Codec
	h         header
}

// OpenPayloadList parses a term's payload-list slice. declaredCount must
// equal the list's own header count.
func OpenPayloadList(data []byte, declaredCount, blockSize int, codecID intcodec.ID) (*PayloadList, error) {
	if declaredCount == 0 {
		return &PayloadList{data: data, blockSize: blockSize, codec: intcodec.ByID(codecID)}, nil
	}
	h, err := parseHeader(data, blockSize)
	if err != nil {
		return nil, err
	}
	if h.n != declaredCount {
		return nil, irkerr.Newf(irkerr.Malformed, "payload list: declared count %d does not match header count %d", declaredCount, h.n)
	}
	return &PayloadList{data: data, blockSize: blockSize, codec: intcodec.ByID(codecID), h: h}, nil
}

// Len returns the number of payload values in the list.
func (l *PayloadList) Len() int { return l.h.n }

// Iterator returns a fresh forward iterator.
func (l *PayloadList) Iterator() *PayloadIterator {
	return &PayloadIterator{list: l, curBlock: -1}
}

// BuildPayloadList encodes a payload sequence (no delta) into the on-disk
// list layout, grouping skipBlockSize values per block.
func BuildPayloadList(values []uint64, skipBlockSize int, codecID intcodec.ID) []byte {
	codec := intcodec.ByID(codecID)
	n := len(values)
	numBlocks := (n + skipBlockSize - 1) / skipBlockSize

	hints := make([]uint64, numBlocks)
	blocks := make([][]byte, numBlocks)

	for b := 0; b < numBlocks; b++ {
		start := b * skipBlockSize
		end := start + skipBlockSize
		if end > n {
			end = n
		}
		block := values[start:end]
		hints[b] = block[len(block)-1]
		blocks[b] = codec.Encode(block)
	}

	return buildHeader(n, hints, blocks)
}

// PayloadIterator is the lazy forward cursor over a PayloadList.
type PayloadIterator struct {
	list     *PayloadList
	curBlock int
	decoded  []uint64
	blockPos int
	consumed int
}

// Next advances the iterator and returns the next payload value, or
// ok == false once exhausted.
func (it *PayloadIterator) Next() (uint64, bool) {
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

func (it *PayloadIterator) decodeBlock(b int) bool {
	blocks := it.list.h.blocks
	if b >= len(blocks) {
		return false
	}
	start := it.list.h.blockBytesStart + blocks[b].offset
	count := it.list.blockSize
	if b == len(blocks)-1 {
		count = it.list.h.n - b*it.list.blockSize
	}
	it.decoded = it.list.codec.Decode(it.list.data[start:], count)
	it.curBlock = b
	it.blockPos = 0
	it.consumed = b * it.list.blockSize
	return true
}
