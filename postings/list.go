// Package postings implements the posting-list block layout (spec
// component C2) and the lazy document-id and payload views built on top
// of it (component C4): given a byte slice holding one term's encoded
// list, it exposes a forward iterator that decodes a block only when one
// of its entries is requested, plus block-level skip-to for document
// lists.
//
// Byte layout of a term's slice (see the external format table):
//
//	vbyte(num_encoded_bytes) | vbyte(num_postings) |
//	  block_index: (skip_hint: vbyte, offset: vbyte) * num_blocks |
//	  concat(block_bytes)
//
// Document-list blocks hold the delta sequence between consecutive
// document ids (the first delta in block 0 taken against 0, every other
// block's first delta taken against the previous block's last id).
// Payload-list blocks (frequencies, scores) hold their values directly,
// aligned by position with the companion document list. Both list kinds
// share the same block_index framing; skip_hint for a payload block is
// simply its last raw value and is not used for seeking.
package postings

import (
	"github.com/pombredanne/irkit/intcodec"
	"github.com/pombredanne/irkit/irkerr"
)

// Flag bits for a list header's implicit codec selection. They are not
// stored inline (the byte layout has no room for them); the caller
// supplies the codec that was used to build the list, the same way it
// supplies skip_block_size and the declared posting count.
const (
	CodecVarByte     = intcodec.VarByteID
	CodecStreamVByte = intcodec.StreamVarByteID
)

type blockEntry struct {
	hint   uint64 // last absolute value in the block
	offset int    // byte offset into the block-bytes region
}

type header struct {
	totalBytes      int
	n               int
	blocks          []blockEntry
	blockBytesStart int // offset into data where block bytes begin
}

func parseHeader(data []byte, blockSize int) (header, error) {
	if blockSize <= 0 {
		return header{}, irkerr.New(irkerr.Malformed, "posting list: non-positive block size")
	}

	if len(data) < 1 {
		return header{}, irkerr.New(irkerr.Malformed, "posting list: truncated size header")
	}
	totalBytes, sz1 := intcodec.Uvarint(data)
	pos := sz1
	if pos > len(data) {
		return header{}, irkerr.New(irkerr.Malformed, "posting list: truncated size header")
	}
	n, sz2 := intcodec.Uvarint(data[pos:])
	pos += sz2
	headerEnd := pos

	numBlocks := (int(n) + blockSize - 1) / blockSize

	blocks := make([]blockEntry, numBlocks)
	for b := 0; b < numBlocks; b++ {
		if pos > len(data) {
			return header{}, irkerr.New(irkerr.Malformed, "posting list: truncated block index")
		}
		hint, sz := intcodec.Uvarint(data[pos:])
		pos += sz
		off, sz := intcodec.Uvarint(data[pos:])
		pos += sz
		blocks[b] = blockEntry{hint: hint, offset: int(off)}
	}

	blockBytesStart := pos
	end := headerEnd + int(totalBytes)
	if end < blockBytesStart || end > len(data) {
		return header{}, irkerr.New(irkerr.Malformed, "posting list: block data out of range")
	}

	return header{
		totalBytes:      int(totalBytes),
		n:               int(n),
		blocks:          blocks,
		blockBytesStart: blockBytesStart,
	}, nil
}

// buildHeader serializes the framing (size, count, block index) that
// precedes a list's block bytes. hints[b] is the last value of block b,
// blocks[b] its already-encoded bytes.
func buildHeader(n int, hints []uint64, blocks [][]byte) []byte {
	var blockBytes []byte
	for _, b := range blocks {
		blockBytes = append(blockBytes, b...)
	}

	var blockIndex []byte
	offset := 0
	for b, h := range hints {
		blockIndex = intcodec.PutUvarint(blockIndex, h)
		blockIndex = intcodec.PutUvarint(blockIndex, uint64(offset))
		offset += len(blocks[b])
	}

	totalBytes := uint64(len(blockIndex) + len(blockBytes))
	out := intcodec.PutUvarint(nil, totalBytes)
	out = intcodec.PutUvarint(out, uint64(n))
	out = append(out, blockIndex...)
	out = append(out, blockBytes...)
	return out
}
