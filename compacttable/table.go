// Package compacttable implements the block-partitioned, random-access
// compressed array described as the "compact table" in the index format:
// a mapping i in [0, count) -> u64, stored as a header, a leader array
// locating each block, and the concatenated encoded blocks themselves.
//
// The codec used for table blocks is always intcodec.VarByte: the header
// flags word has only one defined bit (DeltaEncoding), and the remaining
// bits are reserved and must be zero, so there is no room to record a
// codec choice. (Posting lists do not record theirs inline either; their
// codec comes from the index's properties.json.)
package compacttable

import (
	"encoding/binary"
	"io"
	"sort"

	"github.com/pombredanne/irkit/intcodec"
	"github.com/pombredanne/irkit/irkerr"
)

const (
	headerSize = 12 // count, block_size, flags; all u32 little-endian
	leaderSize = 8  // key, ptr; both u32 little-endian

	// DefaultBlockSize is used by Build when the caller does not override it.
	DefaultBlockSize = 256
)

// Flag bits for the header's flags word.
const (
	FlagDelta uint32 = 1 << 0
	flagMask  uint32 = FlagDelta
)

type leader struct {
	key uint32
	ptr uint32
}

// Table is a read-only view over a compact table's encoded bytes. The
// byte slice is borrowed, not copied: Table must not outlive it.
type Table struct {
	data      []byte
	count     int
	blockSize int
	delta     bool
	leaders   []leader
}

// Open validates a compact table's header and leader array and returns a
// view over it. The backing slice is not copied.
func Open(data []byte) (*Table, error) {
	if len(data) < headerSize {
		return nil, irkerr.New(irkerr.Malformed, "compact table: truncated header")
	}
	count := binary.LittleEndian.Uint32(data[0:4])
	blockSize := binary.LittleEndian.Uint32(data[4:8])
	flags := binary.LittleEndian.Uint32(data[8:12])
	if flags&^flagMask != 0 {
		return nil, irkerr.Newf(irkerr.Malformed, "compact table: unknown flag bits 0x%x", flags&^flagMask)
	}
	if count > 0 && blockSize == 0 {
		return nil, irkerr.New(irkerr.Malformed, "compact table: zero block size with non-zero count")
	}

	leaderCount := 0
	if count > 0 {
		leaderCount = int((uint64(count) + uint64(blockSize) - 1) / uint64(blockSize))
	}
	if leaderCount == 0 && count != 0 {
		return nil, irkerr.New(irkerr.Invariant, "compact table: empty leader array with non-zero count")
	}

	leadersEnd := headerSize + leaderCount*leaderSize
	if len(data) < leadersEnd {
		return nil, irkerr.New(irkerr.Malformed, "compact table: truncated leader array")
	}

	leaders := make([]leader, leaderCount)
	minPtr := uint32(leadersEnd)
	var prevKey uint32
	var prevPtr uint32
	for i := 0; i < leaderCount; i++ {
		off := headerSize + i*leaderSize
		l := leader{
			key: binary.LittleEndian.Uint32(data[off : off+4]),
			ptr: binary.LittleEndian.Uint32(data[off+4 : off+8]),
		}
		if i == 0 {
			if l.key != 0 {
				return nil, irkerr.New(irkerr.Malformed, "compact table: first leader key is not 0")
			}
			if l.ptr < minPtr {
				return nil, irkerr.New(irkerr.Malformed, "compact table: leader ptr below data region")
			}
		} else {
			if l.key <= prevKey {
				return nil, irkerr.New(irkerr.Malformed, "compact table: leader keys not strictly increasing")
			}
			if l.ptr <= prevPtr {
				return nil, irkerr.New(irkerr.Malformed, "compact table: leader ptrs not strictly increasing")
			}
		}
		if int(l.ptr) > len(data) {
			return nil, irkerr.New(irkerr.Malformed, "compact table: leader ptr out of range")
		}
		leaders[i] = l
		prevKey = l.key
		prevPtr = l.ptr
	}

	return &Table{
		data:      data,
		count:     int(count),
		blockSize: int(blockSize),
		delta:     flags&FlagDelta != 0,
		leaders:   leaders,
	}, nil
}

// Size returns the number of logical entries in the table.
func (t *Table) Size() int { return t.count }

// At returns the value stored at position i, decoding only the block that
// contains it.
func (t *Table) At(i int) (uint64, error) {
	if i < 0 || i >= t.count {
		return 0, irkerr.Newf(irkerr.OutOfRange, "compact table: index %d out of range [0, %d)", i, t.count)
	}

	// Largest leader with key <= i; leaders are strictly increasing in
	// key, so the match is unique.
	idx := sort.Search(len(t.leaders), func(k int) bool {
		return uint32(i) < t.leaders[k].key
	}) - 1

	l := t.leaders[idx]
	skip := i - int(l.key)

	var codec intcodec.VarByte
	if t.delta {
		values := codec.DecodeDelta(t.data[l.ptr:], skip+1)
		return values[skip], nil
	}
	values := codec.Decode(t.data[l.ptr:], skip+1)
	return values[skip], nil
}

// WriteTo streams the table's bytes verbatim to w, for re-serialization or
// shard splitting.
func (t *Table) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(t.data)
	return int64(n), err
}

// Build serializes xs into a compact table's byte layout using the given
// block size (DefaultBlockSize if <= 0) and delta encoding, if requested.
func Build(xs []uint64, blockSize int, delta bool) []byte {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}

	n := len(xs)
	numBlocks := (n + blockSize - 1) / blockSize
	leaders := make([]leader, numBlocks)
	blocks := make([][]byte, numBlocks)

	leadersEnd := headerSize + numBlocks*leaderSize
	var codec intcodec.VarByte
	ptr := leadersEnd
	for b := 0; b < numBlocks; b++ {
		start := b * blockSize
		end := start + blockSize
		if end > n {
			end = n
		}
		block := xs[start:end]
		var encoded []byte
		if delta {
			encoded = codec.Encode(deltasFromFirst(block))
		} else {
			encoded = codec.Encode(block)
		}
		leaders[b] = leader{key: uint32(start), ptr: uint32(ptr)}
		blocks[b] = encoded
		ptr += len(encoded)
	}

	out := make([]byte, leadersEnd, ptr)
	flags := uint32(0)
	if delta {
		flags = FlagDelta
	}
	binary.LittleEndian.PutUint32(out[0:4], uint32(n))
	binary.LittleEndian.PutUint32(out[4:8], uint32(blockSize))
	binary.LittleEndian.PutUint32(out[8:12], flags)
	for b, l := range leaders {
		off := headerSize + b*leaderSize
		binary.LittleEndian.PutUint32(out[off:off+4], l.key)
		binary.LittleEndian.PutUint32(out[off+4:off+8], l.ptr)
	}
	for _, block := range blocks {
		out = append(out, block...)
	}
	return out
}

// deltasFromFirst returns a block's values re-expressed the way §3
// requires: the first value absolute, every following value the
// difference from its predecessor. Decoding prefix-sums this sequence
// back to absolute values.
func deltasFromFirst(xs []uint64) []uint64 {
	out := make([]uint64, len(xs))
	var prev uint64
	for i, x := range xs {
		if i == 0 {
			out[i] = x
		} else {
			out[i] = x - prev
		}
		prev = x
	}
	return out
}
