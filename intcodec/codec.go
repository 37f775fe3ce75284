// Package intcodec implements the integer codecs consumed by the compact
// table and posting-list layers. It is deliberately the only place in the
// module that knows how a stream of non-negative integers turns into
// bytes; every other package works in terms of the Codec capability.
package intcodec

// Codec encodes and decodes a stream of non-negative integers. Concrete
// codecs are picked at index-open time from the ID recorded in the
// index's properties.json; encoded value streams carry no codec marker
// of their own, and compact tables always use VarByte.
type Codec interface {
	// Encode serializes xs in order.
	Encode(xs []uint64) []byte

	// Decode reads exactly n values from the front of data and returns
	// them unmodified, i.e. decode(encode(xs), len(xs)) == xs.
	Decode(data []byte, n int) []uint64

	// DecodeDelta reads exactly n values from the front of data and
	// returns their running prefix sum.
	DecodeDelta(data []byte, n int) []uint64
}

// ID identifies a Codec. It is never persisted inline in a value stream
// or a posting-list header; the index builder records it out of band in
// properties.json, and readers pass it to every posting-list call.
type ID uint8

const (
	// VarByteID selects the classic variable-byte codec.
	VarByteID ID = 0
	// StreamVarByteID selects the four-values-per-control-byte codec.
	StreamVarByteID ID = 1
)

// ByID resolves a codec discriminator to a Codec implementation.
func ByID(id ID) Codec {
	switch id {
	case StreamVarByteID:
		return StreamVByte{}
	default:
		return VarByte{}
	}
}
