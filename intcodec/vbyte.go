package intcodec

// VarByte is the variable-byte codec: each integer is split into 7-bit
// little-endian groups, and the most significant bit of a byte marks the
// end of the integer it belongs to. Zero therefore encodes as the single
// byte 0x80.
//
// This is the classic "vbyte" scheme used throughout information
// retrieval, not Go's stdlib LEB128 (encoding/binary.PutUvarint), which
// sets the continuation bit on every byte but the last instead.
type VarByte struct{}

func (VarByte) Encode(xs []uint64) []byte {
	buf := make([]byte, 0, len(xs)*2)
	for _, x := range xs {
		buf = appendVarByte(buf, x)
	}
	return buf
}

func appendVarByte(buf []byte, x uint64) []byte {
	for x >= 0x80 {
		buf = append(buf, byte(x&0x7f))
		x >>= 7
	}
	return append(buf, byte(x)|0x80)
}

func (VarByte) Decode(data []byte, n int) []uint64 {
	out := make([]uint64, n)
	pos := 0
	for i := 0; i < n; i++ {
		v, size := getVarByte(data[pos:])
		out[i] = v
		pos += size
	}
	return out
}

func (VarByte) DecodeDelta(data []byte, n int) []uint64 {
	out := make([]uint64, n)
	pos := 0
	var sum uint64
	for i := 0; i < n; i++ {
		v, size := getVarByte(data[pos:])
		sum += v
		out[i] = sum
		pos += size
	}
	return out
}

func getVarByte(data []byte) (value uint64, size int) {
	var shift uint
	for {
		b := data[size]
		value |= uint64(b&0x7f) << shift
		size++
		if b&0x80 != 0 {
			return value, size
		}
		shift += 7
	}
}

// putVarByte writes the vbyte encoding of x into buf, which must be large
// enough to hold it, and returns the number of bytes written. List and
// block headers are built with PutUvarint instead.
func putVarByte(buf []byte, x uint64) int {
	n := 0
	for x >= 0x80 {
		buf[n] = byte(x & 0x7f)
		x >>= 7
		n++
	}
	buf[n] = byte(x) | 0x80
	return n + 1
}

// varByteLen returns the number of bytes x would occupy when encoded.
func varByteLen(x uint64) int {
	n := 1
	for x >= 0x80 {
		x >>= 7
		n++
	}
	return n
}

// PutUvarint appends the vbyte encoding of x to buf and returns the
// extended slice. Framing fields (list/block header sizes and counts)
// always use plain vbyte, independent of which Codec a list's payload
// uses.
func PutUvarint(buf []byte, x uint64) []byte {
	return appendVarByte(buf, x)
}

// Uvarint reads a single vbyte-encoded value from the front of data and
// reports how many bytes it consumed.
func Uvarint(data []byte) (value uint64, size int) {
	return getVarByte(data)
}

