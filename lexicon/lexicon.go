// Package lexicon provides the opaque term/title lexicon consumed by the
// index view. The prefix map / trie that a production lexicon would use
// is out of core scope (spec §1); this package ships the simplest thing
// that satisfies the id_of/term_of contract, grounded in the sorted,
// binary-searched slice style of acoustid-api/util/bitset/sparse.go.
package lexicon

import (
	"sort"

	"github.com/pombredanne/irkit/intcodec"
	"github.com/pombredanne/irkit/irkerr"
)

// Lexicon maps terms (or document titles) to dense ids and back.
type Lexicon interface {
	// IDOf returns the dense id for term, or ok == false if it is absent.
	IDOf(term string) (id uint32, ok bool)
	// TermOf returns the term for a dense id, or ok == false if out of range.
	TermOf(id uint32) (string, bool)
	// Len returns the number of entries.
	Len() int
}

// Sorted is an immutable lexicon backed by a sorted string slice: ids are
// assigned by sorted order, so lookups by id are O(1) and lookups by term
// are O(log n) via binary search.
type Sorted struct {
	terms []string
}

// NewSorted builds a lexicon from an arbitrary list of terms, assigning
// dense ids by sorted order. Duplicate terms are removed.
func NewSorted(terms []string) *Sorted {
	uniq := make([]string, len(terms))
	copy(uniq, terms)
	sort.Strings(uniq)
	out := uniq[:0]
	for i, t := range uniq {
		if i == 0 || t != out[len(out)-1] {
			out = append(out, t)
		}
	}
	return &Sorted{terms: out}
}

func (l *Sorted) Len() int { return len(l.terms) }

func (l *Sorted) IDOf(term string) (uint32, bool) {
	i := sort.SearchStrings(l.terms, term)
	if i < len(l.terms) && l.terms[i] == term {
		return uint32(i), true
	}
	return 0, false
}

func (l *Sorted) TermOf(id uint32) (string, bool) {
	if int(id) >= len(l.terms) {
		return "", false
	}
	return l.terms[id], true
}

// Encode serializes the lexicon as vbyte(count) followed by
// vbyte(len) ++ bytes per term, in id order.
func (l *Sorted) Encode() []byte {
	var out []byte
	out = intcodec.PutUvarint(out, uint64(len(l.terms)))
	for _, t := range l.terms {
		out = intcodec.PutUvarint(out, uint64(len(t)))
		out = append(out, t...)
	}
	return out
}

// Ordered is an immutable lexicon that keeps the caller's original
// order: id == position. Used for titles.map, where the id space is the
// document id and is assigned by the collection, not by sort order.
type Ordered struct {
	terms []string
	index map[string]uint32
}

// NewOrdered builds a lexicon from terms in positional order; duplicates
// are allowed (IDOf returns the first occurrence).
func NewOrdered(terms []string) *Ordered {
	index := make(map[string]uint32, len(terms))
	for i, t := range terms {
		if _, ok := index[t]; !ok {
			index[t] = uint32(i)
		}
	}
	out := make([]string, len(terms))
	copy(out, terms)
	return &Ordered{terms: out, index: index}
}

func (l *Ordered) Len() int { return len(l.terms) }

func (l *Ordered) IDOf(term string) (uint32, bool) {
	id, ok := l.index[term]
	return id, ok
}

func (l *Ordered) TermOf(id uint32) (string, bool) {
	if int(id) >= len(l.terms) {
		return "", false
	}
	return l.terms[id], true
}

// Encode uses the same wire format as Sorted.Encode: vbyte(count)
// followed by vbyte(len) ++ bytes per term, in id (positional) order.
func (l *Ordered) Encode() []byte {
	var out []byte
	out = intcodec.PutUvarint(out, uint64(len(l.terms)))
	for _, t := range l.terms {
		out = intcodec.PutUvarint(out, uint64(len(t)))
		out = append(out, t...)
	}
	return out
}

// DecodeOrdered parses the format written by Encode/Ordered.Encode
// without re-sorting, so positional ids are preserved verbatim.
func DecodeOrdered(data []byte) (*Ordered, error) {
	s, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return NewOrdered(s.terms), nil
}

// Decode parses the format written by Encode. The backing slice is
// copied into individual term strings, not borrowed.
func Decode(data []byte) (*Sorted, error) {
	if len(data) == 0 {
		return &Sorted{}, nil
	}
	count, pos := intcodec.Uvarint(data)
	terms := make([]string, count)
	for i := uint64(0); i < count; i++ {
		if pos >= len(data) {
			return nil, irkerr.New(irkerr.Malformed, "lexicon: truncated term length")
		}
		length, sz := intcodec.Uvarint(data[pos:])
		pos += sz
		end := pos + int(length)
		if end > len(data) {
			return nil, irkerr.New(irkerr.Malformed, "lexicon: truncated term bytes")
		}
		terms[i] = string(data[pos:end])
		pos = end
	}
	// Preserve the on-disk id assignment exactly (it was sorted at build
	// time); do not re-sort or de-dup here, that would change ids.
	return &Sorted{terms: terms}, nil
}
