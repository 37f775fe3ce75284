package postings

import "github.com/pombredanne/irkit/irkerr"

// Posting is a single (document, payload) pair for a term; payload is
// either a term frequency or a quantized score depending on which two
// lists were paired.
type Posting struct {
	Document uint64
	Payload  uint64
}

// PostingIterator advances a DocumentList and a PayloadList in lockstep.
// Both lists must report identical counts; a mismatch is malformed, not
// a panic, since it can only come from a corrupted or hand-edited index.
type PostingIterator struct {
	docs     *DocIterator
	payloads *PayloadIterator
}

// NewPostingIterator pairs a document iterator with a payload iterator.
func NewPostingIterator(docs *DocumentList, payloads *PayloadList) (*PostingIterator, error) {
	if docs.Len() != payloads.Len() {
		return nil, irkerr.Newf(irkerr.Malformed, "posting iterator: document list has %d entries, payload list has %d", docs.Len(), payloads.Len())
	}
	return &PostingIterator{docs: docs.Iterator(), payloads: payloads.Iterator()}, nil
}

// Next returns the next posting in increasing document-id order, or
// ok == false once the term's posting list is exhausted.
func (it *PostingIterator) Next() (Posting, bool) {
	if it.isEmpty() {
		return Posting{}, false
	}
	doc, ok := it.docs.Next()
	if !ok {
		return Posting{}, false
	}
	payload, ok := it.payloads.Next()
	if !ok {
		// Lists reported equal length at construction time but payloads
		// ran dry first; that can only mean corrupted block offsets.
		return Posting{}, false
	}
	return Posting{Document: doc, Payload: payload}, true
}

// Empty returns a posting iterator with no entries, used for string-key
// accessors on an absent term.
func Empty() *PostingIterator {
	return &PostingIterator{}
}

func (it *PostingIterator) isEmpty() bool { return it.docs == nil }
