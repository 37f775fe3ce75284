package indexfmt

import (
	"github.com/pombredanne/irkit/compacttable"
	"github.com/pombredanne/irkit/intcodec"
	"github.com/pombredanne/irkit/irkerr"
	"github.com/pombredanne/irkit/lexicon"
	"github.com/pombredanne/irkit/postings"
	"github.com/pombredanne/irkit/store"
)

// TermPostings is one term's raw postings fed to Build (the Terms slice
// need not be sorted by term): Docs must be strictly increasing and
// aligned by position with Freqs.
type TermPostings struct {
	Term  string
	Docs  []uint64
	Freqs []uint64
}

// BuildInput gathers everything Build needs to write a complete index
// directory from raw, already-computed postings (the output a tokenizer
// and inverter would hand off; both are out of core scope per spec.md §1).
type BuildInput struct {
	Terms []TermPostings

	// DocumentSizes and Titles are both indexed by document id, [0, N).
	DocumentSizes []uint64
	Titles        []string

	SkipBlockSize  int
	TableBlockSize int // 0 uses compacttable.DefaultBlockSize
	Codec          intcodec.ID
}

// Build writes a full index directory (every file in the spec.md §6
// table except named score tuples, which the separate score-index
// builder in package scoreindex adds later) derived from in.
func Build(dir store.Dir, in BuildInput) error {
	if in.SkipBlockSize <= 0 {
		return irkerr.New(irkerr.Invariant, "build: skip_block_size must be positive")
	}
	n := len(in.DocumentSizes)
	if len(in.Titles) != n {
		return irkerr.New(irkerr.Invariant, "build: titles and document sizes must have the same length")
	}

	termStrings := make([]string, len(in.Terms))
	for i, t := range in.Terms {
		termStrings[i] = t.Term
	}
	lex := lexicon.NewSorted(termStrings)
	byTerm := make(map[string]TermPostings, len(in.Terms))
	for _, t := range in.Terms {
		byTerm[t.Term] = t
	}

	termCount := lex.Len()
	docIDOffsets := make([]uint64, termCount)
	docCountOffsets := make([]uint64, termCount)
	tdf := make([]uint64, termCount)
	termOcc := make([]uint64, termCount)

	var docIDBlob, docCountBlob []byte
	var totalOccurrences uint64
	var totalDocSize uint64

	for i := 0; i < termCount; i++ {
		term, _ := lex.TermOf(uint32(i))
		tp := byTerm[term]

		if len(tp.Docs) != len(tp.Freqs) {
			return irkerr.Newf(irkerr.Invariant, "build: term %q has %d docs but %d freqs", term, len(tp.Docs), len(tp.Freqs))
		}

		docIDOffsets[i] = uint64(len(docIDBlob))
		docCountOffsets[i] = uint64(len(docCountBlob))
		tdf[i] = uint64(len(tp.Docs))

		var sum uint64
		for _, f := range tp.Freqs {
			sum += f
		}
		termOcc[i] = sum
		totalOccurrences += sum

		if len(tp.Docs) == 0 {
			// Zero-postings term: no bytes written, so its offset equals
			// the next term's (spec.md §8 boundary behavior).
			continue
		}

		if err := checkStrictlyIncreasing(tp.Docs); err != nil {
			return irkerr.Wrapf(err, irkerr.Invariant, "build: term %q", term)
		}

		docIDBlob = append(docIDBlob, postings.BuildDocumentList(tp.Docs, in.SkipBlockSize, in.Codec)...)
		docCountBlob = append(docCountBlob, postings.BuildPayloadList(tp.Freqs, in.SkipBlockSize, in.Codec)...)
	}

	for _, sz := range in.DocumentSizes {
		totalDocSize += sz
	}
	avgDocSize := 0.0
	if n > 0 {
		avgDocSize = float64(totalDocSize) / float64(n)
	}

	keyMaxlen := 0
	for _, term := range termStrings {
		if len(term) > keyMaxlen {
			keyMaxlen = len(term)
		}
	}

	props := Properties{
		Documents:       uint64(n),
		Occurrences:     totalOccurrences,
		SkipBlockSize:   in.SkipBlockSize,
		AvgDocumentSize: avgDocSize,
		KeyMaxlen:       keyMaxlen,
		Codec:           in.Codec,
	}

	tableBlockSize := in.TableBlockSize
	if tableBlockSize <= 0 {
		tableBlockSize = compacttable.DefaultBlockSize
	}

	if err := writeBytesFile(dir, fileDocID, docIDBlob); err != nil {
		return err
	}
	if err := writeBytesFile(dir, fileDocCount, docCountBlob); err != nil {
		return err
	}
	if err := writeTable(dir, fileDocIDOffsets, docIDOffsets, tableBlockSize, true); err != nil {
		return err
	}
	if err := writeTable(dir, fileDocCountOff, docCountOffsets, tableBlockSize, true); err != nil {
		return err
	}
	if err := writeTable(dir, fileTermsDocFreq, tdf, tableBlockSize, false); err != nil {
		return err
	}
	if err := writeTable(dir, fileTermOccurrence, termOcc, tableBlockSize, false); err != nil {
		return err
	}
	if err := writeTable(dir, fileDocSizes, in.DocumentSizes, tableBlockSize, false); err != nil {
		return err
	}
	if err := writeBytesFile(dir, fileTermsMap, lex.Encode()); err != nil {
		return err
	}
	if err := writeBytesFile(dir, fileTitlesMap, lexicon.NewOrdered(in.Titles).Encode()); err != nil {
		return err
	}
	return saveProperties(dir, props)
}

func checkStrictlyIncreasing(xs []uint64) error {
	for i := 1; i < len(xs); i++ {
		if xs[i] <= xs[i-1] {
			return irkerr.Newf(irkerr.Invariant, "document ids not strictly increasing at position %d (%d <= %d)", i, xs[i], xs[i-1])
		}
	}
	return nil
}

func writeBytesFile(dir store.Dir, name string, data []byte) error {
	w, err := dir.CreateFile(name)
	if err != nil {
		return irkerr.Wrapf(err, irkerr.Io, "create %s", name)
	}
	if len(data) > 0 {
		if _, err := w.Write(data); err != nil {
			return irkerr.Wrapf(err, irkerr.Io, "write %s", name)
		}
	}
	return irkerr.Wrapf(w.Commit(), irkerr.Io, "commit %s", name)
}

func writeTable(dir store.Dir, name string, xs []uint64, blockSize int, delta bool) error {
	return writeBytesFile(dir, name, compacttable.Build(xs, blockSize, delta))
}
