// Package scoreindex implements the score-index construction pass
// (spec component C6): it streams an index view's existing postings
// through a scorer, quantizes the results, and writes a new named score
// tuple (<name>.scores/.offsets/.maxscore) alongside the index.
//
// Grounded on acoustid-api/index/cmd/aindex's two-pass CLI pattern
// (collect stats, then rewrite) and on index/merge.go's "build then
// write whole files, nothing partial is ever exposed" discipline.
package scoreindex

import (
	"math"

	"github.com/pombredanne/irkit/compacttable"
	"github.com/pombredanne/irkit/indexfmt"
	"github.com/pombredanne/irkit/intcodec"
	"github.com/pombredanne/irkit/irkerr"
	"github.com/pombredanne/irkit/postings"
	"github.com/pombredanne/irkit/store"
)

// Options configures one score-index build.
type Options struct {
	Name  string // the named score tuple to write, e.g. "bm25"
	Kind  indexfmt.ScorerKind
	Bits  int     // quantization bit width b; M = 2^b - 1
	Smax  float64 // if > 0, skips the pre-scan pass
	Codec intcodec.ID

	// TableBlockSize, if 0, uses compacttable.DefaultBlockSize.
	TableBlockSize int
}

// Build runs the two-pass score-index construction described in
// spec.md §4.6 against an already-open index view, writing the three
// new files into dir (normally the same directory ix was opened from,
// but any writable Dir works, e.g. for building a side index).
func Build(dir store.Dir, ix *indexfmt.Index, opts Options) error {
	if opts.Bits <= 0 || opts.Bits > 32 {
		return irkerr.New(irkerr.Invariant, "score index: bit width must be in (0, 32]")
	}
	if opts.Name == "" {
		return irkerr.New(irkerr.Invariant, "score index: name must not be empty")
	}

	t := ix.TermCollectionFrequencies().Size()

	smax := opts.Smax
	if smax <= 0 {
		var err error
		smax, err = scanMaxScore(ix, opts.Kind, t)
		if err != nil {
			return err
		}
	}
	if smax <= 0 {
		// Every score was zero (or there were no postings at all); avoid
		// a divide-by-zero in the quantization pass below.
		smax = 1
	}

	m := uint64(1)<<uint(opts.Bits) - 1

	skipBlockSize := ix.Properties().SkipBlockSize
	tableBlockSize := opts.TableBlockSize
	if tableBlockSize <= 0 {
		tableBlockSize = compacttable.DefaultBlockSize
	}

	offsets := make([]uint64, t)
	maxScores := make([]uint64, t)
	var blob []byte

	for tid := 0; tid < t; tid++ {
		offsets[tid] = uint64(len(blob))

		scorer, err := ix.TermScorer(uint32(tid), opts.Kind)
		if err != nil {
			return err
		}
		it, err := ix.Postings(uint32(tid))
		if err != nil {
			return err
		}

		var quantized []uint64
		var termMax uint64
		for {
			p, ok := it.Next()
			if !ok {
				break
			}
			docLen, err := ix.DocumentSize(int(p.Document))
			if err != nil {
				return err
			}
			s := scorer(p.Payload, docLen)
			q, err := quantize(s, smax, m)
			if err != nil {
				return irkerr.Wrapf(err, irkerr.Invariant, "score index: term %d", tid)
			}
			quantized = append(quantized, q)
			if q > termMax {
				termMax = q
			}
		}

		if len(quantized) > 0 {
			blob = append(blob, postings.BuildPayloadList(quantized, skipBlockSize, opts.Codec)...)
		}
		maxScores[tid] = termMax
	}

	if err := writeFile(dir, opts.Name+".scores", blob); err != nil {
		return err
	}
	if err := writeFile(dir, opts.Name+".offsets", compacttable.Build(offsets, tableBlockSize, true)); err != nil {
		return err
	}
	return writeFile(dir, opts.Name+".maxscore", compacttable.Build(maxScores, tableBlockSize, false))
}

// scanMaxScore performs the optional full pre-scan pass, returning the
// running maximum raw (unquantized) score across every posting in the
// index.
func scanMaxScore(ix *indexfmt.Index, kind indexfmt.ScorerKind, t int) (float64, error) {
	var smax float64
	for tid := 0; tid < t; tid++ {
		scorer, err := ix.TermScorer(uint32(tid), kind)
		if err != nil {
			return 0, err
		}
		it, err := ix.Postings(uint32(tid))
		if err != nil {
			return 0, err
		}
		for {
			p, ok := it.Next()
			if !ok {
				break
			}
			docLen, err := ix.DocumentSize(int(p.Document))
			if err != nil {
				return 0, err
			}
			s := scorer(p.Payload, docLen)
			if s < 0 {
				return 0, irkerr.Newf(irkerr.Invariant, "score index: term %d produced a negative score %v", tid, s)
			}
			if s > smax {
				smax = s
			}
		}
	}
	return smax, nil
}

// quantize maps a raw score s in [0, smax] to an integer in [0, m],
// per spec.md §4.6: q = floor((M / Smax) * s), 0 <= q <= M.
func quantize(s, smax float64, m uint64) (uint64, error) {
	if s < 0 {
		return 0, irkerr.Newf(irkerr.Invariant, "negative score %v", s)
	}
	q := uint64(math.Floor((float64(m) / smax) * s))
	if q > m {
		return 0, irkerr.Newf(irkerr.Invariant, "quantized score %d exceeds M=%d", q, m)
	}
	return q, nil
}

func writeFile(dir store.Dir, name string, data []byte) error {
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
