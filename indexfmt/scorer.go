package indexfmt

import "math"

// ScorerKind selects a term_scorer implementation (spec.md §4.5).
type ScorerKind int

const (
	// BM25 scores using (tdf, N, avg_document_size).
	BM25 ScorerKind = iota
	// QueryLikelihood scores using (term_occurrences(tid), total_occurrences).
	QueryLikelihood
)

// Scorer maps one posting's (term frequency, document length) to a raw,
// real-valued relevance score. It closes over the per-term statistics
// TermScorer resolved at construction time (spec.md §3: "a scorer
// closure ... parameterized at construction time by the global
// properties").
type Scorer func(tf, docLen uint64) float64

// Standard BM25 constants; not exposed as knobs since spec.md does not
// ask for tunable scorers, only a choice of kind.
const (
	bm25K1 = 1.2
	bm25B  = 0.75

	// qlMu is the Dirichlet smoothing parameter for query-likelihood.
	qlMu = 2000.0
)

// TermScorer builds a Scorer for tid of the requested kind.
func (ix *Index) TermScorer(tid uint32, kind ScorerKind) (Scorer, error) {
	switch kind {
	case QueryLikelihood:
		occ, err := ix.TermOccurrences(tid)
		if err != nil {
			return nil, err
		}
		total := float64(ix.props.Occurrences)
		pc := 0.0
		if total > 0 {
			pc = float64(occ) / total
		}
		// Dirichlet-smoothed document probability P(t|d). Ranking by this
		// value is equivalent to ranking by its log (log is monotonic),
		// but score-index quantization (spec.md §4.6) requires every raw
		// score to be non-negative, which a log-probability is not.
		return func(tf, docLen uint64) float64 {
			return (float64(tf) + qlMu*pc) / (float64(docLen) + qlMu)
		}, nil
	default:
		// Same IDF and saturation form as hupe1980-vecgo/lexical/bm25.go's
		// computeIDF and Search, reshaped into a closure over lazy postings.
		df, err := ix.TDF(tid)
		if err != nil {
			return nil, err
		}
		n := float64(ix.props.Documents)
		avgdl := ix.props.AvgDocumentSize
		if avgdl == 0 {
			avgdl = 1
		}
		idf := math.Log(1 + (n-float64(df)+0.5)/(float64(df)+0.5))
		return func(tf, docLen uint64) float64 {
			tfF := float64(tf)
			dl := float64(docLen)
			return idf * (tfF * (bm25K1 + 1)) / (tfF + bm25K1*(1-bm25B+bm25B*dl/avgdl))
		}, nil
	}
}
