// Command irk-topk runs a naive top-k scan over one or more query terms:
// for each term it walks (scored or raw) postings, accumulates a score
// per document, and prints the k highest-scoring documents. This is
// deliberately not a query engine (no DAAT/TAAT traversal, no top-k
// heap) — those are out of core scope; it is a thin driver over the
// postings this module already exposes, in the spirit of
// irk-extract-results.cpp in the original implementation.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"

	"github.com/pombredanne/irkit/indexfmt"
	"github.com/pombredanne/irkit/store"
)

type hit struct {
	doc   uint64
	score float64
}

func accumulate(ix *indexfmt.Index, term, scoreName string, kind indexfmt.ScorerKind, scores map[uint64]float64) error {
	tid, ok := ix.TermID(term)
	if !ok {
		return nil
	}

	if scoreName != "" {
		it, err := ix.ScoredPostings(tid, scoreName)
		if err != nil {
			return err
		}
		for {
			p, ok := it.Next()
			if !ok {
				break
			}
			scores[p.Document] += float64(p.Payload)
		}
		return nil
	}

	scorer, err := ix.TermScorer(tid, kind)
	if err != nil {
		return err
	}
	it, err := ix.Postings(tid)
	if err != nil {
		return err
	}
	for {
		p, ok := it.Next()
		if !ok {
			break
		}
		docLen, err := ix.DocumentSize(int(p.Document))
		if err != nil {
			return err
		}
		scores[p.Document] += scorer(p.Payload, docLen)
	}
	return nil
}

func run(ctx context.Context, c *cli.Command) error {
	dbpath := c.String("dbpath")
	k := int(c.Int("k"))
	scoreName := c.String("score")
	kindName := c.String("kind")
	terms := c.Args().Slice()

	if len(terms) == 0 {
		return errors.New("at least one query term is required")
	}

	var kind indexfmt.ScorerKind
	switch kindName {
	case "bm25", "":
		kind = indexfmt.BM25
	case "ql":
		kind = indexfmt.QueryLikelihood
	default:
		return errors.Errorf("unknown scorer kind %q", kindName)
	}

	dir, err := store.OpenDir(dbpath, false)
	if err != nil {
		return errors.Wrap(err, "open database directory")
	}

	ix, err := indexfmt.Open(dir)
	if err != nil {
		return errors.Wrap(err, "open index")
	}
	defer ix.Close()

	scores := make(map[uint64]float64)
	for _, term := range terms {
		if err := accumulate(ix, term, scoreName, kind, scores); err != nil {
			return errors.Wrapf(err, "score term %q", term)
		}
	}

	hits := make([]hit, 0, len(scores))
	for doc, s := range scores {
		hits = append(hits, hit{doc: doc, score: s})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].doc < hits[j].doc
	})
	if k > 0 && len(hits) > k {
		hits = hits[:k]
	}

	for _, h := range hits {
		title, _ := ix.Title(uint32(h.doc))
		fmt.Printf("%d\t%.6f\t%s\n", h.doc, h.score, title)
	}
	return nil
}

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)

	cmd := &cli.Command{
		Name:      "irk-topk",
		Usage:     "Naive top-k scan over one or more query terms",
		ArgsUsage: "term [term...]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dbpath", Usage: "path to the index directory", Required: true},
			&cli.IntFlag{Name: "k", Usage: "number of results to print (0 prints all)", Value: 10},
			&cli.StringFlag{Name: "score", Usage: "named score tuple to use instead of live scoring"},
			&cli.StringFlag{Name: "kind", Usage: "bm25 or ql, used when --score is not given", Value: "bm25"},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
