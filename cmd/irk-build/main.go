// Command irk-build reads a newline-delimited "term doc_id freq" stream
// and a per-document sizes/titles file, and writes a complete index
// directory.
//
// Grounded on acoustid-api/index/cmd/aindex/import.go's channel-based
// bufio.Scanner text-stream reader and acoustid-api/index/cmd/aindex/main.go's
// urfave/cli wiring (ported here to github.com/urfave/cli/v3).
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strconv"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"

	"github.com/pombredanne/irkit/indexfmt"
	"github.com/pombredanne/irkit/intcodec"
	"github.com/pombredanne/irkit/store"
)

type triple struct {
	term string
	doc  uint64
	freq uint64
}

type block struct {
	items []triple
	err   error
}

// readTextStream reads "term doc_id freq" triples from input in batches
// of 1024, off a goroutine, the same shape as the teacher's
// readTextStream for "term_id doc_id" pairs.
func readTextStream(input io.Reader) <-chan block {
	ch := make(chan block, 1)
	go func() {
		defer close(ch)
		stream := bufio.NewScanner(input)
		stream.Split(bufio.ScanWords)
		for {
			items := make([]triple, 1024)
			i := 0
			for ; i < len(items); i++ {
				if !stream.Scan() {
					if i > 0 {
						ch <- block{items: items[:i]}
					}
					return
				}
				term := stream.Text()

				if !stream.Scan() {
					ch <- block{err: errors.New("invalid input, missing doc_id")}
					return
				}
				doc, err := strconv.ParseUint(stream.Text(), 10, 32)
				if err != nil {
					ch <- block{err: errors.Wrap(err, "invalid doc_id")}
					return
				}

				if !stream.Scan() {
					ch <- block{err: errors.New("invalid input, missing freq")}
					return
				}
				freq, err := strconv.ParseUint(stream.Text(), 10, 32)
				if err != nil {
					ch <- block{err: errors.Wrap(err, "invalid freq")}
					return
				}

				items[i] = triple{term: term, doc: doc, freq: freq}
			}
			ch <- block{items: items}
		}
	}()
	return ch
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open file")
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read file")
	}
	return lines, nil
}

func readUintLines(path string) ([]uint64, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}
	out := make([]uint64, len(lines))
	for i, l := range lines {
		v, err := strconv.ParseUint(l, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid document size on line %d", i+1)
		}
		out[i] = v
	}
	return out, nil
}

func run(ctx context.Context, c *cli.Command) error {
	dbpath := c.String("dbpath")
	docSizesPath := c.String("doc-sizes")
	titlesPath := c.String("titles")
	skipBlockSize := int(c.Int("skip-block-size"))
	codecName := c.String("codec")

	var codecID intcodec.ID
	switch codecName {
	case "varbyte", "":
		codecID = intcodec.VarByteID
	case "streamvbyte":
		codecID = intcodec.StreamVarByteID
	default:
		return errors.Errorf("unknown codec %q", codecName)
	}

	docSizes, err := readUintLines(docSizesPath)
	if err != nil {
		return errors.Wrap(err, "read document sizes")
	}
	titles, err := readLines(titlesPath)
	if err != nil {
		return errors.Wrap(err, "read titles")
	}

	byTerm := make(map[string]*indexfmt.TermPostings)
	for b := range readTextStream(os.Stdin) {
		if b.err != nil {
			return errors.Wrap(b.err, "parse input stream")
		}
		for _, t := range b.items {
			tp, ok := byTerm[t.term]
			if !ok {
				tp = &indexfmt.TermPostings{Term: t.term}
				byTerm[t.term] = tp
			}
			tp.Docs = append(tp.Docs, t.doc)
			tp.Freqs = append(tp.Freqs, t.freq)
		}
	}

	terms := make([]indexfmt.TermPostings, 0, len(byTerm))
	for _, tp := range byTerm {
		sortPostingsByDoc(tp)
		terms = append(terms, *tp)
	}
	sort.Slice(terms, func(i, j int) bool { return terms[i].Term < terms[j].Term })

	dir, err := store.OpenDir(dbpath, true)
	if err != nil {
		return errors.Wrap(err, "open database directory")
	}

	err = indexfmt.Build(dir, indexfmt.BuildInput{
		Terms:          terms,
		DocumentSizes:  docSizes,
		Titles:         titles,
		SkipBlockSize:  skipBlockSize,
		TableBlockSize: 0,
		Codec:          codecID,
	})
	if err != nil {
		return errors.Wrap(err, "build index")
	}

	fmt.Fprintf(os.Stderr, "irk-build: wrote %d terms, %d documents to %s\n", len(terms), len(docSizes), dbpath)
	return nil
}

func sortPostingsByDoc(tp *indexfmt.TermPostings) {
	type pair struct{ doc, freq uint64 }
	pairs := make([]pair, len(tp.Docs))
	for i := range tp.Docs {
		pairs[i] = pair{tp.Docs[i], tp.Freqs[i]}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].doc < pairs[j].doc })
	for i, p := range pairs {
		tp.Docs[i] = p.doc
		tp.Freqs[i] = p.freq
	}
}

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)

	cmd := &cli.Command{
		Name:  "irk-build",
		Usage: "Build an index directory from a term/doc_id/freq stream",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dbpath", Usage: "path to the index directory", Required: true},
			&cli.StringFlag{Name: "doc-sizes", Usage: "path to a file with one document length per line", Required: true},
			&cli.StringFlag{Name: "titles", Usage: "path to a file with one document title per line", Required: true},
			&cli.IntFlag{Name: "skip-block-size", Usage: "postings per skip block", Value: 128},
			&cli.StringFlag{Name: "codec", Usage: "varbyte or streamvbyte", Value: "varbyte"},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
