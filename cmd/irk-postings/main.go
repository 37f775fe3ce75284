// Command irk-postings dumps the decoded posting list for a single term,
// optionally alongside a named quantized score list.
//
// Named after and grounded on irk-postings.cpp in the original
// implementation (see original_source), which served the same purpose.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"

	"github.com/pombredanne/irkit/indexfmt"
	"github.com/pombredanne/irkit/store"
)

func run(ctx context.Context, c *cli.Command) error {
	dbpath := c.String("dbpath")
	term := c.String("term")
	scoreName := c.String("score")

	dir, err := store.OpenDir(dbpath, false)
	if err != nil {
		return errors.Wrap(err, "open database directory")
	}

	ix, err := indexfmt.Open(dir)
	if err != nil {
		return errors.Wrap(err, "open index")
	}
	defer ix.Close()

	tid, ok := ix.TermID(term)
	if !ok {
		fmt.Fprintf(os.Stderr, "irk-postings: term %q not found\n", term)
		return nil
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	if scoreName == "" {
		it, err := ix.Postings(tid)
		if err != nil {
			return errors.Wrap(err, "read postings")
		}
		for {
			p, ok := it.Next()
			if !ok {
				break
			}
			fmt.Fprintf(out, "%d\t%d\n", p.Document, p.Payload)
		}
		return nil
	}

	it, err := ix.ScoredPostings(tid, scoreName)
	if err != nil {
		return errors.Wrap(err, "read scored postings")
	}
	for {
		p, ok := it.Next()
		if !ok {
			break
		}
		fmt.Fprintf(out, "%d\t%d\n", p.Document, p.Payload)
	}
	return nil
}

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)

	cmd := &cli.Command{
		Name:  "irk-postings",
		Usage: "Dump the decoded posting list for one term",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dbpath", Usage: "path to the index directory", Required: true},
			&cli.StringFlag{Name: "term", Usage: "term to look up", Required: true},
			&cli.StringFlag{Name: "score", Usage: "named score tuple to dump instead of raw term frequencies"},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
