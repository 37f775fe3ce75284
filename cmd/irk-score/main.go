// Command irk-score runs the score-index builder (spec component C6)
// against an existing index directory, writing a new named score tuple.
//
// The analogous tool in the original C++ implementation is
// irk-extract-results; this command only builds the quantized score
// files, it does not rank or print anything.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"

	"github.com/pombredanne/irkit/indexfmt"
	"github.com/pombredanne/irkit/scoreindex"
	"github.com/pombredanne/irkit/store"
)

func run(ctx context.Context, c *cli.Command) error {
	dbpath := c.String("dbpath")
	name := c.String("name")
	kindName := c.String("kind")
	bits := int(c.Int("bits"))
	smax := c.Float("smax")

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

	err = scoreindex.Build(dir, ix, scoreindex.Options{
		Name:  name,
		Kind:  kind,
		Bits:  bits,
		Smax:  smax,
		Codec: ix.Codec(),
	})
	if err != nil {
		return errors.Wrap(err, "build score index")
	}

	fmt.Fprintf(os.Stderr, "irk-score: wrote score tuple %q (kind=%s, bits=%d)\n", name, kindName, bits)
	return nil
}

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)

	cmd := &cli.Command{
		Name:  "irk-score",
		Usage: "Build a quantized score index over an existing index directory",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dbpath", Usage: "path to the index directory", Required: true},
			&cli.StringFlag{Name: "name", Usage: "name of the score tuple to write", Required: true},
			&cli.StringFlag{Name: "kind", Usage: "bm25 or ql", Value: "bm25"},
			&cli.IntFlag{Name: "bits", Usage: "quantization bit width", Value: 8},
			&cli.FloatFlag{Name: "smax", Usage: "global maximum score (skips the pre-scan pass if > 0)"},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
