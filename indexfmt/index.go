// Package indexfmt implements the index view (spec component C5): it
// assembles compact tables (package compacttable) and posting-list views
// (package postings) over named, read-only memory regions (package
// store) into the per-term operations a query engine or CLI needs.
//
// Grounded on acoustid-api/index/db.go for the "one struct owns a set of
// named regions opened from a directory, exposes read accessors, Close
// releases them" shape, and on index/manifest.go for properties.json.
package indexfmt

import (
	"io"
	"sort"
	"strings"

	"github.com/pombredanne/irkit/compacttable"
	"github.com/pombredanne/irkit/intcodec"
	"github.com/pombredanne/irkit/irkerr"
	"github.com/pombredanne/irkit/lexicon"
	"github.com/pombredanne/irkit/postings"
	"github.com/pombredanne/irkit/store"
)

const (
	fileDocID          = "doc.id"
	fileDocIDOffsets   = "doc.idoff"
	fileDocCount       = "doc.count"
	fileDocCountOff    = "doc.countoff"
	fileTermsMap       = "terms.map"
	fileTitlesMap      = "titles.map"
	fileTermsDocFreq   = "terms.docfreq"
	fileTermOccurrence = "term.occurrences"
	fileDocSizes       = "doc.sizes"

	scoreSuffixPostings = ".scores"
	scoreSuffixOffsets  = ".offsets"
	scoreSuffixMaxScore = ".maxscore"
)

// scoreTuple is a named set of pre-quantized score postings: a posting
// blob, its per-term offset table, and each term's maximum quantized
// score.
type scoreTuple struct {
	region   store.Region
	offsets  *compacttable.Table
	maxScore *compacttable.Table
}

// Index is a read-only, zero-copy view over an index directory. It owns
// borrowed memory regions; its lifetime must not exceed the directory's
// (Close releases the regions, it does not delete files).
type Index struct {
	dir   store.Dir
	props Properties

	docIDRegion    store.Region
	docCountRegion store.Region

	docIDOffsets    *compacttable.Table
	docCountOffsets *compacttable.Table
	docSizes        *compacttable.Table
	termDocFreq     *compacttable.Table
	termOccurrence  *compacttable.Table

	terms  lexicon.Lexicon
	titles lexicon.Lexicon

	regions []store.Region // every opened region, for Close

	scoreTuples  map[string]*scoreTuple
	defaultScore string
}

// Open binds an Index view to dir, memory-mapping (or, for an in-memory
// Dir, simply referencing) every required file plus any named score
// tuples discoverable by listing the directory.
func Open(dir store.Dir) (*Index, error) {
	props, err := loadProperties(dir)
	if err != nil {
		return nil, err
	}

	ix := &Index{dir: dir, props: props, scoreTuples: make(map[string]*scoreTuple)}

	docIDRegion, err := ix.openRegion(fileDocID)
	if err != nil {
		return nil, err
	}
	docCountRegion, err := ix.openRegion(fileDocCount)
	if err != nil {
		return nil, err
	}
	ix.docIDRegion = docIDRegion
	ix.docCountRegion = docCountRegion

	ix.docIDOffsets, err = ix.openTable(fileDocIDOffsets)
	if err != nil {
		return nil, err
	}
	ix.docCountOffsets, err = ix.openTable(fileDocCountOff)
	if err != nil {
		return nil, err
	}
	ix.docSizes, err = ix.openTable(fileDocSizes)
	if err != nil {
		return nil, err
	}
	ix.termDocFreq, err = ix.openTable(fileTermsDocFreq)
	if err != nil {
		return nil, err
	}
	ix.termOccurrence, err = ix.openTable(fileTermOccurrence)
	if err != nil {
		return nil, err
	}

	termsRegion, err := ix.openRegion(fileTermsMap)
	if err != nil {
		return nil, err
	}
	terms, err := lexicon.Decode(termsRegion.Bytes())
	if err != nil {
		return nil, err
	}
	ix.terms = terms

	titlesRegion, err := ix.openRegion(fileTitlesMap)
	if err != nil {
		return nil, err
	}
	titles, err := lexicon.DecodeOrdered(titlesRegion.Bytes())
	if err != nil {
		return nil, err
	}
	ix.titles = titles

	if err := ix.openScoreTuples(); err != nil {
		return nil, err
	}

	if ix.termDocFreq.Size() != ix.docIDOffsets.Size() {
		ix.Close()
		return nil, irkerr.Newf(irkerr.Malformed, "index: %d terms in terms.docfreq but %d offsets", ix.termDocFreq.Size(), ix.docIDOffsets.Size())
	}
	if ix.terms.Len() != ix.docIDOffsets.Size() {
		ix.Close()
		return nil, irkerr.Newf(irkerr.Malformed, "index: %d terms in lexicon but %d offsets", ix.terms.Len(), ix.docIDOffsets.Size())
	}

	return ix, nil
}

func (ix *Index) openRegion(name string) (store.Region, error) {
	r, err := ix.dir.OpenFile(name)
	if err != nil {
		return nil, err
	}
	ix.regions = append(ix.regions, r)
	return r, nil
}

func (ix *Index) openTable(name string) (*compacttable.Table, error) {
	r, err := ix.openRegion(name)
	if err != nil {
		return nil, err
	}
	return compacttable.Open(r.Bytes())
}

// openScoreTuples discovers <name>.scores/.offsets/.maxscore triples by
// listing the directory; the first one found (by name) becomes the
// default, matching "zero or more named score tuples ... with one
// marked as default" (spec.md §3). There is no way to mark a different
// tuple as the default; sorted order keeps the choice deterministic.
func (ix *Index) openScoreTuples() error {
	names, err := ix.dir.ListFiles()
	if err != nil {
		return err
	}

	var scoreNames []string
	for _, name := range names {
		if strings.HasSuffix(name, scoreSuffixPostings) {
			scoreNames = append(scoreNames, strings.TrimSuffix(name, scoreSuffixPostings))
		}
	}
	sort.Strings(scoreNames)

	for _, name := range scoreNames {
		region, err := ix.openRegion(name + scoreSuffixPostings)
		if err != nil {
			return err
		}
		offsets, err := ix.openTable(name + scoreSuffixOffsets)
		if err != nil {
			return err
		}
		maxScore, err := ix.openTable(name + scoreSuffixMaxScore)
		if err != nil {
			return err
		}
		ix.scoreTuples[name] = &scoreTuple{region: region, offsets: offsets, maxScore: maxScore}
		if ix.defaultScore == "" {
			ix.defaultScore = name
		}
	}
	return nil
}

// Close releases every region this view opened. It does not remove
// anything from the backing directory.
func (ix *Index) Close() error {
	var first error
	for _, r := range ix.regions {
		if err := r.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// CollectionSize returns N, the number of documents.
func (ix *Index) CollectionSize() int { return int(ix.props.Documents) }

// TermCount returns T, the number of distinct terms.
func (ix *Index) TermCount() int { return ix.terms.Len() }

// DocumentSize returns a document's length in tokens.
func (ix *Index) DocumentSize(doc int) (uint64, error) {
	return ix.docSizes.At(doc)
}

// TermID resolves a term string to its dense id.
func (ix *Index) TermID(term string) (uint32, bool) {
	return ix.terms.IDOf(term)
}

// Term resolves a dense term id back to its string.
func (ix *Index) Term(tid uint32) (string, bool) {
	return ix.terms.TermOf(tid)
}

// Title resolves a document id to its title.
func (ix *Index) Title(doc uint32) (string, bool) {
	return ix.titles.TermOf(doc)
}

// TDF returns the term-document frequency (document count) for tid.
func (ix *Index) TDF(tid uint32) (int, error) {
	v, err := ix.termDocFreq.At(int(tid))
	return int(v), err
}

// TermOccurrences returns the collection-wide occurrence count for tid.
func (ix *Index) TermOccurrences(tid uint32) (uint64, error) {
	return ix.termOccurrence.At(int(tid))
}

// TermCollectionFrequencies returns the whole terms.docfreq table, for
// callers (the score-index builder) that need to enumerate every term.
func (ix *Index) TermCollectionFrequencies() *compacttable.Table { return ix.termDocFreq }

// TermCollectionOccurrences returns the whole term.occurrences table.
func (ix *Index) TermCollectionOccurrences() *compacttable.Table { return ix.termOccurrence }

// termSlice computes a term's byte range within a posting blob given its
// offset table, per spec.md §4.5's "per-term slice selection":
// start = O[tid]; end = (tid+1 < T) ? O[tid+1] : |B|.
func termSlice(blob []byte, offsets *compacttable.Table, tid uint32) ([]byte, error) {
	t := offsets.Size()
	if int(tid) >= t {
		return nil, irkerr.Newf(irkerr.OutOfRange, "index: term id %d out of range [0, %d)", tid, t)
	}
	start, err := offsets.At(int(tid))
	if err != nil {
		return nil, err
	}
	var end uint64
	if int(tid)+1 < t {
		end, err = offsets.At(int(tid) + 1)
		if err != nil {
			return nil, err
		}
	} else {
		end = uint64(len(blob))
	}
	if end < start || end > uint64(len(blob)) {
		return nil, irkerr.Newf(irkerr.Malformed, "index: term %d slice [%d, %d) out of range for blob of %d bytes", tid, start, end, len(blob))
	}
	return blob[start:end], nil
}

// Documents returns the lazy document list for tid.
func (ix *Index) Documents(tid uint32) (*postings.DocumentList, error) {
	slice, err := termSlice(ix.docIDRegion.Bytes(), ix.docIDOffsets, tid)
	if err != nil {
		return nil, err
	}
	tdf, err := ix.TDF(tid)
	if err != nil {
		return nil, err
	}
	return postings.OpenDocumentList(slice, tdf, ix.props.SkipBlockSize, ix.props.Codec)
}

// Frequencies returns the lazy term-frequency list for tid, aligned with
// Documents(tid).
func (ix *Index) Frequencies(tid uint32) (*postings.PayloadList, error) {
	slice, err := termSlice(ix.docCountRegion.Bytes(), ix.docCountOffsets, tid)
	if err != nil {
		return nil, err
	}
	tdf, err := ix.TDF(tid)
	if err != nil {
		return nil, err
	}
	return postings.OpenPayloadList(slice, tdf, ix.props.SkipBlockSize, ix.props.Codec)
}

// Scores returns the lazy quantized-score list for tid from the named
// score tuple, or the default tuple if name is "".
func (ix *Index) Scores(tid uint32, name string) (*postings.PayloadList, error) {
	tuple, err := ix.scoreTuple(name)
	if err != nil {
		return nil, err
	}
	slice, err := termSlice(tuple.region.Bytes(), tuple.offsets, tid)
	if err != nil {
		return nil, err
	}
	tdf, err := ix.TDF(tid)
	if err != nil {
		return nil, err
	}
	return postings.OpenPayloadList(slice, tdf, ix.props.SkipBlockSize, ix.props.Codec)
}

func (ix *Index) scoreTuple(name string) (*scoreTuple, error) {
	if name == "" {
		name = ix.defaultScore
	}
	tuple, ok := ix.scoreTuples[name]
	if !ok {
		return nil, irkerr.Newf(irkerr.NotFound, "index: no score tuple named %q", name)
	}
	return tuple, nil
}

// ScoreNames returns the names of every score tuple the index carries.
func (ix *Index) ScoreNames() []string {
	names := make([]string, 0, len(ix.scoreTuples))
	for name := range ix.scoreTuples {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ScoreData exposes a named score tuple's raw components, for callers
// (shard splitting, re-serialization) that need more than an iterator.
func (ix *Index) ScoreData(name string) (region store.Region, offsets, maxScore *compacttable.Table, err error) {
	tuple, err := ix.scoreTuple(name)
	if err != nil {
		return nil, nil, nil, err
	}
	return tuple.region, tuple.offsets, tuple.maxScore, nil
}

// Postings returns a posting iterator pairing tid's document and
// frequency lists.
func (ix *Index) Postings(tid uint32) (*postings.PostingIterator, error) {
	docs, err := ix.Documents(tid)
	if err != nil {
		return nil, err
	}
	freqs, err := ix.Frequencies(tid)
	if err != nil {
		return nil, err
	}
	return postings.NewPostingIterator(docs, freqs)
}

// ScoredPostings returns a posting iterator pairing tid's document list
// with the named (or default) score list.
func (ix *Index) ScoredPostings(tid uint32, name string) (*postings.PostingIterator, error) {
	docs, err := ix.Documents(tid)
	if err != nil {
		return nil, err
	}
	scores, err := ix.Scores(tid, name)
	if err != nil {
		return nil, err
	}
	return postings.NewPostingIterator(docs, scores)
}

// PostingsByTerm resolves term to a tid and returns its posting
// iterator, or an empty iterator if term is absent.
func (ix *Index) PostingsByTerm(term string) (*postings.PostingIterator, error) {
	tid, ok := ix.TermID(term)
	if !ok {
		return postings.Empty(), nil
	}
	return ix.Postings(tid)
}

// ScoredPostingsByTerm is the string-keyed form of ScoredPostings.
func (ix *Index) ScoredPostingsByTerm(term, name string) (*postings.PostingIterator, error) {
	tid, ok := ix.TermID(term)
	if !ok {
		return postings.Empty(), nil
	}
	return ix.ScoredPostings(tid, name)
}

// CopyDocumentList copies tid's encoded document-list bytes verbatim to
// w and returns its posting count (tdf). A term with zero postings
// occupies zero bytes and returns 0.
func (ix *Index) CopyDocumentList(tid uint32, w io.Writer) (int, error) {
	slice, err := termSlice(ix.docIDRegion.Bytes(), ix.docIDOffsets, tid)
	if err != nil {
		return 0, err
	}
	if _, err := w.Write(slice); err != nil {
		return 0, irkerr.Wrap(err, irkerr.Io, "copy document list")
	}
	return ix.TDF(tid)
}

// CopyFrequencyList copies tid's encoded frequency-list bytes verbatim
// to w and returns its posting count (tdf).
func (ix *Index) CopyFrequencyList(tid uint32, w io.Writer) (int, error) {
	slice, err := termSlice(ix.docCountRegion.Bytes(), ix.docCountOffsets, tid)
	if err != nil {
		return 0, err
	}
	if _, err := w.Write(slice); err != nil {
		return 0, irkerr.Wrap(err, irkerr.Io, "copy frequency list")
	}
	return ix.TDF(tid)
}

// Properties returns the index's global scalar properties.
func (ix *Index) Properties() Properties { return ix.props }

// Codec returns the intcodec.ID used for this index's posting lists.
func (ix *Index) Codec() intcodec.ID { return ix.props.Codec }
