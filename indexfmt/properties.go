package indexfmt

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"

	"github.com/pombredanne/irkit/intcodec"
	"github.com/pombredanne/irkit/irkerr"
	"github.com/pombredanne/irkit/store"
)

const propertiesFilename = "properties.json"

// Properties is the global scalar record every index directory carries,
// grounded on acoustid-api/index/manifest.go's JSON Manifest (same
// json.NewEncoder/NewDecoder pattern, same SetIndent("", "  ") style).
type Properties struct {
	Documents       uint64  `json:"documents"`
	Occurrences     uint64  `json:"occurrences"`
	SkipBlockSize   int     `json:"skip_block_size"`
	AvgDocumentSize float64 `json:"avg_document_size"`
	KeyMaxlen       int     `json:"key_maxlen,omitempty"`

	// Codec records which intcodec.ID was used to build doc.id/doc.count;
	// Index also reads every named score tuple with it, since no tuple
	// records a codec of its own. The
	// wire format itself has no room for a codec discriminator (spec.md
	// §9); this is the out-of-band record a build keeps for itself.
	Codec intcodec.ID `json:"codec"`
}

func loadProperties(dir store.Dir) (Properties, error) {
	var props Properties
	r, err := dir.OpenFile(propertiesFilename)
	if err != nil {
		return props, err
	}
	defer r.Close()

	if err := json.Unmarshal(r.Bytes(), &props); err != nil {
		return props, irkerr.Wrap(err, irkerr.Malformed, "decode properties.json")
	}
	return props, nil
}

func saveProperties(dir store.Dir, props Properties) error {
	w, err := dir.CreateFile(propertiesFilename)
	if err != nil {
		return irkerr.Wrap(err, irkerr.Io, "create properties.json")
	}
	if err := writeIndentedJSON(w, props); err != nil {
		return err
	}
	return irkerr.Wrap(w.Commit(), irkerr.Io, "commit properties.json")
}

func writeIndentedJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return irkerr.Wrap(errors.Wrap(err, "encode json"), irkerr.Io, "write properties.json")
	}
	return nil
}
