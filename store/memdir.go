package store

import (
	"bytes"
	"io/ioutil"
	"os"

	"github.com/pombredanne/irkit/irkerr"
)

// memDir is a directory that only lives in memory: useful for tests and
// for indexes small enough that mapping a real file is not worth it.
type memDir struct {
	entries map[string][]byte
}

// NewMemDir creates an empty in-memory directory.
func NewMemDir() Dir {
	return &memDir{entries: make(map[string][]byte)}
}

func (d *memDir) Path() string { return "" }

func (d *memDir) OpenFile(name string) (Region, error) {
	data, ok := d.entries[name]
	if !ok {
		return nil, irkerr.Wrap(os.ErrNotExist, irkerr.NotFound, "open file "+name)
	}
	return &memRegion{data: data}, nil
}

func (d *memDir) CreateFile(name string) (FileWriter, error) {
	if _, ok := d.entries[name]; ok {
		return nil, irkerr.Wrap(os.ErrExist, irkerr.Io, "create file "+name)
	}
	return &memFileWriter{dir: d, name: name}, nil
}

func (d *memDir) RemoveFile(name string) error {
	delete(d.entries, name)
	return nil
}

func (d *memDir) ListFiles() ([]string, error) {
	names := make([]string, 0, len(d.entries))
	for name := range d.entries {
		names = append(names, name)
	}
	return names, nil
}

type memRegion struct {
	data []byte
}

func (r *memRegion) Bytes() []byte { return r.data }
func (r *memRegion) Close() error  { return nil }

type memFileWriter struct {
	buf  bytes.Buffer
	dir  *memDir
	name string
}

func (w *memFileWriter) Write(p []byte) (int, error) { return w.buf.Write(p) }
func (w *memFileWriter) Close() error                { return nil }

func (w *memFileWriter) Commit() error {
	data, err := ioutil.ReadAll(&w.buf)
	if err != nil {
		return irkerr.Wrap(err, irkerr.Io, "commit file "+w.name)
	}
	w.dir.entries[w.name] = data
	return nil
}
