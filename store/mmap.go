package store

import (
	"reflect"
	"unsafe"

	"golang.org/x/exp/mmap"

	"github.com/pombredanne/irkit/irkerr"
)

// mmapRegion is a Region backed by a read-only memory mapping.
type mmapRegion struct {
	r    *mmap.ReaderAt
	data []byte
}

func (m *mmapRegion) Bytes() []byte { return m.data }

func (m *mmapRegion) Close() error {
	m.data = nil
	if m.r == nil {
		return nil
	}
	err := m.r.Close()
	m.r = nil
	return err
}

func mmapOpen(path string) (Region, error) {
	r, err := mmap.Open(path)
	if err != nil {
		if IsNotExist(err) {
			return nil, irkerr.Wrap(err, irkerr.NotFound, "open file")
		}
		return nil, irkerr.Wrap(err, irkerr.Io, "mmap file")
	}

	size := r.Len()
	if size == 0 {
		// An empty file maps to a zero-length region; there is nothing
		// to reach into via reflection, and nothing to read either.
		return &mmapRegion{r: r, data: nil}, nil
	}

	data, err := mappedBytes(r)
	if err != nil {
		_ = r.Close()
		return nil, irkerr.Wrap(err, irkerr.Io, "mmap file")
	}
	if len(data) != size {
		_ = r.Close()
		return nil, irkerr.Newf(irkerr.Io, "mmap: unexpected mapping size: got %d, want %d", len(data), size)
	}
	return &mmapRegion{r: r, data: data}, nil
}

// mappedBytes reaches into golang.org/x/exp/mmap.ReaderAt's private data
// field to get a zero-copy view of the mapping. The package only exposes
// ReaderAt/Len by design; everything in this module that needs a []byte
// view (compact tables, posting blobs, lexicons) needs the real mapping,
// not a ReadAt-into-a-fresh-buffer copy per access.
func mappedBytes(r *mmap.ReaderAt) ([]byte, error) {
	v := reflect.ValueOf(r)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return nil, irkerr.New(irkerr.Io, "mmap: unexpected reader kind")
	}
	e := v.Elem()
	if e.Kind() != reflect.Struct {
		return nil, irkerr.New(irkerr.Io, "mmap: unexpected reader layout")
	}
	f := e.FieldByName("data")
	if !f.IsValid() || f.Kind() != reflect.Slice || f.Type().Elem().Kind() != reflect.Uint8 {
		return nil, irkerr.New(irkerr.Io, "mmap: unsupported golang.org/x/exp/mmap.ReaderAt layout")
	}
	if !f.CanAddr() {
		return nil, irkerr.New(irkerr.Io, "mmap: cannot address reader data")
	}
	return *(*[]byte)(unsafe.Pointer(f.UnsafeAddr())), nil
}
