// Package store implements the directory abstraction an index view binds
// to: a set of named files, opened either as memory-mapped, zero-copy
// regions (on disk) or as plain in-memory byte slices (for tests and
// small indexes), and written atomically so a builder's partial output
// never becomes visible under its final name.
//
// Grounded on acoustid-api/index/fs.go's Dir/fsDir/memDir split (atomic
// writes via github.com/dchest/safefile) and on the mmap technique used
// in hupe1980-vecgo/persistence/mmap.go (golang.org/x/exp/mmap plus a
// reflection fallback to reach the mapped []byte).
package store

import (
	"io"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/dchest/safefile"
	"github.com/pombredanne/irkit/irkerr"
)

// Region is a borrowed, read-only view of a file's contents. Bytes()
// aliases mapped (or in-memory) data and becomes invalid after Close.
type Region interface {
	Bytes() []byte
	Close() error
}

// FileWriter accumulates bytes for a new file. Commit makes the write
// visible under its final name; until Commit is called, nothing the
// writer produced is observable by readers of the directory.
type FileWriter interface {
	io.Writer
	io.Closer
	Commit() error
}

// Dir is the directory an index view binds to.
type Dir interface {
	Path() string
	OpenFile(name string) (Region, error)
	CreateFile(name string) (FileWriter, error)
	RemoveFile(name string) error
	ListFiles() ([]string, error)
}

// IsNotExist reports whether err indicates a missing file.
func IsNotExist(err error) bool { return os.IsNotExist(err) }

// fsDir is a directory backed by the real filesystem; OpenFile
// memory-maps the file read-only.
type fsDir struct {
	path string
}

// OpenDir opens a directory on the filesystem, creating it first if
// create is true and it does not already exist.
func OpenDir(path string, create bool) (Dir, error) {
	path, err := filepath.Abs(path)
	if err != nil {
		return nil, irkerr.Wrap(err, irkerr.Io, "resolve directory path")
	}

	stat, err := os.Stat(path)
	if err != nil {
		if create && os.IsNotExist(err) {
			if err := os.MkdirAll(path, 0750); err != nil {
				return nil, irkerr.Wrap(err, irkerr.Io, "create directory")
			}
		} else {
			return nil, irkerr.Wrap(err, irkerr.Io, "stat directory")
		}
	} else if !stat.IsDir() {
		return nil, irkerr.New(irkerr.Io, "not a directory: "+path)
	}

	return &fsDir{path: path}, nil
}

func (d *fsDir) Path() string { return d.path }

func (d *fsDir) OpenFile(name string) (Region, error) {
	return mmapOpen(filepath.Join(d.path, name))
}

func (d *fsDir) CreateFile(name string) (FileWriter, error) {
	f, err := safefile.Create(filepath.Join(d.path, name), 0644)
	if err != nil {
		return nil, irkerr.Wrapf(err, irkerr.Io, "create file %v", name)
	}
	return &safeFileWriter{f: f}, nil
}

func (d *fsDir) RemoveFile(name string) error {
	err := os.Remove(filepath.Join(d.path, name))
	if err != nil && !os.IsNotExist(err) {
		return irkerr.Wrapf(err, irkerr.Io, "remove file %v", name)
	}
	return nil
}

func (d *fsDir) ListFiles() ([]string, error) {
	infos, err := ioutil.ReadDir(d.path)
	if err != nil {
		return nil, irkerr.Wrap(err, irkerr.Io, "list directory")
	}
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		if !info.IsDir() {
			names = append(names, info.Name())
		}
	}
	return names, nil
}

type safeFileWriter struct {
	f *safefile.File
}

func (w *safeFileWriter) Write(p []byte) (int, error) { return w.f.Write(p) }
func (w *safeFileWriter) Close() error                { return w.f.Close() }
func (w *safeFileWriter) Commit() error               { return w.f.Commit() }
