// Package fstest provides an in-memory file system that supports
// fsx.Create, for tests that write files.
package fstest

import (
	"io"
	"io/fs"
	"testing/fstest"

	"github.com/smasher164/stlc/fsx"
)

var _ fsx.CreateFS = MapFS{}

type MapFS struct {
	fstest.MapFS
}

func NewMapFS() MapFS {
	return MapFS{fstest.MapFS{}}
}

func (mfs MapFS) Add(name, body string) MapFS {
	mfs.MapFS[name] = &fstest.MapFile{
		Data: []byte(body),
	}
	return mfs
}

// Create implements fsx.CreateFS. An existing file is truncated.
func (mfs MapFS) Create(name string) (fsx.WriteableFile, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "create", Path: name, Err: fs.ErrInvalid}
	}
	if info, err := fs.Stat(mfs.MapFS, name); err == nil && info.IsDir() {
		return nil, &fs.PathError{Op: "create", Path: name, Err: fs.ErrExist}
	}
	f, ok := mfs.MapFS[name]
	if !ok {
		f = &fstest.MapFile{}
		mfs.MapFS[name] = f
	}
	f.Data = nil
	return &mapFile{fsys: mfs, name: name, f: f}, nil
}

// mapFile is a file opened for writing.
type mapFile struct {
	fsys   MapFS
	name   string
	f      *fstest.MapFile
	offset int
}

func (mf *mapFile) Write(p []byte) (n int, err error) {
	mf.f.Data = append(mf.f.Data, p...)
	return len(p), nil
}

func (mf *mapFile) Read(p []byte) (int, error) {
	if mf.offset >= len(mf.f.Data) {
		return 0, io.EOF
	}
	n := copy(p, mf.f.Data[mf.offset:])
	mf.offset += n
	return n, nil
}

func (mf *mapFile) Stat() (fs.FileInfo, error) {
	return fs.Stat(mf.fsys.MapFS, mf.name)
}

func (mf *mapFile) Close() error {
	return nil
}
