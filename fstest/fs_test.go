package fstest_test

import (
	"io"
	"io/fs"
	"testing"

	"github.com/smasher164/stlc/fstest"
	"github.com/smasher164/stlc/fsx"
)

func TestCreate(t *testing.T) {
	mfs := fstest.NewMapFS().Add("a/old.go", "package old")
	for _, name := range []string{"a/old.go", "a/new.go"} {
		f, err := fsx.Create(mfs, name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := io.WriteString(f, "package main"); err != nil {
			t.Fatal(err)
		}
		info, err := f.Stat()
		if err != nil {
			t.Fatal(err)
		}
		if info.Size() != int64(len("package main")) {
			t.Errorf("%s: size %d", name, info.Size())
		}
		if err := f.Close(); err != nil {
			t.Fatal(err)
		}
		b, err := fs.ReadFile(mfs, name)
		if err != nil {
			t.Fatal(err)
		}
		if string(b) != "package main" {
			t.Errorf("%s: got %q", name, b)
		}
	}
	if _, err := fsx.Create(mfs, "a"); err == nil {
		t.Error("created a file over a directory")
	}
	if _, err := fsx.Create(mfs, "/abs.go"); err == nil {
		t.Error("created a file at an invalid path")
	}
}
