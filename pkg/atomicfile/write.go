// Package atomicfile writes files through a temporary file and rename so readers never
// observe a partially written cover or catalog.
package atomicfile

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Write atomically replaces path with data.
func Write(path string, data []byte, perm os.FileMode) error {
	return WriteFrom(path, bytes.NewReader(data), perm)
}

// WriteFrom atomically replaces path with the contents of r. On any failure the temporary
// file is removed and path is left untouched.
func WriteFrom(path string, r io.Reader, perm os.FileMode) error {
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp.*")
	if err != nil {
		return errors.Wrap(err, "atomicfile: create temp file")
	}
	tmpName := f.Name()
	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return errors.Wrap(err, "atomicfile: write temp file")
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return errors.Wrap(err, "atomicfile: sync temp file")
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "atomicfile: close temp file")
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return errors.Wrap(err, "atomicfile: chmod temp file")
	}
	if err := os.Rename(tmpName, path); err != nil {
		return errors.Wrap(err, "atomicfile: rename temp file")
	}
	success = true
	return nil
}
