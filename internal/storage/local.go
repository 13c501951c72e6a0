// Package storage stores uploaded image bytes on local disk. Files are named
// by a generated uuid, never by the uploader-supplied name, so path traversal
// is structurally impossible.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// FileStore is the port the image service writes uploads through.
type FileStore interface {
	// Save writes the stream and returns the generated file name.
	Save(r io.Reader, ext string) (string, int64, error)
	Open(fileName string) (io.ReadSeekCloser, error)
	Remove(fileName string) error
}

// LocalStore keeps files in a single flat directory.
type LocalStore struct {
	dir string
}

var _ FileStore = (*LocalStore)(nil)

// NewLocalStore creates the directory if needed.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("image dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

// Save streams r into a new uuid-named file and returns its name and size.
func (s *LocalStore) Save(r io.Reader, ext string) (string, int64, error) {
	name := uuid.NewString()
	if ext != "" {
		name += "." + strings.TrimPrefix(ext, ".")
	}
	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", 0, err
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(filepath.Join(s.dir, name))
		return "", 0, err
	}
	return name, n, nil
}

// Open returns the stored file for reading.
func (s *LocalStore) Open(fileName string) (io.ReadSeekCloser, error) {
	// fileName comes from our own database, but keep it inside the dir
	// anyway.
	if filepath.Base(fileName) != fileName {
		return nil, fmt.Errorf("invalid file name %q", fileName)
	}
	return os.Open(filepath.Join(s.dir, fileName))
}

// Remove deletes the stored file. Missing files are not an error, so record
// deletion stays idempotent.
func (s *LocalStore) Remove(fileName string) error {
	if filepath.Base(fileName) != fileName {
		return fmt.Errorf("invalid file name %q", fileName)
	}
	err := os.Remove(filepath.Join(s.dir, fileName))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
