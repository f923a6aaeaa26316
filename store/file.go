package store

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// FileBackend stores each key as <dir>/<key>.json.
type FileBackend struct {
	dir string
}

func NewFileBackend(dir string) *FileBackend {
	return &FileBackend{dir: dir}
}

func (f *FileBackend) Path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

func (f *FileBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	data, err := os.ReadFile(f.Path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &StorageError{Backend: "file", Op: "get", Key: key, Err: err}
	}
	return data, true, nil
}

// Put replaces the file atomically so a crash never leaves a half-written value.
func (f *FileBackend) Put(_ context.Context, key string, value []byte) error {
	wrap := func(err error) error {
		return &StorageError{Backend: "file", Op: "put", Key: key, Err: err}
	}

	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return wrap(err)
	}

	tmp, err := os.CreateTemp(f.dir, "."+key+"-*.tmp")
	if err != nil {
		return wrap(err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return wrap(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return wrap(err)
	}
	if err := os.Rename(tmpName, f.Path(key)); err != nil {
		os.Remove(tmpName)
		return wrap(err)
	}
	return nil
}

func (f *FileBackend) Delete(_ context.Context, key string) error {
	err := os.Remove(f.Path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &StorageError{Backend: "file", Op: "delete", Key: key, Err: err}
	}
	return nil
}
