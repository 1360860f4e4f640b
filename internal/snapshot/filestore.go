package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
)

// BlobStore is a shared key-value region readable by a separate process.
// Set must replace the value atomically from a reader's point of view.
type BlobStore interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, data []byte) error
}

// FileStore keeps each key as a file in a shared directory. Writes go to a
// temp file in the same directory followed by a rename, so a reader never
// observes a torn blob.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create shared dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the shared directory, for watchers on the reader side.
func (f *FileStore) Dir() string {
	return f.dir
}

func (f *FileStore) path(key string) string {
	return filepath.Join(f.dir, key)
}

func (f *FileStore) Get(key string) ([]byte, bool, error) {
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read blob %q: %w", key, err)
	}
	return data, true, nil
}

func (f *FileStore) Set(key string, data []byte) error {
	tmp, err := os.CreateTemp(f.dir, key+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp blob: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp blob: %w", err)
	}
	if err := os.Rename(tmpName, f.path(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace blob %q: %w", key, err)
	}
	return nil
}
