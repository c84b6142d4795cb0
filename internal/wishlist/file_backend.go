package wishlist

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var keyReplacer = strings.NewReplacer(":", "_", "/", "_", "\\", "_", "..", "_")

// FileBackend keeps each key as a JSON file in one directory.
type FileBackend struct {
	dir string
}

func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create wishlist dir: %w", err)
	}
	return &FileBackend{dir: dir}, nil
}

func (b *FileBackend) path(key string) string {
	return filepath.Join(b.dir, keyReplacer.Replace(key)+".json")
}

func (b *FileBackend) Load(_ context.Context, key string) ([]byte, error) {
	raw, err := os.ReadFile(b.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return raw, err
}

// Save writes through a temp file and rename so readers never see a partial file.
func (b *FileBackend) Save(_ context.Context, key string, data []byte) error {
	tmp, err := os.CreateTemp(b.dir, ".wishlist-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), b.path(key))
}
