package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Store is the place prefetched media ends up in. Downloads are written to a
// temp file under TempDir and then handed to Commit under their final name.
type Store interface {
	Exists(ctx context.Context, name string) (bool, error)
	Commit(ctx context.Context, tmpPath, name string) error
	TempDir() string
}

// DiskStore keeps media as flat files in a single cache directory.
type DiskStore struct {
	dir string
	tmp string
}

func NewDiskStore(dir string) (*DiskStore, error) {
	tmp := filepath.Join(dir, ".partial")
	if err := os.MkdirAll(tmp, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &DiskStore{dir: dir, tmp: tmp}, nil
}

// Path returns where the file called name lives, whether or not it exists.
func (s *DiskStore) Path(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *DiskStore) Exists(_ context.Context, name string) (bool, error) {
	_, err := os.Stat(s.Path(name))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func (s *DiskStore) Commit(_ context.Context, tmpPath, name string) error {
	if err := os.Rename(tmpPath, s.Path(name)); err != nil {
		return fmt.Errorf("move %s into cache: %w", name, err)
	}
	return nil
}

func (s *DiskStore) TempDir() string {
	return s.tmp
}
