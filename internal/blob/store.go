package blob

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNotFound signals a missing object, distinct from transient I/O
// failure.
var ErrNotFound = errors.New("blob not found")

// Store is the artifact storage collaborator. Paths use forward
// slashes regardless of platform.
type Store interface {
	Get(path string) ([]byte, error)
	Put(path string, data []byte) error
	List(prefix string) ([]string, error)
}

// FSStore implements Store on the local filesystem under a base
// directory, writing atomically via temp file + rename.
type FSStore struct {
	baseDir string
}

// NewFSStore creates a filesystem store rooted at baseDir.
func NewFSStore(baseDir string) *FSStore {
	return &FSStore{baseDir: baseDir}
}

func (s *FSStore) localPath(path string) string {
	return filepath.Join(s.baseDir, filepath.FromSlash(path))
}

// Get reads one object, mapping a missing file onto ErrNotFound.
func (s *FSStore) Get(path string) ([]byte, error) {
	data, err := os.ReadFile(s.localPath(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to read blob %s: %w", path, err)
	}
	return data, nil
}

// Put writes one object atomically.
func (s *FSStore) Put(path string, data []byte) error {
	full := s.localPath(path)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return fmt.Errorf("failed to create blob directory for %s: %w", path, err)
	}
	tmp := full + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write blob %s: %w", path, err)
	}
	if err := os.Rename(tmp, full); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to finalize blob %s: %w", path, err)
	}
	return nil
}

// List returns the object paths under prefix, sorted ascending.
func (s *FSStore) List(prefix string) ([]string, error) {
	root := s.localPath(prefix)
	var paths []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.IsDir() || strings.HasSuffix(path, ".tmp") {
			return nil
		}
		rel, err := filepath.Rel(s.baseDir, path)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list blobs under %s: %w", prefix, err)
	}
	sort.Strings(paths)
	return paths, nil
}
