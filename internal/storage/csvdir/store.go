// Package csvdir persists export artifacts as flat files in one directory.
package csvdir

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

type Store struct{ dir string }

// New creates dir if needed and returns a store rooted there.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("csvdir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save writes data through a uniquely named temp file and renames it into
// place, so a file under the final name is always complete. It returns the
// final path. Any directory part of filename is discarded.
func (s *Store) Save(filename string, data []byte) (string, error) {
	final := filepath.Join(s.dir, filepath.Base(filename))
	tmp := filepath.Join(s.dir, "."+uuid.NewString()+".tmp")

	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return "", fmt.Errorf("csvdir: %w", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("csvdir: %w", err)
	}
	return final, nil
}
