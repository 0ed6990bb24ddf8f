package roster

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"
)

// FileStore keeps one CSV table per gateway under a data directory. Saves go
// through a temp file followed by a rename, so a concurrent Load never
// observes a half-written table.
type FileStore struct {
	dir string
}

// NewFileStore builds a file store rooted at the given directory.
func NewFileStore(dir string) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("roster data directory required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating roster data directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(gatewayID string) (string, error) {
	id := strings.TrimSpace(gatewayID)
	if id == "" || id != filepath.Base(id) || strings.HasPrefix(id, ".") {
		return "", fmt.Errorf("invalid gateway id %q", gatewayID)
	}
	return filepath.Join(s.dir, id+".csv"), nil
}

// Load reads the full table for a gateway. A gateway whose table has never
// been saved loads as empty; an unreadable or corrupt table is a hard
// ErrStoreUnavailable, never an empty result.
func (s *FileStore) Load(_ context.Context, gatewayID string) (Table, error) {
	path, err := s.path(gatewayID)
	if err != nil {
		return Table{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Table{}, nil
		}
		return Table{}, fmt.Errorf("%w: open %s: %v", ErrStoreUnavailable, path, err)
	}
	defer f.Close()

	table, err := ReadCSV(f)
	if err != nil {
		return Table{}, fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, path, err)
	}
	return table, nil
}

// Save replaces the gateway's table. The previous table stays intact unless
// the temp file is fully written and renamed into place.
func (s *FileStore) Save(_ context.Context, gatewayID string, table Table) error {
	path, err := s.path(gatewayID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: create temp table: %v", ErrStoreUnavailable, err)
	}

	if err := s.writeAndClose(tmp, table); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrStoreUnavailable, path, multierr.Append(err, os.Remove(tmp.Name())))
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("%w: replace %s: %v", ErrStoreUnavailable, path, multierr.Append(err, os.Remove(tmp.Name())))
	}
	return nil
}

func (s *FileStore) writeAndClose(f *os.File, table Table) error {
	err := WriteCSV(f, table)
	err = multierr.Append(err, f.Sync())
	return multierr.Append(err, f.Close())
}
