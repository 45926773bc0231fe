package store

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/amishk599/vacancywatch/internal/model"
)

// Ensure FileStore implements model.KnownSetStore.
var _ model.KnownSetStore = (*FileStore)(nil)

// FileStore keeps the known set in a plain UTF-8 text file, one ID per line.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by path. The file is not touched until
// Load or Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (s *FileStore) Path() string { return s.path }

// Load reads the file. A missing file is a first run and yields an empty set.
// Blank lines are ignored.
func (s *FileStore) Load(_ context.Context) (model.KnownSet, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return model.NewKnownSet(), nil
	}
	if err != nil {
		return nil, &model.StoreError{Op: "load", Err: fmt.Errorf("reading %s: %w", s.path, err)}
	}

	set := model.NewKnownSet()
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		set.Add(line)
	}
	return set, nil
}

// Save overwrites the file with every member of set. The content is written
// to a temporary file first and renamed into place, so a failed write leaves
// the previous state intact.
func (s *FileStore) Save(_ context.Context, set model.KnownSet) error {
	if err := s.writeAtomic(set); err != nil {
		return &model.StoreError{Op: "save", Err: err}
	}
	return nil
}

func (s *FileStore) writeAtomic(set model.KnownSet) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	for id := range set {
		if _, err := w.WriteString(id + "\n"); err != nil {
			tmp.Close()
			return fmt.Errorf("writing %s: %w", tmp.Name(), err)
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmp.Name(), err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing %s: %w", s.path, err)
	}
	return nil
}

// Close is a no-op; the file is only open during Load and Save.
func (s *FileStore) Close() error { return nil }
