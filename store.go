package cambio

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// Store is the durable medium snapshots are written to and read from. The
// engine itself never blocks on it: an outer layer observes completed
// mutations and saves when it sees fit.
type Store interface {
	// Load returns the stored snapshot, or fs.ErrNotExist when nothing was
	// ever saved.
	Load() (io.ReadCloser, error)
	// Save writes a new snapshot produced by write, atomically: a failed
	// write must leave the previous snapshot intact.
	Save(write func(io.Writer) error) error
}

// FileStore keeps the snapshot in a single JSONL file under a data
// directory.
type FileStore struct {
	path string
}

// NewFileStore creates a store writing to <dir>/book.jsonl.
func NewFileStore(dir string) *FileStore {
	return &FileStore{path: filepath.Join(dir, "book.jsonl")}
}

func (s *FileStore) Load() (io.ReadCloser, error) {
	return os.Open(s.path)
}

// Save writes to a temporary file first and renames it over the snapshot, so
// a crash mid-write never corrupts the stored state.
func (s *FileStore) Save(write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("could not create data directory for %q: %w", s.path, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".book-*.jsonl")
	if err != nil {
		return fmt.Errorf("could not create temporary snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("could not finish snapshot %q: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("could not replace snapshot %q: %w", s.path, err)
	}
	return nil
}

// LoadEngine loads the engine from the store. A missing snapshot yields a
// fresh engine. A corrupt snapshot also yields a fresh engine, never a
// partial load, and the decode failure is returned as a warning the caller
// should surface; it wraps ErrCorruptState.
func LoadEngine(store Store, home, defaultWalletName string) (*Engine, error) {
	r, err := store.Load()
	if errors.Is(err, fs.ErrNotExist) {
		return NewEngine(home, defaultWalletName), nil
	}
	if err != nil {
		return NewEngine(home, defaultWalletName), fmt.Errorf("could not read snapshot: %v: %w", err, ErrCorruptState)
	}
	defer r.Close()

	e, err := DecodeSnapshot(r)
	if err != nil {
		slog.Warn("snapshot did not load, starting from an empty book", "err", err)
		return NewEngine(home, defaultWalletName), err
	}
	return e, nil
}

// SaveEngine writes the engine state to the store.
func SaveEngine(store Store, e *Engine) error {
	return store.Save(func(w io.Writer) error {
		return EncodeSnapshot(w, e)
	})
}
