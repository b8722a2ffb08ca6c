package universe

import (
	"fmt"
	"sync/atomic"
)

// Repository holds the current alias index generation. Readers always see a
// complete index; rebuilds construct a fresh Index and swap the pointer, so
// no reader ever observes a partially built structure.
type Repository struct {
	current atomic.Pointer[Index]
	path    string
}

// NewRepository wraps an already built index
func NewRepository(idx *Index) *Repository {
	r := &Repository{}
	r.current.Store(idx)
	return r
}

// LoadRepository builds a repository from a universe file. A load failure is
// fatal: there is no usable empty state.
func LoadRepository(path string) (*Repository, error) {
	f, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	r := &Repository{path: path}
	r.current.Store(NewIndex(f.Companies, f.Aliases))
	return r, nil
}

// Current returns the live index generation
func (r *Repository) Current() *Index {
	return r.current.Load()
}

// Rebuild re-reads the universe file and atomically swaps in the new index.
// On failure the previous generation stays live.
func (r *Repository) Rebuild() error {
	if r.path == "" {
		return fmt.Errorf("repository was not loaded from a file")
	}

	f, err := LoadFile(r.path)
	if err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}

	r.current.Store(NewIndex(f.Companies, f.Aliases))
	return nil
}
