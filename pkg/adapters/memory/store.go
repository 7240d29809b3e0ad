package memory

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"sort"
	"sync"
)

// Store implements ports.ArtifactStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]image.Image
	mu   sync.RWMutex
	err  error
}

// NewStore creates a new in-memory artifact store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]image.Image),
	}
}

// FailWith makes every subsequent Save return err. Pass nil to recover.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Save keeps a copy of img under path.
func (s *Store) Save(ctx context.Context, path string, img image.Image) error {
	if path == "" {
		return fmt.Errorf("artifact path cannot be empty")
	}

	// Copy so later mutation of the caller's buffer does not leak into the store.
	copied := image.NewRGBA64(img.Bounds())
	draw.Draw(copied, copied.Bounds(), img, img.Bounds().Min, draw.Src)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.data[path] = copied
	return nil
}

// Load returns the artifact stored under path.
func (s *Store) Load(path string) (image.Image, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	img, ok := s.data[path]
	return img, ok
}

// List returns stored paths in lexical order.
func (s *Store) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	paths := make([]string, 0, len(s.data))
	for p := range s.data {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
