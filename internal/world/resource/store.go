// Package resource keeps the asset metadata and materials a scene references,
// backed by yaml files under an assets directory.
package resource

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// loadConcurrency bounds parallel file reads during Load.
const loadConcurrency = 8

type entry[T any] struct {
	value *T
	dirty bool
}

// store is an insertion-ordered set of yaml-backed values keyed by asset path.
type store[T any] struct {
	root string
	file func(path string) string // asset path -> yaml file path relative to root
	log  *zap.Logger

	mu      sync.Mutex
	entries map[string]*entry[T]
	order   []string
}

func newStore[T any](root string, file func(string) string, log *zap.Logger) *store[T] {
	if log == nil {
		log = zap.NewNop()
	}
	return &store[T]{
		root:    root,
		file:    file,
		log:     log,
		entries: make(map[string]*entry[T]),
	}
}

func (s *store[T]) filename(path string) string {
	return filepath.Join(s.root, s.file(path))
}

// put inserts or replaces a value. Call with mu held.
func (s *store[T]) put(path string, v *T, dirty bool) {
	if e, ok := s.entries[path]; ok {
		e.value = v
		e.dirty = e.dirty || dirty
		return
	}
	s.entries[path] = &entry[T]{value: v, dirty: dirty}
	s.order = append(s.order, path)
}

func (s *store[T]) set(path string, v *T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(path, v, true)
}

func (s *store[T]) get(path string) (*T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[path]
	if !ok {
		return nil, false
	}
	return e.value, true
}

func (s *store[T]) markDirty(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[path]
	if ok {
		e.dirty = true
	}
	return ok
}

func (s *store[T]) paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...)
}

func (s *store[T]) dirtyCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.entries {
		if e.dirty {
			n++
		}
	}
	return n
}

func (s *store[T]) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*entry[T])
	s.order = nil
}

// save writes every dirty value to its yaml file.
func (s *store[T]) save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	written := 0
	for _, path := range s.order {
		e := s.entries[path]
		if !e.dirty {
			continue
		}
		data, err := yaml.Marshal(e.value)
		if err != nil {
			return fmt.Errorf("encoding %s: %w", path, err)
		}
		name := s.filename(path)
		if err := os.MkdirAll(filepath.Dir(name), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(name, data, 0644); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
		e.dirty = false
		written++
	}
	if written > 0 {
		s.log.Debug("metadata flushed", zap.Int("files", written))
	}
	return nil
}

// Batch holds values read from disk but not yet added to a store.
type Batch[T any] struct {
	paths   []string
	values  []*T
	missing []bool
}

// Len returns the number of values in the batch.
func (b *Batch[T]) Len() int { return len(b.paths) }

// read reads the yaml file of every path concurrently without touching the store.
// fallback is called for files that do not exist; a nil fallback makes a missing
// file an error.
func (s *store[T]) read(ctx context.Context, paths []string, fallback func(path string) *T) (*Batch[T], error) {
	b := &Batch[T]{
		paths:   append([]string(nil), paths...),
		values:  make([]*T, len(paths)),
		missing: make([]bool, len(paths)),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(loadConcurrency)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(s.filename(path))
			if errors.Is(err, fs.ErrNotExist) && fallback != nil {
				b.values[i] = fallback(path)
				b.missing[i] = true
				return nil
			}
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			v := new(T)
			if err := yaml.Unmarshal(data, v); err != nil {
				return fmt.Errorf("parsing %s: %w", path, err)
			}
			b.values[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return b, nil
}

// commit inserts a batch in path order. Values that came from fallback are dirty.
func (s *store[T]) commit(b *Batch[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, path := range b.paths {
		if b.missing[i] {
			s.log.Warn("metadata missing, using defaults", zap.String("path", path))
		}
		s.put(path, b.values[i], b.missing[i])
	}
}

// load is read followed by commit.
func (s *store[T]) load(ctx context.Context, paths []string, fallback func(path string) *T) error {
	b, err := s.read(ctx, paths, fallback)
	if err != nil {
		return err
	}
	s.commit(b)
	return nil
}
