// Package memstore is a synchronous, map-backed MultiStore used by tests
// and local/dev cmd runs in place of a live Redis deployment.
package memstore

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/nodenorm/node-normalizer/internal/infrastructure/store"
)

// Store implements store.MultiStore entirely in memory.
type Store struct {
	mu     sync.RWMutex
	scalar map[store.StoreName]map[string]string
	lists  map[store.StoreName]map[string][]string
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		scalar: make(map[store.StoreName]map[string]string),
		lists:  make(map[store.StoreName]map[string][]string),
	}
}

// Seed directly populates a scalar key, bypassing Pipeline. Intended for
// test fixture setup.
func (s *Store) Seed(name store.StoreName, key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureScalar(name)[key] = value
}

// SeedList directly populates a list key. Intended for test fixture setup.
func (s *Store) SeedList(name store.StoreName, key string, values ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureList(name)[key] = append([]string(nil), values...)
}

func (s *Store) MultiGet(_ context.Context, name store.StoreName, keys []string) ([]store.Value, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m := s.scalar[name]
	out := make([]store.Value, len(keys))
	for i, k := range keys {
		if v, ok := m[k]; ok {
			out[i] = store.Value{Raw: v, Present: true}
		}
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, name store.StoreName, key string) (store.Value, error) {
	vals, err := s.MultiGet(ctx, name, []string{key})
	if err != nil {
		return store.Value{}, err
	}
	return vals[0], nil
}

func (s *Store) LRange(_ context.Context, name store.StoreName, key string, start, stop int64) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.lists[name][key]
	return sliceRange(list, start, stop), nil
}

func (s *Store) Keys(_ context.Context, name store.StoreName, pattern string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for k := range s.scalar[name] {
		if ok, _ := filepath.Match(pattern, k); ok {
			out = append(out, k)
		}
	}
	for k := range s.lists[name] {
		if ok, _ := filepath.Match(pattern, k); ok {
			out = append(out, k)
		}
	}
	return out, nil
}

func (s *Store) KeyCount(_ context.Context, name store.StoreName) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.scalar[name]) + len(s.lists[name])), nil
}

func (s *Store) Pipeline() store.WritePipeline {
	return &pipeline{store: s}
}

func (s *Store) ensureScalar(name store.StoreName) map[string]string {
	m, ok := s.scalar[name]
	if !ok {
		m = make(map[string]string)
		s.scalar[name] = m
	}
	return m
}

func (s *Store) ensureList(name store.StoreName) map[string][]string {
	m, ok := s.lists[name]
	if !ok {
		m = make(map[string][]string)
		s.lists[name] = m
	}
	return m
}

// sliceRange applies Redis LRANGE index semantics: negative indices count
// from the end of the list, -1 being the last element.
func sliceRange(list []string, start, stop int64) []string {
	n := int64(len(list))
	if n == 0 {
		return nil
	}
	if start < 0 {
		start = n + start
	}
	if stop < 0 {
		stop = n + stop
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if start > stop || start >= n {
		return nil
	}
	out := make([]string, stop-start+1)
	copy(out, list[start:stop+1])
	return out
}
