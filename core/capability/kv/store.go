package kv

import (
	"context"
	"slices"
	"strings"
	"sync"
)

// Store performs kv operations. Implementations must be safe for concurrent
// use.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) (previous []byte, err error)
	Delete(ctx context.Context, key string) (previous []byte, err error)
	Exists(ctx context.Context, key string) (bool, error)
	ListKeys(ctx context.Context, prefix string, cursor uint64) (keys []string, next uint64, err error)
}

// DefaultPageSize is the ListKeys page size of MemoryStore.
const DefaultPageSize = 100

// MemoryStore is an in-memory Store.
type MemoryStore struct {
	mu       sync.RWMutex
	data     map[string][]byte
	pageSize int
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithPageSize sets how many keys ListKeys returns per page.
func WithPageSize(n int) MemoryOption {
	return func(s *MemoryStore) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		data:     make(map[string][]byte),
		pageSize: DefaultPageSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return slices.Clone(v), ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.data[key]
	s.data[key] = slices.Clone(value)
	return prev, nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.data[key]
	delete(s.data, key)
	return prev, nil
}

func (s *MemoryStore) Exists(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.data[key]
	return ok, nil
}

// ListKeys pages through matching keys in lexical order. The cursor is the
// offset of the page in that order.
func (s *MemoryStore) ListKeys(_ context.Context, prefix string, cursor uint64) ([]string, uint64, error) {
	s.mu.RLock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	s.mu.RUnlock()

	slices.Sort(keys)
	if cursor >= uint64(len(keys)) {
		return nil, 0, nil
	}

	end := cursor + uint64(s.pageSize)
	if end >= uint64(len(keys)) {
		return keys[cursor:], 0, nil
	}
	return keys[cursor:end], end, nil
}
