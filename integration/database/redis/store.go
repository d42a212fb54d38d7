package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/appcore/core/capability/kv"
)

// Store implements kv.Store on Redis. Keys are stored under an optional
// prefix which is stripped again by ListKeys.
type Store struct {
	client    redis.UniversalClient
	prefix    string
	batchSize int64
}

var _ kv.Store = (*Store)(nil)

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithKeyPrefix namespaces every key.
func WithKeyPrefix(prefix string) StoreOption {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithScanBatchSize sets the COUNT hint passed to SCAN by ListKeys.
func WithScanBatchSize(n int64) StoreOption {
	return func(s *Store) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// NewStore creates a Store on client.
func NewStore(client redis.UniversalClient, opts ...StoreOption) *Store {
	s := &Store{client: client, batchSize: 1000}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %q: %w", key, err)
	}
	return v, true, nil
}

// Set writes value with SET ... GET so the previous value comes back in the
// same round trip.
func (s *Store) Set(ctx context.Context, key string, value []byte) ([]byte, error) {
	prev, err := s.client.SetArgs(ctx, s.prefix+key, value, redis.SetArgs{Get: true}).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("set %q: %w", key, err)
	}
	return []byte(prev), nil
}

// Delete removes key with GETDEL.
func (s *Store) Delete(ctx context.Context, key string) ([]byte, error) {
	prev, err := s.client.GetDel(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("delete %q: %w", key, err)
	}
	return prev, nil
}

func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, s.prefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("exists %q: %w", key, err)
	}
	return n > 0, nil
}

// ListKeys runs one SCAN iteration. The cursor is Redis's own, so pages can be
// empty before the scan completes and a key may show up more than once.
func (s *Store) ListKeys(ctx context.Context, prefix string, cursor uint64) ([]string, uint64, error) {
	keys, next, err := s.client.Scan(ctx, cursor, escapeGlob(s.prefix+prefix)+"*", s.batchSize).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("list keys %q: %w", prefix, err)
	}
	for i, k := range keys {
		keys[i] = strings.TrimPrefix(k, s.prefix)
	}
	return keys, next, nil
}

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

func escapeGlob(s string) string {
	return globEscaper.Replace(s)
}
