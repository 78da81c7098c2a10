// Package cache keeps rendered documents keyed by a hash of the request
// that produced them. It is best-effort: a failing store never fails a
// render.
package cache

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/OneOfOne/xxhash"
	"github.com/redis/go-redis/v9"
)

// Store is a byte store with expiring entries.
type Store interface {
	// Get returns the value under key. ok is false when there is none.
	Get(ctx context.Context, key string) (val []byte, ok bool, err error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
}

const keyPrefix = "jobpdf:"

// Key derives a cache key from kind and the request parts. Each part is
// length-prefixed, so splitting the same bytes differently yields a
// different key.
func Key(kind string, parts ...[]byte) string {
	h1 := xxhash.NewS64(0)
	h2 := xxhash.NewS64(1)
	var n [8]byte
	for _, p := range append([][]byte{[]byte(kind)}, parts...) {
		binary.LittleEndian.PutUint64(n[:], uint64(len(p)))
		h1.Write(n[:])
		h1.Write(p)
		h2.Write(n[:])
		h2.Write(p)
	}
	sum := make([]byte, 16)
	binary.BigEndian.PutUint64(sum[:8], h1.Sum64())
	binary.BigEndian.PutUint64(sum[8:], h2.Sum64())
	return keyPrefix + kind + ":" + hex.EncodeToString(sum)
}

// Cache wraps a Store with a fixed TTL and logs store failures instead of
// returning them.
type Cache struct {
	store  Store
	ttl    time.Duration
	logger *log.Logger
}

// New returns a Cache over store.
func New(store Store, ttl time.Duration, logger *log.Logger) *Cache {
	return &Cache{store: store, ttl: ttl, logger: logger}
}

// GetOrRender returns the cached value under key, or calls render and
// stores its result. hit reports whether the value came from the store.
// Errors from render are returned as is; store errors are only logged.
func (c *Cache) GetOrRender(ctx context.Context, key string, render func() ([]byte, error)) (val []byte, hit bool, err error) {
	if c == nil || c.store == nil {
		val, err = render()
		return val, false, err
	}

	val, ok, err := c.store.Get(ctx, key)
	switch {
	case err != nil:
		c.logger.Printf("get %s: %v", key, err)
	case ok:
		return val, true, nil
	}

	val, err = render()
	if err != nil {
		return nil, false, err
	}
	if err := c.store.Set(ctx, key, val, c.ttl); err != nil {
		c.logger.Printf("set %s: %v", key, err)
	}
	return val, false, nil
}

// RedisStore is a Store backed by redis.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore connects to the redis server at addr.
func NewRedisStore(addr, password string, db int) *RedisStore {
	return &RedisStore{rdb: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

// Ping checks the connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("cache: redis ping: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: redis get: %w", err)
	}
	return val, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, key, val, ttl).Err(); err != nil {
		return fmt.Errorf("cache: redis set: %w", err)
	}
	return nil
}

// Close closes the redis client.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu      sync.Mutex
	now     func() time.Time
	entries map[string]memoryEntry
}

type memoryEntry struct {
	val     []byte
	expires time.Time // zero means never
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now, entries: make(map[string]memoryEntry)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expires.IsZero() && !s.now().Before(e.expires) {
		delete(s.entries, key)
		return nil, false, nil
	}
	return e.val, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := memoryEntry{val: append([]byte(nil), val...)}
	if ttl > 0 {
		e.expires = s.now().Add(ttl)
	}
	s.entries[key] = e
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
