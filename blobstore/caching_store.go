package blobstore

import (
	"context"

	"github.com/hupe1980/pathstore/internal/cache"
	"github.com/hupe1980/pathstore/resource"
)

// DefaultCacheBytes is the cache capacity used when none is given.
const DefaultCacheBytes = 64 << 20

// CachingStore keeps recently read blobs of an inner store in memory.
// Blobs are immutable once written, so only Put, Create and Delete through
// this store invalidate entries.
type CachingStore struct {
	inner BlobStore
	lru   *cache.LRU
}

// NewCachingStore wraps inner with an LRU of capacity bytes. rc, if not
// nil, is charged for cached bytes.
func NewCachingStore(inner BlobStore, capacity int64, rc *resource.Controller) *CachingStore {
	if capacity <= 0 {
		capacity = DefaultCacheBytes
	}
	return &CachingStore{inner: inner, lru: cache.NewLRU(capacity, rc)}
}

// Open serves the blob from cache, reading it fully from the inner store
// on a miss.
func (s *CachingStore) Open(ctx context.Context, name string) (Blob, error) {
	if data, ok := s.lru.Get(name); ok {
		return &byteBlob{data: data}, nil
	}

	data, err := Get(ctx, s.inner, name)
	if err != nil {
		return nil, err
	}
	s.lru.Set(name, data)
	return &byteBlob{data: data}, nil
}

func (s *CachingStore) Create(ctx context.Context, name string) (WritableBlob, error) {
	s.lru.Remove(name)
	return s.inner.Create(ctx, name)
}

func (s *CachingStore) Put(ctx context.Context, name string, data []byte) error {
	s.lru.Remove(name)
	return s.inner.Put(ctx, name, data)
}

func (s *CachingStore) Delete(ctx context.Context, name string) error {
	s.lru.Remove(name)
	return s.inner.Delete(ctx, name)
}

func (s *CachingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

// Stats returns cache statistics.
func (s *CachingStore) Stats() cache.Stats { return s.lru.Stats() }

// Purge drops all cached blobs.
func (s *CachingStore) Purge() { s.lru.Purge() }
