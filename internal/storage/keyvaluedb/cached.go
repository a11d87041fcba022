package keyvaluedb

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the entry count used when a cache size is not
// configured.
const DefaultCacheSize = 4096

// Cached wraps a Store with an LRU read cache. Writes go through to the
// inner store and update the cache; deletes evict.
type Cached struct {
	inner Store
	cache *lru.Cache[string, []byte]
}

// NewCached wraps inner with an LRU cache of the given entry count.
func NewCached(inner Store, size int) (*Cached, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, err
	}
	return &Cached{inner: inner, cache: cache}, nil
}

func (c *Cached) Get(key []byte) ([]byte, error) {
	if value, ok := c.cache.Get(string(key)); ok {
		out := make([]byte, len(value))
		copy(out, value)
		return out, nil
	}
	value, err := c.inner.Get(key)
	if err != nil {
		return nil, err
	}
	c.cache.Add(string(key), value)
	return value, nil
}

func (c *Cached) Put(key, value []byte) error {
	if err := c.inner.Put(key, value); err != nil {
		return err
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	c.cache.Add(string(key), stored)
	return nil
}

func (c *Cached) Delete(key []byte) error {
	if err := c.inner.Delete(key); err != nil {
		return err
	}
	c.cache.Remove(string(key))
	return nil
}

func (c *Cached) ForEach(fn func(key, value []byte) error) error {
	return c.inner.ForEach(fn)
}

func (c *Cached) Close() error {
	c.cache.Purge()
	return c.inner.Close()
}
