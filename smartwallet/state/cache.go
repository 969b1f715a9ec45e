package state

import (
	"context"
	"sort"
	"strings"
)

// CacheStore buffers writes over a parent store until Write is called. Discarding the cache
// leaves the parent untouched. Not safe for concurrent use.
type CacheStore struct {
	parent  KVStore
	writes  map[string][]byte
	deletes map[string]struct{}
}

var _ KVStore = (*CacheStore)(nil)

func NewCacheStore(parent KVStore) *CacheStore {
	return &CacheStore{
		parent:  parent,
		writes:  make(map[string][]byte),
		deletes: make(map[string]struct{}),
	}
}

func (c *CacheStore) Get(ctx context.Context, key string) ([]byte, error) {
	if _, ok := c.deletes[key]; ok {
		return nil, ErrKeyNotFound
	}
	if v, ok := c.writes[key]; ok {
		return append([]byte(nil), v...), nil
	}
	return c.parent.Get(ctx, key)
}

func (c *CacheStore) Set(_ context.Context, key string, value []byte) error {
	delete(c.deletes, key)
	c.writes[key] = append([]byte(nil), value...)
	return nil
}

func (c *CacheStore) Delete(_ context.Context, key string) error {
	delete(c.writes, key)
	c.deletes[key] = struct{}{}
	return nil
}

func (c *CacheStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	parentKeys, err := c.parent.Keys(ctx, prefix)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(parentKeys)+len(c.writes))
	for _, k := range parentKeys {
		if _, gone := c.deletes[k]; !gone {
			set[k] = struct{}{}
		}
	}
	for k := range c.writes {
		if strings.HasPrefix(k, prefix) {
			set[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Write flushes buffered changes into the parent and resets the cache.
func (c *CacheStore) Write(ctx context.Context) error {
	for k := range c.deletes {
		if err := c.parent.Delete(ctx, k); err != nil {
			return err
		}
	}
	keys := make([]string, 0, len(c.writes))
	for k := range c.writes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := c.parent.Set(ctx, k, c.writes[k]); err != nil {
			return err
		}
	}
	c.writes = make(map[string][]byte)
	c.deletes = make(map[string]struct{})
	return nil
}
