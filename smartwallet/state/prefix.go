package state

import (
	"context"
	"strings"
)

// PrefixStore namespaces every key of an underlying store.
type PrefixStore struct {
	parent KVStore
	prefix string
}

var _ KVStore = (*PrefixStore)(nil)

func NewPrefixStore(parent KVStore, prefix string) *PrefixStore {
	return &PrefixStore{parent: parent, prefix: prefix}
}

func (p *PrefixStore) Get(ctx context.Context, key string) ([]byte, error) {
	return p.parent.Get(ctx, p.prefix+key)
}

func (p *PrefixStore) Set(ctx context.Context, key string, value []byte) error {
	return p.parent.Set(ctx, p.prefix+key, value)
}

func (p *PrefixStore) Delete(ctx context.Context, key string) error {
	return p.parent.Delete(ctx, p.prefix+key)
}

func (p *PrefixStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	keys, err := p.parent.Keys(ctx, p.prefix+prefix)
	if err != nil {
		return nil, err
	}
	for i, k := range keys {
		keys[i] = strings.TrimPrefix(k, p.prefix)
	}
	return keys, nil
}
