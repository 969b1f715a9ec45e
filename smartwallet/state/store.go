// Package state is the key/value persistence every wallet component writes through.
package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

var ErrKeyNotFound = errors.New("key not found")

// KVStore is a flat byte store. Keys returns the matching keys in ascending order.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// Sequencer is implemented by stores with a native atomic counter.
type Sequencer interface {
	Incr(ctx context.Context, key string) (uint64, error)
}

func GetJSON(ctx context.Context, store KVStore, key string, out interface{}) error {
	raw, err := store.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func SetJSON(ctx context.Context, store KVStore, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return store.Set(ctx, key, raw)
}

// Has reports whether key is present.
func Has(ctx context.Context, store KVStore, key string) (bool, error) {
	_, err := store.Get(ctx, key)
	if errors.Is(err, ErrKeyNotFound) {
		return false, nil
	}
	return err == nil, err
}

// NextSequence increments the counter stored at key and returns the new value, starting at 1.
func NextSequence(ctx context.Context, store KVStore, key string) (uint64, error) {
	if seq, ok := store.(Sequencer); ok {
		return seq.Incr(ctx, key)
	}
	var current uint64
	raw, err := store.Get(ctx, key)
	switch {
	case errors.Is(err, ErrKeyNotFound):
	case err != nil:
		return 0, err
	default:
		current, err = strconv.ParseUint(string(raw), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("decode sequence %s: %w", key, err)
		}
	}
	current++
	if err := store.Set(ctx, key, []byte(strconv.FormatUint(current, 10))); err != nil {
		return 0, err
	}
	return current, nil
}
