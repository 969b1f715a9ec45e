package state

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// storeSuite runs the same behaviour checks against any KVStore.
type storeSuite struct {
	suite.Suite
	ctx      context.Context
	newStore func() KVStore
}

func (s *storeSuite) SetupTest() {
	s.ctx = context.Background()
}

func (s *storeSuite) Test_GetSetDelete() {
	store := s.newStore()
	_, err := store.Get(s.ctx, "missing")
	s.ErrorIs(err, ErrKeyNotFound)

	s.Require().NoError(store.Set(s.ctx, "hot_wallet:terra1a", []byte("a")))
	v, err := store.Get(s.ctx, "hot_wallet:terra1a")
	s.Require().NoError(err)
	s.Equal([]byte("a"), v)

	s.Require().NoError(store.Delete(s.ctx, "hot_wallet:terra1a"))
	ok, err := Has(s.ctx, store, "hot_wallet:terra1a")
	s.NoError(err)
	s.False(ok)
}

func (s *storeSuite) Test_KeysSorted() {
	store := s.newStore()
	for _, k := range []string{"proposal:3", "proposal:1", "ballot:1", "proposal:2"} {
		s.Require().NoError(store.Set(s.ctx, k, []byte("x")))
	}
	keys, err := store.Keys(s.ctx, "proposal:")
	s.Require().NoError(err)
	s.Equal([]string{"proposal:1", "proposal:2", "proposal:3"}, keys)
}

func (s *storeSuite) Test_JSONAndSequence() {
	store := s.newStore()
	type record struct {
		Label string `json:"label"`
	}
	s.Require().NoError(SetJSON(s.ctx, store, "config", record{Label: "farmer"}))
	var out record
	s.Require().NoError(GetJSON(s.ctx, store, "config", &out))
	s.Equal("farmer", out.Label)

	for want := uint64(1); want <= 3; want++ {
		got, err := NextSequence(s.ctx, store, PKProposalSeq)
		s.Require().NoError(err)
		s.Equal(want, got)
	}
}

func TestMemStore(t *testing.T) {
	suite.Run(t, &storeSuite{newStore: func() KVStore { return NewMemStore() }})
}

func TestPrefixStore(t *testing.T) {
	suite.Run(t, &storeSuite{newStore: func() KVStore { return NewPrefixStore(NewMemStore(), "contract:terra1w:") }})
}

func TestCacheStoreSuite(t *testing.T) {
	suite.Run(t, &storeSuite{newStore: func() KVStore { return NewCacheStore(NewMemStore()) }})
}

func TestPrefixIsolation(t *testing.T) {
	ctx := context.Background()
	root := NewMemStore()
	a := NewPrefixStore(root, "a/")
	b := NewPrefixStore(root, "b/")

	require.NoError(t, a.Set(ctx, "k", []byte("1")))
	_, err := b.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	keys, err := root.Keys(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a/k"}, keys)
}

func TestCacheStoreWriteAndDiscard(t *testing.T) {
	ctx := context.Background()
	root := NewMemStore()
	require.NoError(t, root.Set(ctx, "keep", []byte("1")))
	require.NoError(t, root.Set(ctx, "drop", []byte("1")))

	discarded := NewCacheStore(root)
	require.NoError(t, discarded.Set(ctx, "new", []byte("1")))
	require.NoError(t, discarded.Delete(ctx, "keep"))
	// never written, parent unchanged
	keys, err := root.Keys(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"drop", "keep"}, keys)

	cache := NewCacheStore(root)
	require.NoError(t, cache.Set(ctx, "new", []byte("2")))
	require.NoError(t, cache.Delete(ctx, "drop"))
	keys, err = cache.Keys(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"keep", "new"}, keys)

	require.NoError(t, cache.Write(ctx))
	keys, err = root.Keys(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"keep", "new"}, keys)
}

func TestNestedCacheStore(t *testing.T) {
	ctx := context.Background()
	root := NewMemStore()
	outer := NewCacheStore(root)
	inner := NewCacheStore(outer)

	require.NoError(t, inner.Set(ctx, "balance:terra1w:uusd", []byte("10")))
	require.NoError(t, inner.Write(ctx))

	v, err := outer.Get(ctx, "balance:terra1w:uusd")
	require.NoError(t, err)
	assert.Equal(t, []byte("10"), v)

	_, err = root.Get(ctx, "balance:terra1w:uusd")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}
