package memstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodenorm/node-normalizer/internal/infrastructure/store"
	"github.com/nodenorm/node-normalizer/internal/infrastructure/store/memstore"
)

func TestStore_MultiGet_MixedPresence(t *testing.T) {
	s := memstore.New()
	s.Seed(store.StoreEqToCanonical, "MONDO:1", "MONDO:1")

	vals, err := s.MultiGet(context.Background(), store.StoreEqToCanonical, []string{"MONDO:1", "MISSING:1"})
	require.NoError(t, err)
	require.Len(t, vals, 2)
	assert.Equal(t, store.Value{Raw: "MONDO:1", Present: true}, vals[0])
	assert.Equal(t, store.Value{Present: false}, vals[1])
}

func TestStore_Get_SingleKey(t *testing.T) {
	s := memstore.New()
	s.Seed(store.StoreCanonicalCategory, "MONDO:1", "biolink:Disease")

	v, err := s.Get(context.Background(), store.StoreCanonicalCategory, "MONDO:1")
	require.NoError(t, err)
	assert.True(t, v.Present)
	assert.Equal(t, "biolink:Disease", v.Raw)
}

func TestStore_Pipeline_SetBuffersUntilFlush(t *testing.T) {
	s := memstore.New()
	p := s.Pipeline()
	p.Set(store.StoreCanonicalIC, "MONDO:1", "0.5")

	v, err := s.Get(context.Background(), store.StoreCanonicalIC, "MONDO:1")
	require.NoError(t, err)
	assert.False(t, v.Present, "write should not be visible before Flush")

	require.NoError(t, p.Flush(context.Background()))

	v, err = s.Get(context.Background(), store.StoreCanonicalIC, "MONDO:1")
	require.NoError(t, err)
	assert.True(t, v.Present)
	assert.Equal(t, "0.5", v.Raw)
}

func TestStore_Pipeline_RPushAccumulatesAcrossFlushes(t *testing.T) {
	s := memstore.New()
	p := s.Pipeline()
	p.RPush(store.StoreCategoryPrefixes, "biolink:Disease", `{"MONDO":1}`)
	require.NoError(t, p.Flush(context.Background()))

	p2 := s.Pipeline()
	p2.RPush(store.StoreCategoryPrefixes, "biolink:Disease", `{"DOID":2}`)
	require.NoError(t, p2.Flush(context.Background()))

	list, err := s.LRange(context.Background(), store.StoreCategoryPrefixes, "biolink:Disease", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{`{"MONDO":1}`, `{"DOID":2}`}, list)
}

func TestStore_LRange_NegativeIndices(t *testing.T) {
	s := memstore.New()
	s.SeedList(store.StoreCategoryPrefixes, "k", "a", "b", "c", "d")

	list, err := s.LRange(context.Background(), store.StoreCategoryPrefixes, "k", -2, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "d"}, list)
}

func TestStore_Keys_GlobMatch(t *testing.T) {
	s := memstore.New()
	s.Seed(store.StoreEqToCanonical, "MONDO:1", "x")
	s.Seed(store.StoreEqToCanonical, "MONDO:2", "y")
	s.Seed(store.StoreEqToCanonical, "DOID:1", "z")

	keys, err := s.Keys(context.Background(), store.StoreEqToCanonical, "MONDO:*")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"MONDO:1", "MONDO:2"}, keys)
}

func TestStore_KeyCount(t *testing.T) {
	s := memstore.New()
	s.Seed(store.StoreEqToCanonical, "MONDO:1", "x")
	s.Seed(store.StoreEqToCanonical, "MONDO:2", "y")
	s.SeedList(store.StoreEqToCanonical, "list-key", "v")

	count, err := s.KeyCount(context.Background(), store.StoreEqToCanonical)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
}
