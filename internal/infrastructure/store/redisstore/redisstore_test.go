package redisstore_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodenorm/node-normalizer/internal/config"
	redisclient "github.com/nodenorm/node-normalizer/internal/infrastructure/database/redis"
	"github.com/nodenorm/node-normalizer/internal/infrastructure/monitoring/logging"
	"github.com/nodenorm/node-normalizer/internal/infrastructure/store"
	"github.com/nodenorm/node-normalizer/internal/infrastructure/store/redisstore"
)

func newTestStore(t *testing.T, eqBatchSize, pipelineBlockSize int) (*redisstore.Store, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)

	cfg := config.RedisConfig{Mode: "standalone", Host: mr.Host(), Port: mustPort(t, mr.Port())}
	client, err := redisclient.NewClient(cfg, logging.NewNopLogger())
	require.NoError(t, err)

	prefixes := map[store.StoreName]string{
		store.StoreEqToCanonical:     "eq2c",
		store.StoreCanonicalMembers:  "members",
		store.StoreCategoryPrefixes:  "prefixes",
		store.StoreCanonicalCategory: "category",
	}
	s := redisstore.New(client, prefixes, eqBatchSize, pipelineBlockSize, logging.NewNopLogger())
	return s, func() {
		client.Close()
		mr.Close()
	}
}

func mustPort(t *testing.T, portStr string) int {
	t.Helper()
	n := 0
	for _, r := range portStr {
		n = n*10 + int(r-'0')
	}
	return n
}

func TestStore_SetThenMultiGet(t *testing.T) {
	s, cleanup := newTestStore(t, 2500, 1000)
	defer cleanup()

	pipe := s.Pipeline()
	pipe.Set(store.StoreEqToCanonical, "MONDO:1", "MONDO:1")
	pipe.Set(store.StoreEqToCanonical, "DOID:1", "MONDO:1")
	require.NoError(t, pipe.Flush(context.Background()))

	vals, err := s.MultiGet(context.Background(), store.StoreEqToCanonical, []string{"MONDO:1", "DOID:1", "MISSING:1"})
	require.NoError(t, err)
	require.Len(t, vals, 3)
	assert.Equal(t, store.Value{Raw: "MONDO:1", Present: true}, vals[0])
	assert.Equal(t, store.Value{Raw: "MONDO:1", Present: true}, vals[1])
	assert.False(t, vals[2].Present)
}

func TestStore_MultiGet_ChunksAcrossBatchCeiling(t *testing.T) {
	s, cleanup := newTestStore(t, 2, 1000)
	defer cleanup()

	pipe := s.Pipeline()
	pipe.Set(store.StoreEqToCanonical, "A", "1")
	pipe.Set(store.StoreEqToCanonical, "B", "2")
	pipe.Set(store.StoreEqToCanonical, "C", "3")
	pipe.Set(store.StoreEqToCanonical, "D", "4")
	pipe.Set(store.StoreEqToCanonical, "E", "5")
	require.NoError(t, pipe.Flush(context.Background()))

	vals, err := s.MultiGet(context.Background(), store.StoreEqToCanonical, []string{"A", "B", "C", "D", "E"})
	require.NoError(t, err)
	require.Len(t, vals, 5)
	for i, want := range []string{"1", "2", "3", "4", "5"} {
		assert.Equal(t, want, vals[i].Raw)
	}
}

func TestStore_Get_MissingKey(t *testing.T) {
	s, cleanup := newTestStore(t, 2500, 1000)
	defer cleanup()

	v, err := s.Get(context.Background(), store.StoreCanonicalCategory, "nope")
	require.NoError(t, err)
	assert.False(t, v.Present)
}

func TestStore_RPushAndLRange(t *testing.T) {
	s, cleanup := newTestStore(t, 2500, 1000)
	defer cleanup()

	pipe := s.Pipeline()
	pipe.RPush(store.StoreCategoryPrefixes, "biolink:Disease", `{"MONDO":1}`, `{"DOID":2}`)
	require.NoError(t, pipe.Flush(context.Background()))

	vals, err := s.LRange(context.Background(), store.StoreCategoryPrefixes, "biolink:Disease", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{`{"MONDO":1}`, `{"DOID":2}`}, vals)
}

func TestStore_Pipeline_AutoFlushAtBlockSize(t *testing.T) {
	s, cleanup := newTestStore(t, 2500, 2)
	defer cleanup()

	pipe := s.Pipeline()
	pipe.Set(store.StoreEqToCanonical, "A", "1")
	pipe.Set(store.StoreEqToCanonical, "B", "2") // triggers auto-flush at block size 2

	v, err := s.Get(context.Background(), store.StoreEqToCanonical, "A")
	require.NoError(t, err)
	assert.True(t, v.Present, "auto-flush should have written A before explicit Flush")
}

func TestStore_KeyCount(t *testing.T) {
	s, cleanup := newTestStore(t, 2500, 1000)
	defer cleanup()

	pipe := s.Pipeline()
	pipe.Set(store.StoreEqToCanonical, "A", "1")
	pipe.Set(store.StoreEqToCanonical, "B", "2")
	require.NoError(t, pipe.Flush(context.Background()))

	count, err := s.KeyCount(context.Background(), store.StoreEqToCanonical)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestStore_Keys_StripsPrefix(t *testing.T) {
	s, cleanup := newTestStore(t, 2500, 1000)
	defer cleanup()

	pipe := s.Pipeline()
	pipe.Set(store.StoreEqToCanonical, "MONDO:1", "x")
	require.NoError(t, pipe.Flush(context.Background()))

	keys, err := s.Keys(context.Background(), store.StoreEqToCanonical, "*")
	require.NoError(t, err)
	assert.Equal(t, []string{"MONDO:1"}, keys)
}
