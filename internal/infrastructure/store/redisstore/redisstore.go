// Package redisstore implements store.MultiStore over a go-redis/v9
// UniversalClient, giving each logical store (spec.md §4.A) its own Redis
// key prefix within a shared keyspace.
package redisstore

import (
	"context"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	redisclient "github.com/nodenorm/node-normalizer/internal/infrastructure/database/redis"
	"github.com/nodenorm/node-normalizer/internal/infrastructure/monitoring/logging"
	"github.com/nodenorm/node-normalizer/internal/infrastructure/store"
	"github.com/nodenorm/node-normalizer/pkg/errors"
)

// DefaultEQBatchSize mirrors config.DefaultEQBatchSize; kept independent so
// this package has no import-cycle dependency on internal/config.
const DefaultEQBatchSize = 2500

// DefaultPipelineBlockSize is the number of buffered write ops after which
// a WritePipeline auto-flushes (spec.md §4.A ingestion contract).
const DefaultPipelineBlockSize = 1000

// Store is the Redis-backed MultiStore implementation.
type Store struct {
	client            *redisclient.Client
	prefixes          map[store.StoreName]string
	eqBatchSize       int
	pipelineBlockSize int
	logger            logging.Logger
}

// New builds a Store. prefixes maps each logical StoreName to its Redis key
// prefix (spec.md §6 store-config file); a store with no entry (every store,
// when prefixes is nil) uses its StoreName as prefix. eqBatchSize and
// pipelineBlockSize fall back to their package defaults when non-positive.
func New(client *redisclient.Client, prefixes map[store.StoreName]string, eqBatchSize, pipelineBlockSize int, log logging.Logger) *Store {
	if eqBatchSize <= 0 {
		eqBatchSize = DefaultEQBatchSize
	}
	if pipelineBlockSize <= 0 {
		pipelineBlockSize = DefaultPipelineBlockSize
	}
	resolved := make(map[store.StoreName]string, 7)
	for _, name := range []store.StoreName{
		store.StoreEqToCanonical, store.StoreCanonicalMembers, store.StoreCanonicalCategory,
		store.StoreCanonicalIC, store.StoreCategoryPrefixes,
		store.StoreConflationGeneProtein, store.StoreConflationDrugChemical,
	} {
		resolved[name] = string(name)
	}
	for name, p := range prefixes {
		resolved[name] = p
	}
	return &Store{
		client:            client,
		prefixes:          resolved,
		eqBatchSize:       eqBatchSize,
		pipelineBlockSize: pipelineBlockSize,
		logger:            log,
	}
}

func (s *Store) prefixed(name store.StoreName, key string) string {
	return s.prefixes[name] + ":" + key
}

// MultiGet splits keys into chunks of at most eqBatchSize and issues one
// MGET per chunk, concatenating results positionally (spec.md §4.A, §5).
func (s *Store) MultiGet(ctx context.Context, name store.StoreName, keys []string) ([]store.Value, error) {
	out := make([]store.Value, 0, len(keys))
	rdb := s.client.Underlying()

	for start := 0; start < len(keys); start += s.eqBatchSize {
		end := start + s.eqBatchSize
		if end > len(keys) {
			end = len(keys)
		}
		chunk := keys[start:end]
		prefixedKeys := make([]string, len(chunk))
		for i, k := range chunk {
			prefixedKeys[i] = s.prefixed(name, k)
		}

		results, err := rdb.MGet(ctx, prefixedKeys...).Result()
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeStoreUnavailable, "redis MGET failed").
				WithDetail("store=" + string(name))
		}
		for _, r := range results {
			if r == nil {
				out = append(out, store.Value{Present: false})
				continue
			}
			str, ok := r.(string)
			if !ok {
				out = append(out, store.Value{Present: false})
				continue
			}
			out = append(out, store.Value{Raw: str, Present: true})
		}
	}
	return out, nil
}

// Get fetches a single key.
func (s *Store) Get(ctx context.Context, name store.StoreName, key string) (store.Value, error) {
	val, err := s.client.Underlying().Get(ctx, s.prefixed(name, key)).Result()
	if err == goredis.Nil {
		return store.Value{}, nil
	}
	if err != nil {
		return store.Value{}, errors.Wrap(err, errors.CodeStoreUnavailable, "redis GET failed").
			WithDetail("store=" + string(name))
	}
	return store.Value{Raw: val, Present: true}, nil
}

// LRange fetches a list slice with Redis LRANGE index semantics.
func (s *Store) LRange(ctx context.Context, name store.StoreName, key string, start, stop int64) ([]string, error) {
	vals, err := s.client.Underlying().LRange(ctx, s.prefixed(name, key), start, stop).Result()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStoreUnavailable, "redis LRANGE failed").
			WithDetail("store=" + string(name))
	}
	return vals, nil
}

// Keys lists keys in the given logical store matching pattern, with the
// store's key prefix stripped from each result.
func (s *Store) Keys(ctx context.Context, name store.StoreName, pattern string) ([]string, error) {
	prefix := s.prefixes[name] + ":"
	vals, err := s.client.Underlying().Keys(ctx, prefix+pattern).Result()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStoreUnavailable, "redis KEYS failed").
			WithDetail("store=" + string(name))
	}
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = strings.TrimPrefix(v, prefix)
	}
	return out, nil
}

// KeyCount reports the number of keys in the given logical store, for the
// /status endpoint's per-store key counts (spec.md §6).
func (s *Store) KeyCount(ctx context.Context, name store.StoreName) (int64, error) {
	keys, err := s.Keys(ctx, name, "*")
	if err != nil {
		return 0, err
	}
	return int64(len(keys)), nil
}

// Pipeline returns a new buffered write pipeline.
func (s *Store) Pipeline() store.WritePipeline {
	return &writePipeline{store: s}
}
