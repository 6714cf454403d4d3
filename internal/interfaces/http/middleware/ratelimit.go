package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

// RateLimiter decides whether a request identified by key may proceed.
type RateLimiter interface {
	Allow(key string) (bool, RateLimitInfo)
}

// RateLimitInfo is the current state of a key's bucket, reported back to
// the caller so headers and Retry-After can be derived from it.
type RateLimitInfo struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RateLimitConfig controls the RateLimit middleware's behavior: which
// requests are throttled, how a throttling key is derived, and what
// happens when a key runs out of budget.
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
	KeyFunc           func(r *http.Request) string
	SkipPaths         []string
	ExceededHandler   http.Handler
	CleanupInterval   time.Duration
}

// DefaultRateLimitConfig allows 10 sustained requests per second per key,
// bursting to 20, with health endpoints exempt from throttling entirely.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 10,
		BurstSize:         20,
		KeyFunc:           defaultKeyFunc,
		SkipPaths:         []string{"/health", "/healthz", "/readyz"},
		CleanupInterval:   5 * time.Minute,
	}
}

// defaultKeyFunc keys throttling on the requester's apparent IP, preferring
// proxy-forwarded headers over the raw connection address.
func defaultKeyFunc(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

// bucketState is one key's token-bucket snapshot: tokens held as of
// updatedAt, to be projected forward by elapsed time on the next Allow.
type bucketState struct {
	mu        sync.Mutex
	tokens    float64
	updatedAt time.Time
}

// project returns the number of tokens available at now, after applying
// the bucket's fill rate since the last update, capped at capacity.
func (b *bucketState) project(now time.Time, fillRate, capacity float64) float64 {
	elapsed := now.Sub(b.updatedAt).Seconds()
	tokens := b.tokens + elapsed*fillRate
	if tokens > capacity {
		tokens = capacity
	}
	return tokens
}

const tokenBucketShardCount = 16

// tokenBucketShard isolates a slice of the keyspace behind its own lock so
// unrelated keys don't serialize on a single map mutex under load.
type tokenBucketShard struct {
	mu      sync.RWMutex
	buckets map[string]*bucketState
}

func fnv32(s string) uint32 {
	const offset, prime = 2166136261, 16777619
	h := uint32(offset)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= prime
	}
	return h
}

// TokenBucketLimiter is an in-memory RateLimiter using the token bucket
// algorithm, with the keyspace sharded to reduce lock contention and a
// background sweep that evicts buckets idle long enough to be full again.
type TokenBucketLimiter struct {
	fillRate float64
	capacity float64

	shards [tokenBucketShardCount]*tokenBucketShard

	sweepEvery time.Duration
	stopSweep  chan struct{}
	closeOnce  sync.Once
}

// NewTokenBucketLimiter builds a limiter refilling at ratePerSecond tokens
// per second up to burst tokens per key. A positive sweepEvery starts a
// background goroutine that evicts stale, full buckets on that interval.
func NewTokenBucketLimiter(ratePerSecond float64, burst int, sweepEvery time.Duration) *TokenBucketLimiter {
	l := &TokenBucketLimiter{
		fillRate:   ratePerSecond,
		capacity:   float64(burst),
		sweepEvery: sweepEvery,
		stopSweep:  make(chan struct{}),
	}
	for i := range l.shards {
		l.shards[i] = &tokenBucketShard{buckets: make(map[string]*bucketState)}
	}
	if sweepEvery > 0 {
		go l.sweepLoop()
	}
	return l
}

func (l *TokenBucketLimiter) shardFor(key string) *tokenBucketShard {
	return l.shards[fnv32(key)%tokenBucketShardCount]
}

func (l *TokenBucketLimiter) bucketFor(key string, now time.Time) *bucketState {
	shard := l.shardFor(key)

	shard.mu.RLock()
	b, ok := shard.buckets[key]
	shard.mu.RUnlock()
	if ok {
		return b
	}

	shard.mu.Lock()
	defer shard.mu.Unlock()
	if b, ok = shard.buckets[key]; ok {
		return b
	}
	b = &bucketState{tokens: l.capacity, updatedAt: now}
	shard.buckets[key] = b
	return b
}

// Allow reports whether key has a token available, consuming one if so.
func (l *TokenBucketLimiter) Allow(key string) (bool, RateLimitInfo) {
	now := time.Now()
	b := l.bucketFor(key, now)

	b.mu.Lock()
	defer b.mu.Unlock()

	tokens := b.project(now, l.fillRate, l.capacity)
	b.updatedAt = now

	resetAt := now
	if l.fillRate > 0 {
		resetAt = now.Add(time.Duration(float64(time.Second) / l.fillRate))
	}

	if tokens < 1.0 {
		b.tokens = tokens
		return false, RateLimitInfo{Limit: int(l.capacity), Remaining: 0, ResetAt: resetAt}
	}

	tokens -= 1.0
	b.tokens = tokens
	return true, RateLimitInfo{Limit: int(l.capacity), Remaining: int(tokens), ResetAt: resetAt}
}

func (l *TokenBucketLimiter) sweepLoop() {
	ticker := time.NewTicker(l.sweepEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.sweep()
		case <-l.stopSweep:
			return
		}
	}
}

// sweep drops buckets that have been idle (untouched, and therefore full
// or nearly so) for at least sweepEvery, bounding memory growth from
// one-off keys that never return.
func (l *TokenBucketLimiter) sweep() {
	now := time.Now()
	cutoff := now.Add(-l.sweepEvery)

	for _, shard := range l.shards {
		shard.mu.Lock()
		for key, b := range shard.buckets {
			b.mu.Lock()
			stale := b.updatedAt.Before(cutoff) && b.project(now, l.fillRate, l.capacity) >= l.capacity-1
			b.mu.Unlock()
			if stale {
				delete(shard.buckets, key)
			}
		}
		shard.mu.Unlock()
	}
}

// Stop ends the background sweep goroutine, if one was started.
func (l *TokenBucketLimiter) Stop() {
	l.closeOnce.Do(func() { close(l.stopSweep) })
}

// BucketCount returns how many keys currently hold a bucket, across all
// shards.
func (l *TokenBucketLimiter) BucketCount() int {
	total := 0
	for _, shard := range l.shards {
		shard.mu.RLock()
		total += len(shard.buckets)
		shard.mu.RUnlock()
	}
	return total
}

// RateLimit returns middleware enforcing limiter against every request not
// matching config.SkipPaths, attaching X-RateLimit-* headers to every
// response and answering 429 with Retry-After once a key is exhausted.
func RateLimit(limiter RateLimiter, config RateLimitConfig) func(http.Handler) http.Handler {
	skip := make(map[string]struct{}, len(config.SkipPaths))
	for _, p := range config.SkipPaths {
		skip[p] = struct{}{}
	}

	keyFunc := config.KeyFunc
	if keyFunc == nil {
		keyFunc = defaultKeyFunc
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, exempt := skip[r.URL.Path]; exempt {
				next.ServeHTTP(w, r)
				return
			}

			allowed, info := limiter.Allow(keyFunc(r))

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetAt.Unix(), 10))

			if allowed {
				next.ServeHTTP(w, r)
				return
			}

			retryAfter := int(time.Until(info.ResetAt).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			h.Set("Retry-After", strconv.Itoa(retryAfter))

			if config.ExceededHandler != nil {
				config.ExceededHandler.ServeHTTP(w, r)
				return
			}

			h.Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"code":"RATE_LIMITED","message":"rate limit exceeded, please retry later"}}`))
		})
	}
}
