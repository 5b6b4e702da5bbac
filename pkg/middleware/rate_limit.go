package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	apperrors "salonbook/pkg/errors"
	"salonbook/pkg/logger"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ClientKeyExtractor names the caller a request is counted against.
type ClientKeyExtractor func(r *http.Request) string

type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Stop()
}

// InMemoryRateLimiter is a sliding window limiter for single-replica setups.
type InMemoryRateLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	limit    int
	window   time.Duration
	stopCh   chan struct{}
	once     sync.Once
}

func NewInMemoryRateLimiter(limit int, window time.Duration) *InMemoryRateLimiter {
	limiter := &InMemoryRateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		stopCh:   make(chan struct{}),
	}

	go limiter.cleanup()

	return limiter
}

func (rl *InMemoryRateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			for key, timestamps := range rl.requests {
				if len(timestamps) == 0 || time.Since(timestamps[len(timestamps)-1]) > rl.window {
					delete(rl.requests, key)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *InMemoryRateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stopCh) })
}

func (rl *InMemoryRateLimiter) Allow(_ context.Context, key string) (bool, error) {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	valid := rl.requests[key][:0]
	for _, ts := range rl.requests[key] {
		if now.Sub(ts) < rl.window {
			valid = append(valid, ts)
		}
	}
	if len(valid) >= rl.limit {
		rl.requests[key] = valid
		return false, nil
	}
	rl.requests[key] = append(valid, now)
	return true, nil
}

// RedisRateLimiter is a fixed window counter shared by every replica.
type RedisRateLimiter struct {
	rdb    redis.UniversalClient
	limit  int
	window time.Duration
}

func NewRedisRateLimiter(rdb redis.UniversalClient, limit int, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{rdb: rdb, limit: limit, window: window}
}

func (rl *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	bucket := time.Now().UnixNano() / int64(rl.window)
	redisKey := fmt.Sprintf("ratelimit:%s:%d", key, bucket)

	pipe := rl.rdb.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, rl.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return true, fmt.Errorf("redis rate limit: %w", err)
	}
	return incr.Val() <= int64(rl.limit), nil
}

func (rl *RedisRateLimiter) Stop() {}

// RateLimit rejects callers over their budget with 429. Limiter errors let
// the request through.
func RateLimit(limiter RateLimiter, extractor ClientKeyExtractor, log *logger.Logger) func(http.Handler) http.Handler {
	if extractor == nil {
		extractor = SessionOrIPExtractor
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := extractor(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			allowed, err := limiter.Allow(r.Context(), key)
			if err != nil {
				log.Warn("Rate limiter unavailable, allowing request", "request_id", RequestIDFrom(r.Context()), "error", err)
			}
			if !allowed {
				log.Warn("Rate limit exceeded",
					"request_id", RequestIDFrom(r.Context()),
					"client", key,
					"path", r.URL.Path,
				)
				_ = apperrors.WriteError(w, apperrors.RateLimited("Rate limit exceeded"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// SessionOrIPExtractor counts booking sessions individually and everything
// else by remote address.
func SessionOrIPExtractor(r *http.Request) string {
	if session := r.Header.Get("X-Booking-Session"); session != "" {
		return "session:" + session
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
