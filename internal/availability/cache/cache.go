package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"salonbook/internal/availability/slots"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "slots"
	genPrefix = "slotgen"
	// genTTL outlives any computation that read a generation before writing.
	genTTL = 24 * time.Hour
)

// ErrGenerationChanged is returned by Set when an invalidation ran after the
// caller read the generation, so the grid it computed may be stale.
var ErrGenerationChanged = errors.New("slot cache generation changed")

// Key identifies one cached evaluation grid.
type Key struct {
	TechnicianID    string
	Date            string
	DurationMinutes int
	Interval        int
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%s:%s:%d:%d", keyPrefix, k.TechnicianID, k.Date, k.DurationMinutes, k.Interval)
}

// Generation is the invalidation counters covering one key, read before the
// inputs of a grid are fetched.
type Generation struct {
	Global     int64
	Technician int64
	Date       int64
}

func genKeys(technicianID, date string) []string {
	return []string{
		genPrefix,
		fmt.Sprintf("%s:%s", genPrefix, technicianID),
		fmt.Sprintf("%s:%s:%s", genPrefix, technicianID, date),
	}
}

// SlotCache stores clock-independent evaluations, i.e. everything except the
// past cutoff, which callers re-apply on every read. Set only stores a grid
// when no invalidation touched its key since Generation was read.
type SlotCache interface {
	Get(ctx context.Context, key Key) ([]slots.Evaluation, bool, error)
	Generation(ctx context.Context, key Key) (Generation, error)
	Set(ctx context.Context, key Key, gen Generation, evals []slots.Evaluation) error
	InvalidateDate(ctx context.Context, technicianID, date string) (int, error)
	InvalidateTechnician(ctx context.Context, technicianID string) (int, error)
	InvalidateAll(ctx context.Context) (int, error)
}

type RedisCache struct {
	rdb redis.UniversalClient
	ttl time.Duration
}

func NewRedisCache(rdb redis.UniversalClient, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key Key) ([]slots.Evaluation, bool, error) {
	raw, err := c.rdb.Get(ctx, key.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}

	var evals []slots.Evaluation
	if err := json.Unmarshal(raw, &evals); err != nil {
		// A corrupt entry is a miss; the next Set overwrites it.
		return nil, false, nil
	}
	return evals, true, nil
}

func (c *RedisCache) Generation(ctx context.Context, key Key) (Generation, error) {
	vals, err := c.rdb.MGet(ctx, genKeys(key.TechnicianID, key.Date)...).Result()
	if err != nil {
		return Generation{}, fmt.Errorf("redis mget generation %s: %w", key, err)
	}

	counters := make([]int64, len(vals))
	for i, v := range vals {
		str, ok := v.(string)
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(str, 10, 64)
		if err != nil {
			return Generation{}, fmt.Errorf("parse generation %q: %w", str, err)
		}
		counters[i] = n
	}
	return Generation{Global: counters[0], Technician: counters[1], Date: counters[2]}, nil
}

// setIfGeneration writes KEYS[1] only while the counters in KEYS[2..4] still
// hold ARGV[3..5].
var setIfGeneration = redis.NewScript(`
for i = 1, 3 do
	local cur = tonumber(redis.call("GET", KEYS[i + 1]) or "0")
	if cur ~= tonumber(ARGV[i + 2]) then
		return 0
	end
end
redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
return 1
`)

func (c *RedisCache) Set(ctx context.Context, key Key, gen Generation, evals []slots.Evaluation) error {
	if evals == nil {
		evals = []slots.Evaluation{}
	}
	raw, err := json.Marshal(evals)
	if err != nil {
		return fmt.Errorf("marshal evaluations: %w", err)
	}

	keys := append([]string{key.String()}, genKeys(key.TechnicianID, key.Date)...)
	stored, err := setIfGeneration.Run(ctx, c.rdb, keys,
		raw, c.ttl.Milliseconds(), gen.Global, gen.Technician, gen.Date,
	).Int()
	if err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	if stored == 0 {
		return ErrGenerationChanged
	}
	return nil
}

func (c *RedisCache) InvalidateDate(ctx context.Context, technicianID, date string) (int, error) {
	if err := c.bump(ctx, genKeys(technicianID, date)[2]); err != nil {
		return 0, err
	}
	return c.deleteMatching(ctx, fmt.Sprintf("%s:%s:%s:*", keyPrefix, escapeGlob(technicianID), escapeGlob(date)))
}

func (c *RedisCache) InvalidateTechnician(ctx context.Context, technicianID string) (int, error) {
	if err := c.bump(ctx, genKeys(technicianID, "")[1]); err != nil {
		return 0, err
	}
	return c.deleteMatching(ctx, fmt.Sprintf("%s:%s:*", keyPrefix, escapeGlob(technicianID)))
}

func (c *RedisCache) InvalidateAll(ctx context.Context) (int, error) {
	if err := c.bump(ctx, genPrefix); err != nil {
		return 0, err
	}
	return c.deleteMatching(ctx, keyPrefix+":*")
}

// bump advances a generation counter before entries are deleted, so a grid
// computed from older inputs is refused by Set.
func (c *RedisCache) bump(ctx context.Context, genKey string) error {
	pipe := c.rdb.TxPipeline()
	pipe.Incr(ctx, genKey)
	pipe.Expire(ctx, genKey, genTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis incr %s: %w", genKey, err)
	}
	return nil
}

func (c *RedisCache) deleteMatching(ctx context.Context, pattern string) (int, error) {
	var (
		cursor  uint64
		deleted int
	)
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return deleted, fmt.Errorf("redis scan %s: %w", pattern, err)
		}
		if len(keys) > 0 {
			n, err := c.rdb.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, fmt.Errorf("redis del: %w", err)
			}
			deleted += int(n)
		}
		if next == 0 {
			return deleted, nil
		}
		cursor = next
	}
}

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

func escapeGlob(s string) string {
	return globEscaper.Replace(s)
}

// Noop is used when the cache is disabled.
type Noop struct{}

func (Noop) Get(context.Context, Key) ([]slots.Evaluation, bool, error) { return nil, false, nil }
func (Noop) Generation(context.Context, Key) (Generation, error) { return Generation{}, nil }
func (Noop) Set(context.Context, Key, Generation, []slots.Evaluation) error { return nil }
func (Noop) InvalidateDate(context.Context, string, string) (int, error) { return 0, nil }
func (Noop) InvalidateTechnician(context.Context, string) (int, error) { return 0, nil }
func (Noop) InvalidateAll(context.Context) (int, error) { return 0, nil }
