package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const defaultKeyPrefix = "relay:"

func init() {
	Register("redis", newRedisCache)
}

// redisCache shares entries between replicas. Each entry is a plain string key
// {prefix}entry:{key} written with a PX expiry, so Redis drops expired entries
// on its own. A sorted set {prefix}recent scores every key by its last access
// in milliseconds and is trimmed to Size after each write, evicting the least
// recently used entries.
//
// Members of the index can outlive their entry when Redis expires it; they are
// removed when the key is next read or when trimming pops them, so Len may
// briefly over-count.
type redisCache struct {
	client  *redis.Client
	ttl     time.Duration
	size    int
	prefix  string
	index   string
	logger  zerolog.Logger
	evicted func(key string)
	now     func() time.Time
}

func newRedisCache(opts Options) (Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.RedisAddress,
		Password: opts.RedisPassword,
		DB:       opts.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	prefix := opts.KeyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &redisCache{
		client:  client,
		ttl:     opts.TTL,
		size:    opts.Size,
		prefix:  prefix,
		index:   prefix + "recent",
		logger:  opts.Logger,
		evicted: opts.evicted,
		now:     time.Now,
	}, nil
}

func (r *redisCache) entryKey(key string) string {
	return r.prefix + "entry:" + key
}

func (r *redisCache) score() float64 {
	return float64(r.now().UnixMilli())
}

func (r *redisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	value, err := r.client.Get(ctx, r.entryKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		// Expired or never written; forget the index member if any.
		if err := r.client.ZRem(ctx, r.index, key).Err(); err != nil {
			r.logger.Warn().Err(err).Str("key", key).Msg("Redis cache index cleanup failed")
		}
		return nil, false
	}
	if err != nil {
		r.logger.Error().Err(err).Str("key", key).Msg("Redis cache get failed")
		return nil, false
	}

	if err := r.client.ZAddXX(ctx, r.index, redis.Z{Score: r.score(), Member: key}).Err(); err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("Redis cache touch failed")
	}
	return value, true
}

func (r *redisCache) Set(ctx context.Context, key string, value []byte) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.entryKey(key), value, r.ttl)
		pipe.ZAdd(ctx, r.index, redis.Z{Score: r.score(), Member: key})
		return nil
	})
	if err != nil {
		r.logger.Error().Err(err).Str("key", key).Msg("Redis cache set failed")
		return
	}
	r.trim(ctx)
}

// trim evicts the least recently used entries above size. Concurrent trims
// from several replicas may evict a few more entries than strictly needed.
func (r *redisCache) trim(ctx context.Context) {
	if r.size <= 0 {
		return
	}
	count, err := r.client.ZCard(ctx, r.index).Result()
	if err != nil {
		r.logger.Warn().Err(err).Msg("Redis cache size check failed")
		return
	}
	overflow := count - int64(r.size)
	if overflow <= 0 {
		return
	}

	oldest, err := r.client.ZPopMin(ctx, r.index, overflow).Result()
	if err != nil {
		r.logger.Warn().Err(err).Msg("Redis cache eviction failed")
		return
	}
	members := make([]string, 0, len(oldest))
	keys := make([]string, 0, len(oldest))
	for _, z := range oldest {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		members = append(members, member)
		keys = append(keys, r.entryKey(member))
	}
	if len(keys) == 0 {
		return
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		r.logger.Warn().Err(err).Strs("keys", keys).Msg("Redis cache eviction failed")
		return
	}
	if r.evicted != nil {
		for _, member := range members {
			r.evicted(member)
		}
	}
}

func (r *redisCache) Len(ctx context.Context) int {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	n, err := r.client.ZCard(ctx, r.index).Result()
	if err != nil {
		r.logger.Error().Err(err).Msg("Redis cache size check failed")
		return 0
	}
	return int(n)
}

func (r *redisCache) Close() error {
	return r.client.Close()
}
