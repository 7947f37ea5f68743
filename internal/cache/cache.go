// Package cache keeps computed sales reports in redis between sales.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	keyPrefix     = "pos:report:"
	generationKey = keyPrefix + "generation"
	entryPrefix   = keyPrefix + "gen:"
)

const (
	KeyProductReport = "products"
	KeyCashierReport = "cashiers"
)

// ReportCache stores JSON snapshots of report results.
//
// Entries belong to a generation. Get returns the generation current at read
// time and Set files the value under it, so a report computed before an
// Invalidate can never be served after it.
type ReportCache interface {
	Get(ctx context.Context, key string, dest interface{}) (hit bool, gen int64)
	Set(ctx context.Context, key string, gen int64, value interface{}) error
	Invalidate(ctx context.Context) error
	Ping(ctx context.Context) error
}

// New connects to redisURL. An empty URL disables caching.
func New(redisURL string, ttl time.Duration) (ReportCache, error) {
	if redisURL == "" {
		return Noop{}, nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		rdb.Close()
		return nil, err
	}
	return NewRedis(rdb, ttl), nil
}

type redisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedis(rdb *redis.Client, ttl time.Duration) ReportCache {
	return &redisCache{rdb: rdb, ttl: ttl}
}

func entryKey(gen int64, key string) string {
	return entryPrefix + strconv.FormatInt(gen, 10) + ":" + key
}

func (c *redisCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.rdb.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// Get reports a hit only when the key exists in the current generation and
// decodes into dest. A negative generation means it could not be read.
func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) (bool, int64) {
	gen, err := c.generation(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("report cache generation read failed")
		return false, -1
	}
	raw, err := c.rdb.Get(ctx, entryKey(gen, key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("key", key).Msg("report cache read failed")
		}
		return false, gen
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("report cache entry corrupt")
		return false, gen
	}
	return true, gen
}

// Set stores value under gen. Values from an older generation are written but
// never read back, and expire with the TTL.
func (c *redisCache) Set(ctx context.Context, key string, gen int64, value interface{}) error {
	if gen < 0 {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, entryKey(gen, key), raw, c.ttl).Err()
}

// Invalidate starts a new generation and drops the cached entries.
func (c *redisCache) Invalidate(ctx context.Context) error {
	if err := c.rdb.Incr(ctx, generationKey).Err(); err != nil {
		return err
	}

	iter := c.rdb.Scan(ctx, 0, entryPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}

func (c *redisCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Noop is used when no redis is configured.
type Noop struct{}

func (Noop) Get(context.Context, string, interface{}) (bool, int64) { return false, 0 }
func (Noop) Set(context.Context, string, int64, interface{}) error  { return nil }
func (Noop) Invalidate(context.Context) error                       { return nil }
func (Noop) Ping(context.Context) error                             { return nil }
