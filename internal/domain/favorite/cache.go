package favorite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	listCachePrefix      = "favorites:list:"
	listGenerationPrefix = "favorites:gen:"
	listGenerationTTL    = 24 * time.Hour
)

// setIfGenerationScript stores the list only while the generation still
// matches the one the reader started from. A missing generation counts as 0.
var setIfGenerationScript = redis.NewScript(`
	local current = redis.call('GET', KEYS[1])
	if not current then
		current = '0'
	end
	if current ~= ARGV[1] then
		return 0
	end
	redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
	return 1
`)

// invalidateScript bumps the generation and drops the cached list in one step.
var invalidateScript = redis.NewScript(`
	redis.call('INCR', KEYS[1])
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
	redis.call('DEL', KEYS[2])
	return 1
`)

// RedisListCache stores each user's live list as one JSON value next to a
// generation counter.
type RedisListCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisListCache(client *redis.Client, ttl time.Duration) *RedisListCache {
	return &RedisListCache{client: client, ttl: ttl}
}

func listCacheKey(userID int64) string {
	return listCachePrefix + strconv.FormatInt(userID, 10)
}

func listGenerationKey(userID int64) string {
	return listGenerationPrefix + strconv.FormatInt(userID, 10)
}

func (c *RedisListCache) Get(ctx context.Context, userID int64) ([]FavoriteLocation, bool, error) {
	raw, err := c.client.Get(ctx, listCacheKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get: %w", err)
	}

	var out []FavoriteLocation
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, false, fmt.Errorf("cache decode: %w", err)
	}
	return out, true, nil
}

func (c *RedisListCache) Generation(ctx context.Context, userID int64) (int64, error) {
	gen, err := c.client.Get(ctx, listGenerationKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("cache generation: %w", err)
	}
	return gen, nil
}

// Set stores favorites if the user's generation is still generation. It
// reports whether the value was written.
func (c *RedisListCache) Set(ctx context.Context, userID, generation int64, favorites []FavoriteLocation) (bool, error) {
	if favorites == nil {
		favorites = []FavoriteLocation{}
	}
	raw, err := json.Marshal(favorites)
	if err != nil {
		return false, fmt.Errorf("cache encode: %w", err)
	}

	stored, err := setIfGenerationScript.Run(ctx, c.client,
		[]string{listGenerationKey(userID), listCacheKey(userID)},
		strconv.FormatInt(generation, 10), raw, c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("cache set: %w", err)
	}
	return stored == 1, nil
}

func (c *RedisListCache) Invalidate(ctx context.Context, userID int64) error {
	err := invalidateScript.Run(ctx, c.client,
		[]string{listGenerationKey(userID), listCacheKey(userID)},
		listGenerationTTL.Milliseconds(),
	).Err()
	if err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}
