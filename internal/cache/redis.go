// Package cache keeps rendered posts in Redis so the public feed and post pages can be
// served without a Mongo round trip. Cache failures are logged and otherwise ignored.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"devconnector/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	listKey    = "posts:all"
	postPrefix = "post:"
	genSuffix  = ":gen"

	// stampTTL bounds how long a generation counter outlives its last write.
	stampTTL = 24 * time.Hour
)

// Stamp is the generation of a cache key, read before the store is queried. A fill
// carrying an older stamp than the key's current one is dropped, so a read that raced
// a write never caches the pre-write document.
type Stamp int64

// fillScript sets KEYS[2] only while KEYS[1] still holds the caller's generation.
var fillScript = redis.NewScript(`
local cur = redis.call("GET", KEYS[1])
if not cur then cur = "0" end
if cur ~= ARGV[1] then return 0 end
redis.call("SET", KEYS[2], ARGV[2], "PX", ARGV[3])
return 1
`)

type RedisPostCache struct {
	Client *redis.Client
	TTL    time.Duration
	Logger *slog.Logger
}

func NewRedisPostCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisPostCache {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisPostCache{Client: client, TTL: ttl, Logger: logger}
}

// Connect dials addr and pings it once.
func Connect(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func PostKey(id string) string { return postPrefix + id }

func genKey(key string) string { return key + genSuffix }

func (c *RedisPostCache) GetPost(ctx context.Context, id string) (*models.Post, bool) {
	var p models.Post
	if !c.get(ctx, PostKey(id), &p) {
		return nil, false
	}
	p.Normalize()
	return &p, true
}

func (c *RedisPostCache) PostStamp(ctx context.Context, id string) (Stamp, bool) {
	return c.stamp(ctx, PostKey(id))
}

func (c *RedisPostCache) SetPost(ctx context.Context, p *models.Post, stamp Stamp) {
	c.fill(ctx, PostKey(p.ID.Hex()), p, stamp)
}

func (c *RedisPostCache) GetList(ctx context.Context) ([]models.Post, bool) {
	var posts []models.Post
	if !c.get(ctx, listKey, &posts) {
		return nil, false
	}
	for i := range posts {
		posts[i].Normalize()
	}
	return posts, true
}

func (c *RedisPostCache) ListStamp(ctx context.Context) (Stamp, bool) {
	return c.stamp(ctx, listKey)
}

func (c *RedisPostCache) SetList(ctx context.Context, posts []models.Post, stamp Stamp) {
	c.fill(ctx, listKey, posts, stamp)
}

// Invalidate advances the generation of the post and the feed, then drops both entries.
// It must run after the store write it follows.
func (c *RedisPostCache) Invalidate(ctx context.Context, id string) {
	key := PostKey(id)
	_, err := c.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, k := range []string{key, listKey} {
			pipe.Incr(ctx, genKey(k))
			pipe.Expire(ctx, genKey(k), stampTTL)
		}
		pipe.Del(ctx, key, listKey)
		return nil
	})
	if err != nil {
		c.Logger.Warn("cache invalidate failed", "post_id", id, "error", err)
	}
}

// stamp reports false when the generation cannot be read; callers then skip the fill.
func (c *RedisPostCache) stamp(ctx context.Context, key string) (Stamp, bool) {
	n, err := c.Client.Get(ctx, genKey(key)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, true
		}
		c.Logger.Warn("cache stamp failed", "key", key, "error", err)
		return 0, false
	}
	return Stamp(n), true
}

func (c *RedisPostCache) get(ctx context.Context, key string, dst any) bool {
	raw, err := c.Client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.Logger.Warn("cache get failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		c.Logger.Warn("cache entry corrupt", "key", key, "error", err)
		return false
	}
	return true
}

func (c *RedisPostCache) fill(ctx context.Context, key string, v any, stamp Stamp) {
	raw, err := json.Marshal(v)
	if err != nil {
		c.Logger.Warn("cache encode failed", "key", key, "error", err)
		return
	}
	keys := []string{genKey(key), key}
	stored, err := fillScript.Run(ctx, c.Client, keys, strconv.FormatInt(int64(stamp), 10), raw, c.TTL.Milliseconds()).Int()
	if err != nil {
		c.Logger.Warn("cache set failed", "key", key, "error", err)
		return
	}
	if stored == 0 {
		c.Logger.Debug("cache fill skipped, entry changed", "key", key)
	}
}

// Nop is used when no Redis address is configured.
type Nop struct{}

func (Nop) GetPost(context.Context, string) (*models.Post, bool) { return nil, false }
func (Nop) PostStamp(context.Context, string) (Stamp, bool)      { return 0, false }
func (Nop) SetPost(context.Context, *models.Post, Stamp)         {}
func (Nop) GetList(context.Context) ([]models.Post, bool)        { return nil, false }
func (Nop) ListStamp(context.Context) (Stamp, bool)              { return 0, false }
func (Nop) SetList(context.Context, []models.Post, Stamp)        {}
func (Nop) Invalidate(context.Context, string)                   {}
