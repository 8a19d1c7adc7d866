package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Client struct {
	rdb        *redis.Client
	KeyBuilder *KeyBuilder
	log        *zap.Logger
}

// Key format constants
const (
	KeySessionToken   = "session:token"
	KeySessionUser    = "session:user"
	KeySubscriptions  = "subscriptions:%s"  // subscriptions:{userKey}
	KeyRecentSearches = "search:recent:%s" // search:recent:{userKey}
)

// maxUpdateAttempts bounds the optimistic WATCH/EXEC loop in Update
const maxUpdateAttempts = 8

// ErrUpdateContention is returned when Update lost the race maxUpdateAttempts times
var ErrUpdateContention = errors.New("redis: too much contention on key")

// Nil is returned by Get for a missing key
var Nil = redis.Nil

// NewClient creates a new Redis client and checks the connection
func NewClient(redisURL string, environment string, log *zap.Logger) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	// A single local client needs few connections
	opts.PoolSize = 10
	opts.MinIdleConns = 1
	opts.MaxRetries = 3
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if log == nil {
		log = zap.NewNop()
	}

	return &Client{rdb: rdb, KeyBuilder: NewKeyBuilder(environment), log: log}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	if c.rdb != nil {
		return c.rdb.Close()
	}
	return nil
}

// Get retrieves a value. A missing key returns Nil.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	start := time.Now()
	val, err := c.rdb.Get(ctx, key).Result()
	c.observe("redis_get", key, time.Since(start), ignoreNil(err))
	return val, err
}

// Set stores a value without expiry when ttl is zero
func (c *Client) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	start := time.Now()
	err := c.rdb.Set(ctx, key, value, ttl).Err()
	c.observe("redis_set", key, time.Since(start), err)
	return err
}

// Delete removes keys
func (c *Client) Delete(ctx context.Context, keys ...string) error {
	start := time.Now()
	err := c.rdb.Del(ctx, keys...).Err()
	c.log.Debug("redis_del",
		zap.Int("keys", len(keys)),
		zap.Duration("duration", time.Since(start)),
		zap.Error(err))
	return err
}

// SAdd adds members to a set
func (c *Client) SAdd(ctx context.Context, key string, members ...string) error {
	start := time.Now()
	err := c.rdb.SAdd(ctx, key, toArgs(members)...).Err()
	c.observe("redis_sadd", key, time.Since(start), err)
	return err
}

// SRem removes members from a set
func (c *Client) SRem(ctx context.Context, key string, members ...string) error {
	start := time.Now()
	err := c.rdb.SRem(ctx, key, toArgs(members)...).Err()
	c.observe("redis_srem", key, time.Since(start), err)
	return err
}

// SMembers returns every member of a set, empty for a missing key
func (c *Client) SMembers(ctx context.Context, key string) ([]string, error) {
	start := time.Now()
	members, err := c.rdb.SMembers(ctx, key).Result()
	c.observe("redis_smembers", key, time.Since(start), err)
	return members, err
}

// Update performs an atomic read-modify-write of a single string key.
// fn receives the current value (exists=false for a missing key) and returns
// the value to store. The transaction is retried when another writer touches
// the key between the read and the write.
func (c *Client) Update(ctx context.Context, key string, fn func(current string, exists bool) (string, error)) error {
	start := time.Now()

	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Result()
		exists := true
		if errors.Is(err, redis.Nil) {
			current, exists = "", false
		} else if err != nil {
			return err
		}

		next, err := fn(current, exists)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, 0)
			return nil
		})
		return err
	}

	var err error
	for attempt := 1; attempt <= maxUpdateAttempts; attempt++ {
		err = c.rdb.Watch(ctx, txf, key)
		if !errors.Is(err, redis.TxFailedErr) {
			break
		}
		c.log.Debug("redis_update_retry",
			zap.String("key_prefix", prefixForLog(key)),
			zap.Int("attempt", attempt))
	}
	if errors.Is(err, redis.TxFailedErr) {
		err = ErrUpdateContention
	}

	c.observe("redis_update", key, time.Since(start), err)
	return err
}

// Health checks the Redis connection
func (c *Client) Health(ctx context.Context) error {
	start := time.Now()
	err := c.rdb.Ping(ctx).Err()
	dur := time.Since(start)
	if err != nil {
		c.log.Info("redis_ping",
			zap.Duration("duration", dur),
			zap.Error(err))
	} else {
		c.log.Debug("redis_ping", zap.Duration("duration", dur))
	}
	return err
}

// observe logs one command: debug on success, info with the error otherwise
func (c *Client) observe(op, key string, dur time.Duration, err error) {
	if err != nil {
		c.log.Info(op,
			zap.String("key_prefix", prefixForLog(key)),
			zap.Duration("duration", dur),
			zap.Error(err))
		return
	}
	c.log.Debug(op,
		zap.String("key_prefix", prefixForLog(key)),
		zap.Duration("duration", dur))
}

func ignoreNil(err error) error {
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

func toArgs(members []string) []interface{} {
	args := make([]interface{}, len(members))
	for i, m := range members {
		args[i] = m
	}
	return args
}

// prefixForLog returns a safe prefix of a key to avoid logging PII
func prefixForLog(key string) string {
	if len(key) <= 24 {
		return key
	}
	return key[:24] + "…"
}
