package ratelimit

import (
	"context"
	"crypto/tls"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultPollInterval = 50 * time.Millisecond

type RedisConfig struct {
	Addr       string
	Password   string
	DB         int
	TLSEnabled bool
	// Limit requests are allowed per Window for each key.
	Limit     int
	Window    time.Duration
	KeyPrefix string
}

// RedisLimiter is a fixed-window limiter shared by every replica talking to the same Redis.
type RedisLimiter struct {
	rdb    redis.UniversalClient
	limit  int
	window time.Duration
	prefix string
	poll   time.Duration
	now    func() time.Time
}

// NewRedisClient opens a client and pings it so a bad address fails at startup.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.TLSEnabled {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return rdb, nil
}

func NewRedisLimiter(rdb redis.UniversalClient, cfg RedisConfig) *RedisLimiter {
	limit := cfg.Limit
	if limit < 1 {
		limit = 10
	}
	window := cfg.Window
	if window <= 0 {
		window = time.Minute
	}
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "matchbet:ratelimit"
	}

	return &RedisLimiter{
		rdb:    rdb,
		limit:  limit,
		window: window,
		prefix: prefix,
		poll:   defaultPollInterval,
		now:    time.Now,
	}
}

// Allow counts one request against the current window and reports whether it fits the limit.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	windowKey := l.windowKey(key, l.now())

	pipe := l.rdb.TxPipeline()
	incr := pipe.Incr(ctx, windowKey)
	pipe.Expire(ctx, windowKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("redis: rate limit allow %s: %w", key, err)
	}
	return incr.Val() <= int64(l.limit), nil
}

// Wait blocks until Allow succeeds or ctx is done.
func (l *RedisLimiter) Wait(ctx context.Context, key string) error {
	for {
		allowed, err := l.Allow(ctx, key)
		if err != nil {
			return err
		}
		if allowed {
			return nil
		}

		timer := time.NewTimer(l.poll)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("redis: rate limit wait %s: %w", key, ctx.Err())
		case <-timer.C:
		}
	}
}

func (l *RedisLimiter) windowKey(key string, at time.Time) string {
	bucket := at.UnixMilli() / l.window.Milliseconds()
	return l.prefix + ":" + key + ":" + strconv.FormatInt(bucket, 10)
}
