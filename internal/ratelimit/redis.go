package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisLimiter is a sliding-window limiter backed by a sorted set per
// key, so throughput limits hold across multiple orchestrator instances.
type redisLimiter struct {
	client *redis.Client
	cfg    Config
	script *redis.Script
}

var slidingWindowScript = redis.NewScript(`
	local key = KEYS[1]
	local limit = tonumber(ARGV[1])
	local window = tonumber(ARGV[2])
	local now = tonumber(ARGV[3])
	local count = tonumber(ARGV[4])

	redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
	local current = redis.call('ZCARD', key)

	if current + count <= limit then
		for i = 1, count do
			redis.call('ZADD', key, now, now .. ':' .. i .. ':' .. math.random())
		end
		redis.call('EXPIRE', key, window / 1000 + 1)
		return {1, limit - current - count}
	end

	return {0, 0}
`)

func newRedisLimiter(cfg Config) (*redisLimiter, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ratelimit: redis ping: %w", err)
	}

	return &redisLimiter{client: client, cfg: cfg, script: slidingWindowScript}, nil
}

func (l *redisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	return l.AllowN(ctx, key, 1)
}

func (l *redisLimiter) AllowN(ctx context.Context, key string, n int) (bool, error) {
	redisKey := "ratelimit:" + key
	now := time.Now().UnixMilli()
	window := l.cfg.Window.Milliseconds()

	result, err := l.script.Run(ctx, l.client, []string{redisKey}, l.cfg.Requests, window, now, n).Slice()
	if err != nil {
		return false, fmt.Errorf("ratelimit: redis script: %w", err)
	}
	if len(result) == 0 {
		return false, fmt.Errorf("ratelimit: empty redis script result")
	}
	allowed, ok := result[0].(int64)
	if !ok {
		return false, fmt.Errorf("ratelimit: unexpected redis script result type")
	}
	return allowed == 1, nil
}

func (l *redisLimiter) Reset(ctx context.Context, key string) error {
	return l.client.Del(ctx, "ratelimit:"+key).Err()
}

func (l *redisLimiter) GetInfo(ctx context.Context, key string) (LimitInfo, error) {
	redisKey := "ratelimit:" + key
	now := time.Now()
	windowStart := now.Add(-l.cfg.Window).UnixMilli()

	count, err := l.client.ZCount(ctx, redisKey, strconv.FormatInt(windowStart, 10), "+inf").Result()
	if err != nil {
		return LimitInfo{}, err
	}

	remaining := l.cfg.Requests - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return LimitInfo{Limit: l.cfg.Requests, Remaining: remaining, ResetAt: now.Add(l.cfg.Window)}, nil
}

func (l *redisLimiter) Close() error {
	return l.client.Close()
}
