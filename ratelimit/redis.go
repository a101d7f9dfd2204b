package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// slidingWindow trims the sorted set to the window, then admits the hit if there is room.
// Returns {allowed, count, retry_after_ms}.
var slidingWindow = redis.NewScript(`
	local key = KEYS[1]
	local now_ms = tonumber(ARGV[1])
	local window_ms = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local member = ARGV[4]

	redis.call('ZREMRANGEBYSCORE', key, '-inf', now_ms - window_ms)
	local count = redis.call('ZCARD', key)

	if count >= limit then
		local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
		local retry = 0
		if oldest[2] ~= nil then
			retry = tonumber(oldest[2]) + window_ms - now_ms
			if retry < 0 then retry = 0 end
		end
		return { 0, count, retry }
	end

	redis.call('ZADD', key, now_ms, member)
	redis.call('PEXPIRE', key, window_ms)
	return { 1, count + 1, 0 }
`)

// RedisLimiter shares the window across instances.
type RedisLimiter struct {
	rdb redis.Scripter
	cfg Config
	now func() time.Time
}

func NewRedisLimiter(rdb redis.Scripter, cfg Config) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, cfg: cfg.normalized(), now: time.Now}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	now := l.now()
	vals, err := slidingWindow.Run(ctx, l.rdb, []string{l.cfg.Prefix + ":" + key},
		now.UnixMilli(),
		l.cfg.Window.Milliseconds(),
		l.cfg.Limit,
		strconv.FormatInt(now.UnixNano(), 10)+"-"+uuid.NewString(),
	).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit script: %w", err)
	}

	arr, ok := vals.([]interface{})
	if !ok || len(arr) != 3 {
		return Decision{}, fmt.Errorf("unexpected rate limit result %#v", vals)
	}
	d := Decision{
		Allowed:    asInt64(arr[0]) == 1,
		Limit:      l.cfg.Limit,
		RetryAfter: time.Duration(asInt64(arr[2])) * time.Millisecond,
	}
	if d.Allowed {
		d.Remaining = l.cfg.Limit - int(asInt64(arr[1]))
	}
	return d, nil
}

func asInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n
		}
	}
	return 0
}
