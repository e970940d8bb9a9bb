package redis

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// submitWindowScript keeps one sorted set of hit timestamps per key.
// A rejected hit is removed again so that a client hammering the endpoint
// does not keep pushing its own window forward.
//
// KEYS[1] limiter key
// ARGV    now_ms, window_ms, limit, member
// returns {allowed, count, retry_ms}
const submitWindowScript = `
local key    = KEYS[1]
local now    = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit  = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, 0, now - window)
redis.call('ZADD', key, 'NX', now, ARGV[4])
local count = redis.call('ZCARD', key)

if count <= limit then
  redis.call('PEXPIRE', key, window)
  return {1, count, 0}
end

redis.call('ZREM', key, ARGV[4])
local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
local retry = window
if oldest[2] then
  retry = window - (now - tonumber(oldest[2]))
end
if retry < 1 then retry = 1 end
return {0, count - 1, retry}
`

// SlidingWindowLimiter allows at most limit hits per window for each id
// within one scope, e.g. booking submissions per user.
type SlidingWindowLimiter struct {
	rdb    *redis.Client
	scope  string
	limit  int
	window time.Duration
	script *redis.Script
	now    func() time.Time
	member func() string
}

func NewSlidingWindowLimiter(rdb *redis.Client, scope string, limit int, window time.Duration) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		rdb:    rdb,
		scope:  scope,
		limit:  limit,
		window: window,
		script: redis.NewScript(submitWindowScript),
		now:    time.Now,
		member: hitID,
	}
}

// Allow records a hit for id. When the hit is rejected, current is the
// number of hits already inside the window and retryAfter is the time
// until the oldest of them leaves it.
func (l *SlidingWindowLimiter) Allow(ctx context.Context, id string) (allowed bool, current int64, retryAfter time.Duration, err error) {
	const op = "redis.SlidingWindowLimiter.Allow"

	vals, err := l.script.Run(ctx, l.rdb,
		[]string{KeyRateLimit(l.scope, id)},
		l.now().UnixMilli(), l.window.Milliseconds(), l.limit, l.member(),
	).Int64Slice()
	if err != nil {
		return false, 0, 0, fmt.Errorf("%s: %w", op, err)
	}
	if len(vals) != 3 {
		return false, 0, 0, fmt.Errorf("%s: unexpected script reply %v", op, vals)
	}

	return vals[0] == 1, vals[1], time.Duration(vals[2]) * time.Millisecond, nil
}

func hitID() string {
	b := make([]byte, 12)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
