package ratelimit

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const rateLimitScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {current, ttl}
`

// RedisBackend counts requests in fixed windows stored in Redis, so every
// API instance shares the same limits. Redis failures allow the request.
type RedisBackend struct {
	client  *redis.Client
	prefix  string
	timeout time.Duration
	script  *redis.Script
}

// NewRedisBackend returns nil when client is nil
func NewRedisBackend(client *redis.Client, prefix string) *RedisBackend {
	if client == nil {
		return nil
	}
	return &RedisBackend{
		client:  client,
		prefix:  prefix,
		timeout: 250 * time.Millisecond,
		script:  redis.NewScript(rateLimitScript),
	}
}

// Take implements Backend
func (b *RedisBackend) Take(key string, rule EndpointConfig) Info {
	if b == nil || b.client == nil || rule.Limit <= 0 || rule.Window <= 0 {
		return Info{Allowed: true}
	}

	ttl := rule.Window.Milliseconds()
	if ttl <= 0 {
		ttl = 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()
	res, err := b.script.Run(ctx, b.client, []string{b.key(key)}, ttl).Int64Slice()
	if err != nil || len(res) != 2 {
		log.Printf("[rate-limit] redis unavailable, allowing request: %v", err)
		return Info{Allowed: true, Limit: rule.Limit, Remaining: rule.Limit}
	}
	return windowInfo(res[0], res[1], rule.Limit, time.Now())
}

func (b *RedisBackend) key(key string) string {
	if b.prefix == "" {
		return key
	}
	return b.prefix + ":" + key
}

// windowInfo converts a fixed-window counter and its remaining TTL in
// milliseconds into an Info
func windowInfo(count, pttl int64, limit int, now time.Time) Info {
	if pttl < 0 {
		pttl = 0
	}
	resetAfter := time.Duration(pttl) * time.Millisecond
	info := Info{
		Allowed:   count <= int64(limit),
		Limit:     limit,
		Remaining: max(limit-int(count), 0),
		ResetTime: now.Add(resetAfter),
	}
	if !info.Allowed {
		info.RetryAfter = resetAfter
	}
	return info
}
