// Package ratelimit limits request rates per client and endpoint rule, using
// in-memory token buckets or a shared Redis fixed window.
package ratelimit

import (
	"sync"
	"time"
)

// Info contains information about rate limit status.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// Backend counts requests for a key and decides whether one more is allowed.
type Backend interface {
	Take(key string, rule EndpointConfig) Info
}

// Limiter applies the configured rules to incoming requests.
type Limiter struct {
	config  *Config
	backend Backend
	memory  *memoryBackend
}

// Option configures a Limiter
type Option func(*Limiter)

// WithBackend replaces the in-memory token buckets, e.g. with a RedisBackend
// shared by every instance of the API.
func WithBackend(b Backend) Option {
	return func(l *Limiter) {
		if b != nil {
			l.backend = b
		}
	}
}

// NewLimiter creates a new rate limiter with the given configuration.
func NewLimiter(config *Config, opts ...Option) *Limiter {
	if config == nil {
		config = &Config{
			Enabled:         true,
			DefaultLimit:    1000,
			DefaultWindow:   time.Minute,
			CleanupInterval: 5 * time.Minute,
			Whitelist:       make(map[string]bool),
			Blacklist:       make(map[string]bool),
		}
	}

	l := &Limiter{config: config}
	for _, opt := range opts {
		opt(l)
	}
	if l.backend == nil {
		l.memory = newMemoryBackend(config.Enabled, config.CleanupInterval)
		l.backend = l.memory
	}
	return l
}

// Allow checks if a request from the given client is allowed for the specified endpoint.
// Returns true if allowed, false if rate limited, along with rate limit information.
func (l *Limiter) Allow(clientID string, endpoint string, method string) (bool, Info) {
	if !l.config.Enabled || l.config.Whitelist[clientID] {
		return true, Info{Allowed: true}
	}
	if l.config.Blacklist[clientID] {
		return false, Info{Allowed: false}
	}

	rule := MatchEndpoint(endpoint, method, l.config.EndpointConfigs)
	ruleKey := "default"
	if rule == nil {
		rule = &EndpointConfig{
			Limit:  l.config.DefaultLimit,
			Window: l.config.DefaultWindow,
			Burst:  l.config.DefaultLimit,
		}
	} else {
		ruleKey = rule.Method + " " + rule.Path
	}

	// Unlimited endpoint (e.g., health check)
	if rule.Limit <= 0 || rule.Window <= 0 {
		return true, Info{Allowed: true}
	}

	info := l.backend.Take(clientID+"|"+ruleKey, *rule)
	return info.Allowed, info
}

// Stop stops the cleanup goroutine of the in-memory backend.
func (l *Limiter) Stop() {
	if l.memory != nil {
		l.memory.stop()
	}
}

// tokenBucket allows capacity requests at once and refills at a steady rate.
type tokenBucket struct {
	capacity   int
	refillRate float64 // tokens per second
	tokens     float64
	lastRefill time.Time
	lastAccess time.Time
	mu         sync.Mutex
}

func newTokenBucket(capacity int, refillRate float64) *tokenBucket {
	now := time.Now()
	return &tokenBucket{
		capacity:   capacity,
		refillRate: refillRate,
		tokens:     float64(capacity),
		lastRefill: now,
		lastAccess: now,
	}
}

// refill adds the tokens earned since the last refill. Caller holds mu.
func (tb *tokenBucket) refill(now time.Time) {
	elapsed := now.Sub(tb.lastRefill).Seconds()
	tb.tokens = min(float64(tb.capacity), tb.tokens+elapsed*tb.refillRate)
	tb.lastRefill = now
}

// take consumes one token if available and reports the bucket state.
func (tb *tokenBucket) take() (allowed bool, remaining int, resetTime time.Time) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	tb.refill(now)
	tb.lastAccess = now
	if tb.tokens >= 1.0 {
		tb.tokens -= 1.0
		allowed = true
	}

	remaining = int(tb.tokens)
	resetTime = now
	if tb.tokens < float64(tb.capacity) {
		secondsUntilFull := (float64(tb.capacity) - tb.tokens) / tb.refillRate
		resetTime = now.Add(time.Duration(secondsUntilFull * float64(time.Second)))
	}
	return allowed, remaining, resetTime
}

func (tb *tokenBucket) idleSince() time.Time {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.lastAccess
}

// memoryBackend keeps one token bucket per key in process memory.
type memoryBackend struct {
	mu          sync.Mutex
	buckets     map[string]*tokenBucket
	ticker      *time.Ticker
	stopCh      chan struct{}
	stopOnce    sync.Once
	idleTimeout time.Duration
}

func newMemoryBackend(enabled bool, cleanupInterval time.Duration) *memoryBackend {
	m := &memoryBackend{
		buckets:     make(map[string]*tokenBucket),
		idleTimeout: time.Hour,
	}
	if enabled && cleanupInterval > 0 {
		m.ticker = time.NewTicker(cleanupInterval)
		m.stopCh = make(chan struct{})
		go m.cleanupLoop()
	}
	return m
}

// Take implements Backend
func (m *memoryBackend) Take(key string, rule EndpointConfig) Info {
	bucket := m.bucket(key, rule)
	allowed, remaining, resetTime := bucket.take()

	var retryAfter time.Duration
	if !allowed {
		// one token is earned after 1/refillRate seconds
		retryAfter = time.Duration(float64(time.Second) / bucket.refillRate)
	}
	return Info{
		Allowed:    allowed,
		Limit:      rule.Limit,
		Remaining:  remaining,
		ResetTime:  resetTime,
		RetryAfter: retryAfter,
	}
}

func (m *memoryBackend) bucket(key string, rule EndpointConfig) *tokenBucket {
	m.mu.Lock()
	defer m.mu.Unlock()

	if b, ok := m.buckets[key]; ok {
		return b
	}
	capacity := rule.Burst
	if capacity <= 0 {
		capacity = rule.Limit
	}
	b := newTokenBucket(capacity, float64(rule.Limit)/rule.Window.Seconds())
	m.buckets[key] = b
	return b
}

func (m *memoryBackend) cleanupLoop() {
	for {
		select {
		case <-m.ticker.C:
			m.evictIdle(time.Now().Add(-m.idleTimeout))
		case <-m.stopCh:
			return
		}
	}
}

// evictIdle drops buckets not used since cutoff
func (m *memoryBackend) evictIdle(cutoff time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, b := range m.buckets {
		if b.idleSince().Before(cutoff) {
			delete(m.buckets, key)
		}
	}
}

func (m *memoryBackend) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.buckets)
}

func (m *memoryBackend) stop() {
	m.stopOnce.Do(func() {
		if m.ticker != nil {
			m.ticker.Stop()
		}
		if m.stopCh != nil {
			close(m.stopCh)
		}
	})
}
