package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestTokenBucket_Take(t *testing.T) {
	bucket := newTokenBucket(10, 1.0) // 10 tokens, 1 token per second

	// Should allow 10 requests immediately (burst)
	for i := 0; i < 10; i++ {
		if allowed, _, _ := bucket.take(); !allowed {
			t.Errorf("Expected request %d to be allowed", i+1)
		}
	}

	// 11th request should be denied (no tokens left)
	allowed, remaining, resetTime := bucket.take()
	if allowed {
		t.Error("Expected 11th request to be denied")
	}
	if remaining != 0 {
		t.Errorf("Expected 0 remaining tokens, got %d", remaining)
	}
	if !resetTime.After(time.Now()) {
		t.Error("Reset time should be in the future")
	}
}

func TestTokenBucket_Refill(t *testing.T) {
	bucket := newTokenBucket(10, 1.0)

	for i := 0; i < 10; i++ {
		bucket.take()
	}

	// Wait for 1 token to refill
	time.Sleep(1100 * time.Millisecond)

	if allowed, _, _ := bucket.take(); !allowed {
		t.Error("Expected request to be allowed after refill")
	}
	if allowed, _, _ := bucket.take(); allowed {
		t.Error("Expected request to be denied after consuming refilled token")
	}
}

func TestLimiter_Allow(t *testing.T) {
	config := &Config{
		Enabled:       true,
		DefaultLimit:  10,
		DefaultWindow: time.Minute,
	}
	limiter := NewLimiter(config)
	defer limiter.Stop()

	clientID := "127.0.0.1"
	endpoint := "/test"
	method := "GET"

	// Should allow requests up to limit
	for i := 0; i < 10; i++ {
		allowed, rateInfo := limiter.Allow(clientID, endpoint, method)
		if !allowed {
			t.Errorf("Expected request %d to be allowed", i+1)
		}
		if rateInfo.Limit != 10 {
			t.Errorf("Expected limit 10, got %d", rateInfo.Limit)
		}
		if rateInfo.Remaining != 9-i {
			t.Errorf("Expected remaining %d, got %d", 9-i, rateInfo.Remaining)
		}
	}

	// 11th request should be denied
	allowed, rateInfo := limiter.Allow(clientID, endpoint, method)
	if allowed {
		t.Error("Expected 11th request to be denied")
	}
	if rateInfo.Remaining != 0 {
		t.Errorf("Expected remaining 0, got %d", rateInfo.Remaining)
	}
	if rateInfo.RetryAfter <= 0 {
		t.Error("Expected retry after to be positive")
	}
}

func TestLimiter_Whitelist(t *testing.T) {
	config := &Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
		Whitelist:     map[string]bool{"127.0.0.1": true},
	}
	limiter := NewLimiter(config)
	defer limiter.Stop()

	// Whitelisted IP should always be allowed
	for i := 0; i < 100; i++ {
		allowed, rateInfo := limiter.Allow("127.0.0.1", "/test", "GET")
		if !allowed {
			t.Errorf("Expected whitelisted request %d to be allowed", i+1)
		}
		if rateInfo.Limit != 0 {
			t.Errorf("Expected limit 0 for whitelisted, got %d", rateInfo.Limit)
		}
	}
}

func TestLimiter_Blacklist(t *testing.T) {
	config := &Config{
		Enabled:       true,
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
		Blacklist:     map[string]bool{"192.168.1.1": true},
	}
	limiter := NewLimiter(config)
	defer limiter.Stop()

	// Blacklisted IP should always be denied
	allowed, _ := limiter.Allow("192.168.1.1", "/test", "GET")
	if allowed {
		t.Error("Expected blacklisted request to be denied")
	}
}

func TestLimiter_Disabled(t *testing.T) {
	config := &Config{
		Enabled: false,
	}
	limiter := NewLimiter(config)
	defer limiter.Stop()

	// When disabled, all requests should be allowed
	for i := 0; i < 100; i++ {
		allowed, rateInfo := limiter.Allow("127.0.0.1", "/test", "GET")
		if !allowed {
			t.Errorf("Expected request %d to be allowed when disabled", i+1)
		}
		if rateInfo.Limit != 0 {
			t.Errorf("Expected limit 0 when disabled, got %d", rateInfo.Limit)
		}
	}
}

func TestLimiter_EndpointSpecific(t *testing.T) {
	config := &Config{
		Enabled:       true,
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
		EndpointConfigs: []EndpointConfig{
			{Path: "/v1/jobs", Method: "POST", Limit: 5, Window: time.Hour, Burst: 5},
		},
	}
	limiter := NewLimiter(config)
	defer limiter.Stop()

	clientID := "127.0.0.1"

	// Test endpoint-specific limit (burst allows 5 immediately)
	for i := 0; i < 5; i++ {
		allowed, rateInfo := limiter.Allow(clientID, "/v1/jobs", "POST")
		if !allowed {
			t.Errorf("Expected request %d to be allowed", i+1)
		}
		if rateInfo.Limit != 5 {
			t.Errorf("Expected limit 5, got %d", rateInfo.Limit)
		}
	}

	// 6th request should be denied (limit reached)
	allowed, rateInfo := limiter.Allow(clientID, "/v1/jobs", "POST")
	if allowed {
		t.Error("Expected 6th request to be denied")
	}
	if rateInfo.Limit != 5 {
		t.Errorf("Expected limit 5, got %d", rateInfo.Limit)
	}

	// Different endpoint should use default limit
	allowed, rateInfo = limiter.Allow(clientID, "/other", "GET")
	if !allowed {
		t.Error("Expected different endpoint to be allowed")
	}
	if rateInfo.Limit != 1000 {
		t.Errorf("Expected default limit 1000, got %d", rateInfo.Limit)
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	config := &Config{
		Enabled:       true,
		DefaultLimit:  100,
		DefaultWindow: time.Minute,
	}
	limiter := NewLimiter(config)
	defer limiter.Stop()

	clientID := "127.0.0.1"
	endpoint := "/test"
	method := "GET"

	var wg sync.WaitGroup
	allowedCount := 0
	var mu sync.Mutex

	// Make 200 concurrent requests (should only allow 100)
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			allowed, _ := limiter.Allow(clientID, endpoint, method)
			if allowed {
				mu.Lock()
				allowedCount++
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	// Should have allowed exactly 100 requests
	if allowedCount != 100 {
		t.Errorf("Expected 100 allowed requests, got %d", allowedCount)
	}
}

func TestLimiter_Cleanup(t *testing.T) {
	config := &Config{
		Enabled:       true,
		DefaultLimit:  10,
		DefaultWindow: time.Minute,
	}
	limiter := NewLimiter(config)
	defer limiter.Stop()

	for i := 0; i < 10; i++ {
		clientID := fmt.Sprintf("127.0.0.%d", i+1)
		if allowed, _ := limiter.Allow(clientID, "/test", "GET"); !allowed {
			t.Errorf("Expected request from %s to be allowed", clientID)
		}
	}
	if got := limiter.memory.size(); got != 10 {
		t.Fatalf("Expected 10 buckets, got %d", got)
	}

	limiter.memory.evictIdle(time.Now().Add(-time.Hour))
	if got := limiter.memory.size(); got != 10 {
		t.Errorf("Expected recently used buckets to survive, got %d", got)
	}

	limiter.memory.evictIdle(time.Now().Add(time.Second))
	if got := limiter.memory.size(); got != 0 {
		t.Errorf("Expected idle buckets to be evicted, got %d", got)
	}
}

func TestLimiter_SharesBucketAcrossPathParameters(t *testing.T) {
	config := &Config{
		Enabled:       true,
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
		EndpointConfigs: []EndpointConfig{
			{Path: "/v1/applications/", Method: "POST", Limit: 2, Window: time.Hour, Burst: 2},
		},
	}
	limiter := NewLimiter(config)
	defer limiter.Stop()

	limiter.Allow("10.0.0.1", "/v1/applications/a/submit", "POST")
	limiter.Allow("10.0.0.1", "/v1/applications/b/submit", "POST")
	if allowed, _ := limiter.Allow("10.0.0.1", "/v1/applications/c/withdraw", "POST"); allowed {
		t.Error("Expected the rule's bucket to be shared across application ids")
	}
	if allowed, _ := limiter.Allow("10.0.0.2", "/v1/applications/a/submit", "POST"); !allowed {
		t.Error("Expected another client to have its own bucket")
	}
}

type countingBackend struct {
	keys []string
}

func (b *countingBackend) Take(key string, rule EndpointConfig) Info {
	b.keys = append(b.keys, key)
	return Info{Allowed: len(b.keys) <= 1, Limit: rule.Limit}
}

func TestLimiter_WithBackend(t *testing.T) {
	backend := &countingBackend{}
	limiter := NewLimiter(&Config{
		Enabled:         true,
		DefaultLimit:    5,
		DefaultWindow:   time.Minute,
		EndpointConfigs: DefaultEndpointConfigs(),
	}, WithBackend(backend))
	defer limiter.Stop()

	if allowed, _ := limiter.Allow("10.0.0.1", "/v1/applications", "POST"); !allowed {
		t.Error("Expected first request to be allowed")
	}
	allowed, info := limiter.Allow("10.0.0.1", "/v1/applications", "POST")
	if allowed {
		t.Error("Expected backend decision to be used")
	}
	if info.Limit != 20 {
		t.Errorf("Expected limit 20, got %d", info.Limit)
	}
	if backend.keys[0] != "10.0.0.1|POST /v1/applications" {
		t.Errorf("Unexpected backend key %q", backend.keys[0])
	}
	if limiter.memory != nil {
		t.Error("Expected no in-memory buckets with a custom backend")
	}

	// health is never counted
	limiter.Allow("10.0.0.1", "/health", "GET")
	if len(backend.keys) != 2 {
		t.Errorf("Expected health check to bypass the backend, got %d calls", len(backend.keys))
	}
}

func TestMatchEndpoint(t *testing.T) {
	configs := DefaultEndpointConfigs()
	tests := []struct {
		path      string
		method    string
		wantPath  string
		wantLimit int
	}{
		{path: "/v1/applications", method: "POST", wantPath: "/v1/applications", wantLimit: 20},
		{path: "/v1/applications/123/submit", method: "POST", wantPath: "/v1/applications/", wantLimit: 120},
		{path: "/v1/applications/123/sections/personal", method: "PUT", wantPath: "/v1/applications/", wantLimit: 300},
		{path: "/v1/admin/applications/status", method: "PATCH", wantPath: "/v1/admin/", wantLimit: 120},
		{path: "/v1/payments/webhook", method: "POST", wantPath: "/v1/payments/webhook", wantLimit: 600},
		{path: "/v1/applications/123", method: "GET"},
		{path: "/health", method: "GET", wantPath: "/health"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			got := MatchEndpoint(tt.path, tt.method, configs)
			if tt.wantPath == "" {
				if got != nil {
					t.Errorf("Expected no match, got %+v", got)
				}
				return
			}
			if got == nil {
				t.Fatal("Expected a match")
			}
			if got.Path != tt.wantPath || got.Limit != tt.wantLimit {
				t.Errorf("Expected %s limit %d, got %s limit %d", tt.wantPath, tt.wantLimit, got.Path, got.Limit)
			}
		})
	}
}

func TestMatchEndpoint_LongestPrefix(t *testing.T) {
	configs := []EndpointConfig{
		{Path: "/v1/", Method: "POST", Limit: 1},
		{Path: "/v1/applications/", Method: "POST", Limit: 2},
	}
	got := MatchEndpoint("/v1/applications/1/submit", "POST", configs)
	if got == nil || got.Limit != 2 {
		t.Errorf("Expected the longest prefix to win, got %+v", got)
	}
}

func TestWindowInfo(t *testing.T) {
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	info := windowInfo(3, 30000, 5, now)
	if !info.Allowed || info.Remaining != 2 || info.RetryAfter != 0 {
		t.Errorf("Unexpected info within limit: %+v", info)
	}
	if !info.ResetTime.Equal(now.Add(30 * time.Second)) {
		t.Errorf("Unexpected reset time %v", info.ResetTime)
	}

	info = windowInfo(6, 1500, 5, now)
	if info.Allowed || info.Remaining != 0 || info.RetryAfter != 1500*time.Millisecond {
		t.Errorf("Unexpected info over limit: %+v", info)
	}

	info = windowInfo(1, -1, 5, now)
	if !info.ResetTime.Equal(now) {
		t.Errorf("Expected a missing TTL to reset now, got %v", info.ResetTime)
	}
}

func TestRedisBackend_Nil(t *testing.T) {
	if b := NewRedisBackend(nil, "rl"); b != nil {
		t.Error("Expected nil backend without a client")
	}
	var b *RedisBackend
	if info := b.Take("k", EndpointConfig{Limit: 1, Window: time.Second}); !info.Allowed {
		t.Error("Expected a nil backend to allow")
	}
}

func TestLimiter_Burst(t *testing.T) {
	config := &Config{
		Enabled:       true,
		DefaultLimit:  10,
		DefaultWindow: time.Minute,
		EndpointConfigs: []EndpointConfig{
			{Path: "/burst", Method: "POST", Limit: 10, Window: time.Minute, Burst: 5},
		},
	}
	limiter := NewLimiter(config)
	defer limiter.Stop()

	clientID := "127.0.0.1"

	// Should allow burst of 5 requests immediately
	for i := 0; i < 5; i++ {
		allowed, _ := limiter.Allow(clientID, "/burst", "POST")
		if !allowed {
			t.Errorf("Expected burst request %d to be allowed", i+1)
		}
	}

	// 6th request should be denied (burst exhausted, no refill yet)
	allowed, _ := limiter.Allow(clientID, "/burst", "POST")
	if allowed {
		t.Error("Expected request after burst to be denied")
	}
}

func TestNewLimiter_NilConfig(t *testing.T) {
	limiter := NewLimiter(nil)
	defer limiter.Stop()

	if limiter == nil {
		t.Error("Expected limiter to be created with nil config")
	}

	// Should use defaults
	allowed, rateInfo := limiter.Allow("127.0.0.1", "/test", "GET")
	if !allowed {
		t.Error("Expected request to be allowed with default config")
	}
	if rateInfo.Limit != 1000 {
		t.Errorf("Expected default limit 1000, got %d", rateInfo.Limit)
	}
}
