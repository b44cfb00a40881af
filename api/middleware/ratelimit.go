package middleware

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimiter implements a per-IP token bucket rate limiter
type RateLimiter struct {
	config *RateLimitConfig

	buckets   map[string]*Bucket
	bucketsMu sync.RWMutex

	// Cleanup ticker
	cleanupTicker *time.Ticker
	stopCh        chan struct{}
	stopOnce      sync.Once
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	RequestsPerSecond int           // Refill rate per IP
	Burst             int           // Bucket capacity per IP
	BlockDuration     time.Duration // How long to block after the bucket runs dry

	CleanupInterval time.Duration // How often to drop idle buckets
	BucketTTL       time.Duration // Idle time before a bucket is dropped
}

// DefaultRateLimitConfig returns default configuration
func DefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		RequestsPerSecond: 50,
		Burst:             100,
		BlockDuration:     10 * time.Second,
		CleanupInterval:   5 * time.Minute,
		BucketTTL:         time.Hour,
	}
}

// Bucket represents a token bucket for rate limiting
type Bucket struct {
	tokens       float64
	maxTokens    float64
	refillRate   float64 // tokens per second
	lastUpdate   time.Time
	blockedUntil time.Time
	mu           sync.Mutex
}

// RateLimitInfo contains rate limit information
type RateLimitInfo struct {
	Allowed    bool `json:"allowed"`
	Remaining  int  `json:"remaining"`
	Limit      int  `json:"limit"`
	RetryAfter int  `json:"retry_after,omitempty"`
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(config *RateLimitConfig) *RateLimiter {
	if config == nil {
		config = DefaultRateLimitConfig()
	}

	rl := &RateLimiter{
		config:        config,
		buckets:       make(map[string]*Bucket),
		cleanupTicker: time.NewTicker(config.CleanupInterval),
		stopCh:        make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Stop stops the cleanup loop
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.stopCh)
		rl.cleanupTicker.Stop()
	})
}

func (rl *RateLimiter) cleanupLoop() {
	for {
		select {
		case <-rl.cleanupTicker.C:
			rl.cleanup(time.Now())
		case <-rl.stopCh:
			return
		}
	}
}

// cleanup removes buckets idle since before now-TTL
func (rl *RateLimiter) cleanup(now time.Time) {
	threshold := now.Add(-rl.config.BucketTTL)

	rl.bucketsMu.Lock()
	defer rl.bucketsMu.Unlock()
	for key, bucket := range rl.buckets {
		bucket.mu.Lock()
		if bucket.lastUpdate.Before(threshold) {
			delete(rl.buckets, key)
		}
		bucket.mu.Unlock()
	}
}

// getBucket gets or creates a bucket for a key
func (rl *RateLimiter) getBucket(key string) *Bucket {
	rl.bucketsMu.RLock()
	bucket, ok := rl.buckets[key]
	rl.bucketsMu.RUnlock()
	if ok {
		return bucket
	}

	rl.bucketsMu.Lock()
	defer rl.bucketsMu.Unlock()

	// Double-check after acquiring write lock
	if bucket, ok := rl.buckets[key]; ok {
		return bucket
	}
	bucket = &Bucket{
		tokens:     float64(rl.config.Burst),
		maxTokens:  float64(rl.config.Burst),
		refillRate: float64(rl.config.RequestsPerSecond),
		lastUpdate: time.Now(),
	}
	rl.buckets[key] = bucket
	return bucket
}

// AllowIP checks if a request from an IP is allowed
func (rl *RateLimiter) AllowIP(ip string) (bool, *RateLimitInfo) {
	return rl.tryConsume(rl.getBucket(ip), time.Now())
}

// tryConsume takes one token from bucket
func (rl *RateLimiter) tryConsume(bucket *Bucket, now time.Time) (bool, *RateLimitInfo) {
	bucket.mu.Lock()
	defer bucket.mu.Unlock()

	if now.Before(bucket.blockedUntil) {
		return false, &RateLimitInfo{
			Limit:      int(bucket.maxTokens),
			RetryAfter: int(bucket.blockedUntil.Sub(now).Seconds()) + 1,
		}
	}

	// Refill tokens
	if elapsed := now.Sub(bucket.lastUpdate).Seconds(); elapsed > 0 {
		bucket.tokens += elapsed * bucket.refillRate
		if bucket.tokens > bucket.maxTokens {
			bucket.tokens = bucket.maxTokens
		}
		bucket.lastUpdate = now
	}

	if bucket.tokens >= 1 {
		bucket.tokens--
		return true, &RateLimitInfo{
			Allowed:   true,
			Remaining: int(bucket.tokens),
			Limit:     int(bucket.maxTokens),
		}
	}

	// Not enough tokens, block the bucket
	bucket.blockedUntil = now.Add(rl.config.BlockDuration)
	return false, &RateLimitInfo{
		Limit:      int(bucket.maxTokens),
		RetryAfter: int(rl.config.BlockDuration.Seconds()) + 1,
	}
}

// ============ HTTP Middleware ============

// RateLimitMiddleware rejects requests from IPs over their budget
func RateLimitMiddleware(rl *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, info := rl.AllowIP(ClientIP(r))

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
			if !allowed {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", strconv.Itoa(info.RetryAfter))
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]interface{}{
					"error":       "rate_limit_exceeded",
					"message":     "Too many requests, please slow down",
					"retry_after": info.RetryAfter,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP extracts the client IP from the request
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	if i := strings.LastIndex(r.RemoteAddr, ":"); i >= 0 {
		return r.RemoteAddr[:i]
	}
	return r.RemoteAddr
}
