package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/yourorg/crypto-dashboard/internal/config"

	"github.com/gin-gonic/gin"
)

// RateLimiter throttles inbound requests per client IP with a token bucket
// per client. The policy comes from config, injected at construction like
// the resolver's cache policy.
type RateLimiter struct {
	cfg     config.RateLimitConfig
	clients map[string]*TokenBucket
	mu      sync.Mutex
}

// TokenBucket implements a token bucket for rate limiting
type TokenBucket struct {
	tokens       float64
	lastRefill   time.Time
	tokensPerSec float64
	maxTokens    float64
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		cfg:     cfg,
		clients: make(map[string]*TokenBucket),
	}
}

// Allow checks if a request is allowed based on rate limits
func (r *RateLimiter) Allow(clientIP string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	bucket, exists := r.clients[clientIP]
	if !exists {
		bucket = &TokenBucket{
			tokens:       float64(r.cfg.Burst),
			lastRefill:   time.Now(),
			tokensPerSec: float64(r.cfg.RequestsPerMinute) / 60.0,
			maxTokens:    float64(r.cfg.Burst),
		}
		r.clients[clientIP] = bucket
	}

	// Refill tokens based on time elapsed
	now := time.Now()
	elapsed := now.Sub(bucket.lastRefill).Seconds()
	bucket.lastRefill = now
	bucket.tokens += elapsed * bucket.tokensPerSec
	if bucket.tokens > bucket.maxTokens {
		bucket.tokens = bucket.maxTokens
	}

	if bucket.tokens >= 1.0 {
		bucket.tokens -= 1.0
		return true
	}

	return false
}

// RateLimit creates middleware for rate limiting requests per client IP
func RateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	limiter := NewRateLimiter(cfg)

	return func(c *gin.Context) {
		clientIP := c.ClientIP()

		if !limiter.Allow(clientIP) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Try again later.",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
