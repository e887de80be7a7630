package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// ResponseCache caches successful GET responses in Redis. Keys are scoped by
// request path so a whole path can be invalidated in one call.
type ResponseCache struct {
	client   *redis.Client
	prefix   string
	duration time.Duration
	logger   *zap.Logger
}

// NewResponseCache creates a response cache backed by Redis
func NewResponseCache(client *redis.Client, prefix string, duration time.Duration, logger *zap.Logger) *ResponseCache {
	return &ResponseCache{
		client:   client,
		prefix:   prefix,
		duration: duration,
		logger:   logger,
	}
}

// Middleware returns the caching handler. Only GET requests are cached.
func (rc *ResponseCache) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		cacheKey := rc.key(c.Request.URL.Path, c.Request.URL.RawQuery)
		ctx := c.Request.Context()

		cached, err := rc.client.Get(ctx, cacheKey).Bytes()
		if err == nil {
			c.Writer.Header().Set("Content-Type", "application/json")
			c.Writer.Header().Set("X-Cache", "HIT")
			c.Writer.WriteHeader(http.StatusOK)
			c.Writer.Write(cached)
			c.Abort()
			return
		}

		writer := &responseWriter{
			ResponseWriter: c.Writer,
			body:           &bytes.Buffer{},
		}
		c.Writer = writer

		c.Next()

		if c.Writer.Status() == http.StatusOK {
			if err := rc.client.Set(ctx, cacheKey, writer.body.Bytes(), rc.duration).Err(); err != nil {
				rc.logger.Error("Failed to set response cache",
					zap.Error(err),
					zap.String("cache_key", cacheKey))
			}
		}
	}
}

// InvalidatePath deletes every cached response for a request path and
// returns how many entries were dropped.
func (rc *ResponseCache) InvalidatePath(ctx context.Context, path string) (int, error) {
	pattern := fmt.Sprintf("%s:%s:*", rc.prefix, path)

	var deleted int
	iter := rc.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := rc.client.Del(ctx, iter.Val()).Err(); err != nil {
			rc.logger.Error("Failed to delete cached response",
				zap.Error(err),
				zap.String("key", iter.Val()))
			continue
		}
		deleted++
	}
	if err := iter.Err(); err != nil {
		return deleted, err
	}

	rc.logger.Info("Response cache invalidated",
		zap.String("path", path),
		zap.Int("deleted", deleted))

	return deleted, nil
}

// key builds "prefix:path:sha256(query)". Path stays readable so
// InvalidatePath can match on it.
func (rc *ResponseCache) key(path, query string) string {
	hash := sha256.Sum256([]byte(query))
	return fmt.Sprintf("%s:%s:%s", rc.prefix, path, hex.EncodeToString(hash[:8]))
}

// responseWriter captures the response body for caching
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

// Write captures the response for caching
func (w *responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}
