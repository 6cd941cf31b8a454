package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Token bucket parameters per client: 20 requests of burst, refilled at one
// token per second.
const (
	bucketCapacity = 20
	refillPerSec   = 1
)

// RateLimiter holds a map of client keys to their rate limiters. It is owned
// by the composition root and shared by all handlers for the process lifetime.
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	logger   *zap.Logger
}

// NewRateLimiter builds an empty limiter store.
func NewRateLimiter(logger *zap.Logger) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		logger:   logger,
	}
}

// getLimiter returns the rate limiter for a given client key, creating one if
// it doesn't exist.
func (s *RateLimiter) getLimiter(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	limiter, exists := s.limiters[key]
	if !exists {
		limiter = rate.NewLimiter(rate.Limit(refillPerSec), bucketCapacity)
		s.limiters[key] = limiter
	}
	return limiter
}

// Allow consumes one token for the client key, reporting whether the request
// may proceed.
func (s *RateLimiter) Allow(key string) bool {
	return s.getLimiter(key).Allow()
}

// Middleware limits requests per client address and maps exhaustion to 429.
func (s *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := ClientKey(c)
		if !s.Allow(key) {
			s.logger.Warn("Rate limit exceeded", zap.String("client", key))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			return
		}
		c.Next()
	}
}
