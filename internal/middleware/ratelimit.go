package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/certbible/certprep/internal/response"
	"github.com/gin-gonic/gin"
)

// RateLimiter is a per-key token bucket: each key holds up to burst tokens
// and regains burst tokens per interval.
type RateLimiter struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	burst    float64
	interval time.Duration
	keyFunc  func(*gin.Context) string
	now      func() time.Time
}

type bucket struct {
	tokens float64
	last   time.Time
}

// NewRateLimiter allows burst requests per interval for each client IP.
// Stale buckets are swept until ctx is cancelled.
func NewRateLimiter(ctx context.Context, burst int, interval time.Duration) *RateLimiter {
	rl := &RateLimiter{
		buckets:  make(map[string]*bucket),
		burst:    float64(burst),
		interval: interval,
		keyFunc:  func(c *gin.Context) string { return c.ClientIP() },
		now:      time.Now,
	}
	go rl.sweep(ctx)
	return rl
}

// ByLearner keys buckets by learner ID and client IP. It must run after
// Learner in the chain.
func (rl *RateLimiter) ByLearner() *RateLimiter {
	rl.keyFunc = func(c *gin.Context) string { return GetLearnerID(c) + "|" + c.ClientIP() }
	return rl
}

func (rl *RateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{tokens: rl.burst, last: now}
		rl.buckets[key] = b
	}

	elapsed := now.Sub(b.last)
	b.tokens += rl.burst * float64(elapsed) / float64(rl.interval)
	if b.tokens > rl.burst {
		b.tokens = rl.burst
	}
	b.last = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// Middleware rejects requests over the limit with 429. A non-positive burst
// disables limiting.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	retryAfter := "1"
	if rl.burst > 0 {
		secs := int(math.Ceil(rl.interval.Seconds() / rl.burst))
		retryAfter = strconv.Itoa(max(secs, 1))
	}

	return func(c *gin.Context) {
		if rl.burst > 0 && !rl.allow(rl.keyFunc(c)) {
			c.Header("Retry-After", retryAfter)
			response.AbortFail(c, http.StatusTooManyRequests, response.ErrRateLimitExceeded)
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) sweep(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.mu.Lock()
			cutoff := rl.now().Add(-2 * rl.interval)
			for key, b := range rl.buckets {
				if b.last.Before(cutoff) {
					delete(rl.buckets, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}
