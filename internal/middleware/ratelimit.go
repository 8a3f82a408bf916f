package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	apperrors "github.com/jwalitptl/health-api/pkg/errors"
	"github.com/jwalitptl/health-api/pkg/httputil"
)

type RateLimiterConfig struct {
	// Rate is the sustained requests per second allowed for one client.
	Rate  rate.Limit
	Burst int
	// IdleTTL is how long an unused client limiter is kept.
	IdleTTL time.Duration
}

func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		Rate:    rate.Limit(5),
		Burst:   20,
		IdleTTL: 10 * time.Minute,
	}
}

// RateLimiter keeps one token bucket per client IP. Idle buckets expire out
// of the cache.
type RateLimiter struct {
	mu       sync.Mutex
	limiters *cache.Cache
	config   RateLimiterConfig
}

func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.IdleTTL <= 0 {
		config.IdleTTL = 10 * time.Minute
	}
	return &RateLimiter{
		limiters: cache.New(config.IdleTTL, config.IdleTTL),
		config:   config,
	}
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if v, ok := rl.limiters.Get(key); ok {
		// Touch the entry so active clients keep their bucket.
		rl.limiters.SetDefault(key, v)
		return v.(*rate.Limiter)
	}
	l := rate.NewLimiter(rl.config.Rate, rl.config.Burst)
	rl.limiters.SetDefault(key, l)
	return l
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		l := rl.limiter(c.ClientIP())
		if !l.Allow() {
			retry := l.Reserve()
			delay := retry.Delay()
			retry.Cancel()
			c.Header("Retry-After", strconv.Itoa(int(delay.Seconds())+1))
			httputil.RespondWithError(c, apperrors.RateLimited())
			return
		}
		c.Next()
	}
}
