package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/dental-admin/pkg/errors"
	"github.com/jwalitptl/dental-admin/pkg/httputil"
)

type RateLimiterConfig struct {
	RPS   float64
	Burst int
	// Idle limiters are dropped after this long
	TTL time.Duration
}

// RateLimiter keeps one token bucket per client ip
type RateLimiter struct {
	cfg      RateLimiterConfig
	limiters *cache.Cache
}

func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 10 * time.Minute
	}
	return &RateLimiter{cfg: cfg, limiters: cache.New(cfg.TTL, 2*cfg.TTL)}
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	if v, ok := rl.limiters.Get(key); ok {
		rl.limiters.SetDefault(key, v)
		return v.(*rate.Limiter)
	}
	l := rate.NewLimiter(rate.Limit(rl.cfg.RPS), rl.cfg.Burst)
	// Add fails when a concurrent request created one first
	if err := rl.limiters.Add(key, l, cache.DefaultExpiration); err != nil {
		if v, ok := rl.limiters.Get(key); ok {
			return v.(*rate.Limiter)
		}
	}
	return l
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.limiter(c.ClientIP()).Allow() {
			c.Header("Retry-After", "1")
			httputil.RespondWithError(c, errors.TooManyRequests("Demasiados intentos, espere un momento"))
			return
		}
		c.Next()
	}
}
