package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/Afhammirza1/sharingapp/internal/metrics"
)

// maxLocalBuckets caps the number of per-client buckets kept in memory.
const maxLocalBuckets = 10000

// LocalRateLimiter enforces the same route limits as RateLimiter with
// in-process token buckets. Limits are per instance, so it is meant for
// single-instance deployments without Redis.
type LocalRateLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*rate.Limiter
	limits    map[string]RateLimit
	logger    zerolog.Logger
	whitelist *ipWhitelist
}

// NewLocalRateLimiter creates an in-process rate limiter. A nil limits map
// selects DefaultLimits.
func NewLocalRateLimiter(logger zerolog.Logger, cfg RateLimiterConfig, limits map[string]RateLimit) *LocalRateLimiter {
	if limits == nil {
		limits = DefaultLimits()
	}
	if cfg.AutoBlockEnabled {
		logger.Warn().Msg("auto-block needs redis, ignored by the local rate limiter")
	}
	return &LocalRateLimiter{
		buckets:   make(map[string]*rate.Limiter),
		limits:    limits,
		logger:    logger,
		whitelist: parseWhitelist(cfg.Whitelist, logger),
	}
}

// bucket returns the token bucket for key, refilling Requests tokens per
// Window with a burst of Requests.
func (l *LocalRateLimiter) bucket(key string, limit RateLimit) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if b, ok := l.buckets[key]; ok {
		return b
	}
	if len(l.buckets) >= maxLocalBuckets {
		l.buckets = make(map[string]*rate.Limiter)
	}
	every := limit.Window / time.Duration(limit.Requests)
	b := rate.NewLimiter(rate.Every(every), limit.Requests)
	l.buckets[key] = b
	return b
}

// Middleware returns the rate limiting middleware.
func (l *LocalRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := RealIP(r)
		if l.whitelist.contains(ip) {
			next.ServeHTTP(w, r)
			return
		}

		route, limit, ok := lookupLimit(l.limits, r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		key := limit.KeyFunc(r) + ":" + route
		b := l.bucket(key, limit)
		allowed := b.Allow()

		remaining := int(b.Tokens())
		if remaining < 0 {
			remaining = 0
		}
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit.Requests))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			metrics.RateLimitHits.WithLabelValues(route).Inc()
			l.logger.Warn().
				Str("type", "security").
				Str("event", "rate_limit_exceeded").
				Str("ip", ip).
				Str("endpoint", r.URL.Path).
				Msg("rate limit exceeded")
			jsonError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}
