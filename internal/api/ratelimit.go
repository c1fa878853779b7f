package api

import (
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/shelfstash/shelfstash-server/internal/ratelimit"
)

// RateLimiter wraps KeyedRateLimiter for API use.
type RateLimiter = ratelimit.KeyedRateLimiter

// NewRateLimiter creates a new rate limiter.
// ratePerInterval: number of requests allowed per interval.
// burst: maximum burst size.
func NewRateLimiter(ratePerInterval int, interval time.Duration, burst int) *RateLimiter {
	rps := float64(ratePerInterval) / interval.Seconds()
	return ratelimit.New(rps, burst)
}

// throttle consumes one token for the named route, returning a 429 error
// when the bucket is empty. Keys are per route, not per client; this is a
// single-user server and the limiter exists to slow down runaway scripts.
func (s *Server) throttle(route string) error {
	if s.writeLimiter.Allow(route) {
		return nil
	}

	s.logger.Warn("rate limit exceeded", "route", route)
	return huma.Error429TooManyRequests("Too many requests. Please try again later.")
}
