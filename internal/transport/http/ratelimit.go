package http

import "time"

// rateLimiter caps inbound frames per connection over a fixed window. It is
// owned by a single read loop and is not safe for concurrent use.
type rateLimiter struct {
	limit       int
	window      time.Duration
	counter     int
	windowStart time.Time
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	if limit <= 0 {
		return nil
	}
	return &rateLimiter{
		limit:  limit,
		window: window,
	}
}

func (r *rateLimiter) allow(now time.Time) bool {
	if r == nil {
		return true
	}
	if now.Sub(r.windowStart) >= r.window {
		r.windowStart = now
		r.counter = 0
	}
	r.counter++
	return r.counter <= r.limit
}
