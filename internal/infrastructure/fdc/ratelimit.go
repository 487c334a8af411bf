package fdc

import (
	"sync"
	"time"

	"github.com/macroplate/backend/internal/domain"
)

// rateLimiter tracks outbound request timestamps over rolling per-minute and
// per-hour windows. The check happens before the network call so an exhausted
// quota fails fast without wasting a round trip. The timestamp list is
// guarded by a mutex; one limiter belongs to exactly one client instance.
type rateLimiter struct {
	mu                sync.Mutex
	requests          []time.Time
	requestsPerMinute int
	requestsPerHour   int
	now               func() time.Time
}

func newRateLimiter(requestsPerMinute, requestsPerHour int) *rateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 1000
	}
	if requestsPerHour <= 0 {
		requestsPerHour = 10000
	}
	return &rateLimiter{
		requestsPerMinute: requestsPerMinute,
		requestsPerHour:   requestsPerHour,
		now:               time.Now,
	}
}

// check prunes entries older than one hour, verifies both windows, and on
// success records the current request. Exceeding a window returns a
// ProviderError with RATE_LIMIT_MINUTE or RATE_LIMIT_HOUR.
func (r *rateLimiter) check() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	oneMinuteAgo := now.Add(-time.Minute)
	oneHourAgo := now.Add(-time.Hour)

	kept := r.requests[:0]
	for _, ts := range r.requests {
		if ts.After(oneHourAgo) {
			kept = append(kept, ts)
		}
	}
	r.requests = kept

	minuteCount := 0
	for _, ts := range r.requests {
		if ts.After(oneMinuteAgo) {
			minuteCount++
		}
	}

	if minuteCount >= r.requestsPerMinute {
		return domain.NewProviderError(domain.SourceFDCUSDA, domain.CodeRateLimitMinute,
			"rate limit exceeded: too many requests per minute")
	}
	if len(r.requests) >= r.requestsPerHour {
		return domain.NewProviderError(domain.SourceFDCUSDA, domain.CodeRateLimitHour,
			"rate limit exceeded: too many requests per hour")
	}

	r.requests = append(r.requests, now)
	return nil
}
