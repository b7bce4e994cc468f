package dispatch

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter hands out credits per user and command. A command costs its
// Command.Rate credits per invocation and credits refill continuously.
type RateLimiter struct {
	Limit rate.Limit
	Burst int

	mut      sync.Mutex
	limiters map[limiterKey]*rate.Limiter
	now      func() time.Time
}

type limiterKey struct {
	id      string
	command string
}

// NewRateLimiter creates a limiter refilling perSecond credits each second
// up to burst.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		Limit:    rate.Limit(perSecond),
		Burst:    burst,
		limiters: make(map[limiterKey]*rate.Limiter),
		now:      time.Now,
	}
}

// Allow spends cost credits of id for command. A cost of 0 or less is
// always allowed and spends nothing, a cost above the burst spends the
// whole burst.
func (r *RateLimiter) Allow(id, command string, cost int) bool {
	if cost <= 0 {
		return true
	}
	if r.Burst > 0 && cost > r.Burst {
		cost = r.Burst
	}

	r.mut.Lock()
	defer r.mut.Unlock()

	key := limiterKey{id: id, command: command}
	l, ok := r.limiters[key]
	if !ok {
		l = rate.NewLimiter(r.Limit, r.Burst)
		r.limiters[key] = l
	}

	return l.AllowN(r.now(), cost)
}

// Forget drops every bucket of id, used when a user goes away.
func (r *RateLimiter) Forget(id string) {
	r.mut.Lock()
	defer r.mut.Unlock()

	for key := range r.limiters {
		if key.id == id {
			delete(r.limiters, key)
		}
	}
}

// Len is the number of live buckets.
func (r *RateLimiter) Len() int {
	r.mut.Lock()
	defer r.mut.Unlock()
	return len(r.limiters)
}
