package http

import (
	"sync"
	"time"
)

// LoginRateLimiter is a sliding window of login attempts per username.
type LoginRateLimiter struct {
	mu       sync.Mutex
	history  map[string][]time.Time
	limit    int
	interval time.Duration
	now      func() time.Time
}

func NewLoginRateLimiter(limit int, interval time.Duration) *LoginRateLimiter {
	return &LoginRateLimiter{
		history:  make(map[string][]time.Time),
		limit:    limit,
		interval: interval,
		now:      time.Now,
	}
}

func (rl *LoginRateLimiter) Allow(username string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	windowStart := now.Add(-rl.interval)

	attempts := rl.history[username]
	fresh := make([]time.Time, 0, len(attempts)+1)
	for _, t := range attempts {
		if t.After(windowStart) {
			fresh = append(fresh, t)
		}
	}

	if len(fresh) >= rl.limit {
		rl.history[username] = fresh
		return false
	}

	rl.history[username] = append(fresh, now)
	return true
}

// Reset forgets the attempts of username, e.g. after a successful login.
func (rl *LoginRateLimiter) Reset(username string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.history, username)
}
