package pipeline

import (
	"sync"
	"time"

	"github.com/GregMSThompson/widget-dashboard/pkg/clock"
)

// DefaultCooldown is the minimum spacing between two requests for one widget key.
const DefaultCooldown = 60 * time.Second

// RateLimiter is the shared ledger of the last admitted request per widget key.
// Entries are created lazily and never expire; newer admissions overwrite them.
type RateLimiter struct {
	mu       sync.Mutex
	clock    clock.Clock
	cooldown time.Duration
	ledger   map[string]time.Time
}

func NewRateLimiter(c clock.Clock, cooldown time.Duration) *RateLimiter {
	if c == nil {
		c = clock.Real()
	}
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &RateLimiter{
		clock:    c,
		cooldown: cooldown,
		ledger:   make(map[string]time.Time),
	}
}

// ShouldAdmit reports whether a request for key may be sent now.
func (rl *RateLimiter) ShouldAdmit(key string) bool {
	return rl.TimeRemaining(key) == 0
}

// RecordAdmission stamps key with the current time. Call it when the request
// is sent, not when it completes, so overlapping requests are throttled too.
func (rl *RateLimiter) RecordAdmission(key string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.ledger[key] = rl.clock.Now()
}

// TimeRemaining returns how long key stays in its cooldown window, zero when open.
func (rl *RateLimiter) TimeRemaining(key string) time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	last, ok := rl.ledger[key]
	if !ok {
		return 0
	}
	remaining := rl.cooldown - rl.clock.Now().Sub(last)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Admit checks and records in one step. It returns the remaining cooldown when
// the request is refused.
func (rl *RateLimiter) Admit(key string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.clock.Now()
	if last, ok := rl.ledger[key]; ok {
		if remaining := rl.cooldown - now.Sub(last); remaining > 0 {
			return false, remaining
		}
	}
	rl.ledger[key] = now
	return true, 0
}

func (rl *RateLimiter) Cooldown() time.Duration {
	return rl.cooldown
}
