package synth

import (
	"sync"
	"time"
)

// BreakerState is the explicit two-state protocol for the online endpoint.
type BreakerState int

const (
	StateOnline BreakerState = iota
	StateDegraded
)

func (s BreakerState) String() string {
	if s == StateDegraded {
		return "degraded"
	}
	return "online"
}

// Breaker tracks consecutive online failures and suppresses further online
// attempts for a cool-down window once the threshold is reached. After the
// window the next request probes online mode again. Safe for concurrent
// use; the counters never corrupt under interleaved access.
type Breaker struct {
	mu        sync.Mutex
	threshold int
	cooldown  time.Duration
	failures  int
	openUntil time.Time
	now       func() time.Time
}

// NewBreaker creates a breaker that degrades after threshold consecutive
// failures and stays degraded for the cooldown duration.
func NewBreaker(threshold int, cooldown time.Duration) *Breaker {
	if threshold <= 0 {
		threshold = 3
	}
	if cooldown <= 0 {
		cooldown = 60 * time.Second
	}
	return &Breaker{threshold: threshold, cooldown: cooldown, now: time.Now}
}

// SetClock replaces the time source, for tests.
func (b *Breaker) SetClock(now func() time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.now = now
}

// Allow reports whether an online attempt may proceed.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.now().Before(b.openUntil)
}

// Success resets the failure count after a completed online call.
func (b *Breaker) Success() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.openUntil = time.Time{}
}

// Failure records an online failure. Reaching the threshold (or failing a
// probe while already degraded) opens the cool-down window.
func (b *Breaker) Failure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	if b.failures >= b.threshold {
		b.openUntil = b.now().Add(b.cooldown)
	}
}

// State reports the current protocol state.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.now().Before(b.openUntil) {
		return StateDegraded
	}
	return StateOnline
}
