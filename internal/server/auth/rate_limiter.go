package auth

import (
	"fmt"
	"sync"
	"time"
)

// RateLimiter counts attempts per key inside a sliding window. A background
// goroutine drops keys with no attempt newer than maxAge, and the map never
// holds more than maxEntries keys.
type RateLimiter struct {
	mu         sync.Mutex
	attempts   map[string][]time.Time
	maxAge     time.Duration
	maxEntries int

	stop     chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter creates a rate limiter and starts its cleanup loop. Call
// Stop to end the loop.
func NewRateLimiter(cleanupInterval, maxAge time.Duration, maxEntries int) *RateLimiter {
	rl := &RateLimiter{
		attempts:   make(map[string][]time.Time),
		maxAge:     maxAge,
		maxEntries: maxEntries,
		stop:       make(chan struct{}),
	}
	go rl.cleanupLoop(cleanupInterval)
	return rl
}

func (rl *RateLimiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.Cleanup(rl.maxAge)
		case <-rl.stop:
			return
		}
	}
}

// Stop ends the cleanup loop. Safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// Len returns the number of tracked keys
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.attempts)
}

// CheckLimit records an attempt for key, or returns an error when key
// already has maxAttempts inside window
func (rl *RateLimiter) CheckLimit(key string, maxAttempts int, window time.Duration) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	attempts, known := rl.attempts[key]

	var recent []time.Time
	for _, t := range attempts {
		if now.Sub(t) < window {
			recent = append(recent, t)
		}
	}

	if len(recent) >= maxAttempts {
		rl.attempts[key] = recent
		return fmt.Errorf("too many attempts, try again in %v", window)
	}

	if !known && rl.maxEntries > 0 && len(rl.attempts) >= rl.maxEntries {
		rl.evictOldest()
	}

	rl.attempts[key] = append(recent, now)
	return nil
}

// evictOldest drops the key whose latest attempt is the oldest. Caller holds mu.
func (rl *RateLimiter) evictOldest() {
	var (
		oldestKey  string
		oldestTime time.Time
	)
	for key, attempts := range rl.attempts {
		var last time.Time
		if n := len(attempts); n > 0 {
			last = attempts[n-1]
		}
		if oldestKey == "" || last.Before(oldestTime) {
			oldestKey, oldestTime = key, last
		}
	}
	delete(rl.attempts, oldestKey)
}

// ResetLimit clears the rate limit for a key
func (rl *RateLimiter) ResetLimit(key string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.attempts, key)
}

// Cleanup removes attempts older than maxAge and keys left empty
func (rl *RateLimiter) Cleanup(maxAge time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for key, attempts := range rl.attempts {
		var recent []time.Time
		for _, t := range attempts {
			if now.Sub(t) < maxAge {
				recent = append(recent, t)
			}
		}

		if len(recent) == 0 {
			delete(rl.attempts, key)
		} else {
			rl.attempts[key] = recent
		}
	}
}
