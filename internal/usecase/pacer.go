package usecase

import (
	"sync"
	"time"
)

const (
	minPacingDelay     = 50 * time.Millisecond
	maxPacingDelay     = 500 * time.Millisecond
	initialPacingDelay = 200 * time.Millisecond
)

// pacer throttles speculative interim jobs. Its delay follows the observed
// translation throughput: slow round trips per word push it toward the
// ceiling, fast ones toward the floor.
type pacer struct {
	mu              sync.Mutex
	delay           time.Duration
	lastSpeculative time.Time
}

func newPacer() *pacer {
	return &pacer{delay: initialPacingDelay}
}

// Observe folds one completed translation into the delay.
func (p *pacer) Observe(elapsed time.Duration, words int) {
	if words <= 0 || elapsed <= 0 {
		return
	}
	wordsPerMinute := float64(words) / elapsed.Minutes()
	target := time.Duration(float64(time.Minute) / wordsPerMinute)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.delay = clampDelay((p.delay + target) / 2)
}

// Allow reports whether a speculative job may be queued at now.
func (p *pacer) Allow(now time.Time) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.lastSpeculative.IsZero() && now.Sub(p.lastSpeculative) < p.delay {
		return false
	}
	p.lastSpeculative = now
	return true
}

func (p *pacer) Delay() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.delay
}

func clampDelay(d time.Duration) time.Duration {
	if d < minPacingDelay {
		return minPacingDelay
	}
	if d > maxPacingDelay {
		return maxPacingDelay
	}
	return d
}
