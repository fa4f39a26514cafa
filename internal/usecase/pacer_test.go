package usecase

import (
	"testing"
	"time"
)

func TestPacerMovesTowardObservedThroughput(t *testing.T) {
	t.Parallel()

	p := newPacer()
	if p.Delay() != initialPacingDelay {
		t.Fatalf("unexpected initial delay: %s", p.Delay())
	}

	// 10 words in 1s is 600 wpm, a 100ms target.
	p.Observe(time.Second, 10)
	if got := p.Delay(); got != 150*time.Millisecond {
		t.Fatalf("expected 150ms, got %s", got)
	}
}

func TestPacerStaysWithinBounds(t *testing.T) {
	t.Parallel()

	slow := newPacer()
	for i := 0; i < 10; i++ {
		slow.Observe(10*time.Second, 1)
	}
	if got := slow.Delay(); got != maxPacingDelay {
		t.Fatalf("expected ceiling, got %s", got)
	}

	fast := newPacer()
	for i := 0; i < 10; i++ {
		fast.Observe(10*time.Millisecond, 50)
	}
	if got := fast.Delay(); got != minPacingDelay {
		t.Fatalf("expected floor, got %s", got)
	}
}

func TestPacerIgnoresDegenerateSamples(t *testing.T) {
	t.Parallel()

	p := newPacer()
	p.Observe(0, 5)
	p.Observe(time.Second, 0)
	if p.Delay() != initialPacingDelay {
		t.Fatalf("expected delay unchanged, got %s", p.Delay())
	}
}

func TestPacerAllowSpacesSpeculativeJobs(t *testing.T) {
	t.Parallel()

	p := newPacer()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if !p.Allow(start) {
		t.Fatalf("expected first speculative job to be allowed")
	}
	if p.Allow(start.Add(100 * time.Millisecond)) {
		t.Fatalf("expected job inside the delay to be throttled")
	}
	if !p.Allow(start.Add(initialPacingDelay)) {
		t.Fatalf("expected job after the delay to be allowed")
	}
}
