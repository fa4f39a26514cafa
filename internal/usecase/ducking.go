package usecase

import (
	"sync"
	"time"

	"livetranslate/internal/ports"
)

const (
	duckLevel          = 0.2
	nativeDuckCooldown = 10 * time.Second
	duckRestoreDelay   = 5 * time.Second
)

// playbackDucker lowers the shared output volume around detected speech.
// Every duck schedules its own restore; restoring twice is a no-op.
type playbackDucker struct {
	output  ports.AudioOutput
	clock   Clock
	metrics ports.PipelineMetrics

	mu             sync.Mutex
	original       float64
	hasOriginal    bool
	ducked         bool
	lastNativeDuck time.Time
}

func newPlaybackDucker(output ports.AudioOutput, clock Clock, metrics ports.PipelineMetrics) *playbackDucker {
	return &playbackDucker{output: output, clock: clock, metrics: metrics}
}

// CaptureOriginal remembers the current volume as the restore target.
// It is ignored while ducked so the ducked level never becomes the target.
func (d *playbackDucker) CaptureOriginal() {
	if d.output == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ducked {
		return
	}
	d.original = clampVolume(d.output.Volume())
	d.hasOriginal = true
}

// DuckOnNativeSpeech ducks at most once per cool-down window and reports
// whether it fired.
func (d *playbackDucker) DuckOnNativeSpeech() bool {
	d.mu.Lock()
	now := d.clock.Now()
	if !d.lastNativeDuck.IsZero() && now.Sub(d.lastNativeDuck) <= nativeDuckCooldown {
		d.mu.Unlock()
		return false
	}
	d.lastNativeDuck = now
	d.duckLocked()
	d.mu.Unlock()

	d.metrics.Ducked("native")
	return true
}

func (d *playbackDucker) DuckOnForeignSpeech() {
	d.mu.Lock()
	d.duckLocked()
	d.mu.Unlock()

	d.metrics.Ducked("foreign")
}

func (d *playbackDucker) duckLocked() {
	if d.output == nil {
		return
	}
	if !d.ducked {
		if !d.hasOriginal {
			d.original = clampVolume(d.output.Volume())
			d.hasOriginal = true
		}
		d.ducked = true
	}
	d.output.SetVolume(clampVolume(duckLevel))
	d.clock.AfterFunc(duckRestoreDelay, d.Restore)
}

// Restore puts the captured volume back if playback is ducked.
func (d *playbackDucker) Restore() {
	if d.output == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.ducked {
		return
	}
	d.output.SetVolume(d.original)
	d.ducked = false
}

// Ducked reports whether the output is currently lowered.
func (d *playbackDucker) Ducked() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ducked
}

func clampVolume(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
