package usecase

import (
	"sync"

	"livetranslate/internal/ports"
)

const maxTrackedSpeakers = 32

// speakerTracker counts distinct speaker signatures heard in multi-participant
// mode. The count is approximate and only meant for display.
type speakerTracker struct {
	fingerprinter ports.SpeakerFingerprinter
	events        ports.EventSink

	mu   sync.Mutex
	seen map[string]struct{}
}

func newSpeakerTracker(fingerprinter ports.SpeakerFingerprinter, events ports.EventSink) *speakerTracker {
	return &speakerTracker{fingerprinter: fingerprinter, events: events, seen: map[string]struct{}{}}
}

func (t *speakerTracker) Observe(pcm []byte) {
	if t.fingerprinter == nil {
		return
	}
	signature, ok := t.fingerprinter.Fingerprint(pcm)
	if !ok {
		return
	}

	t.mu.Lock()
	if _, known := t.seen[signature]; known || len(t.seen) >= maxTrackedSpeakers {
		t.mu.Unlock()
		return
	}
	t.seen[signature] = struct{}{}
	count := len(t.seen)
	t.mu.Unlock()

	t.events.SpeakersDetected(count)
}

func (t *speakerTracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.seen)
}

func (t *speakerTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seen = map[string]struct{}{}
}
