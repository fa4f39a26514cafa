package usecase

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"livetranslate/internal/domain"
)

func TestSpeakerTrackerCountsDistinctSignatures(t *testing.T) {
	t.Parallel()

	events := &fakeEventSink{}
	tracker := newSpeakerTracker(fakeFingerprinter{}, events)

	tracker.Observe([]byte("a"))
	tracker.Observe([]byte("a"))
	tracker.Observe([]byte("b"))
	tracker.Observe(nil)

	if tracker.Count() != 2 {
		t.Fatalf("expected 2 speakers, got %d", tracker.Count())
	}
	if got := events.snapshotSpeakers(); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("expected one event per new speaker, got %v", got)
	}

	tracker.Reset()
	if tracker.Count() != 0 {
		t.Fatalf("expected reset")
	}
}

func TestSpeakerTrackerCapsSignatures(t *testing.T) {
	t.Parallel()

	tracker := newSpeakerTracker(fakeFingerprinter{}, &fakeEventSink{})
	for i := 0; i < maxTrackedSpeakers+5; i++ {
		tracker.Observe([]byte{byte(i)})
	}
	if tracker.Count() != maxTrackedSpeakers {
		t.Fatalf("expected cap of %d, got %d", maxTrackedSpeakers, tracker.Count())
	}
}

func TestSpeakerTrackerWithoutFingerprinter(t *testing.T) {
	t.Parallel()

	tracker := newSpeakerTracker(nil, &fakeEventSink{})
	tracker.Observe([]byte("a"))
	if tracker.Count() != 0 {
		t.Fatalf("expected no speakers without a fingerprinter")
	}
}

func TestSongWatcherReportsIdentification(t *testing.T) {
	t.Parallel()

	events := &fakeEventSink{}
	songs := &fakeSongs{result: "  Despacito by Luis Fonsi "}
	w := newSongWatcher(songs, events, slog.Default())

	w.Observe(context.Background(), "des pa cito")
	w.Wait()

	if w.Last() != "Despacito by Luis Fonsi" {
		t.Fatalf("unexpected last song: %q", w.Last())
	}
	if got := events.snapshotSongs(); len(got) != 1 || got[0] != "Despacito by Luis Fonsi" {
		t.Fatalf("unexpected song events: %v", got)
	}
	if events.noticeCount(domain.NoticeSongIdentified) != 1 {
		t.Fatalf("expected song notice")
	}
}

func TestSongWatcherSwallowsFailuresAndBlanks(t *testing.T) {
	t.Parallel()

	events := &fakeEventSink{}
	failing := newSongWatcher(&fakeSongs{err: errors.New("quota")}, events, slog.Default())
	failing.Observe(context.Background(), "la la")
	failing.Wait()

	blank := newSongWatcher(&fakeSongs{result: "  "}, events, slog.Default())
	blank.Observe(context.Background(), "la la")
	blank.Observe(context.Background(), "   ")
	blank.Wait()

	if len(events.snapshotSongs()) != 0 || len(events.snapshotErrors()) != 0 || len(events.snapshotNotices()) != 0 {
		t.Fatalf("expected no events for failed identification")
	}
	if failing.Last() != "" || blank.Last() != "" {
		t.Fatalf("expected no last song")
	}
}
