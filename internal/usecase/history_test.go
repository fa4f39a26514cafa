package usecase

import (
	"fmt"
	"testing"
	"time"

	"livetranslate/internal/domain"
)

func TestHistoryKeepsNewestTen(t *testing.T) {
	t.Parallel()

	h := newTranslationHistory(historyLimit)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 11; i++ {
		h.Add(domain.Translation{Original: fmt.Sprint(i), Timestamp: base.Add(time.Duration(i) * time.Second)})
	}

	entries := h.Snapshot()
	if len(entries) != 10 {
		t.Fatalf("expected 10 entries, got %d", len(entries))
	}
	if entries[0].Original != "10" {
		t.Fatalf("expected newest first, got %q", entries[0].Original)
	}
	if entries[9].Original != "1" {
		t.Fatalf("expected oldest entry evicted, last is %q", entries[9].Original)
	}
}

func TestHistorySnapshotIsACopy(t *testing.T) {
	t.Parallel()

	h := newTranslationHistory(0)
	h.Add(domain.Translation{Original: "a"})
	snapshot := h.Snapshot()
	snapshot[0].Original = "mutated"

	if h.Snapshot()[0].Original != "a" {
		t.Fatalf("snapshot aliases history storage")
	}

	h.Reset()
	if len(h.Snapshot()) != 0 {
		t.Fatalf("expected reset to clear history")
	}
}
