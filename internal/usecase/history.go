package usecase

import (
	"sync"

	"livetranslate/internal/domain"
)

const historyLimit = 10

// translationHistory keeps the most recent translations, newest first.
type translationHistory struct {
	mu      sync.Mutex
	limit   int
	entries []domain.Translation
}

func newTranslationHistory(limit int) *translationHistory {
	if limit <= 0 {
		limit = historyLimit
	}
	return &translationHistory{limit: limit}
}

func (h *translationHistory) Add(t domain.Translation) {
	h.mu.Lock()
	defer h.mu.Unlock()

	entries := make([]domain.Translation, 0, h.limit)
	entries = append(entries, t)
	entries = append(entries, h.entries...)
	if len(entries) > h.limit {
		entries = entries[:h.limit]
	}
	h.entries = entries
}

func (h *translationHistory) Snapshot() []domain.Translation {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]domain.Translation(nil), h.entries...)
}

func (h *translationHistory) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = nil
}
