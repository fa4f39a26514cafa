package usecase

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"livetranslate/internal/domain"
	"livetranslate/internal/ports"
)

// songWatcher asks the identification service about foreign lyrics on a
// best-effort basis: one request at a time, failures only logged.
type songWatcher struct {
	identifier ports.SongIdentifier
	events     ports.EventSink
	logger     *slog.Logger

	mu       sync.Mutex
	inFlight bool
	last     string
	wg       sync.WaitGroup
}

func newSongWatcher(identifier ports.SongIdentifier, events ports.EventSink, logger *slog.Logger) *songWatcher {
	return &songWatcher{identifier: identifier, events: events, logger: logger}
}

func (w *songWatcher) Observe(ctx context.Context, text string) {
	if w.identifier == nil || strings.TrimSpace(text) == "" {
		return
	}

	w.mu.Lock()
	if w.inFlight {
		w.mu.Unlock()
		return
	}
	w.inFlight = true
	w.wg.Add(1)
	w.mu.Unlock()

	go func() {
		defer w.wg.Done()
		defer func() {
			w.mu.Lock()
			w.inFlight = false
			w.mu.Unlock()
		}()

		result, err := w.identifier.Identify(ctx, text)
		if err != nil {
			w.logger.Debug("song identification failed", "err", err)
			return
		}
		result = strings.TrimSpace(result)
		if result == "" {
			return
		}

		w.mu.Lock()
		w.last = result
		w.mu.Unlock()
		w.events.SongIdentified(result)
		w.events.Notice(domain.NoticeSongIdentified, result)
	}()
}

func (w *songWatcher) Last() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last
}

func (w *songWatcher) Wait() {
	w.wg.Wait()
}
