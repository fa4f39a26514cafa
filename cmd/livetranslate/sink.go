package main

import (
	"fmt"
	"io"
	"sync"

	"livetranslate/internal/domain"
)

// consoleSink prints pipeline events as plain lines.
type consoleSink struct {
	mu  sync.Mutex
	out io.Writer
}

func newConsoleSink(out io.Writer) *consoleSink {
	return &consoleSink{out: out}
}

func (s *consoleSink) printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, format+"\n", args...)
}

func (s *consoleSink) SessionStateChanged(state domain.SessionState, reason domain.SessionStateReason) {
	s.printf("* %s (%s)", state, reason)
}

func (s *consoleSink) InterimTranscript(text string) {
	s.printf("  ... %s", text)
}

func (s *consoleSink) TranslationReady(t domain.Translation) {
	if t.SourceLang != "" {
		s.printf("[%s] %s\n  => %s", t.SourceLang, t.Original, t.Translated)
		return
	}
	s.printf("%s\n  => %s", t.Original, t.Translated)
}

func (s *consoleSink) SongIdentified(text string) {
	s.printf("~ song: %s", text)
}

func (s *consoleSink) SpeakersDetected(count int) {
	s.printf("~ speakers: %d", count)
}

func (s *consoleSink) Notice(kind domain.NoticeKind, message string) {
	if kind == domain.NoticeSongIdentified {
		return
	}
	s.printf("! %s", message)
}

func (s *consoleSink) SessionError(code domain.ErrorCode, detail string) {
	s.printf("! error %s: %s", code, detail)
}
