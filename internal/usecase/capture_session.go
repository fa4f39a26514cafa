package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"livetranslate/internal/domain"
	"livetranslate/internal/ports"
)

const streamWaitTimeout = 4 * time.Second

type captureConfig struct {
	Audio     ports.AudioConfig
	Streaming ports.StreamingConfig
	ChunkSize int
}

// captureCallbacks mirror the recognition lifecycle. OnEnd fires when the
// provider finished the stream normally, OnError when it failed. Neither
// fires after stop.
type captureCallbacks struct {
	OnStart     func()
	OnUtterance func(domain.Utterance)
	OnEnd       func()
	OnError     func(error)
	Tap         func([]byte)
}

// captureSession owns one continuous recognition stream fed by the microphone.
type captureSession struct {
	cancel context.CancelFunc
	audio  ports.AudioSession
	stream ports.StreamingSession

	stopped       atomic.Bool
	audioStopping atomic.Bool
	stopOnce      sync.Once

	pumpErr    error
	eventsDone chan struct{}
	audioDone  chan struct{}
	done       chan struct{}
}

func startCaptureSession(
	ctx context.Context,
	capture ports.AudioCapture,
	provider ports.TranscriptionProvider,
	cfg captureConfig,
	cb captureCallbacks,
) (*captureSession, error) {
	sessionCtx, cancel := context.WithCancel(ctx)

	stream, err := provider.StartStreaming(sessionCtx, cfg.Streaming)
	if err != nil {
		cancel()
		return nil, err
	}

	audio, err := capture.Start(sessionCtx, cfg.Audio)
	if err != nil {
		_ = stream.Close()
		cancel()
		return nil, err
	}

	s := &captureSession{
		cancel:     cancel,
		audio:      audio,
		stream:     stream,
		eventsDone: make(chan struct{}),
		audioDone:  make(chan struct{}),
		done:       make(chan struct{}),
	}

	if cb.OnStart != nil {
		cb.OnStart()
	}

	go s.consume(cb.OnUtterance)
	go s.pump(cfg.ChunkSize, cb.Tap)
	go s.watch(cb)
	return s, nil
}

// Stop ends the session without firing OnEnd or OnError and waits for its
// goroutines. It must not be called from a capture callback.
func (s *captureSession) Stop() {
	s.stopOnce.Do(func() {
		s.stopped.Store(true)
		s.audioStopping.Store(true)
		s.cancel()
		_ = s.audio.Stop()
		_ = s.stream.Close()
	})
	<-s.done
}

func (s *captureSession) consume(onUtterance func(domain.Utterance)) {
	defer close(s.eventsDone)

	for event := range s.stream.Events() {
		text := strings.TrimSpace(event.Text)
		if text == "" || s.stopped.Load() || onUtterance == nil {
			continue
		}
		onUtterance(domain.Utterance{
			Text:         text,
			Confidence:   event.Confidence,
			IsFinal:      event.Kind == domain.TranscriptKindFinal,
			LanguageHint: event.Language,
		})
	}
}

func (s *captureSession) pump(chunkSize int, tap func([]byte)) {
	defer close(s.audioDone)

	err := pumpAudioChunks(s.audio, s.stream, chunkSize, tap)
	if err != nil && !s.audioStopping.Load() {
		s.pumpErr = err
		_ = s.stream.Close()
	}
}

func (s *captureSession) watch(cb captureCallbacks) {
	defer close(s.done)

	<-s.eventsDone
	s.audioStopping.Store(true)
	_ = s.audio.Stop()
	<-s.audioDone
	streamErr := waitForStream(s.stream, streamWaitTimeout)
	s.cancel()

	if s.stopped.Load() {
		return
	}

	err := s.pumpErr
	if err == nil {
		err = streamErr
	}
	if err != nil {
		if cb.OnError != nil {
			cb.OnError(fmt.Errorf("%w: %v", domain.ErrCaptureFailed, err))
		}
		return
	}
	if cb.OnEnd != nil {
		cb.OnEnd()
	}
}
