package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"livetranslate/internal/domain"
	"livetranslate/internal/ports"
)

// speechOutput speaks translations. A new request cancels the one being
// spoken and waits for it to go quiet, so only the newest is audible.
type speechOutput struct {
	synth  ports.SpeechSynthesizer
	events ports.EventSink
	logger *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func newSpeechOutput(synth ports.SpeechSynthesizer, events ports.EventSink, logger *slog.Logger) *speechOutput {
	return &speechOutput{synth: synth, events: events, logger: logger}
}

func (o *speechOutput) Speak(text string, language string) {
	if o.synth == nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	o.mu.Lock()
	previousCancel, previousDone := o.cancel, o.done
	o.cancel, o.done = cancel, done
	o.mu.Unlock()

	if previousCancel != nil {
		previousCancel()
	}

	go func() {
		defer close(done)
		defer cancel()
		if previousDone != nil {
			<-previousDone
		}
		if ctx.Err() != nil {
			return
		}

		err := o.synth.Speak(ctx, text, domain.DefaultVoice(language))
		if err != nil && !errors.Is(err, context.Canceled) && ctx.Err() == nil {
			o.logger.Warn("speech synthesis failed", "err", err)
			o.events.SessionError(domain.ErrorCodeAudioOutput, err.Error())
		}
	}()
}

// Cancel silences the current utterance, if any.
func (o *speechOutput) Cancel() {
	o.mu.Lock()
	cancel := o.cancel
	o.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Wait blocks until the most recent utterance has finished or been cancelled.
func (o *speechOutput) Wait() {
	o.mu.Lock()
	done := o.done
	o.mu.Unlock()
	if done != nil {
		<-done
	}
}
