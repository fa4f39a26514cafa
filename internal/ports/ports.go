package ports

import (
	"context"
	"io"
	"time"

	"livetranslate/internal/domain"
)

// AudioConfig describes how the microphone should be captured.
type AudioConfig struct {
	SampleRate  int
	Channels    int
	InputFormat string
	InputDevice string
}

// AudioSession is a live capture session.
type AudioSession interface {
	io.ReadCloser
	Stop() error
}

// AudioCapture creates microphone capture sessions.
type AudioCapture interface {
	Start(ctx context.Context, cfg AudioConfig) (AudioSession, error)
}

// MicrophoneAccess requests the capability to capture the microphone.
// A nil error means access was granted.
type MicrophoneAccess interface {
	RequestAccess(ctx context.Context, cfg AudioConfig) error
}

// StreamingConfig describes provider-agnostic recognition settings.
type StreamingConfig struct {
	SampleRate      int
	Channels        int
	Encoding        string
	Continuous      bool
	InterimResults  bool
	Language        string
	MaxAlternatives int
}

// StreamingSession is an active recognition stream.
// Wait returns nil when the provider ended the stream normally.
type StreamingSession interface {
	SendAudio(chunk []byte) error
	CloseSend() error
	Events() <-chan domain.TranscriptEvent
	Wait() error
	Close() error
}

// TranscriptionProvider starts streaming recognition sessions.
type TranscriptionProvider interface {
	StartStreaming(ctx context.Context, cfg StreamingConfig) (StreamingSession, error)
}

// SpeechSynthesizer speaks text aloud. Cancelling ctx silences it.
type SpeechSynthesizer interface {
	Speak(ctx context.Context, text string, voice domain.Voice) error
}

// AudioOutput is the shared playback volume, in 0..1.
type AudioOutput interface {
	Volume() float64
	SetVolume(v float64)
}

// TranslationRequest is the payload sent to a translation service.
type TranslationRequest struct {
	Text               string
	SourceLang         string
	TargetLang         string
	PreserveFormatting bool
	Priority           string
}

// Translator calls an external translation service.
type Translator interface {
	Translate(ctx context.Context, req TranslationRequest) (string, error)
}

// SongIdentifier returns a best-guess song identification for a text snippet.
// An empty result means nothing was identified.
type SongIdentifier interface {
	Identify(ctx context.Context, text string) (string, error)
}

// LanguageDetector guesses the language of a text. ok is false when unsure.
type LanguageDetector interface {
	Detect(text string) (code string, ok bool)
}

// SpeakerFingerprinter derives an approximate speaker signature from PCM audio.
type SpeakerFingerprinter interface {
	Fingerprint(pcm []byte) (string, bool)
}

// TranscriptRules corrects recognized text before classification.
type TranscriptRules interface {
	Apply(text string, language string) (string, error)
}

// PipelineMetrics observes the translation pipeline.
type PipelineMetrics interface {
	UtteranceClassified(class string)
	TranslationCompleted(latency time.Duration, err error)
	QueueDepth(n int)
	Ducked(kind string)
	SessionRestarted()
}

// EventSink emits backend state/events to the UI.
type EventSink interface {
	SessionStateChanged(state domain.SessionState, reason domain.SessionStateReason)
	InterimTranscript(text string)
	TranslationReady(t domain.Translation)
	SongIdentified(text string)
	SpeakersDetected(count int)
	Notice(kind domain.NoticeKind, message string)
	SessionError(code domain.ErrorCode, detail string)
}
