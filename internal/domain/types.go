package domain

import (
	"errors"
	"strings"
	"time"
	"unicode"
)

// SessionState models the listening lifecycle.
type SessionState string

const (
	SessionStateDisabled           SessionState = "disabled"
	SessionStateAwaitingPermission SessionState = "awaiting_permission"
	SessionStateListening          SessionState = "listening"
	SessionStateRestarting         SessionState = "restarting"
	SessionStatePermissionDenied   SessionState = "permission_denied"
)

// SessionStateReason provides a structured reason for state transitions.
type SessionStateReason string

const (
	SessionReasonUserDisabled          SessionStateReason = "user_disabled"
	SessionReasonPermissionRequested   SessionStateReason = "permission_requested"
	SessionReasonPermissionDenied      SessionStateReason = "permission_denied"
	SessionReasonListeningStarted      SessionStateReason = "listening_started"
	SessionReasonSegmentEnded          SessionStateReason = "segment_ended"
	SessionReasonListeningRestarted    SessionStateReason = "listening_restarted"
	SessionReasonReconfigured          SessionStateReason = "reconfigured"
	SessionReasonCaptureFailed         SessionStateReason = "capture_failed"
	SessionReasonCapabilityUnavailable SessionStateReason = "capability_unavailable"
)

// ErrorCode identifies user-visible failures.
type ErrorCode string

const (
	ErrorCodeStartup               ErrorCode = "startup"
	ErrorCodeCapabilityUnavailable ErrorCode = "capability_unavailable"
	ErrorCodePermissionDenied      ErrorCode = "permission_denied"
	ErrorCodeCapture               ErrorCode = "capture"
	ErrorCodeAudioOutput           ErrorCode = "audio_output"
)

// NoticeKind tags transient, non-blocking messages for the UI.
type NoticeKind string

const (
	NoticeMicrophoneRequested NoticeKind = "microphone_requested"
	NoticeListening           NoticeKind = "listening"
	NoticeNativeSpeech        NoticeKind = "native_speech"
	NoticeForeignSpeech       NoticeKind = "foreign_speech"
	NoticeSongIdentified      NoticeKind = "song_identified"
	NoticeTranslationFailed   NoticeKind = "translation_failed"
)

// PermissionState is the tri-state microphone permission.
type PermissionState string

const (
	PermissionUnknown PermissionState = "unknown"
	PermissionGranted PermissionState = "granted"
	PermissionDenied  PermissionState = "denied"
)

var (
	// ErrCapabilityUnavailable means speech recognition cannot run in this environment.
	ErrCapabilityUnavailable = errors.New("speech recognition unavailable")
	// ErrPermissionDenied means microphone access was refused.
	ErrPermissionDenied = errors.New("microphone permission denied")
	// ErrCaptureFailed marks a recognition backend failure.
	ErrCaptureFailed = errors.New("speech capture failed")
)

// TranscriptKind identifies whether a stream event is partial or final text.
type TranscriptKind string

const (
	TranscriptKindPartial TranscriptKind = "partial"
	TranscriptKindFinal   TranscriptKind = "final"
)

// TranscriptEvent is one recognition result from a streaming provider.
type TranscriptEvent struct {
	Kind       TranscriptKind `json:"kind"`
	Text       string         `json:"text"`
	Confidence float64        `json:"confidence"`
	Language   string         `json:"language,omitempty"`
}

// Utterance is one segment of recognized speech.
type Utterance struct {
	Text         string  `json:"text"`
	Confidence   float64 `json:"confidence"`
	IsFinal      bool    `json:"isFinal"`
	LanguageHint string  `json:"languageHint,omitempty"`
}

// WordCount counts whitespace-separated words. Han, Hiragana and Katakana
// are written without spaces, so each of those characters counts as a word.
func (u Utterance) WordCount() int {
	count := 0
	inWord := false
	for _, r := range u.Text {
		switch {
		case unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana):
			count++
			inWord = false
		case unicode.IsSpace(r):
			inWord = false
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
		default:
			if !inWord {
				count++
				inWord = true
			}
		}
	}
	return count
}

// TranslationJob is a queued request for the translation service.
type TranslationJob struct {
	ID          string    `json:"id"`
	Text        string    `json:"text"`
	SourceLang  string    `json:"sourceLang,omitempty"`
	TargetLang  string    `json:"targetLang"`
	EnqueuedAt  time.Time `json:"enqueuedAt"`
	Speculative bool      `json:"speculative"`
}

// Translation is an immutable history record.
type Translation struct {
	Original   string    `json:"original"`
	Translated string    `json:"translated"`
	Timestamp  time.Time `json:"timestamp"`
	SourceLang string    `json:"sourceLang,omitempty"`
}

// SessionConfig is an immutable snapshot of the listening configuration.
// Each change produces a new value.
type SessionConfig struct {
	UserLanguage         string          `json:"userLanguage"`
	MultiParticipantMode bool            `json:"multiParticipantMode"`
	Enabled              bool            `json:"enabled"`
	MicPermission        PermissionState `json:"micPermission"`
}

func (c SessionConfig) WithUserLanguage(code string) SessionConfig {
	c.UserLanguage = code
	return c
}

func (c SessionConfig) WithMultiParticipant(on bool) SessionConfig {
	c.MultiParticipantMode = on
	return c
}

func (c SessionConfig) WithEnabled(on bool) SessionConfig {
	c.Enabled = on
	return c
}

func (c SessionConfig) WithMicPermission(p PermissionState) SessionConfig {
	c.MicPermission = p
	return c
}

// Voice describes how synthesized speech is rendered.
type Voice struct {
	Language string  `json:"language"`
	Rate     float64 `json:"rate"`
	Pitch    float64 `json:"pitch"`
	Volume   float64 `json:"volume"`
}

// DefaultVoice speaks at normal rate, pitch and full volume.
func DefaultVoice(language string) Voice {
	return Voice{Language: language, Rate: 1.0, Pitch: 1.0, Volume: 1.0}
}

// Status summarizes the current runtime status.
type Status struct {
	State        SessionState  `json:"state"`
	Config       SessionConfig `json:"config"`
	QueueDepth   int           `json:"queueDepth"`
	Speakers     int           `json:"speakers"`
	LastSong     string        `json:"lastSong,omitempty"`
	PacingMillis int64         `json:"pacingMillis"`
	Message      string        `json:"message,omitempty"`
}

// Language is an entry of the supported language table.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// SupportedLanguages lists the languages a listener may choose.
var SupportedLanguages = []Language{
	{Code: "en-US", Name: "English (US)"},
	{Code: "es-ES", Name: "Spanish"},
	{Code: "fr-FR", Name: "French"},
	{Code: "de-DE", Name: "German"},
	{Code: "it-IT", Name: "Italian"},
	{Code: "ja-JP", Name: "Japanese"},
	{Code: "ko-KR", Name: "Korean"},
	{Code: "zh-CN", Name: "Chinese (Simplified)"},
}

// LookupLanguage resolves a supported language by code.
func LookupLanguage(code string) (Language, bool) {
	for _, lang := range SupportedLanguages {
		if strings.EqualFold(lang.Code, code) {
			return lang, true
		}
	}
	return Language{}, false
}

// LanguageName returns a display name, falling back to the code.
func LanguageName(code string) string {
	if lang, ok := LookupLanguage(code); ok {
		return lang.Name
	}
	primary := PrimarySubtag(code)
	for _, lang := range SupportedLanguages {
		if PrimarySubtag(lang.Code) == primary {
			return lang.Name
		}
	}
	return code
}

// PrimarySubtag returns the lowercased primary language subtag ("en" for "en-US").
func PrimarySubtag(code string) string {
	code = strings.TrimSpace(code)
	if i := strings.IndexAny(code, "-_"); i >= 0 {
		code = code[:i]
	}
	return strings.ToLower(code)
}

// SameLanguage compares two codes by primary subtag.
func SameLanguage(a, b string) bool {
	pa := PrimarySubtag(a)
	return pa != "" && pa == PrimarySubtag(b)
}
