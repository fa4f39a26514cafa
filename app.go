package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"livetranslate/internal/bootstrap"
	"livetranslate/internal/config"
	"livetranslate/internal/domain"
	"livetranslate/internal/playback"
	"livetranslate/internal/usecase"
)

const (
	eventSession     = "livetranslate:session"
	eventInterim     = "livetranslate:interim"
	eventTranslation = "livetranslate:translation"
	eventSong        = "livetranslate:song"
	eventSpeakers    = "livetranslate:speakers"
	eventNotice      = "livetranslate:notice"
	eventError       = "livetranslate:error"
)

// App is the Wails application root.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	controller *usecase.SessionController
	stream     *playback.StreamPlayer
	cfg        config.Config
	bootErr    error
}

func NewApp() *App {
	return &App{}
}

func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	services, err := bootstrap.Build(a, nil)
	if err != nil {
		a.bootErr = err
		a.SessionError(domain.ErrorCodeStartup, err.Error())
		return
	}

	a.cfg = services.Config
	a.controller = services.Controller
	a.stream = services.Stream

	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	go a.controller.Run(runCtx)

	if a.cfg.Playback.StreamURL != "" {
		if err := a.stream.Play(runCtx, a.cfg.Playback.StreamURL); err != nil {
			a.SessionError(domain.ErrorCodeAudioOutput, err.Error())
		}
	}
	a.SessionStateChanged(domain.SessionStateDisabled, domain.SessionReasonUserDisabled)
}

func (a *App) shutdown(context.Context) {
	if a.cancel != nil {
		a.cancel()
	}
	if a.controller != nil {
		a.controller.Close()
	}
	if a.stream != nil {
		a.stream.Stop()
	}
}

// EnableTranslation asks for the microphone and starts listening.
func (a *App) EnableTranslation() (domain.Status, error) {
	if err := a.requireReady(); err != nil {
		return domain.Status{}, err
	}
	if err := a.controller.Enable(a.ctx); err != nil {
		if errors.Is(err, domain.ErrCapabilityUnavailable) {
			return a.controller.Status(), nil
		}
		return a.controller.Status(), err
	}
	return a.controller.Status(), nil
}

// DisableTranslation stops listening and restores the music volume.
func (a *App) DisableTranslation() (domain.Status, error) {
	if err := a.requireReady(); err != nil {
		return domain.Status{}, err
	}
	a.controller.Disable()
	return a.controller.Status(), nil
}

// SetLanguage changes the listener's language.
func (a *App) SetLanguage(code string) (domain.Status, error) {
	if err := a.requireReady(); err != nil {
		return domain.Status{}, err
	}
	if err := a.controller.SetUserLanguage(code); err != nil {
		return a.controller.Status(), err
	}
	return a.controller.Status(), nil
}

// SetMultiParticipant toggles group conversation mode.
func (a *App) SetMultiParticipant(on bool) (domain.Status, error) {
	if err := a.requireReady(); err != nil {
		return domain.Status{}, err
	}
	if err := a.controller.SetMultiParticipant(on); err != nil {
		return a.controller.Status(), err
	}
	return a.controller.Status(), nil
}

// PlayStream switches the background stream.
func (a *App) PlayStream(url string) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	if err := a.stream.Play(a.ctx, url); err != nil {
		a.SessionError(domain.ErrorCodeAudioOutput, err.Error())
		return err
	}
	return nil
}

// StopStream silences the background stream.
func (a *App) StopStream() {
	if a.stream != nil {
		a.stream.Stop()
	}
}

// GetStatus returns the current session status.
func (a *App) GetStatus() domain.Status {
	if a.controller == nil {
		if a.bootErr != nil {
			return domain.Status{State: domain.SessionStateDisabled, Message: a.bootErr.Error()}
		}
		return domain.Status{State: domain.SessionStateDisabled}
	}
	return a.controller.Status()
}

// GetHistory returns recent translations, newest first.
func (a *App) GetHistory() []domain.Translation {
	if a.controller == nil {
		return nil
	}
	return a.controller.History()
}

// GetSupportedLanguages lists the languages a listener may choose.
func (a *App) GetSupportedLanguages() []domain.Language {
	return append([]domain.Language(nil), domain.SupportedLanguages...)
}

// GetRuntimeInfo returns non-sensitive config for the UI.
func (a *App) GetRuntimeInfo() map[string]string {
	if a.bootErr != nil {
		return map[string]string{"error": a.bootErr.Error()}
	}

	translatorModel := a.cfg.Gemini.Model
	if a.cfg.Translator == config.TranslatorOpenAI {
		translatorModel = a.cfg.OpenAI.Model
	}
	return map[string]string{
		"recognizer":       "Deepgram",
		"model":            a.cfg.Deepgram.Model,
		"voice":            a.cfg.Deepgram.TTSModel,
		"translator":       a.cfg.Translator,
		"translatorModel":  translatorModel,
		"userLanguage":     a.cfg.Session.UserLanguage,
		"rulesFile":        a.cfg.Rules.Path,
		"audioInput":       a.cfg.Audio.InputDevice,
		"audioInputFormat": a.cfg.Audio.InputFormat,
		"stream":           a.cfg.Playback.StreamURL,
	}
}

func (a *App) requireReady() error {
	if a.bootErr != nil {
		return a.bootErr
	}
	if a.controller == nil {
		return fmt.Errorf("application is not initialized")
	}
	return nil
}

// SessionStateChanged emits session lifecycle updates to the frontend.
func (a *App) SessionStateChanged(state domain.SessionState, reason domain.SessionStateReason) {
	a.emit(eventSession, map[string]string{
		"state":   string(state),
		"reason":  string(reason),
		"message": sessionReasonMessage(reason),
	})
}

// InterimTranscript emits live recognition text.
func (a *App) InterimTranscript(text string) {
	a.emit(eventInterim, map[string]string{"text": text})
}

// TranslationReady emits a completed translation.
func (a *App) TranslationReady(t domain.Translation) {
	a.emit(eventTranslation, t)
}

// SongIdentified emits a song guess.
func (a *App) SongIdentified(text string) {
	a.emit(eventSong, map[string]string{"text": text})
}

// SpeakersDetected emits the number of distinct voices heard.
func (a *App) SpeakersDetected(count int) {
	a.emit(eventSpeakers, map[string]int{"count": count})
}

// Notice emits a transient, non-blocking message.
func (a *App) Notice(kind domain.NoticeKind, message string) {
	a.emit(eventNotice, map[string]string{
		"kind":    string(kind),
		"title":   noticeTitle(kind),
		"message": message,
	})
}

// SessionError emits backend errors to the UI.
func (a *App) SessionError(code domain.ErrorCode, detail string) {
	a.emit(eventError, map[string]string{
		"code":    string(code),
		"message": errorMessage(code, detail),
		"detail":  detail,
	})
}

func (a *App) emit(name string, payload any) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, name, payload)
}

func sessionReasonMessage(reason domain.SessionStateReason) string {
	switch reason {
	case domain.SessionReasonUserDisabled:
		return "Translation off"
	case domain.SessionReasonPermissionRequested:
		return "Waiting for microphone access"
	case domain.SessionReasonPermissionDenied:
		return "Microphone access denied"
	case domain.SessionReasonListeningStarted:
		return "Listening"
	case domain.SessionReasonSegmentEnded:
		return "Recognition paused; restarting"
	case domain.SessionReasonListeningRestarted:
		return "Listening resumed"
	case domain.SessionReasonReconfigured:
		return "Settings changed; listening restarted"
	case domain.SessionReasonCaptureFailed:
		return "Speech recognition stopped after an error"
	case domain.SessionReasonCapabilityUnavailable:
		return "Speech recognition is not available"
	default:
		return ""
	}
}

func noticeTitle(kind domain.NoticeKind) string {
	switch kind {
	case domain.NoticeMicrophoneRequested:
		return "Microphone Access"
	case domain.NoticeListening:
		return "Translation Mode Active"
	case domain.NoticeNativeSpeech:
		return "Voice Detected"
	case domain.NoticeForeignSpeech:
		return "Foreign Language Detected"
	case domain.NoticeSongIdentified:
		return "Song Identified"
	case domain.NoticeTranslationFailed:
		return "Translation Error"
	default:
		return ""
	}
}

func errorMessage(code domain.ErrorCode, detail string) string {
	switch code {
	case domain.ErrorCodeStartup:
		return "Startup failed"
	case domain.ErrorCodeCapabilityUnavailable:
		return "Speech recognition is not supported here"
	case domain.ErrorCodePermissionDenied:
		return "Microphone access denied"
	case domain.ErrorCodeCapture:
		return "Speech recognition error"
	case domain.ErrorCodeAudioOutput:
		return "Audio output issue"
	default:
		if detail == "" {
			return "Unknown error"
		}
		return detail
	}
}
