package main

import (
	"errors"
	"testing"

	"livetranslate/internal/config"
	"livetranslate/internal/domain"
)

func TestSessionReasonMessage(t *testing.T) {
	t.Parallel()

	cases := map[domain.SessionStateReason]string{
		domain.SessionReasonUserDisabled:          "Translation off",
		domain.SessionReasonPermissionRequested:   "Waiting for microphone access",
		domain.SessionReasonPermissionDenied:      "Microphone access denied",
		domain.SessionReasonListeningStarted:      "Listening",
		domain.SessionReasonSegmentEnded:          "Recognition paused; restarting",
		domain.SessionReasonListeningRestarted:    "Listening resumed",
		domain.SessionReasonReconfigured:          "Settings changed; listening restarted",
		domain.SessionReasonCaptureFailed:         "Speech recognition stopped after an error",
		domain.SessionReasonCapabilityUnavailable: "Speech recognition is not available",
	}

	for reason, want := range cases {
		reason := reason
		want := want
		t.Run(string(reason), func(t *testing.T) {
			t.Parallel()
			if got := sessionReasonMessage(reason); got != want {
				t.Fatalf("unexpected message: %q", got)
			}
		})
	}

	if got := sessionReasonMessage("unknown"); got != "" {
		t.Fatalf("expected empty unknown reason message, got %q", got)
	}
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	cases := map[domain.ErrorCode]string{
		domain.ErrorCodeStartup:               "Startup failed",
		domain.ErrorCodeCapabilityUnavailable: "Speech recognition is not supported here",
		domain.ErrorCodePermissionDenied:      "Microphone access denied",
		domain.ErrorCodeCapture:               "Speech recognition error",
		domain.ErrorCodeAudioOutput:           "Audio output issue",
	}
	for code, want := range cases {
		code := code
		want := want
		t.Run(string(code), func(t *testing.T) {
			t.Parallel()
			if got := errorMessage(code, "ignored"); got != want {
				t.Fatalf("unexpected message: %q", got)
			}
		})
	}

	if got := errorMessage("unknown", "detail"); got != "detail" {
		t.Fatalf("expected detail fallback, got %q", got)
	}
	if got := errorMessage("unknown", ""); got != "Unknown error" {
		t.Fatalf("expected unknown fallback, got %q", got)
	}
}

func TestNoticeTitle(t *testing.T) {
	t.Parallel()

	if got := noticeTitle(domain.NoticeNativeSpeech); got != "Voice Detected" {
		t.Fatalf("unexpected title: %q", got)
	}
	if got := noticeTitle(domain.NoticeForeignSpeech); got != "Foreign Language Detected" {
		t.Fatalf("unexpected title: %q", got)
	}
	if got := noticeTitle("other"); got != "" {
		t.Fatalf("expected empty title, got %q", got)
	}
}

func TestRequireReady(t *testing.T) {
	t.Parallel()

	app := &App{}
	if err := app.requireReady(); err == nil {
		t.Fatalf("expected uninitialized error")
	}
	if _, err := app.EnableTranslation(); err == nil {
		t.Fatalf("expected enable to fail before startup")
	}

	bootErr := errors.New("boot")
	app.bootErr = bootErr
	if err := app.requireReady(); !errors.Is(err, bootErr) {
		t.Fatalf("expected boot error, got %v", err)
	}
	if err := app.PlayStream("http://radio.invalid"); !errors.Is(err, bootErr) {
		t.Fatalf("expected boot error, got %v", err)
	}
}

func TestGetStatusWhenNotInitialized(t *testing.T) {
	t.Parallel()

	app := &App{}
	status := app.GetStatus()
	if status.State != domain.SessionStateDisabled || status.Message != "" {
		t.Fatalf("unexpected status: %+v", status)
	}
	if app.GetHistory() != nil {
		t.Fatalf("expected no history")
	}

	app.bootErr = errors.New("boot")
	status = app.GetStatus()
	if status.State != domain.SessionStateDisabled || status.Message != "boot" {
		t.Fatalf("unexpected boot status: %+v", status)
	}
}

func TestGetRuntimeInfo(t *testing.T) {
	t.Parallel()

	app := &App{cfg: config.Config{Translator: config.TranslatorOpenAI}}
	app.cfg.OpenAI.Model = "gpt-4o-mini"
	app.cfg.Gemini.Model = "gemini-2.0-flash"
	if info := app.GetRuntimeInfo(); info["translatorModel"] != "gpt-4o-mini" || info["translator"] != "openai" {
		t.Fatalf("unexpected runtime info: %v", info)
	}

	app.bootErr = errors.New("boot")
	if info := app.GetRuntimeInfo(); info["error"] != "boot" {
		t.Fatalf("expected boot error info, got %v", info)
	}
}

func TestGetSupportedLanguagesReturnsCopy(t *testing.T) {
	t.Parallel()

	app := &App{}
	langs := app.GetSupportedLanguages()
	if len(langs) != len(domain.SupportedLanguages) {
		t.Fatalf("unexpected languages: %v", langs)
	}
	langs[0].Name = "changed"
	if domain.SupportedLanguages[0].Name == "changed" {
		t.Fatalf("expected a copy")
	}
}

func TestEventsWithoutContextAreNoops(t *testing.T) {
	t.Parallel()

	app := &App{}
	app.SessionStateChanged(domain.SessionStateListening, domain.SessionReasonListeningStarted)
	app.InterimTranscript("hola")
	app.TranslationReady(domain.Translation{Original: "hola", Translated: "hello"})
	app.SongIdentified("song")
	app.SpeakersDetected(2)
	app.Notice(domain.NoticeListening, "Listening")
	app.SessionError(domain.ErrorCodeCapture, "boom")
	app.StopStream()
}
