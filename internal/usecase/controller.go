package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"livetranslate/internal/domain"
	"livetranslate/internal/ports"
)

var ErrUnsupportedLanguage = errors.New("unsupported language")

// Config controls capture and pipeline behavior.
type Config struct {
	Audio            ports.AudioConfig
	Streaming        ports.StreamingConfig
	ChunkSize        int
	UserLanguage     string
	MultiParticipant bool
	DrainInterval    time.Duration
	TranslateTimeout time.Duration
}

// Dependencies are the collaborators the controller drives. Only
// Microphone, Audio, Recognizer, Translator and Events are required.
type Dependencies struct {
	Microphone    ports.MicrophoneAccess
	Audio         ports.AudioCapture
	Recognizer    ports.TranscriptionProvider
	Translator    ports.Translator
	Songs         ports.SongIdentifier
	Synthesizer   ports.SpeechSynthesizer
	Output        ports.AudioOutput
	Detector      ports.LanguageDetector
	Fingerprinter ports.SpeakerFingerprinter
	Rules         ports.TranscriptRules
	Metrics       ports.PipelineMetrics
	Events        ports.EventSink
	Logger        *slog.Logger
	Clock         Clock
}

// SessionController coordinates listening, classification, ducking,
// translation and speech.
//
// Every enable, disable, restart and reconfiguration bumps generation.
// Callbacks from a capture session carry the generation they were started
// with and are ignored once it is stale, which keeps a late segment end
// from restarting a disabled session.
type SessionController struct {
	deps       Dependencies
	cfg        Config
	logger     *slog.Logger
	events     ports.EventSink
	metrics    ports.PipelineMetrics
	clock      Clock
	classifier utteranceClassifier
	normalizer transcriptNormalizer
	ducker     *playbackDucker
	queue      *translationQueue
	speech     *speechOutput
	history    *translationHistory
	speakers   *speakerTracker
	songs      *songWatcher

	baseCtx    context.Context
	baseCancel context.CancelFunc
	wg         sync.WaitGroup

	mu                sync.Mutex
	state             domain.SessionState
	session           domain.SessionConfig
	generation        uint64
	capture           *captureSession
	capabilityMissing bool
}

func NewSessionController(deps Dependencies, cfg Config) *SessionController {
	if cfg.ChunkSize < 256 {
		cfg.ChunkSize = 4096
	}
	if cfg.DrainInterval <= 0 {
		cfg.DrainInterval = defaultDrainInterval
	}
	if _, ok := domain.LookupLanguage(cfg.UserLanguage); !ok {
		cfg.UserLanguage = domain.SupportedLanguages[0].Code
	}
	cfg.Streaming.Continuous = true
	cfg.Streaming.InterimResults = true
	if cfg.Streaming.MaxAlternatives <= 0 {
		cfg.Streaming.MaxAlternatives = 1
	}

	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Metrics == nil {
		deps.Metrics = noopMetrics{}
	}
	if deps.Clock == nil {
		deps.Clock = systemClock{}
	}

	baseCtx, baseCancel := context.WithCancel(context.Background())
	c := &SessionController{
		deps:       deps,
		cfg:        cfg,
		logger:     deps.Logger,
		events:     deps.Events,
		metrics:    deps.Metrics,
		clock:      deps.Clock,
		classifier: newUtteranceClassifier(deps.Detector),
		normalizer: newTranscriptNormalizer(deps.Rules, deps.Logger),
		ducker:     newPlaybackDucker(deps.Output, deps.Clock, deps.Metrics),
		queue:      newTranslationQueue(deps.Translator, deps.Clock, deps.Metrics, deps.Logger, cfg.TranslateTimeout),
		speech:     newSpeechOutput(deps.Synthesizer, deps.Events, deps.Logger),
		history:    newTranslationHistory(historyLimit),
		speakers:   newSpeakerTracker(deps.Fingerprinter, deps.Events),
		songs:      newSongWatcher(deps.Songs, deps.Events, deps.Logger),
		baseCtx:    baseCtx,
		baseCancel: baseCancel,
		state:      domain.SessionStateDisabled,
		session: domain.SessionConfig{
			UserLanguage:         cfg.UserLanguage,
			MultiParticipantMode: cfg.MultiParticipant,
			MicPermission:        domain.PermissionUnknown,
		},
	}
	c.queue.onResult = c.handleTranslation
	c.queue.onFailure = c.handleTranslationFailure
	return c
}

// Run drains the translation queue until ctx is done.
func (c *SessionController) Run(ctx context.Context) {
	c.queue.Run(ctx, c.cfg.DrainInterval)
}

// Enable requests microphone access and starts listening once granted.
func (c *SessionController) Enable(ctx context.Context) error {
	c.mu.Lock()
	if c.capabilityMissing {
		c.mu.Unlock()
		return domain.ErrCapabilityUnavailable
	}
	switch c.state {
	case domain.SessionStateAwaitingPermission, domain.SessionStateListening, domain.SessionStateRestarting:
		c.mu.Unlock()
		return nil
	}
	c.generation++
	gen := c.generation
	c.session = c.session.WithEnabled(true)
	c.setStateLocked(domain.SessionStateAwaitingPermission, domain.SessionReasonPermissionRequested)
	audioCfg := c.cfg.Audio
	c.mu.Unlock()

	c.events.Notice(domain.NoticeMicrophoneRequested, "Please allow microphone access to use translation features.")

	accessErr := c.deps.Microphone.RequestAccess(ctx, audioCfg)

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return nil
	}
	if accessErr != nil {
		c.generation++
		c.session = c.session.WithEnabled(false).WithMicPermission(domain.PermissionDenied)
		c.setStateLocked(domain.SessionStatePermissionDenied, domain.SessionReasonPermissionDenied)
		c.mu.Unlock()

		c.logger.Warn("microphone access denied", "err", accessErr)
		c.events.SessionError(domain.ErrorCodePermissionDenied, accessErr.Error())
		c.events.Notice(domain.NoticeMicrophoneRequested,
			"Translation has been disabled. Enable it again and allow microphone access to use translation.")
		return fmt.Errorf("%w: %v", domain.ErrPermissionDenied, accessErr)
	}
	c.session = c.session.WithMicPermission(domain.PermissionGranted)
	c.mu.Unlock()

	c.history.Reset()
	c.speakers.Reset()
	return c.startListening(gen, domain.SessionReasonListeningStarted)
}

// Disable stops listening and restores the playback volume. A translation
// already in flight still completes but is no longer spoken.
func (c *SessionController) Disable() {
	c.mu.Lock()
	if !c.session.Enabled && c.capture == nil {
		c.mu.Unlock()
		return
	}
	c.generation++
	capture := c.capture
	c.capture = nil
	c.session = c.session.WithEnabled(false)
	c.setStateLocked(domain.SessionStateDisabled, domain.SessionReasonUserDisabled)
	c.mu.Unlock()

	if capture != nil {
		capture.Stop()
	}
	c.speech.Cancel()
	c.ducker.Restore()
	c.logger.Info("listening disabled")
}

// SetUserLanguage changes the listener's language, restarting capture if listening.
func (c *SessionController) SetUserLanguage(code string) error {
	lang, ok := domain.LookupLanguage(code)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedLanguage, code)
	}
	return c.reconfigure(func(cfg domain.SessionConfig) domain.SessionConfig {
		return cfg.WithUserLanguage(lang.Code)
	})
}

// SetMultiParticipant toggles multi-participant mode, restarting capture if listening.
func (c *SessionController) SetMultiParticipant(on bool) error {
	return c.reconfigure(func(cfg domain.SessionConfig) domain.SessionConfig {
		return cfg.WithMultiParticipant(on)
	})
}

func (c *SessionController) reconfigure(change func(domain.SessionConfig) domain.SessionConfig) error {
	c.mu.Lock()
	previous := c.session
	c.session = change(c.session)
	if c.session == previous {
		c.mu.Unlock()
		return nil
	}
	if c.state != domain.SessionStateListening && c.state != domain.SessionStateRestarting {
		c.mu.Unlock()
		return nil
	}
	c.generation++
	gen := c.generation
	session := c.session
	capture := c.capture
	c.capture = nil
	c.setStateLocked(domain.SessionStateRestarting, domain.SessionReasonReconfigured)
	c.mu.Unlock()

	if capture != nil {
		capture.Stop()
	}
	c.speakers.Reset()
	c.logger.Info("reconfiguring listening session",
		"language", session.UserLanguage, "multi_participant", session.MultiParticipantMode)
	return c.startListening(gen, domain.SessionReasonReconfigured)
}

func (c *SessionController) startListening(gen uint64, reason domain.SessionStateReason) error {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return nil
	}
	session := c.session
	c.mu.Unlock()

	streaming := c.cfg.Streaming
	streaming.Language = session.UserLanguage

	callbacks := captureCallbacks{
		OnStart:     c.ducker.CaptureOriginal,
		OnUtterance: func(u domain.Utterance) { c.handleUtterance(gen, u) },
		OnEnd:       func() { c.handleSegmentEnd(gen) },
		OnError:     func(err error) { c.handleCaptureError(gen, err) },
	}
	if session.MultiParticipantMode {
		callbacks.Tap = c.speakers.Observe
	}

	capture, err := startCaptureSession(c.baseCtx, c.deps.Audio, c.deps.Recognizer, captureConfig{
		Audio:     c.cfg.Audio,
		Streaming: streaming,
		ChunkSize: c.cfg.ChunkSize,
	}, callbacks)
	if err != nil {
		return c.failStart(gen, err)
	}

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		capture.Stop()
		return nil
	}
	c.capture = capture
	c.setStateLocked(domain.SessionStateListening, reason)
	c.mu.Unlock()

	if reason == domain.SessionReasonListeningStarted {
		c.logger.Info("listening started", "language", session.UserLanguage)
		c.events.Notice(domain.NoticeListening,
			fmt.Sprintf("Listening for non-%s speech...", domain.LanguageName(session.UserLanguage)))
	}
	return nil
}

func (c *SessionController) failStart(gen uint64, err error) error {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return nil
	}
	c.generation++
	c.session = c.session.WithEnabled(false)
	code := domain.ErrorCodeCapture
	reason := domain.SessionReasonCaptureFailed
	if errors.Is(err, domain.ErrCapabilityUnavailable) {
		c.capabilityMissing = true
		code = domain.ErrorCodeCapabilityUnavailable
		reason = domain.SessionReasonCapabilityUnavailable
	}
	c.setStateLocked(domain.SessionStateDisabled, reason)
	c.mu.Unlock()

	c.ducker.Restore()
	c.logger.Warn("failed to start listening", "err", err)
	c.events.SessionError(code, err.Error())
	return err
}

func (c *SessionController) handleSegmentEnd(gen uint64) {
	c.mu.Lock()
	if gen != c.generation || !c.session.Enabled {
		c.mu.Unlock()
		c.ducker.Restore()
		return
	}
	c.generation++
	next := c.generation
	c.capture = nil
	c.setStateLocked(domain.SessionStateRestarting, domain.SessionReasonSegmentEnded)
	c.wg.Add(1)
	c.mu.Unlock()

	c.metrics.SessionRestarted()
	c.logger.Debug("recognition segment ended, restarting")

	go func() {
		defer c.wg.Done()
		_ = c.startListening(next, domain.SessionReasonListeningRestarted)
	}()
}

func (c *SessionController) handleCaptureError(gen uint64, err error) {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return
	}
	c.generation++
	c.capture = nil
	c.session = c.session.WithEnabled(false)
	c.setStateLocked(domain.SessionStateDisabled, domain.SessionReasonCaptureFailed)
	c.mu.Unlock()

	c.ducker.Restore()
	c.logger.Warn("speech capture failed", "err", err)
	c.events.SessionError(domain.ErrorCodeCapture, err.Error())
}

func (c *SessionController) handleUtterance(gen uint64, u domain.Utterance) {
	c.mu.Lock()
	if gen != c.generation || !c.session.Enabled {
		c.mu.Unlock()
		return
	}
	session := c.session
	c.mu.Unlock()

	// Rules follow the language that was spoken, not the listener's.
	rulesLanguage := u.LanguageHint
	if domain.PrimarySubtag(rulesLanguage) == "" {
		rulesLanguage = session.UserLanguage
	}
	u.Text = c.normalizer.Normalize(u.Text, rulesLanguage)
	if u.Text == "" {
		return
	}
	if !u.IsFinal {
		c.events.InterimTranscript(u.Text)
	}

	decision := c.classifier.Classify(u, session)
	c.metrics.UtteranceClassified(string(decision.Class))
	c.logger.Debug("utterance classified",
		"class", decision.Class, "final", u.IsFinal, "confidence", u.Confidence, "source_lang", decision.SourceLang)

	switch decision.Class {
	case ClassNative:
		if c.ducker.DuckOnNativeSpeech() {
			c.events.Notice(domain.NoticeNativeSpeech,
				"The music has been lowered. Please keep your voice down to enjoy the music.")
		}
	case ClassForeign:
		c.ducker.DuckOnForeignSpeech()
		c.events.Notice(domain.NoticeForeignSpeech,
			fmt.Sprintf("Foreign language detected (%s), translating.", domain.LanguageName(decision.SourceLang)))
		c.queue.Enqueue(c.newJob(u.Text, decision.SourceLang, session.UserLanguage, false))
		c.songs.Observe(c.baseCtx, u.Text)
	case ClassForeignCandidate:
		if c.queue.pacer.Allow(c.clock.Now()) {
			c.queue.Enqueue(c.newJob(u.Text, decision.SourceLang, session.UserLanguage, true))
		}
	}
}

func (c *SessionController) newJob(text, source, target string, speculative bool) domain.TranslationJob {
	return domain.TranslationJob{
		ID:          uuid.NewString(),
		Text:        text,
		SourceLang:  source,
		TargetLang:  target,
		EnqueuedAt:  c.clock.Now(),
		Speculative: speculative,
	}
}

func (c *SessionController) handleTranslation(job domain.TranslationJob, translated string) {
	if translated == "" {
		c.handleTranslationFailure(job, errors.New("empty translation"))
		return
	}

	record := domain.Translation{
		Original:   job.Text,
		Translated: translated,
		Timestamp:  c.clock.Now(),
		SourceLang: job.SourceLang,
	}
	c.history.Add(record)
	c.events.TranslationReady(record)

	c.mu.Lock()
	enabled := c.session.Enabled
	c.mu.Unlock()
	if !enabled {
		c.logger.Debug("translation arrived after disable, not speaking", "job_id", job.ID)
		return
	}
	c.speech.Speak(translated, job.TargetLang)
}

func (c *SessionController) handleTranslationFailure(job domain.TranslationJob, err error) {
	c.events.Notice(domain.NoticeTranslationFailed, fmt.Sprintf("Translation failed: %v", err))
}

// Status returns the current backend status.
func (c *SessionController) Status() domain.Status {
	c.mu.Lock()
	state, session := c.state, c.session
	c.mu.Unlock()

	return domain.Status{
		State:        state,
		Config:       session,
		QueueDepth:   c.queue.Len(),
		Speakers:     c.speakers.Count(),
		LastSong:     c.songs.Last(),
		PacingMillis: c.queue.pacer.Delay().Milliseconds(),
	}
}

// History returns recent translations, newest first.
func (c *SessionController) History() []domain.Translation {
	return c.history.Snapshot()
}

// Close disables listening and releases background work.
func (c *SessionController) Close() {
	c.Disable()
	c.baseCancel()
	c.wg.Wait()
	c.queue.Wait()
	c.songs.Wait()
}

func (c *SessionController) setStateLocked(state domain.SessionState, reason domain.SessionStateReason) {
	c.state = state
	c.logger.Debug("session state changed", "state", state, "reason", reason)
	c.events.SessionStateChanged(state, reason)
}

type noopMetrics struct{}

func (noopMetrics) UtteranceClassified(string)                {}
func (noopMetrics) TranslationCompleted(time.Duration, error) {}
func (noopMetrics) QueueDepth(int)                            {}
func (noopMetrics) Ducked(string)                             {}
func (noopMetrics) SessionRestarted()                         {}
