package bootstrap

import (
	"log/slog"

	"livetranslate/internal/audio"
	"livetranslate/internal/config"
	"livetranslate/internal/langdetect"
	"livetranslate/internal/metrics"
	"livetranslate/internal/playback"
	"livetranslate/internal/ports"
	"livetranslate/internal/providers/deepgram"
	"livetranslate/internal/providers/gemini"
	"livetranslate/internal/providers/openai"
	"livetranslate/internal/rules"
	"livetranslate/internal/signature"
	"livetranslate/internal/usecase"
)

// LanguageModel translates text and identifies songs.
type LanguageModel interface {
	ports.Translator
	ports.SongIdentifier
}

// Services is the assembled runtime graph.
type Services struct {
	Controller *usecase.SessionController
	Config     config.Config
	Model      LanguageModel
	Stream     *playback.StreamPlayer
	Metrics    *metrics.Pipeline
	Logger     *slog.Logger
}

// Build wires all backend dependencies for the current runtime. Nothing
// here touches the network or audio hardware; those open on first use.
func Build(eventSink ports.EventSink, logger *slog.Logger) (Services, error) {
	cfg, err := config.Load()
	if err != nil {
		return Services{}, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	rulesEngine, err := rules.Load(cfg.Rules.Path, cfg.Rules.IterationLimit)
	if err != nil {
		return Services{}, err
	}

	capture := audio.NewFFMPEGCapture(cfg.Audio.RecorderCommand)
	device := playback.NewOtoDevice(cfg.Playback.SampleRate)
	stream := playback.NewStreamPlayer(device, audio.NewFFMPEGDecoder(cfg.Audio.RecorderCommand), logger)
	model := NewLanguageModel(cfg)
	pipelineMetrics := metrics.NewPipeline("")

	controller := usecase.NewSessionController(
		usecase.Dependencies{
			Microphone: audio.NewMicrophoneProbe(capture, 0),
			Audio:      capture,
			Recognizer: deepgram.NewProvider(deepgram.Config{
				APIKey:               cfg.Deepgram.APIKey,
				APIBaseURL:           cfg.Deepgram.APIBaseURL,
				Model:                cfg.Deepgram.Model,
				Language:             cfg.Deepgram.Language,
				SmartFormat:          cfg.Deepgram.SmartFormat,
				ListenerLanguageOnly: cfg.Deepgram.ListenerOnly,
			}),
			Translator: model,
			Songs:      model,
			Synthesizer: deepgram.NewSpeaker(deepgram.SpeakConfig{
				APIKey:     cfg.Deepgram.APIKey,
				APIBaseURL: cfg.Deepgram.APIBaseURL,
				Model:      cfg.Deepgram.TTSModel,
				SampleRate: cfg.Playback.SampleRate,
			}, playback.NewClips(device)),
			Output:        stream,
			Detector:      langdetect.New(),
			Fingerprinter: signature.New(signature.Config{SampleRate: cfg.Audio.SampleRate}),
			Rules:         rulesEngine,
			Metrics:       pipelineMetrics,
			Events:        eventSink,
			Logger:        logger,
		},
		usecase.Config{
			Audio: ports.AudioConfig{
				SampleRate:  cfg.Audio.SampleRate,
				Channels:    cfg.Audio.Channels,
				InputFormat: cfg.Audio.InputFormat,
				InputDevice: cfg.Audio.InputDevice,
			},
			Streaming: ports.StreamingConfig{
				SampleRate: cfg.Audio.SampleRate,
				Channels:   cfg.Audio.Channels,
				Encoding:   "linear16",
			},
			ChunkSize:        cfg.Session.ChunkSize,
			UserLanguage:     cfg.Session.UserLanguage,
			MultiParticipant: cfg.Session.MultiParticipant,
			DrainInterval:    cfg.Session.DrainInterval,
			TranslateTimeout: cfg.Session.TranslateTimeout,
		},
	)

	return Services{
		Controller: controller,
		Config:     cfg,
		Model:      model,
		Stream:     stream,
		Metrics:    pipelineMetrics,
		Logger:     logger,
	}, nil
}

// NewLanguageModel returns the configured translation backend.
func NewLanguageModel(cfg config.Config) LanguageModel {
	if cfg.Translator == config.TranslatorOpenAI {
		return openai.New(openai.Config{
			APIKey:  cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.OpenAI.Model,
		})
	}
	return gemini.New(gemini.Config{
		APIKey:  cfg.Gemini.APIKey,
		Model:   cfg.Gemini.Model,
		BaseURL: cfg.Gemini.BaseURL,
	})
}
