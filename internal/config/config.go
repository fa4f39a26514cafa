package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"livetranslate/internal/domain"
)

// Translator backends.
const (
	TranslatorGemini = "gemini"
	TranslatorOpenAI = "openai"
)

// Config stores runtime configuration.
type Config struct {
	Deepgram   DeepgramConfig
	Gemini     GeminiConfig
	OpenAI     OpenAIConfig
	Translator string
	Audio      AudioConfig
	Playback   PlaybackConfig
	Rules      RulesConfig
	Session    SessionConfig
	Metrics    MetricsConfig
	LogLevel   slog.Level
}

type DeepgramConfig struct {
	APIKey      string
	APIBaseURL  string
	Model       string
	Language    string
	SmartFormat bool
	TTSModel    string
	// ListenerOnly recognizes only the user language instead of detecting it.
	ListenerOnly bool
}

type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type AudioConfig struct {
	RecorderCommand string
	InputFormat     string
	InputDevice     string
	SampleRate      int
	Channels        int
}

type PlaybackConfig struct {
	SampleRate int
	StreamURL  string
}

type RulesConfig struct {
	Path           string
	IterationLimit int
}

type SessionConfig struct {
	ChunkSize        int
	UserLanguage     string
	MultiParticipant bool
	DrainInterval    time.Duration
	TranslateTimeout time.Duration
}

type MetricsConfig struct {
	Addr string
}

// Load resolves configuration from a .env file in the working directory,
// environment variables and defaults. Variables already set win over .env.
func Load() (Config, error) {
	_ = godotenv.Load()

	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, errors.New("could not determine home directory")
	}

	cfg := Config{
		Deepgram: DeepgramConfig{
			APIKey:       strings.TrimSpace(os.Getenv("DEEPGRAM_API_KEY")),
			APIBaseURL:   envOrDefault("DEEPGRAM_API_BASE", "https://api.deepgram.com/v1"),
			Model:        envOrDefault("DEEPGRAM_MODEL", "nova-3"),
			Language:     strings.TrimSpace(os.Getenv("DEEPGRAM_LANGUAGE")),
			SmartFormat:  envOrDefaultBool("DEEPGRAM_SMART_FORMAT", true),
			TTSModel:     envOrDefault("DEEPGRAM_TTS_MODEL", "aura-2-thalia-en"),
			ListenerOnly: envOrDefaultBool("DEEPGRAM_LISTENER_LANGUAGE_ONLY", false),
		},
		Gemini: GeminiConfig{
			APIKey:  firstNonEmpty(os.Getenv("GEMINI_API_KEY"), os.Getenv("GOOGLE_API_KEY")),
			Model:   envOrDefault("GEMINI_MODEL", "gemini-2.0-flash"),
			BaseURL: strings.TrimSpace(os.Getenv("GEMINI_BASE_URL")),
		},
		OpenAI: OpenAIConfig{
			APIKey:  strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
			BaseURL: strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")),
			Model:   envOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		},
		Translator: strings.ToLower(envOrDefault("LIVETRANSLATE_TRANSLATOR", TranslatorGemini)),
		Audio: AudioConfig{
			RecorderCommand: envOrDefault("LIVETRANSLATE_FFMPEG_COMMAND", "ffmpeg"),
			InputFormat:     envOrDefault("LIVETRANSLATE_AUDIO_INPUT_FORMAT", "pulse"),
			InputDevice: firstNonEmpty(
				os.Getenv("LIVETRANSLATE_AUDIO_INPUT_DEVICE"),
				os.Getenv("PULSE_SOURCE"),
				"default",
			),
			SampleRate: envOrDefaultInt("LIVETRANSLATE_SAMPLE_RATE", 16000),
			Channels:   envOrDefaultInt("LIVETRANSLATE_CHANNELS", 1),
		},
		Playback: PlaybackConfig{
			SampleRate: envOrDefaultInt("LIVETRANSLATE_PLAYBACK_SAMPLE_RATE", 24000),
			StreamURL:  strings.TrimSpace(os.Getenv("LIVETRANSLATE_STREAM_URL")),
		},
		Rules: RulesConfig{
			Path:           envOrDefault("LIVETRANSLATE_RULES_FILE", filepath.Join(home, ".config", "livetranslate", "transcript.rules")),
			IterationLimit: envOrDefaultInt("LIVETRANSLATE_RULE_ITERATION_LIMIT", 30),
		},
		Session: SessionConfig{
			ChunkSize:        envOrDefaultInt("LIVETRANSLATE_AUDIO_CHUNK_SIZE", 4096),
			UserLanguage:     envOrDefault("LIVETRANSLATE_USER_LANGUAGE", "en-US"),
			MultiParticipant: envOrDefaultBool("LIVETRANSLATE_MULTI_PARTICIPANT", false),
			DrainInterval:    time.Duration(envOrDefaultInt("LIVETRANSLATE_DRAIN_INTERVAL_MS", 100)) * time.Millisecond,
			TranslateTimeout: time.Duration(envOrDefaultInt("LIVETRANSLATE_TRANSLATE_TIMEOUT_MS", 0)) * time.Millisecond,
		},
		Metrics: MetricsConfig{
			Addr: strings.TrimSpace(os.Getenv("LIVETRANSLATE_METRICS_ADDR")),
		},
		LogLevel: ParseLevel(os.Getenv("LIVETRANSLATE_LOG_LEVEL")),
	}

	if cfg.Audio.SampleRate <= 0 {
		cfg.Audio.SampleRate = 16000
	}
	if cfg.Audio.Channels <= 0 {
		cfg.Audio.Channels = 1
	}
	if cfg.Playback.SampleRate <= 0 {
		cfg.Playback.SampleRate = 24000
	}
	if cfg.Rules.IterationLimit <= 0 {
		cfg.Rules.IterationLimit = 30
	}
	if cfg.Session.ChunkSize < 256 {
		cfg.Session.ChunkSize = 4096
	}
	if cfg.Session.DrainInterval <= 0 {
		cfg.Session.DrainInterval = 100 * time.Millisecond
	}
	if cfg.Session.TranslateTimeout < 0 {
		cfg.Session.TranslateTimeout = 0
	}
	if lang, ok := domain.LookupLanguage(cfg.Session.UserLanguage); ok {
		cfg.Session.UserLanguage = lang.Code
	} else {
		cfg.Session.UserLanguage = "en-US"
	}
	if cfg.Translator != TranslatorOpenAI {
		cfg.Translator = TranslatorGemini
	}

	return cfg, nil
}

// ParseLevel maps debug/info/warn/error to a slog level, defaulting to info.
func ParseLevel(value string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(value))); err != nil {
		return slog.LevelInfo
	}
	return level
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func envOrDefault(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrDefaultInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrDefaultBool(key string, fallback bool) bool {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	switch value {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}
