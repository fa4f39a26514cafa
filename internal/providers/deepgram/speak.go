package deepgram

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	speakapi "github.com/deepgram/deepgram-go-sdk/v3/pkg/api/speak/v1/rest"
	"github.com/deepgram/deepgram-go-sdk/v3/pkg/client/interfaces"
	speakclient "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/speak"

	"livetranslate/internal/domain"
)

// PCMPlayer plays signed 16-bit little-endian mono audio to completion.
type PCMPlayer interface {
	PlayPCM(ctx context.Context, pcm []byte, sampleRate int, volume float64) error
}

// SpeakConfig controls Deepgram text-to-speech settings.
type SpeakConfig struct {
	APIKey     string
	APIBaseURL string
	// Model is used when no voice is registered for the requested language.
	Model      string
	SampleRate int
	Voices     map[string]string
}

// defaultVoices maps primary language subtags to Aura voices.
var defaultVoices = map[string]string{
	"en": "aura-2-thalia-en",
	"es": "aura-2-celeste-es",
	"fr": "aura-2-agathe-fr",
	"de": "aura-2-julius-de",
	"it": "aura-2-livia-it",
	"ja": "aura-2-fujin-ja",
}

// synthesizeFunc renders text into buf using the given speak options.
type synthesizeFunc func(ctx context.Context, text string, options *interfaces.SpeakOptions, buf *interfaces.RawResponse) error

// Speaker implements ports.SpeechSynthesizer with Deepgram Aura.
type Speaker struct {
	cfg        SpeakConfig
	player     PCMPlayer
	synthesize synthesizeFunc
}

func NewSpeaker(cfg SpeakConfig, player PCMPlayer) *Speaker {
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = defaultAPIBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultVoices["en"]
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 24000
	}
	if cfg.Voices == nil {
		cfg.Voices = defaultVoices
	}
	s := &Speaker{cfg: cfg, player: player}
	s.synthesize = s.restSynthesize
	return s
}

func (s *Speaker) Speak(ctx context.Context, text string, voice domain.Voice) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if strings.TrimSpace(s.cfg.APIKey) == "" {
		return errors.New("DEEPGRAM_API_KEY is not configured")
	}
	if s.player == nil {
		return errors.New("no audio player configured")
	}

	var buf interfaces.RawResponse
	if err := s.synthesize(ctx, text, s.speakOptions(voice.Language), &buf); err != nil {
		return fmt.Errorf("deepgram speak request failed: %w", err)
	}
	if buf.Len() == 0 {
		return errors.New("deepgram speak returned no audio")
	}
	return s.player.PlayPCM(ctx, buf.Bytes(), s.cfg.SampleRate, voice.Volume)
}

func (s *Speaker) speakOptions(language string) *interfaces.SpeakOptions {
	return &interfaces.SpeakOptions{
		Model:      s.modelFor(language),
		Encoding:   "linear16",
		Container:  "none",
		SampleRate: s.cfg.SampleRate,
	}
}

func (s *Speaker) modelFor(language string) string {
	if model, ok := s.cfg.Voices[domain.PrimarySubtag(language)]; ok {
		return model
	}
	return s.cfg.Model
}

// restSynthesize creates a REST speak client per request; the SDK client
// carries no connection state between calls.
func (s *Speaker) restSynthesize(ctx context.Context, text string, options *interfaces.SpeakOptions, buf *interfaces.RawResponse) error {
	client := speakclient.NewREST(s.cfg.APIKey, &interfaces.ClientOptions{Host: speakHost(s.cfg.APIBaseURL)})
	_, err := speakapi.New(client).ToStream(ctx, text, options, buf)
	return err
}

// speakHost reduces the configured API base to the scheme and host the SDK
// expects, leaving it empty for the public endpoint.
func speakHost(base string) string {
	base = strings.TrimSpace(base)
	if base == "" || strings.TrimRight(base, "/") == defaultAPIBaseURL {
		return ""
	}
	parsed, err := url.Parse(base)
	if err != nil || parsed.Host == "" {
		return ""
	}
	return parsed.Scheme + "://" + parsed.Host
}
