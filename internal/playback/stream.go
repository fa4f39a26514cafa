package playback

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"livetranslate/internal/ports"
)

// Decoder opens a remote audio source as raw PCM.
type Decoder interface {
	Open(ctx context.Context, source string, sampleRate int) (ports.AudioSession, error)
}

// StreamPlayer plays one background stream and owns its volume.
// It implements ports.AudioOutput so the pipeline can duck it.
type StreamPlayer struct {
	device  Device
	decoder Decoder
	logger  *slog.Logger

	mu      sync.Mutex
	volume  float64
	source  ports.AudioSession
	player  Player
	current string
}

func NewStreamPlayer(device Device, decoder Decoder, logger *slog.Logger) *StreamPlayer {
	if logger == nil {
		logger = slog.Default()
	}
	return &StreamPlayer{device: device, decoder: decoder, logger: logger, volume: 1}
}

func (p *StreamPlayer) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

func (p *StreamPlayer) SetVolume(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = clampVolume(v)
	if p.player != nil {
		p.player.SetVolume(p.volume)
	}
}

// Play replaces whatever is playing with url.
func (p *StreamPlayer) Play(ctx context.Context, url string) error {
	if p.decoder == nil {
		return errors.New("no stream decoder configured")
	}
	p.Stop()

	source, err := p.decoder.Open(ctx, url, p.device.SampleRate())
	if err != nil {
		return err
	}
	player, err := p.device.NewPlayer(source)
	if err != nil {
		_ = source.Stop()
		return err
	}

	p.mu.Lock()
	p.source = source
	p.player = player
	p.current = url
	player.SetVolume(p.volume)
	p.mu.Unlock()

	player.Play()
	p.logger.Info("stream playback started", "url", url)
	return nil
}

// Playing reports the url currently playing, if any.
func (p *StreamPlayer) Playing() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current, p.player != nil
}

func (p *StreamPlayer) Stop() {
	p.mu.Lock()
	player, source, url := p.player, p.source, p.current
	p.player, p.source, p.current = nil, nil, ""
	p.mu.Unlock()

	if player != nil {
		player.Pause()
		_ = player.Close()
	}
	if source != nil {
		if err := source.Stop(); err != nil {
			p.logger.Debug("stream decoder stopped with error", "url", url, "err", err)
		}
	}
}
