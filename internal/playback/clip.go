package playback

import (
	"bytes"
	"context"
	"fmt"
	"time"
)

const pollInterval = 20 * time.Millisecond

// Clips plays short in-memory PCM clips such as synthesized speech.
type Clips struct {
	device Device
}

func NewClips(device Device) *Clips {
	return &Clips{device: device}
}

// PlayPCM blocks until the clip finished or ctx is cancelled.
func (c *Clips) PlayPCM(ctx context.Context, pcm []byte, sampleRate int, volume float64) error {
	if len(pcm) == 0 {
		return nil
	}
	if sampleRate != c.device.SampleRate() {
		return fmt.Errorf("clip sample rate %d does not match output rate %d", sampleRate, c.device.SampleRate())
	}

	player, err := c.device.NewPlayer(bytes.NewReader(pcm))
	if err != nil {
		return err
	}
	defer player.Close()

	player.SetVolume(clampVolume(volume))
	player.Play()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			player.Pause()
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

func clampVolume(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
