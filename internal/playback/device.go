// Package playback renders PCM audio through the system output device.
package playback

import (
	"fmt"
	"io"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// Player is one playing audio source on a Device.
type Player interface {
	Play()
	Pause()
	IsPlaying() bool
	Volume() float64
	SetVolume(v float64)
	Close() error
}

// Device creates players reading mono signed 16-bit little-endian PCM.
type Device interface {
	SampleRate() int
	NewPlayer(r io.Reader) (Player, error)
}

// OtoDevice is a Device backed by the process-wide oto context.
// The context is opened on first use so headless runs never touch audio hardware.
type OtoDevice struct {
	sampleRate int

	once sync.Once
	ctx  *oto.Context
	err  error
}

func NewOtoDevice(sampleRate int) *OtoDevice {
	if sampleRate <= 0 {
		sampleRate = 24000
	}
	return &OtoDevice{sampleRate: sampleRate}
}

func (d *OtoDevice) SampleRate() int {
	return d.sampleRate
}

func (d *OtoDevice) NewPlayer(r io.Reader) (Player, error) {
	d.once.Do(func() {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   d.sampleRate,
			ChannelCount: 1,
			Format:       oto.FormatSignedInt16LE,
		})
		if err != nil {
			d.err = fmt.Errorf("failed to open audio output: %w", err)
			return
		}
		<-ready
		d.ctx = ctx
	})
	if d.err != nil {
		return nil, d.err
	}
	return d.ctx.NewPlayer(r), nil
}
