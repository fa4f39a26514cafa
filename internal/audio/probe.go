package audio

import (
	"context"
	"fmt"
	"io"
	"time"

	"livetranslate/internal/domain"
	"livetranslate/internal/ports"
)

const defaultProbeTimeout = 3 * time.Second

// MicrophoneProbe checks microphone access by opening a capture and
// reading the first bytes of audio.
type MicrophoneProbe struct {
	capture ports.AudioCapture
	timeout time.Duration
}

func NewMicrophoneProbe(capture ports.AudioCapture, timeout time.Duration) *MicrophoneProbe {
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	return &MicrophoneProbe{capture: capture, timeout: timeout}
}

func (p *MicrophoneProbe) RequestAccess(ctx context.Context, cfg ports.AudioConfig) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	session, err := p.capture.Start(ctx, cfg)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPermissionDenied, err)
	}

	read := make(chan error, 1)
	go func() {
		buf := make([]byte, 64)
		_, err := io.ReadAtLeast(session, buf, 1)
		read <- err
	}()

	select {
	case err = <-read:
	case <-ctx.Done():
		err = ctx.Err()
	}
	_ = session.Stop()

	if err != nil {
		return fmt.Errorf("%w: no audio from microphone: %v", domain.ErrPermissionDenied, err)
	}
	return nil
}
