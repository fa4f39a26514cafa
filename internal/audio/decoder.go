package audio

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"livetranslate/internal/ports"
)

// FFMPEGDecoder turns a remote audio stream into mono s16le PCM.
type FFMPEGDecoder struct {
	command string
}

func NewFFMPEGDecoder(command string) *FFMPEGDecoder {
	if command == "" {
		command = "ffmpeg"
	}
	return &FFMPEGDecoder{command: command}
}

func (d *FFMPEGDecoder) Open(ctx context.Context, source string, sampleRate int) (ports.AudioSession, error) {
	if strings.TrimSpace(source) == "" {
		return nil, errors.New("no audio stream configured")
	}
	if sampleRate <= 0 {
		sampleRate = 24000
	}

	args := []string{
		"-nostdin",
		"-hide_banner",
		"-loglevel", "warning",
		"-reconnect", "1",
		"-i", source,
		"-vn",
		"-ac", "1",
		"-ar", strconv.Itoa(sampleRate),
		"-f", "s16le",
		"-",
	}
	return startPCMProcess(ctx, d.command, args)
}
