package usecase

import (
	"errors"
	"fmt"
	"io"
	"time"

	"livetranslate/internal/ports"
)

// pumpAudioChunks copies microphone audio into the recognition stream.
// tap, when set, sees every chunk before it is sent. The returned error is
// non-nil only when the microphone itself failed; EOF and a stream that
// stopped accepting audio both end the pump quietly.
func pumpAudioChunks(
	audio ports.AudioSession,
	stream ports.StreamingSession,
	chunkSize int,
	tap func([]byte),
) error {
	if chunkSize < 256 {
		chunkSize = 4096
	}

	buf := make([]byte, chunkSize)
	for {
		n, err := audio.Read(buf)
		if n > 0 {
			if tap != nil {
				tap(buf[:n])
			}
			if sendErr := stream.SendAudio(buf[:n]); sendErr != nil {
				return nil
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				_ = stream.CloseSend()
				return nil
			}
			return fmt.Errorf("audio capture error: %w", err)
		}
	}
}

func waitForStream(session ports.StreamingSession, timeout time.Duration) error {
	done := make(chan error, 1)
	go func() {
		done <- session.Wait()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		_ = session.Close()
		return <-done
	}
}
