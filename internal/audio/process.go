package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"
)

const (
	startupGrace = 250 * time.Millisecond
	stopTimeout  = 1200 * time.Millisecond
)

// startPCMProcess runs an ffmpeg-compatible command whose stdout is raw PCM.
// A process that dies within the startup grace period is reported as an error.
func startPCMProcess(ctx context.Context, command string, args []string) (*pcmProcess, error) {
	cmd := exec.CommandContext(ctx, command, args...)
	stderr := &syncBuffer{}
	cmd.Stderr = stderr
	// Orphaned children can hold stderr open after ffmpeg is gone.
	cmd.WaitDelay = stopTimeout

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create ffmpeg stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	waitErr := make(chan error, 1)
	go func() {
		waitErr <- cmd.Wait()
		close(waitErr)
	}()

	select {
	case err := <-waitErr:
		if err != nil {
			return nil, fmt.Errorf("ffmpeg exited before audio started: %w: %s", err, stderr.Trimmed())
		}
		return nil, errors.New("ffmpeg exited before audio started")
	case <-time.After(startupGrace):
	}

	return &pcmProcess{
		stdout:  stdout,
		stderr:  stderr,
		process: cmd.Process,
		waitErr: waitErr,
	}, nil
}

// pcmProcess implements ports.AudioSession over a child process.
type pcmProcess struct {
	stdout io.ReadCloser
	stderr *syncBuffer

	process *os.Process
	waitErr <-chan error

	stopOnce sync.Once
	stopErr  error
}

func (p *pcmProcess) Read(b []byte) (int, error) {
	return p.stdout.Read(b)
}

func (p *pcmProcess) Close() error {
	return p.Stop()
}

// Stop interrupts the process, killing it if it ignores the interrupt.
func (p *pcmProcess) Stop() error {
	p.stopOnce.Do(func() {
		if p.process != nil {
			_ = p.process.Signal(os.Interrupt)
		}

		select {
		case err, ok := <-p.waitErr:
			if ok {
				p.stopErr = ignoreExitStatus(err)
			}
		case <-time.After(stopTimeout):
			if p.process != nil {
				_ = p.process.Kill()
			}
			if err, ok := <-p.waitErr; ok {
				p.stopErr = ignoreExitStatus(err)
			}
		}

		if closeErr := p.stdout.Close(); closeErr != nil && !errors.Is(closeErr, os.ErrClosed) && p.stopErr == nil {
			p.stopErr = closeErr
		}

		if p.stopErr != nil {
			if detail := p.stderr.Trimmed(); detail != "" {
				p.stopErr = fmt.Errorf("%w: %s", p.stopErr, detail)
			}
		}
	})

	return p.stopErr
}

// ignoreExitStatus drops exit-status errors; an interrupted ffmpeg exits non-zero.
func ignoreExitStatus(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil
	}
	return err
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) Trimmed() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.TrimSpace(b.buf.String())
}
