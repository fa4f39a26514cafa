package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"livetranslate/internal/domain"
	"livetranslate/internal/ports"
)

const defaultDrainInterval = 100 * time.Millisecond

// translationQueue sends jobs to the translator one at a time, in arrival
// order. A failed job is dropped and the queue moves on.
type translationQueue struct {
	translator ports.Translator
	clock      Clock
	metrics    ports.PipelineMetrics
	logger     *slog.Logger
	timeout    time.Duration
	pacer      *pacer

	onResult  func(job domain.TranslationJob, translated string)
	onFailure func(job domain.TranslationJob, err error)

	mu   sync.Mutex
	jobs []domain.TranslationJob
	busy bool
	wg   sync.WaitGroup
}

func newTranslationQueue(
	translator ports.Translator,
	clock Clock,
	metrics ports.PipelineMetrics,
	logger *slog.Logger,
	timeout time.Duration,
) *translationQueue {
	return &translationQueue{
		translator: translator,
		clock:      clock,
		metrics:    metrics,
		logger:     logger,
		timeout:    timeout,
		pacer:      newPacer(),
	}
}

func (q *translationQueue) Enqueue(job domain.TranslationJob) {
	q.mu.Lock()
	q.jobs = append(q.jobs, job)
	depth := len(q.jobs)
	q.mu.Unlock()

	q.metrics.QueueDepth(depth)
	q.logger.Debug("translation job queued", "job_id", job.ID, "speculative", job.Speculative, "depth", depth)
}

// Drain starts the head job if nothing is in flight. It reports whether a
// job was started.
func (q *translationQueue) Drain(ctx context.Context) bool {
	q.mu.Lock()
	if q.busy || len(q.jobs) == 0 {
		q.mu.Unlock()
		return false
	}
	job := q.jobs[0]
	q.jobs = q.jobs[1:]
	q.busy = true
	depth := len(q.jobs)
	q.wg.Add(1)
	q.mu.Unlock()

	q.metrics.QueueDepth(depth)
	go q.process(ctx, job)
	return true
}

// Run drains on a fixed tick until ctx is done.
func (q *translationQueue) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = defaultDrainInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			q.Drain(ctx)
		}
	}
}

func (q *translationQueue) process(ctx context.Context, job domain.TranslationJob) {
	defer q.wg.Done()
	defer func() {
		q.mu.Lock()
		q.busy = false
		q.mu.Unlock()
	}()

	callCtx := ctx
	if q.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, q.timeout)
		defer cancel()
	}

	translated, err := q.translator.Translate(callCtx, ports.TranslationRequest{
		Text:               job.Text,
		SourceLang:         job.SourceLang,
		TargetLang:         job.TargetLang,
		PreserveFormatting: true,
		Priority:           jobPriority(job),
	})
	elapsed := q.clock.Now().Sub(job.EnqueuedAt)
	q.metrics.TranslationCompleted(elapsed, err)

	if err != nil {
		q.logger.Warn("translation failed", "job_id", job.ID, "err", err)
		if q.onFailure != nil {
			q.onFailure(job, err)
		}
		return
	}

	q.pacer.Observe(elapsed, domain.Utterance{Text: job.Text}.WordCount())
	q.logger.Debug("translation completed", "job_id", job.ID, "latency", elapsed)
	if q.onResult != nil {
		q.onResult(job, translated)
	}
}

// Busy reports whether a job is in flight.
func (q *translationQueue) Busy() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.busy
}

func (q *translationQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// Wait blocks until the in-flight job, if any, has finished.
func (q *translationQueue) Wait() {
	q.wg.Wait()
}

func jobPriority(job domain.TranslationJob) string {
	if job.Speculative {
		return "low"
	}
	return "normal"
}
