package usecase

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"livetranslate/internal/domain"
	"livetranslate/internal/ports"
)

func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting: %s", msg)
}

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	at      time.Time
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	wasActive := !t.stopped && !t.fired
	t.stopped = true
	return wasActive
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	timer := &fakeTimer{at: c.now.Add(d), fn: f}
	c.timers = append(c.timers, timer)
	return timer
}

// Advance moves time forward and runs due callbacks in order, outside the lock.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	now := c.now
	var due []*fakeTimer
	for _, timer := range c.timers {
		if !timer.fired && !timer.stopped && !timer.at.After(now) {
			timer.fired = true
			due = append(due, timer)
		}
	}
	c.mu.Unlock()

	sort.Slice(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
	for _, timer := range due {
		timer.fn()
	}
}

func (c *fakeClock) pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, timer := range c.timers {
		if !timer.fired && !timer.stopped {
			n++
		}
	}
	return n
}

type fakeOutput struct {
	mu      sync.Mutex
	volume  float64
	history []float64
}

func (f *fakeOutput) Volume() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.volume
}

func (f *fakeOutput) SetVolume(v float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.volume = v
	f.history = append(f.history, v)
}

func (f *fakeOutput) snapshotHistory() []float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]float64(nil), f.history...)
}

type fakeMicrophone struct {
	mu    sync.Mutex
	err   error
	calls int
	gate  chan struct{}
}

func (f *fakeMicrophone) RequestAccess(ctx context.Context, _ ports.AudioConfig) error {
	f.mu.Lock()
	f.calls++
	gate := f.gate
	err := f.err
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

type fakeAudioCapture struct {
	mu       sync.Mutex
	err      error
	chunks   [][]byte
	sessions []*fakeAudioSession
}

func (f *fakeAudioCapture) Start(_ context.Context, _ ports.AudioConfig) (ports.AudioSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	session := newFakeAudioSession(f.chunks...)
	f.sessions = append(f.sessions, session)
	return session, nil
}

func (f *fakeAudioCapture) started() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sessions)
}

// fakeAudioSession hands out its chunks and then blocks like a live
// microphone until stopped.
type fakeAudioSession struct {
	mu        sync.Mutex
	chunks    [][]byte
	index     int
	readErr   error
	stopCalls int
	stopCh    chan struct{}
	stopOnce  sync.Once
}

func newFakeAudioSession(chunks ...[]byte) *fakeAudioSession {
	return &fakeAudioSession{chunks: chunks, stopCh: make(chan struct{})}
}

func (f *fakeAudioSession) Read(p []byte) (int, error) {
	f.mu.Lock()
	if f.index < len(f.chunks) {
		n := copy(p, f.chunks[f.index])
		f.index++
		f.mu.Unlock()
		return n, nil
	}
	readErr := f.readErr
	f.mu.Unlock()
	if readErr != nil {
		return 0, readErr
	}
	<-f.stopCh
	return 0, io.EOF
}

func (f *fakeAudioSession) Close() error { return f.Stop() }

func (f *fakeAudioSession) Stop() error {
	f.mu.Lock()
	f.stopCalls++
	f.mu.Unlock()
	f.stopOnce.Do(func() { close(f.stopCh) })
	return nil
}

func (f *fakeAudioSession) stopped() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopCalls
}

type fakeProvider struct {
	mu       sync.Mutex
	err      error
	configs  []ports.StreamingConfig
	sessions []*fakeStreamingSession
}

func (f *fakeProvider) StartStreaming(_ context.Context, cfg ports.StreamingConfig) (ports.StreamingSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	session := newFakeStreamingSession()
	f.sessions = append(f.sessions, session)
	f.configs = append(f.configs, cfg)
	return session, nil
}

func (f *fakeProvider) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sessions)
}

func (f *fakeProvider) session(i int) *fakeStreamingSession {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessions[i]
}

func (f *fakeProvider) config(i int) ports.StreamingConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.configs[i]
}

type fakeStreamingSession struct {
	mu         sync.Mutex
	events     chan domain.TranscriptEvent
	waitErr    error
	closed     bool
	closeCalls int
	closeSend  int
	sent       int
}

func newFakeStreamingSession() *fakeStreamingSession {
	return &fakeStreamingSession{events: make(chan domain.TranscriptEvent, 16)}
}

func (f *fakeStreamingSession) SendAudio(_ []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return errors.New("session closed")
	}
	f.sent++
	return nil
}

func (f *fakeStreamingSession) CloseSend() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closeSend++
	return nil
}

func (f *fakeStreamingSession) Events() <-chan domain.TranscriptEvent { return f.events }

func (f *fakeStreamingSession) Wait() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.waitErr
}

func (f *fakeStreamingSession) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closeCalls++
	if !f.closed {
		f.closed = true
		close(f.events)
	}
	return nil
}

func (f *fakeStreamingSession) emit(event domain.TranscriptEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.events <- event
}

// finish ends the stream as the provider would; a nil err is a normal end.
func (f *fakeStreamingSession) finish(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.waitErr = err
	if !f.closed {
		f.closed = true
		close(f.events)
	}
}

func (f *fakeStreamingSession) closes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closeCalls
}

func (f *fakeStreamingSession) sentChunks() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent
}

type fakeTranslator struct {
	mu       sync.Mutex
	fn       func(req ports.TranslationRequest) (string, error)
	gate     chan struct{}
	requests []ports.TranslationRequest
	inFlight int
	maxSeen  int
}

func (f *fakeTranslator) Translate(ctx context.Context, req ports.TranslationRequest) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.inFlight++
	if f.inFlight > f.maxSeen {
		f.maxSeen = f.inFlight
	}
	gate := f.gate
	fn := f.fn
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if fn != nil {
		return fn(req)
	}
	return "translated: " + req.Text, nil
}

func (f *fakeTranslator) snapshotRequests() []ports.TranslationRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ports.TranslationRequest(nil), f.requests...)
}

func (f *fakeTranslator) maxConcurrent() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxSeen
}

type spoken struct {
	text  string
	voice domain.Voice
}

type fakeSynthesizer struct {
	mu        sync.Mutex
	started   []spoken
	finished  []string
	cancelled []string
	playing   int
	maxPlay   int
	block     bool
	err       error
}

func (f *fakeSynthesizer) Speak(ctx context.Context, text string, voice domain.Voice) error {
	f.mu.Lock()
	f.started = append(f.started, spoken{text: text, voice: voice})
	f.playing++
	if f.playing > f.maxPlay {
		f.maxPlay = f.playing
	}
	block := f.block
	err := f.err
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.playing--
		f.mu.Unlock()
	}()

	if block {
		<-ctx.Done()
		f.mu.Lock()
		f.cancelled = append(f.cancelled, text)
		f.mu.Unlock()
		return ctx.Err()
	}
	f.mu.Lock()
	f.finished = append(f.finished, text)
	f.mu.Unlock()
	return err
}

func (f *fakeSynthesizer) snapshotStarted() []spoken {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]spoken(nil), f.started...)
}

func (f *fakeSynthesizer) snapshotCancelled() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.cancelled...)
}

type fakeDetector map[string]string

func (f fakeDetector) Detect(text string) (string, bool) {
	code, ok := f[text]
	return code, ok
}

type fakeSongs struct {
	mu     sync.Mutex
	result string
	err    error
	calls  []string
}

func (f *fakeSongs) Identify(_ context.Context, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, text)
	return f.result, f.err
}

func (f *fakeSongs) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// fakeFingerprinter uses the chunk itself as the signature.
type fakeFingerprinter struct{}

func (fakeFingerprinter) Fingerprint(pcm []byte) (string, bool) {
	if len(pcm) == 0 {
		return "", false
	}
	return string(pcm), true
}

type fakeRules struct {
	mu        sync.Mutex
	transform string
	err       error
	languages []string
}

func (f *fakeRules) Apply(text string, language string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.languages = append(f.languages, language)
	if f.err != nil {
		return "", f.err
	}
	if f.transform != "" {
		return f.transform, nil
	}
	return text, nil
}

func (f *fakeRules) snapshotLanguages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.languages...)
}

type fakeMetrics struct {
	mu       sync.Mutex
	classes  []string
	ducks    []string
	restarts int
	results  int
	failures int
}

func (f *fakeMetrics) UtteranceClassified(class string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.classes = append(f.classes, class)
}

func (f *fakeMetrics) TranslationCompleted(_ time.Duration, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.failures++
		return
	}
	f.results++
}

func (f *fakeMetrics) QueueDepth(int) {}

func (f *fakeMetrics) Ducked(kind string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ducks = append(f.ducks, kind)
}

func (f *fakeMetrics) SessionRestarted() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.restarts++
}

type fakeEventSink struct {
	mu sync.Mutex

	states       []stateEvent
	interims     []string
	translations []domain.Translation
	songs        []string
	speakers     []int
	notices      []noticeEvent
	errors       []errEvent
}

type stateEvent struct {
	state  domain.SessionState
	reason domain.SessionStateReason
}

type noticeEvent struct {
	kind    domain.NoticeKind
	message string
}

type errEvent struct {
	code   domain.ErrorCode
	detail string
}

func (f *fakeEventSink) SessionStateChanged(state domain.SessionState, reason domain.SessionStateReason) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states = append(f.states, stateEvent{state: state, reason: reason})
}

func (f *fakeEventSink) InterimTranscript(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.interims = append(f.interims, text)
}

func (f *fakeEventSink) TranslationReady(t domain.Translation) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.translations = append(f.translations, t)
}

func (f *fakeEventSink) SongIdentified(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.songs = append(f.songs, text)
}

func (f *fakeEventSink) SpeakersDetected(count int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.speakers = append(f.speakers, count)
}

func (f *fakeEventSink) Notice(kind domain.NoticeKind, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notices = append(f.notices, noticeEvent{kind: kind, message: message})
}

func (f *fakeEventSink) SessionError(code domain.ErrorCode, detail string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors = append(f.errors, errEvent{code: code, detail: detail})
}

func (f *fakeEventSink) snapshotStates() []stateEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]stateEvent(nil), f.states...)
}

func (f *fakeEventSink) lastState() stateEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.states) == 0 {
		return stateEvent{}
	}
	return f.states[len(f.states)-1]
}

func (f *fakeEventSink) snapshotErrors() []errEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]errEvent(nil), f.errors...)
}

func (f *fakeEventSink) snapshotNotices() []noticeEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]noticeEvent(nil), f.notices...)
}

func (f *fakeEventSink) noticeCount(kind domain.NoticeKind) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, notice := range f.notices {
		if notice.kind == kind {
			n++
		}
	}
	return n
}

func (f *fakeEventSink) snapshotTranslations() []domain.Translation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Translation(nil), f.translations...)
}

func (f *fakeEventSink) snapshotSpeakers() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.speakers...)
}

func (f *fakeEventSink) snapshotSongs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.songs...)
}

func (f *fakeEventSink) snapshotInterims() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.interims...)
}
