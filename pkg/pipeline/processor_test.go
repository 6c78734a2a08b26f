package pipeline

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/mynaparrot/speech-relay/pkg/config"
	"github.com/mynaparrot/speech-relay/pkg/insights"
	"github.com/mynaparrot/speech-relay/pkg/supervisor"
	"github.com/mynaparrot/speech-relay/pkg/wsconn"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recordingRaw struct {
	mu      sync.Mutex
	written []string
}

func (r *recordingRaw) ReadMessage() (int, []byte, error) { return 0, nil, io.EOF }
func (r *recordingRaw) SetWriteDeadline(time.Time) error  { return nil }
func (r *recordingRaw) Close() error                      { return nil }

func (r *recordingRaw) WriteMessage(_ int, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.written = append(r.written, string(data))
	return nil
}

func (r *recordingRaw) frames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.written...)
}

type stubTranslator struct {
	mu     sync.Mutex
	calls  int
	result string
	err    error
	block  chan struct{}
}

func (s *stubTranslator) Translate(ctx context.Context, text, src, tgt string) (*insights.TranslationResult, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()

	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	out := s.result
	return &insights.TranslationResult{
		TranslatedText: &out,
		OriginalText:   text,
		SourceLanguage: src,
		TargetLanguage: tgt,
	}, nil
}

func (s *stubTranslator) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type stubSpeaker struct {
	mu    sync.Mutex
	texts []string
}

func (s *stubSpeaker) Speak(ctx context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts = append(s.texts, text)
	return nil
}

// countingScheduler records scheduled task names and delegates to a supervisor.
type countingScheduler struct {
	*supervisor.Supervisor
	mu    sync.Mutex
	names []string
}

func (c *countingScheduler) Schedule(name string, op supervisor.Operation) error {
	c.mu.Lock()
	c.names = append(c.names, name)
	c.mu.Unlock()
	return c.Supervisor.Schedule(name, op)
}

func (c *countingScheduler) scheduled() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.names...)
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newScheduler() *countingScheduler {
	return &countingScheduler{
		Supervisor: supervisor.New(context.Background(), logrus.NewEntry(testLogger())),
	}
}

func translationConf(source, target string) *config.TranslationConfig {
	return &config.TranslationConfig{
		Enabled:        true,
		SourceLanguage: source,
		TargetLanguage: target,
	}
}

func consumer() (*wsconn.Conn, *recordingRaw) {
	raw := &recordingRaw{}
	return wsconn.New(raw), raw
}

const finalJa = `{"recogText":"こんにちは","isFinal":true,"language":{"code":"ja-JP"}}`

func TestProcessMessage_InterimWithoutTarget(t *testing.T) {
	tr := &stubTranslator{result: "Hello"}
	p := New(translationConf("ja", "en"), tr, &stubSpeaker{}, nil, testLogger())
	tasks := newScheduler()

	p.ProcessMessage(tasks, nil, func() *wsconn.Conn { return nil },
		`{"recogText":"こんにちは","isFinal":false,"language":{"code":"ja-JP"}}`)

	tasks.Drain()
	assert.Empty(t, tasks.scheduled())
	assert.Zero(t, tr.callCount())
}

func TestProcessMessage_FinalIsTranslated(t *testing.T) {
	tr := &stubTranslator{result: "Hello"}
	p := New(translationConf("ja", "en"), tr, nil, nil, testLogger())
	tasks := newScheduler()
	target, raw := consumer()

	p.ProcessMessage(tasks, nil, func() *wsconn.Conn { return target }, finalJa)

	require.Eventually(t, func() bool { return len(raw.frames()) == 2 }, time.Second, time.Millisecond)
	tasks.Drain()

	frames := raw.frames()
	assert.Equal(t, `{"recogText":"こんにちは","isFinal":true,"languageCode":"ja-JP","type":"original"}`, frames[0])
	assert.JSONEq(t, `{"translated_text":"Hello","original_text":"こんにちは","source_language":"ja","target_language":"en","type":"translated"}`, frames[1])
	assert.Equal(t, []string{TaskTranslation}, tasks.scheduled())
}

func TestProcessMessage_LanguageMismatchSkipsTranslation(t *testing.T) {
	tr := &stubTranslator{result: "Hello"}
	p := New(translationConf("en", "ja"), tr, nil, nil, testLogger())
	tasks := newScheduler()
	target, raw := consumer()

	p.ProcessMessage(tasks, nil, func() *wsconn.Conn { return target }, finalJa)
	tasks.Drain()

	assert.Equal(t, []string{`{"recogText":"こんにちは","isFinal":true,"languageCode":"ja-JP","type":"original"}`}, raw.frames())
	assert.Empty(t, tasks.scheduled())
	assert.Zero(t, tr.callCount())
}

func TestProcessMessage_MalformedFrameHasNoSideEffects(t *testing.T) {
	tr := &stubTranslator{result: "Hello"}
	sp := &stubSpeaker{}
	p := New(translationConf("ja", "en"), tr, sp, nil, testLogger())
	tasks := newScheduler()
	target, raw := consumer()

	for _, frame := range []string{"not json", `{"recogText":true}`, "[]"} {
		p.ProcessMessage(tasks, nil, func() *wsconn.Conn { return target }, frame)
	}
	tasks.Drain()

	assert.Empty(t, raw.frames())
	assert.Empty(t, tasks.scheduled())
	assert.Empty(t, sp.texts)
}

func TestProcessMessage_TranslatorFailureSendsNothing(t *testing.T) {
	tr := &stubTranslator{err: errors.New("upstream unavailable")}
	p := New(translationConf("ja", "en"), tr, nil, nil, testLogger())
	tasks := newScheduler()
	target, raw := consumer()

	p.ProcessMessage(tasks, nil, func() *wsconn.Conn { return target }, finalJa)
	tasks.Drain()

	assert.Len(t, raw.frames(), 1)
	assert.Equal(t, 1, tr.callCount())
	assert.True(t, target.IsOpen())
}

func TestProcessMessage_SpeechAndEmptyFinalText(t *testing.T) {
	tr := &stubTranslator{result: ""}
	sp := &stubSpeaker{}
	p := New(translationConf("ja", "en"), tr, sp, nil, testLogger())
	tasks := newScheduler()
	target, raw := consumer()

	p.ProcessMessage(tasks, nil, func() *wsconn.Conn { return target },
		`{"recogText":"","isFinal":true,"language":{"code":"ja-JP"}}`)
	tasks.Drain()

	assert.ElementsMatch(t, []string{TaskTranslation, TaskSpeech}, tasks.scheduled())
	assert.Equal(t, []string{""}, sp.texts)
	require.Len(t, raw.frames(), 2)
}

func TestProcessMessage_DisplayBeforeEnrichment(t *testing.T) {
	tr := &stubTranslator{result: "Hello"}
	target, raw := consumer()

	var framesAtSchedule int
	tasks := &orderScheduler{onSchedule: func() { framesAtSchedule = len(raw.frames()) }}
	p := New(translationConf("ja", "en"), tr, nil, nil, testLogger())

	p.ProcessMessage(tasks, nil, func() *wsconn.Conn { return target }, finalJa)

	assert.Equal(t, 1, framesAtSchedule)
}

func TestProcessMessage_TranslationTargetResolvedOnCompletion(t *testing.T) {
	tr := &stubTranslator{result: "Hello", block: make(chan struct{})}
	p := New(translationConf("ja", "en"), tr, nil, nil, testLogger())
	tasks := newScheduler()

	first, firstRaw := consumer()
	second, secondRaw := consumer()
	current := first
	var mu sync.Mutex
	lookup := func() *wsconn.Conn {
		mu.Lock()
		defer mu.Unlock()
		return current
	}

	p.ProcessMessage(tasks, nil, lookup, finalJa)
	require.Eventually(t, func() bool { return tr.callCount() == 1 }, time.Second, time.Millisecond)

	mu.Lock()
	current = second
	mu.Unlock()
	close(tr.block)
	tasks.Drain()

	assert.Len(t, firstRaw.frames(), 1)
	assert.Len(t, secondRaw.frames(), 1)
}

func TestProcessMessage_DrainCancelsPendingTranslation(t *testing.T) {
	tr := &stubTranslator{result: "Hello", block: make(chan struct{})}
	p := New(translationConf("ja", "en"), tr, nil, nil, testLogger())
	tasks := newScheduler()
	target, raw := consumer()

	p.ProcessMessage(tasks, nil, func() *wsconn.Conn { return target }, finalJa)
	require.Eventually(t, func() bool { return tr.callCount() == 1 }, time.Second, time.Millisecond)

	tasks.Drain()
	assert.Len(t, raw.frames(), 1)
	assert.Zero(t, tasks.Len())
}

type orderScheduler struct {
	onSchedule func()
}

func (o *orderScheduler) Schedule(string, supervisor.Operation) error {
	o.onSchedule()
	return nil
}
