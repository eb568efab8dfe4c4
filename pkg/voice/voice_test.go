package voice_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasksage/tasksage/pkg/voice"
)

// fakeRecognizer feeds scripted fragments through the Recognizer port.
type fakeRecognizer struct {
	ch       chan voice.Fragment
	startErr error
	stopped  bool
}

func (f *fakeRecognizer) Start(ctx context.Context) (<-chan voice.Fragment, error) {
	if f.startErr != nil {
		return nil, f.startErr
	}
	return f.ch, nil
}

func (f *fakeRecognizer) Stop() error {
	f.stopped = true
	return nil
}

// fakeSynthesizer records utterances and lets tests complete them manually.
type fakeSynthesizer struct {
	mu       sync.Mutex
	spoken   []string
	rates    []float64
	cancels  int
	done     chan error
	speakErr error
}

func (f *fakeSynthesizer) Speak(ctx context.Context, text string, rate float64) (<-chan error, error) {
	if f.speakErr != nil {
		return nil, f.speakErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.spoken = append(f.spoken, text)
	f.rates = append(f.rates, rate)
	f.done = make(chan error, 1)
	return f.done, nil
}

func (f *fakeSynthesizer) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancels++
}

func collectSink() (func(string), func() string) {
	var mu sync.Mutex
	var buf string
	return func(s string) {
			mu.Lock()
			buf += s
			mu.Unlock()
		}, func() string {
			mu.Lock()
			defer mu.Unlock()
			return buf
		}
}

func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestDictation_OnlyFinalFragmentsReachSink(t *testing.T) {
	rec := &fakeRecognizer{ch: make(chan voice.Fragment, 8)}
	sink, read := collectSink()
	d := voice.NewDictation(rec, sink, nil)

	require.NoError(t, d.Start(context.Background()))
	assert.True(t, d.Listening())

	rec.ch <- voice.Fragment{Text: "hel", Final: false}
	rec.ch <- voice.Fragment{Text: "hello", Final: true}
	rec.ch <- voice.Fragment{Text: "wor", Final: false}
	rec.ch <- voice.Fragment{Text: "world", Final: true}
	rec.ch <- voice.Fragment{Text: "", Final: true}

	eventually(t, func() bool { return read() == "hello world " }, "finals should land with trailing spaces")
}

func TestDictation_StartWhileListeningIsNoop(t *testing.T) {
	rec := &fakeRecognizer{ch: make(chan voice.Fragment)}
	d := voice.NewDictation(rec, func(string) {}, nil)

	require.NoError(t, d.Start(context.Background()))
	require.NoError(t, d.Start(context.Background()), "second start must not error")
	d.Stop()
}

func TestDictation_StartFailure(t *testing.T) {
	rec := &fakeRecognizer{startErr: errors.New("no microphone")}
	d := voice.NewDictation(rec, func(string) {}, nil)

	err := d.Start(context.Background())
	assert.Error(t, err)
	assert.False(t, d.Listening())
}

func TestDictation_EngineEndResetsListening(t *testing.T) {
	rec := &fakeRecognizer{ch: make(chan voice.Fragment)}
	d := voice.NewDictation(rec, func(string) {}, nil)

	require.NoError(t, d.Start(context.Background()))
	close(rec.ch) // engine error path: channel closes

	eventually(t, func() bool { return !d.Listening() }, "listening flag must reset when recognition ends")
}

func TestDictation_Stop(t *testing.T) {
	rec := &fakeRecognizer{ch: make(chan voice.Fragment)}
	d := voice.NewDictation(rec, func(string) {}, nil)

	require.NoError(t, d.Start(context.Background()))
	d.Stop()

	assert.False(t, d.Listening())
	assert.True(t, rec.stopped)
}

func TestReadback_SetRate(t *testing.T) {
	r := voice.NewReadback(&fakeSynthesizer{}, nil)
	assert.Equal(t, float64(1), r.Rate())

	require.NoError(t, r.SetRate(1.5))
	assert.Equal(t, 1.5, r.Rate())

	assert.Error(t, r.SetRate(3))
	assert.Error(t, r.SetRate(0))
	assert.Equal(t, 1.5, r.Rate(), "rejected rates leave the current one alone")
}

func TestReadback_SpeakCancelsInFlight(t *testing.T) {
	synth := &fakeSynthesizer{}
	r := voice.NewReadback(synth, nil)
	ctx := context.Background()

	require.NoError(t, r.Speak(ctx, "first utterance"))
	require.NoError(t, r.Speak(ctx, "second utterance"))

	synth.mu.Lock()
	assert.Equal(t, 2, synth.cancels, "every Speak cancels whatever is in flight")
	assert.Equal(t, []string{"first utterance", "second utterance"}, synth.spoken)
	synth.mu.Unlock()
}

func TestReadback_BlankTextIgnored(t *testing.T) {
	synth := &fakeSynthesizer{}
	r := voice.NewReadback(synth, nil)

	require.NoError(t, r.Speak(context.Background(), "   \n"))
	synth.mu.Lock()
	assert.Empty(t, synth.spoken)
	assert.Equal(t, 0, synth.cancels)
	synth.mu.Unlock()
}

func TestReadback_CompletionClearsSpeaking(t *testing.T) {
	synth := &fakeSynthesizer{}
	r := voice.NewReadback(synth, nil)

	require.NoError(t, r.Speak(context.Background(), "read me"))
	eventually(t, func() bool { return r.Speaking() }, "speaking flag should rise")

	synth.mu.Lock()
	synth.done <- nil
	synth.mu.Unlock()
	eventually(t, func() bool { return !r.Speaking() }, "completion must clear the speaking flag")
}

func TestReadback_ErrorClearsSpeaking(t *testing.T) {
	synth := &fakeSynthesizer{}
	r := voice.NewReadback(synth, nil)

	require.NoError(t, r.Speak(context.Background(), "read me"))
	eventually(t, func() bool { return r.Speaking() }, "speaking flag should rise")

	synth.mu.Lock()
	synth.done <- errors.New("engine died")
	synth.mu.Unlock()
	eventually(t, func() bool { return !r.Speaking() }, "failure must clear the speaking flag too")
}

func TestReadback_Stop(t *testing.T) {
	synth := &fakeSynthesizer{}
	r := voice.NewReadback(synth, nil)

	require.NoError(t, r.Speak(context.Background(), "read me"))
	r.Stop()

	assert.False(t, r.Speaking())
	synth.mu.Lock()
	assert.GreaterOrEqual(t, synth.cancels, 2, "Speak and Stop both cancel")
	synth.mu.Unlock()
}

func TestReadback_SpeakUsesSelectedRate(t *testing.T) {
	synth := &fakeSynthesizer{}
	r := voice.NewReadback(synth, nil)
	require.NoError(t, r.SetRate(0.75))
	require.NoError(t, r.Speak(context.Background(), "slow down"))

	synth.mu.Lock()
	require.Len(t, synth.rates, 1)
	assert.Equal(t, 0.75, synth.rates[0])
	synth.mu.Unlock()
}
