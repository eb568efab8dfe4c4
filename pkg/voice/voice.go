// Package voice wraps platform speech engines behind small ports and
// implements the dictation and readback semantics: only final recognition
// results reach the text buffer, and starting a new utterance always cancels
// the one in flight. Speech failures reset the listening/speaking flags and
// are logged, never surfaced destructively.
package voice

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/aretw0/lifecycle"
)

// Fragment is one recognition result. Interim fragments are progressive
// guesses; only final fragments are appended to the buffer.
type Fragment struct {
	Text  string
	Final bool
}

// Recognizer is the speech-to-text port (continuous, interim+final).
// The fragment channel closes when recognition ends, including on engine
// errors.
type Recognizer interface {
	Start(ctx context.Context) (<-chan Fragment, error)
	Stop() error
}

// Synthesizer is the text-to-speech port. Speak returns a channel that
// yields exactly one value when the utterance completes or fails; Cancel
// aborts any utterance in flight.
type Synthesizer interface {
	Speak(ctx context.Context, text string, rate float64) (<-chan error, error)
	Cancel()
}

// Rates is the fixed set of user-selectable speech rates.
var Rates = []float64{0.5, 0.75, 1, 1.25, 1.5, 2}

// Dictation pipes final recognition fragments into a text sink, each
// followed by a single space.
type Dictation struct {
	rec    Recognizer
	sink   func(string)
	logger *slog.Logger

	mu        sync.Mutex
	listening bool
	stop      func()
}

// NewDictation wires a recognizer to a sink (typically NoteForm.AppendDictation).
func NewDictation(rec Recognizer, sink func(string), logger *slog.Logger) *Dictation {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dictation{rec: rec, sink: sink, logger: logger}
}

// Start begins continuous recognition. A second Start while listening is a
// no-op.
func (d *Dictation) Start(ctx context.Context) error {
	d.mu.Lock()
	if d.listening {
		d.mu.Unlock()
		return nil
	}
	fragments, err := d.rec.Start(ctx)
	if err != nil {
		d.mu.Unlock()
		return fmt.Errorf("failed to start recognition: %w", err)
	}
	d.listening = true
	runCtx, cancel := context.WithCancel(ctx)
	d.stop = cancel
	d.mu.Unlock()

	lifecycle.Go(runCtx, func(ctx context.Context) error {
		defer d.setListening(false)
		for {
			select {
			case <-ctx.Done():
				return nil
			case f, ok := <-fragments:
				if !ok {
					return nil
				}
				if f.Final && f.Text != "" {
					d.sink(f.Text + " ")
				}
			}
		}
	}, lifecycle.WithErrorHandler(func(err error) {
		d.logger.Error("dictation loop failed", "error", err)
		d.setListening(false)
	}))
	return nil
}

// Stop ends recognition and resets the listening flag.
func (d *Dictation) Stop() {
	d.mu.Lock()
	stop := d.stop
	d.stop = nil
	d.listening = false
	d.mu.Unlock()

	if stop != nil {
		stop()
	}
	if err := d.rec.Stop(); err != nil {
		d.logger.Debug("recognizer stop failed", "error", err)
	}
}

func (d *Dictation) setListening(v bool) {
	d.mu.Lock()
	d.listening = v
	d.mu.Unlock()
}

// Listening reports whether recognition is active.
func (d *Dictation) Listening() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.listening
}

// Readback speaks note text aloud at a user-selected rate.
type Readback struct {
	synth  Synthesizer
	logger *slog.Logger

	mu       sync.Mutex
	rate     float64
	speaking bool
}

// NewReadback creates a Readback at the default rate (1x).
func NewReadback(synth Synthesizer, logger *slog.Logger) *Readback {
	if logger == nil {
		logger = slog.Default()
	}
	return &Readback{synth: synth, logger: logger, rate: 1}
}

// SetRate selects a speech rate; values outside the fixed set are rejected.
func (r *Readback) SetRate(rate float64) error {
	for _, allowed := range Rates {
		if rate == allowed {
			r.mu.Lock()
			r.rate = rate
			r.mu.Unlock()
			return nil
		}
	}
	return fmt.Errorf("unsupported speech rate %v", rate)
}

// Rate returns the current speech rate.
func (r *Readback) Rate() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rate
}

// Speak cancels any in-flight utterance and speaks the given text.
// Blank text is ignored. Completion and error both clear the speaking flag.
func (r *Readback) Speak(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	r.synth.Cancel()

	r.mu.Lock()
	rate := r.rate
	r.mu.Unlock()

	done, err := r.synth.Speak(ctx, text, rate)
	if err != nil {
		return fmt.Errorf("failed to start speech: %w", err)
	}
	r.setSpeaking(true)

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer r.setSpeaking(false)
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-done:
			if ok && err != nil {
				r.logger.Debug("speech ended with error", "error", err)
			}
			return nil
		}
	}, lifecycle.WithErrorHandler(func(err error) {
		r.logger.Error("readback loop failed", "error", err)
		r.setSpeaking(false)
	}))
	return nil
}

// Stop cancels speech and clears the speaking flag.
func (r *Readback) Stop() {
	r.synth.Cancel()
	r.setSpeaking(false)
}

func (r *Readback) setSpeaking(v bool) {
	r.mu.Lock()
	r.speaking = v
	r.mu.Unlock()
}

// Speaking reports whether an utterance is in flight.
func (r *Readback) Speaking() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.speaking
}
