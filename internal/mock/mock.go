// Package mock provides mock classifiers, voice engines and sinks for testing.
package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/dgnsrekt/langspeak/internal/detect"
	"github.com/dgnsrekt/langspeak/internal/lang"
	"github.com/dgnsrekt/langspeak/internal/speech"
	"github.com/dgnsrekt/langspeak/internal/voices"
)

// Classifier returns canned candidates per text.
type Classifier struct {
	mu        sync.Mutex
	results   map[string][]detect.Candidate
	fallback  []detect.Candidate
	failure   error
	callCount int
}

// NewClassifier creates a classifier that knows nothing.
func NewClassifier() *Classifier {
	return &Classifier{results: make(map[string][]detect.Candidate)}
}

// Set makes text classify as the given codes, best first.
func (c *Classifier) Set(text string, codes ...string) *Classifier {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results[text] = candidates(codes)
	return c
}

// SetDefault makes every unknown text classify as the given codes.
func (c *Classifier) SetDefault(codes ...string) *Classifier {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fallback = candidates(codes)
	return c
}

// SetFailure makes every call fail with err.
func (c *Classifier) SetFailure(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failure = err
}

// Detect returns the canned candidates for text.
func (c *Classifier) Detect(text string) ([]detect.Candidate, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.callCount++
	if c.failure != nil {
		return nil, c.failure
	}
	if r, ok := c.results[text]; ok {
		return r, nil
	}
	return c.fallback, nil
}

// CallCount returns how many times Detect was called.
func (c *Classifier) CallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.callCount
}

func candidates(codes []string) []detect.Candidate {
	out := make([]detect.Candidate, 0, len(codes))
	conf := 0.9
	for _, code := range codes {
		out = append(out, detect.Candidate{Code: lang.MustParse(code), Confidence: conf})
		conf /= 2
	}
	return out
}

// Engine is an enumerable voice engine.
type Engine struct {
	mu          sync.Mutex
	id          string
	defaultLang lang.Code
	voices      []voices.Voice
	failure     error
	callCount   int
}

// NewEngine creates an engine with one voice per language variant, in order.
func NewEngine(id string, variants ...string) *Engine {
	e := &Engine{id: id}
	for i, v := range variants {
		code := lang.MustParse(v)
		e.voices = append(e.voices, voices.Voice{
			ID:       fmt.Sprintf("%s-voice-%d", id, i+1),
			Name:     "Mock " + code.String(),
			Language: code,
		})
	}
	return e
}

// ID implements voices.Engine.
func (e *Engine) ID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.id
}

// SetID changes the engine identity, as if another voice was selected.
func (e *Engine) SetID(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.id = id
}

// DefaultLanguage implements voices.Engine.
func (e *Engine) DefaultLanguage() lang.Code {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.defaultLang
}

// SetDefaultLanguage sets the active voice's own language.
func (e *Engine) SetDefaultLanguage(code lang.Code) *Engine {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.defaultLang = code
	return e
}

// SetFailure makes Voices fail with err.
func (e *Engine) SetFailure(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failure = err
}

// Voices implements voices.EnumerableVoices.
func (e *Engine) Voices(ctx context.Context) ([]voices.Voice, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.callCount++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if e.failure != nil {
		return nil, e.failure
	}
	out := make([]voices.Voice, len(e.voices))
	copy(out, e.voices)
	return out, nil
}

// CallCount returns how many times Voices was called.
func (e *Engine) CallCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.callCount
}

// OpaqueEngine cannot enumerate its voices.
type OpaqueEngine struct {
	id          string
	defaultLang lang.Code
}

// NewOpaqueEngine creates an opaque engine.
func NewOpaqueEngine(id string, defaultLang lang.Code) *OpaqueEngine {
	return &OpaqueEngine{id: id, defaultLang: defaultLang}
}

// ID implements voices.Engine.
func (e *OpaqueEngine) ID() string { return e.id }

// DefaultLanguage implements voices.Engine.
func (e *OpaqueEngine) DefaultLanguage() lang.Code { return e.defaultLang }

// Opaque implements voices.OpaqueVoices.
func (e *OpaqueEngine) Opaque() {}

// Sink records every sequence it receives.
type Sink struct {
	mu        sync.Mutex
	sequences []speech.Sequence
	failure   error
}

// NewSink creates a recording sink.
func NewSink() *Sink {
	return &Sink{}
}

// SetFailure makes Speak fail with err after recording.
func (s *Sink) SetFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failure = err
}

// Speak records seq.
func (s *Sink) Speak(_ context.Context, seq speech.Sequence) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sequences = append(s.sequences, seq)
	return s.failure
}

// Sequences returns everything spoken so far.
func (s *Sink) Sequences() []speech.Sequence {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]speech.Sequence, len(s.sequences))
	copy(out, s.sequences)
	return out
}

// Last returns the most recent sequence, or nil.
func (s *Sink) Last() speech.Sequence {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sequences) == 0 {
		return nil
	}
	return s.sequences[len(s.sequences)-1]
}
