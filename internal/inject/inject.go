// Package inject inserts language change directives into speech sequences so
// every text run is spoken by a voice variant that can render it.
package inject

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/langspeak/internal/lang"
	"github.com/dgnsrekt/langspeak/internal/speech"
)

// Segmentation controls how text runs are grouped before classification.
type Segmentation string

const (
	// SegmentRun classifies every text run on its own.
	SegmentRun Segmentation = "run"
	// SegmentGroup classifies consecutive text runs with no directive between
	// them as one segment.
	SegmentGroup Segmentation = "group"
)

// DefaultMinRunLength is the shortest trimmed run, in runes, that is classified.
const DefaultMinRunLength = 3

// Capabilities resolves a language code to the variant the active voice
// renders it with.
type Capabilities interface {
	Lookup(code lang.Code) (lang.Code, bool)
}

// ClassifyFunc returns the language of text, or lang.Default when unknown.
type ClassifyFunc func(text string) lang.Code

// Options tune the injection policy.
type Options struct {
	// Fallback is tried in order when detection is unknown or unrenderable.
	Fallback []lang.Code
	// MinRunLength skips classification for shorter segments. Zero classifies
	// everything that is not blank.
	MinRunLength int
	// Segmentation selects run or group segmentation. Empty means run.
	Segmentation Segmentation
	// RevertAtEnd appends a revert directive when this call switched language
	// and the sequence does not already end on the default language.
	RevertAtEnd bool
	// DefaultLanguage is the active voice's own language.
	DefaultLanguage lang.Code
	// KeepDefaultDialect skips directives for segments the default voice
	// already speaks, while no directive is in effect.
	KeepDefaultDialect bool
}

// Injector rewrites sequences. The zero value is usable.
type Injector struct {
	Options
	Logger *log.Logger
}

// New creates an injector.
func New(opts Options, logger *log.Logger) *Injector {
	return &Injector{Options: opts, Logger: logger}
}

// Inject returns a new sequence with language change directives inserted.
// seq is not modified. Text runs keep their content and order.
//
// Host directives are passed through and become the language in effect.
// Runs after one are still classified, and a change is inserted only when the
// run is not compatible with that language.
func (in *Injector) Inject(seq speech.Sequence, caps Capabilities, classify ClassifyFunc) (speech.Sequence, error) {
	if err := seq.Validate(); err != nil {
		return nil, err
	}
	if !seq.HasText() {
		return seq.Clone(), nil
	}
	if caps == nil || classify == nil {
		return nil, fmt.Errorf("inject: capabilities and classifier are required")
	}

	logger := in.logger()
	r := rewriter{
		opts:     in.Options,
		caps:     caps,
		classify: classify,
		memo:     make(map[string]lang.Code),
		logger:   logger,
		out:      make(speech.Sequence, 0, len(seq)+2),
	}

	for i := 0; i < len(seq); {
		switch it := seq[i].(type) {
		case speech.LanguageChange:
			r.hostChange(it)
			i++
		case speech.TextRun:
			end := r.segmentEnd(seq, i)
			r.segment(seq[i:end])
			i = end
		default:
			r.out = append(r.out, it)
			i++
		}
	}

	if in.RevertAtEnd && r.inserted > 0 && !r.current.IsDefault() {
		r.out = append(r.out, speech.LanguageChange{})
		logger.Debug("Appended revert to default language")
	}

	if r.inserted > 0 {
		logger.Debug("Injected language changes", "count", r.inserted, "sequence", r.out.String())
	}
	return r.out, nil
}

func (in *Injector) logger() *log.Logger {
	l := in.Logger
	if l == nil {
		l = log.Default()
	}
	return l.WithPrefix("sequence")
}

// rewriter holds the state of one Inject call.
type rewriter struct {
	opts     Options
	caps     Capabilities
	classify ClassifyFunc
	memo     map[string]lang.Code
	logger   *log.Logger

	out      speech.Sequence
	current  lang.Code
	inserted int
}

// hostChange passes a pre-existing directive through. A repeat of the
// directive immediately before it is dropped.
func (r *rewriter) hostChange(lc speech.LanguageChange) {
	if n := len(r.out); n > 0 {
		if prev, ok := r.out[n-1].(speech.LanguageChange); ok && prev.Code == lc.Code {
			return
		}
	}
	r.out = append(r.out, lc)
	r.current = lc.Code
}

func (r *rewriter) segmentEnd(seq speech.Sequence, start int) int {
	end := start + 1
	if r.opts.Segmentation != SegmentGroup {
		return end
	}
	for end < len(seq) {
		if _, ok := seq[end].(speech.TextRun); !ok {
			break
		}
		end++
	}
	return end
}

func (r *rewriter) segment(runs speech.Sequence) {
	if code, ok := r.decide(joinText(runs)); ok && r.needsChange(code) {
		r.out = append(r.out, speech.LanguageChange{Code: code})
		r.current = code
		r.inserted++
	}
	r.out = append(r.out, runs...)
}

func (r *rewriter) needsChange(code lang.Code) bool {
	if r.current.IsDefault() {
		if r.opts.KeepDefaultDialect && !r.opts.DefaultLanguage.IsDefault() &&
			lang.Compatible(r.opts.DefaultLanguage, code) {
			return false
		}
		return true
	}
	return !lang.Compatible(r.current, code)
}

// decide returns the variant a segment should be spoken in. ok is false when
// the segment should stay under the current directive.
func (r *rewriter) decide(text string) (lang.Code, bool) {
	text = strings.TrimSpace(text)
	if text == "" || utf8.RuneCountInString(text) < r.opts.MinRunLength {
		return lang.Default, false
	}

	detected, seen := r.memo[text]
	if !seen {
		detected = r.classify(text)
		r.memo[text] = detected
	}

	if !detected.IsDefault() {
		if variant, ok := r.caps.Lookup(detected); ok {
			return variant, true
		}
		r.logger.Debug("No voice for detected language, trying fallback", "language", detected)
	}

	for _, fb := range r.opts.Fallback {
		if variant, ok := r.caps.Lookup(fb); ok {
			return variant, true
		}
	}

	r.logger.Debug("No compatible voice, keeping current language",
		"error", speech.ErrNoCompatibleVoice, "detected", detected, "current", r.current)
	return lang.Default, false
}

func joinText(runs speech.Sequence) string {
	if len(runs) == 1 {
		return runs[0].(speech.TextRun).Content
	}
	parts := make([]string, 0, len(runs))
	for _, it := range runs {
		parts = append(parts, it.(speech.TextRun).Content)
	}
	return strings.Join(parts, " ")
}
