// Package speech defines speech sequences: ordered text runs interleaved with
// control directives, as handed to a synthesizer.
package speech

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dgnsrekt/langspeak/internal/lang"
)

// Item is one element of a Sequence. The set of items is closed.
type Item interface {
	isItem()
}

// Directive is a non-text Item.
type Directive interface {
	Item
	isDirective()
}

// TextRun is spoken text.
type TextRun struct {
	Content string
}

// LanguageChange switches the rendering language until the next
// LanguageChange. A default Code reverts to the voice's own language.
type LanguageChange struct {
	Code lang.Code
}

// PitchChange offsets the voice pitch, in percent.
type PitchChange struct {
	Offset int
}

// RateChange offsets the speech rate, in percent.
type RateChange struct {
	Offset int
}

// VolumeChange offsets the output volume, in percent.
type VolumeChange struct {
	Offset int
}

// Break inserts silence.
type Break struct {
	Duration time.Duration
}

// Index marks a position the synthesizer reports back when reached.
type Index struct {
	Mark int
}

// CharacterMode toggles spelling out text character by character.
type CharacterMode struct {
	On bool
}

func (TextRun) isItem()        {}
func (LanguageChange) isItem() {}
func (PitchChange) isItem()    {}
func (RateChange) isItem()     {}
func (VolumeChange) isItem()   {}
func (Break) isItem()          {}
func (Index) isItem()          {}
func (CharacterMode) isItem()  {}

func (LanguageChange) isDirective() {}
func (PitchChange) isDirective()    {}
func (RateChange) isDirective()     {}
func (VolumeChange) isDirective()   {}
func (Break) isDirective()          {}
func (Index) isDirective()          {}
func (CharacterMode) isDirective()  {}

// IsRevert reports whether the directive reverts to the default language.
func (l LanguageChange) IsRevert() bool {
	return l.Code.IsDefault()
}

// Sequence is an ordered list of items. Order is meaningful.
type Sequence []Item

// Text is a convenience constructor for a sequence of text runs.
func Text(runs ...string) Sequence {
	seq := make(Sequence, 0, len(runs))
	for _, r := range runs {
		seq = append(seq, TextRun{Content: r})
	}
	return seq
}

// Clone returns a shallow copy of s. Items are values, so the copy is
// independent of s.
func (s Sequence) Clone() Sequence {
	if s == nil {
		return nil
	}
	out := make(Sequence, len(s))
	copy(out, s)
	return out
}

// HasText reports whether s contains at least one TextRun.
func (s Sequence) HasText() bool {
	for _, it := range s {
		if _, ok := it.(TextRun); ok {
			return true
		}
	}
	return false
}

// Texts returns the content of every TextRun in order.
func (s Sequence) Texts() []string {
	var out []string
	for _, it := range s {
		if run, ok := it.(TextRun); ok {
			out = append(out, run.Content)
		}
	}
	return out
}

// LanguageChanges returns every LanguageChange in order.
func (s Sequence) LanguageChanges() []LanguageChange {
	var out []LanguageChange
	for _, it := range s {
		if lc, ok := it.(LanguageChange); ok {
			out = append(out, lc)
		}
	}
	return out
}

// Validate reports the first malformed item in s.
func (s Sequence) Validate() error {
	for i, it := range s {
		switch v := it.(type) {
		case nil:
			return malformed(i, "nil item")
		case TextRun:
			if !utf8.ValidString(v.Content) {
				return malformed(i, "text is not valid UTF-8")
			}
		case LanguageChange:
			if v.Code.IsDefault() {
				continue
			}
			if c, err := lang.Parse(string(v.Code)); err != nil || c != v.Code {
				return malformed(i, fmt.Sprintf("language code %q is not normalized", v.Code))
			}
		case Break:
			if v.Duration < 0 {
				return malformed(i, "negative break")
			}
		}
	}
	return nil
}

func malformed(index int, reason string) error {
	return NewError(ErrMalformedSequence, "sequence", "validate").
		WithContext("index", index).
		WithContext("reason", reason)
}

// String renders s compactly for log lines.
func (s Sequence) String() string {
	parts := make([]string, 0, len(s))
	for _, it := range s {
		parts = append(parts, describe(it))
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func describe(it Item) string {
	switch v := it.(type) {
	case TextRun:
		return fmt.Sprintf("%q", v.Content)
	case LanguageChange:
		return "lang(" + v.Code.String() + ")"
	case PitchChange:
		return fmt.Sprintf("pitch(%d)", v.Offset)
	case RateChange:
		return fmt.Sprintf("rate(%d)", v.Offset)
	case VolumeChange:
		return fmt.Sprintf("volume(%d)", v.Offset)
	case Break:
		return "break(" + v.Duration.String() + ")"
	case Index:
		return fmt.Sprintf("index(%d)", v.Mark)
	case CharacterMode:
		return fmt.Sprintf("chars(%t)", v.On)
	case nil:
		return "<nil>"
	default:
		return fmt.Sprintf("%T", it)
	}
}
