package detect

import (
	"github.com/abadojack/whatlanggo"

	"github.com/dgnsrekt/langspeak/internal/lang"
)

// Whatlang is a light classifier backed by whatlanggo. It reports a single
// candidate.
type Whatlang struct{}

// NewWhatlang returns the whatlanggo backend.
func NewWhatlang() *Whatlang {
	return &Whatlang{}
}

// Detect returns the best guess, or nothing when whatlanggo has none.
func (w *Whatlang) Detect(text string) ([]Candidate, error) {
	info := whatlanggo.Detect(text)
	iso := info.Lang.Iso6391()
	if iso == "" {
		return nil, nil
	}
	code, err := lang.Parse(iso)
	if err != nil {
		return nil, nil
	}
	return []Candidate{{Code: code, Confidence: info.Confidence}}, nil
}
