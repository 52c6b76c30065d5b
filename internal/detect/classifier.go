// Package detect identifies the language of a text run. It wraps a
// statistical classifier with the configured whitelist and confidence policy.
package detect

import (
	"fmt"

	"github.com/dgnsrekt/langspeak/internal/lang"
)

// Candidate is one ranked guess from a classifier.
type Candidate struct {
	Code       lang.Code
	Confidence float64
}

// Classifier is a statistical language identification model. Candidates are
// returned best first.
type Classifier interface {
	Detect(text string) ([]Candidate, error)
}

// ClassifierFunc adapts a function to the Classifier interface.
type ClassifierFunc func(text string) ([]Candidate, error)

// Detect calls f.
func (f ClassifierFunc) Detect(text string) ([]Candidate, error) {
	return f(text)
}

// Backend names.
const (
	BackendLingua   = "lingua"
	BackendWhatlang = "whatlang"
)

// New builds the named classifier backend.
func New(backend string, cfg LinguaConfig) (Classifier, error) {
	switch backend {
	case BackendLingua, "":
		return NewLingua(cfg)
	case BackendWhatlang:
		return NewWhatlang(), nil
	default:
		return nil, fmt.Errorf("unknown classifier backend %q", backend)
	}
}
