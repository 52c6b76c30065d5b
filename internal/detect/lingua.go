package detect

import (
	"fmt"
	"strings"

	"github.com/pemistahl/lingua-go"

	"github.com/dgnsrekt/langspeak/internal/lang"
)

// LinguaConfig configures the lingua backend.
type LinguaConfig struct {
	// Languages restricts the model. Fewer than two means every language.
	Languages []lang.Code
	// LowAccuracy uses the smaller trigram models only.
	LowAccuracy bool
}

// Lingua is a classifier backed by lingua-go. Language models are loaded by
// the library on first detection.
type Lingua struct {
	detector lingua.LanguageDetector
}

// NewLingua builds the lingua detector.
func NewLingua(cfg LinguaConfig) (*Lingua, error) {
	byCode := make(map[string]lingua.Language)
	for _, l := range lingua.AllLanguages() {
		byCode[strings.ToLower(l.IsoCode639_1().String())] = l
	}

	var selected []lingua.Language
	for _, c := range cfg.Languages {
		l, ok := byCode[c.Base()]
		if !ok {
			return nil, fmt.Errorf("lingua does not support language %q", c)
		}
		selected = append(selected, l)
	}

	var builder lingua.LanguageDetectorBuilder
	if len(selected) >= 2 {
		builder = lingua.NewLanguageDetectorBuilder().FromLanguages(selected...)
	} else {
		builder = lingua.NewLanguageDetectorBuilder().FromAllLanguages()
	}
	if cfg.LowAccuracy {
		builder = builder.WithLowAccuracyMode()
	}
	return &Lingua{detector: builder.Build()}, nil
}

// Detect returns every language with a non-zero confidence, best first.
func (l *Lingua) Detect(text string) ([]Candidate, error) {
	values := l.detector.ComputeLanguageConfidenceValues(text)
	out := make([]Candidate, 0, 5)
	for _, v := range values {
		if v.Value() <= 0 {
			continue
		}
		code, err := lang.Parse(v.Language().IsoCode639_1().String())
		if err != nil {
			continue
		}
		out = append(out, Candidate{Code: code, Confidence: v.Value()})
	}
	return out, nil
}
