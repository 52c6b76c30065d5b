package detect

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/langspeak/internal/lang"
	"github.com/dgnsrekt/langspeak/internal/speech"
)

// Unknown is returned when no eligible language was identified.
const Unknown = lang.Default

// Policy selects which classifier results are acceptable. It is read from
// configuration on every sequence.
type Policy struct {
	// Whitelist holds the languages eligible for detection. Empty means all.
	Whitelist []lang.Code
	// MinConfidence discards candidates scoring lower.
	MinConfidence float64
}

// Allows reports whether c passes the whitelist.
func (p Policy) Allows(c lang.Code) bool {
	return len(p.Whitelist) == 0 || lang.Contains(p.Whitelist, c)
}

func (p Policy) fingerprint() string {
	var b strings.Builder
	for _, c := range p.Whitelist {
		b.WriteString(string(c))
		b.WriteByte(',')
	}
	b.WriteByte('|')
	b.WriteString(strconv.FormatFloat(p.MinConfidence, 'g', -1, 64))
	return b.String()
}

// Adapter applies a Policy to a Classifier. Failures never escape: they
// classify as Unknown.
type Adapter struct {
	classifier Classifier
	cache      *Cache
	err        error
	logger     *log.Logger
}

// NewAdapter wraps classifier. cache may be nil.
func NewAdapter(classifier Classifier, cache *Cache, logger *log.Logger) *Adapter {
	if logger == nil {
		logger = log.Default()
	}
	return &Adapter{
		classifier: classifier,
		cache:      cache,
		logger:     logger.WithPrefix("detect"),
	}
}

// Unavailable returns an adapter for a classifier that failed to load. It
// classifies everything as Unknown.
func Unavailable(err error, logger *log.Logger) *Adapter {
	a := NewAdapter(nil, nil, logger)
	a.err = fmt.Errorf("%w: %v", speech.ErrClassifierUnavailable, err)
	return a
}

// Err returns the reason the classifier is unavailable, or nil.
func (a *Adapter) Err() error {
	return a.err
}

// Cache returns the result cache, or nil.
func (a *Adapter) Cache() *Cache {
	return a.cache
}

// Classify returns the best eligible language for text, or Unknown.
func (a *Adapter) Classify(text string, p Policy) lang.Code {
	text = strings.TrimSpace(text)
	if text == "" || a.err != nil {
		return Unknown
	}

	key := p.fingerprint() + "\x00" + text
	if a.cache != nil {
		if code, ok := a.cache.Get(key); ok {
			return code
		}
	}

	candidates, err := a.Candidates(text, p)
	if err != nil {
		a.logger.Debug("Detection error", "error", err)
		return Unknown
	}

	code := Unknown
	if len(candidates) > 0 {
		code = candidates[0].Code
	}
	a.logger.Debug("Detected language", "language", code, "text", text)

	if a.cache != nil {
		a.cache.Put(key, code)
	}
	return code
}

// Candidates returns the classifier's ranked guesses that pass p.
func (a *Adapter) Candidates(text string, p Policy) (out []Candidate, err error) {
	if a.err != nil {
		return nil, a.err
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("classifier panic: %v", r)
		}
	}()

	raw, err := a.classifier.Detect(text)
	if err != nil {
		return nil, fmt.Errorf("classifier: %w", err)
	}
	for _, c := range raw {
		if c.Code.IsDefault() || c.Confidence < p.MinConfidence || !p.Allows(c.Code) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}
