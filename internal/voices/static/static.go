// Package static provides voice engines whose capabilities come from
// configuration rather than a speech engine.
package static

import (
	"context"
	"strings"

	"github.com/dgnsrekt/langspeak/internal/lang"
	"github.com/dgnsrekt/langspeak/internal/voices"
)

// Engine is an enumerable engine with a fixed voice list. Each language is
// one voice.
type Engine struct {
	active string
	list   []voices.Voice
}

// New creates an engine with one voice per code. active selects the voice
// whose language is the default; empty selects the first.
func New(active string, codes []lang.Code) *Engine {
	e := &Engine{}
	for _, c := range codes {
		e.list = append(e.list, voices.Voice{ID: string(c), Name: lang.DisplayName(c), Language: c})
	}
	e.active = active
	if e.active == "" && len(e.list) > 0 {
		e.active = e.list[0].ID
	}
	return e
}

// ID implements voices.Engine.
func (e *Engine) ID() string {
	return "static/" + e.active
}

// DefaultLanguage implements voices.Engine.
func (e *Engine) DefaultLanguage() lang.Code {
	for _, v := range e.list {
		if strings.EqualFold(v.ID, e.active) {
			return v.Language
		}
	}
	return lang.Default
}

// Voices implements voices.EnumerableVoices.
func (e *Engine) Voices(ctx context.Context) ([]voices.Voice, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]voices.Voice, len(e.list))
	copy(out, e.list)
	return out, nil
}

// Opaque is an engine that cannot list its voices, such as a remote service
// or a synthesizer without a query API.
type Opaque struct {
	name        string
	defaultLang lang.Code
}

// NewOpaque creates an opaque engine. defaultLang may be lang.Default.
func NewOpaque(name string, defaultLang lang.Code) *Opaque {
	return &Opaque{name: name, defaultLang: defaultLang}
}

// ID implements voices.Engine.
func (o *Opaque) ID() string {
	return "opaque/" + o.name
}

// DefaultLanguage implements voices.Engine.
func (o *Opaque) DefaultLanguage() lang.Code {
	return o.defaultLang
}

// Opaque implements voices.OpaqueVoices.
func (o *Opaque) Opaque() {}
