// Package voices resolves which language variants the active voice engine can
// render, and caches the answer per engine identity.
package voices

import (
	"context"

	"github.com/dgnsrekt/langspeak/internal/lang"
)

// Voice is one voice an engine reports.
type Voice struct {
	ID       string    // Voice identifier
	Name     string    // Human-readable name
	Language lang.Code // Language variant the voice renders
}

// Engine is the active speech engine and voice.
type Engine interface {
	// ID identifies the engine together with its active voice. A different ID
	// means a different capability set.
	ID() string

	// DefaultLanguage returns the active voice's own language, or lang.Default
	// when unknown.
	DefaultLanguage() lang.Code
}

// EnumerableVoices is an engine that can list its voices.
type EnumerableVoices interface {
	Engine

	// Voices returns every voice in engine-preferred order.
	Voices(ctx context.Context) ([]Voice, error)
}

// OpaqueVoices is an engine that cannot list its voices. Every language is
// assumed to be supported.
type OpaqueVoices interface {
	Engine

	Opaque()
}
