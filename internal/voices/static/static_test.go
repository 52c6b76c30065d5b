package static

import (
	"context"
	"testing"

	"github.com/dgnsrekt/langspeak/internal/lang"
	"github.com/dgnsrekt/langspeak/internal/voices"
)

func TestEngine(t *testing.T) {
	e := New("", []lang.Code{"en-US", "fr-FR"})
	if e.ID() != "static/en-US" {
		t.Errorf("unexpected ID %q", e.ID())
	}
	if e.DefaultLanguage() != "en-US" {
		t.Errorf("expected en-US default, got %q", e.DefaultLanguage())
	}

	var _ voices.EnumerableVoices = e
	list, err := e.Voices(context.Background())
	if err != nil {
		t.Fatalf("Voices failed: %v", err)
	}
	if len(list) != 2 || list[1].Language != "fr-FR" {
		t.Errorf("unexpected voices %+v", list)
	}

	selected := New("fr-fr", []lang.Code{"en-US", "fr-FR"})
	if selected.DefaultLanguage() != "fr-FR" {
		t.Errorf("expected fr-FR default, got %q", selected.DefaultLanguage())
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := e.Voices(ctx); err == nil {
		t.Error("expected error on cancelled context")
	}
}

func TestOpaque(t *testing.T) {
	o := NewOpaque("remote", "es")
	var _ voices.OpaqueVoices = o
	if o.ID() != "opaque/remote" || o.DefaultLanguage() != "es" {
		t.Errorf("unexpected opaque engine %q %q", o.ID(), o.DefaultLanguage())
	}
}
