package lang

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Code
	}{
		{name: "bare code", input: "en", expected: "en"},
		{name: "region", input: "en-US", expected: "en-US"},
		{name: "engine underscore", input: "en_US", expected: "en-US"},
		{name: "mixed case", input: "PT-br", expected: "pt-BR"},
		{name: "padded", input: "  fr ", expected: "fr"},
		{name: "upper classifier output", input: "DE", expected: "de"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("Parse(%q): expected %q, got %q", tt.input, tt.expected, got)
			}
		})
	}
}

func TestParseRejects(t *testing.T) {
	for _, input := range []string{"", "   ", "und", "not a code!"} {
		if _, err := Parse(input); !errors.Is(err, ErrInvalidCode) {
			t.Errorf("Parse(%q): expected ErrInvalidCode, got %v", input, err)
		}
	}
}

func TestParseList(t *testing.T) {
	got, err := ParseList([]string{"en, fr", "de", "", "EN"})
	if err != nil {
		t.Fatalf("ParseList failed: %v", err)
	}
	expected := []Code{"en", "fr", "de"}
	if len(got) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("index %d: expected %q, got %q", i, expected[i], got[i])
		}
	}

	if _, err := ParseList([]string{"en,???"}); err == nil {
		t.Error("expected error for invalid entry")
	}
}

func TestBaseAndCompatible(t *testing.T) {
	if b := MustParse("pt-BR").Base(); b != "pt" {
		t.Errorf("expected base pt, got %q", b)
	}
	if b := Default.Base(); b != "" {
		t.Errorf("expected empty base for default, got %q", b)
	}

	tests := []struct {
		a, b     Code
		expected bool
	}{
		{"en-US", "en-GB", true},
		{"en", "en-GB", true},
		{"en", "fr", false},
		{Default, Default, true},
		{Default, "en", false},
	}
	for _, tt := range tests {
		if got := Compatible(tt.a, tt.b); got != tt.expected {
			t.Errorf("Compatible(%q, %q): expected %v, got %v", tt.a, tt.b, tt.expected, got)
		}
	}
}

func TestContains(t *testing.T) {
	codes := []Code{"en", "fr-FR"}
	if !Contains(codes, "fr") {
		t.Error("expected fr to be contained")
	}
	if Contains(codes, "de") {
		t.Error("expected de not to be contained")
	}
}

func TestDisplayName(t *testing.T) {
	if name := DisplayName("fr"); name != "French" {
		t.Errorf("expected French, got %q", name)
	}
	if name := DisplayName(Default); name != "Default" {
		t.Errorf("expected Default, got %q", name)
	}
	if s := Default.String(); s != "default" {
		t.Errorf("expected default, got %q", s)
	}
}
