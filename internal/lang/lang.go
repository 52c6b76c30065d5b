// Package lang normalizes and compares language codes used in speech
// sequences, classifier output and voice capability tables.
package lang

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// ErrInvalidCode is returned when a string cannot be read as a language code.
var ErrInvalidCode = errors.New("invalid language code")

// Code is a normalized language tag such as "en" or "pt-BR". The zero value
// means "the voice's default language".
type Code string

// Default is the zero Code.
const Default Code = ""

// Parse normalizes s into a Code. Engine style tags ("en_US") and mixed case
// ("EN-us") are accepted.
func Parse(s string) (Code, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Default, fmt.Errorf("%w: empty", ErrInvalidCode)
	}
	tag, err := language.Parse(strings.ReplaceAll(s, "_", "-"))
	if err != nil {
		return Default, fmt.Errorf("%w %q: %v", ErrInvalidCode, s, err)
	}
	if tag == language.Und {
		return Default, fmt.Errorf("%w %q: undetermined", ErrInvalidCode, s)
	}
	return Code(tag.String()), nil
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(s string) Code {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseList parses every entry of codes, skipping blanks. Entries may themselves
// be comma separated, which is how older settings files store lists.
func ParseList(codes []string) ([]Code, error) {
	var out []Code
	seen := make(map[Code]bool)
	for _, entry := range codes {
		for _, part := range strings.Split(entry, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			c, err := Parse(part)
			if err != nil {
				return nil, err
			}
			if seen[c] {
				continue
			}
			seen[c] = true
			out = append(out, c)
		}
	}
	return out, nil
}

// IsDefault reports whether c is the default-language marker.
func (c Code) IsDefault() bool {
	return c == Default
}

// Base returns the language part of c without script or region ("pt" for "pt-BR").
func (c Code) Base() string {
	if c.IsDefault() {
		return ""
	}
	s := string(c)
	if i := strings.IndexByte(s, '-'); i >= 0 {
		s = s[:i]
	}
	return strings.ToLower(s)
}

// String implements fmt.Stringer.
func (c Code) String() string {
	if c.IsDefault() {
		return "default"
	}
	return string(c)
}

// Compatible reports whether a and b share the same base language. Two
// default codes are compatible with each other and with nothing else.
func Compatible(a, b Code) bool {
	return a.Base() == b.Base()
}

// DisplayName returns an English name for c, or the code itself when none is
// known.
func DisplayName(c Code) string {
	if c.IsDefault() {
		return "Default"
	}
	tag, err := language.Parse(string(c))
	if err != nil {
		return string(c)
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return string(c)
}

// Contains reports whether codes holds a code compatible with c.
func Contains(codes []Code, c Code) bool {
	for _, candidate := range codes {
		if Compatible(candidate, c) {
			return true
		}
	}
	return false
}
