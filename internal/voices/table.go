package voices

import "github.com/dgnsrekt/langspeak/internal/lang"

// Entry is one row of a capability table.
type Entry struct {
	Base    string    // Base language code
	Variant lang.Code // Best matching variant
	Voice   string    // Voice providing the variant
}

// Table maps base language codes to the variant the engine renders them
// with. The zero Table resolves nothing.
type Table struct {
	identity    string
	passthrough bool
	defaultLang lang.Code
	variants    map[string]Entry
	order       []string
}

// NewTable builds a table from voices in engine order. When several voices
// share a base code the first one wins.
func NewTable(identity string, defaultLang lang.Code, list []Voice) Table {
	t := Table{
		identity:    identity,
		defaultLang: defaultLang,
		variants:    make(map[string]Entry, len(list)),
	}
	for _, v := range list {
		base := v.Language.Base()
		if base == "" {
			continue
		}
		if _, ok := t.variants[base]; ok {
			continue
		}
		t.variants[base] = Entry{Base: base, Variant: v.Language, Voice: v.ID}
		t.order = append(t.order, base)
	}
	return t
}

// PassthroughTable returns a table that resolves every code to itself, for
// engines whose voices cannot be listed.
func PassthroughTable(identity string, defaultLang lang.Code) Table {
	return Table{identity: identity, passthrough: true, defaultLang: defaultLang}
}

// Lookup returns the variant for code's base language.
func (t Table) Lookup(code lang.Code) (lang.Code, bool) {
	if code.IsDefault() {
		return lang.Default, false
	}
	if t.passthrough {
		return code, true
	}
	e, ok := t.variants[code.Base()]
	if !ok {
		return lang.Default, false
	}
	return e.Variant, true
}

// Passthrough reports whether the table assumes every language is supported.
func (t Table) Passthrough() bool {
	return t.passthrough
}

// Default returns the active voice's own language, if known.
func (t Table) Default() lang.Code {
	return t.defaultLang
}

// Identity returns the engine identity the table was built for.
func (t Table) Identity() string {
	return t.identity
}

// Len returns the number of enumerated base languages.
func (t Table) Len() int {
	return len(t.order)
}

// Entries returns the rows in engine order.
func (t Table) Entries() []Entry {
	out := make([]Entry, 0, len(t.order))
	for _, base := range t.order {
		out = append(out, t.variants[base])
	}
	return out
}
