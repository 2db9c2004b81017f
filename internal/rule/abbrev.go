package rule

import (
	"maps"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"soundlaw/internal/translit"
)

// builtinAbbreviations are the single-letter shorthands linguists use in
// rule notation. They are substituted into rule text before lexing.
var builtinAbbreviations = map[string]string{
	"C": "[consonant]",
	"N": "[nasal]",
	"V": "[vowel]",
}

// Abbreviations substitutes descriptor shorthands into rule text. The
// substitution is textual and reuses the transliteration engine that also
// applies compiled rules.
type Abbreviations struct {
	tr    *translit.Transliterator
	table map[string]string
}

// DefaultAbbreviations returns the built-in C/N/V table.
func DefaultAbbreviations() *Abbreviations {
	return &Abbreviations{
		tr:    translit.New(builtinAbbreviations),
		table: builtinAbbreviations,
	}
}

// NewAbbreviations merges language-specific shorthands over the built-ins.
// A key must be a single uppercase letter and must not shadow a built-in.
func NewAbbreviations(extra map[string]string) (*Abbreviations, error) {
	table := make(map[string]string, len(builtinAbbreviations)+len(extra))
	maps.Copy(table, builtinAbbreviations)
	for key, repl := range extra {
		if !validAbbrevKey(key) {
			return nil, &AbbrevKeyError{Key: key}
		}
		if _, taken := builtinAbbreviations[key]; taken {
			return nil, &AbbrevConflictError{Key: key}
		}
		if !validAbbrevValue(repl) {
			return nil, &AbbrevValueError{Key: key, Value: repl}
		}
		table[key] = repl
	}
	return &Abbreviations{tr: translit.New(table), table: table}, nil
}

// Apply substitutes every abbreviation occurrence in the rule text.
func (a *Abbreviations) Apply(text string) string {
	return a.tr.Forward(text)
}

// Keys returns the registered shorthand letters, sorted.
func (a *Abbreviations) Keys() []string {
	keys := make([]string, 0, len(a.table))
	for k := range a.table {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Expansion returns the notation a key stands for.
func (a *Abbreviations) Expansion(key string) (string, bool) {
	v, ok := a.table[key]
	return v, ok
}

func validAbbrevKey(key string) bool {
	r, size := utf8.DecodeRuneInString(key)
	if r == utf8.RuneError || size != len(key) {
		return false
	}
	return unicode.IsUpper(r)
}

// validAbbrevValue запрещает расширения, ломающие разбиение правила.
func validAbbrevValue(v string) bool {
	if v == "" {
		return false
	}
	for _, banned := range []string{"->", "/", "_", "\n", "\r"} {
		if strings.Contains(v, banned) {
			return false
		}
	}
	return true
}
