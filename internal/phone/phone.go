// Package phone defines the immutable phone value type and the descriptor
// matching policy shared by catalog queries and rule expansion.
package phone

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"soundlaw/internal/ipa"
)

// ErrEmptySymbol is returned when a phone is constructed from "".
var ErrEmptySymbol = errors.New("phone symbol is empty")

// Phone is a single speech sound: a symbol plus the sorted, deduplicated
// set of articulatory descriptors derived from it. Phones are values;
// construct them with New and never mutate the descriptor slice.
//
// Identity is the descriptor set, not the symbol: two symbols that map to
// the same descriptors (such as ASCII 'g' and IPA 'ɡ') compare equal.
type Phone struct {
	Symbol      string
	Descriptors []string
}

// New builds a Phone from symbol. The symbol is NFD-normalized, every rune
// is resolved through lookup, and the collected labels are merged: the
// "diacritic" marker is stripped, the rest are sorted and deduplicated.
func New(symbol string, lookup ipa.Lookup) (Phone, error) {
	if symbol == "" {
		return Phone{}, ErrEmptySymbol
	}

	normalized := ipa.Normalize(symbol)
	descriptors := make([]string, 0, 8)
	for _, r := range normalized {
		d, err := lookup.Descriptors(r)
		if err != nil {
			return Phone{}, fmt.Errorf("phone %q: %w", symbol, err)
		}
		descriptors = append(descriptors, d...)
	}

	descriptors = slices.DeleteFunc(descriptors, func(s string) bool {
		return s == "diacritic"
	})
	slices.Sort(descriptors)
	descriptors = slices.Compact(descriptors)

	return Phone{Symbol: normalized, Descriptors: descriptors}, nil
}

// MustNew is New for static tables and tests; it panics on error.
func MustNew(symbol string, lookup ipa.Lookup) Phone {
	p, err := New(symbol, lookup)
	if err != nil {
		panic(err)
	}
	return p
}

// Equal compares phones by descriptor set only.
func (p Phone) Equal(other Phone) bool {
	return slices.Equal(p.Descriptors, other.Descriptors)
}

// Key returns a stable map key derived from the descriptor set. Phones that
// compare Equal share a Key.
func (p Phone) Key() string {
	return strings.Join(p.Descriptors, "\x1f")
}

// HasDescriptor reports whether d is in the phone's descriptor set.
func (p Phone) HasDescriptor(d string) bool {
	_, found := slices.BinarySearch(p.Descriptors, d)
	return found
}

// Matches applies the matching policy (see Match) against the phone's
// descriptor set.
func (p Phone) Matches(tokens []string, exact bool) bool {
	return Match(tokens, p.Descriptors, exact)
}

func (p Phone) String() string {
	return p.Symbol
}
