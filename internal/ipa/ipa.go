// Package ipa maps phonetic symbols to their articulatory descriptors.
//
// The rest of the pipeline never hardcodes phonetic knowledge: phones ask a
// Lookup for the descriptors of each rune in their symbol. The built-in
// Table covers the common IPA chart; callers with richer inventories can
// supply their own Lookup.
package ipa

import (
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// Lookup resolves a single rune to its articulatory descriptors.
type Lookup interface {
	// Descriptors returns the labels for r, e.g. ["bilabial", "consonant",
	// "plosive", "voiceless"] for 'p'. Unknown runes yield UnknownSymbolError.
	Descriptors(r rune) ([]string, error)
}

// UnknownSymbolError reports a rune absent from the descriptor table.
type UnknownSymbolError struct {
	Symbol rune
}

func (e *UnknownSymbolError) Error() string {
	return fmt.Sprintf("symbol %q is not in the descriptor table", e.Symbol)
}

// Normalize decomposes s (NFD) so that precomposed characters and combining
// sequences resolve to the same rune stream. "ã" and "ã" both become
// the base vowel followed by the nasalization mark.
func Normalize(s string) string {
	return norm.NFD.String(s)
}
