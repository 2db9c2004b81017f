// Package rule lexes, parses and compiles sound-change rule notation.
//
// A rule has the shape
//
//	Target -> Replacement / Environment
//
// where the environment is optional (defaulting to "_") and each section is
// a sequence of elements: literal symbols, [descriptor] classes, {a,b}
// alternative sets, (optional) groups, ! negations, the '#' word boundary,
// the '0' deletion/insertion marker and the '_' placeholder. Binding a rule
// against a catalog expands the notation into a concrete change map and a
// transliterator ready to apply.
package rule

import (
	"soundlaw/internal/source"
)

// Kind classifies rule notation tokens.
type Kind uint8

const (
	// EOF marks the end of the rule.
	EOF Kind = iota
	// Invalid marks a byte sequence the lexer rejected.
	Invalid
	// Symbol is a run of phone symbols or a descriptor word.
	Symbol
	// Arrow separates target from replacement ("->").
	Arrow
	// Slash separates replacement from environment.
	Slash
	// Underscore is the environment placeholder.
	Underscore
	// Bang negates the following symbol, class or set.
	Bang
	// Hash is the word boundary marker.
	Hash
	// Zero marks deletion (in targets) or insertion (in replacements).
	Zero
	// LBracket opens a descriptor class.
	LBracket
	// RBracket closes a descriptor class.
	RBracket
	// LBrace opens an alternative set.
	LBrace
	// RBrace closes an alternative set.
	RBrace
	// LParen opens an optional group.
	LParen
	// RParen closes an optional group.
	RParen
	// Comma separates descriptors and set alternatives.
	Comma
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case Invalid:
		return "Invalid"
	case Symbol:
		return "Symbol"
	case Arrow:
		return "Arrow"
	case Slash:
		return "Slash"
	case Underscore:
		return "Underscore"
	case Bang:
		return "Bang"
	case Hash:
		return "Hash"
	case Zero:
		return "Zero"
	case LBracket:
		return "LBracket"
	case RBracket:
		return "RBracket"
	case LBrace:
		return "LBrace"
	case RBrace:
		return "RBrace"
	case LParen:
		return "LParen"
	case RParen:
		return "RParen"
	case Comma:
		return "Comma"
	}
	return "Unknown"
}

// Token is one lexed unit of rule notation.
type Token struct {
	Kind Kind
	Span source.Span
	Text string
}
