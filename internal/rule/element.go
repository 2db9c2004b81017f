package rule

import (
	"strings"

	"soundlaw/internal/source"
)

// ElemKind tags the syntactic forms a rule segment is built from.
type ElemKind uint8

const (
	// ElemLiteral is a bare symbol run: `t`, `st`, `kʰ`.
	ElemLiteral ElemKind = iota
	// ElemClass is a descriptor class: `[voiceless,plosive]`. Tokens with a
	// leading '!' negate that descriptor for the lookup.
	ElemClass
	// ElemSet is a literal alternative set: `{p,t,k}`.
	ElemSet
	// ElemOptional is an optional group: `(s)` or `(p,t)`. Expansion appends
	// the empty alternative last.
	ElemOptional
	// ElemNegated is `!X` where X is a symbol, class or set. Expands to the
	// symbol universe minus the operand's expansion.
	ElemNegated
	// ElemBoundary is the word edge marker `#`.
	ElemBoundary
	// ElemPlaceholder is `_`, the slot the target occupies in an environment.
	ElemPlaceholder
	// ElemDeletion is `0`: empty target, deletion marker elsewhere.
	ElemDeletion
)

func (k ElemKind) String() string {
	switch k {
	case ElemLiteral:
		return "literal"
	case ElemClass:
		return "class"
	case ElemSet:
		return "set"
	case ElemOptional:
		return "optional"
	case ElemNegated:
		return "negated"
	case ElemBoundary:
		return "boundary"
	case ElemPlaceholder:
		return "placeholder"
	case ElemDeletion:
		return "deletion"
	}
	return "invalid"
}

// Element is one syntactic unit of a rule segment. Which payload fields are
// set depends on Kind.
type Element struct {
	Kind ElemKind
	Span source.Span

	// Text holds the symbol run for ElemLiteral.
	Text string
	// Tokens holds the descriptor tokens for ElemClass, '!' prefixes kept.
	Tokens []string
	// Alts holds one element sequence per comma-separated alternative for
	// ElemSet and ElemOptional.
	Alts [][]Element
	// Operand holds the negated element for ElemNegated.
	Operand *Element
}

func LiteralElem(span source.Span, text string) Element {
	return Element{Kind: ElemLiteral, Span: span, Text: text}
}

func ClassElem(span source.Span, tokens []string) Element {
	return Element{Kind: ElemClass, Span: span, Tokens: tokens}
}

func SetElem(span source.Span, alts [][]Element) Element {
	return Element{Kind: ElemSet, Span: span, Alts: alts}
}

func OptionalElem(span source.Span, alts [][]Element) Element {
	return Element{Kind: ElemOptional, Span: span, Alts: alts}
}

func NegatedElem(span source.Span, operand Element) Element {
	return Element{Kind: ElemNegated, Span: span, Operand: &operand}
}

func BoundaryElem(span source.Span) Element {
	return Element{Kind: ElemBoundary, Span: span}
}

func PlaceholderElem(span source.Span) Element {
	return Element{Kind: ElemPlaceholder, Span: span}
}

func DeletionElem(span source.Span) Element {
	return Element{Kind: ElemDeletion, Span: span}
}

// String reconstructs the notation for the element. Spans are not preserved;
// the result is for messages and dumps.
func (e Element) String() string {
	switch e.Kind {
	case ElemLiteral:
		return e.Text
	case ElemClass:
		return "[" + strings.Join(e.Tokens, ",") + "]"
	case ElemSet:
		return "{" + joinAlts(e.Alts) + "}"
	case ElemOptional:
		return "(" + joinAlts(e.Alts) + ")"
	case ElemNegated:
		if e.Operand == nil {
			return "!"
		}
		return "!" + e.Operand.String()
	case ElemBoundary:
		return "#"
	case ElemPlaceholder:
		return "_"
	case ElemDeletion:
		return "0"
	}
	return "?"
}

func formatElements(elems []Element) string {
	var sb strings.Builder
	for _, e := range elems {
		sb.WriteString(e.String())
	}
	return sb.String()
}

func joinAlts(alts [][]Element) string {
	parts := make([]string, len(alts))
	for i, alt := range alts {
		parts[i] = formatElements(alt)
	}
	return strings.Join(parts, ",")
}
