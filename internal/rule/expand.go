package rule

import (
	"fmt"
	"slices"
	"strings"

	"soundlaw/internal/catalog"
	"soundlaw/internal/diag"
	"soundlaw/internal/source"
)

// DefaultExpansionLimit bounds how many concrete combinations a single
// segment or change map may produce. Stacked classes over a large catalog
// multiply fast; hitting the ceiling is an error, not an OOM.
const DefaultExpansionLimit = 65536

// expander resolves parsed elements against a catalog into concrete
// alternative strings.
type expander struct {
	cat      *catalog.Catalog
	limit    int
	reporter diag.Reporter
}

func newExpander(cat *catalog.Catalog, limit int, reporter diag.Reporter) *expander {
	if limit <= 0 {
		limit = DefaultExpansionLimit
	}
	return &expander{cat: cat, limit: limit, reporter: reporter}
}

// segment produces every concrete string the element sequence can stand
// for. The leftmost element varies slowest, so expansion order is stable
// and positional alignment against another segment is well defined.
func (x *expander) segment(elems []Element, seg segment) ([]string, error) {
	return x.product(elems, seg)
}

func (x *expander) product(elems []Element, seg segment) ([]string, error) {
	lists := make([][]string, len(elems))
	total := uint64(1)
	for i, e := range elems {
		alts, err := x.alternatives(e, seg)
		if err != nil {
			return nil, err
		}
		lists[i] = alts
		total *= uint64(len(alts))
		if total > uint64(x.limit) {
			return nil, x.limitErr(e.Span, total)
		}
	}

	out := []string{""}
	for _, list := range lists {
		next := make([]string, 0, len(out)*len(list))
		for _, prefix := range out {
			for _, alt := range list {
				next = append(next, prefix+alt)
			}
		}
		out = next
	}
	return out, nil
}

// alternatives never returns an empty list: an element that matches nothing
// contributes a single zero-length alternative, so it disappears from the
// combination instead of annihilating it.
func (x *expander) alternatives(e Element, seg segment) ([]string, error) {
	switch e.Kind {
	case ElemLiteral:
		return []string{e.Text}, nil

	case ElemBoundary:
		return []string{"#"}, nil

	case ElemPlaceholder:
		// '_' остаётся в развёрнутой среде, его заменит сборка карты
		return []string{"_"}, nil

	case ElemDeletion:
		if seg == segTarget {
			return []string{""}, nil
		}
		return []string{"0"}, nil

	case ElemClass:
		syms := x.classSymbols(e)
		if len(syms) == 0 {
			x.warn(diag.ExpEmptyClass, e.Span,
				fmt.Sprintf("[%s] matches no phones in the catalog", strings.Join(e.Tokens, ",")))
			return []string{""}, nil
		}
		return syms, nil

	case ElemSet:
		return x.altsUnion(e, seg, false)

	case ElemOptional:
		return x.altsUnion(e, seg, true)

	case ElemNegated:
		return x.negated(e, seg)
	}
	return []string{""}, nil
}

// classSymbols resolves a descriptor class to the sorted symbols of every
// matching phone.
func (x *expander) classSymbols(e Element) []string {
	phones := x.cat.FindPhones(e.Tokens, true)
	syms := make([]string, 0, len(phones))
	for _, p := range phones {
		syms = append(syms, p.Symbol)
	}
	slices.Sort(syms)
	return slices.Compact(syms)
}

// altsUnion expands each alternative in order and concatenates the results.
// Optional groups get the empty alternative appended last.
func (x *expander) altsUnion(e Element, seg segment, optional bool) ([]string, error) {
	var out []string
	for _, alt := range e.Alts {
		strs, err := x.product(alt, seg)
		if err != nil {
			return nil, err
		}
		out = append(out, strs...)
		if len(out) > x.limit {
			return nil, x.limitErr(e.Span, uint64(len(out)))
		}
	}
	if optional {
		out = append(out, "")
	}
	return out, nil
}

// negated expands the operand, then enumerates the catalog's phone symbols
// plus the word boundary, minus the operand's expansion.
func (x *expander) negated(e Element, seg segment) ([]string, error) {
	excluded, err := x.alternatives(*e.Operand, seg)
	if err != nil {
		return nil, err
	}
	drop := make(map[string]struct{}, len(excluded))
	for _, s := range excluded {
		drop[s] = struct{}{}
	}

	phones := x.cat.Phones()
	out := make([]string, 0, len(phones)+1)
	for _, p := range phones {
		if _, banned := drop[p.Symbol]; !banned {
			out = append(out, p.Symbol)
		}
	}
	if _, banned := drop["#"]; !banned {
		out = append(out, "#")
	}
	if len(out) == 0 {
		x.warn(diag.ExpEmptyClass, e.Span, "negation excludes every known symbol")
		return []string{""}, nil
	}
	return out, nil
}

func (x *expander) limitErr(sp source.Span, size uint64) error {
	err := &ExpansionLimitError{Size: size, Limit: x.limit}
	diag.ReportError(x.reporter, diag.ExpLimit, sp, err.Error()).Emit()
	return err
}

func (x *expander) warn(code diag.Code, sp source.Span, msg string) {
	diag.ReportWarning(x.reporter, code, sp, msg).Emit()
}
