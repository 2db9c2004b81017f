// Package testkit holds invariant checkers shared by package tests.
// They return errors instead of failing a testing.T so callers can
// wrap them with their own context.
package testkit

import (
	"fmt"
	"strings"

	"fortio.org/safecast"

	"soundlaw/internal/catalog"
	"soundlaw/internal/rule"
	"soundlaw/internal/source"
)

// CheckCatalogInvariants runs a minimal set of ordering invariants on a
// built catalog:
// 1) the catalog is non-empty
// 2) phonemes are sorted by label (Find binary-searches on this)
// 3) the derived symbol and descriptor lists are sorted and unique
// 4) every phone is reflected in the derived lists and carries a sorted
// unique descriptor set of its own
// 5) no two phones share a descriptor set
func CheckCatalogInvariants(c *catalog.Catalog) error {
	if c == nil {
		return fmt.Errorf("nil catalog")
	}
	if c.Len() == 0 {
		return fmt.Errorf("catalog has no phonemes")
	}

	// 2) порядок фонем
	for i := 1; i < c.Len(); i++ {
		if c.At(i-1).Label > c.At(i).Label {
			return fmt.Errorf("phonemes out of label order: %q before %q", c.At(i-1).Label, c.At(i).Label)
		}
	}

	// 3) производные списки
	if err := checkSortedUnique("symbol list", c.Symbols()); err != nil {
		return err
	}
	if err := checkSortedUnique("descriptor union", c.Descriptors()); err != nil {
		return err
	}

	symbols := make(map[string]struct{}, len(c.Symbols()))
	for _, s := range c.Symbols() {
		symbols[s] = struct{}{}
	}
	descriptors := make(map[string]struct{}, len(c.Descriptors()))
	for _, d := range c.Descriptors() {
		descriptors[d] = struct{}{}
	}

	// 4) каждый фон отражён в списках
	for _, p := range c.Phones() {
		if _, ok := symbols[p.Symbol]; !ok {
			return fmt.Errorf("phone %q missing from symbol list", p.Symbol)
		}
		if err := checkSortedUnique(fmt.Sprintf("descriptors of phone %q", p.Symbol), p.Descriptors); err != nil {
			return err
		}
		for _, d := range p.Descriptors {
			if _, ok := descriptors[d]; !ok {
				return fmt.Errorf("descriptor %q of phone %q missing from descriptor union", d, p.Symbol)
			}
		}
	}

	// 5) фоны дедуплицированы
	phones := c.Phones()
	for i := range phones {
		for j := i + 1; j < len(phones); j++ {
			if phones[i].Equal(phones[j]) {
				return fmt.Errorf("phones %q and %q share a descriptor set", phones[i].Symbol, phones[j].Symbol)
			}
		}
	}
	return nil
}

// CheckChangeMapInvariants validates a compiled change map:
// 1) every before window is non-empty
// 2) boundary markers sit only at window edges, at most one per edge
// 3) the lookup index agrees with the change list (implies unique keys)
func CheckChangeMapInvariants(m *rule.ChangeMap) error {
	if m == nil {
		return fmt.Errorf("nil change map")
	}
	for i, ch := range m.Changes() {
		if ch.Before == "" {
			return fmt.Errorf("change %d has an empty before window", i)
		}
		if err := checkBoundaryEdges(ch.Before); err != nil {
			return fmt.Errorf("change %d before %q: %w", i, ch.Before, err)
		}
		if err := checkBoundaryEdges(ch.After); err != nil {
			return fmt.Errorf("change %d after %q: %w", i, ch.After, err)
		}
		got, ok := m.Lookup(ch.Before)
		if !ok {
			return fmt.Errorf("change %d before %q is not indexed", i, ch.Before)
		}
		if got != ch.After {
			return fmt.Errorf("change %d index disagrees: lookup(%q)=%q want %q", i, ch.Before, got, ch.After)
		}
	}
	return nil
}

// CheckTokenSpanInvariants runs span sanity over a lexed rule:
// 1) no EOF tokens (All strips it) and no empty token text
// 2) every span is non-empty, points at sf and stays inside its content
// 3) tokens are ordered and do not overlap
func CheckTokenSpanInvariants(tokens []rule.Token, sf *source.File) error {
	if sf == nil {
		return fmt.Errorf("nil file")
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}

	var prevEnd uint32
	for i, tok := range tokens {
		if tok.Kind == rule.EOF {
			return fmt.Errorf("token %d is EOF", i)
		}
		if tok.Text == "" {
			return fmt.Errorf("token %d (%s) has empty text", i, tok.Kind)
		}
		sp := tok.Span
		if sp.End <= sp.Start {
			return fmt.Errorf("token %d (%s) has empty span: %v", i, tok.Kind, sp)
		}
		if sp.File != sf.ID {
			return fmt.Errorf("token %d span file mismatch: got=%d want=%d", i, sp.File, sf.ID)
		}
		if sp.End > lenContent {
			return fmt.Errorf("token %d span end beyond content: %d > %d", i, sp.End, lenContent)
		}
		if sp.Start < prevEnd {
			return fmt.Errorf("token %d overlaps its predecessor: start=%d prev end=%d", i, sp.Start, prevEnd)
		}
		prevEnd = sp.End
	}
	return nil
}

// checkSortedUnique требует строгого возрастания.
func checkSortedUnique(what string, items []string) error {
	for i := 1; i < len(items); i++ {
		if items[i-1] >= items[i] {
			return fmt.Errorf("%s not sorted unique: %q then %q", what, items[i-1], items[i])
		}
	}
	return nil
}

// checkBoundaryEdges allows at most one leading and one trailing '#'.
// An empty window passes; after windows may collapse to "" when an
// optional replacement variant is dropped.
func checkBoundaryEdges(s string) error {
	inner := strings.TrimPrefix(s, "#")
	inner = strings.TrimSuffix(inner, "#")
	if strings.Contains(inner, "#") {
		return fmt.Errorf("interior boundary marker")
	}
	return nil
}
