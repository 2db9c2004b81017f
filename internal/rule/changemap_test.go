package rule

import (
	"errors"
	"testing"

	"soundlaw/internal/diag"
	"soundlaw/internal/source"
	"soundlaw/internal/translit"
)

func assemble(t *testing.T, targets, repls, envs []string) (*ChangeMap, *diag.Bag, error) {
	t.Helper()
	bag := diag.NewBag(8)
	m, err := assembleChanges(targets, repls, envs, source.Span{}, DefaultExpansionLimit, diag.BagReporter{Bag: bag})
	return m, bag, err
}

func expectChanges(t *testing.T, m *ChangeMap, want []Change) {
	t.Helper()
	if m.Len() != len(want) {
		t.Fatalf("expected %d changes, got %s", len(want), m)
	}
	for i, w := range want {
		if got := m.At(i); got != w {
			t.Errorf("change %d: expected %v, got %v", i, w, got)
		}
	}
}

func TestAssembleBroadcast(t *testing.T) {
	m, _, err := assemble(t, []string{"p", "t", "k"}, []string{"x"}, []string{"_"})
	if err != nil {
		t.Fatal(err)
	}
	expectChanges(t, m, []Change{
		{"p", "x"}, {"t", "x"}, {"k", "x"},
	})
}

func TestAssemblePositional(t *testing.T) {
	m, _, err := assemble(t, []string{"p", "t", "k"}, []string{"b", "d", "g"}, []string{"_"})
	if err != nil {
		t.Fatal(err)
	}
	expectChanges(t, m, []Change{
		{"p", "b"}, {"t", "d"}, {"k", "g"},
	})
}

// Обе стороны замены сохраняют контекст среды.
func TestAssembleKeepsEnvironmentContext(t *testing.T) {
	m, _, err := assemble(t, []string{"n"}, []string{"r"}, []string{"a_#", "i_#"})
	if err != nil {
		t.Fatal(err)
	}
	expectChanges(t, m, []Change{
		{"an#", "ar#"}, {"in#", "ir#"},
	})
}

func TestAssembleTargetMajorOrder(t *testing.T) {
	m, _, err := assemble(t, []string{"p", "t"}, []string{"x"}, []string{"a_", "i_"})
	if err != nil {
		t.Fatal(err)
	}
	expectChanges(t, m, []Change{
		{"ap", "ax"}, {"ip", "ix"}, {"at", "ax"}, {"it", "ix"},
	})
}

func TestAssembleAlignmentError(t *testing.T) {
	_, bag, err := assemble(t, []string{"p", "t"}, []string{"b", "d", "g"}, []string{"_"})
	var alignErr *AlignmentError
	if !errors.As(err, &alignErr) {
		t.Fatalf("expected AlignmentError, got %v", err)
	}
	if alignErr.Replacements != 3 || alignErr.Combinations != 2 {
		t.Errorf("fields: %+v", alignErr)
	}
	if bag.Len() != 1 || bag.Items()[0].Code != diag.ExpAlignment {
		t.Errorf("diags: %v", bag.Items())
	}
}

func TestAssembleConflict(t *testing.T) {
	// "a" в среде "_b" и "ab" в среде "_" дают одно окно "ab" с разными
	// заменами.
	_, bag, err := assemble(t, []string{"a", "ab"}, []string{"r"}, []string{"_b", "_"})
	var confErr *ConflictError
	if !errors.As(err, &confErr) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if confErr.Before != "ab" || confErr.First != "rb" || confErr.Second != "r" {
		t.Errorf("fields: %+v", confErr)
	}
	if bag.Items()[0].Code != diag.ExpConflict {
		t.Errorf("diags: %v", bag.Items())
	}
}

func TestAssembleDuplicateConsistentCollapses(t *testing.T) {
	m, bag, err := assemble(t, []string{"a", "a"}, []string{"r"}, []string{"_"})
	if err != nil {
		t.Fatal(err)
	}
	expectChanges(t, m, []Change{{"a", "r"}})
	if bag.HasErrors() {
		t.Errorf("diags: %v", bag.Items())
	}
}

func TestAssembleEmptyWindow(t *testing.T) {
	_, bag, err := assemble(t, []string{""}, []string{"x"}, []string{"_"})
	var winErr *EmptyWindowError
	if !errors.As(err, &winErr) {
		t.Fatalf("expected EmptyWindowError, got %v", err)
	}
	if winErr.After != "x" {
		t.Errorf("after: %q", winErr.After)
	}
	if bag.Items()[0].Code != diag.ExpEmptyWindow {
		t.Errorf("diags: %v", bag.Items())
	}
}

func TestAssembleInertRuleWarns(t *testing.T) {
	m, bag, err := assemble(t, []string{"t"}, []string{"t"}, []string{"_"})
	if err != nil {
		t.Fatal(err)
	}
	if !m.Inert() {
		t.Error("expected inert map")
	}
	if bag.Len() != 1 || bag.Items()[0].Code != diag.ExpNoChanges {
		t.Errorf("diags: %v", bag.Items())
	}
	if bag.HasErrors() {
		t.Error("inertness is a warning, not an error")
	}
}

func TestAssembleLimit(t *testing.T) {
	bag := diag.NewBag(8)
	_, err := assembleChanges(
		[]string{"a", "b"}, []string{"x"}, []string{"_", "c_"},
		source.Span{}, 3, diag.BagReporter{Bag: bag})
	var limitErr *ExpansionLimitError
	if !errors.As(err, &limitErr) {
		t.Fatalf("expected ExpansionLimitError, got %v", err)
	}
	if limitErr.Size != 4 || limitErr.Limit != 3 {
		t.Errorf("fields: %+v", limitErr)
	}
}

func TestChangeMapLookupAndPairs(t *testing.T) {
	m, _, err := assemble(t, []string{"p"}, []string{"b"}, []string{"a_", "i_"})
	if err != nil {
		t.Fatal(err)
	}
	if after, ok := m.Lookup("ap"); !ok || after != "ab" {
		t.Errorf("Lookup(ap) = %q, %v", after, ok)
	}
	if _, ok := m.Lookup("up"); ok {
		t.Error("Lookup must miss on unknown windows")
	}
	pairs := m.Pairs()
	if len(pairs) != 2 || pairs[0].From != "ap" || pairs[1].From != "ip" {
		t.Errorf("pairs: %v", pairs)
	}
}

func TestNilChangeMap(t *testing.T) {
	var m *ChangeMap
	if m.Len() != 0 || !m.Inert() || m.String() != "{}" {
		t.Errorf("nil map misbehaves: %d %v %s", m.Len(), m.Inert(), m)
	}
}

func TestChangeMapFromPairs(t *testing.T) {
	pairs := []translit.Pair{
		{From: "apa", To: "aba"},
		{From: "ata", To: "ada"},
		{From: "apa", To: "axa"}, // дубль отбрасывается, первый побеждает
	}
	m := ChangeMapFromPairs(pairs)
	if m.Len() != 2 {
		t.Fatalf("Len = %d, want 2", m.Len())
	}
	if m.At(0).Before != "apa" || m.At(1).Before != "ata" {
		t.Errorf("order lost: %s", m)
	}
	if after, ok := m.Lookup("apa"); !ok || after != "aba" {
		t.Errorf("Lookup(apa) = %q, %v", after, ok)
	}
	got := m.Pairs()
	if len(got) != 2 || got[0] != pairs[0] || got[1] != pairs[1] {
		t.Errorf("round trip: %v", got)
	}
}
