package rule

import (
	"fmt"
	"strings"

	"soundlaw/internal/diag"
	"soundlaw/internal/source"
	"soundlaw/internal/translit"
)

// Change is one concrete substitution window: the text the rule looks for
// and the text it writes back. Both sides still carry their environment
// context, so "N -> r / V_#" yields entries like "am#" -> "ar#".
type Change struct {
	Before string
	After  string
}

// ChangeMap holds the substitutions of a compiled rule in assembly order:
// targets vary slowest, environments fastest. The order matters because the
// transliterator replaces multi-symbol windows in registration order, so
// variants produced by optional elements must keep the long form first.
type ChangeMap struct {
	changes []Change
	index   map[string]int
}

// assembleChanges строит карту замен из развёрнутых сегментов.
// Одиночная замена транслируется на все комбинации, иначе счёт
// должен совпасть один в один.
func assembleChanges(targets, replacements, environments []string, sp source.Span, limit int, reporter diag.Reporter) (*ChangeMap, error) {
	combos := uint64(len(targets)) * uint64(len(environments))
	if limit > 0 && combos > uint64(limit) {
		err := &ExpansionLimitError{Size: combos, Limit: limit}
		report(reporter, diag.ExpLimit, sp, err.Error())
		return nil, err
	}
	broadcast := len(replacements) == 1
	if !broadcast && uint64(len(replacements)) != combos {
		err := &AlignmentError{Replacements: len(replacements), Combinations: int(combos)}
		report(reporter, diag.ExpAlignment, sp, err.Error())
		return nil, err
	}

	m := &ChangeMap{index: make(map[string]int, combos)}
	i := 0
	for _, target := range targets {
		for _, env := range environments {
			repl := replacements[0]
			if !broadcast {
				repl = replacements[i]
			}
			i++
			before := strings.ReplaceAll(env, "_", target)
			after := strings.ReplaceAll(env, "_", repl)
			if before == "" {
				err := &EmptyWindowError{After: after}
				report(reporter, diag.ExpEmptyWindow, sp, err.Error())
				return nil, err
			}
			if prev, dup := m.index[before]; dup {
				if m.changes[prev].After != after {
					err := &ConflictError{Before: before, First: m.changes[prev].After, Second: after}
					report(reporter, diag.ExpConflict, sp, err.Error())
					return nil, err
				}
				// одинаковые пары схлопываются
				continue
			}
			m.index[before] = len(m.changes)
			m.changes = append(m.changes, Change{Before: before, After: after})
		}
	}
	if m.Inert() {
		diag.ReportWarning(reporter, diag.ExpNoChanges, sp, "rule never changes its input").Emit()
	}
	return m, nil
}

// ChangeMapFromPairs rebuilds a change map from stored pairs, keeping
// their order. The pairs are trusted: validation happened when they were
// first assembled.
func ChangeMapFromPairs(pairs []translit.Pair) *ChangeMap {
	m := &ChangeMap{
		changes: make([]Change, 0, len(pairs)),
		index:   make(map[string]int, len(pairs)),
	}
	for _, p := range pairs {
		if _, dup := m.index[p.From]; dup {
			continue
		}
		m.index[p.From] = len(m.changes)
		m.changes = append(m.changes, Change{Before: p.From, After: p.To})
	}
	return m
}

func report(r diag.Reporter, code diag.Code, sp source.Span, msg string) {
	diag.ReportError(r, code, sp, msg).Emit()
}

func (m *ChangeMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.changes)
}

func (m *ChangeMap) At(i int) Change {
	return m.changes[i]
}

// Changes returns the underlying slice in assembly order. READONLY.
func (m *ChangeMap) Changes() []Change {
	if m == nil {
		return nil
	}
	return m.changes
}

// Lookup returns the after window registered for before.
func (m *ChangeMap) Lookup(before string) (string, bool) {
	if m == nil {
		return "", false
	}
	i, ok := m.index[before]
	if !ok {
		return "", false
	}
	return m.changes[i].After, true
}

// Pairs converts the map into transliterator input, preserving order.
func (m *ChangeMap) Pairs() []translit.Pair {
	pairs := make([]translit.Pair, 0, m.Len())
	for _, ch := range m.changes {
		pairs = append(pairs, translit.Pair{From: ch.Before, To: ch.After})
	}
	return pairs
}

// Inert reports whether no entry rewrites anything. Такое бывает, когда
// цель и замена разворачиваются в одни и те же строки.
func (m *ChangeMap) Inert() bool {
	if m == nil {
		return true
	}
	for _, ch := range m.changes {
		if ch.Before != ch.After {
			return false
		}
	}
	return true
}

func (m *ChangeMap) String() string {
	if m == nil {
		return "{}"
	}
	var sb strings.Builder
	sb.WriteByte('{')
	for i, ch := range m.changes {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%q: %q", ch.Before, ch.After)
	}
	sb.WriteByte('}')
	return sb.String()
}
