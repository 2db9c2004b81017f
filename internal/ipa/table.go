package ipa

import (
	"slices"
)

// Table is a rune-indexed descriptor lookup. Entries are copied on read so
// the underlying map stays immutable after construction.
type Table struct {
	entries map[rune][]string
}

// NewTable builds a Table from explicit entries. The map is not copied;
// callers hand over ownership.
func NewTable(entries map[rune][]string) *Table {
	return &Table{entries: entries}
}

// Default returns the built-in chart. The same instance is shared; it is
// safe for concurrent use because lookups never mutate it.
func Default() *Table {
	return defaultTable
}

var defaultTable = NewTable(chart)

// Descriptors implements Lookup.
func (t *Table) Descriptors(r rune) ([]string, error) {
	d, ok := t.entries[r]
	if !ok {
		return nil, &UnknownSymbolError{Symbol: r}
	}
	return slices.Clone(d), nil
}

// Known reports whether r has an entry.
func (t *Table) Known(r rune) bool {
	_, ok := t.entries[r]
	return ok
}

// Extend returns a new Table with the extra entries layered over t.
// Existing runes are overridden.
func (t *Table) Extend(extra map[rune][]string) *Table {
	merged := make(map[rune][]string, len(t.entries)+len(extra))
	for r, d := range t.entries {
		merged[r] = d
	}
	for r, d := range extra {
		merged[r] = slices.Clone(d)
	}
	return NewTable(merged)
}
