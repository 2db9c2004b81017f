package catalog

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"slices"
	"sort"

	"soundlaw/internal/diag"
	"soundlaw/internal/ipa"
	"soundlaw/internal/phone"
	"soundlaw/internal/source"
)

// ErrEmpty is returned when construction leaves no phonemes.
var ErrEmpty = errors.New("catalog has no phonemes")

// NotFoundError reports a label lookup miss.
type NotFoundError struct {
	Label string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("phoneme /%s/ not found in catalog", e.Label)
}

// Catalog is an immutable phoneme inventory. Phonemes are sorted by label;
// the derived phone list keeps first occurrences in phoneme order. All
// query methods are deterministic and safe for concurrent use.
type Catalog struct {
	phonemes    []Phoneme
	phones      []phone.Phone
	symbols     []string // sorted unique phone symbols
	descriptors []string // sorted union over all phones
}

// New builds a catalog from entries. Duplicate phonemes (by allophone
// equality) are dropped in input order with a SevWarning per drop; the
// surviving phonemes are sorted by label. An empty result is an error.
func New(entries []Entry, lookup ipa.Lookup, reporter diag.Reporter) (*Catalog, error) {
	kept := make([]Phoneme, 0, len(entries))
	for _, e := range entries {
		p, err := e.build(lookup, reporter)
		if err != nil {
			return nil, err
		}
		dup := false
		for _, prev := range kept {
			if prev.Equal(p) {
				dup = true
				break
			}
		}
		if dup {
			diag.ReportWarning(reporter, diag.CatDuplicatePhoneme, source.Span{},
				fmt.Sprintf("phoneme %s duplicates an earlier phoneme; keeping the first", p)).Emit()
			continue
		}
		kept = append(kept, p)
	}

	if len(kept) == 0 {
		return nil, ErrEmpty
	}

	slices.SortStableFunc(kept, func(a, b Phoneme) int {
		switch {
		case a.Label < b.Label:
			return -1
		case a.Label > b.Label:
			return 1
		}
		return 0
	})

	c := &Catalog{phonemes: kept}
	c.derive()
	return c, nil
}

// derive populates the phone list, symbol list and descriptor union.
func (c *Catalog) derive() {
	for _, pm := range c.phonemes {
		for _, p := range pm.Allophones {
			dup := false
			for _, prev := range c.phones {
				if prev.Equal(p) {
					dup = true
					break
				}
			}
			if !dup {
				c.phones = append(c.phones, p)
			}
		}
	}

	seen := make(map[string]struct{}, len(c.phones))
	for _, p := range c.phones {
		if _, ok := seen[p.Symbol]; !ok {
			seen[p.Symbol] = struct{}{}
			c.symbols = append(c.symbols, p.Symbol)
		}
	}
	slices.Sort(c.symbols)

	var all []string
	for _, p := range c.phones {
		all = append(all, p.Descriptors...)
	}
	slices.Sort(all)
	c.descriptors = slices.Compact(all)
}

// Len returns the number of phonemes.
func (c *Catalog) Len() int {
	return len(c.phonemes)
}

// At returns the i-th phoneme in label order.
func (c *Catalog) At(i int) Phoneme {
	return c.phonemes[i]
}

// Phonemes returns the phonemes in label order.
// Callers must not modify the returned slice.
func (c *Catalog) Phonemes() []Phoneme {
	return c.phonemes
}

// Phones returns the deduplicated phones in phoneme order.
// Callers must not modify the returned slice.
func (c *Catalog) Phones() []phone.Phone {
	return c.phones
}

// Symbols returns the sorted unique phone symbols. Negation expansion
// treats this as the inventory universe.
func (c *Catalog) Symbols() []string {
	return c.symbols
}

// Descriptors returns the sorted union of all descriptor labels in use.
func (c *Catalog) Descriptors() []string {
	return c.descriptors
}

// Find returns the phoneme with the given label.
func (c *Catalog) Find(label string) (Phoneme, error) {
	i := sort.Search(len(c.phonemes), func(i int) bool {
		return c.phonemes[i].Label >= label
	})
	if i < len(c.phonemes) && c.phonemes[i].Label == label {
		return c.phonemes[i], nil
	}
	return Phoneme{}, &NotFoundError{Label: label}
}

// FindPhones returns the phones matching the descriptor tokens, in catalog
// phone order.
func (c *Catalog) FindPhones(tokens []string, exact bool) []phone.Phone {
	var out []phone.Phone
	for _, p := range c.phones {
		if p.Matches(tokens, exact) {
			out = append(out, p)
		}
	}
	return out
}

// FindPhonemes returns the phonemes whose common descriptors match the
// tokens, in label order.
func (c *Catalog) FindPhonemes(tokens []string, exact bool) []Phoneme {
	var out []Phoneme
	for _, pm := range c.phonemes {
		if pm.Matches(tokens, exact) {
			out = append(out, pm)
		}
	}
	return out
}

// Digest returns a stable hash of the inventory: labels, romanizations,
// allophone symbols and descriptor sets in catalog order. Compiled-rule
// caching keys off this.
func (c *Catalog) Digest() [32]byte {
	h := sha256.New()
	for _, pm := range c.phonemes {
		h.Write([]byte(pm.Label))
		h.Write([]byte{0})
		h.Write([]byte(pm.Romanization))
		h.Write([]byte{0})
		for _, p := range pm.Allophones {
			h.Write([]byte(p.Symbol))
			h.Write([]byte{1})
			for _, d := range p.Descriptors {
				h.Write([]byte(d))
				h.Write([]byte{2})
			}
		}
		h.Write([]byte{3})
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
