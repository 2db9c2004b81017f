// Package catalog models phoneme inventories: the set of sounds a language
// distinguishes, each with its allophones, plus deterministic lookup by
// label and by descriptor.
package catalog

import (
	"fmt"
	"slices"

	"soundlaw/internal/diag"
	"soundlaw/internal/ipa"
	"soundlaw/internal/phone"
	"soundlaw/internal/source"
)

// Phoneme is one distinctive sound unit. Allophones are sorted by symbol
// and deduplicated by phone equality; Common and All cache the intersection
// and union of their descriptor sets.
//
// Phonemes are values; construct with NewPhoneme and treat as immutable.
type Phoneme struct {
	Label        string
	Romanization string
	Allophones   []phone.Phone
	Common       []string
	All          []string
}

// NewPhoneme builds a phoneme labelled label. With no allophones the label
// itself becomes the sole allophone. Duplicate allophones (by phone
// equality) are dropped in input order, first occurrence wins, one
// SevWarning per drop through reporter.
func NewPhoneme(label string, allophones []string, lookup ipa.Lookup, reporter diag.Reporter) (Phoneme, error) {
	if label == "" {
		return Phoneme{}, phone.ErrEmptySymbol
	}

	symbols := allophones
	if len(symbols) == 0 {
		symbols = []string{label}
	}

	kept := make([]phone.Phone, 0, len(symbols))
	for _, sym := range symbols {
		p, err := phone.New(sym, lookup)
		if err != nil {
			return Phoneme{}, fmt.Errorf("phoneme /%s/: %w", label, err)
		}
		dup := false
		for _, prev := range kept {
			if prev.Equal(p) {
				dup = true
				break
			}
		}
		if dup {
			diag.ReportWarning(reporter, diag.CatDuplicateAllophone, source.Span{},
				fmt.Sprintf("allophone %q of /%s/ duplicates an earlier allophone; keeping the first", sym, label)).Emit()
			continue
		}
		kept = append(kept, p)
	}

	slices.SortStableFunc(kept, func(a, b phone.Phone) int {
		switch {
		case a.Symbol < b.Symbol:
			return -1
		case a.Symbol > b.Symbol:
			return 1
		}
		return 0
	})

	return Phoneme{
		Label:      label,
		Allophones: kept,
		Common:     commonDescriptors(kept),
		All:        allDescriptors(kept),
	}, nil
}

// WithRomanization returns a copy carrying a display romanization.
func (p Phoneme) WithRomanization(r string) Phoneme {
	p.Romanization = r
	return p
}

// Equal compares phonemes by their allophone sequences (labels and
// romanizations are display metadata).
func (p Phoneme) Equal(other Phoneme) bool {
	return slices.EqualFunc(p.Allophones, other.Allophones, phone.Phone.Equal)
}

// Matches applies the descriptor matching policy against the phoneme's
// common descriptors.
func (p Phoneme) Matches(tokens []string, exact bool) bool {
	return phone.Match(tokens, p.Common, exact)
}

func (p Phoneme) String() string {
	return "/" + p.Label + "/"
}

// commonDescriptors is the sorted intersection of the allophones' sets.
func commonDescriptors(phones []phone.Phone) []string {
	if len(phones) == 0 {
		return nil
	}
	common := slices.Clone(phones[0].Descriptors)
	for _, p := range phones[1:] {
		common = slices.DeleteFunc(common, func(d string) bool {
			return !p.HasDescriptor(d)
		})
	}
	return common
}

// allDescriptors is the sorted union of the allophones' sets.
func allDescriptors(phones []phone.Phone) []string {
	var all []string
	for _, p := range phones {
		all = append(all, p.Descriptors...)
	}
	slices.Sort(all)
	return slices.Compact(all)
}
