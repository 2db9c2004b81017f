package catalog

import (
	"soundlaw/internal/diag"
	"soundlaw/internal/ipa"
	"soundlaw/internal/phone"
)

// Entry is one catalog construction input. Use the named constructors;
// the zero Entry is invalid.
type Entry struct {
	label        string
	allophones   []string
	romanization string
	prebuilt     *Phoneme
}

// Symbol declares a phoneme whose only allophone is the label itself.
func Symbol(label string) Entry {
	return Entry{label: label}
}

// WithAllophones declares a phoneme with an explicit allophone list.
func WithAllophones(label string, allophones ...string) Entry {
	return Entry{label: label, allophones: allophones}
}

// FromPhone wraps an existing phone as a single-allophone phoneme.
func FromPhone(p phone.Phone) Entry {
	ph := Phoneme{
		Label:      p.Symbol,
		Allophones: []phone.Phone{p},
		Common:     p.Descriptors,
		All:        p.Descriptors,
	}
	return Entry{prebuilt: &ph}
}

// FromPhoneme wraps an already-built phoneme.
func FromPhoneme(p Phoneme) Entry {
	return Entry{prebuilt: &p}
}

// Romanized attaches a display romanization to the entry.
func (e Entry) Romanized(r string) Entry {
	e.romanization = r
	return e
}

// build materializes the entry into a Phoneme.
func (e Entry) build(lookup ipa.Lookup, reporter diag.Reporter) (Phoneme, error) {
	if e.prebuilt != nil {
		p := *e.prebuilt
		if e.romanization != "" {
			p = p.WithRomanization(e.romanization)
		}
		return p, nil
	}
	p, err := NewPhoneme(e.label, e.allophones, lookup, reporter)
	if err != nil {
		return Phoneme{}, err
	}
	if e.romanization != "" {
		p = p.WithRomanization(e.romanization)
	}
	return p, nil
}
