// Package translit implements a compiled bidirectional string substitution
// engine. The rule compiler uses it twice: once to substitute descriptor
// abbreviations into rule text, and once as the compiled form of a rule's
// change map applied to words.
//
// Entries are bucketed by length. Pairs that map one rune to one rune go
// into a bulk table; everything else is applied as an ordered list of
// substring replacements BEFORE the bulk pass, so a multi-character match
// is never pre-empted by a single-character rewrite of its own prefix.
package translit

import (
	"sort"
	"strings"
)

// Pair is one source → target substitution.
type Pair struct {
	From string
	To   string
}

// program is one compiled direction.
type program struct {
	// multiSrc: источник длиннее одной руны, применяется первым
	multiSrc []Pair
	// multiDst: источник в одну руну, замена длиннее; после multiSrc
	multiDst []Pair
	ones     map[rune]rune
}

// Transliterator rewrites strings in either direction over a fixed pair
// set. Immutable after construction; safe for concurrent use.
type Transliterator struct {
	fwd program
	rev program
	n   int
}

// New compiles a transliterator from a mapping. To keep results
// deterministic regardless of map iteration order, each direction orders
// its multi-character entries by longest source first, ties broken
// lexicographically.
func New(mapping map[string]string) *Transliterator {
	pairs := make([]Pair, 0, len(mapping))
	for from, to := range mapping {
		pairs = append(pairs, Pair{From: from, To: to})
	}
	sortBySource(pairs)
	return FromPairs(pairs)
}

// FromPairs compiles a transliterator keeping the given order for the
// substring-replacement phase. Later duplicates of a source are ignored.
// Pairs with an empty source are ignored.
func FromPairs(pairs []Pair) *Transliterator {
	t := &Transliterator{}

	kept := make([]Pair, 0, len(pairs))
	seen := make(map[string]struct{}, len(pairs))
	for _, p := range pairs {
		if p.From == "" {
			continue
		}
		if _, dup := seen[p.From]; dup {
			continue
		}
		seen[p.From] = struct{}{}
		kept = append(kept, p)
	}
	t.n = len(kept)

	t.fwd = compile(kept)

	swapped := make([]Pair, 0, len(kept))
	seenTo := make(map[string]struct{}, len(kept))
	for _, p := range kept {
		if p.To == "" {
			continue
		}
		if _, dup := seenTo[p.To]; dup {
			continue
		}
		seenTo[p.To] = struct{}{}
		swapped = append(swapped, Pair{From: p.To, To: p.From})
	}
	t.rev = compile(swapped)

	return t
}

func compile(pairs []Pair) program {
	pg := program{ones: make(map[rune]rune)}
	for _, p := range pairs {
		from := []rune(p.From)
		to := []rune(p.To)
		switch {
		case len(from) == 1 && len(to) == 1:
			pg.ones[from[0]] = to[0]
		case len(from) > 1:
			pg.multiSrc = append(pg.multiSrc, p)
		default:
			pg.multiDst = append(pg.multiDst, p)
		}
	}
	return pg
}

func sortBySource(pairs []Pair) {
	sort.SliceStable(pairs, func(i, j int) bool {
		if len(pairs[i].From) != len(pairs[j].From) {
			return len(pairs[i].From) > len(pairs[j].From)
		}
		return pairs[i].From < pairs[j].From
	})
}

// Forward rewrites s source → target.
func (t *Transliterator) Forward(s string) string {
	return t.fwd.apply(s)
}

// Reverse rewrites s target → source. When two sources share a target the
// first registered pair wins.
func (t *Transliterator) Reverse(s string) string {
	return t.rev.apply(s)
}

// Len reports how many usable pairs the transliterator holds.
func (t *Transliterator) Len() int {
	return t.n
}

func (pg program) apply(s string) string {
	for _, p := range pg.multiSrc {
		s = strings.ReplaceAll(s, p.From, p.To)
	}
	for _, p := range pg.multiDst {
		s = strings.ReplaceAll(s, p.From, p.To)
	}
	if len(pg.ones) > 0 {
		s = strings.Map(func(r rune) rune {
			if to, ok := pg.ones[r]; ok {
				return to
			}
			return r
		}, s)
	}
	return s
}
