package catalog_test

import (
	"errors"
	"slices"
	"testing"

	"soundlaw/internal/catalog"
	"soundlaw/internal/diag"
	"soundlaw/internal/ipa"
	"soundlaw/internal/phone"
	"soundlaw/internal/source"
	"soundlaw/internal/testkit"
)

type testReporter struct {
	diags []diag.Diagnostic
}

func (r *testReporter) Report(code diag.Code, sev diag.Severity, primary source.Span, msg string, notes []diag.Note) {
	r.diags = append(r.diags, diag.Diagnostic{
		Severity: sev, Code: code, Message: msg, Primary: primary, Notes: notes,
	})
}

func (r *testReporter) countCode(code diag.Code) int {
	n := 0
	for _, d := range r.diags {
		if d.Code == code {
			n++
		}
	}
	return n
}

func entries(labels ...string) []catalog.Entry {
	out := make([]catalog.Entry, 0, len(labels))
	for _, l := range labels {
		out = append(out, catalog.Symbol(l))
	}
	return out
}

func mustCatalog(t *testing.T, ents []catalog.Entry) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(ents, ipa.Default(), nil)
	if err != nil {
		t.Fatalf("catalog.New failed: %v", err)
	}
	return c
}

func TestNewPhonemeDefaultsToLabel(t *testing.T) {
	p, err := catalog.NewPhoneme("a", nil, ipa.Default(), nil)
	if err != nil {
		t.Fatalf("NewPhoneme failed: %v", err)
	}
	if len(p.Allophones) != 1 || p.Allophones[0].Symbol != "a" {
		t.Errorf("expected single allophone 'a', got %v", p.Allophones)
	}
	if !slices.Equal(p.Common, p.All) {
		t.Errorf("single allophone: Common %v should equal All %v", p.Common, p.All)
	}
}

func TestNewPhonemeDedupAndSort(t *testing.T) {
	r := &testReporter{}
	// ɡ (IPA) duplicates g by descriptor set; z comes after d after sorting
	p, err := catalog.NewPhoneme("g", []string{"z", "g", "ɡ", "d"}, ipa.Default(), r)
	if err != nil {
		t.Fatalf("NewPhoneme failed: %v", err)
	}

	symbols := make([]string, len(p.Allophones))
	for i, a := range p.Allophones {
		symbols[i] = a.Symbol
	}
	if !slices.Equal(symbols, []string{"d", "g", "z"}) {
		t.Errorf("allophones = %v, want [d g z]", symbols)
	}
	if got := r.countCode(diag.CatDuplicateAllophone); got != 1 {
		t.Errorf("expected 1 duplicate-allophone warning, got %d", got)
	}
}

func TestPhonemeCommonAndAll(t *testing.T) {
	p, err := catalog.NewPhoneme("a", []string{"a", "ã"}, ipa.Default(), nil)
	if err != nil {
		t.Fatalf("NewPhoneme failed: %v", err)
	}

	wantCommon := []string{"front", "open", "unrounded", "vowel"}
	if !slices.Equal(p.Common, wantCommon) {
		t.Errorf("Common = %v, want %v", p.Common, wantCommon)
	}
	wantAll := []string{"front", "nasalized", "open", "unrounded", "vowel"}
	if !slices.Equal(p.All, wantAll) {
		t.Errorf("All = %v, want %v", p.All, wantAll)
	}
}

func TestPhonemeEqualityIgnoresLabel(t *testing.T) {
	a, _ := catalog.NewPhoneme("g", nil, ipa.Default(), nil)
	b, _ := catalog.NewPhoneme("G-label", []string{"ɡ"}, ipa.Default(), nil)
	if !a.Equal(b) {
		t.Error("phonemes with equal allophones must compare equal regardless of label")
	}
}

func TestCatalogSortedAndDeduplicated(t *testing.T) {
	r := &testReporter{}
	ents := []catalog.Entry{
		catalog.Symbol("t"),
		catalog.Symbol("a"),
		catalog.Symbol("k"),
		catalog.WithAllophones("t2", "t"), // same allophone set as /t/
	}
	c, err := catalog.New(ents, ipa.Default(), r)
	if err != nil {
		t.Fatalf("catalog.New failed: %v", err)
	}

	labels := make([]string, c.Len())
	for i := 0; i < c.Len(); i++ {
		labels[i] = c.At(i).Label
	}
	if !slices.Equal(labels, []string{"a", "k", "t"}) {
		t.Errorf("labels = %v, want [a k t]", labels)
	}
	if got := r.countCode(diag.CatDuplicatePhoneme); got != 1 {
		t.Errorf("expected 1 duplicate-phoneme warning, got %d", got)
	}
}

func TestCatalogEmpty(t *testing.T) {
	_, err := catalog.New(nil, ipa.Default(), nil)
	if !errors.Is(err, catalog.ErrEmpty) {
		t.Errorf("expected ErrEmpty, got %v", err)
	}
}

func TestCatalogUnknownSymbolPropagates(t *testing.T) {
	_, err := catalog.New(entries("a", "4"), ipa.Default(), nil)
	var unknown *ipa.UnknownSymbolError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownSymbolError, got %v", err)
	}
}

func TestCatalogFind(t *testing.T) {
	c := mustCatalog(t, entries("a", "e", "i", "o", "u", "y", "p", "t", "k", "l", "r", "m", "n"))

	p, err := c.Find("t")
	if err != nil {
		t.Fatalf("Find(t) failed: %v", err)
	}
	if p.Label != "t" {
		t.Errorf("Find(t) returned %s", p)
	}

	_, err = c.Find("ʒ")
	var notFound *catalog.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if notFound.Label != "ʒ" {
		t.Errorf("NotFoundError label = %q", notFound.Label)
	}
}

func TestCatalogFindPhones(t *testing.T) {
	c := mustCatalog(t, entries("a", "e", "i", "o", "u", "y", "p", "t", "k", "l", "r", "m", "n"))

	vowels := c.FindPhones([]string{"vowel"}, true)
	got := symbolsOf(vowels)
	slices.Sort(got)
	if !slices.Equal(got, []string{"a", "e", "i", "o", "u", "y"}) {
		t.Errorf("[vowel] matched %v", got)
	}

	stops := c.FindPhones([]string{"voiceless", "plosive"}, true)
	got = symbolsOf(stops)
	slices.Sort(got)
	if !slices.Equal(got, []string{"k", "p", "t"}) {
		t.Errorf("[voiceless, plosive] matched %v", got)
	}

	nonVowels := c.FindPhones([]string{"!vowel"}, true)
	if len(nonVowels) != 7 {
		t.Errorf("[!vowel] matched %d phones, want 7", len(nonVowels))
	}

	// any-mode: vowel OR nasal
	either := c.FindPhones([]string{"vowel", "nasal"}, false)
	if len(either) != 8 {
		t.Errorf("any-of [vowel nasal] matched %d phones, want 8", len(either))
	}
}

func TestCatalogFindPhonemesUsesCommon(t *testing.T) {
	// /a/ with a nasalized allophone: "nasalized" is in All but not Common
	ents := []catalog.Entry{
		catalog.WithAllophones("a", "a", "ã"),
		catalog.Symbol("m"),
	}
	c := mustCatalog(t, ents)

	if got := c.FindPhonemes([]string{"nasalized"}, true); len(got) != 0 {
		t.Errorf("[nasalized] should match no phoneme by common descriptors, got %v", got)
	}
	if got := c.FindPhonemes([]string{"vowel"}, true); len(got) != 1 || got[0].Label != "a" {
		t.Errorf("[vowel] should match /a/, got %v", got)
	}
}

func TestCatalogSymbolsSortedUnique(t *testing.T) {
	ents := []catalog.Entry{
		catalog.WithAllophones("k", "k", "kʰ"),
		catalog.Symbol("a"),
	}
	c := mustCatalog(t, ents)

	want := []string{"a", "k", "kʰ"}
	if !slices.Equal(c.Symbols(), want) {
		t.Errorf("Symbols() = %v, want %v", c.Symbols(), want)
	}
}

func TestCatalogInvariants(t *testing.T) {
	ents := []catalog.Entry{
		catalog.WithAllophones("k", "k", "kʰ"),
		catalog.WithAllophones("a", "a", "ã"),
		catalog.Symbol("ʃ").Romanized("sh"),
		catalog.Symbol("m"),
	}
	c := mustCatalog(t, ents)
	if err := testkit.CheckCatalogInvariants(c); err != nil {
		t.Fatalf("catalog invariants violated: %v", err)
	}
}

func TestCatalogDigestStable(t *testing.T) {
	a := mustCatalog(t, entries("a", "t"))
	b := mustCatalog(t, entries("a", "t"))
	if a.Digest() != b.Digest() {
		t.Error("identical catalogs must share a digest")
	}

	c := mustCatalog(t, entries("a", "d"))
	if a.Digest() == c.Digest() {
		t.Error("different catalogs must not share a digest")
	}
}

func TestFromPhoneEntry(t *testing.T) {
	p := phone.MustNew("ʃ", ipa.Default())
	c := mustCatalog(t, []catalog.Entry{catalog.FromPhone(p), catalog.Symbol("a")})

	found, err := c.Find("ʃ")
	if err != nil {
		t.Fatalf("Find(ʃ) failed: %v", err)
	}
	if len(found.Allophones) != 1 || !found.Allophones[0].Equal(p) {
		t.Errorf("FromPhone entry mangled: %v", found.Allophones)
	}
}

func TestRomanizedEntry(t *testing.T) {
	c := mustCatalog(t, []catalog.Entry{catalog.Symbol("ʃ").Romanized("sh"), catalog.Symbol("a")})
	p, _ := c.Find("ʃ")
	if p.Romanization != "sh" {
		t.Errorf("Romanization = %q, want sh", p.Romanization)
	}
}

func symbolsOf(phones []phone.Phone) []string {
	out := make([]string, len(phones))
	for i, p := range phones {
		out[i] = p.Symbol
	}
	return out
}
