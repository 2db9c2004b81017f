package rule

import (
	"strings"

	"soundlaw/internal/catalog"
	"soundlaw/internal/diag"
	"soundlaw/internal/ipa"
	"soundlaw/internal/source"
	"soundlaw/internal/translit"
)

// Хватает на одну строку правила; файлы правил парсит driver со своим Bag.
const maxInlineDiagnostics = 16

// Options configure parsing and compilation of a rule.
type Options struct {
	// Abbreviations substituted into the text before lexing.
	// nil means the built-in C/N/V table.
	Abbreviations *Abbreviations

	// ExpansionLimit caps how many concrete strings a segment or the
	// target-environment product may produce. <= 0 means
	// DefaultExpansionLimit.
	ExpansionLimit int

	// Reporter receives diagnostics from every phase. nil drops them;
	// errors still come back as error values.
	Reporter diag.Reporter
}

func (o Options) withDefaults() Options {
	if o.Abbreviations == nil {
		o.Abbreviations = DefaultAbbreviations()
	}
	if o.ExpansionLimit <= 0 {
		o.ExpansionLimit = DefaultExpansionLimit
	}
	if o.Reporter == nil {
		o.Reporter = diag.NopReporter{}
	}
	return o
}

// Compiled is the catalog-bound form of a rule: expanded segments, the
// change map and the transliterator that applies it.
type Compiled struct {
	Targets      []string
	Replacements []string
	Environments []string
	Changes      *ChangeMap
	Translit     *translit.Transliterator

	// CatalogDigest identifies the catalog the rule was compiled against.
	CatalogDigest [32]byte
}

// Compile expands a parsed notation against cat and assembles the change
// map. Diagnostics go to opts.Reporter; hard failures also come back as a
// typed error (*ConflictError, *AlignmentError, *ExpansionLimitError,
// *EmptyWindowError).
func Compile(n Notation, cat *catalog.Catalog, opts Options) (*Compiled, error) {
	if cat == nil {
		return nil, ErrNoCatalog
	}
	opts = opts.withDefaults()
	x := newExpander(cat, opts.ExpansionLimit, opts.Reporter)
	targets, err := x.segment(n.Target, segTarget)
	if err != nil {
		return nil, err
	}
	repls, err := x.segment(n.Replacement, segReplacement)
	if err != nil {
		return nil, err
	}
	envs, err := x.segment(n.Environment, segEnvironment)
	if err != nil {
		return nil, err
	}
	changes, err := assembleChanges(targets, repls, envs, n.Span, opts.ExpansionLimit, opts.Reporter)
	if err != nil {
		return nil, err
	}
	return &Compiled{
		Targets:       targets,
		Replacements:  repls,
		Environments:  envs,
		Changes:       changes,
		Translit:      translit.FromPairs(changes.Pairs()),
		CatalogDigest: cat.Digest(),
	}, nil
}

// Apply runs the compiled rule over one word. The word is normalized to
// NFD, framed with '#' so boundary windows can match, rewritten, then
// unframed; '0' markers left by deletions are dropped. The bool reports
// whether the word came out different.
func (c *Compiled) Apply(word string) (string, bool) {
	w := ipa.Normalize(word)
	out := c.Translit.Forward("#" + w + "#")
	out = strings.Trim(out, "#")
	out = strings.ReplaceAll(out, "0", "")
	return out, out != w
}

// Rule is one sound-change rule through its lifecycle: parsed from text,
// optionally bound to a phoneme catalog, ready to rewrite words. A rule
// can be rebound to another catalog or unbound again.
type Rule struct {
	raw      string // как написал пользователь
	text     string // после подстановки аббревиатур
	notation Notation
	opts     Options

	cat      *catalog.Catalog
	compiled *Compiled
}

// New parses text into an unbound rule. The returned error is a
// *FormatError carrying the first parse diagnostic.
func New(text string, opts Options) (*Rule, error) {
	opts = opts.withDefaults()
	expanded := opts.Abbreviations.Apply(text)

	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("rule", []byte(expanded)))
	bag := diag.NewBag(maxInlineDiagnostics)
	n, ok := Parse(file, diag.BagReporter{Bag: bag})
	replay(bag, opts.Reporter)
	if !ok {
		return nil, firstError(bag)
	}
	return &Rule{raw: text, text: expanded, notation: n, opts: opts}, nil
}

// NewBound parses text and binds it to cat in one step.
func NewBound(text string, cat *catalog.Catalog, opts Options) (*Rule, error) {
	r, err := New(text, opts)
	if err != nil {
		return nil, err
	}
	if err := r.Bind(cat); err != nil {
		return nil, err
	}
	return r, nil
}

// FromNotation wraps an already-parsed notation. Драйвер парсит файлы
// правил сам, чтобы сохранить исходные span'ы, и заворачивает результат
// сюда. text is the parsed form after abbreviation substitution; pass ""
// when it matches raw.
func FromNotation(raw, text string, n Notation, opts Options) *Rule {
	if text == "" {
		text = raw
	}
	return &Rule{raw: raw, text: text, notation: n, opts: opts.withDefaults()}
}

// Bind compiles the rule against cat. nil clears the binding. On failure
// the previous binding is kept.
func (r *Rule) Bind(cat *catalog.Catalog) error {
	if cat == nil {
		r.Unbind()
		return nil
	}
	c, err := Compile(r.notation, cat, r.opts)
	if err != nil {
		return err
	}
	r.cat = cat
	r.compiled = c
	return nil
}

// BindPrecompiled attaches an externally stored compiled form, e.g. one
// restored from the disk cache. The catalog must be the one the form was
// compiled against; digests are compared to make sure.
func (r *Rule) BindPrecompiled(cat *catalog.Catalog, c *Compiled) error {
	if cat == nil {
		return ErrNoCatalog
	}
	if c == nil {
		return ErrNotCompiled
	}
	if c.CatalogDigest != cat.Digest() {
		return ErrCatalogMismatch
	}
	r.cat = cat
	r.compiled = c
	return nil
}

// Unbind drops the catalog and the compiled form.
func (r *Rule) Unbind() {
	r.cat = nil
	r.compiled = nil
}

// Compiled returns the catalog-bound form, or ErrNotCompiled.
func (r *Rule) Compiled() (*Compiled, error) {
	if r.compiled == nil {
		return nil, ErrNotCompiled
	}
	return r.compiled, nil
}

// Catalog returns the bound catalog, nil when unbound.
func (r *Rule) Catalog() *catalog.Catalog {
	return r.cat
}

// Apply rewrites one word, returning the result and whether it changed.
func (r *Rule) Apply(word string) (string, bool, error) {
	if r.compiled == nil {
		return word, false, ErrNotCompiled
	}
	out, changed := r.compiled.Apply(word)
	return out, changed, nil
}

// String returns the rule as the user wrote it.
func (r *Rule) String() string {
	return r.raw
}

// Text returns the rule after abbreviation substitution.
func (r *Rule) Text() string {
	return r.text
}

func (r *Rule) Target() string {
	return r.notation.TargetText
}

func (r *Rule) Replacement() string {
	return r.notation.ReplacementText
}

func (r *Rule) Environment() string {
	return r.notation.EnvironmentText
}

// DefaultEnvironment reports whether the environment was synthesized
// because the rule had no '/' part.
func (r *Rule) DefaultEnvironment() bool {
	return r.notation.DefaultEnv
}

// Notation exposes the parsed element structure.
func (r *Rule) Notation() Notation {
	return r.notation
}

func replay(bag *diag.Bag, to diag.Reporter) {
	if to == nil {
		return
	}
	for _, d := range bag.Items() {
		to.Report(d.Code, d.Severity, d.Primary, d.Message, d.Notes)
	}
}

func firstError(bag *diag.Bag) error {
	for _, d := range bag.Items() {
		if d.Severity == diag.SevError {
			return &FormatError{Code: d.Code, Span: d.Primary, Message: d.Message}
		}
	}
	// Parse провалился, но ошибки в Bag нет (переполнение лимита).
	return &FormatError{Code: diag.SynEmptyRule, Message: "rule cannot be parsed"}
}
