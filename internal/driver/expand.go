package driver

import (
	"soundlaw/internal/catalog"
	"soundlaw/internal/diag"
	"soundlaw/internal/language"
	"soundlaw/internal/rule"
	"soundlaw/internal/source"
)

// ExpandResult carries one inline rule compiled against a catalog, with
// the diagnostics of every phase. Rule равен nil, когда текст не
// разобрался; правило без связанной формы означает ошибку компиляции.
type ExpandResult struct {
	FileSet *source.FileSet
	File    *source.File
	Rule    *rule.Rule
	Bag     *diag.Bag
}

// Ok reports whether the rule parsed and bound.
func (r *ExpandResult) Ok() bool {
	if r.Rule == nil {
		return false
	}
	_, err := r.Rule.Compiled()
	return err == nil
}

// ExpandRule parses an inline rule and binds it to cat. Как и у
// TokenizeRule, текст живёт в виртуальном буфере, так что диагностики
// указывают в то, что увидел компилятор.
func ExpandRule(text string, cat *catalog.Catalog, opts CompileOptions) (*ExpandResult, error) {
	if cat == nil {
		return nil, rule.ErrNoCatalog
	}
	opts = opts.withDefaults()
	return expandInto(text, cat, opts, diag.NewBag(opts.MaxDiagnostics))
}

// ExpandManifestRule builds the manifest's catalog and expands the rule
// against it with the manifest's abbreviation table. Catalog warnings land
// in the same bag as rule diagnostics.
func ExpandManifestRule(m *language.Manifest, text string, opts CompileOptions) (*ExpandResult, error) {
	if opts.Abbreviations == nil {
		opts.Abbreviations = m.Abbreviations()
	}
	opts = opts.withDefaults()

	bag := diag.NewBag(opts.MaxDiagnostics)
	cat, err := m.Catalog(diag.BagReporter{Bag: bag})
	if err != nil {
		return nil, err
	}
	return expandInto(text, cat, opts, bag)
}

func expandInto(text string, cat *catalog.Catalog, opts CompileOptions, bag *diag.Bag) (*ExpandResult, error) {
	reporter := diag.BagReporter{Bag: bag}

	fs := source.NewFileSet()
	expanded := opts.Abbreviations.Apply(text)
	file := fs.Get(fs.AddVirtual("rule", []byte(expanded)))

	res := &ExpandResult{FileSet: fs, File: file, Bag: bag}
	n, ok := rule.Parse(file, reporter)
	if !ok {
		return res, nil
	}

	res.Rule = rule.FromNotation(text, expanded, n, rule.Options{
		ExpansionLimit: opts.ExpansionLimit,
		Reporter:       reporter,
	})
	if err := res.Rule.Bind(cat); err != nil {
		// Диагностика уже в Bag; правило остаётся без связанной формы.
		return res, nil
	}
	return res, nil
}
