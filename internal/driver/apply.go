package driver

import (
	"context"
	"errors"
	"fmt"

	"soundlaw/internal/apply"
	"soundlaw/internal/catalog"
	"soundlaw/internal/ipa"
	"soundlaw/internal/language"
)

// ErrBrokenRules reports that the rule file has parse or compile errors.
// Подробности лежат в CompileResult.Bag.
var ErrBrokenRules = errors.New("rule file has errors")

// ApplyOptions configure a full pipeline run.
type ApplyOptions struct {
	CompileOptions

	// Jobs bounds how many words are rewritten at once; <= 0 uses
	// GOMAXPROCS.
	Jobs int

	// Events receives progress events. nil keeps the run silent.
	Events chan<- apply.Event
}

// ApplyResult carries the outcome of running a rule file over a word list.
type ApplyResult struct {
	Compile *CompileResult

	Input   []string
	Words   []string
	Changed []bool // Words[i] отличается от нормализованного Input[i]
	Stats   []apply.RuleStat
}

// ApplyWords compiles the rule file and runs every rule over words in file
// order. When compilation fails the result still carries the CompileResult
// so the caller can print the diagnostics; the error is ErrBrokenRules.
func ApplyWords(ctx context.Context, path string, words []string, cat *catalog.Catalog, opts ApplyOptions) (*ApplyResult, error) {
	cres, err := CompileRules(path, cat, opts.CompileOptions)
	if err != nil {
		return nil, err
	}
	return applyCompiled(ctx, cres, words, opts)
}

// ApplyLexicon runs the manifest's rule file over its lexicon. words
// overrides the lexicon when non-nil.
func ApplyLexicon(ctx context.Context, m *language.Manifest, words []string, opts ApplyOptions) (*ApplyResult, error) {
	cres, _, err := CompileManifestRules(m, opts.CompileOptions)
	if err != nil {
		return nil, err
	}
	if words == nil {
		path, ok := m.LexiconPath()
		if !ok {
			return nil, fmt.Errorf("%s: no [files] lexicon configured", m.Path)
		}
		words, err = language.LoadLexicon(cres.FileSet, path)
		if err != nil {
			return nil, err
		}
	}
	return applyCompiled(ctx, cres, words, opts)
}

func applyCompiled(ctx context.Context, cres *CompileResult, words []string, opts ApplyOptions) (*ApplyResult, error) {
	res := &ApplyResult{Compile: cres, Input: words}

	rules, ok := cres.BoundRules()
	if !ok {
		return res, ErrBrokenRules
	}

	stopApply := opts.phase("apply")
	out, stats, err := apply.Sequence(ctx, rules, words, apply.Options{
		Jobs:   opts.Jobs,
		Events: opts.Events,
	})
	stopApply(fmt.Sprintf("%d words", len(words)))
	if err != nil {
		return res, err
	}

	res.Words = out
	res.Stats = stats
	res.Changed = make([]bool, len(words))
	for i := range words {
		res.Changed[i] = out[i] != ipa.Normalize(words[i])
	}
	return res, nil
}
