package driver

import (
	"fmt"

	"soundlaw/internal/catalog"
	"soundlaw/internal/diag"
	"soundlaw/internal/language"
	"soundlaw/internal/observ"
	"soundlaw/internal/rule"
	"soundlaw/internal/source"
)

// CompileOptions configure rule file compilation.
type CompileOptions struct {
	// MaxDiagnostics caps the bag; <= 0 means DefaultMaxDiagnostics.
	MaxDiagnostics int

	// Abbreviations substituted into every rule line. nil means the
	// built-in table; CompileManifestRules подставляет таблицу манифеста.
	Abbreviations *rule.Abbreviations

	// ExpansionLimit passed through to rule compilation. <= 0 means
	// rule.DefaultExpansionLimit.
	ExpansionLimit int

	// Cache holds precompiled change maps between runs. nil disables it.
	Cache *RuleCache

	// BaseDir anchors relative path rendering for the loaded files.
	// Манифестные обёртки подставляют сюда корень проекта.
	BaseDir string

	// Timer collects phase timings. nil disables them.
	Timer *observ.Timer

	// Observer receives phase boundaries as they happen. nil skips them.
	Observer PhaseObserver
}

// phase starts a named phase on both the timer and the observer and
// returns the closure that finishes it.
func (o CompileOptions) phase(name string) func(note string) {
	stop := o.Timer.Track(name)
	end := o.Observer.begin(name)
	return func(note string) {
		end()
		stop(note)
	}
}

func (o CompileOptions) withDefaults() CompileOptions {
	if o.MaxDiagnostics <= 0 {
		o.MaxDiagnostics = DefaultMaxDiagnostics
	}
	if o.Abbreviations == nil {
		o.Abbreviations = rule.DefaultAbbreviations()
	}
	return o
}

// CompileResult carries the bound rules of a .law file. Rules[i]
// соответствует Lines[i]; nil на месте строк, которые не разобрались.
// Строки, которые разобрались, но не скомпилировались, остаются в Rules
// без связанной формы; подробности в Bag.
type CompileResult struct {
	FileSet *source.FileSet
	File    *source.File
	Lines   []language.RuleLine
	Rules   []*rule.Rule
	Bag     *diag.Bag

	// CacheHits counts rules restored from the disk cache.
	CacheHits int
}

// BoundRules returns the fully compiled rules in file order. ok is false
// when any line failed to parse or bind.
func (r *CompileResult) BoundRules() ([]*rule.Rule, bool) {
	out := make([]*rule.Rule, 0, len(r.Rules))
	ok := true
	for _, ru := range r.Rules {
		if ru == nil {
			ok = false
			continue
		}
		if _, err := ru.Compiled(); err != nil {
			ok = false
			continue
		}
		out = append(out, ru)
	}
	return out, ok
}

// ChangeMaps returns the change map of every line, nil for lines that
// failed to parse or bind.
func (r *CompileResult) ChangeMaps() []*rule.ChangeMap {
	out := make([]*rule.ChangeMap, len(r.Rules))
	for i, ru := range r.Rules {
		if ru == nil {
			continue
		}
		if c, err := ru.Compiled(); err == nil {
			out[i] = c.Changes
		}
	}
	return out
}

// CompileRules parses a .law file and binds every rule to cat.
func CompileRules(path string, cat *catalog.Catalog, opts CompileOptions) (*CompileResult, error) {
	if cat == nil {
		return nil, rule.ErrNoCatalog
	}
	opts = opts.withDefaults()
	return compileInto(path, cat, opts, diag.NewBag(opts.MaxDiagnostics))
}

// CompileManifestRules builds the manifest's catalog and binds its rule
// file against it. Catalog warnings land in the same bag as rule
// diagnostics.
func CompileManifestRules(m *language.Manifest, opts CompileOptions) (*CompileResult, *catalog.Catalog, error) {
	if opts.Abbreviations == nil {
		opts.Abbreviations = m.Abbreviations()
	}
	if opts.BaseDir == "" {
		opts.BaseDir = m.Root
	}
	opts = opts.withDefaults()

	path, ok := m.RulesPath()
	if !ok {
		return nil, nil, fmt.Errorf("%s: no [files] rules configured", m.Path)
	}

	bag := diag.NewBag(opts.MaxDiagnostics)
	cat, err := m.Catalog(diag.BagReporter{Bag: bag})
	if err != nil {
		return nil, nil, err
	}

	res, err := compileInto(path, cat, opts, bag)
	if err != nil {
		return nil, nil, err
	}
	return res, cat, nil
}

// CheckRules compiles a rule file purely for its diagnostics: the
// manifest's rule file, or an explicit path when path is non-empty
// (проверка чернового файла против каталога языка). Timings are
// lowered into the bag, and the bag comes back sorted for rendering.
func CheckRules(m *language.Manifest, path string, opts CompileOptions) (*CompileResult, error) {
	if opts.Abbreviations == nil {
		opts.Abbreviations = m.Abbreviations()
	}
	if opts.BaseDir == "" {
		opts.BaseDir = m.Root
	}
	opts = opts.withDefaults()

	if path == "" {
		var ok bool
		path, ok = m.RulesPath()
		if !ok {
			return nil, fmt.Errorf("%s: no [files] rules configured", m.Path)
		}
	}

	bag := diag.NewBag(opts.MaxDiagnostics)
	cat, err := m.Catalog(diag.BagReporter{Bag: bag})
	if err != nil {
		return nil, err
	}

	res, err := compileInto(path, cat, opts, bag)
	if err != nil {
		return nil, err
	}
	AppendTimings(res.Bag, opts.Timer, "check", res.File.Path)
	res.Bag.Sort()
	return res, nil
}

func compileInto(path string, cat *catalog.Catalog, opts CompileOptions, bag *diag.Bag) (*CompileResult, error) {
	reporter := diag.BagReporter{Bag: bag}

	stopLoad := opts.phase("load")
	fs := source.NewFileSetWithBase(opts.BaseDir)
	file, lines, err := language.LoadRuleFile(fs, path)
	if err != nil {
		return nil, err
	}
	stopLoad(fmt.Sprintf("%d rules", len(lines)))

	stopParse := opts.phase("parse")
	rules := parseLines(fs, file, lines, rule.Options{
		Abbreviations:  opts.Abbreviations,
		ExpansionLimit: opts.ExpansionLimit,
		Reporter:       reporter,
	})
	stopParse("")

	res := &CompileResult{
		FileSet: fs,
		File:    file,
		Lines:   lines,
		Rules:   rules,
		Bag:     bag,
	}

	stopCompile := opts.phase("compile")
	digest := cat.Digest()
	// Сломанный кэш иначе повторяет одно и то же предупреждение
	// на каждое правило файла.
	cacheReporter := diag.NewDedupReporter(reporter)
	for _, r := range rules {
		if r == nil {
			continue
		}
		// Ключ считается от текста после подстановки аббревиатур: другая
		// таблица в манифесте даёт другой ключ.
		key := CacheKey(digest, r.Text())
		if c, hit := cacheGet(opts.Cache, key, digest, cacheReporter); hit {
			if err := r.BindPrecompiled(cat, c); err == nil {
				res.CacheHits++
				continue
			}
		}
		if err := r.Bind(cat); err != nil {
			// Диагностика уже в Bag; правило остаётся без связанной формы.
			continue
		}
		cachePut(opts.Cache, key, r, cacheReporter)
	}
	if opts.Cache != nil {
		stopCompile(fmt.Sprintf("%d cache hits", res.CacheHits))
	} else {
		stopCompile("")
	}

	return res, nil
}

func cacheGet(cache *RuleCache, key, digest [32]byte, reporter diag.Reporter) (*rule.Compiled, bool) {
	if cache == nil {
		return nil, false
	}
	c, ok, err := cache.Get(key, digest)
	if err != nil {
		diag.ReportWarning(reporter, diag.IOCacheError, source.Span{},
			fmt.Sprintf("cache read failed: %v", err)).Emit()
		return nil, false
	}
	return c, ok
}

func cachePut(cache *RuleCache, key [32]byte, r *rule.Rule, reporter diag.Reporter) {
	if cache == nil {
		return
	}
	c, err := r.Compiled()
	if err != nil {
		return
	}
	if err := cache.Put(key, c); err != nil {
		diag.ReportWarning(reporter, diag.IOCacheError, source.Span{},
			fmt.Sprintf("cache write failed: %v", err)).Emit()
	}
}
