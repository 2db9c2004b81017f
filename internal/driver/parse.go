package driver

import (
	"fmt"

	"soundlaw/internal/diag"
	"soundlaw/internal/language"
	"soundlaw/internal/rule"
	"soundlaw/internal/source"
)

// DefaultMaxDiagnostics bounds the diagnostic bag when the caller does not.
const DefaultMaxDiagnostics = 64

// ParseResult carries the parsed, still unbound rules of a .law file.
// Rules[i] соответствует Lines[i]; nil на месте строк с ошибками разбора.
type ParseResult struct {
	FileSet *source.FileSet
	File    *source.File
	Lines   []language.RuleLine
	Rules   []*rule.Rule
	Bag     *diag.Bag
}

// Ok reports whether every rule line parsed.
func (r *ParseResult) Ok() bool {
	for _, ru := range r.Rules {
		if ru == nil {
			return false
		}
	}
	return true
}

// ParseRuleFile parses every rule line of a .law file without binding the
// rules to a catalog. abbrevs may be nil for the built-in table.
func ParseRuleFile(path string, abbrevs *rule.Abbreviations, maxDiagnostics int) (*ParseResult, error) {
	if maxDiagnostics <= 0 {
		maxDiagnostics = DefaultMaxDiagnostics
	}
	if abbrevs == nil {
		abbrevs = rule.DefaultAbbreviations()
	}

	fs := source.NewFileSet()
	file, lines, err := language.LoadRuleFile(fs, path)
	if err != nil {
		return nil, err
	}

	bag := diag.NewBag(maxDiagnostics)
	rules := parseLines(fs, file, lines, rule.Options{
		Abbreviations: abbrevs,
		Reporter:      diag.BagReporter{Bag: bag},
	})

	return &ParseResult{
		FileSet: fs,
		File:    file,
		Lines:   lines,
		Rules:   rules,
		Bag:     bag,
	}, nil
}

// parseLines разбирает каждую строку файла правил. Если подстановка
// аббревиатур не меняет текст, строка парсится прямо в границах своего
// span'а и диагностики указывают в настоящий файл. Иначе развёрнутый текст
// добавляется виртуальным файлом, чтобы позиции совпадали с тем, что
// реально видел парсер.
func parseLines(fs *source.FileSet, file *source.File, lines []language.RuleLine, opts rule.Options) []*rule.Rule {
	rules := make([]*rule.Rule, len(lines))
	for i, ln := range lines {
		expanded := opts.Abbreviations.Apply(ln.Text)

		var (
			n  rule.Notation
			ok bool
		)
		if expanded == ln.Text {
			n, ok = rule.ParseRange(file, ln.Span.Start, ln.Span.End, opts.Reporter)
		} else {
			start, _ := fs.Resolve(ln.Span)
			name := fmt.Sprintf("%s:%d", file.Path, start.Line)
			vf := fs.Get(fs.AddVirtual(name, []byte(expanded)))
			n, ok = rule.Parse(vf, opts.Reporter)
		}
		if !ok {
			continue
		}
		rules[i] = rule.FromNotation(ln.Text, expanded, n, opts)
	}
	return rules
}
