package driver

import (
	"soundlaw/internal/diag"
	"soundlaw/internal/language"
	"soundlaw/internal/rule"
	"soundlaw/internal/source"
)

// TokenizeResult carries the token stream of one inline rule together with
// the diagnostics the lexer produced.
type TokenizeResult struct {
	FileSet *source.FileSet
	File    *source.File
	Tokens  []rule.Token
	Bag     *diag.Bag
}

// TokenizeRule lexes an inline rule string. Аббревиатуры не подставляются:
// дамп токенов показывает ровно то, что написал пользователь.
func TokenizeRule(text string, maxDiagnostics int) *TokenizeResult {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("rule", []byte(text)))

	bag := diag.NewBag(maxDiagnostics)
	lx := rule.NewLexer(file, diag.BagReporter{Bag: bag})

	return &TokenizeResult{
		FileSet: fs,
		File:    file,
		Tokens:  lx.All(),
		Bag:     bag,
	}
}

// LineTokens pairs one rule line of a .law file with its token stream.
type LineTokens struct {
	Line   language.RuleLine
	Tokens []rule.Token
}

// TokenizeFileResult carries the per-line token streams of a rule file.
type TokenizeFileResult struct {
	FileSet *source.FileSet
	File    *source.File
	Lines   []LineTokens
	Bag     *diag.Bag
}

// TokenizeFile lexes every rule line of a .law file. Каждая строка
// сканируется в границах своего span'а, поэтому диагностики указывают на
// реальные позиции в файле. Comments and blank lines are skipped.
func TokenizeFile(path string, maxDiagnostics int) (*TokenizeFileResult, error) {
	fs := source.NewFileSet()
	file, lines, err := language.LoadRuleFile(fs, path)
	if err != nil {
		return nil, err
	}

	bag := diag.NewBag(maxDiagnostics)
	res := &TokenizeFileResult{
		FileSet: fs,
		File:    file,
		Lines:   make([]LineTokens, 0, len(lines)),
		Bag:     bag,
	}
	for _, ln := range lines {
		lx := rule.NewLexerRange(file, ln.Span.Start, ln.Span.End, diag.BagReporter{Bag: bag})
		res.Lines = append(res.Lines, LineTokens{Line: ln, Tokens: lx.All()})
	}
	return res, nil
}
