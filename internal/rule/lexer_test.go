package rule_test

import (
	"testing"

	"soundlaw/internal/diag"
	"soundlaw/internal/rule"
	"soundlaw/internal/source"
	"soundlaw/internal/testkit"
)

// testReporter собирает все диагностики, полученные от фаз.
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

func (r *testReporter) hasErrors() bool {
	for _, d := range r.diags {
		if d.Severity == diag.SevError {
			return true
		}
	}
	return false
}

func (r *testReporter) messages() []string {
	out := make([]string, 0, len(r.diags))
	for _, d := range r.diags {
		out = append(out, d.Code.ID()+": "+d.Message)
	}
	return out
}

func makeFile(input string) *source.File {
	fs := source.NewFileSet()
	return fs.Get(fs.AddVirtual("test.law", []byte(input)))
}

func lexAll(input string) ([]rule.Token, *testReporter) {
	rep := &testReporter{}
	lx := rule.NewLexer(makeFile(input), rep)
	return lx.All(), rep
}

// expectKinds проверяет последовательность типов токенов.
func expectKinds(t *testing.T, input string, expected ...rule.Kind) []rule.Token {
	t.Helper()
	toks, rep := lexAll(input)
	if len(toks) != len(expected) {
		t.Fatalf("input %q: expected %d tokens, got %d\ntokens: %v\ndiags: %v",
			input, len(expected), len(toks), toks, rep.messages())
	}
	for i, tok := range toks {
		if tok.Kind != expected[i] {
			t.Errorf("input %q token %d: expected %v, got %v (text %q)",
				input, i, expected[i], tok.Kind, tok.Text)
		}
	}
	return toks
}

func TestLexFullRule(t *testing.T) {
	expectKinds(t, "t -> d / a_#",
		rule.Symbol, rule.Arrow, rule.Symbol, rule.Slash,
		rule.Symbol, rule.Underscore, rule.Hash)
}

func TestLexNoSpaces(t *testing.T) {
	toks := expectKinds(t, "t->d/a_#",
		rule.Symbol, rule.Arrow, rule.Symbol, rule.Slash,
		rule.Symbol, rule.Underscore, rule.Hash)
	if toks[0].Text != "t" || toks[2].Text != "d" {
		t.Errorf("symbol texts wrong: %q, %q", toks[0].Text, toks[2].Text)
	}
}

func TestLexClassSetGroup(t *testing.T) {
	expectKinds(t, "[voiced,plosive]{a,b}(c)",
		rule.LBracket, rule.Symbol, rule.Comma, rule.Symbol, rule.RBracket,
		rule.LBrace, rule.Symbol, rule.Comma, rule.Symbol, rule.RBrace,
		rule.LParen, rule.Symbol, rule.RParen)
}

func TestLexZeroBangBoundary(t *testing.T) {
	expectKinds(t, "0 -> j / !i_#",
		rule.Zero, rule.Arrow, rule.Symbol, rule.Slash,
		rule.Bang, rule.Symbol, rule.Underscore, rule.Hash)
}

// Дескриптор с дефисом остаётся одним токеном, стрелка с него не начинается.
func TestLexHyphenatedDescriptor(t *testing.T) {
	toks := expectKinds(t, "[close-mid]", rule.LBracket, rule.Symbol, rule.RBracket)
	if toks[1].Text != "close-mid" {
		t.Errorf("expected descriptor %q, got %q", "close-mid", toks[1].Text)
	}
}

func TestLexSymbolNormalizedToNFD(t *testing.T) {
	// "ã" на входе в NFC, текст токена должен выйти в NFD
	toks, rep := lexAll("ã -> a")
	if rep.hasErrors() {
		t.Fatalf("unexpected errors: %v", rep.messages())
	}
	if len(toks) != 3 {
		t.Fatalf("expected 3 tokens, got %d", len(toks))
	}
	if toks[0].Text != "ã" {
		t.Errorf("expected NFD %q, got %q", "ã", toks[0].Text)
	}
}

func TestLexCombiningMarksJoinSymbol(t *testing.T) {
	// tʰ = t + модификатор придыхания, один токен
	toks, _ := lexAll("tʰ")
	if len(toks) != 1 || toks[0].Kind != rule.Symbol || toks[0].Text != "tʰ" {
		t.Fatalf("expected single Symbol %q, got %v", "tʰ", toks)
	}
}

func TestLexCommentSkipped(t *testing.T) {
	expectKinds(t, "t -> d // voicing between vowels",
		rule.Symbol, rule.Arrow, rule.Symbol)
}

func TestLexStrayDash(t *testing.T) {
	toks, rep := lexAll("t - d")
	if len(toks) != 3 || toks[1].Kind != rule.Invalid {
		t.Fatalf("expected Invalid in the middle, got %v", toks)
	}
	if rep.countCode(diag.LexUnknownChar) != 1 {
		t.Errorf("expected one LexUnknownChar, got %v", rep.messages())
	}
}

func TestLexUnsupportedNotation(t *testing.T) {
	tests := []struct {
		input string
		code  diag.Code
	}{
		{"'", diag.LexUnsupportedNotation},
		{".", diag.LexUnsupportedNotation},
		{"...", diag.LexUnsupportedNotation},
		{"…", diag.LexUnsupportedNotation},
		{"$", diag.LexUnsupportedNotation},
		{"5", diag.LexUnknownChar},
		{"?", diag.LexUnknownChar},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			toks, rep := lexAll(tt.input)
			if len(toks) != 1 || toks[0].Kind != rule.Invalid {
				t.Fatalf("expected single Invalid token, got %v", toks)
			}
			if rep.countCode(tt.code) != 1 {
				t.Errorf("expected %s, got %v", tt.code.ID(), rep.messages())
			}
		})
	}
}

func TestLexDotsCollapseToOneToken(t *testing.T) {
	toks, rep := lexAll("a...b")
	if len(toks) != 3 {
		t.Fatalf("expected 3 tokens, got %v", toks)
	}
	if toks[1].Kind != rule.Invalid || toks[1].Text != "..." {
		t.Errorf("expected Invalid %q, got %v %q", "...", toks[1].Kind, toks[1].Text)
	}
	if rep.countCode(diag.LexUnsupportedNotation) != 1 {
		t.Errorf("dots run must be reported once, got %v", rep.messages())
	}
}

func TestLexPeekDoesNotConsume(t *testing.T) {
	rep := &testReporter{}
	lx := rule.NewLexer(makeFile("t -> d"), rep)
	first := lx.Peek()
	again := lx.Next()
	if first != again {
		t.Errorf("Peek returned %v, Next returned %v", first, again)
	}
	if next := lx.Next(); next.Kind != rule.Arrow {
		t.Errorf("expected Arrow after peeked symbol, got %v", next)
	}
}

func TestLexEOFIsSticky(t *testing.T) {
	rep := &testReporter{}
	lx := rule.NewLexer(makeFile(""), rep)
	for i := 0; i < 3; i++ {
		if tok := lx.Next(); tok.Kind != rule.EOF {
			t.Fatalf("call %d: expected EOF, got %v", i, tok)
		}
	}
}

// Спаны токенов прогоняются через общие инварианты testkit: упорядочены,
// не пересекаются, не выходят за пределы файла.
func TestLexTokenSpanInvariants(t *testing.T) {
	inputs := []string{
		"t -> d / a_#",
		"[voiced,plosive]{a,b}(c)",
		"ã -> a // tail comment",
		"tʰ->0/!{i,u}_",
	}
	for _, input := range inputs {
		file := makeFile(input)
		rep := &testReporter{}
		toks := rule.NewLexer(file, rep).All()
		if err := testkit.CheckTokenSpanInvariants(toks, file); err != nil {
			t.Errorf("input %q: %v", input, err)
		}
	}
}

func TestLexRangeSingleLine(t *testing.T) {
	content := "x -> y\nt -> d"
	file := makeFile(content)
	rep := &testReporter{}
	lx := rule.NewLexerRange(file, 7, uint32(len(content)), rep)
	toks := lx.All()
	if len(toks) != 3 {
		t.Fatalf("expected 3 tokens from the second line, got %v", toks)
	}
	if toks[0].Text != "t" || toks[2].Text != "d" {
		t.Errorf("wrong line lexed: %v", toks)
	}
}
