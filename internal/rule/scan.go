package rule

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"soundlaw/internal/diag"
	"soundlaw/internal/ipa"
)

// scanToken dispatches on the current byte. Trivia has been skipped and the
// cursor is not at EOF.
func (lx *Lexer) scanToken() Token {
	m := lx.cursor.Mark()
	ch := lx.cursor.Peek()

	switch ch {
	case '-':
		lx.cursor.Bump()
		if lx.cursor.Eat('>') {
			return lx.token(Arrow, m)
		}
		sp := lx.cursor.SpanFrom(m)
		lx.report(diag.LexUnknownChar, sp, "stray '-'; arrows are written '->'")
		return lx.token(Invalid, m)

	case '/':
		lx.cursor.Bump()
		return lx.token(Slash, m)

	case '_':
		lx.cursor.Bump()
		return lx.token(Underscore, m)

	case '!':
		lx.cursor.Bump()
		return lx.token(Bang, m)

	case '#':
		lx.cursor.Bump()
		return lx.token(Hash, m)

	case '0':
		lx.cursor.Bump()
		return lx.token(Zero, m)

	case '[':
		lx.cursor.Bump()
		return lx.token(LBracket, m)
	case ']':
		lx.cursor.Bump()
		return lx.token(RBracket, m)
	case '{':
		lx.cursor.Bump()
		return lx.token(LBrace, m)
	case '}':
		lx.cursor.Bump()
		return lx.token(RBrace, m)
	case '(':
		lx.cursor.Bump()
		return lx.token(LParen, m)
	case ')':
		lx.cursor.Bump()
		return lx.token(RParen, m)
	case ',':
		lx.cursor.Bump()
		return lx.token(Comma, m)

	case '.':
		return lx.scanUnsupported(m, "syllable and wildcard notation ('.', '...') is not supported")
	case '$':
		lx.cursor.Bump()
		sp := lx.cursor.SpanFrom(m)
		lx.report(diag.LexUnsupportedNotation, sp, "'$' stem notation is not supported")
		return lx.token(Invalid, m)
	case '\'':
		lx.cursor.Bump()
		sp := lx.cursor.SpanFrom(m)
		lx.report(diag.LexUnsupportedNotation, sp, "stress notation is not supported")
		return lx.token(Invalid, m)
	}

	if ch >= '1' && ch <= '9' {
		lx.cursor.Bump()
		sp := lx.cursor.SpanFrom(m)
		lx.report(diag.LexUnknownChar, sp, fmt.Sprintf("digit %q in rule notation; only '0' has a meaning", ch))
		return lx.token(Invalid, m)
	}

	r, _ := lx.cursor.PeekRune()
	if r == '…' {
		lx.cursor.BumpRune()
		sp := lx.cursor.SpanFrom(m)
		lx.report(diag.LexUnsupportedNotation, sp, "wildcard notation ('…') is not supported")
		return lx.token(Invalid, m)
	}
	if r == 'ˈ' || r == 'ˌ' {
		lx.cursor.BumpRune()
		sp := lx.cursor.SpanFrom(m)
		lx.report(diag.LexUnsupportedNotation, sp, "stress notation is not supported")
		return lx.token(Invalid, m)
	}
	if isSymbolRune(r) {
		return lx.scanSymbol()
	}

	lx.cursor.BumpRune()
	sp := lx.cursor.SpanFrom(m)
	lx.report(diag.LexUnknownChar, sp, fmt.Sprintf("unknown character %q", r))
	return lx.token(Invalid, m)
}

// scanSymbol consumes a run of letters and combining marks. A '-' joins the
// run only when another symbol rune follows, so "close-mid" stays one token
// while "->" never does.
func (lx *Lexer) scanSymbol() Token {
	m := lx.cursor.Mark()
	for !lx.cursor.EOF() {
		r, _ := lx.cursor.PeekRune()
		if isSymbolRune(r) {
			lx.cursor.BumpRune()
			continue
		}
		if r == '-' {
			probe := lx.cursor
			probe.Bump()
			if nr, _ := probe.PeekRune(); isSymbolRune(nr) {
				lx.cursor.Bump()
				continue
			}
		}
		break
	}
	tok := lx.token(Symbol, m)
	// Символы приводятся к NFD, как и транскрипции в каталоге.
	tok.Text = ipa.Normalize(tok.Text)
	return tok
}

// scanUnsupported consumes '.' or the '...' triple as one rejected token.
func (lx *Lexer) scanUnsupported(m Mark, msg string) Token {
	lx.cursor.Bump()
	for lx.cursor.Peek() == '.' {
		lx.cursor.Bump()
	}
	sp := lx.cursor.SpanFrom(m)
	lx.report(diag.LexUnsupportedNotation, sp, msg)
	return lx.token(Invalid, m)
}

func (lx *Lexer) token(kind Kind, m Mark) Token {
	sp := lx.cursor.SpanFrom(m)
	return Token{
		Kind: kind,
		Span: sp,
		Text: string(lx.file.Content[sp.Start:sp.End]),
	}
}

func isSymbolRune(r rune) bool {
	if r == utf8.RuneError {
		return false
	}
	// знаки ударения из категории Lm символами не считаем
	if r == 'ˈ' || r == 'ˌ' {
		return false
	}
	return unicode.IsLetter(r) || unicode.IsMark(r)
}
