package rule

import (
	"soundlaw/internal/diag"
	"soundlaw/internal/source"
)

// Lexer produces rule notation tokens from a file fragment. Whitespace and
// // comments are skipped; errors are reported through the diag.Reporter
// and surface as Invalid tokens so scanning can continue.
type Lexer struct {
	file     *source.File
	cursor   Cursor
	reporter diag.Reporter
	look     *Token // 1 элементный буфер для токена
}

// NewLexer scans the whole file.
func NewLexer(file *source.File, reporter diag.Reporter) *Lexer {
	return &Lexer{
		file:     file,
		cursor:   NewCursor(file),
		reporter: reporter,
	}
}

// NewLexerRange scans [start, end) of the file, typically a single line of
// a rule file.
func NewLexerRange(file *source.File, start, end uint32, reporter diag.Reporter) *Lexer {
	return &Lexer{
		file:     file,
		cursor:   NewCursorRange(file, start, end),
		reporter: reporter,
	}
}

// Next возвращает следующий значимый токен.
// После EOF всегда возвращает EOF.
func (lx *Lexer) Next() Token {
	if lx.look != nil {
		tok := *lx.look
		lx.look = nil
		return tok
	}

	lx.skipTrivia()

	if lx.cursor.EOF() {
		return Token{
			Kind: EOF,
			Span: lx.emptySpan(),
			Text: "",
		}
	}

	return lx.scanToken()
}

// Peek возвращает следующий токен, не потребляя его.
func (lx *Lexer) Peek() Token {
	t := lx.Next()
	lx.look = &t
	return t
}

// All drains the lexer and returns every token before EOF.
func (lx *Lexer) All() []Token {
	var out []Token
	for {
		tok := lx.Next()
		if tok.Kind == EOF {
			return out
		}
		out = append(out, tok)
	}
}

// skipTrivia consumes whitespace and // comments.
func (lx *Lexer) skipTrivia() {
	for !lx.cursor.EOF() {
		switch lx.cursor.Peek() {
		case ' ', '\t', '\r', '\n':
			lx.cursor.Bump()
		case '/':
			// '/' is the environment separator unless doubled
			if b0, b1, ok := lx.cursor.Peek2(); ok && b0 == '/' && b1 == '/' {
				for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
					lx.cursor.Bump()
				}
				continue
			}
			return
		default:
			return
		}
	}
}

func (lx *Lexer) emptySpan() source.Span {
	return source.Span{File: lx.file.ID, Start: lx.cursor.Off, End: lx.cursor.Off}
}

func (lx *Lexer) report(code diag.Code, sp source.Span, msg string) {
	diag.ReportError(lx.reporter, code, sp, msg).Emit()
}
