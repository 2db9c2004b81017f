package rule

import (
	"fmt"
	"strings"

	"soundlaw/internal/diag"
	"soundlaw/internal/source"
)

// Notation is the parsed form of one rule line, before any catalog is
// involved. Segment texts are the whitespace-free notation, kept for
// display and for cache keying.
type Notation struct {
	Target      []Element
	Replacement []Element
	Environment []Element

	TargetText      string
	ReplacementText string
	EnvironmentText string

	Span source.Span

	// DefaultEnv is set when the rule had no '/' and the environment was
	// synthesized as a bare placeholder.
	DefaultEnv bool
}

// segment names the role a sequence of elements plays inside a rule. Some
// forms are only legal in some roles.
type segment uint8

const (
	segTarget segment = iota
	segReplacement
	segEnvironment
)

func (s segment) String() string {
	switch s {
	case segTarget:
		return "target"
	case segReplacement:
		return "replacement"
	case segEnvironment:
		return "environment"
	}
	return "segment"
}

// elemCtx tracks nesting while parsing, to reject forms like nested
// optionals without a separate validation pass.
type elemCtx uint8

const (
	ctxTop elemCtx = iota
	ctxSet
	ctxOptional
)

// Parse lexes and parses a whole file as a single rule.
func Parse(file *source.File, reporter diag.Reporter) (Notation, bool) {
	lx := NewLexer(file, reporter)
	return parseTokens(file, lx.All(), 0, reporter)
}

// ParseRange parses [start, end) of the file as a single rule, typically
// one line of a rule file.
func ParseRange(file *source.File, start, end uint32, reporter diag.Reporter) (Notation, bool) {
	lx := NewLexerRange(file, start, end, reporter)
	return parseTokens(file, lx.All(), start, reporter)
}

type parser struct {
	file     *source.File
	reporter diag.Reporter
	toks     []Token
	pos      int
	failed   bool
}

func parseTokens(file *source.File, toks []Token, anchor uint32, reporter diag.Reporter) (Notation, bool) {
	p := &parser{file: file, reporter: reporter}
	for _, t := range toks {
		if t.Kind == Invalid {
			// лексер уже отрепортил
			p.failed = true
		}
	}

	anchorSpan := source.Span{File: file.ID, Start: anchor, End: anchor}
	if len(toks) == 0 {
		p.fail(diag.SynEmptyRule, anchorSpan, "rule is empty")
		return Notation{Span: anchorSpan}, false
	}

	ruleSpan := toks[0].Span
	for _, t := range toks[1:] {
		ruleSpan = ruleSpan.Cover(t.Span)
	}

	arrow, slash := -1, -1
	for i, t := range toks {
		switch t.Kind {
		case Arrow:
			if arrow >= 0 {
				p.fail(diag.SynMultipleArrows, t.Span, "rule already has a '->'")
				continue
			}
			arrow = i
		case Slash:
			if slash >= 0 {
				p.fail(diag.SynMultipleSlashes, t.Span, "rule already has a '/'")
				continue
			}
			slash = i
		}
	}
	if arrow < 0 {
		p.fail(diag.SynMissingArrow, ruleSpan, "rule must contain '->'")
		return Notation{Span: ruleSpan}, false
	}
	if slash >= 0 && slash < arrow {
		p.fail(diag.SynUnexpectedToken, toks[slash].Span, "'/' must follow the replacement, not precede '->'")
		return Notation{Span: ruleSpan}, false
	}

	tgtToks := toks[:arrow]
	var replToks, envToks []Token
	if slash >= 0 {
		replToks = toks[arrow+1 : slash]
		envToks = toks[slash+1:]
	} else {
		replToks = toks[arrow+1:]
	}

	n := Notation{Span: ruleSpan, DefaultEnv: slash < 0}

	if len(tgtToks) == 0 {
		p.fail(diag.SynUnexpectedToken, toks[arrow].Span, "missing target before '->'")
	}
	if len(replToks) == 0 {
		sp := toks[arrow].Span
		if slash >= 0 {
			sp = toks[slash].Span
		}
		p.fail(diag.SynUnexpectedToken, sp, "missing replacement after '->'")
	}

	n.Target = p.parseSegment(tgtToks, segTarget)
	n.Replacement = p.parseSegment(replToks, segReplacement)
	if slash >= 0 {
		if len(envToks) == 0 {
			p.fail(diag.SynMissingPlaceholder, toks[slash].Span, "environment after '/' must contain '_'")
		}
		n.Environment = p.parseSegment(envToks, segEnvironment)
		p.checkPlaceholders(n.Environment, toks[slash].Span)
	} else {
		end := source.Span{File: file.ID, Start: ruleSpan.End, End: ruleSpan.End}
		n.Environment = []Element{PlaceholderElem(end)}
	}

	n.TargetText = segmentText(tgtToks)
	n.ReplacementText = segmentText(replToks)
	if slash >= 0 {
		n.EnvironmentText = segmentText(envToks)
	} else {
		n.EnvironmentText = "_"
	}

	return n, !p.failed
}

// segmentText joins token texts without the whitespace the lexer dropped,
// so "a _ #" and "a_#" read back the same.
func segmentText(toks []Token) string {
	var sb strings.Builder
	for _, t := range toks {
		sb.WriteString(t.Text)
	}
	return sb.String()
}

func (p *parser) parseSegment(toks []Token, seg segment) []Element {
	saveToks, savePos := p.toks, p.pos
	p.toks, p.pos = toks, 0

	var out []Element
	for p.pos < len(p.toks) {
		if e, ok := p.parseElement(seg, ctxTop); ok {
			out = append(out, e)
		}
	}

	p.toks, p.pos = saveToks, savePos
	return out
}

func (p *parser) checkPlaceholders(env []Element, slashSpan source.Span) {
	count := 0
	for _, e := range env {
		if e.Kind != ElemPlaceholder {
			continue
		}
		count++
		if count == 2 {
			p.fail(diag.SynMultiplePlaceholders, e.Span, "environment already has a '_'")
		}
	}
	if count == 0 {
		p.fail(diag.SynMissingPlaceholder, slashSpan, "environment after '/' must contain '_'")
	}
}

// parseElement consumes at least one token. ok is false when the tokens did
// not form a usable element; the error has already been reported.
func (p *parser) parseElement(seg segment, ctx elemCtx) (Element, bool) {
	tok := p.next()
	switch tok.Kind {
	case Symbol:
		return LiteralElem(tok.Span, tok.Text), true

	case Hash:
		if seg == segReplacement {
			p.fail(diag.SynUnexpectedToken, tok.Span, "word boundary cannot appear in the replacement")
			return Element{}, false
		}
		return BoundaryElem(tok.Span), true

	case Zero:
		return DeletionElem(tok.Span), true

	case Underscore:
		if seg != segEnvironment {
			p.fail(diag.SynPlaceholderOutsideEnv, tok.Span, fmt.Sprintf("'_' cannot appear in the %s", seg))
			return Element{}, false
		}
		if ctx != ctxTop {
			p.fail(diag.SynUnexpectedToken, tok.Span, "'_' cannot appear inside a group or set")
			return Element{}, false
		}
		return PlaceholderElem(tok.Span), true

	case Bang:
		return p.parseNegation(tok, seg)

	case LBracket:
		return p.parseClass(tok)

	case LBrace:
		if ctx != ctxTop {
			p.fail(diag.SynGroupInsideClass, tok.Span, "alternative sets cannot nest")
			p.skipUntil(RBrace)
			return Element{}, false
		}
		return p.parseAlts(tok, seg, ElemSet)

	case LParen:
		switch ctx {
		case ctxOptional:
			p.fail(diag.SynNestedGroup, tok.Span, "optional groups cannot nest")
			p.skipUntil(RParen)
			return Element{}, false
		case ctxSet:
			p.fail(diag.SynGroupInsideClass, tok.Span, "optional group not allowed inside a set")
			p.skipUntil(RParen)
			return Element{}, false
		}
		return p.parseAlts(tok, seg, ElemOptional)

	case RBracket, RBrace, RParen:
		p.fail(diag.SynUnexpectedClose, tok.Span, fmt.Sprintf("%s without an opener", tok.Kind))
		return Element{}, false

	case Comma:
		p.fail(diag.SynUnexpectedToken, tok.Span, "',' is only meaningful inside '[]', '{}' or '()'")
		return Element{}, false

	case Arrow, Slash:
		// уже отрепортили при разбиении
		return Element{}, false

	case Invalid:
		return Element{}, false
	}
	p.fail(diag.SynUnexpectedToken, tok.Span, fmt.Sprintf("unexpected %s", tok.Kind))
	return Element{}, false
}

// parseNegation consumes the operand after a '!'. The operand must be a
// single symbol, a descriptor class or an alternative set.
func (p *parser) parseNegation(bang Token, seg segment) (Element, bool) {
	switch p.peek().Kind {
	case Symbol:
		op := p.next()
		return NegatedElem(bang.Span.Cover(op.Span), LiteralElem(op.Span, op.Text)), true
	case LBracket:
		open := p.next()
		class, ok := p.parseClass(open)
		if !ok {
			return Element{}, false
		}
		return NegatedElem(bang.Span.Cover(class.Span), class), true
	case LBrace:
		open := p.next()
		set, ok := p.parseAlts(open, seg, ElemSet)
		if !ok {
			return Element{}, false
		}
		return NegatedElem(bang.Span.Cover(set.Span), set), true
	case LParen:
		p.fail(diag.SynBadNegation, bang.Span, "optional group cannot be negated")
		return Element{}, false
	}
	p.fail(diag.SynBadNegation, bang.Span, "'!' must be followed by a symbol, '[...]' or '{...}'")
	return Element{}, false
}

// parseClass consumes tokens after a '[' up to the matching ']'. Descriptors
// are comma separated; a '!' prefix negates one descriptor.
func (p *parser) parseClass(open Token) (Element, bool) {
	var tokens []string
	ok := true
	expectComma := false // после дескриптора ждём ',' или ']'
	end := open.Span

	for {
		tok := p.next()
		end = end.Cover(tok.Span)
		switch tok.Kind {
		case RBracket:
			if !expectComma && len(tokens) > 0 {
				p.fail(diag.SynDanglingSeparator, tok.Span, "',' before ']'")
				ok = false
			}
			if len(tokens) == 0 {
				p.fail(diag.SynEmptyClass, open.Span.Cover(tok.Span), "descriptor class is empty")
				ok = false
			}
			return ClassElem(open.Span.Cover(tok.Span), tokens), ok

		case Symbol:
			if expectComma {
				p.fail(diag.SynUnexpectedToken, tok.Span, "descriptors are separated by ','")
				ok = false
			}
			tokens = append(tokens, tok.Text)
			expectComma = true

		case Bang:
			if expectComma {
				p.fail(diag.SynUnexpectedToken, tok.Span, "descriptors are separated by ','")
				ok = false
			}
			if p.peek().Kind != Symbol {
				p.fail(diag.SynBadNegation, tok.Span, "'!' inside a class must prefix a descriptor")
				ok = false
				continue
			}
			op := p.next()
			end = end.Cover(op.Span)
			tokens = append(tokens, "!"+op.Text)
			expectComma = true

		case Comma:
			if !expectComma {
				p.fail(diag.SynDanglingSeparator, tok.Span, "',' without a descriptor before it")
				ok = false
			}
			expectComma = false

		case LBracket, LBrace, LParen:
			p.fail(diag.SynGroupInsideClass, tok.Span, fmt.Sprintf("%s not allowed inside a descriptor class", tok.Kind))
			ok = false

		case EOF:
			p.fail(diag.SynUnclosedBracket, open.Span, "missing ']'")
			return ClassElem(end, tokens), false

		case Invalid:
			ok = false

		default:
			p.fail(diag.SynUnexpectedToken, tok.Span, fmt.Sprintf("unexpected %s in descriptor class", tok.Kind))
			ok = false
		}
	}
}

// parseAlts consumes comma-separated alternatives up to the closing brace
// or paren, producing a set or an optional group.
func (p *parser) parseAlts(open Token, seg segment, kind ElemKind) (Element, bool) {
	closer, unclosed := RBrace, diag.SynUnclosedBrace
	ctx := ctxSet
	if kind == ElemOptional {
		closer, unclosed = RParen, diag.SynUnclosedParen
		ctx = ctxOptional
	}

	var alts [][]Element
	var alt []Element
	altHadTokens := false
	sawComma := false
	ok := true

	closeAlt := func(sp source.Span, atCloser bool) {
		if altHadTokens {
			alts = append(alts, alt)
			alt = nil
			altHadTokens = false
			return
		}
		if atCloser && len(alts) == 0 && !sawComma {
			// "{}" и "()" целиком пустые, репортятся ниже
			return
		}
		p.fail(diag.SynEmptyAlternative, sp, "empty alternative")
		ok = false
	}

	for {
		tok := p.peek()
		switch tok.Kind {
		case closer:
			p.next()
			closeAlt(tok.Span, true)
			full := open.Span.Cover(tok.Span)
			if len(alts) == 0 {
				if kind == ElemOptional {
					p.fail(diag.SynEmptyGroup, full, "optional group is empty")
				} else {
					p.fail(diag.SynEmptySet, full, "alternative set is empty")
				}
				return Element{Kind: kind, Span: full}, false
			}
			if kind == ElemOptional {
				return OptionalElem(full, alts), ok
			}
			return SetElem(full, alts), ok

		case Comma:
			p.next()
			closeAlt(tok.Span, false)
			sawComma = true

		case EOF:
			p.fail(unclosed, open.Span, fmt.Sprintf("missing %s", closer))
			return Element{Kind: kind, Span: open.Span}, false

		default:
			e, elemOK := p.parseElement(seg, ctx)
			altHadTokens = true
			if elemOK {
				alt = append(alt, e)
			} else {
				ok = false
			}
		}
	}
}

func (p *parser) peek() Token {
	if p.pos < len(p.toks) {
		return p.toks[p.pos]
	}
	return Token{Kind: EOF, Span: p.endSpan()}
}

func (p *parser) next() Token {
	t := p.peek()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

// skipUntil съедает токены до закрывающего kind включительно.
func (p *parser) skipUntil(kind Kind) {
	for {
		t := p.next()
		if t.Kind == kind || t.Kind == EOF {
			return
		}
	}
}

func (p *parser) endSpan() source.Span {
	if len(p.toks) > 0 {
		last := p.toks[len(p.toks)-1].Span
		return source.Span{File: last.File, Start: last.End, End: last.End}
	}
	return source.Span{File: p.file.ID}
}

func (p *parser) fail(code diag.Code, sp source.Span, msg string) {
	p.failed = true
	diag.ReportError(p.reporter, code, sp, msg).Emit()
}
