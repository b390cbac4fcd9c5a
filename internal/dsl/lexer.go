package dsl

import (
	"fmt"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokNumber
	tokLParen
	tokRParen
	tokComma
	tokEquals
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokIdent:
		return "identifier"
	case tokString:
		return "string"
	case tokNumber:
		return "number"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	case tokComma:
		return "','"
	case tokEquals:
		return "'='"
	}
	return "unknown token"
}

type token struct {
	kind tokenKind
	text string // identifier name, decoded string contents, or number literal
	pos  int
}

// lexer tokenizes a single call expression. It only knows the tokens of the call grammar.
type lexer struct {
	src []rune
	pos int
}

func newLexer(src string) *lexer {
	return &lexer{src: []rune(src)}
}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.src) && unicode.IsSpace(l.src[l.pos]) {
		l.pos++
	}
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, pos: l.pos}, nil
	}

	start := l.pos
	r := l.src[l.pos]
	switch {
	case r == '(':
		l.pos++
		return token{kind: tokLParen, pos: start}, nil
	case r == ')':
		l.pos++
		return token{kind: tokRParen, pos: start}, nil
	case r == ',':
		l.pos++
		return token{kind: tokComma, pos: start}, nil
	case r == '=':
		l.pos++
		return token{kind: tokEquals, pos: start}, nil
	case r == '\'' || r == '"':
		return l.lexString(r)
	case r == '-' || r == '+' || unicode.IsDigit(r):
		return l.lexNumber()
	case r == '_' || unicode.IsLetter(r):
		for l.pos < len(l.src) && (l.src[l.pos] == '_' || unicode.IsLetter(l.src[l.pos]) || unicode.IsDigit(l.src[l.pos])) {
			l.pos++
		}
		return token{kind: tokIdent, text: string(l.src[start:l.pos]), pos: start}, nil
	}
	return token{}, fmt.Errorf("unexpected character %q at %d", r, start)
}

func (l *lexer) lexString(quote rune) (token, error) {
	start := l.pos
	l.pos++ // opening quote
	var b strings.Builder
	for l.pos < len(l.src) {
		r := l.src[l.pos]
		switch {
		case r == quote:
			l.pos++
			return token{kind: tokString, text: b.String(), pos: start}, nil
		case r == '\\' && l.pos+1 < len(l.src):
			esc := l.src[l.pos+1]
			l.pos += 2
			switch esc {
			case 'n':
				b.WriteRune('\n')
			case 't':
				b.WriteRune('\t')
			case 'r':
				b.WriteRune('\r')
			case '\\', '\'', '"':
				b.WriteRune(esc)
			default:
				// Unknown escapes are kept verbatim.
				b.WriteRune('\\')
				b.WriteRune(esc)
			}
		default:
			b.WriteRune(r)
			l.pos++
		}
	}
	return token{}, fmt.Errorf("unterminated string starting at %d", start)
}

func (l *lexer) lexNumber() (token, error) {
	start := l.pos
	if l.src[l.pos] == '-' || l.src[l.pos] == '+' {
		l.pos++
	}
	digits := l.digits()
	if l.pos < len(l.src) && l.src[l.pos] == '.' {
		l.pos++
		digits += l.digits()
	}
	if digits == 0 {
		return token{}, fmt.Errorf("malformed number at %d", start)
	}
	return token{kind: tokNumber, text: string(l.src[start:l.pos]), pos: start}, nil
}

func (l *lexer) digits() int {
	n := 0
	for l.pos < len(l.src) && unicode.IsDigit(l.src[l.pos]) {
		l.pos++
		n++
	}
	return n
}
