package formula

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// tokenKind discriminates lexer output.
type tokenKind int

const (
	tokEOF tokenKind = iota
	tokInt
	tokFloat
	tokIdent
	tokOp // operators and punctuation, in tok.text
)

// token is one lexeme of a formula.
type token struct {
	kind tokenKind
	text string
	i    int64
	f    float64
	pos  int
}

// lexer tokenizes a formula string. Multi-character operators are
// matched longest-first.
type lexer struct {
	src  string
	pos  int
	toks []token
}

// multi-character operators, longest first.
var multiOps = []string{"**", "<<", ">>", "<=", ">=", "<>", "&&", "||"}

// singleOps are the single-character operators and punctuation.
const singleOps = "+-*/%&|^~<>=?:(),"

// lex tokenizes src completely, failing on the first bad character.
func lex(src string) ([]token, error) {
	l := &lexer{src: src}
	for {
		l.skipSpace()
		if l.pos >= len(l.src) {
			l.toks = append(l.toks, token{kind: tokEOF, pos: l.pos})
			return l.toks, nil
		}
		if err := l.next(); err != nil {
			return nil, err
		}
	}
}

// skipSpace advances past whitespace.
func (l *lexer) skipSpace() {
	for l.pos < len(l.src) && unicode.IsSpace(rune(l.src[l.pos])) {
		l.pos++
	}
}

// next consumes one token.
func (l *lexer) next() error {
	c := l.src[l.pos]

	switch {
	case c >= '0' && c <= '9', c == '.':
		return l.number()

	case isIdentStart(c):
		start := l.pos
		for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
			l.pos++
		}
		l.toks = append(l.toks, token{kind: tokIdent, text: l.src[start:l.pos], pos: start})
		return nil

	default:
		for _, op := range multiOps {
			if strings.HasPrefix(l.src[l.pos:], op) {
				l.toks = append(l.toks, token{kind: tokOp, text: op, pos: l.pos})
				l.pos += len(op)
				return nil
			}
		}
		if strings.IndexByte(singleOps, c) >= 0 {
			l.toks = append(l.toks, token{kind: tokOp, text: string(c), pos: l.pos})
			l.pos++
			return nil
		}
		return fmt.Errorf("%w: unexpected character %q at offset %d", ErrSyntax, c, l.pos)
	}
}

// number consumes an integer (decimal or 0x hex) or float literal.
func (l *lexer) number() error {
	start := l.pos

	// Hex integer.
	if strings.HasPrefix(l.src[l.pos:], "0x") || strings.HasPrefix(l.src[l.pos:], "0X") {
		l.pos += 2
		for l.pos < len(l.src) && isHexDigit(l.src[l.pos]) {
			l.pos++
		}
		v, err := strconv.ParseUint(l.src[start+2:l.pos], 16, 64)
		if err != nil {
			return fmt.Errorf("%w: bad hex literal %q", ErrSyntax, l.src[start:l.pos])
		}
		l.toks = append(l.toks, token{kind: tokInt, i: int64(v), pos: start})
		return nil
	}

	isFloat := false
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c >= '0' && c <= '9':
			l.pos++
		case c == '.':
			isFloat = true
			l.pos++
		case c == 'e' || c == 'E':
			isFloat = true
			l.pos++
			if l.pos < len(l.src) && (l.src[l.pos] == '+' || l.src[l.pos] == '-') {
				l.pos++
			}
		default:
			goto done
		}
	}
done:
	text := l.src[start:l.pos]
	if isFloat {
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return fmt.Errorf("%w: bad float literal %q", ErrSyntax, text)
		}
		l.toks = append(l.toks, token{kind: tokFloat, f: v, pos: start})
		return nil
	}
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: bad integer literal %q", ErrSyntax, text)
	}
	l.toks = append(l.toks, token{kind: tokInt, i: v, pos: start})
	return nil
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9') || c == '.'
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
