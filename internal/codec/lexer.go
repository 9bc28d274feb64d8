package codec

import (
	"fmt"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokLBrace
	tokRBrace
	tokLParen
	tokRParen
	tokSemi
	tokComma
	tokEquals
	tokColon
	tokString
	tokNumber
	tokIdent
	tokInvalid
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func (t token) String() string {
	switch t.kind {
	case tokEOF:
		return "end of input"
	case tokString:
		return fmt.Sprintf("string %q", t.text)
	default:
		return fmt.Sprintf("%q", t.text)
	}
}

// lex splits the input into tokens. It never fails: unexpected characters
// become tokInvalid and an unterminated string runs to end of input.
func lex(src string) []token {
	var toks []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			for i < len(src) && src[i] != '\n' {
				i++
			}
		case c == '{':
			toks = append(toks, token{tokLBrace, "{", i})
			i++
		case c == '}':
			toks = append(toks, token{tokRBrace, "}", i})
			i++
		case c == '(':
			toks = append(toks, token{tokLParen, "(", i})
			i++
		case c == ')':
			toks = append(toks, token{tokRParen, ")", i})
			i++
		case c == ';':
			toks = append(toks, token{tokSemi, ";", i})
			i++
		case c == ',':
			toks = append(toks, token{tokComma, ",", i})
			i++
		case c == '=':
			toks = append(toks, token{tokEquals, "=", i})
			i++
		case c == ':':
			toks = append(toks, token{tokColon, ":", i})
			i++
		case c == '"':
			start := i
			text, next := lexString(src, i+1)
			toks = append(toks, token{tokString, text, start})
			i = next
		case c == '-' || c == '+' || isDigit(c):
			start := i
			i++
			for i < len(src) && isNumberByte(src[i]) {
				i++
			}
			toks = append(toks, token{tokNumber, src[start:i], start})
		case c == '_' || unicode.IsLetter(rune(c)):
			start := i
			for i < len(src) && isIdentByte(src[i]) {
				i++
			}
			toks = append(toks, token{tokIdent, src[start:i], start})
		default:
			toks = append(toks, token{tokInvalid, string(c), i})
			i++
		}
	}
	return append(toks, token{tokEOF, "", len(src)})
}

// lexString reads a quoted string body starting after the opening quote.
// Backslash escapes for quote and backslash are honoured.
func lexString(src string, i int) (string, int) {
	var b strings.Builder
	for i < len(src) {
		c := src[i]
		switch {
		case c == '"':
			return b.String(), i + 1
		case c == '\\' && i+1 < len(src):
			switch next := src[i+1]; next {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte(next)
			}
			i += 2
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String(), i
}

// isIdentByte allows '-' after the first byte so bare ids like inc-000001 lex as one word.
func isIdentByte(c byte) bool {
	return c == '_' || c == '-' || isDigit(c) || unicode.IsLetter(rune(c))
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isNumberByte(c byte) bool {
	return isDigit(c) || c == '.' || c == '_' || c == 'e' || c == 'E' || c == '-' || c == '+'
}
