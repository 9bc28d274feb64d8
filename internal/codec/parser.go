package codec

import (
	"errors"
	"fmt"
)

var errSyntax = errors.New("syntax error")

// parser is a recursive-descent parser over the record/vec grammar:
//
//	value  = "null" | "true" | "false" | text | number | ident
//	       | "opt" value | "record" "{" fields "}" | "vec" "{" items "}"
//	       | "(" value { "," value } ")"
//	fields = [ field { (";" | ",") field } [";" | ","] ]
//	field  = (ident | number | text) "=" value
//	items  = [ value { (";" | ",") value } [";" | ","] ]
//
// Text and number literals may carry a ": type" annotation, which is dropped.
// Record and vec bodies are parsed leniently: a malformed member is skipped up
// to the next separator, and end of input closes every open container with
// whatever was collected so far, setting truncated.
type parser struct {
	toks      []token
	pos       int
	truncated bool
}

// Parse parses the first value in src. Lenient container parsing means err is
// only non-nil when src does not start with a value at all.
func Parse(src string) (Value, error) {
	p := &parser{toks: lex(src)}
	return p.parseValue()
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) unexpected(t token) error {
	if t.kind == tokEOF {
		p.truncated = true
	}
	return fmt.Errorf("%w: unexpected %s at offset %d", errSyntax, t, t.pos)
}

// parseValue leaves a token that cannot start a value unconsumed.
func (p *parser) parseValue() (Value, error) {
	t := p.peek()
	switch t.kind {
	case tokString, tokNumber, tokLParen, tokIdent:
		p.next()
	default:
		return Value{}, p.unexpected(t)
	}
	switch t.kind {
	case tokString:
		p.skipAnnotation()
		return Value{Kind: KindText, Lit: t.text}, nil
	case tokNumber:
		p.skipAnnotation()
		return Value{Kind: KindNumber, Lit: t.text}, nil
	case tokLParen:
		return p.parseTuple()
	case tokIdent:
		switch t.text {
		case "null":
			return Value{Kind: KindNull}, nil
		case "true", "false":
			return Value{Kind: KindBool, Bool: t.text == "true"}, nil
		case "opt":
			inner, err := p.parseValue()
			if err != nil {
				return Value{}, err
			}
			return Value{Kind: KindOpt, Items: []Value{inner}}, nil
		case "record":
			return p.parseRecord()
		case "vec":
			return p.parseVec()
		default:
			p.skipAnnotation()
			return Value{Kind: KindIdent, Lit: t.text}, nil
		}
	default:
		return Value{}, p.unexpected(t)
	}
}

// skipAnnotation drops a trailing ": type" annotation such as ": float64".
func (p *parser) skipAnnotation() {
	if p.peek().kind != tokColon {
		return
	}
	p.next()
	for p.peek().kind == tokIdent {
		p.next()
	}
}

func (p *parser) parseRecord() (Value, error) {
	rec := Value{Kind: KindRecord}
	if t := p.next(); t.kind != tokLBrace {
		return rec, p.unexpected(t)
	}
	for {
		switch p.peek().kind {
		case tokRBrace:
			p.next()
			return rec, nil
		case tokEOF:
			p.truncated = true
			return rec, nil
		case tokSemi, tokComma:
			p.next()
			continue
		}
		f, err := p.parseField()
		if err != nil {
			p.recover(tokSemi, tokComma)
			continue
		}
		rec.Fields = append(rec.Fields, f)
	}
}

func (p *parser) parseField() (Field, error) {
	name := p.next()
	switch name.kind {
	case tokIdent, tokNumber, tokString:
	default:
		return Field{}, p.unexpected(name)
	}
	if t := p.next(); t.kind != tokEquals {
		return Field{}, p.unexpected(t)
	}
	v, err := p.parseValue()
	if err != nil {
		return Field{}, err
	}
	return Field{Name: name.text, Value: v}, nil
}

func (p *parser) parseVec() (Value, error) {
	vec := Value{Kind: KindVec}
	if t := p.next(); t.kind != tokLBrace {
		return vec, p.unexpected(t)
	}
	for {
		switch p.peek().kind {
		case tokRBrace:
			p.next()
			return vec, nil
		case tokEOF:
			p.truncated = true
			return vec, nil
		case tokSemi, tokComma:
			p.next()
			continue
		}
		before := p.pos
		item, err := p.parseValue()
		if err != nil {
			p.skipStuck(before)
			p.recover(tokSemi, tokComma)
			continue
		}
		vec.Items = append(vec.Items, item)
	}
}

func (p *parser) parseTuple() (Value, error) {
	tup := Value{Kind: KindTuple}
	for {
		switch p.peek().kind {
		case tokRParen:
			p.next()
			return tup, nil
		case tokEOF:
			p.truncated = true
			return tup, nil
		case tokComma:
			p.next()
			continue
		}
		before := p.pos
		item, err := p.parseValue()
		if err != nil {
			p.skipStuck(before)
			p.recover(tokComma)
			continue
		}
		tup.Items = append(tup.Items, item)
	}
}

// skipStuck consumes one token when a failed parse made no progress.
func (p *parser) skipStuck(before int) {
	if p.pos == before {
		p.next()
	}
}

// recover skips tokens until a separator in stops or a closing bracket at the
// current nesting depth. Neither is consumed.
func (p *parser) recover(stops ...tokenKind) {
	depth := 0
	for {
		t := p.peek()
		switch t.kind {
		case tokEOF:
			return
		case tokLBrace, tokLParen:
			depth++
		case tokRBrace, tokRParen:
			if depth == 0 {
				return
			}
			depth--
		default:
			if depth == 0 {
				for _, s := range stops {
					if t.kind == s {
						return
					}
				}
			}
		}
		p.next()
	}
}
