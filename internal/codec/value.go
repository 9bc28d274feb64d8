package codec

import (
	"strconv"
	"strings"
)

// Kind identifies the shape of a parsed Value.
type Kind int

const (
	KindNull Kind = iota
	KindText
	KindNumber
	KindBool
	KindIdent
	KindOpt
	KindRecord
	KindVec
	KindTuple
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindIdent:
		return "ident"
	case KindOpt:
		return "opt"
	case KindRecord:
		return "record"
	case KindVec:
		return "vec"
	case KindTuple:
		return "tuple"
	default:
		return "unknown"
	}
}

// Value is a node of the parsed record grammar.
type Value struct {
	Kind Kind
	// Lit holds the literal for text, number, and ident values. Numbers keep
	// their source spelling minus any type annotation.
	Lit    string
	Bool   bool
	Fields []Field
	// Items holds vec elements, tuple elements, or the single opt payload.
	Items []Value
}

// Field is a named record member.
type Field struct {
	Name  string
	Value Value
}

// Get returns the first field named name. Opt wrappers around the field value
// are removed.
func (v Value) Get(name string) (Value, bool) {
	if v.Kind != KindRecord {
		return Value{}, false
	}
	for _, f := range v.Fields {
		if f.Name == name {
			return f.Value.Unwrap(), true
		}
	}
	return Value{}, false
}

// Unwrap strips opt and single-element tuple wrappers. An empty opt becomes null.
func (v Value) Unwrap() Value {
	for v.Kind == KindOpt || (v.Kind == KindTuple && len(v.Items) == 1) {
		if len(v.Items) == 0 {
			return Value{Kind: KindNull}
		}
		v = v.Items[0]
	}
	return v
}

// Text returns the string payload of a text value.
func (v Value) Text() (string, bool) {
	v = v.Unwrap()
	if v.Kind != KindText {
		return "", false
	}
	return v.Lit, true
}

// Float returns the numeric payload as a float64.
func (v Value) Float() (float64, bool) {
	v = v.Unwrap()
	if v.Kind != KindNumber {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(v.Lit, "_", ""), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Int returns the numeric payload truncated to an int.
func (v Value) Int() (int, bool) {
	f, ok := v.Float()
	if !ok {
		return 0, false
	}
	return int(f), true
}

// Boolean returns the payload of a bool value.
func (v Value) Boolean() (bool, bool) {
	v = v.Unwrap()
	if v.Kind != KindBool {
		return false, false
	}
	return v.Bool, true
}
