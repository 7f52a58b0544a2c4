// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package ast defines a generic syntax tree for JSON values, and a parser that
// constructs syntax trees from JSON source.
//
// A tree is built from six kinds of value: Null, Bool, Number, String, Array
// and Object. Objects are ordered: members appear in source order, and
// duplicate keys are preserved. Numbers retain the text of their literal so
// that no precision is lost.
package ast

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/creachadair/jflat"
)

// A Value is an arbitrary JSON value.
// The concrete type is one of Object, Array, Number, String, Bool, or the
// type of Null.
type Value interface {
	// JSON renders the value as compact JSON text.
	JSON() string
}

// An Object is an ordered collection of key-value members.
type Object []*Member

// Find returns the first member of o with the given key, or nil.
func (o Object) Find(key string) *Member {
	for _, m := range o {
		if m.Key == key {
			return m
		}
	}
	return nil
}

// Len reports the number of members in o.
func (o Object) Len() int { return len(o) }

func (o Object) JSON() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, m := range o {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(m.JSON())
	}
	sb.WriteByte('}')
	return sb.String()
}

func (o Object) String() string { return fmt.Sprintf("Object(len=%d)", len(o)) }

// A Member is a single key-value pair belonging to an Object.
type Member struct {
	Key   string // the decoded key
	Value Value
}

func (m Member) JSON() string { return jflat.Quote(m.Key) + ":" + m.Value.JSON() }

func (m Member) String() string { return fmt.Sprintf("Member(key=%q)", m.Key) }

// Field constructs an object member with the given key and value.
// The value must be a string, int, float, bool, nil, or ast.Value.
func Field(key string, value any) *Member {
	return &Member{Key: key, Value: ToValue(value)}
}

// An Array is a sequence of values.
type Array []Value

// Len reports the number of elements in a.
func (a Array) Len() int { return len(a) }

func (a Array) JSON() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range a {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(v.JSON())
	}
	sb.WriteByte(']')
	return sb.String()
}

func (a Array) String() string { return fmt.Sprintf("Array(len=%d)", len(a)) }

// A Number is a numeric value. It records the literal text of the number, so
// that integers of any size and decimals of any precision survive intact.
type Number struct {
	text  string
	isInt bool
}

// Int constructs a Number from an integer.
func Int(z int64) Number { return Number{text: strconv.FormatInt(z, 10), isInt: true} }

// Float constructs a Number from a floating-point value.
// It panics if f is an infinity or NaN, which JSON cannot represent.
func Float(f float64) Number {
	n, err := ParseNumber(strconv.FormatFloat(f, 'g', -1, 64))
	if err != nil {
		panic(fmt.Sprintf("invalid JSON number %v", f))
	}
	return n
}

// ParseNumber parses text as a JSON number literal. It reports an error if
// text is not exactly one valid JSON number.
func ParseNumber(text string) (Number, error) {
	s := jflat.NewScanner(strings.NewReader(text))
	if !s.Next() {
		return Number{}, fmt.Errorf("invalid number %q: %w", text, s.Err())
	}
	tok := s.Token()
	if tok != jflat.Integer && tok != jflat.Number {
		return Number{}, fmt.Errorf("invalid number %q: got %v", text, tok)
	} else if s.Next() {
		return Number{}, fmt.Errorf("invalid number %q: extra input", text)
	}
	return Number{text: text, isInt: tok == jflat.Integer}, nil
}

// IsInt reports whether n was written as an integer, without a fraction or
// exponent.
func (n Number) IsInt() bool { return n.isInt }

// Text returns the literal text of n.
func (n Number) Text() string { return n.text }

// Int64 returns the value of n as an int64. It reports an error if n is not an
// integer or does not fit.
func (n Number) Int64() (int64, error) {
	if !n.isInt {
		return 0, fmt.Errorf("number %s is not an integer", n.text)
	}
	return strconv.ParseInt(n.text, 10, 64)
}

// Float64 returns the nearest float64 to the value of n. The error is non-nil
// when n is out of range for a float64.
func (n Number) Float64() (float64, error) { return strconv.ParseFloat(n.text, 64) }

// BigFloat returns the exact value of n as a *big.Float, with enough
// precision to represent every digit of the literal.
func (n Number) BigFloat() *big.Float {
	prec := max(uint(len(n.text))*4, 64)
	f, _, err := big.ParseFloat(n.text, 10, prec, big.ToNearestEven)
	if err != nil {
		panic(fmt.Sprintf("invalid number literal %q: %v", n.text, err))
	}
	return f
}

func (n Number) JSON() string { return n.text }

func (n Number) String() string { return n.text }

// A String is a string value. It holds the decoded text.
type String string

func (s String) JSON() string { return jflat.Quote(string(s)) }

// A Bool is a Boolean constant, true or false.
type Bool bool

func (b Bool) JSON() string { return strconv.FormatBool(bool(b)) }

type nullValue struct{}

func (nullValue) JSON() string   { return "null" }
func (nullValue) String() string { return "null" }

// Null is the value of the JSON null constant.
var Null Value = nullValue{}

// IsNull reports whether v is the null constant.
func IsNull(v Value) bool { _, ok := v.(nullValue); return ok }

// ToValue converts a string, int, float, bool, nil, or ast.Value into an
// ast.Value. It panics if v does not have one of those types.
func ToValue(v any) Value {
	switch t := v.(type) {
	case Value:
		return t
	case nil:
		return Null
	case string:
		return String(t)
	case bool:
		return Bool(t)
	case int:
		return Int(int64(t))
	case int64:
		return Int(t)
	case float64:
		return Float(t)
	default:
		panic(fmt.Sprintf("invalid value type %T", v))
	}
}
