// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package flat

import (
	"fmt"
	"math"

	"github.com/creachadair/jflat"
	"github.com/creachadair/jflat/ast"
	"github.com/creachadair/mds/value"
)

// optIndex is a row index that may be absent. Absence is encoded as noIndex,
// which no valid row index can equal.
type optIndex int

const noIndex optIndex = math.MaxInt

// get converts o to an explicit optional. This is the only place that
// interprets the sentinel.
func (o optIndex) get() value.Maybe[int] {
	if o == noIndex {
		return value.Absent[int]()
	}
	return value.Just(int(o))
}

// A Row is a single record of a flattened document. A scalar or an empty
// container occupies one row; a non-empty container occupies two, an Open row
// before its children and a Close row after them.
type Row struct {
	parent     optIndex
	prev, next optIndex
	depth      int
	index      int
	key        value.Maybe[string]
	value      Value
}

// Parent returns the index of the Open row of the container holding r. It is
// absent for the top-level value. For a Close row it is the parent of the
// container itself, the same as for the matching Open row.
func (r Row) Parent() value.Maybe[int] { return r.parent.get() }

// PrevSibling returns the entry index of the sibling before r, if any.
// Close rows have no siblings.
func (r Row) PrevSibling() value.Maybe[int] { return r.prev.get() }

// NextSibling returns the entry index of the sibling after r, if any.
// Close rows have no siblings.
func (r Row) NextSibling() value.Maybe[int] { return r.next.get() }

// Depth returns the nesting depth of r, 0 for the top-level value.
func (r Row) Depth() int { return r.depth }

// Index returns the 0-based position of r among the children of its parent.
// It is 0 for the top-level value and for Close rows.
func (r Row) Index() int { return r.index }

// Key returns the member name of r, present only if r is a direct child of an
// object.
func (r Row) Key() value.Maybe[string] { return r.key }

// Value returns the payload of r.
func (r Row) Value() Value { return r.value }

func (r Row) String() string {
	if k, ok := r.key.GetOK(); ok {
		return fmt.Sprintf("Row(depth=%d, %s: %s)", r.depth, jflat.Quote(k), r.value.JSON())
	}
	return fmt.Sprintf("Row(depth=%d, %s)", r.depth, r.value.JSON())
}

// A Container identifies the kind of a container, object or array.
type Container byte

const (
	Object Container = iota + 1 // a JSON object
	Array                       // a JSON array
)

func (c Container) String() string {
	switch c {
	case Object:
		return "object"
	case Array:
		return "array"
	default:
		return "invalid container"
	}
}

// brackets returns the open and close delimiters for c.
func (c Container) brackets() (string, string) {
	if c == Object {
		return "{", "}"
	}
	return "[", "]"
}

// A Value is the payload of a row. The concrete type is one of Null, Bool,
// Number, String, EmptyObject, EmptyArray, Open, or Close.
type Value interface {
	// JSON renders the value as it appears on its row: scalars and empty
	// containers as JSON text, Open and Close rows as a single bracket.
	JSON() string

	isRowValue()
}

// Null is the payload of a null row.
type Null struct{}

// Bool is the payload of a true or false row.
type Bool bool

// Number is the payload of a numeric row. It retains the literal text of the
// source number, so integers and decimals of any size are represented exactly.
type Number struct{ ast.Number }

// String is the payload of a string row. It holds the decoded text.
type String string

// EmptyObject is the payload of a row for {}.
type EmptyObject struct{}

// EmptyArray is the payload of a row for [].
type EmptyArray struct{}

// Open is the payload of the first row of a non-empty container.
type Open struct {
	Type       Container
	FirstChild int // index of the first child's entry row, always open+1
	Close      int // index of the matching Close row
}

// Close is the payload of the last row of a non-empty container.
type Close struct {
	Type      Container
	LastChild int // entry index of the last direct child
	Open      int // index of the matching Open row
}

func (Null) JSON() string        { return "null" }
func (b Bool) JSON() string      { return ast.Bool(b).JSON() }
func (s String) JSON() string    { return jflat.Quote(string(s)) }
func (EmptyObject) JSON() string { return "{}" }
func (EmptyArray) JSON() string  { return "[]" }
func (o Open) JSON() string      { s, _ := o.Type.brackets(); return s }
func (c Close) JSON() string     { _, s := c.Type.brackets(); return s }

func (Null) isRowValue()        {}
func (Bool) isRowValue()        {}
func (Number) isRowValue()      {}
func (String) isRowValue()      {}
func (EmptyObject) isRowValue() {}
func (EmptyArray) isRowValue()  {}
func (Open) isRowValue()        {}
func (Close) isRowValue()       {}
