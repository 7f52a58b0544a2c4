// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

// Package flat converts JSON values into a flat sequence of rows that
// supports constant-time structural navigation.
//
// # Rows
//
// Flatten walks an ast.Value in document order and emits one Row per value.
// A non-empty object or array is split into two rows, an Open row before its
// children and a Close row after them, so that a display can show the
// closing bracket on its own line. For example, the document
//
//	{"a": 2, "b": [4, "5"]}
//
// flattens to
//
//	0  {          Open{Object, FirstChild: 1, Close: 6}
//	1  "a": 2     key "a", index 0
//	2  "b": [     Open{Array, FirstChild: 3, Close: 5}, key "b", index 1
//	3  4          index 0
//	4  "5"        index 1
//	5  ]          Close{Array, LastChild: 4, Open: 2}
//	6  }          Close{Object, LastChild: 2, Open: 0}
//
// The "entry" row of a value is its only row for a scalar or empty
// container, or its Open row otherwise. Sibling links and keys are recorded on
// entry rows. A Close row has the same parent and depth as its Open row.
//
// # Navigation
//
// A *Doc is immutable once built. Its navigation methods (Parent,
// NextSibling, Match, and so on) are array lookups, so a pager can move
// through documents of any size without walking the tree. Row indices are
// stable for the lifetime of a Doc and may be used as handles.
//
// Optional indices are reported as value.Maybe[int]:
//
//	if p, ok := doc.Parent(i).GetOK(); ok {
//	   log.Printf("row %d is inside row %d", i, p)
//	}
package flat

import (
	"fmt"
	"iter"
	"slices"

	"github.com/creachadair/jflat/jpath"
	"github.com/creachadair/mds/value"
)

// A Doc is a flattened JSON document. It is safe for concurrent use by
// multiple readers. All methods taking a row index panic if the index is out
// of range, as indexing a slice would.
type Doc struct {
	rows []Row
}

// Len reports the number of rows in d.
func (d *Doc) Len() int { return len(d.rows) }

// Row returns a copy of the row at index i.
func (d *Doc) Row(i int) Row { return d.rows[i] }

// Rows returns a sequence of all the rows of d with their indices, in order.
func (d *Doc) Rows() iter.Seq2[int, Row] { return slices.All(d.rows) }

// Parent returns the index of the Open row of the container holding row i.
func (d *Doc) Parent(i int) value.Maybe[int] { return d.rows[i].Parent() }

// PrevSibling returns the entry index of the previous sibling of row i.
func (d *Doc) PrevSibling(i int) value.Maybe[int] { return d.rows[i].PrevSibling() }

// NextSibling returns the entry index of the next sibling of row i.
func (d *Doc) NextSibling(i int) value.Maybe[int] { return d.rows[i].NextSibling() }

// FirstChild returns the entry index of the first child of the container
// whose Open or Close row is at i. It is absent for other rows.
func (d *Doc) FirstChild(i int) value.Maybe[int] {
	switch t := d.rows[i].value.(type) {
	case Open:
		return value.Just(t.FirstChild)
	case Close:
		return value.Just(t.Open + 1)
	}
	return value.Absent[int]()
}

// LastChild returns the entry index of the last child of the container whose
// Open or Close row is at i. It is absent for other rows.
func (d *Doc) LastChild(i int) value.Maybe[int] {
	switch t := d.rows[i].value.(type) {
	case Open:
		return value.Just(d.rows[t.Close].value.(Close).LastChild)
	case Close:
		return value.Just(t.LastChild)
	}
	return value.Absent[int]()
}

// Match returns the index of the row matching row i: the Close row for an
// Open row, and vice versa. It is absent for other rows.
func (d *Doc) Match(i int) value.Maybe[int] {
	switch t := d.rows[i].value.(type) {
	case Open:
		return value.Just(t.Close)
	case Close:
		return value.Just(t.Open)
	}
	return value.Absent[int]()
}

// Matches reports whether open and close are the Open and Close rows of the
// same container.
func (d *Doc) Matches(open, close int) bool {
	o, ok := d.rows[open].value.(Open)
	return ok && o.Close == close
}

// Entry returns the entry index of the value whose row is at i. For a Close
// row this is its Open row; for every other row it is i.
func (d *Doc) Entry(i int) int {
	if c, ok := d.rows[i].value.(Close); ok {
		return c.Open
	}
	return i
}

// IsOpen reports whether row i is the Open row of a container.
func (d *Doc) IsOpen(i int) bool { _, ok := d.rows[i].value.(Open); return ok }

// IsClose reports whether row i is the Close row of a container.
func (d *Doc) IsClose(i int) bool { _, ok := d.rows[i].value.(Close); return ok }

// IsBoundary reports whether row i is an Open or Close row.
func (d *Doc) IsBoundary(i int) bool { return d.IsOpen(i) || d.IsClose(i) }

// IsLeaf reports whether row i is a scalar or an empty container.
func (d *Doc) IsLeaf(i int) bool { return !d.IsBoundary(i) }

// Children returns a sequence of the entry indices of the children of the
// container whose Open or Close row is at i. It is empty for other rows.
func (d *Doc) Children(i int) iter.Seq[int] {
	return func(yield func(int) bool) {
		for c, ok := d.FirstChild(i).GetOK(); ok; c, ok = d.NextSibling(c).GetOK() {
			if !yield(c) {
				return
			}
		}
	}
}

// ChildCount reports the number of children of the container whose Open or
// Close row is at i, or 0 for other rows. It takes time proportional to the
// number of children.
func (d *Doc) ChildCount(i int) int {
	var n int
	for range d.Children(i) {
		n++
	}
	return n
}

// Path returns the JSONPath expression locating the value whose row is at i,
// relative to the top-level value. It takes time proportional to the depth of
// the row.
func (d *Doc) Path(i int) jpath.Expr {
	var out jpath.Expr
	cur := d.Entry(i)
	for {
		p, ok := d.rows[cur].Parent().GetOK()
		if !ok {
			break
		}
		if k, ok := d.rows[cur].Key().GetOK(); ok {
			out = append(out, jpath.Key(k))
		} else {
			out = append(out, jpath.Nth(d.rows[cur].Index()))
		}
		cur = p
	}
	slices.Reverse(out)
	return out
}

// Find returns the entry index of the value at path e relative to the
// top-level value. A key step selects the first member with that name; an
// index step selects an array element by position, or an object member by
// position, where negative positions count backward from the end.
func (d *Doc) Find(e jpath.Expr) (int, error) {
	if len(d.rows) == 0 {
		return 0, fmt.Errorf("empty document")
	}
	cur := 0
	for i, step := range e {
		next, err := d.Step(cur, step)
		if err != nil {
			return 0, fmt.Errorf("at %s: %w", e[:i+1], err)
		}
		cur = next
	}
	return cur, nil
}

// Step resolves a single path step from the value whose row is at cur, and
// returns the entry index of the selected child.
func (d *Doc) Step(cur int, step jpath.Step) (int, error) {
	cur = d.Entry(cur)
	var typ Container
	switch t := d.rows[cur].value.(type) {
	case Open:
		typ = t.Type
	case EmptyObject, EmptyArray:
	default:
		return 0, fmt.Errorf("cannot traverse %s", rowKind(t))
	}

	switch step.Op {
	case jpath.Member:
		if _, isObj := d.rows[cur].value.(EmptyObject); !isObj && typ != Object {
			return 0, fmt.Errorf("cannot select key %q from %s", step.Name, rowKind(d.rows[cur].value))
		}
		for c := range d.Children(cur) {
			if k, _ := d.rows[c].Key().GetOK(); k == step.Name {
				return c, nil
			}
		}
		return 0, fmt.Errorf("key %q not found", step.Name)

	case jpath.Index:
		n := step.Pos
		if n < 0 {
			for c, ok := d.LastChild(cur).GetOK(); ok; c, ok = d.PrevSibling(c).GetOK() {
				if n++; n == 0 {
					return c, nil
				}
			}
		} else {
			for c := range d.Children(cur) {
				if n == 0 {
					return c, nil
				}
				n--
			}
		}
		return 0, fmt.Errorf("index %d out of bounds (n=%d)", step.Pos, d.ChildCount(cur))

	default:
		return 0, fmt.Errorf("unsupported path step %v", step.Op)
	}
}

// rowKind returns a short human-readable name for the kind of v.
func rowKind(v Value) string {
	switch t := v.(type) {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case EmptyObject:
		return "empty object"
	case EmptyArray:
		return "empty array"
	case Open:
		return t.Type.String()
	case Close:
		return "close " + t.Type.String()
	default:
		return fmt.Sprintf("%T", v)
	}
}
