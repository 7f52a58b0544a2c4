// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

// Package cursor implements a movable focus over the rows of a flattened
// JSON document.
package cursor

import (
	"fmt"

	"github.com/creachadair/jflat/flat"
	"github.com/creachadair/jflat/jpath"
	"github.com/creachadair/mds/value"
)

// Path moves a new cursor along path from the top-level value of doc and
// returns the value there, as documented for Cursor.Down.  This is a
// convenience wrapper for creating a cursor, applying path, and retrieving
// its value.
func Path[T flat.Value](doc *flat.Doc, path ...any) (T, error) {
	c := New(doc).Down(path...)
	var result T
	if err := c.Err(); err != nil {
		return result, err
	}
	v, ok := c.Row().Value().(T)
	if !ok {
		return result, fmt.Errorf("wrong value type %T", c.Row().Value())
	}
	return v, nil
}

// A Cursor is a position within a *flat.Doc. Moves that cannot be made leave
// the position unchanged and record an error, which is reported by Err and
// cleared by the next move.
//
// A Cursor is not safe for concurrent use, but any number of cursors may
// share a single Doc.
type Cursor struct {
	doc *flat.Doc
	pos int
	err error
}

// New constructs a new Cursor positioned at the first row of doc.
func New(doc *flat.Doc) *Cursor { return &Cursor{doc: doc} }

// Doc returns the document traversed by c.
func (c *Cursor) Doc() *flat.Doc { return c.doc }

// Pos reports the row index of the current position.
func (c *Cursor) Pos() int { return c.pos }

// Row returns the row at the current position.
func (c *Cursor) Row() flat.Row { return c.doc.Row(c.pos) }

// AtOrigin reports whether c is at the first row of the document.
func (c *Cursor) AtOrigin() bool { return c.pos == 0 }

// Err reports the error from the most recent move, if any.
func (c *Cursor) Err() error { return c.err }

// Reset moves c to the first row and clears its error.
func (c *Cursor) Reset() { c.pos = 0; c.err = nil }

// Path returns the JSONPath of the value at the current position.
func (c *Cursor) Path() jpath.Expr { return c.doc.Path(c.pos) }

// Goto moves c to row i.
func (c *Cursor) Goto(i int) *Cursor {
	if i < 0 || i >= c.doc.Len() {
		return c.setErrorf("row %d out of range (n=%d)", i, c.doc.Len())
	}
	return c.moveTo(i)
}

// Up moves c to the Open row of the enclosing container. A cursor on a Close
// row moves to the parent of that container, as it would from the Open row.
func (c *Cursor) Up() *Cursor {
	return c.follow(c.doc.Parent(c.pos), "no parent")
}

// Next moves c to the next sibling of the current value.
func (c *Cursor) Next() *Cursor {
	return c.follow(c.doc.NextSibling(c.doc.Entry(c.pos)), "no next sibling")
}

// Prev moves c to the previous sibling of the current value.
func (c *Cursor) Prev() *Cursor {
	return c.follow(c.doc.PrevSibling(c.doc.Entry(c.pos)), "no previous sibling")
}

// First moves c to the first child of the current container.
func (c *Cursor) First() *Cursor {
	return c.follow(c.doc.FirstChild(c.pos), "no children")
}

// Last moves c to the last child of the current container.
func (c *Cursor) Last() *Cursor {
	return c.follow(c.doc.LastChild(c.pos), "no children")
}

// Match moves c between the Open and Close rows of the current container.
func (c *Cursor) Match() *Cursor {
	return c.follow(c.doc.Match(c.pos), "not a container boundary")
}

// Down traverses a sequential path from the current value, where path
// elements are either strings (denoting object keys) or integers (denoting
// positions in an array or object).  Negative positions count backward from
// the end (-1 is last, -2 second last).  If the whole path resolves, c moves
// to the row reached; otherwise c does not move and the error is recorded.
func (c *Cursor) Down(path ...any) *Cursor {
	var steps jpath.Expr
	for _, elt := range path {
		switch t := elt.(type) {
		case string:
			steps = append(steps, jpath.Key(t))
		case int:
			steps = append(steps, jpath.Nth(t))
		case jpath.Step:
			steps = append(steps, t)
		default:
			return c.setErrorf("invalid path element %T", elt)
		}
	}
	return c.walk(steps)
}

// GotoPath moves c to the value at e, relative to the top-level value.
func (c *Cursor) GotoPath(e jpath.Expr) *Cursor {
	i, err := c.doc.Find(e)
	if err != nil {
		c.err = err
		return c
	}
	return c.moveTo(i)
}

// walk resolves steps one at a time from the current value.
func (c *Cursor) walk(steps jpath.Expr) *Cursor {
	cur := c.pos
	for i, step := range steps {
		next, err := c.doc.Step(cur, step)
		if err != nil {
			return c.setErrorf("at step %d (%v): %w", i, step, err)
		}
		cur = next
	}
	return c.moveTo(cur)
}

func (c *Cursor) follow(m value.Maybe[int], msg string) *Cursor {
	i, ok := m.GetOK()
	if !ok {
		return c.setErrorf("row %d: %s", c.pos, msg)
	}
	return c.moveTo(i)
}

func (c *Cursor) moveTo(i int) *Cursor {
	c.pos, c.err = i, nil
	return c
}

func (c *Cursor) setErrorf(msg string, args ...any) *Cursor {
	c.err = fmt.Errorf(msg, args...)
	return c
}
