// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package flat

import (
	"errors"
	"fmt"
	"io"

	"github.com/creachadair/jflat/ast"
	"github.com/creachadair/mds/stack"
	"github.com/creachadair/mds/value"
)

// DefaultMaxDepth is the nesting limit Parse applies when Options.MaxDepth is
// not positive. The parser recurs once per level of nesting.
const DefaultMaxDepth = 10000

// Options control flattening. A nil *Options provides default values.
type Options struct {
	// MaxDepth, if positive, is the maximum number of containers that may
	// enclose one another. Deeper input is rejected with a *DepthError (from
	// Flatten) or a *jflat.SyntaxError wrapping jflat.ErrTooDeep (from Parse).
	// If MaxDepth <= 0, Flatten has no limit and Parse uses DefaultMaxDepth.
	MaxDepth int

	// Lenient, if true, makes Parse accept JWCC input, which permits comments
	// and trailing commas. Flatten ignores this setting.
	Lenient bool
}

func (o *Options) maxDepth() int {
	if o == nil {
		return 0
	}
	return o.MaxDepth
}

func (o *Options) parseDepth() int {
	if n := o.maxDepth(); n > 0 {
		return n
	}
	return DefaultMaxDepth
}

func (o *Options) lenient() bool { return o != nil && o.Lenient }

// A DepthError is reported by Flatten when the input is nested more deeply
// than the MaxDepth option permits.
type DepthError struct {
	Limit int // the configured limit
	Row   int // the row at which the too-deep container would have begun
}

func (e *DepthError) Error() string {
	return fmt.Sprintf("row %d: nesting depth exceeds %d", e.Row, e.Limit)
}

// Parse parses a single JSON value from r and flattens it.
//
// If parsing fails, the parser's error is returned unchanged and no
// flattening occurs. Syntax errors have concrete type *jflat.SyntaxError.
// Input nested more deeply than DefaultMaxDepth is rejected unless opts sets
// a larger MaxDepth.
func Parse(r io.Reader, opts *Options) (*Doc, error) {
	p := ast.NewParser(r)
	p.SetMaxDepth(opts.parseDepth())
	p.AllowJWCC(opts.lenient())
	v, err := p.ParseSingle()
	if err != nil {
		return nil, err
	}
	return Flatten(v, opts)
}

// Flatten converts v into a flat sequence of rows in document order.
//
// A scalar or empty container contributes one row. A non-empty container
// contributes an Open row, the rows of its children, and a Close row. The
// result has one row per value in v plus one per non-empty container.
//
// Flatten does not recur on the call stack, so its stack usage does not grow
// with the nesting depth of v. It fails only if v contains a nil or unknown
// value or a Number without literal text, or is nested more deeply than opts
// permits.
func Flatten(v ast.Value, opts *Options) (*Doc, error) {
	f := &flattener{limit: opts.maxDepth()}
	if err := f.run(v); err != nil {
		return nil, err
	}
	return &Doc{rows: f.rows}, nil
}

// A frame records the progress of flattening one non-empty container.
type frame struct {
	open   int      // index of the container's Open row
	parent optIndex // the container's own parent
	depth  int      // depth of the container's rows
	typ    Container

	obj  ast.Object // set if typ == Object
	arr  ast.Array  // set if typ == Array
	n    int        // number of children adopted so far
	last optIndex   // entry index of the most recently adopted child
}

// size reports the number of children of the container.
func (fr *frame) size() int {
	if fr.typ == Object {
		return len(fr.obj)
	}
	return len(fr.arr)
}

// child returns the value of the next child to be visited.
func (fr *frame) child() (ast.Value, error) {
	if fr.typ == Array {
		return fr.arr[fr.n], nil
	}
	m := fr.obj[fr.n]
	if m == nil {
		return nil, fmt.Errorf("object member %d is nil", fr.n)
	}
	return m.Value, nil
}

type flattener struct {
	rows  []Row
	limit int
}

func (f *flattener) run(root ast.Value) error {
	stk := stack.New[*frame]()

	// visit emits the row(s) for the start of v beneath cur, which is nil at
	// the top level. It reports the new frame if v is a non-empty container.
	visit := func(v ast.Value, cur *frame) (*frame, error) {
		parent, depth := noIndex, 0
		if cur != nil {
			parent, depth = optIndex(cur.open), cur.depth+1
		}
		row := Row{parent: parent, prev: noIndex, next: noIndex, depth: depth}

		var typ Container
		var obj ast.Object
		var arr ast.Array
		switch t := v.(type) {
		case ast.Object:
			if err := f.checkDepth(depth); err != nil {
				return nil, err
			} else if len(t) == 0 {
				row.value = EmptyObject{}
				break
			}
			typ, obj = Object, t
		case ast.Array:
			if err := f.checkDepth(depth); err != nil {
				return nil, err
			} else if len(t) == 0 {
				row.value = EmptyArray{}
				break
			}
			typ, arr = Array, t
		case ast.String:
			row.value = String(t)
		case ast.Number:
			if t.Text() == "" {
				return nil, errors.New("number has no literal text")
			}
			row.value = Number{t}
		case ast.Bool:
			row.value = Bool(t)
		case nil:
			return nil, errors.New("nil value")
		default:
			if !ast.IsNull(v) {
				return nil, fmt.Errorf("unknown value type %T", v)
			}
			row.value = Null{}
		}
		if typ == 0 {
			f.rows = append(f.rows, row)
			return nil, nil
		}

		// The Close index is patched in when the container is finished.
		open := len(f.rows)
		row.value = Open{Type: typ, FirstChild: open + 1}
		f.rows = append(f.rows, row)
		return &frame{
			open:   open,
			parent: parent,
			depth:  depth,
			typ:    typ,
			obj:    obj,
			arr:    arr,
			last:   noIndex,
		}, nil
	}

	fr, err := visit(root, nil)
	if err != nil || fr == nil {
		return err
	}
	for {
		if fr.n < fr.size() {
			v, err := fr.child()
			if err != nil {
				return err
			}
			entry := len(f.rows)
			sub, err := visit(v, fr)
			if err != nil {
				return err
			} else if sub != nil {
				// The child is adopted once its own subtree is complete.
				stk.Push(fr)
				fr = sub
			} else {
				f.adopt(fr, entry)
			}
			continue
		}

		// All children are done: emit the Close row and back-patch the Open.
		closeIndex := len(f.rows)
		f.rows = append(f.rows, Row{
			parent: fr.parent,
			prev:   noIndex,
			next:   noIndex,
			depth:  fr.depth,
			value:  Close{Type: fr.typ, LastChild: int(fr.last), Open: fr.open},
		})
		op := f.rows[fr.open].value.(Open)
		op.Close = closeIndex
		f.rows[fr.open].value = op

		done := fr
		next, ok := stk.Pop()
		if !ok {
			return nil // the top-level container is complete
		}
		fr = next
		f.adopt(fr, done.open)
	}
}

// adopt records the row at entry as the next child of fr, setting its
// position, key, and sibling links.
func (f *flattener) adopt(fr *frame, entry int) {
	row := &f.rows[entry]
	row.index = fr.n
	if fr.typ == Object {
		row.key = value.Just(fr.obj[fr.n].Key)
	}
	row.prev = fr.last
	if p, ok := fr.last.get().GetOK(); ok {
		f.rows[p].next = optIndex(entry)
	}
	fr.last = optIndex(entry)
	fr.n++
}

// checkDepth reports an error if a container whose rows have the given depth
// would exceed the nesting limit.
func (f *flattener) checkDepth(depth int) error {
	if f.limit > 0 && depth >= f.limit {
		return &DepthError{Limit: f.limit, Row: len(f.rows)}
	}
	return nil
}
