// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package flat

import (
	"errors"
	"fmt"
)

// Validate checks the structural invariants of d and reports an error
// describing every violation found, or nil if d is well-formed. A Doc
// constructed by Flatten is always well-formed; Validate exists to check
// that claim in tests and diagnostics.
func (d *Doc) Validate() error {
	var errs []error
	fail := func(i int, msg string, args ...any) {
		errs = append(errs, fmt.Errorf("row %d: %s", i, fmt.Sprintf(msg, args...)))
	}
	valid := func(o optIndex) bool {
		p, ok := o.get().GetOK()
		return !ok || (p >= 0 && p < len(d.rows))
	}

	for i, r := range d.rows {
		if !valid(r.parent) || !valid(r.prev) || !valid(r.next) {
			fail(i, "link out of range")
			continue
		}

		// Sibling symmetry.
		if n, ok := r.NextSibling().GetOK(); ok && d.rows[n].prev != optIndex(i) {
			fail(i, "next sibling %d does not link back", n)
		}
		if p, ok := r.PrevSibling().GetOK(); ok && d.rows[p].next != optIndex(i) {
			fail(i, "previous sibling %d does not link forward", p)
		}

		// Depth, key presence, and position relative to the parent.
		if p, ok := r.Parent().GetOK(); ok {
			po, isOpen := d.rows[p].value.(Open)
			if !isOpen {
				fail(i, "parent %d is not an open row", p)
				continue
			}
			if _, isClose := r.value.(Close); !isClose {
				if r.depth != d.rows[p].depth+1 {
					fail(i, "depth %d, parent depth %d", r.depth, d.rows[p].depth)
				}
				if r.key.Present() != (po.Type == Object) {
					fail(i, "key presence does not match %s parent", po.Type)
				}
			}
		} else if _, isClose := r.value.(Close); !isClose {
			if r.depth != 0 || r.key.Present() || r.index != 0 {
				fail(i, "top-level row has depth %d, key %v, index %d", r.depth, r.key, r.index)
			}
		}

		switch t := r.value.(type) {
		case Open:
			if t.FirstChild != i+1 {
				fail(i, "first child is %d, want %d", t.FirstChild, i+1)
				continue
			}
			if t.Close <= i || t.Close >= len(d.rows) {
				fail(i, "close index %d out of range", t.Close)
				continue
			}
			c, ok := d.rows[t.Close].value.(Close)
			if !ok || c.Open != i || c.Type != t.Type {
				fail(i, "row %d is not the matching close", t.Close)
				continue
			}
			if d.rows[t.Close].parent != r.parent || d.rows[t.Close].depth != r.depth {
				fail(t.Close, "close row context differs from open row %d", i)
			}
			d.checkChildren(i, t, c, fail)

		case Close:
			if r.prev.get().Present() || r.next.get().Present() || r.key.Present() || r.index != 0 {
				fail(i, "close row carries entry fields")
			}
			if t.Open < 0 || t.Open >= i || !d.Matches(t.Open, i) {
				fail(i, "open index %d does not match", t.Open)
			}
		}
	}
	return errors.Join(errs...)
}

// checkChildren verifies the sibling chain of the container at row i.
func (d *Doc) checkChildren(i int, o Open, c Close, fail func(int, string, ...any)) {
	if d.rows[o.FirstChild].PrevSibling().Present() {
		fail(o.FirstChild, "first child has a previous sibling")
	}
	last, pos := -1, 0
	for k := o.FirstChild; ; pos++ {
		if k <= i || k >= o.Close {
			fail(i, "child %d outside the container", k)
			return
		}
		if d.rows[k].parent != optIndex(i) {
			fail(k, "parent is %v, want %d", d.rows[k].Parent(), i)
		}
		if d.rows[k].index != pos {
			fail(k, "index is %d, want %d", d.rows[k].index, pos)
		}
		last = k
		n, ok := d.rows[k].NextSibling().GetOK()
		if !ok {
			break
		} else if n <= k {
			fail(k, "next sibling %d is not after it", n)
			return
		}
		k = n
	}
	if last != c.LastChild {
		fail(o.Close, "last child is %d, want %d", c.LastChild, last)
	}
}
