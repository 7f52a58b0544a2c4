// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package cursor_test

import (
	"testing"

	"github.com/creachadair/jflat/flat"
	"github.com/creachadair/jflat/flat/cursor"
	"github.com/creachadair/jflat/internal/testutil"
	"github.com/creachadair/jflat/jpath"
	"github.com/google/go-cmp/cmp"
)

const testJSON = `{
  "list": [
    {
      "x": 1
    },
    {
      "x": 2
    }
  ],
  "y": {
    "hello": "there"
  },
  "o": [
    "hi",
    "yourself"
  ],
  "xyz": {
    "p": true,
    "d": true,
    "q": false
  }
}`

// Rows of testJSON:
//
//	 0 {            8 ]                 16 "xyz": {
//	 1 "list": [    9 "y": {            17 "p": true
//	 2 {           10 "hello": "there"  18 "d": true
//	 3 "x": 1      11 }                 19 "q": false
//	 4 }           12 "o": [            20 }
//	 5 {           13 "hi"              21 }
//	 6 "x": 2      14 "yourself"
//	 7 }           15 ]

func TestDown(t *testing.T) {
	doc := testutil.MustFlatten(t, testJSON)

	tests := []struct {
		name string
		path []any
		want int
		fail bool
	}{
		{"NilInput", nil, 0, false},
		{"NoMatch", []any{"nonesuch"}, 0, true},
		{"WrongType", []any{11}, 0, true},
		{"BadElement", []any{1.5}, 0, true},

		{"ArrayPos", []any{"list", 1}, 5, false},
		{"ArrayNeg", []any{"list", -1}, 5, false},
		{"ArrayRange", []any{"o", 25}, 0, true},
		{"ObjPath", []any{"xyz", "d"}, 18, false},
		{"ObjPos", []any{"xyz", -1}, 19, false},
		{"Deep", []any{"list", 0, "x"}, 3, false},
		{"Step", []any{jpath.Key("y"), jpath.Key("hello")}, 10, false},
		{"Scalar", []any{"y", "hello", "x"}, 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := cursor.New(doc).Down(tc.path...)
			err := c.Err()
			if err != nil {
				if tc.fail {
					t.Logf("Got expected error: %v", err)
				} else {
					t.Fatalf("Down %+v: unexpected error: %v", tc.path, err)
				}
			} else if tc.fail {
				t.Fatalf("Down %+v: got %d, want error", tc.path, c.Pos())
			}
			if got := c.Pos(); got != tc.want {
				t.Errorf("Down %+v: got row %d, want %d", tc.path, got, tc.want)
			} else if err == nil {
				t.Logf("Found %v at %s OK", c.Row(), c.Path())
			}
		})
	}
}

func TestMoves(t *testing.T) {
	doc := testutil.MustFlatten(t, testJSON)
	c := cursor.New(doc)

	type move struct {
		name string
		do   func(*cursor.Cursor) *cursor.Cursor
		want int
		fail bool
	}
	var (
		up    = func(c *cursor.Cursor) *cursor.Cursor { return c.Up() }
		next  = func(c *cursor.Cursor) *cursor.Cursor { return c.Next() }
		prev  = func(c *cursor.Cursor) *cursor.Cursor { return c.Prev() }
		first = func(c *cursor.Cursor) *cursor.Cursor { return c.First() }
		last  = func(c *cursor.Cursor) *cursor.Cursor { return c.Last() }
		match = func(c *cursor.Cursor) *cursor.Cursor { return c.Match() }
	)
	moves := []move{
		{"Up at root", up, 0, true},
		{"Next at root", next, 0, true},
		{"First", first, 1, false},
		{"Match", match, 8, false},
		{"Next from close", next, 9, false},
		{"Next", next, 12, false},
		{"Last", last, 14, false},
		{"Next at end", next, 14, true},
		{"Prev", prev, 13, false},
		{"Prev at start", prev, 13, true},
		{"First of leaf", first, 13, true},
		{"Match of leaf", match, 13, true},
		{"Up", up, 12, false},
		{"Match", match, 15, false},
		{"Up from close", up, 0, false},
		{"Last", last, 16, false},
		{"Match", match, 20, false},
		{"Prev from close", prev, 12, false},
	}
	for _, m := range moves {
		m.do(c)
		if err := c.Err(); (err != nil) != m.fail {
			t.Errorf("%s: got error %v, want failure %v", m.name, err, m.fail)
		}
		if got := c.Pos(); got != m.want {
			t.Errorf("%s: got row %d, want %d", m.name, got, m.want)
		}
	}

	// A successful move clears the error.
	c.Goto(100)
	if c.Err() == nil || c.Pos() != 12 {
		t.Errorf("Goto(100): got (%d, %v), want (12, error)", c.Pos(), c.Err())
	}
	if c.Goto(3).Err() != nil || c.Pos() != 3 {
		t.Errorf("Goto(3): got (%d, %v), want (3, nil)", c.Pos(), c.Err())
	}
	if got, want := c.Path().String(), "$.list[0].x"; got != want {
		t.Errorf("Path: got %q, want %q", got, want)
	}
	c.Reset()
	if !c.AtOrigin() || c.Err() != nil {
		t.Errorf("Reset: got (%d, %v), want (0, nil)", c.Pos(), c.Err())
	}
}

func TestGotoPath(t *testing.T) {
	doc := testutil.MustFlatten(t, testJSON)
	c := cursor.New(doc).Goto(12)

	if c.GotoPath(jpath.MustParse("$.xyz.q")).Err() != nil || c.Pos() != 19 {
		t.Errorf("GotoPath: got (%d, %v), want (19, nil)", c.Pos(), c.Err())
	}
	if c.GotoPath(jpath.MustParse("$.xyz.r")).Err() == nil || c.Pos() != 19 {
		t.Errorf("GotoPath: got (%d, %v), want (19, error)", c.Pos(), c.Err())
	}

	// Down is relative to the current position, GotoPath to the root.
	c.Goto(1).Down(1, "x")
	if c.Err() != nil || c.Pos() != 6 {
		t.Errorf("Down: got (%d, %v), want (6, nil)", c.Pos(), c.Err())
	}
}

func TestPath(t *testing.T) {
	doc := testutil.MustFlatten(t, testJSON)

	s, err := cursor.Path[flat.String](doc, "o", 1)
	if err != nil {
		t.Fatalf("Path: unexpected error: %v", err)
	}
	if diff := cmp.Diff(flat.String("yourself"), s); diff != "" {
		t.Errorf("Path (-want, +got):\n%s", diff)
	}

	if b, err := cursor.Path[flat.Bool](doc, "xyz", "q"); err != nil || bool(b) {
		t.Errorf("Path: got (%v, %v), want (false, nil)", b, err)
	}
	if o, err := cursor.Path[flat.Open](doc, "list"); err != nil || o.Close != 8 {
		t.Errorf("Path: got (%+v, %v), want close 8", o, err)
	}
	if _, err := cursor.Path[flat.Number](doc, "o", 0); err == nil {
		t.Error("Path: got nil, want type error")
	}
	if _, err := cursor.Path[flat.Number](doc, "nonesuch"); err == nil {
		t.Error("Path: got nil, want error")
	}
}
