// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package flat_test

import (
	"slices"
	"testing"

	"github.com/creachadair/jflat/flat"
	"github.com/creachadair/jflat/internal/testutil"
	"github.com/creachadair/jflat/jpath"
	"github.com/creachadair/mds/mtest"
	"github.com/google/go-cmp/cmp"
)

func TestNavigation(t *testing.T) {
	doc := testutil.MustFlatten(t, sampleJSON)

	t.Run("FirstLastChild", func(t *testing.T) {
		first := ints(doc.Len(), doc.FirstChild)
		last := ints(doc.Len(), doc.LastChild)
		if diff := cmp.Diff([]int{1, -1, 3, -1, -1, 3, 7, -1, -1, -1, 7, -1, 1}, first); diff != "" {
			t.Errorf("FirstChild (-want, +got):\n%s", diff)
		}
		if diff := cmp.Diff([]int{11, -1, 4, -1, -1, 4, 9, -1, -1, -1, 9, -1, 11}, last); diff != "" {
			t.Errorf("LastChild (-want, +got):\n%s", diff)
		}
	})
	t.Run("Match", func(t *testing.T) {
		got := ints(doc.Len(), doc.Match)
		if diff := cmp.Diff([]int{12, -1, 5, -1, -1, 2, 10, -1, -1, -1, 6, -1, 0}, got); diff != "" {
			t.Errorf("Match (-want, +got):\n%s", diff)
		}
		if !doc.Matches(2, 5) || doc.Matches(5, 2) || doc.Matches(0, 10) || doc.Matches(1, 2) {
			t.Error("Matches gave the wrong answer")
		}
	})
	t.Run("Entry", func(t *testing.T) {
		var got []int
		for i := range doc.Len() {
			got = append(got, doc.Entry(i))
		}
		if diff := cmp.Diff([]int{0, 1, 2, 3, 4, 2, 6, 7, 8, 9, 6, 11, 0}, got); diff != "" {
			t.Errorf("Entry (-want, +got):\n%s", diff)
		}
	})
	t.Run("Kinds", func(t *testing.T) {
		var got []string
		for i := range doc.Len() {
			switch {
			case doc.IsOpen(i):
				got = append(got, "open")
			case doc.IsClose(i):
				got = append(got, "close")
			case doc.IsLeaf(i):
				got = append(got, "leaf")
			}
			if doc.IsBoundary(i) == doc.IsLeaf(i) {
				t.Errorf("Row %d: IsBoundary and IsLeaf agree", i)
			}
		}
		want := []string{
			"open", "leaf", "open", "leaf", "leaf", "close", "open",
			"leaf", "leaf", "leaf", "close", "leaf", "close",
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Kinds (-want, +got):\n%s", diff)
		}
	})
	t.Run("Children", func(t *testing.T) {
		tests := []struct {
			row  int
			want []int
		}{
			{0, []int{1, 2, 6, 11}},
			{12, []int{1, 2, 6, 11}},
			{2, []int{3, 4}},
			{6, []int{7, 8, 9}},
			{1, nil},
			{10, []int{7, 8, 9}},
		}
		for _, test := range tests {
			got := slices.Collect(doc.Children(test.row))
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("Children(%d) (-want, +got):\n%s", test.row, diff)
			}
			if n := doc.ChildCount(test.row); n != len(test.want) {
				t.Errorf("ChildCount(%d): got %d, want %d", test.row, n, len(test.want))
			}
		}
	})
	t.Run("Closing", func(t *testing.T) {
		// From a Close row, the siblings of the container are reached via its
		// entry row.
		if got, ok := doc.NextSibling(doc.Entry(5)).GetOK(); !ok || got != 6 {
			t.Errorf("Next from close 5: got %v, want 6", doc.NextSibling(doc.Entry(5)))
		}
		if doc.NextSibling(5).Present() || doc.PrevSibling(10).Present() {
			t.Error("Close rows should not have sibling links")
		}
	})
}

func TestEmptyContainers(t *testing.T) {
	doc := testutil.MustFlatten(t, `[{}, []]`)
	for _, i := range []int{1, 2} {
		if doc.FirstChild(i).Present() || doc.LastChild(i).Present() || doc.Match(i).Present() {
			t.Errorf("Row %d: empty container has child or match links", i)
		}
		if !doc.IsLeaf(i) {
			t.Errorf("Row %d: empty container is not a leaf", i)
		}
		if n := doc.ChildCount(i); n != 0 {
			t.Errorf("ChildCount(%d): got %d, want 0", i, n)
		}
	}
}

func TestPathFind(t *testing.T) {
	doc := testutil.MustFlatten(t, `{
  "a": 2,
  "b": [4, "5"],
  "c": {"d": null, "e f": true},
  "g": [[], {}]
}`)
	tests := []struct {
		row  int
		path string
	}{
		{0, "$"},
		{1, "$.a"},
		{2, "$.b"},
		{3, "$.b[0]"},
		{4, "$.b[1]"},
		{5, "$.b"}, // close row
		{7, "$.c.d"},
		{8, "$.c['e f']"},
		{10, "$.g"},
		{11, "$.g[0]"},
		{12, "$.g[1]"},
		{13, "$.g"}, // close row
		{14, "$"},
	}
	for _, test := range tests {
		got := doc.Path(test.row).String()
		if got != test.path {
			t.Errorf("Path(%d): got %q, want %q", test.row, got, test.path)
		}
		want := doc.Entry(test.row)
		if i, err := doc.Find(jpath.MustParse(test.path)); err != nil {
			t.Errorf("Find %q: unexpected error: %v", test.path, err)
		} else if i != want {
			t.Errorf("Find %q: got %d, want %d", test.path, i, want)
		}
	}

	// Every row can be found from its path.
	for i := range doc.Len() {
		if got, err := doc.Find(doc.Path(i)); err != nil || got != doc.Entry(i) {
			t.Errorf("Find(Path(%d)): got (%d, %v), want %d", i, got, err, doc.Entry(i))
		}
	}
}

func TestFind(t *testing.T) {
	doc := testutil.MustFlatten(t, `{"a":[1,2,3],"b":{"x":1,"x":2},"c":{},"d":"s"}`)
	tests := []struct {
		path string
		want int
		fail bool
	}{
		{"$.a[-1]", 4, false},
		{"$.a[-3]", 2, false},
		{"$.a[-4]", 0, true},
		{"$.a[3]", 0, true},
		{"$[1]", 6, false},
		{"$[-1]", 11, false},
		{"$.b.x", 7, false}, // first duplicate
		{"$.b[1]", 8, false},
		{"$.c.x", 0, true},
		{"$.c[0]", 0, true},
		{"$.d.x", 0, true},
		{"$.d[0]", 0, true},
		{"$.a.x", 0, true},
		{"$.nonesuch", 0, true},
	}
	for _, test := range tests {
		got, err := doc.Find(jpath.MustParse(test.path))
		if test.fail {
			if err == nil {
				t.Errorf("Find %q: got %d, want error", test.path, got)
			} else {
				t.Logf("Find %q: got expected error: %v", test.path, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("Find %q: unexpected error: %v", test.path, err)
		} else if got != test.want {
			t.Errorf("Find %q: got %d, want %d", test.path, got, test.want)
		}
	}
}

func TestRowAccessors(t *testing.T) {
	doc := testutil.MustFlatten(t, `{"k": [true, "v"]}`)
	r := doc.Row(1)
	if k, ok := r.Key().GetOK(); !ok || k != "k" {
		t.Errorf("Key: got %v, want k", r.Key())
	}
	if got, want := r.String(), `Row(depth=1, "k": [)`; got != want {
		t.Errorf("String: got %q, want %q", got, want)
	}
	if got, want := doc.Row(3).String(), `Row(depth=2, "v")`; got != want {
		t.Errorf("String: got %q, want %q", got, want)
	}
	if v, ok := doc.Row(2).Value().(flat.Bool); !ok || !bool(v) {
		t.Errorf("Value: got %#v, want true", doc.Row(2).Value())
	}
}

func TestOutOfRange(t *testing.T) {
	doc := testutil.MustFlatten(t, `[1]`)
	for _, i := range []int{-1, doc.Len()} {
		mtest.MustPanic(t, func() { doc.Row(i) })
		mtest.MustPanic(t, func() { doc.Parent(i) })
		mtest.MustPanic(t, func() { doc.NextSibling(i) })
		mtest.MustPanic(t, func() { doc.Match(i) })
	}
}

func TestValidate(t *testing.T) {
	for _, in := range []string{
		sampleJSON, `1`, `[]`, `{"a":{"b":{"c":[1,[2,{}]]}}}`,
	} {
		doc := testutil.MustFlatten(t, in)
		if err := doc.Validate(); err != nil {
			t.Errorf("Validate %#q: %v", in, err)
		}
	}
}
