// Package testutil defines support code for unit tests.
package testutil

import (
	"strings"
	"testing"

	"github.com/creachadair/jflat/ast"
	"github.com/creachadair/jflat/flat"
)

// MustParse parses src as a single JSON value, or fails t.
func MustParse(t testing.TB, src string) ast.Value {
	t.Helper()
	v, err := ast.ParseSingle(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse %#q: %v", src, err)
	}
	return v
}

// MustFlatten parses and flattens src, or fails t. It also checks that the
// result satisfies the structural invariants of a flat.Doc.
func MustFlatten(t testing.TB, src string) *flat.Doc {
	t.Helper()
	doc, err := flat.Flatten(MustParse(t, src), nil)
	if err != nil {
		t.Fatalf("Flatten %#q: %v", src, err)
	}
	if err := doc.Validate(); err != nil {
		t.Fatalf("Validate %#q: %v", src, err)
	}
	return doc
}

// Nested returns a JSON array nested depth levels deep around a single 0,
// for example "[[[0]]]" for depth 3.
func Nested(depth int) string {
	return strings.Repeat("[", depth) + "0" + strings.Repeat("]", depth)
}
