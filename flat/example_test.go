// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package flat_test

import (
	"fmt"
	"log"
	"strings"

	"github.com/creachadair/jflat/flat"
	"github.com/creachadair/jflat/jpath"
)

func Example() {
	doc, err := flat.Parse(strings.NewReader(`{"a": 2, "b": [4, "5"]}`), nil)
	if err != nil {
		log.Fatalf("Parse: %v", err)
	}
	for i, row := range doc.Rows() {
		fmt.Println(i, row)
	}

	// Jump from the opening bracket of "b" to its closing bracket.
	b, err := doc.Find(jpath.MustParse("$.b"))
	if err != nil {
		log.Fatalf("Find: %v", err)
	}
	end, _ := doc.Match(b).GetOK()
	fmt.Println("match", b, end)
	// Output:
	// 0 Row(depth=0, {)
	// 1 Row(depth=1, "a": 2)
	// 2 Row(depth=1, "b": [)
	// 3 Row(depth=2, 4)
	// 4 Row(depth=2, "5")
	// 5 Row(depth=1, ])
	// 6 Row(depth=0, })
	// match 2 5
}
