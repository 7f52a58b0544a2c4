// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/creachadair/jflat"
	"github.com/creachadair/jflat/flat"
	"github.com/creachadair/mds/value"
	"github.com/goccy/go-yaml"
)

type printer struct {
	w   io.Writer
	pal palette
	err error
}

func newPrinter(w io.Writer, useColor bool) *printer {
	return &printer{w: w, pal: newPalette(useColor)}
}

// printRow writes a single line describing row i of doc, for example:
//
//	    2    "b": [  parent=0 prev=1 next=6 close=5
func (p *printer) printRow(doc *flat.Doc, i int) {
	if p.err != nil {
		return
	}
	row := doc.Row(i)

	var sb strings.Builder
	sb.WriteString(strings.Repeat("  ", row.Depth()))
	if k, ok := row.Key().GetOK(); ok {
		sb.WriteString(p.pal.key.Sprint(jflat.Quote(k)))
		sb.WriteString(": ")
	}
	switch row.Value().(type) {
	case flat.Open, flat.Close:
		sb.WriteString(p.pal.bracket.Sprint(row.Value().JSON()))
	default:
		sb.WriteString(p.pal.scalar.Sprint(row.Value().JSON()))
	}

	line := p.pal.index.Sprintf("%5d", i) + "  " + sb.String()
	if ls := links(doc, i); len(ls) != 0 {
		line += "  " + p.pal.link.Sprint(strings.Join(ls, " "))
	}
	_, p.err = fmt.Fprintln(p.w, line)
}

// links returns the labelled structural links of row i.
func links(doc *flat.Doc, i int) []string {
	var out []string
	add := func(label string, m value.Maybe[int]) {
		if v, ok := m.GetOK(); ok {
			out = append(out, label+"="+strconv.Itoa(v))
		}
	}
	add("parent", doc.Parent(i))
	add("prev", doc.PrevSibling(i))
	add("next", doc.NextSibling(i))
	switch v := doc.Row(i).Value().(type) {
	case flat.Open:
		add("close", value.Just(v.Close))
	case flat.Close:
		add("open", value.Just(v.Open))
		add("last", value.Just(v.LastChild))
	}
	return out
}

// yamlRow is the structured form of a row for YAML output.
type yamlRow struct {
	Row    int     `yaml:"row"`
	Path   string  `yaml:"path"`
	Depth  int     `yaml:"depth"`
	Index  int     `yaml:"index"`
	Key    *string `yaml:"key,omitempty"`
	Value  string  `yaml:"value"`
	Parent *int    `yaml:"parent,omitempty"`
	Prev   *int    `yaml:"prev,omitempty"`
	Next   *int    `yaml:"next,omitempty"`
	Match  *int    `yaml:"match,omitempty"`
}

func ptr[T any](m value.Maybe[T]) *T {
	if v, ok := m.GetOK(); ok {
		return &v
	}
	return nil
}

func writeYAML(w io.Writer, doc *flat.Doc, lo, hi int) error {
	rows := make([]yamlRow, 0, hi-lo)
	for i := lo; i < hi; i++ {
		row := doc.Row(i)
		rows = append(rows, yamlRow{
			Row:    i,
			Path:   doc.Path(i).String(),
			Depth:  row.Depth(),
			Index:  row.Index(),
			Key:    ptr(row.Key()),
			Value:  row.Value().JSON(),
			Parent: ptr(row.Parent()),
			Prev:   ptr(row.PrevSibling()),
			Next:   ptr(row.NextSibling()),
			Match:  ptr(doc.Match(i)),
		})
	}
	out, err := yaml.Marshal(rows)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}
