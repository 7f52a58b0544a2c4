// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

// Program jflat prints the flattened row structure of a JSON document.
//
// Usage:
//
//	jflat [flags] [file]
//
// With no file, jflat reads standard input. Each output line describes one
// row: its index, its indented key and value, and its structural links.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/creachadair/jflat/flat"
	"github.com/creachadair/jflat/jpath"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// CLI defines the command-line flags.
type CLI struct {
	File     string `arg:"" optional:"" help:"Input JSON file (default stdin)." type:"path"`
	Lenient  bool   `help:"Accept comments and trailing commas (JWCC)." short:"l"`
	MaxDepth int    `help:"Reject input nested more deeply than this." default:"10000"`
	Check    bool   `help:"Verify the structural invariants of the result." short:"c"`
	Path     string `help:"Print only the row at this JSONPath (e.g. $.a[0])." short:"p"`
	Format   string `help:"Output format." enum:"text,yaml" default:"text" short:"f"`
	Color    string `help:"Colorize text output." enum:"auto,always,never" default:"auto"`
}

func main() {
	var cli CLI
	kong.Parse(&cli,
		kong.Name("jflat"),
		kong.Description("Print the flattened row structure of a JSON document."),
		kong.UsageOnError(),
	)
	if err := cli.Run(os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "jflat: %v\n", err)
		os.Exit(1)
	}
}

// Run reads a document, flattens it, and writes the report to w.
func (c *CLI) Run(stdin io.Reader, w io.Writer) error {
	in := stdin
	if c.File != "" {
		f, err := os.Open(c.File)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	doc, err := flat.Parse(in, &flat.Options{MaxDepth: c.MaxDepth, Lenient: c.Lenient})
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	if c.Check {
		if err := doc.Validate(); err != nil {
			return fmt.Errorf("invalid structure: %w", err)
		}
	}

	lo, hi := 0, doc.Len()
	if c.Path != "" {
		e, err := jpath.Parse(c.Path)
		if err != nil {
			return fmt.Errorf("path: %w", err)
		}
		i, err := doc.Find(e)
		if err != nil {
			return fmt.Errorf("path: %w", err)
		}
		lo, hi = i, i+1
	}

	switch c.Format {
	case "yaml":
		return writeYAML(w, doc, lo, hi)
	default:
		p := newPrinter(w, c.useColor(w))
		for i := lo; i < hi; i++ {
			p.printRow(doc, i)
		}
		return p.err
	}
}

// useColor reports whether text output to w should be colorized.
func (c *CLI) useColor(w io.Writer) bool {
	switch c.Color {
	case "always":
		return true
	case "never":
		return false
	}
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

// colors used for the parts of a text row.
type palette struct {
	index, key, scalar, bracket, link *color.Color
}

func newPalette(enable bool) palette {
	p := palette{
		index:   color.New(color.FgHiBlack),
		key:     color.New(color.FgBlue, color.Bold),
		scalar:  color.New(color.FgGreen),
		bracket: color.New(color.FgYellow),
		link:    color.New(color.FgCyan),
	}
	for _, c := range []*color.Color{p.index, p.key, p.scalar, p.bracket, p.link} {
		if enable {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}
