// Package jpath implements a minimal JSONPath expression syntax for naming
// locations in a JSON document.
//
// Only the location steps of JSONPath are supported: member names and array
// positions. The query operators (wildcards, recursive descent, slices,
// filters, and scripts) are rejected by Parse.
package jpath

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

/*
Grammar:

  expr = root steps
  root = "$"
 steps = step [steps]
  step = "." WORD
  step = "[" QNAME "]"
  step = "[" INDEX "]"

  WORD = RE `\w+`
 QNAME = "'" { char | "\'" | "\\" } "'"
 INDEX = RE `-?\d+`

Source:
  https://www.ietf.org/archive/id/draft-goessner-dispatch-jsonpath-00.html
*/

// An Expr is a parsed JSONPath expression. The empty Expr denotes the root.
type Expr []Step

// Parse parses s as a JSONPath expression.
func Parse(s string) (Expr, error) {
	t, ok := strings.CutPrefix(s, "$")
	if !ok {
		return nil, errors.New("missing root marker")
	}
	var out Expr
	for t != "" {
		step, rest, err := parseStep(t)
		if err != nil {
			return nil, fmt.Errorf("offset %d: %w", len(s)-len(t), err)
		}
		out = append(out, step)
		t = rest
	}
	return out, nil
}

// MustParse is as Parse, but panics on error.
func MustParse(s string) Expr {
	e, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("jpath: %v", err))
	}
	return e
}

func (e Expr) String() string {
	var buf strings.Builder
	buf.WriteString("$")
	for _, s := range e {
		buf.WriteString(s.String())
	}
	return buf.String()
}

func parseStep(s string) (_ Step, rest string, _ error) {
	if strings.HasPrefix(s, "..") {
		return Step{}, s, errors.New("recursive descent is not supported")
	}
	if t, ok := strings.CutPrefix(s, "."); ok {
		if strings.HasPrefix(t, "*") {
			return Step{}, s, errors.New("wildcards are not supported")
		}
		m := wordRE.FindStringSubmatch(t)
		if m == nil {
			return Step{}, s, errors.New("invalid .name")
		}
		return Key(m[1]), t[len(m[0]):], nil
	}
	if t, ok := strings.CutPrefix(s, "["); ok {
		var step Step
		switch {
		case strings.HasPrefix(t, "'"):
			name, u, err := parseQuoted(t[1:])
			if err != nil {
				return Step{}, s, err
			}
			step, t = Key(name), u
		case indexRE.MatchString(t):
			m := indexRE.FindString(t)
			pos, err := strconv.Atoi(m)
			if err != nil {
				return Step{}, s, fmt.Errorf("invalid index: %w", err)
			}
			step, t = Nth(pos), t[len(m):]
		case strings.HasPrefix(t, "*"):
			return Step{}, s, errors.New("wildcards are not supported")
		case strings.HasPrefix(t, "?("), strings.HasPrefix(t, "("):
			return Step{}, s, errors.New("filters and scripts are not supported")
		default:
			return Step{}, s, errors.New("invalid subscript")
		}
		if strings.HasPrefix(t, ":") || strings.HasPrefix(t, ",") {
			return Step{}, s, errors.New("slices and unions are not supported")
		}
		u, ok := strings.CutPrefix(t, "]")
		if !ok {
			return Step{}, s, errors.New("missing close bracket")
		}
		return step, u, nil
	}
	return Step{}, s, errors.New("invalid path step")
}

// parseQuoted parses the remainder of a quoted name after its opening quote.
func parseQuoted(s string) (name, rest string, _ error) {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\'':
			return sb.String(), s[i+1:], nil
		case '\\':
			if i+1 < len(s) && (s[i+1] == '\'' || s[i+1] == '\\') {
				i++
			}
		}
		sb.WriteByte(s[i])
	}
	return "", s, errors.New("unterminated quoted name")
}

var (
	wordRE  = regexp.MustCompile(`^(\w+)`)
	plainRE = regexp.MustCompile(`^\w+$`)
	indexRE = regexp.MustCompile(`^-?\d+`)
)

// An Op is a path operator.
type Op byte

const (
	Invalid Op = iota // invalid operator
	Member            // member lookup by name
	Index             // element lookup by position
)

func (o Op) String() string {
	switch o {
	case Member:
		return "member"
	case Index:
		return "index"
	default:
		return "invalid"
	}
}

// A Step is a single step of a JSONPath expression.
type Step struct {
	Op   Op
	Name string // for Member
	Pos  int    // for Index; negative counts from the end
}

// Key returns a step selecting the object member with the given name.
func Key(name string) Step { return Step{Op: Member, Name: name} }

// Nth returns a step selecting the element at position i.
func Nth(i int) Step { return Step{Op: Index, Pos: i} }

func (s Step) String() string {
	switch s.Op {
	case Member:
		if plainRE.MatchString(s.Name) {
			return "." + s.Name
		}
		r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
		return "['" + r.Replace(s.Name) + "']"
	case Index:
		return "[" + strconv.Itoa(s.Pos) + "]"
	default:
		return "[?]"
	}
}
