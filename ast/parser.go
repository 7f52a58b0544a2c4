// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package ast

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/creachadair/jflat"
	"github.com/tailscale/hujson"
)

// ErrExtraInput is reported by ParseSingle when the input contains data after
// the first value.
var ErrExtraInput = errors.New("extra input after value")

// Parse parses and returns the JSON values from r. In case of error, any
// complete values already parsed are returned along with the error.
func Parse(r io.Reader) ([]Value, error) { return NewParser(r).ParseAll() }

// ParseSingle parses and returns exactly one JSON value from r.  If r
// contains data after the first value, apart from whitespace, ParseSingle
// returns the value along with ErrExtraInput.
func ParseSingle(r io.Reader) (Value, error) { return NewParser(r).ParseSingle() }

// ParseLenient is as ParseSingle, but accepts JWCC (JSON with commas and
// comments) input.
func ParseLenient(r io.Reader) (Value, error) {
	p := NewParser(r)
	p.AllowJWCC(true)
	return p.ParseSingle()
}

// A Parser constructs syntax trees from JSON source. The zero value is not
// ready for use; call NewParser.
type Parser struct {
	r        io.Reader
	maxDepth int
	jwcc     bool
}

// NewParser constructs a Parser that reads input from r.
func NewParser(r io.Reader) *Parser { return &Parser{r: r} }

// SetMaxDepth limits the nesting depth of input values (see
// jflat.Stream.SetMaxDepth). If n <= 0 there is no limit.
func (p *Parser) SetMaxDepth(n int) { p.maxDepth = n }

// AllowJWCC configures the parser to accept (true) or reject (false) comments
// and trailing commas in the input. When enabled, the input is fully read and
// standardized before parsing; comments are replaced by whitespace so that
// error locations still refer to the original text.
func (p *Parser) AllowJWCC(ok bool) { p.jwcc = ok }

func (p *Parser) stream() (*jflat.Stream, error) {
	r := p.r
	if p.jwcc {
		src, err := io.ReadAll(p.r)
		if err != nil {
			return nil, err
		}
		std, err := hujson.Standardize(src)
		if err != nil {
			return nil, err
		}
		r = bytes.NewReader(std)
	}
	st := jflat.NewStream(r)
	st.SetMaxDepth(p.maxDepth)
	return st, nil
}

// ParseAll parses and returns all the JSON values from the input. In case of
// error, any complete values already parsed are returned along with the error.
func (p *Parser) ParseAll() ([]Value, error) {
	st, err := p.stream()
	if err != nil {
		return nil, err
	}
	h := new(parseHandler)
	var vs []Value
	for {
		v, err := h.parseOne(st)
		if err == io.EOF {
			return vs, nil
		} else if err != nil {
			return vs, err
		}
		vs = append(vs, v)
	}
}

// ParseSingle parses and returns exactly one JSON value from the input.
// Empty input is reported as io.ErrUnexpectedEOF.
func (p *Parser) ParseSingle() (Value, error) {
	st, err := p.stream()
	if err != nil {
		return nil, err
	}
	h := new(parseHandler)
	v, err := h.parseOne(st)
	if err == io.EOF {
		return nil, io.ErrUnexpectedEOF
	} else if err != nil {
		return nil, err
	}
	if _, err := h.parseOne(st); err != io.EOF {
		return v, ErrExtraInput
	}
	return v, nil
}

// A parseHandler implements the jflat.Handler interface to construct syntax
// trees for JSON values.
type parseHandler struct {
	stk []Value
}

func (h *parseHandler) parseOne(st *jflat.Stream) (Value, error) {
	h.stk = h.stk[:0]
	if err := st.ParseOne(h); err != nil {
		return nil, err
	} else if len(h.stk) != 1 {
		return nil, errors.New("incomplete value")
	}
	return h.stk[0], nil
}

// memberStub is a stack placeholder for an object member whose value has not
// yet been parsed.
type memberStub struct {
	Value // placeholder, not used
	m     *Member
}

// arrayStub and objectStub are stack placeholders for incomplete containers.
type arrayStub struct{ Array }
type objectStub struct{ Object }

func (h *parseHandler) top() Value { return h.stk[len(h.stk)-1] }

func (h *parseHandler) pop() Value {
	last := h.top()
	h.stk = h.stk[:len(h.stk)-1]
	return last
}

func (h *parseHandler) push(v Value) { h.stk = append(h.stk, v) }

// reduce adds v to the incomplete container or member atop the stack, or
// pushes it if the stack is empty (a top-level value).
func (h *parseHandler) reduce(v Value) {
	if len(h.stk) == 0 {
		h.push(v)
		return
	}
	switch t := h.top().(type) {
	case *memberStub:
		t.m.Value = v
	case *arrayStub:
		t.Array = append(t.Array, v)
	default:
		panic(fmt.Sprintf("unexpected %T atop the parse stack", t))
	}
}

func (h *parseHandler) BeginObject(loc jflat.Anchor) error {
	h.push(new(objectStub))
	return nil
}

func (h *parseHandler) EndObject(loc jflat.Anchor) error {
	obj := h.pop().(*objectStub).Object
	if obj == nil {
		obj = Object{}
	}
	h.reduce(obj)
	return nil
}

func (h *parseHandler) BeginArray(loc jflat.Anchor) error {
	h.push(new(arrayStub))
	return nil
}

func (h *parseHandler) EndArray(loc jflat.Anchor) error {
	arr := h.pop().(*arrayStub).Array
	if arr == nil {
		arr = Array{}
	}
	h.reduce(arr)
	return nil
}

func (h *parseHandler) BeginMember(loc jflat.Anchor) error {
	key, err := jflat.Unquote(loc.Text())
	if err != nil {
		return fmt.Errorf("at %s: invalid key: %w", loc.Location().First, err)
	}
	// The object this member belongs to is atop the stack. Add the member to
	// it eagerly, so that ending the member only has to pop the stub.
	m := &Member{Key: string(key)}
	obj := h.top().(*objectStub)
	obj.Object = append(obj.Object, m)
	h.push(&memberStub{m: m})
	return nil
}

func (h *parseHandler) EndMember(loc jflat.Anchor) error {
	h.pop()
	return nil
}

func (h *parseHandler) Value(loc jflat.Anchor) error {
	v, err := AnchorValue(loc)
	if err != nil {
		return err
	}
	h.reduce(v)
	return nil
}

func (h *parseHandler) EndOfInput(loc jflat.Anchor) {}

// AnchorValue returns the Value corresponding to the value token at loc.
// It reports an error if loc is not a value token.
func AnchorValue(loc jflat.Anchor) (Value, error) {
	switch tok := loc.Token(); tok {
	case jflat.String:
		dec, err := jflat.Unquote(loc.Text())
		if err != nil {
			return nil, fmt.Errorf("at %s: invalid string: %w", loc.Location().First, err)
		}
		return String(dec), nil
	case jflat.Integer, jflat.Number:
		return Number{text: string(loc.Text()), isInt: tok == jflat.Integer}, nil
	case jflat.True, jflat.False:
		return Bool(tok == jflat.True), nil
	case jflat.Null:
		return Null, nil
	default:
		return nil, fmt.Errorf("unknown value %v", tok)
	}
}
