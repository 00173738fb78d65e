package tree

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrNonFinite is returned by Encode when the tree holds NaN or an infinity.
var ErrNonFinite = errors.New("non-finite number cannot be encoded")

// EncodeOptions control the output layout.
type EncodeOptions struct {
	// Indent is the per-level indentation. Empty produces compact output.
	Indent string
}

// Encode renders n as JSON. Decoded numbers are written with their original
// literal; computed numbers use the shortest float64 form and always carry a
// fractional part or exponent. Non-ASCII text is written verbatim.
func Encode(n Node, opts EncodeOptions) ([]byte, error) {
	e := &encoder{indent: opts.Indent}
	if err := e.node(nil, n, 0); err != nil {
		return nil, err
	}
	if opts.Indent != "" {
		e.buf.WriteByte('\n')
	}
	return e.buf.Bytes(), nil
}

type encoder struct {
	buf    bytes.Buffer
	indent string
}

func (e *encoder) node(path Path, n Node, depth int) error {
	switch v := n.(type) {
	case *Mapping:
		return e.mapping(path, v, depth)
	case *Sequence:
		return e.sequence(path, v, depth)
	case *Scalar:
		return e.scalar(path, v)
	default:
		return fmt.Errorf("encode %s: unknown node %T", path, n)
	}
}

func (e *encoder) mapping(path Path, m *Mapping, depth int) error {
	if len(m.fields) == 0 {
		e.buf.WriteString("{}")
		return nil
	}
	e.buf.WriteByte('{')
	for i, f := range m.fields {
		if i > 0 {
			e.buf.WriteByte(',')
		}
		e.newline(depth + 1)
		e.writeString(f.Key)
		e.buf.WriteByte(':')
		if e.indent != "" {
			e.buf.WriteByte(' ')
		}
		if err := e.node(path.Key(f.Key), f.Value, depth+1); err != nil {
			return err
		}
	}
	e.newline(depth)
	e.buf.WriteByte('}')
	return nil
}

func (e *encoder) sequence(path Path, s *Sequence, depth int) error {
	if len(s.items) == 0 {
		e.buf.WriteString("[]")
		return nil
	}
	e.buf.WriteByte('[')
	for i, item := range s.items {
		if i > 0 {
			e.buf.WriteByte(',')
		}
		e.newline(depth + 1)
		if err := e.node(path.Index(i), item, depth+1); err != nil {
			return err
		}
	}
	e.newline(depth)
	e.buf.WriteByte(']')
	return nil
}

func (e *encoder) scalar(path Path, s *Scalar) error {
	switch s.kind {
	case KindNull:
		e.buf.WriteString("null")
	case KindBool:
		e.buf.WriteString(strconv.FormatBool(s.b))
	case KindString:
		e.writeString(s.str)
	case KindNumber:
		if s.literal != "" {
			e.buf.WriteString(s.literal)
			return nil
		}
		text, err := FormatFloat(s.num)
		if err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
		e.buf.WriteString(text)
	}
	return nil
}

func (e *encoder) newline(depth int) {
	if e.indent == "" {
		return
	}
	e.buf.WriteByte('\n')
	e.buf.WriteString(strings.Repeat(e.indent, depth))
}

func (e *encoder) writeString(s string) {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	// Encoding a Go string cannot fail.
	_ = enc.Encode(s)
	e.buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte("\n")))
}

// FormatFloat renders f the way Encode writes computed numbers: the shortest
// representation that round-trips, in exponent form outside [1e-6, 1e21), with
// a ".0" suffix on integral values so the result always reads as a float.
func FormatFloat(f float64) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", ErrNonFinite
	}
	abs := math.Abs(f)
	format := byte('f')
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}
	b := strconv.AppendFloat(nil, f, format, -1, 64)
	if format == 'e' {
		// Trim "e-09" to "e-9".
		n := len(b)
		if n >= 4 && b[n-4] == 'e' && b[n-3] == '-' && b[n-2] == '0' {
			b[n-2] = b[n-1]
			b = b[:n-1]
		}
		return string(b), nil
	}
	if !bytes.ContainsRune(b, '.') {
		b = append(b, '.', '0')
	}
	return string(b), nil
}
