package tree

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
)

// SyntaxError describes malformed input. Offset is the byte position in the
// original text where decoding stopped.
type SyntaxError struct {
	Offset int64
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s (offset %d)", e.Msg, e.Offset)
}

// nonFiniteMarker prefixes the placeholder strings substituted for bare
// non-finite tokens before the text reaches encoding/json.
const nonFiniteMarker = "\x00tree:nonfinite:"

var nonFiniteTokens = []struct {
	token string
	value float64
}{
	{"-Infinity", math.Inf(-1)},
	{"Infinity", math.Inf(1)},
	{"NaN", math.NaN()},
}

type shift struct {
	at    int64
	delta int64
}

// Decode parses data into a tree. Numbers keep their literal text.
func Decode(data []byte) (Node, error) {
	src, shifts := quoteNonFinite(data)
	d := &decoder{
		dec:    json.NewDecoder(bytes.NewReader(src)),
		shifts: shifts,
	}
	if len(shifts) > 0 {
		d.markers = make(map[int64]bool, len(shifts))
		for _, sh := range shifts {
			d.markers[sh.at] = true
		}
	}
	d.dec.UseNumber()

	tok, err := d.dec.Token()
	if errors.Is(err, io.EOF) {
		return nil, &SyntaxError{Offset: 0, Msg: "empty document"}
	}
	if err != nil {
		return nil, d.syntaxError(err)
	}
	root, err := d.value(tok)
	if err != nil {
		return nil, err
	}
	if _, err := d.dec.Token(); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, d.syntaxError(err)
		}
		return nil, &SyntaxError{Offset: d.originalOffset(d.dec.InputOffset()), Msg: "unexpected data after top-level value"}
	}
	return root, nil
}

type decoder struct {
	dec    *json.Decoder
	shifts []shift
	// markers holds the rewritten-text end offsets of substituted tokens.
	markers map[int64]bool
}

func (d *decoder) value(tok json.Token) (Node, error) {
	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			return d.mapping()
		case '[':
			return d.sequence()
		}
		return nil, &SyntaxError{Offset: d.originalOffset(d.dec.InputOffset()), Msg: fmt.Sprintf("unexpected delimiter %q", rune(v))}
	case json.Number:
		n, err := NumberLiteral(string(v))
		if err != nil {
			return nil, &SyntaxError{Offset: d.originalOffset(d.dec.InputOffset()), Msg: fmt.Sprintf("invalid number %q", string(v))}
		}
		return n, nil
	case string:
		// Only strings produced by the rewrite are markers; the same text
		// written by hand in the input stays a string.
		if d.markers[d.dec.InputOffset()] && strings.HasPrefix(v, nonFiniteMarker) {
			name := strings.TrimPrefix(v, nonFiniteMarker)
			for _, nf := range nonFiniteTokens {
				if nf.token == name {
					return Number(nf.value), nil
				}
			}
		}
		return String(v), nil
	case bool:
		return Bool(v), nil
	case nil:
		return Null(), nil
	default:
		return nil, &SyntaxError{Offset: d.originalOffset(d.dec.InputOffset()), Msg: fmt.Sprintf("unexpected token %v", tok)}
	}
}

func (d *decoder) mapping() (Node, error) {
	m := NewMapping()
	for d.dec.More() {
		keyTok, err := d.dec.Token()
		if err != nil {
			return nil, d.syntaxError(err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, &SyntaxError{Offset: d.originalOffset(d.dec.InputOffset()), Msg: "object key must be a string"}
		}
		valTok, err := d.dec.Token()
		if err != nil {
			return nil, d.syntaxError(err)
		}
		child, err := d.value(valTok)
		if err != nil {
			return nil, err
		}
		m.Append(key, child)
	}
	if _, err := d.dec.Token(); err != nil {
		return nil, d.syntaxError(err)
	}
	return m, nil
}

func (d *decoder) sequence() (Node, error) {
	s := NewSequence()
	for d.dec.More() {
		tok, err := d.dec.Token()
		if err != nil {
			return nil, d.syntaxError(err)
		}
		child, err := d.value(tok)
		if err != nil {
			return nil, err
		}
		s.Append(child)
	}
	if _, err := d.dec.Token(); err != nil {
		return nil, d.syntaxError(err)
	}
	return s, nil
}

func (d *decoder) syntaxError(err error) error {
	var se *json.SyntaxError
	if errors.As(err, &se) {
		return &SyntaxError{Offset: d.originalOffset(se.Offset), Msg: se.Error()}
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &SyntaxError{Offset: d.originalOffset(d.dec.InputOffset()), Msg: "unexpected end of input"}
	}
	return &SyntaxError{Offset: d.originalOffset(d.dec.InputOffset()), Msg: err.Error()}
}

// originalOffset maps an offset in the rewritten text back to the input.
func (d *decoder) originalOffset(off int64) int64 {
	orig := off
	for _, s := range d.shifts {
		if s.at >= off {
			break
		}
		orig -= s.delta
	}
	if orig < 0 {
		return 0
	}
	return orig
}

// quoteNonFinite rewrites bare NaN/Infinity/-Infinity tokens outside string
// literals into marker strings. It returns data unchanged when none occur.
func quoteNonFinite(data []byte) ([]byte, []shift) {
	if !bytes.Contains(data, []byte("NaN")) && !bytes.Contains(data, []byte("Infinity")) {
		return data, nil
	}
	var (
		out      bytes.Buffer
		shifts   []shift
		inString bool
		escaped  bool
	)
	out.Grow(len(data))
	for i := 0; i < len(data); i++ {
		c := data[i]
		if inString {
			out.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		if c == '"' {
			inString = true
			out.WriteByte(c)
			continue
		}
		replaced := false
		for _, nf := range nonFiniteTokens {
			if !bytes.HasPrefix(data[i:], []byte(nf.token)) {
				continue
			}
			end := i + len(nf.token)
			if end < len(data) && isIdentByte(data[end]) {
				continue
			}
			quoted := `"\u0000tree:nonfinite:` + nf.token + `"`
			shifts = append(shifts, shift{
				at:    int64(out.Len()) + int64(len(quoted)),
				delta: int64(len(quoted) - len(nf.token)),
			})
			out.WriteString(quoted)
			i = end - 1
			replaced = true
			break
		}
		if !replaced {
			out.WriteByte(c)
		}
	}
	if len(shifts) == 0 {
		return data, nil
	}
	return out.Bytes(), shifts
}

func isIdentByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
