package tree

import (
	"math"
	"strconv"
)

// Node is a value in a document tree. Implementations are *Mapping,
// *Sequence and *Scalar.
type Node interface {
	Accept(v Visitor) error
	node()
}

// Visitor receives callbacks for each node variant.
type Visitor interface {
	VisitMapping(m *Mapping) error
	VisitSequence(s *Sequence) error
	VisitScalar(s *Scalar) error
}

// Field is a single key/value pair of a Mapping.
type Field struct {
	Key   string
	Value Node
}

// Mapping is an ordered JSON object. Duplicate keys are kept in order; lookups
// resolve to the last occurrence.
type Mapping struct {
	fields []Field
}

// NewMapping returns an empty mapping.
func NewMapping() *Mapping {
	return &Mapping{}
}

func (*Mapping) node() {}

// Accept dispatches to v.VisitMapping.
func (m *Mapping) Accept(v Visitor) error { return v.VisitMapping(m) }

// Len reports the number of fields, duplicates included.
func (m *Mapping) Len() int { return len(m.fields) }

// Fields returns the fields in document order. The slice is shared with the
// mapping; use SetAt to replace values.
func (m *Mapping) Fields() []Field { return m.fields }

// Keys returns the field keys in document order.
func (m *Mapping) Keys() []string {
	keys := make([]string, len(m.fields))
	for i, f := range m.fields {
		keys[i] = f.Key
	}
	return keys
}

// Get returns the value stored under key.
func (m *Mapping) Get(key string) (Node, bool) {
	if i := m.index(key); i >= 0 {
		return m.fields[i].Value, true
	}
	return nil, false
}

// Has reports whether key is present.
func (m *Mapping) Has(key string) bool { return m.index(key) >= 0 }

// Set replaces the value under key, or appends a new field when absent.
func (m *Mapping) Set(key string, value Node) {
	if i := m.index(key); i >= 0 {
		m.fields[i].Value = value
		return
	}
	m.Append(key, value)
}

// SetAt replaces the value of the i-th field.
func (m *Mapping) SetAt(i int, value Node) { m.fields[i].Value = value }

// Append adds a field without checking for an existing key.
func (m *Mapping) Append(key string, value Node) {
	m.fields = append(m.fields, Field{Key: key, Value: value})
}

// Mapping returns the value under key when it is a mapping.
func (m *Mapping) Mapping(key string) (*Mapping, bool) {
	n, ok := m.Get(key)
	if !ok {
		return nil, false
	}
	child, ok := n.(*Mapping)
	return child, ok
}

// Sequence returns the value under key when it is a sequence.
func (m *Mapping) Sequence(key string) (*Sequence, bool) {
	n, ok := m.Get(key)
	if !ok {
		return nil, false
	}
	child, ok := n.(*Sequence)
	return child, ok
}

// Scalar returns the value under key when it is a scalar.
func (m *Mapping) Scalar(key string) (*Scalar, bool) {
	n, ok := m.Get(key)
	if !ok {
		return nil, false
	}
	child, ok := n.(*Scalar)
	return child, ok
}

// Float returns the numeric value under key.
func (m *Mapping) Float(key string) (float64, bool) {
	s, ok := m.Scalar(key)
	if !ok {
		return 0, false
	}
	return s.Float()
}

// Text returns the string value under key.
func (m *Mapping) Text(key string) (string, bool) {
	s, ok := m.Scalar(key)
	if !ok || s.kind != KindString {
		return "", false
	}
	return s.str, true
}

func (m *Mapping) index(key string) int {
	for i := len(m.fields) - 1; i >= 0; i-- {
		if m.fields[i].Key == key {
			return i
		}
	}
	return -1
}

// Sequence is an ordered JSON array.
type Sequence struct {
	items []Node
}

// NewSequence returns a sequence holding items.
func NewSequence(items ...Node) *Sequence {
	return &Sequence{items: items}
}

func (*Sequence) node() {}

// Accept dispatches to v.VisitSequence.
func (s *Sequence) Accept(v Visitor) error { return v.VisitSequence(s) }

// Len reports the number of items.
func (s *Sequence) Len() int { return len(s.items) }

// At returns the i-th item.
func (s *Sequence) At(i int) Node { return s.items[i] }

// Set replaces the i-th item.
func (s *Sequence) Set(i int, n Node) { s.items[i] = n }

// Append adds an item to the end of the sequence.
func (s *Sequence) Append(n Node) { s.items = append(s.items, n) }

// Items returns the items. The slice is shared with the sequence.
func (s *Sequence) Items() []Node { return s.items }

// Kind identifies the type of a Scalar.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindString
	KindNumber
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	default:
		return "unknown"
	}
}

// Scalar is a JSON leaf value.
type Scalar struct {
	kind    Kind
	b       bool
	str     string
	num     float64
	literal string
}

func (*Scalar) node() {}

// Accept dispatches to v.VisitScalar.
func (s *Scalar) Accept(v Visitor) error { return v.VisitScalar(s) }

// Null returns a JSON null.
func Null() *Scalar { return &Scalar{kind: KindNull} }

// Bool returns a JSON boolean.
func Bool(b bool) *Scalar { return &Scalar{kind: KindBool, b: b} }

// String returns a JSON string.
func String(s string) *Scalar { return &Scalar{kind: KindString, str: s} }

// Number returns a JSON number holding f. The value is formatted on encode.
func Number(f float64) *Scalar { return &Scalar{kind: KindNumber, num: f} }

// NumberLiteral returns a JSON number that re-encodes as lit. Literals beyond
// float64 range decode to an infinite value but keep their text.
func NumberLiteral(lit string) (*Scalar, error) {
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil && !isRangeError(err) {
		return nil, err
	}
	return &Scalar{kind: KindNumber, num: f, literal: lit}, nil
}

func isRangeError(err error) bool {
	numErr, ok := err.(*strconv.NumError)
	return ok && numErr.Err == strconv.ErrRange
}

// Kind returns the scalar's type.
func (s *Scalar) Kind() Kind { return s.kind }

// IsNull reports whether s is null.
func (s *Scalar) IsNull() bool { return s.kind == KindNull }

// IsNumber reports whether s is a number.
func (s *Scalar) IsNumber() bool { return s.kind == KindNumber }

// Float returns the numeric value when s is a number.
func (s *Scalar) Float() (float64, bool) {
	if s.kind != KindNumber {
		return 0, false
	}
	return s.num, true
}

// BoolValue returns the boolean value when s is a bool.
func (s *Scalar) BoolValue() (bool, bool) {
	if s.kind != KindBool {
		return false, false
	}
	return s.b, true
}

// StringValue returns the string value when s is a string.
func (s *Scalar) StringValue() (string, bool) {
	if s.kind != KindString {
		return "", false
	}
	return s.str, true
}

// Literal returns the source text of a decoded number, or "" when the number
// was computed.
func (s *Scalar) Literal() string { return s.literal }

// IsFinite reports whether s is a finite number.
func (s *Scalar) IsFinite() bool {
	return s.kind == KindNumber && !math.IsNaN(s.num) && !math.IsInf(s.num, 0)
}

// SetFloat stores f in a number scalar. A value equal to the current one keeps
// the source literal, so an identity update leaves the encoding untouched.
func (s *Scalar) SetFloat(f float64) {
	if s.kind == KindNumber && s.literal != "" && f == s.num {
		return
	}
	*s = Scalar{kind: KindNumber, num: f}
}

// SetLiteral replaces s with a number that encodes as lit.
func (s *Scalar) SetLiteral(lit string) error {
	n, err := NumberLiteral(lit)
	if err != nil {
		return err
	}
	*s = *n
	return nil
}
