package tree

import "errors"

// SkipChildren may be returned by a WalkFunc to stop descent into the node
// just visited.
var SkipChildren = errors.New("skip children")

// WalkFunc is called for each node in pre-order.
type WalkFunc func(path Path, n Node) error

// Walk traverses n depth first, calling fn before descending into children.
// Walk stops at the first error other than SkipChildren.
func Walk(n Node, fn WalkFunc) error {
	return walk(nil, n, fn)
}

func walk(path Path, n Node, fn WalkFunc) error {
	if err := fn(path, n); err != nil {
		if errors.Is(err, SkipChildren) {
			return nil
		}
		return err
	}
	switch v := n.(type) {
	case *Mapping:
		for _, f := range v.fields {
			if err := walk(path.Key(f.Key), f.Value, fn); err != nil {
				return err
			}
		}
	case *Sequence:
		for i, item := range v.items {
			if err := walk(path.Index(i), item, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// Clone returns a deep copy of n.
func Clone(n Node) Node {
	switch v := n.(type) {
	case *Mapping:
		return CloneMapping(v)
	case *Sequence:
		out := &Sequence{items: make([]Node, len(v.items))}
		for i, item := range v.items {
			out.items[i] = Clone(item)
		}
		return out
	case *Scalar:
		cp := *v
		return &cp
	default:
		return nil
	}
}

// CloneMapping returns a deep copy of m.
func CloneMapping(m *Mapping) *Mapping {
	if m == nil {
		return nil
	}
	out := &Mapping{fields: make([]Field, len(m.fields))}
	for i, f := range m.fields {
		out.fields[i] = Field{Key: f.Key, Value: Clone(f.Value)}
	}
	return out
}

// Equal reports whether a and b have the same shape, keys, key order and
// values. Numbers compare by value; NaN equals NaN.
func Equal(a, b Node) bool {
	switch x := a.(type) {
	case *Mapping:
		y, ok := b.(*Mapping)
		if !ok || len(x.fields) != len(y.fields) {
			return false
		}
		for i := range x.fields {
			if x.fields[i].Key != y.fields[i].Key || !Equal(x.fields[i].Value, y.fields[i].Value) {
				return false
			}
		}
		return true
	case *Sequence:
		y, ok := b.(*Sequence)
		if !ok || len(x.items) != len(y.items) {
			return false
		}
		for i := range x.items {
			if !Equal(x.items[i], y.items[i]) {
				return false
			}
		}
		return true
	case *Scalar:
		y, ok := b.(*Scalar)
		if !ok || x.kind != y.kind {
			return false
		}
		switch x.kind {
		case KindBool:
			return x.b == y.b
		case KindString:
			return x.str == y.str
		case KindNumber:
			return x.num == y.num || (x.num != x.num && y.num != y.num)
		}
		return true
	default:
		return a == nil && b == nil
	}
}
