// Package numsafe guarantees that a document tree can always be encoded.
//
// Arithmetic on untrusted project data can overflow to an infinity or produce
// NaN, neither of which JSON can represent. Sanitize replaces every such value
// with the finite sentinel 0.0 and reports where it did so.
package numsafe

import (
	"tscproj/internal/tree"
)

// Sentinel is the literal written in place of a non-finite number.
const Sentinel = "0.0"

// Sanitize replaces every non-finite number under n with Sentinel and returns
// the paths that were rewritten, in document order.
func Sanitize(n tree.Node) []tree.Path {
	var replaced []tree.Path
	_ = tree.Walk(n, func(path tree.Path, node tree.Node) error {
		s, ok := node.(*tree.Scalar)
		if !ok || !s.IsNumber() || s.IsFinite() {
			return nil
		}
		// The sentinel is a valid literal.
		_ = s.SetLiteral(Sentinel)
		replaced = append(replaced, path)
		return nil
	})
	return replaced
}

// Count reports the number of non-finite numbers under n without changing it.
func Count(n tree.Node) int {
	count := 0
	_ = tree.Walk(n, func(_ tree.Path, node tree.Node) error {
		if s, ok := node.(*tree.Scalar); ok && s.IsNumber() && !s.IsFinite() {
			count++
		}
		return nil
	})
	return count
}
