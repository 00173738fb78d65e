package project

import (
	"tscproj/internal/tree"
)

// ValidateStructure reports shape problems in a project root without failing.
// An empty result means the document has the fields the pipeline relies on.
func ValidateStructure(root *tree.Mapping) []string {
	var problems []string

	for _, key := range []string{"width", "height"} {
		n, ok := root.Get(key)
		if !ok {
			continue
		}
		if s, ok := n.(*tree.Scalar); !ok || !s.IsNumber() {
			problems = append(problems, key+" must be a number")
		}
	}

	if n, ok := root.Get("version"); ok {
		s, isScalar := n.(*tree.Scalar)
		if !isScalar || (s.Kind() != tree.KindString && s.Kind() != tree.KindNumber) {
			problems = append(problems, "version must be a string or number")
		}
	}

	switch n, ok := root.Get("timeline"); {
	case !ok:
		problems = append(problems, "timeline is missing")
	default:
		if _, isMap := n.(*tree.Mapping); !isMap {
			problems = append(problems, "timeline must be a dictionary")
		}
	}

	switch n, ok := root.Get("sourceBin"); {
	case !ok:
		problems = append(problems, "sourceBin is missing")
	default:
		switch v := n.(type) {
		case *tree.Sequence:
		case *tree.Mapping:
			if _, ok := v.Sequence("sources"); !ok {
				problems = append(problems, "sourceBin.sources must be a list")
			}
		default:
			problems = append(problems, "sourceBin must be a list")
		}
	}

	return problems
}
