package tree

import (
	"strconv"
	"strings"
)

// Step is one element of a Path: either a mapping key or a sequence index.
type Step struct {
	Key   string
	Index int
	IsKey bool
}

// Path locates a node from the document root.
type Path []Step

// Key returns a copy of p extended by a mapping key.
func (p Path) Key(key string) Path {
	return p.with(Step{Key: key, IsKey: true})
}

// Index returns a copy of p extended by a sequence index.
func (p Path) Index(i int) Path {
	return p.with(Step{Index: i})
}

func (p Path) with(step Step) Path {
	next := make(Path, len(p), len(p)+1)
	copy(next, p)
	return append(next, step)
}

// Last returns the final key of p, or "" when p is empty or ends in an index.
func (p Path) Last() string {
	if len(p) == 0 || !p[len(p)-1].IsKey {
		return ""
	}
	return p[len(p)-1].Key
}

// String renders p as "timeline.scenes[0].medias[2].start". The root is "$".
func (p Path) String() string {
	if len(p) == 0 {
		return "$"
	}
	var b strings.Builder
	for i, step := range p {
		if step.IsKey {
			if i > 0 {
				b.WriteByte('.')
			}
			b.WriteString(step.Key)
			continue
		}
		b.WriteByte('[')
		b.WriteString(strconv.Itoa(step.Index))
		b.WriteByte(']')
	}
	return b.String()
}
