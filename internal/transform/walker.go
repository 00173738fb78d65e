package transform

import (
	"fmt"
	"math"

	"tscproj/internal/project"
	"tscproj/internal/tree"
)

// walker carries the state of one traversal.
type walker struct {
	kind          Kind
	factor        float64
	table         *Table
	preserveAudio bool
	audioTypes    map[string]bool

	warnings []project.Warning
	stats    Stats
}

func (w *walker) warn(path tree.Path, format string, args ...any) {
	w.warnings = append(w.warnings, project.Warning{Path: path, Message: fmt.Sprintf(format, args...)})
}

// licensed reports whether values of class c are rescaled by this walk.
func (w *walker) licensed(c Class) bool {
	return (c == ClassSpatial && w.kind == Spatial) || (c == ClassTemporal && w.kind == Temporal)
}

func (w *walker) isAudioClip(m *tree.Mapping) bool {
	typ, ok := m.Text("_type")
	return ok && w.audioTypes[typ]
}

// sourceTimeFields are left alone on a preserved audio clip so the span of
// media it plays stays equal to its timeline duration.
var sourceTimeFields = map[string]bool{
	"duration":      true,
	"mediaStart":    true,
	"mediaDuration": true,
}

func (w *walker) mapping(path tree.Path, m *tree.Mapping, s scope) {
	keepDuration := w.preserveAudio && s.ctx == ContextClip && w.isAudioClip(m)
	preserved := false
	for _, f := range m.Fields() {
		if keepDuration && sourceTimeFields[f.Key] {
			preserved = true
			continue
		}
		w.field(path.Key(f.Key), f.Key, f.Value, s)
	}
	if preserved {
		w.stats.AudioPreserved++
	}
}

// field classifies one mapping member and dispatches on its class.
func (w *walker) field(path tree.Path, key string, value tree.Node, s scope) {
	switch class := w.table.Lookup(s.ctx, s.zone, key); class {
	case ClassNone:
		w.descend(path, key, value, s)
	case ClassKeyframeTrack:
		w.keyframes(path, value, ClassNone, s)
	default:
		w.apply(path, value, class, s)
	}
}

// descend walks into an unclassified value looking for classified fields.
func (w *walker) descend(path tree.Path, key string, value tree.Node, s scope) {
	switch v := value.(type) {
	case *tree.Mapping:
		w.mapping(path, v, s.child(key, false))
	case *tree.Sequence:
		elem := s.child(key, true)
		for i, item := range v.Items() {
			switch it := item.(type) {
			case *tree.Mapping:
				w.mapping(path.Index(i), it, elem)
			case *tree.Sequence:
				w.descend(path.Index(i), key, it, s)
			}
		}
	}
}

// apply rescales value under class. Sequences are handled element-wise and
// mappings as carriers of an animated or composite value.
func (w *walker) apply(path tree.Path, value tree.Node, class Class, s scope) {
	switch v := value.(type) {
	case *tree.Scalar:
		w.scalar(path, v, class)
	case *tree.Sequence:
		for i, item := range v.Items() {
			w.apply(path.Index(i), item, class, s)
		}
	case *tree.Mapping:
		w.carrier(path, v, class, s)
	}
}

// carrier handles a mapping stored under a classified field, such as
// {"defaultValue": 0, "keyframes": [...]} or a vertex {"x": 1, "y": 2}.
func (w *walker) carrier(path tree.Path, m *tree.Mapping, owner Class, s scope) {
	if w.licensed(owner) && !hasCarrierMember(m) {
		w.stats.Skipped++
		w.warn(path, "expected a number or animated value for %s field, found object; left unchanged", owner)
	}
	inner := scope{ctx: ContextCarrier, zone: s.zone}
	for _, f := range m.Fields() {
		fpath := path.Key(f.Key)
		switch f.Key {
		case "defaultValue", "x", "y":
			w.apply(fpath, f.Value, owner, inner)
		case "keyframes":
			w.keyframes(fpath, f.Value, owner, inner)
		default:
			w.field(fpath, f.Key, f.Value, inner)
		}
	}
}

func hasCarrierMember(m *tree.Mapping) bool {
	for _, key := range []string{"defaultValue", "keyframes", "x", "y"} {
		if m.Has(key) {
			return true
		}
	}
	return false
}

// keyframes processes a keyframe track. Entry times follow the temporal
// factor; entry values follow the class of the owning field.
func (w *walker) keyframes(path tree.Path, value tree.Node, owner Class, s scope) {
	seq, ok := value.(*tree.Sequence)
	if !ok {
		if sc, isScalar := value.(*tree.Scalar); isScalar && sc.IsNull() {
			return
		}
		w.stats.Skipped++
		w.warn(path, "keyframes must be a list, found %s", describe(value))
		return
	}
	inner := scope{ctx: ContextKeyframe, zone: s.zone}
	for i, item := range seq.Items() {
		entry, ok := item.(*tree.Mapping)
		if !ok {
			w.stats.Skipped++
			w.warn(path.Index(i), "keyframe entry must be an object, found %s", describe(item))
			continue
		}
		w.stats.KeyframeEntries++
		w.keyframe(path.Index(i), entry, owner, inner)
	}
}

func (w *walker) keyframe(path tree.Path, entry *tree.Mapping, owner Class, s scope) {
	for _, f := range entry.Fields() {
		fpath := path.Key(f.Key)
		switch f.Key {
		case "time", "endTime", "duration":
			w.apply(fpath, f.Value, ClassTemporal, s)
		case "value":
			w.apply(fpath, f.Value, owner, s)
		default:
			w.field(fpath, f.Key, f.Value, s)
		}
	}
}

func (w *walker) scalar(path tree.Path, s *tree.Scalar, class Class) {
	if !w.licensed(class) {
		return
	}
	switch s.Kind() {
	case tree.KindNull:
		return
	case tree.KindNumber:
	default:
		w.stats.Skipped++
		w.warn(path, "expected a number for %s field, found %s; left unchanged", class, s.Kind())
		return
	}

	v, _ := s.Float()
	scaled := v * w.factor
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		w.warn(path, "non-finite value will be written as 0.0")
	case math.IsInf(scaled, 0):
		w.warn(path, "scaling overflowed; value will be written as 0.0")
	}
	s.SetFloat(scaled)
	if class == ClassSpatial {
		w.stats.Spatial++
	} else {
		w.stats.Temporal++
	}
}

func describe(n tree.Node) string {
	switch v := n.(type) {
	case *tree.Mapping:
		return "object"
	case *tree.Sequence:
		return "list"
	case *tree.Scalar:
		return v.Kind().String()
	default:
		return "unknown"
	}
}
