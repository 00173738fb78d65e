package transform

import (
	"strings"

	"tscproj/internal/project"
)

// Class is the scaling behaviour assigned to a field.
type Class int

const (
	ClassNone Class = iota
	ClassSpatial
	ClassTemporal
	ClassExcluded
	ClassKeyframeTrack
)

func (c Class) String() string {
	switch c {
	case ClassSpatial:
		return "spatial"
	case ClassTemporal:
		return "temporal"
	case ClassExcluded:
		return "excluded"
	case ClassKeyframeTrack:
		return "keyframes"
	default:
		return "none"
	}
}

// Table maps (context, field) pairs to a Class. Tables are built once and
// never modified.
type Table struct {
	schema    project.Schema
	byContext map[Context]map[string]Class
	byZone    map[Zone]map[string]Class
	byName    map[string]Class
	// excludedSubstrings exclude any field whose lowercased name contains them.
	excludedSubstrings []string
	excludedPrefixes   []string
}

// Schema returns the schema generation the table serves.
func (t *Table) Schema() project.Schema { return t.schema }

// Lookup classifies field as seen in ctx within zone. Context rules win over
// zone rules, which win over bare-name rules; name patterns are consulted last.
func (t *Table) Lookup(ctx Context, zone Zone, field string) Class {
	if rules, ok := t.byContext[ctx]; ok {
		if c, ok := rules[field]; ok {
			return c
		}
	}
	if rules, ok := t.byZone[zone]; ok {
		if c, ok := rules[field]; ok {
			return c
		}
	}
	if c, ok := t.byName[field]; ok {
		return c
	}
	for _, p := range t.excludedPrefixes {
		if strings.HasPrefix(field, p) {
			return ClassExcluded
		}
	}
	lower := strings.ToLower(field)
	for _, s := range t.excludedSubstrings {
		if strings.Contains(lower, s) {
			return ClassExcluded
		}
	}
	return ClassNone
}

var (
	spatialFields = []string{
		"width", "height",
		"translation0", "translation1", "translation2",
		"scale0", "scale1",
		"rect", "trackRect",
		"vertices", "points",
	}
	temporalFields = []string{
		"start", "duration", "endTime",
		"markIn", "markOut",
		"mediaStart", "mediaDuration",
		"trimStartSum",
	}
	excludedFields = []string{
		"opacity", "volume",
		"editRate", "videoFormatFrameRate", "sampleRate", "frameRate",
		"id", "src", "trackIndex", "range", "scalar",
		"anchor0", "anchor1", "anchor2",
		"geometryCrop0", "geometryCrop1", "geometryCrop2", "geometryCrop3",
		"tolerance", "softness", "defringe", "compensation", "hue",
		"line-spacing", "word-wrap",
	}
	// Catalog entries describe native media: their timing is the length of
	// the recording, not a position on the timeline.
	sourceBinExcluded = []string{
		"start", "duration", "endTime",
		"markIn", "markOut",
		"mediaStart", "mediaDuration",
		"trimStartSum",
	}

	currentTable = buildTable(project.SchemaCurrent, nil, nil)
	legacyTable  = buildTable(project.SchemaLegacy,
		map[string]Class{"rect0": ClassSpatial, "rect1": ClassSpatial, "rect2": ClassSpatial, "rect3": ClassSpatial},
		[]string{"trimStartSum"},
	)
)

func buildTable(schema project.Schema, extra map[string]Class, omit []string) *Table {
	t := &Table{
		schema: schema,
		byContext: map[Context]map[string]Class{
			ContextAnnotation: {
				"tail-x":        ClassSpatial,
				"tail-y":        ClassSpatial,
				"stroke-width":  ClassSpatial,
				"corner-radius": ClassSpatial,
			},
			ContextFont: {
				"size": ClassSpatial,
			},
			ContextKeyframe: {
				"time": ClassTemporal,
			},
			ContextMarker: {
				"time": ClassTemporal,
			},
			ContextSource: {
				"size": ClassExcluded,
			},
		},
		byZone: map[Zone]map[string]Class{
			ZoneSourceBin: classify(sourceBinExcluded, ClassExcluded),
		},
		byName:             make(map[string]Class),
		excludedPrefixes:   []string{"rotation"},
		excludedSubstrings: []string{"color"},
	}
	for _, f := range spatialFields {
		t.byName[f] = ClassSpatial
	}
	for _, f := range temporalFields {
		t.byName[f] = ClassTemporal
	}
	for _, f := range excludedFields {
		t.byName[f] = ClassExcluded
	}
	t.byName["keyframes"] = ClassKeyframeTrack
	for f, c := range extra {
		t.byName[f] = c
	}
	for _, f := range omit {
		delete(t.byName, f)
		delete(t.byZone[ZoneSourceBin], f)
	}
	return t
}

func classify(fields []string, c Class) map[string]Class {
	m := make(map[string]Class, len(fields))
	for _, f := range fields {
		m[f] = c
	}
	return m
}

// TableFor returns the field table for schema. Unknown schemas use the
// current table.
func TableFor(schema project.Schema) *Table {
	if schema == project.SchemaLegacy {
		return legacyTable
	}
	return currentTable
}
