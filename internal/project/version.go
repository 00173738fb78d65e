package project

import (
	"fmt"
	"strconv"
	"strings"

	"tscproj/internal/tree"
)

// Schema selects the field-table generation used by the transformer.
type Schema int

const (
	SchemaUnknown Schema = iota
	// SchemaLegacy covers version 1 through 3 documents, whose media catalog
	// is a flat list and whose source rectangles may be stored as four
	// scalars (rect0..rect3).
	SchemaLegacy
	// SchemaCurrent covers version 4 through 9 documents.
	SchemaCurrent
)

func (s Schema) String() string {
	switch s {
	case SchemaLegacy:
		return "legacy"
	case SchemaCurrent:
		return "current"
	default:
		return "unknown"
	}
}

const (
	minKnownMajor = 1
	maxKnownMajor = 9
	// lastLegacyMajor is the newest version that still uses the legacy layout.
	lastLegacyMajor = 3

	// HighPrecisionEditRate is the timeline tick rate introduced with version 9.
	HighPrecisionEditRate = 705600000
)

// VersionInfo describes the detected schema of a document.
type VersionInfo struct {
	// Declared is the raw version marker, or "" when the document has none.
	Declared string
	Major    int
	Minor    int
	Schema   Schema
	// EditRate is the root editRate, or 0 when absent.
	EditRate int64
	// Inferred is set when Schema came from structure alone.
	Inferred bool
}

// String renders the version for display, e.g. "9.0 (current)".
func (v VersionInfo) String() string {
	if v.Declared == "" {
		return fmt.Sprintf("undeclared (%s, inferred)", v.Schema)
	}
	return fmt.Sprintf("%s (%s)", v.Declared, v.Schema)
}

// Features lists capabilities tied to a schema generation.
type Features struct {
	HighPrecisionTiming   bool `json:"high_precision_timing" yaml:"high_precision_timing"`
	LoudnessNormalization bool `json:"loudness_normalization" yaml:"loudness_normalization"`
	AuthoringClient       bool `json:"authoring_client" yaml:"authoring_client"`
}

// Features reports the capabilities implied by the version.
func (v VersionInfo) Features() Features {
	if v.Declared == "" {
		return Features{
			HighPrecisionTiming: v.EditRate == HighPrecisionEditRate,
			AuthoringClient:     v.Schema == SchemaCurrent,
		}
	}
	return Features{
		HighPrecisionTiming:   v.Major >= 9,
		LoudnessNormalization: v.Major >= 9,
		AuthoringClient:       v.Major >= 4,
	}
}

// evidence is what the media catalog says about the schema.
type evidence struct {
	schema Schema
	// strong evidence overrides a declared version; weak evidence is only
	// used when no version is declared.
	strong bool
	reason string
}

func detectVersion(root *tree.Mapping) (VersionInfo, []Warning, error) {
	var (
		info     VersionInfo
		warnings []Warning
	)
	if rate, ok := root.Float("editRate"); ok {
		info.EditRate = int64(rate)
	}

	ev := structuralEvidence(root)

	declared, present, err := declaredVersion(root)
	if err != nil {
		return info, nil, err
	}
	if !present {
		if ev.schema == SchemaUnknown {
			return info, nil, &UnsupportedVersionError{Reason: "no version marker and no media catalog to infer one from"}
		}
		info.Schema = ev.schema
		info.Inferred = true
		return info, nil, nil
	}

	major, minor, err := parseVersion(declared)
	if err != nil {
		return info, nil, &UnsupportedVersionError{Declared: declared, Reason: err.Error()}
	}
	if major < minKnownMajor || major > maxKnownMajor {
		return info, nil, &UnsupportedVersionError{
			Declared: declared,
			Reason:   fmt.Sprintf("known versions are %d.x through %d.x", minKnownMajor, maxKnownMajor),
		}
	}
	info.Declared = declared
	info.Major = major
	info.Minor = minor
	info.Schema = SchemaCurrent
	if major <= lastLegacyMajor {
		info.Schema = SchemaLegacy
	}

	if ev.strong && ev.schema != info.Schema {
		warnings = append(warnings, Warning{
			Path: tree.Path{}.Key("version"),
			Message: fmt.Sprintf("declared version %s implies %s layout but %s; using %s tables",
				declared, info.Schema, ev.reason, ev.schema),
		})
		info.Schema = ev.schema
	}

	if info.EditRate == HighPrecisionEditRate && major < 9 {
		warnings = append(warnings, Warning{
			Path:    tree.Path{}.Key("editRate"),
			Message: fmt.Sprintf("edit rate %d is the version 9 high-precision rate but version %s is declared", info.EditRate, declared),
		})
	}
	return info, warnings, nil
}

func declaredVersion(root *tree.Mapping) (string, bool, error) {
	n, ok := root.Get("version")
	if !ok {
		return "", false, nil
	}
	s, ok := n.(*tree.Scalar)
	if !ok {
		return "", false, &UnsupportedVersionError{Reason: "version marker must be a string or number"}
	}
	switch s.Kind() {
	case tree.KindNull:
		return "", false, nil
	case tree.KindString:
		v, _ := s.StringValue()
		return strings.TrimSpace(v), true, nil
	case tree.KindNumber:
		if lit := s.Literal(); lit != "" {
			return lit, true, nil
		}
		f, _ := s.Float()
		return strconv.FormatFloat(f, 'f', -1, 64), true, nil
	default:
		return "", false, &UnsupportedVersionError{Reason: "version marker must be a string or number"}
	}
}

func parseVersion(v string) (int, int, error) {
	if v == "" {
		return 0, 0, fmt.Errorf("empty version marker")
	}
	parts := strings.SplitN(v, ".", 3)
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("version marker is not numeric")
	}
	minor := 0
	if len(parts) > 1 {
		if minor, err = strconv.Atoi(parts[1]); err != nil {
			return 0, 0, fmt.Errorf("version marker is not numeric")
		}
	}
	return major, minor, nil
}

func structuralEvidence(root *tree.Mapping) evidence {
	bin, ok := root.Get("sourceBin")
	if !ok {
		return evidence{}
	}
	switch v := bin.(type) {
	case *tree.Mapping:
		if _, ok := v.Sequence("sources"); ok {
			return evidence{schema: SchemaCurrent, strong: true, reason: "the media catalog holds a sources array"}
		}
		return evidence{schema: SchemaLegacy, reason: "the media catalog has no sources array"}
	case *tree.Sequence:
		for _, item := range v.Items() {
			entry, ok := item.(*tree.Mapping)
			if !ok {
				continue
			}
			if entry.Has("rect0") {
				return evidence{schema: SchemaLegacy, strong: true, reason: "media catalog entries store rect0..rect3 scalars"}
			}
		}
		return evidence{schema: SchemaLegacy, reason: "the media catalog is a flat list"}
	default:
		return evidence{}
	}
}
