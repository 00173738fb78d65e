package project

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"tscproj/internal/numsafe"
	"tscproj/internal/tree"
)

// BundleProjectFile is the project file inside a .cmproj bundle directory.
const BundleProjectFile = "project.tscproj"

// Document is a parsed project. A Document is owned by one pipeline stage at a
// time and is not safe for concurrent use.
type Document struct {
	Root     *tree.Mapping
	Version  VersionInfo
	Warnings []Warning
}

// Clone returns a deep copy of d.
func (d *Document) Clone() *Document {
	cp := &Document{
		Root:    tree.CloneMapping(d.Root),
		Version: d.Version,
	}
	cp.Warnings = append([]Warning(nil), d.Warnings...)
	return cp
}

// Load parses project text and detects its schema version.
func Load(data []byte) (*Document, error) {
	node, err := tree.Decode(data)
	if err != nil {
		var se *tree.SyntaxError
		if errors.As(err, &se) {
			return nil, &ParseError{Offset: se.Offset, Err: errors.New(se.Msg)}
		}
		return nil, &ParseError{Err: err}
	}
	root, ok := node.(*tree.Mapping)
	if !ok {
		return nil, &MalformedDocumentError{Path: tree.Path{}, Reason: "top-level value must be an object"}
	}
	info, warnings, err := detectVersion(root)
	if err != nil {
		return nil, err
	}
	return &Document{Root: root, Version: info, Warnings: warnings}, nil
}

// ResolvePath maps a bundle directory to the project file it contains.
// Other paths are returned unchanged.
func ResolvePath(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return filepath.Join(path, BundleProjectFile), nil
	}
	return path, nil
}

// LoadFile reads and loads the project at path. A .cmproj bundle directory
// resolves to the project file inside it.
func LoadFile(path string) (*Document, error) {
	resolved, err := ResolvePath(path)
	if err != nil {
		return nil, fmt.Errorf("open project: %w", err)
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, fmt.Errorf("read project: %w", err)
	}
	doc, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", resolved, err)
	}
	return doc, nil
}

// SaveOptions control serialization.
type SaveOptions struct {
	// Indent per nesting level. Defaults to two spaces; use Compact for none.
	Indent  string
	Compact bool
}

// SaveReport describes what the numeric-safety pass changed.
type SaveReport struct {
	Replaced []tree.Path
}

// Save serializes d. Non-finite numbers are replaced with 0.0 in d before
// encoding.
func Save(d *Document, opts SaveOptions) ([]byte, SaveReport, error) {
	if d == nil || d.Root == nil {
		return nil, SaveReport{}, errors.New("save project: empty document")
	}
	report := SaveReport{Replaced: numsafe.Sanitize(d.Root)}
	indent := opts.Indent
	if indent == "" && !opts.Compact {
		indent = "  "
	}
	if opts.Compact {
		indent = ""
	}
	data, err := tree.Encode(d.Root, tree.EncodeOptions{Indent: indent})
	if err != nil {
		return nil, report, fmt.Errorf("save project: %w", err)
	}
	return data, report, nil
}

// RoundCanvas rounds the root width and height to whole pixels. The editor
// expects integral canvas dimensions after a spatial rescale.
func RoundCanvas(d *Document) {
	for _, key := range []string{"width", "height"} {
		s, ok := d.Root.Scalar(key)
		if !ok {
			continue
		}
		f, ok := s.Float()
		if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		rounded := math.Round(f)
		if s.Literal() != "" && f == rounded && !strings.ContainsAny(s.Literal(), ".eE") {
			continue
		}
		_ = s.SetLiteral(strconv.FormatFloat(rounded, 'f', 0, 64))
	}
}
