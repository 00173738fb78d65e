package summary

import (
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"tscproj/internal/project"
)

// Title derives a display title from a project path. Bundle files take the
// name of their .cmproj directory.
func Title(path string) string {
	if path == "" {
		return "Untitled Project"
	}
	base := filepath.Base(path)
	if base == project.BundleProjectFile {
		base = filepath.Base(filepath.Dir(path))
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	cleaned := strings.Builder{}
	prevSpace := false
	for _, r := range base {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			cleaned.WriteRune(r)
			prevSpace = false
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.':
			if !prevSpace {
				cleaned.WriteRune(' ')
				prevSpace = true
			}
		}
	}
	title := strings.TrimSpace(cleaned.String())
	if title == "" {
		title = "Untitled Project"
	}
	return cases.Title(language.Und).String(title)
}
