package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// ScenarioProject is the smallest document exercising both scaling kinds.
const ScenarioProject = `{"version":"9.0","timeline":{"scenes":[{"medias":[{"start":2.0,"duration":4.0,"rect":[10,20,100,50]}]}]},"sourceBin":{"sources":[]}}`

// WriteProject writes content to dir/name, creating parent directories, and
// returns the full path.
func WriteProject(t testing.TB, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// ReadFile returns the content of path or fails the test.
func ReadFile(t testing.TB, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}
