package fileutil

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/flock"
)

func TestCopyFileVerified(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")

	content := []byte("verified copy content")
	if err := os.WriteFile(src, content, 0o640); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(src, 0o640); err != nil {
		t.Fatal(err)
	}

	if err := CopyFileVerified(src, dst); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(dst)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o640 {
		t.Fatalf("mode = %o, want 640", info.Mode().Perm())
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(content) {
		t.Fatalf("content mismatch: got %q, want %q", got, content)
	}
}

func TestCopyFileVerified_MissingSource(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "nonexistent")
	dst := filepath.Join(dir, "dst.bin")

	err := CopyFileVerified(src, dst)
	if err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestOutputName(t *testing.T) {
	tests := []struct {
		in, suffix, want string
	}{
		{"/work/demo.tscproj", ".scaled", "/work/demo.scaled.tscproj"},
		{"/work/demo.TSCPROJ", ".timescaled", "/work/demo.timescaled.TSCPROJ"},
		{"relative/notes.json", ".scaled", "relative/notes.json.scaled.tscproj"},
	}
	for _, tt := range tests {
		if got := OutputName(tt.in, tt.suffix); got != tt.want {
			t.Fatalf("OutputName(%q, %q) = %q, want %q", tt.in, tt.suffix, got, tt.want)
		}
	}
	if got := BackupPath("/work/demo.tscproj", ""); got != "/work/demo.tscproj.backup" {
		t.Fatalf("BackupPath default = %q", got)
	}
	if got := BackupPath("/work/demo.tscproj", ".bak"); got != "/work/demo.tscproj.bak" {
		t.Fatalf("BackupPath custom = %q", got)
	}
}

func TestWriteFileLocked(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "demo.tscproj")
	if err := os.WriteFile(path, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := WriteFileLocked(context.Background(), path, []byte("new"), 0o600); err != nil {
		t.Fatalf("WriteFileLocked: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "new" {
		t.Fatalf("content = %q", got)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("mode = %o", info.Mode().Perm())
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Fatalf("temporary file left behind: %s", e.Name())
		}
	}
}

func TestWriteFileLockedFollowsSymlink(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "real.tscproj")
	if err := os.WriteFile(target, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(dir, "link.tscproj")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	if err := WriteFileLocked(context.Background(), link, []byte("new"), 0o644); err != nil {
		t.Fatalf("WriteFileLocked: %v", err)
	}

	info, err := os.Lstat(link)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode()&os.ModeSymlink == 0 {
		t.Fatalf("link was replaced by a regular file (mode %v)", info.Mode())
	}
	got, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "new" {
		t.Fatalf("target content = %q, want %q", got, "new")
	}
}

func TestWriteFileLockedWaitsForHolder(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "busy.tscproj")

	holder := flock.New(path + LockSuffix)
	if err := holder.Lock(); err != nil {
		t.Fatalf("lock: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	err := WriteFileLocked(ctx, path, []byte("x"), 0o644)
	if !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Fatalf("expected no output while locked, stat err %v", statErr)
	}

	if err := holder.Unlock(); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if err := WriteFileLocked(context.Background(), path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write after unlock: %v", err)
	}
}
