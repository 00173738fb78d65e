// Package fileutil holds the file operations behind project writes: verified
// backups, output naming, and atomic writes serialized by an advisory lock.
package fileutil

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

// ProjectExt is the extension of project files.
const ProjectExt = ".tscproj"

// LockSuffix is appended to a path to name its lock file.
const LockSuffix = ".lock"

// ErrLocked is returned when another process holds the write lock past the
// caller's deadline.
var ErrLocked = errors.New("file is locked by another process")

const lockRetryDelay = 50 * time.Millisecond

// CopyFileVerified streams src to dst with SHA256 + size integrity verification,
// keeping the permission bits of src. Removes dst on mismatch.
func CopyFileVerified(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	srcSize := srcInfo.Size()

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return err
	}
	defer func() {
		_ = out.Close()
	}()

	srcHasher := sha256.New()
	dstHasher := sha256.New()
	tee := io.TeeReader(in, srcHasher)
	multi := io.MultiWriter(out, dstHasher)

	written, err := io.Copy(multi, tee)
	if err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	if written != srcSize {
		_ = os.Remove(dst)
		return fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcSize, written)
	}

	if !bytes.Equal(srcHasher.Sum(nil), dstHasher.Sum(nil)) {
		_ = os.Remove(dst)
		return fmt.Errorf("copy hash mismatch: file corrupted during copy")
	}

	return nil
}

// BackupPath returns the backup location for path, e.g. "a.tscproj.backup".
func BackupPath(path, suffix string) string {
	if suffix == "" {
		suffix = ".backup"
	}
	return path + suffix
}

// OutputName derives a sibling output path by inserting suffix before the
// project extension: "demo.tscproj" with ".scaled" gives "demo.scaled.tscproj".
func OutputName(input, suffix string) string {
	dir, base := filepath.Split(input)
	ext := filepath.Ext(base)
	if !strings.EqualFold(ext, ProjectExt) {
		return filepath.Join(dir, base+suffix+ProjectExt)
	}
	return filepath.Join(dir, strings.TrimSuffix(base, ext)+suffix+ext)
}

// WriteFileLocked replaces path with data. The write goes to a temporary file
// in the same directory that is renamed over path while an advisory lock on
// path+LockSuffix is held, so concurrent writers never interleave. A symlinked
// path is followed so the link survives and its target receives the data.
func WriteFileLocked(ctx context.Context, path string, data []byte, mode os.FileMode) error {
	path, err := resolveTarget(path)
	if err != nil {
		return err
	}
	lock := flock.New(path + LockSuffix)
	ok, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%w: %s: %w", ErrLocked, path, ctxErr)
		}
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrLocked, path)
	}
	// The lock file stays behind; removing it would let a waiter and a new
	// writer lock different inodes.
	defer func() { _ = lock.Unlock() }()

	return writeAtomic(path, data, mode)
}

// resolveTarget returns the file a write to path should replace. Paths that do
// not exist yet are returned unchanged.
func resolveTarget(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err == nil {
		return resolved, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return path, nil
	}
	return "", fmt.Errorf("resolve %s: %w", path, err)
}

func writeAtomic(path string, data []byte, mode os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		cleanup()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}
