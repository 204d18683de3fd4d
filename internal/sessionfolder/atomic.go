package sessionfolder

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bnomei/nereid/internal/config"
)

// PathViolationError reports a session-relative path that escapes the
// session root or names a symlink where a regular file/dir is required.
type PathViolationError struct {
	Path   string
	Reason string
}

func (e *PathViolationError) Error() string {
	return fmt.Sprintf("path %q: %s", e.Path, e.Reason)
}

// validateRelativePath rejects the empty path, absolute paths, and `..`
// segments (empty segments inside a path are not rejected), per spec.md §4.8's "all paths are validated to be relative and
// contain no .. or root components".
func validateRelativePath(rel string) error {
	if rel == "" {
		return &PathViolationError{Path: rel, Reason: "must not be empty"}
	}
	if filepath.IsAbs(rel) {
		return &PathViolationError{Path: rel, Reason: "must be relative"}
	}
	for _, seg := range strings.Split(filepath.ToSlash(rel), "/") {
		if seg == ".." {
			return &PathViolationError{Path: rel, Reason: "must not contain .."}
		}
	}
	return nil
}

// createDirAllSafe creates dir and its parents, refusing to traverse or
// replace a symlink anywhere along the path.
func createDirAllSafe(dir string) error {
	if err := refuseSymlink(dir); err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}

func refuseSymlink(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return &PathViolationError{Path: path, Reason: "refusing to write through a symlink"}
	}
	return nil
}

// writeAtomic writes data to destination via a temp-file-then-rename
// sequence: create `<dir>/.nereid.tmp.<basename>.<nanos>` with O_EXCL,
// optionally fsync it (Durable mode), rename over destination, and
// optionally fsync the parent directory on Unix (Durable mode). Refuses to
// overwrite an existing symlink at destination.
func writeAtomic(destination string, data []byte, durability config.Durability) error {
	dir := filepath.Dir(destination)
	if err := createDirAllSafe(dir); err != nil {
		return fmt.Errorf("create parent dir for %s: %w", destination, err)
	}
	if err := refuseSymlink(destination); err != nil {
		return err
	}

	tmpPath := filepath.Join(dir, fmt.Sprintf(".nereid.tmp.%s.%d", filepath.Base(destination), time.Now().UnixNano()))
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create temp file %s: %w", tmpPath, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp file %s: %w", tmpPath, err)
	}
	if durability == config.Durable {
		if err := f.Sync(); err != nil {
			f.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("fsync temp file %s: %w", tmpPath, err)
		}
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file %s: %w", tmpPath, err)
	}

	if err := renameOverwrite(tmpPath, destination); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename %s to %s: %w", tmpPath, destination, err)
	}

	if durability == config.Durable {
		syncDirBestEffort(dir)
	}
	return nil
}

func renameOverwrite(src, dst string) error {
	return os.Rename(src, dst)
}

// syncDirBestEffort fsyncs dir on platforms that support fsyncing a
// directory handle; failures are ignored, matching spec.md §4.8's "optional
// fsync parent directory (Unix, durable mode)".
func syncDirBestEffort(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	defer d.Close()
	_ = d.Sync()
}
