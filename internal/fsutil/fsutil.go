// Package fsutil provides the filesystem primitives shared by the install,
// remove, and download paths: copy with parent creation, atomic writes, and
// bounded cleanup of emptied directories.
package fsutil

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// JoinLocal joins a slash-separated relative path under root. Absolute paths
// and paths that climb out of root are rejected, so manifest-supplied names
// can never address files outside the template directory.
func JoinLocal(root, rel string) (string, error) {
	clean := filepath.FromSlash(path.Clean(rel))
	if !filepath.IsLocal(clean) {
		return "", fmt.Errorf("path %s escapes %s", rel, root)
	}
	return filepath.Join(root, clean), nil
}

// WriteFile writes data to path, creating parent directories as needed.
// The write is atomic: content goes to a temp file in the same directory
// which is then renamed over the target, so readers never observe a
// half-written file.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	// Temp file in the same directory guarantees same filesystem for rename.
	tmp, err := os.CreateTemp(dir, ".vibe-check-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming into place: %w", err)
	}

	success = true
	return nil
}

// CopyFile copies source to target, creating target's parent directories.
func CopyFile(source, target string) error {
	in, err := os.Open(source) // #nosec G304 - paths come from the manifest
	if err != nil {
		return fmt.Errorf("opening %s: %w", source, err)
	}
	defer in.Close()

	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("reading %s: %w", source, err)
	}

	return WriteFile(target, data)
}

// CopyDir recursively copies all files and directories from src to dst,
// creating dst if needed and preserving the directory structure.
func CopyDir(src, dst string) error {
	if err := os.MkdirAll(dst, 0o750); err != nil {
		return fmt.Errorf("creating directory %s: %w", dst, err)
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return fmt.Errorf("reading directory %s: %w", src, err)
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		if entry.IsDir() {
			if err := CopyDir(srcPath, dstPath); err != nil {
				return err
			}
		} else {
			if err := CopyFile(srcPath, dstPath); err != nil {
				return err
			}
		}
	}

	return nil
}

// DirIsEmpty reports whether dir exists and contains no entries.
func DirIsEmpty(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	return len(entries) == 0
}

// RemoveFileAndCleanParents removes path, then walks its parent directories
// upward removing each one that is left empty. The walk stops at root, which
// is never removed and never crossed.
func RemoveFileAndCleanParents(path, root string) error {
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("removing %s: %w", path, err)
	}

	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return nil
	}

	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil
	}

	for dir != rootAbs && within(rootAbs, dir) {
		if !DirIsEmpty(dir) {
			break
		}
		if err := os.Remove(dir); err != nil {
			break
		}
		dir = filepath.Dir(dir)
	}

	return nil
}

// within reports whether path is strictly inside root.
func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
