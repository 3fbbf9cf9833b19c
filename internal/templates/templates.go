// Package templates carries the embedded default template bundle.
//
// The bundle is the offline fallback: when the configured remote source
// cannot be reached (or fallback is forced via config), the embedded files
// seed the global template directory so init still works. The embedded set
// mirrors the layout of the published template repository.
package templates

import (
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/heikopanjas/vibe-check/internal/debug"
	"github.com/heikopanjas/vibe-check/internal/fsutil"
)

// DefaultSourceURL is the template repository used when no source override
// is configured.
const DefaultSourceURL = "https://github.com/heikopanjas/vibe-check/tree/develop/templates"

//go:embed defaults
var defaults embed.FS

// Bundle returns the embedded default bundle as a filesystem rooted at the
// bundle top level (templates.yml at the root).
func Bundle() fs.FS {
	sub, err := fs.Sub(defaults, "defaults")
	if err != nil {
		// The embed directive guarantees the directory exists.
		panic(err)
	}
	return sub
}

// WriteTo materializes the embedded bundle into templateDir, overwriting
// existing files.
func WriteTo(templateDir string) error {
	bundle := Bundle()
	return fs.WalkDir(bundle, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, err := fs.ReadFile(bundle, path)
		if err != nil {
			return fmt.Errorf("reading embedded %s: %w", path, err)
		}
		dest := filepath.Join(templateDir, filepath.FromSlash(path))
		if err := fsutil.WriteFile(dest, data); err != nil {
			return err
		}
		debug.Logf("templates: wrote embedded %s", path)
		return nil
	})
}
