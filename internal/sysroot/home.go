// Package sysroot resolves the on-disk location of the cross-compiled
// sysroot and hands out the per-triple advisory locks that keep
// concurrent builds from corrupting it.
package sysroot

import (
	"os"
	"path/filepath"

	"xbuild/internal/manifest"
)

// PathEnv overrides the sysroot location entirely.
const PathEnv = "XBUILD_SYSROOT_PATH"

// Home is the root of the cross-compiled sysroot. Precompiled
// artifacts for each target live under <root>/lib/rustlib/<triple>/.
type Home struct {
	path string
}

// Resolve computes the sysroot location for a project rooted at root.
// The environment override wins; otherwise the configured relative
// path is joined onto the project root. Nil settings fall back to the
// default sysroot path.
func Resolve(root string, settings *manifest.Settings) *Home {
	if path := os.Getenv(PathEnv); path != "" {
		return &Home{path: path}
	}

	sysrootPath := manifest.DefaultSysrootPath
	if settings != nil {
		sysrootPath = settings.SysrootPath
	}

	return &Home{path: filepath.Join(root, sysrootPath)}
}

// Path returns the sysroot root directory.
func (h *Home) Path() string {
	return h.path
}

// triplePath returns the directory holding one target's artifacts.
func (h *Home) triplePath(triple string) string {
	return filepath.Join(h.path, "lib", "rustlib", triple)
}
