package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Holds the parsed .cargo/config tree for a project
type Config struct {
	// Dir is the directory that contains the .cargo directory
	Dir string

	// Path is the config file the tree was loaded from
	Path string

	// Tree is the parsed configuration
	Tree Value
}

// fileName names the config file in error messages. The finder accepts
// both .cargo/config and .cargo/config.toml, so the error must point
// at whichever one was actually loaded.
func (c *Config) fileName() string {
	if c.Path != "" {
		return c.Path
	}

	return ".cargo/config"
}

// FormatError reports a configuration key that exists but has the wrong
// shape. The key path is always included so the user can find it.
type FormatError struct {
	File string
	Key  string
	Want string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: %s must be %s", e.File, e.Key, e.Want)
}

// Target returns the build target configured under build.target, or ""
// when none is set. A target that names a custom target spec file
// (a .json path) is resolved to a canonical absolute path, so that
// invoking the build from different directories never produces
// different cache keys for the same spec file.
func (c *Config) Target() (string, error) {
	v, ok := c.Tree.Lookup("build.target")
	if !ok {
		return "", nil
	}

	target, ok := v.AsString()
	if !ok {
		return "", &FormatError{File: c.fileName(), Key: "build.target", Want: "a string"}
	}

	if !strings.HasSuffix(target, ".json") {
		return target, nil
	}

	return CanonicalTargetSpec(c.Dir, target)
}

// CanonicalTargetSpec resolves a target spec file path against dir into
// a canonical absolute path. The file must exist.
func CanonicalTargetSpec(dir, target string) (string, error) {
	path := target
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, target)
	}

	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", fmt.Errorf("target spec file %s does not exist: %w", path, err)
	}

	abs, err := filepath.Abs(resolved)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path for %s: %w", resolved, err)
	}

	return abs, nil
}
