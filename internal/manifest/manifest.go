// Package manifest reads the parts of Cargo.toml the sysroot build
// depends on: the release build profile (a cache-key input) and the
// xbuild settings table.
package manifest

import (
	"fmt"
	"hash"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"xbuild/internal/config"
)

// DefaultSysrootPath is where the sysroot lives when the manifest does
// not configure one, relative to the project root.
const DefaultSysrootPath = "target/sysroot"

// Manifest is the parsed Cargo.toml of the project being built.
type Manifest struct {
	tree config.Value
}

// FindRoot finds the project root by walking up from dir until a
// directory containing Cargo.toml is found.
func FindRoot(dir string) (string, error) {
	start := dir

	for {
		path := filepath.Join(dir, "Cargo.toml")

		if _, err := os.Stat(path); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}

		dir = parent
	}

	return "", fmt.Errorf("could not find Cargo.toml in %s or any parent directory", start)
}

// Load parses the Cargo.toml at root.
func Load(root string) (*Manifest, error) {
	path := filepath.Join(root, "Cargo.toml")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	tree, err := config.FromInterface(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return &Manifest{tree: tree}, nil
}

// Profile returns the profile.release subtree, or nil when the
// manifest has none.
func (m *Manifest) Profile() *Profile {
	v, ok := m.tree.Lookup("profile.release")
	if !ok {
		return nil
	}

	return &Profile{table: v}
}

// Settings returns the package.metadata.xbuild table, with defaults
// filled in for anything unset.
func (m *Manifest) Settings() (*Settings, error) {
	s := &Settings{SysrootPath: DefaultSysrootPath}

	v, ok := m.tree.Lookup("package.metadata.xbuild.sysroot_path")
	if ok {
		path, ok := v.AsString()
		if !ok {
			return nil, &config.FormatError{
				File: "Cargo.toml",
				Key:  "package.metadata.xbuild.sysroot_path",
				Want: "a string",
			}
		}

		s.SysrootPath = path
	}

	return s, nil
}

// Settings holds the xbuild-specific metadata from Cargo.toml.
type Settings struct {
	// SysrootPath is where the sysroot is placed, relative to the
	// project root
	SysrootPath string
}

// Profile is the release build profile from Cargo.toml.
type Profile struct {
	table config.Value
}

// Hash contributes the profile to a cache key. The lto key is dropped
// first: lto settings change how the final binary is linked, not the
// contents of the compiled sysroot libraries. A profile that is empty
// after the removal contributes nothing at all, so a profile that only
// ever set lto hashes the same as no profile section.
func (p *Profile) Hash(h hash.Hash) {
	v := p.table.WithoutKey("lto")
	if v.IsEmptyTable() {
		return
	}

	h.Write([]byte(v.String()))
}

// String renders the profile as it would appear in a manifest.
func (p *Profile) String() string {
	wrapped := config.TableValue(map[string]config.Value{
		"profile": config.TableValue(map[string]config.Value{
			"release": p.table,
		}),
	})

	return wrapped.String()
}
