package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Load reads the project configuration that governs builds started in
// dir, searching upward for a .cargo/config file. A project without one
// is not an error: Load returns (nil, nil).
func Load(dir string) (*Config, error) {
	path := FindProjectConfig(dir)
	if path == "" {
		return nil, nil
	}

	return LoadFile(path)
}

// LoadFile parses a specific .cargo/config file into a typed tree.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	tree, err := FromInterface(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	// path is <dir>/.cargo/config; the project root is <dir>
	return &Config{
		Dir:  filepath.Dir(filepath.Dir(path)),
		Path: path,
		Tree: tree,
	}, nil
}
