package config

import (
	"os"
	"path/filepath"
)

// FindProjectConfig finds the project's .cargo/config file by walking
// up directories
func FindProjectConfig(dir string) string {
	for {
		for _, name := range []string{"config", "config.toml"} {
			path := filepath.Join(dir, ".cargo", name)

			if _, err := os.Stat(path); err == nil {
				return path
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}

		dir = parent
	}

	return ""
}
