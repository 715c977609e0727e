// Package rustc probes the installed compiler for its version
// metadata, which supplies the host triple and the commit hash folded
// into sysroot cache keys.
package rustc

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// BinaryEnv overrides which compiler binary is probed.
const BinaryEnv = "RUSTC"

// VersionMeta is the parsed output of `rustc -vV`.
type VersionMeta struct {
	// ShortVersion is the first output line, e.g. "rustc 1.77.0 (aedd173a2 2024-03-17)"
	ShortVersion string

	// Release is the semver release, e.g. "1.77.0"
	Release string

	// CommitHash identifies the exact compiler build
	CommitHash string

	// Host is the triple the compiler itself runs on
	Host string
}

var execCommand = func(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).Output()
}

// Version runs the compiler with -vV and parses its metadata.
func Version() (*VersionMeta, error) {
	bin := os.Getenv(BinaryEnv)
	if bin == "" {
		bin = "rustc"
	}

	out, err := execCommand(bin, "-vV")
	if err != nil {
		return nil, fmt.Errorf("failed to run %s -vV: %w", bin, err)
	}

	meta, err := parse(string(out))
	if err != nil {
		return nil, fmt.Errorf("unexpected %s -vV output: %w", bin, err)
	}

	return meta, nil
}

func parse(out string) (*VersionMeta, error) {
	meta := &VersionMeta{}

	for i, line := range strings.Split(strings.TrimSpace(out), "\n") {
		line = strings.TrimSpace(line)

		if i == 0 {
			meta.ShortVersion = line
			continue
		}

		field, value, ok := strings.Cut(line, ": ")
		if !ok {
			continue
		}

		switch field {
		case "release":
			meta.Release = value
		case "commit-hash":
			meta.CommitHash = value
		case "host":
			meta.Host = value
		}
	}

	if meta.Host == "" {
		return nil, fmt.Errorf("missing host field")
	}

	if meta.Release == "" {
		return nil, fmt.Errorf("missing release field")
	}

	return meta, nil
}
