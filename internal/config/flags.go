package config

import (
	"os"
	"strings"
)

// Flags resolves the flag list for a tool category (e.g. "rustflags"),
// layering sources by precedence:
//
//  1. The environment variable named after the uppercased category.
//     If set, its value is whitespace-tokenized and used verbatim;
//     everything else is ignored.
//  2. target.<triple>.<tool> in .cargo/config
//  3. build.<tool> in .cargo/config
//
// A missing key, or no config at all, resolves to an empty flag list.
// A key that exists but is not an array of strings is a FormatError
// naming the offending key.
func Flags(cfg *Config, target, tool string) ([]string, error) {
	if env, ok := os.LookupEnv(strings.ToUpper(tool)); ok {
		return strings.Fields(env), nil
	}

	if cfg == nil {
		return nil, nil
	}

	key := "target." + target + "." + tool
	v, ok := cfg.Tree.Lookup(key)
	if !ok {
		key = "build." + tool
		v, ok = cfg.Tree.Lookup(key)
	}

	if !ok {
		return nil, nil
	}

	flags, ok := v.AsStringArray()
	if !ok {
		return nil, &FormatError{File: cfg.fileName(), Key: key, Want: "an array of strings"}
	}

	return flags, nil
}
