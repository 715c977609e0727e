// Package flags holds the resolved compiler flag list for one build
// invocation and its two consumers: the cache key (which must ignore
// flag content that cannot affect the compiled sysroot) and the
// invocation environment (which must carry everything, plus the
// injected sysroot path).
package flags

import (
	"fmt"
	"hash"
	"os"
	"strings"
)

// AllowSysrootSpacesEnv overrides the sysroot-space constraint check.
const AllowSysrootSpacesEnv = "XBUILD_ALLOW_SYSROOT_SPACES"

// codegenMarker introduces a two-token codegen flag pair (-C <value>).
const codegenMarker = "-C"

// Rustflags is an ordered list of compiler flag tokens.
type Rustflags struct {
	flags []string
}

// New wraps a resolved flag list. The slice is not copied; callers
// hand over ownership.
func New(flags []string) *Rustflags {
	return &Rustflags{flags: flags}
}

// Tokens returns a copy of the ordered flag tokens.
func (r *Rustflags) Tokens() []string {
	out := make([]string, len(r.flags))
	copy(out, r.flags)

	return out
}

func (r *Rustflags) String() string {
	return strings.Join(r.flags, " ")
}

// Hash folds the flag tokens into h. A "-C" marker and its following
// value token are treated as a unit: when the value is a linker
// argument (link-arg= or link-args=) both tokens are skipped, because
// linker arguments carry machine-local paths that do not affect the
// compiled sysroot; any other pair is hashed whole. A trailing "-C"
// with no value is hashed alone. Every other token is hashed
// individually, in order.
func (r *Rustflags) Hash(h hash.Hash) {
	for i := 0; i < len(r.flags); i++ {
		flag := r.flags[i]

		if flag != codegenMarker || i+1 == len(r.flags) {
			writeToken(h, flag)
			continue
		}

		next := r.flags[i+1]
		if !isLinkerArg(next) {
			writeToken(h, flag)
			writeToken(h, next)
		}

		i++
	}
}

func isLinkerArg(value string) bool {
	return strings.HasPrefix(value, "link-arg=") || strings.HasPrefix(value, "link-args=")
}

// writeToken delimits each token with a NUL byte so that token
// boundaries stay unambiguous in the hash input
func writeToken(h hash.Hash, token string) {
	h.Write([]byte(token))
	h.Write([]byte{0})
}

// ForInvocation appends "--sysroot <path>" and joins all tokens into
// the single string handed to the driver via the environment. The
// driver splits that string on spaces, so a sysroot path containing a
// space would be mis-parsed; such paths are rejected unless the
// override environment variable is set.
func (r *Rustflags) ForInvocation(sysroot string) (string, error) {
	if _, ok := os.LookupEnv(AllowSysrootSpacesEnv); !ok && strings.Contains(sysroot, " ") {
		return "", fmt.Errorf("sysroot must not contain spaces\n"+
			"See https://github.com/rust-lang/cargo/issues/6139\n\n"+
			"The sysroot is `%s`.\n\n"+
			"To override this error, set the %s environment variable",
			sysroot, AllowSysrootSpacesEnv)
	}

	all := make([]string, 0, len(r.flags)+2)
	all = append(all, r.flags...)
	all = append(all, "--sysroot", sysroot)

	return strings.Join(all, " "), nil
}
