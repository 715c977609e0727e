package cache

import (
	"encoding/hex"

	"lukechampine.com/blake3"

	"xbuild/internal/flags"
	"xbuild/internal/manifest"
)

// Key computes the sysroot cache key for one target triple. Inputs are
// the resolved compiler flags (minus linker arguments, which the flag
// hash already excludes), the release profile (minus lto), the
// canonical triple, and the compiler commit hash. The key is stable
// across invocation directories and machines as long as none of those
// inputs change.
func Key(rf *flags.Rustflags, profile *manifest.Profile, triple, rustcCommit string) string {
	h := blake3.New(32, nil)

	rf.Hash(h)

	if profile != nil {
		profile.Hash(h)
	}

	h.Write([]byte(triple))
	h.Write([]byte{0})
	h.Write([]byte(rustcCommit))

	return hex.EncodeToString(h.Sum(nil))
}
