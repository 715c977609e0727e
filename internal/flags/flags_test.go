package flags

import (
	"encoding/hex"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/blake3"
)

func hashOf(t *testing.T, tokens []string) string {
	t.Helper()

	h := blake3.New(32, nil)
	New(tokens).Hash(h)

	return hex.EncodeToString(h.Sum(nil))
}

func TestRustflags_Hash(t *testing.T) {
	tests := []struct {
		name      string
		a, b      []string
		wantEqual bool
	}{
		{
			name:      "identical flags",
			a:         []string{"-C", "opt-level=2", "--cfg", "foo"},
			b:         []string{"-C", "opt-level=2", "--cfg", "foo"},
			wantEqual: true,
		},
		{
			name:      "link-arg value does not affect the hash",
			a:         []string{"-C", "link-arg=-Wl,-rpath,/home/a/lib"},
			b:         []string{"-C", "link-arg=-Wl,-rpath,/tmp/b/lib"},
			wantEqual: true,
		},
		{
			name:      "link-args pair equals no pair at all",
			a:         []string{"--cfg", "foo", "-C", "link-args=-L /tmp"},
			b:         []string{"--cfg", "foo"},
			wantEqual: true,
		},
		{
			name:      "non-linker codegen flag is hashed",
			a:         []string{"-C", "opt-level=2"},
			b:         []string{"-C", "opt-level=3"},
			wantEqual: false,
		},
		{
			name:      "plain flag change is caught",
			a:         []string{"--cfg", "foo", "-C", "link-arg=-L/a"},
			b:         []string{"--cfg", "bar", "-C", "link-arg=-L/a"},
			wantEqual: false,
		},
		{
			name:      "trailing marker still contributes",
			a:         []string{"--cfg", "foo", "-C"},
			b:         []string{"--cfg", "foo"},
			wantEqual: false,
		},
		{
			name:      "marker pairing is positional",
			a:         []string{"-C", "opt-level=2"},
			b:         []string{"opt-level=2", "-C"},
			wantEqual: false,
		},
		{
			name:      "token boundaries are unambiguous",
			a:         []string{"-Cab", "c"},
			b:         []string{"-Ca", "bc"},
			wantEqual: false,
		},
		{
			name:      "empty lists agree",
			a:         nil,
			b:         []string{},
			wantEqual: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ha := hashOf(t, tt.a)
			hb := hashOf(t, tt.b)

			if tt.wantEqual {
				assert.Equal(t, ha, hb)
			} else {
				assert.NotEqual(t, ha, hb)
			}
		})
	}
}

func TestRustflags_Hash_Deterministic(t *testing.T) {
	tokens := []string{"-C", "opt-level=2", "-C", "link-arg=-L/x", "--cfg", "foo"}

	assert.Equal(t, hashOf(t, tokens), hashOf(t, tokens))
}

func TestRustflags_ForInvocation(t *testing.T) {
	t.Setenv(AllowSysrootSpacesEnv, "")
	os.Unsetenv(AllowSysrootSpacesEnv)

	rf := New([]string{"-C", "opt-level=2"})

	got, err := rf.ForInvocation("/home/user/project/target/sysroot")
	require.NoError(t, err)
	assert.Equal(t, "-C opt-level=2 --sysroot /home/user/project/target/sysroot", got)

	// Empty flag list still gets the sysroot pair
	got, err = New(nil).ForInvocation("/sysroot")
	require.NoError(t, err)
	assert.Equal(t, "--sysroot /sysroot", got)
}

func TestRustflags_ForInvocation_SysrootWithSpace(t *testing.T) {
	rf := New([]string{"--cfg", "foo"})

	t.Run("rejected without the override", func(t *testing.T) {
		t.Setenv(AllowSysrootSpacesEnv, "")
		os.Unsetenv(AllowSysrootSpacesEnv)

		_, err := rf.ForInvocation("/home/some user/sysroot")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "/home/some user/sysroot")
		assert.Contains(t, err.Error(), AllowSysrootSpacesEnv)
	})

	t.Run("allowed with the override", func(t *testing.T) {
		t.Setenv(AllowSysrootSpacesEnv, "1")

		got, err := rf.ForInvocation("/home/some user/sysroot")
		require.NoError(t, err)
		assert.Equal(t, "--cfg foo --sysroot /home/some user/sysroot", got)
	})
}

func TestRustflags_Tokens(t *testing.T) {
	rf := New([]string{"-a", "-b"})

	tokens := rf.Tokens()
	tokens[0] = "mutated"

	// The returned slice is a copy
	assert.Equal(t, []string{"-a", "-b"}, rf.Tokens())
	assert.Equal(t, "-a -b", rf.String())
}
