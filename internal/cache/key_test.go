package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xbuild/internal/flags"
	"xbuild/internal/manifest"
)

func releaseProfile(t *testing.T, section string) *manifest.Profile {
	t.Helper()

	root := t.TempDir()
	content := "[package]\nname = \"demo\"\n" + section
	err := os.WriteFile(filepath.Join(root, "Cargo.toml"), []byte(content), 0o644)
	require.NoError(t, err)

	m, err := manifest.Load(root)
	require.NoError(t, err)

	return m.Profile()
}

func TestKey_Deterministic(t *testing.T) {
	rf := flags.New([]string{"-C", "opt-level=2"})
	profile := releaseProfile(t, "[profile.release]\nopt-level = 3\n")

	a := Key(rf, profile, "t1", "commit1")
	b := Key(rf, profile, "t1", "commit1")

	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestKey_Sensitivity(t *testing.T) {
	baseFlags := []string{"-C", "opt-level=2"}
	baseProfile := "[profile.release]\nopt-level = 3\n"

	base := Key(flags.New(baseFlags), releaseProfile(t, baseProfile), "t1", "commit1")

	tests := []struct {
		name      string
		flags     []string
		profile   string
		triple    string
		commit    string
		wantEqual bool
	}{
		{
			name:      "same inputs",
			flags:     baseFlags,
			profile:   baseProfile,
			triple:    "t1",
			commit:    "commit1",
			wantEqual: true,
		},
		{
			name:      "extra linker argument is ignored",
			flags:     []string{"-C", "opt-level=2", "-C", "link-arg=-L/tmp/build-1234"},
			profile:   baseProfile,
			triple:    "t1",
			commit:    "commit1",
			wantEqual: true,
		},
		{
			name:      "lto change is ignored",
			flags:     baseFlags,
			profile:   "[profile.release]\nopt-level = 3\nlto = true\n",
			triple:    "t1",
			commit:    "commit1",
			wantEqual: true,
		},
		{
			name:      "flag change invalidates",
			flags:     []string{"-C", "opt-level=3"},
			profile:   baseProfile,
			triple:    "t1",
			commit:    "commit1",
			wantEqual: false,
		},
		{
			name:      "profile change invalidates",
			flags:     baseFlags,
			profile:   "[profile.release]\nopt-level = 2\n",
			triple:    "t1",
			commit:    "commit1",
			wantEqual: false,
		},
		{
			name:      "triple change invalidates",
			flags:     baseFlags,
			profile:   baseProfile,
			triple:    "t2",
			commit:    "commit1",
			wantEqual: false,
		},
		{
			name:      "compiler change invalidates",
			flags:     baseFlags,
			profile:   baseProfile,
			triple:    "t1",
			commit:    "commit2",
			wantEqual: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Key(flags.New(tt.flags), releaseProfile(t, tt.profile), tt.triple, tt.commit)

			if tt.wantEqual {
				assert.Equal(t, base, got)
			} else {
				assert.NotEqual(t, base, got)
			}
		})
	}
}

func TestKey_NilProfile(t *testing.T) {
	rf := flags.New(nil)

	a := Key(rf, nil, "t1", "commit1")
	b := Key(rf, releaseProfile(t, "[profile.release]\nlto = true\n"), "t1", "commit1")

	// A profile emptied by the lto removal contributes nothing
	assert.Equal(t, a, b)
}
