package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Target(t *testing.T) {
	t.Run("absent is empty, not an error", func(t *testing.T) {
		cfg := configTree(t, map[string]any{})

		target, err := cfg.Target()
		require.NoError(t, err)
		assert.Empty(t, target)
	})

	t.Run("plain triple passes through", func(t *testing.T) {
		cfg := configTree(t, map[string]any{
			"build": map[string]any{"target": "thumbv7em-none-eabi"},
		})

		target, err := cfg.Target()
		require.NoError(t, err)
		assert.Equal(t, "thumbv7em-none-eabi", target)
	})

	t.Run("wrong shape is a format error", func(t *testing.T) {
		cfg := configTree(t, map[string]any{
			"build": map[string]any{"target": []any{"t"}},
		})

		_, err := cfg.Target()
		require.Error(t, err)

		var formatErr *FormatError
		require.ErrorAs(t, err, &formatErr)
		assert.Equal(t, "build.target", formatErr.Key)
	})

	t.Run("target spec file is canonicalized", func(t *testing.T) {
		cfg := configTree(t, map[string]any{
			"build": map[string]any{"target": "custom.json"},
		})

		specPath := filepath.Join(cfg.Dir, "custom.json")
		err := os.WriteFile(specPath, []byte(`{"arch": "arm"}`), 0o644)
		require.NoError(t, err)

		target, err := cfg.Target()
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(target))
		assert.Equal(t, "custom.json", filepath.Base(target))
	})

	t.Run("missing target spec file", func(t *testing.T) {
		cfg := configTree(t, map[string]any{
			"build": map[string]any{"target": "nonexistent.json"},
		})

		_, err := cfg.Target()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "nonexistent.json")
		assert.Contains(t, err.Error(), "does not exist")
	})
}

func TestCanonicalTargetSpec(t *testing.T) {
	tempDir := t.TempDir()
	specPath := filepath.Join(tempDir, "custom.json")
	err := os.WriteFile(specPath, []byte(`{}`), 0o644)
	require.NoError(t, err)

	// Relative path resolves against dir
	got, err := CanonicalTargetSpec(tempDir, "custom.json")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))

	// Absolute path resolves to the same result
	gotAbs, err := CanonicalTargetSpec(t.TempDir(), specPath)
	require.NoError(t, err)
	assert.Equal(t, got, gotAbs)

	// Symlinks collapse onto the canonical file
	linkPath := filepath.Join(tempDir, "link.json")
	err = os.Symlink(specPath, linkPath)
	require.NoError(t, err)

	gotLink, err := CanonicalTargetSpec(tempDir, "link.json")
	require.NoError(t, err)
	assert.Equal(t, got, gotLink)
}
