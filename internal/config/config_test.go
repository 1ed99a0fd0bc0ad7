package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValues(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "switched", cfg.SortMode)
	assert.Equal(t, "tofu", cfg.TrustMode)
	assert.Equal(t, "rebase", cfg.MergeMethod)
	assert.NotNil(t, cfg.Approved)
}

func TestLoadUserConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadUserConfig(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.NoError(t, err)
	assert.Equal(t, "switched", cfg.SortMode)
}

func TestLoadUserConfigParsesTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	src := `
sort_mode = "path"
trust_mode = "always"

[hooks]
post_create = "npm install"
`
	require.NoError(t, os.WriteFile(path, []byte(src), 0o600))

	cfg, err := LoadUserConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "path", cfg.SortMode)
	assert.Equal(t, "always", cfg.TrustMode)
	assert.Len(t, cfg.Hooks.PostCreate.Entries, 1)
}

func TestSaveUserConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "config.toml")

	cfg := DefaultConfig()
	cfg.SortMode = "active"
	require.NoError(t, SaveUserConfig(path, cfg))

	reloaded, err := LoadUserConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "active", reloaded.SortMode)
}

func TestLoadProjectConfigMissingFile(t *testing.T) {
	cfg, err := LoadProjectConfig(t.TempDir())
	require.NoError(t, err)
	assert.True(t, cfg.Hooks.PreMerge.IsEmpty())
}

func TestLoadProjectConfigParsesTOML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".config"), 0o750))
	src := `
[hooks]
pre_merge = ["go test ./..."]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".config", "wt.toml"), []byte(src), 0o600))

	cfg, err := LoadProjectConfig(dir)
	require.NoError(t, err)
	require.Len(t, cfg.Hooks.PreMerge.Entries, 1)
	assert.Equal(t, "go test ./...", cfg.Hooks.PreMerge.Entries[0].Command)
}

func TestIsPathWithin(t *testing.T) {
	assert.True(t, isPathWithin("/a/b", "/a/b/c"))
	assert.True(t, isPathWithin("/a/b", "/a/b"))
	assert.False(t, isPathWithin("/a/b", "/a/c"))
	assert.False(t, isPathWithin("/a/b", "/a/b/../../etc/passwd"))
}

func TestExpandPathExpandsHomeAndEnv(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandPath("~/foo")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "foo"), got)
}
