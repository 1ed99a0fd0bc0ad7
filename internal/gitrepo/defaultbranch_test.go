package gitrepo

import (
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultBranchInfersSoleLocalBranch(t *testing.T) {
	dir := t.TempDir()
	setupGitRepo(t, dir)
	repo, err := Open(context.Background(), dir)
	require.NoError(t, err)

	branch, err := repo.DefaultBranch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "main", branch)
	assert.False(t, repo.DefaultBranchInvalid())
}

func TestDefaultBranchCachesAcrossCalls(t *testing.T) {
	dir := t.TempDir()
	setupGitRepo(t, dir)
	repo, err := Open(context.Background(), dir)
	require.NoError(t, err)

	first, err := repo.DefaultBranch(context.Background())
	require.NoError(t, err)

	// Mutate config after the first resolution; the cached value must win.
	cmd := exec.Command("git", "config", "worktrunk.default-branch", "something-else")
	cmd.Dir = dir
	require.NoError(t, cmd.Run())

	second, err := repo.DefaultBranch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDefaultBranchDiscardsInvalidPersistedValue(t *testing.T) {
	dir := t.TempDir()
	setupGitRepo(t, dir)

	cmd := exec.Command("git", "config", defaultBranchConfigKey, "does-not-exist")
	cmd.Dir = dir
	require.NoError(t, cmd.Run())

	repo, err := Open(context.Background(), dir)
	require.NoError(t, err)

	branch, err := repo.DefaultBranch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "main", branch)
	assert.True(t, repo.DefaultBranchInvalid())
}

func TestLocalBranchExists(t *testing.T) {
	dir := t.TempDir()
	setupGitRepo(t, dir)
	repo, err := Open(context.Background(), dir)
	require.NoError(t, err)

	assert.True(t, repo.localBranchExists(context.Background(), "main"))
	assert.False(t, repo.localBranchExists(context.Background(), "nonexistent"))
}
