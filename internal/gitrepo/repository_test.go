package gitrepo

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupGitRepo creates a minimal git repository for testing, matching the
// fixture style internal/git/service_test.go used before this package
// replaced it.
func setupGitRepo(t *testing.T, dir string) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		out, err := cmd.CombinedOutput()
		require.NoErrorf(t, err, "git %v: %s", args, out)
	}

	run("init", "-b", "main")
	run("config", "user.email", "test@example.com")
	run("config", "user.name", "Test User")
	run("config", "commit.gpgsign", "false")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# Test\n"), 0o600))
	run("add", ".")
	run("commit", "-m", "initial commit")
}

func TestLimitForIsClamped(t *testing.T) {
	n := limitFor()
	assert.GreaterOrEqual(t, n, 4)
	assert.LessOrEqual(t, n, 32)
	expected := runtime.NumCPU() * 2
	if expected < 4 {
		expected = 4
	}
	if expected > 32 {
		expected = 32
	}
	assert.Equal(t, expected, n)
}

func TestOpenResolvesToplevel(t *testing.T) {
	dir := t.TempDir()
	setupGitRepo(t, dir)

	repo, err := Open(context.Background(), dir)
	require.NoError(t, err)
	assert.NotEmpty(t, repo.Dir())
	assert.NotEmpty(t, repo.CommonDir())
}

func TestOpenFailsOutsideRepo(t *testing.T) {
	dir := t.TempDir()
	_, err := Open(context.Background(), dir)
	assert.Error(t, err)
}

func TestCurrentBranchOnFreshRepo(t *testing.T) {
	dir := t.TempDir()
	setupGitRepo(t, dir)
	repo, err := Open(context.Background(), dir)
	require.NoError(t, err)

	branch, err := repo.CurrentBranch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "main", branch)
}

func TestHasUncommittedChangesDetectsUntracked(t *testing.T) {
	dir := t.TempDir()
	setupGitRepo(t, dir)
	repo, err := Open(context.Background(), dir)
	require.NoError(t, err)

	clean, err := repo.HasUncommittedChanges(context.Background())
	require.NoError(t, err)
	assert.False(t, clean)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "untracked.txt"), []byte("x"), 0o600))

	dirty, err := repo.HasUncommittedChanges(context.Background())
	require.NoError(t, err)
	assert.True(t, dirty)
}

func TestCloneSharesCache(t *testing.T) {
	dir := t.TempDir()
	setupGitRepo(t, dir)
	repo, err := Open(context.Background(), dir)
	require.NoError(t, err)

	clone := repo.Clone(dir)
	assert.Same(t, repo.cache, clone.cache)
	assert.Equal(t, repo.CommonDir(), clone.CommonDir())
}
