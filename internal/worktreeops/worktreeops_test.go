package worktreeops

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worktrunk/worktrunk/internal/config"
	"github.com/worktrunk/worktrunk/internal/gitrepo"
	"github.com/worktrunk/worktrunk/internal/hooks"
	"github.com/worktrunk/worktrunk/internal/models"
	"github.com/worktrunk/worktrunk/internal/output"
	"github.com/worktrunk/worktrunk/internal/template"
)

func TestSwitchEmitsCDAndRecordsHistory(t *testing.T) {
	dir := t.TempDir()
	setupGitRepo(t, dir)
	repo, err := gitrepo.Open(context.Background(), dir)
	require.NoError(t, err)

	var stderr, directive bytes.Buffer
	out := output.NewDirective(nil, &stderr, &directive)

	target := &models.WorktreeDescriptor{Path: "/repos/wt/feature-x", Branch: "feature-x"}
	require.NoError(t, Switch(context.Background(), repo, target, out))
	assert.Contains(t, directive.String(), "CD\x00/repos/wt/feature-x\x00")

	history, err := config.History(dir)
	require.NoError(t, err)
	assert.Contains(t, history, "main")
}

func TestCreateWorktreeAddsAndRunsHooks(t *testing.T) {
	dir := t.TempDir()
	setupGitRepo(t, dir)
	repo, err := gitrepo.Open(context.Background(), dir)
	require.NoError(t, err)

	worktreeDir := filepath.Join(t.TempDir(), "worktrees")
	var stderr bytes.Buffer
	out := output.NewInteractive(nil, &stderr, false)

	opts := CreateOptions{
		Branch:      "feature-x",
		Base:        "main",
		WorktreeDir: worktreeDir,
	}
	d := hooks.Dispatcher{Repo: repo}
	err = CreateWorktree(context.Background(), repo, opts, d, template.Variables{}, out)
	require.NoError(t, err)

	expectedPath := filepath.Join(worktreeDir, "feature-x")
	worktrees, err := repo.ListWorktrees(context.Background())
	require.NoError(t, err)
	found := false
	for _, wt := range worktrees {
		if wt.Branch == "feature-x" {
			found = true
			assert.Equal(t, expectedPath, wt.Path)
		}
	}
	assert.True(t, found, "expected worktree for feature-x to exist")
}

func TestCreateWorktreeFailsWhenPathOccupied(t *testing.T) {
	dir := t.TempDir()
	setupGitRepo(t, dir)
	repo, err := gitrepo.Open(context.Background(), dir)
	require.NoError(t, err)

	worktreeDir := filepath.Join(t.TempDir(), "worktrees")
	expectedPath := filepath.Join(worktreeDir, "feature-x")
	require.NoError(t, os.MkdirAll(expectedPath, 0o755))

	var stderr bytes.Buffer
	out := output.NewInteractive(nil, &stderr, false)
	opts := CreateOptions{Branch: "feature-x", Base: "main", WorktreeDir: worktreeDir}
	d := hooks.Dispatcher{Repo: repo}
	err = CreateWorktree(context.Background(), repo, opts, d, template.Variables{}, out)
	assert.Error(t, err)
}

func TestRemoveWorktreeRefusesMainWorktree(t *testing.T) {
	dir := t.TempDir()
	setupGitRepo(t, dir)
	repo, err := gitrepo.Open(context.Background(), dir)
	require.NoError(t, err)

	var stderr bytes.Buffer
	out := output.NewInteractive(nil, &stderr, false)
	opts := RemoveOptions{
		Target:        &models.WorktreeDescriptor{Path: dir, Branch: "main"},
		DefaultBranch: "main",
	}
	d := hooks.Dispatcher{Repo: repo}
	err = RemoveWorktree(context.Background(), repo, opts, d, template.Variables{}, out)
	assert.Error(t, err)
}

func TestRemoveWorktreeDeletesCleanMergedWorktree(t *testing.T) {
	dir := t.TempDir()
	setupGitRepo(t, dir)
	repo, err := gitrepo.Open(context.Background(), dir)
	require.NoError(t, err)

	worktreePath := filepath.Join(t.TempDir(), "feature-x")
	require.NoError(t, repo.AddWorktree(context.Background(), "feature-x", worktreePath, "main"))

	var stderr bytes.Buffer
	out := output.NewInteractive(nil, &stderr, false)
	opts := RemoveOptions{
		Target:        &models.WorktreeDescriptor{Path: worktreePath, Branch: "feature-x"},
		DefaultBranch: "main",
		Policy:        DeleteIfMerged,
	}
	d := hooks.Dispatcher{Repo: repo}
	vars := template.Variables{PrimaryWorktreePath: dir}
	require.NoError(t, RemoveWorktree(context.Background(), repo, opts, d, vars, out))

	worktrees, err := repo.ListWorktrees(context.Background())
	require.NoError(t, err)
	for _, wt := range worktrees {
		assert.NotEqual(t, worktreePath, wt.Path)
	}
}
