package list

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worktrunk/worktrunk/internal/gitrepo"
	"github.com/worktrunk/worktrunk/internal/models"
)

func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
	return string(out)
}

// setupListFixture creates a repo on main with one commit, a second
// worktree on feature-x with one additional commit, and returns the
// repository handle rooted at main plus both worktree paths.
func setupListFixture(t *testing.T) (repo *gitrepo.Repository, mainPath, featurePath string) {
	t.Helper()
	mainPath = t.TempDir()
	runGit(t, mainPath, "init", "-b", "main")
	runGit(t, mainPath, "config", "user.email", "test@example.com")
	runGit(t, mainPath, "config", "user.name", "Test")
	runGit(t, mainPath, "config", "commit.gpgsign", "false")
	require.NoError(t, os.WriteFile(filepath.Join(mainPath, "README.md"), []byte("hi"), 0o644))
	runGit(t, mainPath, "add", ".")
	runGit(t, mainPath, "commit", "-m", "init")

	featurePath = filepath.Join(t.TempDir(), "feature-x")
	runGit(t, mainPath, "worktree", "add", "-b", "feature-x", featurePath, "main")
	require.NoError(t, os.WriteFile(filepath.Join(featurePath, "feature.txt"), []byte("new stuff"), 0o644))
	runGit(t, featurePath, "add", ".")
	runGit(t, featurePath, "commit", "-m", "add feature")

	r, err := gitrepo.Open(context.Background(), mainPath)
	require.NoError(t, err)
	return r, mainPath, featurePath
}

func TestCollectCoversMainAndFeatureRows(t *testing.T) {
	repo, mainPath, featurePath := setupListFixture(t)

	sources := []RowSource{
		{Kind: models.KindWorktree, Head: "main", Branch: "main", Path: mainPath, IsMain: true},
		{Kind: models.KindWorktree, Head: "feature-x", Branch: "feature-x", Path: featurePath},
	}

	updates := Collect(context.Background(), repo, sources, "main", Options{}, nil)

	items := make([]models.ListItem, len(sources))
	for i, src := range sources {
		items[i] = models.ListItem{Kind: src.Kind, Head: src.Head, Branch: src.Branch, IsMain: src.IsMain, Path: src.Path}
	}
	st := newRowConflictState(len(sources))

	seenKinds := make(map[int]map[UpdateKind]bool)
	for i := range sources {
		seenKinds[i] = make(map[UpdateKind]bool)
	}
	for u := range updates {
		seenKinds[u.Row][u.Kind] = true
		Apply(items, st, u)
	}

	assert.True(t, seenKinds[0][UpdateCommitDetails])
	assert.True(t, seenKinds[0][UpdateBranchDiff], "main row still gets a (skipped) branch-diff update")
	assert.True(t, seenKinds[0][UpdateWorkingTreeDiff])
	assert.True(t, seenKinds[0][UpdateWorktreeState])

	assert.True(t, seenKinds[1][UpdateCommitDetails])
	assert.True(t, seenKinds[1][UpdateAheadBehind])
	assert.True(t, seenKinds[1][UpdateBranchDiff])
	assert.True(t, seenKinds[1][UpdateWorkingTreeDiff])
	assert.True(t, seenKinds[1][UpdateWorktreeState])
	assert.True(t, seenKinds[1][UpdateIntegration])

	require.True(t, items[1].Integration.Loaded)
	assert.False(t, items[1].Integration.Value.IsAncestor, "feature-x has a commit main lacks, so it isn't an ancestor of main")

	require.True(t, items[1].MainAheadBehind.Loaded)
	assert.Equal(t, 1, items[1].MainAheadBehind.Value.Ahead)
	assert.Equal(t, 0, items[1].MainAheadBehind.Value.Behind)

	require.True(t, items[0].BranchDiff.Loaded)
	assert.Nil(t, items[0].BranchDiff.Value)
	require.True(t, items[1].BranchDiff.Loaded)
	require.NotNil(t, items[1].BranchDiff.Value)
	assert.Equal(t, 1, items[1].BranchDiff.Value.Added)
}

func TestApplyIsIdempotentRegardlessOfOrder(t *testing.T) {
	items := []models.ListItem{{Kind: models.KindWorktree, Head: "abc", Branch: "feature-x"}}
	st := newRowConflictState(1)

	u1 := CellUpdate{Row: 0, Kind: UpdateAheadBehind, AheadBehind: models.AheadBehind{Ahead: 2, Behind: 1}}
	u2 := CellUpdate{Row: 0, Kind: UpdateMergeTreeConflicts, HasMergeTreeConflicts: true}

	Apply(items, st, u1)
	ss := Apply(items, st, u2)
	assert.Equal(t, models.BranchStateWouldConflict, ss.Branch)

	// Re-applying u1 after u2 should converge to the same status.
	ss2 := Apply(items, st, u1)
	assert.Equal(t, ss, ss2)
}

func TestCollectSkipsCIWhenNotRequested(t *testing.T) {
	repo, mainPath, _ := setupListFixture(t)
	sources := []RowSource{{Kind: models.KindWorktree, Head: "main", Branch: "main", Path: mainPath, IsMain: true}}

	updates := Collect(context.Background(), repo, sources, "main", Options{FetchCI: false}, nil)
	for u := range updates {
		assert.NotEqual(t, UpdateCIStatus, u.Kind)
	}
}
