package gitrepo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/worktrunk/worktrunk/internal/models"
)

func TestParseWorktreePorcelainBasic(t *testing.T) {
	raw := "worktree /repo\x00HEAD abc123\x00branch refs/heads/main\x00" +
		"worktree /repo-feature\x00HEAD def456\x00branch refs/heads/feature\x00"

	got := parseWorktreePorcelain(raw)

	assert.Len(t, got, 2)
	assert.Equal(t, models.WorktreeDescriptor{Path: "/repo", HeadSHA: "abc123", Branch: "main"}, got[0])
	assert.Equal(t, models.WorktreeDescriptor{Path: "/repo-feature", HeadSHA: "def456", Branch: "feature"}, got[1])
}

func TestParseWorktreePorcelainDetachedBare(t *testing.T) {
	raw := "worktree /bare\x00bare\x00" +
		"worktree /detached\x00HEAD 111111\x00detached\x00"

	got := parseWorktreePorcelain(raw)

	assert.Len(t, got, 2)
	assert.True(t, got[0].Bare)
	assert.True(t, got[1].Detached)
	assert.Equal(t, "111111", got[1].HeadSHA)
}

func TestParseWorktreePorcelainLockedPrunable(t *testing.T) {
	raw := "worktree /locked\x00HEAD abc\x00branch refs/heads/wip\x00locked reason text\x00" +
		"worktree /prunable\x00HEAD def\x00branch refs/heads/old\x00prunable gone from disk\x00"

	got := parseWorktreePorcelain(raw)

	assert.Len(t, got, 2)
	assert.True(t, got[0].IsLocked)
	assert.Equal(t, "reason text", got[0].LockedReason)
	assert.True(t, got[1].IsPrunable)
	assert.Equal(t, "gone from disk", got[1].PrunableReason)
}

func TestParseWorktreePorcelainEmpty(t *testing.T) {
	assert.Empty(t, parseWorktreePorcelain(""))
}

func TestMainWorktreeMatchesDefaultBranch(t *testing.T) {
	worktrees := []models.WorktreeDescriptor{
		{Path: "/a", Branch: "feature"},
		{Path: "/b", Branch: "main"},
	}
	got := MainWorktree(worktrees, "main")
	assert.Equal(t, "/b", got.Path)
}

func TestMainWorktreeFallsBackToFirst(t *testing.T) {
	worktrees := []models.WorktreeDescriptor{
		{Path: "/a", Branch: "feature"},
	}
	got := MainWorktree(worktrees, "main")
	assert.Equal(t, "/a", got.Path)
}

func TestMainWorktreeEmpty(t *testing.T) {
	assert.Nil(t, MainWorktree(nil, "main"))
}
