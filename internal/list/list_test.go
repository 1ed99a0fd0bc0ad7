package list

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worktrunk/worktrunk/internal/models"
)

func TestRunNonTTYPrintsWorktreesAndFooter(t *testing.T) {
	repo, _, _ := setupListFixture(t)

	var buf bytes.Buffer
	err := Run(context.Background(), repo, &buf, RunOptions{DefaultBranch: "main"})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "main")
	assert.Contains(t, out, "feature-x")
	assert.Contains(t, out, "Showing 2 worktrees")
}

func TestRunIncludesBranchesWithoutWorktrees(t *testing.T) {
	repo, mainPath, _ := setupListFixture(t)
	runGit(t, mainPath, "branch", "orphan-branch")

	var buf bytes.Buffer
	err := Run(context.Background(), repo, &buf, RunOptions{DefaultBranch: "main", IncludeBranches: true})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "orphan-branch")
	assert.Contains(t, out, "Showing 2 worktrees, 1 branch")
}

func TestFinalizeNonTTYPrintsNoWorktreesMessage(t *testing.T) {
	// A ListWorktrees call never actually returns zero entries for a valid
	// git repo (the current worktree is always listed), so Run is not
	// called here; this only checks that ProgressiveTable.FinalizeNonTTY
	// prints the "No worktrees found." line it is given.
	var buf bytes.Buffer
	table := NewProgressiveTable(&buf, "h", nil, "Showing 0 worktrees", 80, false)
	require.NoError(t, table.FinalizeNonTTY([]string{"No worktrees found."}))
	assert.Contains(t, buf.String(), "No worktrees found.")
}

func TestFooterMessagePluralization(t *testing.T) {
	assert.Equal(t, "Showing 1 worktree", footerMessage(1, 0, 0, 0, 0))
	assert.Equal(t, "Showing 2 worktrees, 1 branch", footerMessage(2, 1, 0, 0, 0))
	assert.Equal(t, "Showing 2 worktrees, 3 remote branches", footerMessage(2, 0, 3, 0, 0))
	assert.Equal(t, "Showing 2 worktrees (1/4)", footerMessage(2, 0, 0, 1, 4))
	assert.Equal(t, "Showing 2 worktrees", footerMessage(2, 0, 0, 4, 4))
}

func TestFormatHeaderAndRowProduceNonEmptyLines(t *testing.T) {
	widths := ColumnWidths{Branch: 10, Time: 5, Message: 20, Commit: commitWidth, States: 3}
	header := formatHeader(widths, false)
	assert.Contains(t, header, "Branch")
	assert.Contains(t, header, "Message")

	item := models.ListItem{Kind: models.KindWorktree, Head: "abcdef1234567890", Branch: "feature-x"}
	row := formatRow(&item, widths, ComputeStatusMask(nil), false)
	assert.Contains(t, row, "feature-x")
	assert.Contains(t, row, "abcdef12") // truncated to commitWidth
}

func TestCommitCellTruncatesToCommitWidth(t *testing.T) {
	item := models.ListItem{Head: "0123456789abcdef"}
	assert.Equal(t, "01234567", commitCell(&item))

	short := models.ListItem{Head: "abc"}
	assert.Equal(t, "abc", commitCell(&short))
}
