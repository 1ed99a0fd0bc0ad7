package list

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worktrunk/worktrunk/internal/models"
)

func TestCalculateColumnWidthsTwoPartColumns(t *testing.T) {
	items := []models.ListItem{
		{
			Branch:          "feature-x",
			MainAheadBehind: models.Loaded(models.AheadBehind{Ahead: 3, Behind: 2}),
			WorkingDiff:     models.Loaded(models.LineDiff{Added: 100, Deleted: 50}),
			BranchDiff:      models.Loaded[*models.LineDiff](&models.LineDiff{Added: 200, Deleted: 30}),
			Upstream:        models.Loaded(models.UpstreamStatus{AheadBehind: models.AheadBehind{Ahead: 4, Behind: 0}}),
		},
	}

	widths := calculateColumnWidths(items, false)

	// ahead/behind: digits (1,1), raw content width 5, padded to fit
	// "Commits" (7 chars).
	require.Equal(t, 1, widths.AheadBehind.AddedDigits)
	require.Equal(t, 1, widths.AheadBehind.DeletedDigits)
	assert.Equal(t, 7, widths.AheadBehind.Total)

	// working diff: digits (3,2), raw content width 8, "WT +/-" is only 6
	// wide so no header padding is needed.
	require.Equal(t, 3, widths.WorkingDiff.AddedDigits)
	require.Equal(t, 2, widths.WorkingDiff.DeletedDigits)
	assert.Equal(t, 8, widths.WorkingDiff.Total)

	// branch diff: digits (3,2), raw content width 8, padded to fit
	// "Branch +/-" (10 chars).
	require.Equal(t, 3, widths.BranchDiff.AddedDigits)
	require.Equal(t, 2, widths.BranchDiff.DeletedDigits)
	assert.Equal(t, 10, widths.BranchDiff.Total)

	// upstream: digits (1,1), raw content width 5, padded to fit "Remote"
	// (6 chars).
	require.Equal(t, 1, widths.Upstream.AddedDigits)
	require.Equal(t, 1, widths.Upstream.DeletedDigits)
	assert.Equal(t, 6, widths.Upstream.Total)
}

func TestTryAllocateOmitsWhenTooNarrow(t *testing.T) {
	remaining := 10
	got := tryAllocate(&remaining, 20, false)
	assert.Equal(t, 0, got)
	assert.Equal(t, 10, remaining, "a rejected column must not touch the budget")
}

func TestTryAllocateFirstColumnSkipsSpacing(t *testing.T) {
	remaining := 5
	got := tryAllocate(&remaining, 5, true)
	assert.Equal(t, 5, got)
	assert.Equal(t, 0, remaining)
}

func TestCalculateResponsiveLayoutDropsLowestPriorityFirst(t *testing.T) {
	ideal := ColumnWidths{
		Branch:  10,
		Time:    12,
		Message: 50,
		Commit:  commitWidth,
	}

	narrow := calculateResponsiveLayout(ideal, 10)
	assert.Equal(t, 10, narrow.Branch, "branch is always allocated first and never dropped")
	assert.Equal(t, 0, narrow.Message, "message is dropped entirely when nothing is left")

	roomy := calculateResponsiveLayout(ideal, 200)
	assert.Equal(t, 10, roomy.Branch)
	assert.True(t, roomy.Message >= preferredMessageWidth)
}

func TestCalculateResponsiveLayoutMessageShrinksBeforeDropping(t *testing.T) {
	ideal := ColumnWidths{Branch: 10, Message: 80}
	widths := calculateResponsiveLayout(ideal, 50)
	assert.Equal(t, 10, widths.Branch)
	assert.True(t, widths.Message >= minMessageWidth)
	assert.True(t, widths.Message < preferredMessageWidth)
}
