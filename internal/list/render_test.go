package list

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressiveTableBuildsAndUpdatesRows(t *testing.T) {
	var buf bytes.Buffer
	table := NewProgressiveTable(&buf, "header", []string{"row0", "row1"}, "loading", 80, true)

	require.Len(t, table.lines, 5) // header + 2 rows + spacer + footer
	assert.Equal(t, "header", table.lines[0])
	assert.Equal(t, "row0", table.lines[1])
	assert.Equal(t, "row1", table.lines[2])
	assert.Empty(t, table.lines[3], "spacer should be blank")
	assert.Equal(t, "loading", table.lines[4])

	require.NoError(t, table.UpdateRow(5, "ignored")) // out of bounds, no-op

	require.NoError(t, table.UpdateRow(1, "row1-updated"))
	assert.Equal(t, "row1-updated", table.lines[2])

	before := table.lines[2]
	require.NoError(t, table.UpdateRow(1, before))
	assert.Equal(t, before, table.lines[2])

	require.NoError(t, table.UpdateFooter("done"))
	assert.Equal(t, "done", table.lines[len(table.lines)-1])
}

func TestProgressiveTableTruncatesLongContent(t *testing.T) {
	var buf bytes.Buffer
	longHeader := "this is a very long header that exceeds width"
	table := NewProgressiveTable(&buf, longHeader, []string{"short"}, "loading...", 20, true)

	assert.Less(t, len(table.lines[0]), len(longHeader))
}

func TestProgressiveTableFooterNoChangeIsNoop(t *testing.T) {
	var buf bytes.Buffer
	table := NewProgressiveTable(&buf, "header", []string{"row0"}, "loading", 80, true)

	assert.Equal(t, "loading", table.lines[len(table.lines)-1])
	require.NoError(t, table.UpdateFooter("loading"))
	assert.Equal(t, "loading", table.lines[len(table.lines)-1])
}

func TestProgressiveTableRowBoundsCheck(t *testing.T) {
	var buf bytes.Buffer
	table := NewProgressiveTable(&buf, "header", []string{"row0", "row1"}, "footer", 80, true)

	require.NoError(t, table.UpdateRow(10, "should be ignored"))
	assert.Equal(t, "row0", table.lines[1])
	assert.Equal(t, "row1", table.lines[2])
}

func TestProgressiveTableFinalizeTTYUpdatesFooter(t *testing.T) {
	var buf bytes.Buffer
	table := NewProgressiveTable(&buf, "header", []string{"row"}, "loading...", 80, true)

	require.NoError(t, table.FinalizeTTY("Complete!"))
	assert.Equal(t, "Complete!", table.lines[len(table.lines)-1])
}

func TestProgressiveTableFinalizeTTYNoopOffTTY(t *testing.T) {
	var buf bytes.Buffer
	table := NewProgressiveTable(&buf, "header", []string{"row"}, "loading...", 80, false)

	require.NoError(t, table.FinalizeTTY("Complete!"))
	assert.Equal(t, "loading...", table.lines[len(table.lines)-1], "non-TTY finalize should not touch the footer")
}

func TestProgressiveTableFinalizeNonTTY(t *testing.T) {
	var buf bytes.Buffer
	table := NewProgressiveTable(&buf, "header", []string{"row"}, "loading", 80, false)

	finalLines := []string{"Final Header", "Final Row", "", "Complete"}
	require.NoError(t, table.FinalizeNonTTY(finalLines))

	out := buf.String()
	for _, line := range finalLines {
		if line != "" {
			assert.Contains(t, out, line)
		}
	}
	assert.Equal(t, len(finalLines), strings.Count(out, "\n"))
}

func TestProgressiveTableRenderInitialNonTTYIsNoop(t *testing.T) {
	var buf bytes.Buffer
	table := NewProgressiveTable(&buf, "header", []string{"row"}, "footer", 80, false)

	require.NoError(t, table.RenderInitial())
	assert.Empty(t, buf.String())
}

func TestProgressiveTableRenderInitialTTYPrintsAll(t *testing.T) {
	var buf bytes.Buffer
	table := NewProgressiveTable(&buf, "header", []string{"row0", "row1"}, "footer", 80, true)

	require.NoError(t, table.RenderInitial())
	out := buf.String()
	assert.Contains(t, out, "header")
	assert.Contains(t, out, "row0")
	assert.Contains(t, out, "row1")
	assert.Contains(t, out, "footer")
}

func TestProgressiveTableRowCountTracking(t *testing.T) {
	var buf bytes.Buffer
	table := NewProgressiveTable(&buf, "h", []string{"a", "b", "c"}, "f", 80, true)
	assert.Equal(t, 3, table.rowCount)
}

func TestProgressiveTableIsTTY(t *testing.T) {
	var buf bytes.Buffer
	assert.True(t, NewProgressiveTable(&buf, "h", nil, "f", 80, true).IsTTY())
	assert.False(t, NewProgressiveTable(&buf, "h", nil, "f", 80, false).IsTTY())
}

func TestProgressiveTableRedrawEmitsCursorControl(t *testing.T) {
	var buf bytes.Buffer
	table := NewProgressiveTable(&buf, "header", []string{"row0", "row1"}, "footer", 80, true)
	require.NoError(t, table.RenderInitial())
	buf.Reset()

	require.NoError(t, table.UpdateRow(0, "row0-updated"))
	out := buf.String()
	assert.Contains(t, out, "\x1b[2K", "redraw clears the target line")
	assert.Contains(t, out, "row0-updated")
	assert.Contains(t, out, "\x1b[", "redraw moves the cursor up before rewriting")
}
