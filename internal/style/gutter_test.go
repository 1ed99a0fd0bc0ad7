package style

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLayoutWidthsGivesFixedColumnsTheirMinimum(t *testing.T) {
	cols := []Column{{Name: "status", Min: 8}, {Name: "branch", Min: 10, Flex: 1}}
	widths := LayoutWidths(cols, 40)
	assert.Equal(t, 8, widths[0])
	assert.Greater(t, widths[1], 10)
}

func TestLayoutWidthsDistributesLeftoverByFlexShare(t *testing.T) {
	cols := []Column{{Name: "a", Min: 0, Flex: 1}, {Name: "b", Min: 0, Flex: 3}}
	widths := LayoutWidths(cols, 40)
	assert.Equal(t, 40, widths[0]+widths[1]+1) // +1 for the single gutter
	// leftover 39: b's share is 39*3/4 = 29, plus the integer-division remainder of 1
	assert.Equal(t, 30, widths[1])
}

func TestLayoutWidthsNeverShrinksBelowMinWhenNoRoom(t *testing.T) {
	cols := []Column{{Name: "a", Min: 20, Flex: 1}, {Name: "b", Min: 20, Flex: 1}}
	widths := LayoutWidths(cols, 10)
	assert.Equal(t, 20, widths[0])
	assert.Equal(t, 20, widths[1])
}

func TestRenderRowTruncatesAndPads(t *testing.T) {
	cols := []Column{
		{Name: "branch", Align: AlignLeft},
		{Name: "ahead", Align: AlignRight},
	}
	widths := []int{6, 4}
	out := RenderRow(cols, widths, []string{"feature/long-name", "12"})
	assert.Contains(t, out, "…")
	assert.Contains(t, out, "  12")
}
