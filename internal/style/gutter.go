package style

import "strings"

// Align controls how a column's content is padded to its target width.
type Align int

const (
	AlignLeft Align = iota
	AlignRight
)

// Column is one field of the progressive status table: a name (for
// debugging/tests), a minimum width, a flex share of any leftover space,
// and an alignment.
type Column struct {
	Name  string
	Min   int
	Flex  int
	Align Align
}

// LayoutWidths distributes totalWidth across cols: every column gets at
// least its Min, then any width left over after the minimums (and the
// single-space gutter between adjacent columns) is distributed
// proportionally to Flex. A column with Flex 0 never grows past its Min.
func LayoutWidths(cols []Column, totalWidth int) []int {
	widths := make([]int, len(cols))
	sumMin := 0
	sumFlex := 0
	for i, c := range cols {
		widths[i] = c.Min
		sumMin += c.Min
		sumFlex += c.Flex
	}
	gutters := 0
	if len(cols) > 1 {
		gutters = len(cols) - 1
	}
	leftover := totalWidth - sumMin - gutters
	if leftover <= 0 || sumFlex == 0 {
		return widths
	}
	distributed := 0
	for i, c := range cols {
		if c.Flex == 0 {
			continue
		}
		share := leftover * c.Flex / sumFlex
		widths[i] += share
		distributed += share
	}
	// Any remainder from integer division goes to the last flexible column,
	// so the row fills the full available width instead of leaving a gap.
	if remainder := leftover - distributed; remainder > 0 {
		for i := len(cols) - 1; i >= 0; i-- {
			if cols[i].Flex > 0 {
				widths[i] += remainder
				break
			}
		}
	}
	return widths
}

// RenderRow lays out cells against cols' computed widths (truncating with
// an ellipsis or padding as needed) and joins them with a single-space
// gutter, matching LayoutWidths' accounting of one gutter column between
// each pair of adjacent columns.
func RenderRow(cols []Column, widths []int, cells []string) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		w := widths[i]
		cell := Truncate(cells[i], w, "…")
		if c.Align == AlignRight {
			parts[i] = PadLeft(cell, w)
		} else {
			parts[i] = PadRight(cell, w)
		}
	}
	return strings.Join(parts, " ")
}
