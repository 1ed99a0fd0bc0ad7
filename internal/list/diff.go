package list

import (
	"fmt"
	"strconv"
	"strings"
)

// DiffVariant distinguishes line-diff columns (+128 -147) from
// ahead/behind-style columns (↑6 ↓1): both use the same two-part layout,
// but overflow compaction differs in the 100-999 range (line diffs show the
// full number there; ahead/behind collapses to "<N>C").
type DiffVariant int

const (
	DiffVariantSigns DiffVariant = iota
	DiffVariantArrows
)

// DiffWidths is the shared width record for any two-part column: a diff
// ("+N -N") or an ahead/behind arrow pair ("↑N ↓N").
type DiffWidths struct {
	Total         int
	AddedDigits   int
	DeletedDigits int
}

// exceedsWidth reports whether value needs more digits than the column was
// sized for, i.e. whether to fall back to compact/overflow notation.
func exceedsWidth(value, digits int) bool {
	if digits <= 0 {
		return value > 0
	}
	max := 1
	for i := 0; i < digits; i++ {
		max *= 10
	}
	return value >= max
}

// formatOverflow renders value in compact notation once it no longer fits
// its allocated digit width: thousands as "<N>K", ten-thousand-and-up as
// "∞" (a precise count would be misleading at that scale), and — for
// ahead/behind-style counts only — hundreds as "<N>C". Line-diff counts in
// the 100-999 range are still shown in full; users want precision there
// over compactness. Returns the formatted text and whether it used compact
// notation (the caller renders compact values bold to flag the
// approximation).
func formatOverflow(value int, variant DiffVariant) (string, bool) {
	switch {
	case value >= 10000:
		return "∞", true
	case value >= 1000:
		return fmt.Sprintf("%dK", value/1000), true
	case value >= 100 && variant == DiffVariantArrows:
		return fmt.Sprintf("%dC", value/100), true
	default:
		return strconv.Itoa(value), false
	}
}

// Subcolumn is one rendered "+N"/"-N"/"↑N"/"↓N" value: right-aligned text
// within its allocated digit width, and whether it used compact notation.
type Subcolumn struct {
	Text    string
	Compact bool
}

// FormatSubcolumn renders one side of a two-part diff/arrow column.
func FormatSubcolumn(symbol string, value, digits int, variant DiffVariant) Subcolumn {
	var valueStr string
	var compact bool
	if exceedsWidth(value, digits) {
		valueStr, compact = formatOverflow(value, variant)
	} else {
		valueStr = strconv.Itoa(value)
	}
	width := 1 + digits
	content := symbol + valueStr
	if pad := width - len([]rune(content)); pad > 0 {
		content = strings.Repeat(" ", pad) + content
	}
	return Subcolumn{Text: content, Compact: compact}
}

// FormatDiffCell renders a full two-part cell ("+12 -3" or "↑2 ↓1"),
// right-aligned within widths.Total. An all-zero pair renders as blank
// unless alwaysShowZeros is set. Returns the rendered text plus whether
// each side used compact notation, so the caller can render it bold.
func FormatDiffCell(added, deleted int, widths DiffWidths, variant DiffVariant, addSymbol, delSymbol string, alwaysShowZeros bool) (text string, addedCompact, deletedCompact bool) {
	if added == 0 && deleted == 0 && !alwaysShowZeros {
		return strings.Repeat(" ", widths.Total), false, false
	}

	addCol := FormatSubcolumn(addSymbol, added, widths.AddedDigits, variant)
	delCol := FormatSubcolumn(delSymbol, deleted, widths.DeletedDigits, variant)
	content := addCol.Text + " " + delCol.Text

	contentWidth := (1 + widths.AddedDigits) + 1 + (1 + widths.DeletedDigits)
	if pad := widths.Total - contentWidth; pad > 0 {
		content = strings.Repeat(" ", pad) + content
	}
	return content, addCol.Compact, delCol.Compact
}
