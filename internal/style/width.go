package style

import (
	"strings"

	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
	"github.com/rivo/uniseg"
)

// VisualWidth returns the terminal column width s would occupy once ANSI
// escape sequences are stripped, counting wide runes (CJK, most emoji) and
// grapheme clusters (combining marks, ZWJ sequences) correctly rather than
// one column per rune.
func VisualWidth(s string) int {
	return uniseg.StringWidth(ansi.Strip(s))
}

// Truncate clips s to at most width visual columns, appending tail (an
// ellipsis, typically) when it had to cut, while preserving any ANSI
// styling sequences already present in s so a truncated styled cell
// doesn't leak color into the rest of the row.
func Truncate(s string, width int, tail string) string {
	if width <= 0 {
		return ""
	}
	if VisualWidth(s) <= width {
		return s
	}
	return truncate.StringWithTail(s, uint(width), tail)
}

// PadRight pads s with spaces on the right until it occupies width visual
// columns. It never truncates — callers that need a fixed column width
// should Truncate first.
func PadRight(s string, width int) string {
	gap := width - VisualWidth(s)
	if gap <= 0 {
		return s
	}
	return s + strings.Repeat(" ", gap)
}

// PadLeft is PadRight's mirror, used for right-aligned numeric columns.
func PadLeft(s string, width int) string {
	gap := width - VisualWidth(s)
	if gap <= 0 {
		return s
	}
	return strings.Repeat(" ", gap) + s
}
