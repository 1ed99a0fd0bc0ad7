package list

import (
	"fmt"
	"io"

	"github.com/worktrunk/worktrunk/internal/style"
)

// ProgressiveTable renders a header row, N data rows, a blank spacer, and a
// footer, then updates individual rows and the footer in place as data
// arrives — on a TTY, by moving the cursor up and rewriting just the
// changed line; off a TTY, by staying silent until FinalizeNonTTY prints
// the whole table once, since cursor control on a pipe or log file would
// just scatter escape codes into the output.
type ProgressiveTable struct {
	out      io.Writer
	lines    []string
	maxWidth int
	rowCount int
	isTTY    bool
}

// NewProgressiveTable builds the initial line set (header + one line per
// skeleton + a blank spacer + footer) without writing anything; call
// RenderInitial to print it.
func NewProgressiveTable(out io.Writer, header string, skeletons []string, footer string, maxWidth int, isTTY bool) *ProgressiveTable {
	lines := make([]string, 0, len(skeletons)+3)
	lines = append(lines, style.Truncate(header, maxWidth, "…"))
	for _, s := range skeletons {
		lines = append(lines, style.Truncate(s, maxWidth, "…"))
	}
	lines = append(lines, "") // spacer
	lines = append(lines, style.Truncate(footer, maxWidth, "…"))

	return &ProgressiveTable{
		out:      out,
		lines:    lines,
		maxWidth: maxWidth,
		rowCount: len(skeletons),
		isTTY:    isTTY,
	}
}

// RenderInitial prints the whole table once. A no-op off a TTY: non-TTY
// output is deferred entirely to FinalizeNonTTY.
func (t *ProgressiveTable) RenderInitial() error {
	if !t.isTTY {
		return nil
	}
	return t.printAll()
}

func (t *ProgressiveTable) printAll() error {
	for _, line := range t.lines {
		if _, err := fmt.Fprintln(t.out, line); err != nil {
			return err
		}
	}
	return nil
}

// UpdateRow replaces data row rowIdx's content (0-based, not counting the
// header). Out-of-range indices are ignored rather than erroring, since a
// stray late update for a row index that no longer exists shouldn't crash
// the render loop.
func (t *ProgressiveTable) UpdateRow(rowIdx int, content string) error {
	if rowIdx < 0 || rowIdx >= t.rowCount {
		return nil
	}
	return t.setLine(rowIdx+1, content)
}

// UpdateFooter replaces the footer line (loading status, then a final
// summary once collection finishes).
func (t *ProgressiveTable) UpdateFooter(content string) error {
	return t.setLine(len(t.lines)-1, content)
}

func (t *ProgressiveTable) setLine(lineIdx int, content string) error {
	truncated := style.Truncate(content, t.maxWidth, "…")
	if t.lines[lineIdx] == truncated {
		return nil
	}
	t.lines[lineIdx] = truncated
	if !t.isTTY {
		return nil
	}
	return t.redrawLine(lineIdx)
}

// redrawLine moves the cursor up from its resting position (just after the
// footer) to lineIdx, clears that line, rewrites it, and moves back down —
// printing blank newlines rather than a single cursor-down escape, since
// not every terminal honors cursor-down reliably but every terminal
// advances a line on '\n'.
func (t *ProgressiveTable) redrawLine(lineIdx int) error {
	linesUp := len(t.lines) - lineIdx
	var buf []byte
	if linesUp > 0 {
		buf = append(buf, []byte(fmt.Sprintf("\x1b[%dA", linesUp))...)
	}
	buf = append(buf, '\r')             // move to column 0
	buf = append(buf, []byte("\x1b[2K")...) // clear current line
	buf = append(buf, []byte(t.lines[lineIdx])...)
	for i := 0; i < linesUp; i++ {
		buf = append(buf, '\n')
	}
	_, err := t.out.Write(buf)
	return err
}

// FinalizeTTY replaces the footer with a final summary, leaving the
// already-rendered rows in place.
func (t *ProgressiveTable) FinalizeTTY(finalFooter string) error {
	if !t.isTTY {
		return nil
	}
	return t.UpdateFooter(finalFooter)
}

// FinalizeNonTTY prints finalLines once, since non-TTY mode suppressed
// every intermediate render.
func (t *ProgressiveTable) FinalizeNonTTY(finalLines []string) error {
	for _, line := range finalLines {
		if _, err := fmt.Fprintln(t.out, line); err != nil {
			return err
		}
	}
	return nil
}

// IsTTY reports whether this table is writing to a terminal.
func (t *ProgressiveTable) IsTTY() bool {
	return t.isTTY
}
