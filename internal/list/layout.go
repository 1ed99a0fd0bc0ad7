package list

import (
	"strconv"
	"strings"

	"github.com/worktrunk/worktrunk/internal/models"
	"github.com/worktrunk/worktrunk/internal/style"
)

// spacing is the gap reserved between adjacent columns when allocating
// width; it is charged against the remaining budget alongside each
// column's own ideal width (except for the first column, which has
// nothing to its left).
const spacing = 2

const (
	minMessageWidth       = 20
	preferredMessageWidth = 50
	maxMessageWidth       = 100
	defaultPathWidth      = 20
	ciStatusWidth         = 2
	commitWidth           = 8
)

// ColumnWidths is the set of column widths chosen for one render pass.
// A zero width means the column is omitted entirely for this terminal
// size.
type ColumnWidths struct {
	Branch   int
	Time     int
	CIStatus int
	Message  int

	AheadBehind DiffWidths
	WorkingDiff DiffWidths
	BranchDiff  DiffWidths
	Upstream    DiffWidths

	States int
	Commit int
	Path   int
}

// tryAllocate charges required width (plus spacing, unless this is the
// first column placed) against the remaining budget. If it doesn't fit,
// the column is omitted (width 0) and the budget is untouched; otherwise
// idealWidth is returned and subtracted from remaining.
func tryAllocate(remaining *int, idealWidth int, isFirst bool) int {
	if idealWidth == 0 {
		return 0
	}
	required := idealWidth
	if !isFirst {
		required += spacing
	}
	if *remaining < required {
		return 0
	}
	*remaining -= required
	return idealWidth
}

// digitsFor returns how many digits n needs to print, including the
// single digit "0" needs — a column that has only ever seen zero still
// reserves one digit's width, it just renders blank via FormatDiffCell's
// alwaysShowZeros handling rather than via width.
func digitsFor(n int) int {
	if n < 0 {
		n = -n
	}
	return len(strconv.Itoa(n))
}

// twoPartWidth computes a two-part column's ideal total width from the
// max added/deleted digit counts seen across items that carried data for
// it, padded up to fit headerLabel (so the header never truncates the
// column it names). A column nobody has data for is omitted outright
// (hasData false) rather than allocated just to fit its own header.
func twoPartWidth(hasData bool, maxAddedDigits, maxDeletedDigits int, headerLabel string) DiffWidths {
	if !hasData {
		return DiffWidths{}
	}
	total := 1 + maxAddedDigits + 1 + 1 + maxDeletedDigits
	if headerWidth := style.VisualWidth(headerLabel); headerWidth > total {
		total = headerWidth
	}
	return DiffWidths{Total: total, AddedDigits: maxAddedDigits, DeletedDigits: maxDeletedDigits}
}

// calculateColumnWidths computes each column's ideal (unconstrained)
// width from the actual data in items: the widest branch name, the
// widest commit message, the digit counts needed for each diff/arrow
// column, and so on.
func calculateColumnWidths(items []models.ListItem, showCI bool) ColumnWidths {
	var branchW, messageW int
	var wtAdded, wtDeleted int
	var bdAdded, bdDeleted int
	var abAdded, abDeleted int
	var usAdded, usDeleted int
	var hasWT, hasBD, hasAB, hasUS bool

	for i := range items {
		it := &items[i]
		if w := style.VisualWidth(it.Branch); w > branchW {
			branchW = w
		}
		if it.Commit.Loaded {
			if w := style.VisualWidth(it.Commit.Value.MessageHeadline); w > messageW {
				messageW = w
			}
		}
		if it.WorkingDiff.Loaded {
			hasWT = true
			wtAdded = maxInt(wtAdded, digitsFor(it.WorkingDiff.Value.Added))
			wtDeleted = maxInt(wtDeleted, digitsFor(it.WorkingDiff.Value.Deleted))
		}
		if it.BranchDiff.Loaded && it.BranchDiff.Value != nil {
			hasBD = true
			bdAdded = maxInt(bdAdded, digitsFor(it.BranchDiff.Value.Added))
			bdDeleted = maxInt(bdDeleted, digitsFor(it.BranchDiff.Value.Deleted))
		}
		if it.MainAheadBehind.Loaded {
			hasAB = true
			abAdded = maxInt(abAdded, digitsFor(it.MainAheadBehind.Value.Ahead))
			abDeleted = maxInt(abDeleted, digitsFor(it.MainAheadBehind.Value.Behind))
		}
		if it.Upstream.Loaded {
			hasUS = true
			usAdded = maxInt(usAdded, digitsFor(it.Upstream.Value.AheadBehind.Ahead))
			usDeleted = maxInt(usDeleted, digitsFor(it.Upstream.Value.AheadBehind.Behind))
		}
	}
	mask := ComputeStatusMask(items)
	statesW := style.VisualWidth(models.StatusSymbols{}.Render(mask))

	widths := ColumnWidths{
		Branch:      branchW,
		Time:        12, // "3 days ago"-class relative timestamps
		Message:     messageW,
		AheadBehind: twoPartWidth(hasAB, abAdded, abDeleted, "Commits"),
		WorkingDiff: twoPartWidth(hasWT, wtAdded, wtDeleted, "WT +/-"),
		BranchDiff:  twoPartWidth(hasBD, bdAdded, bdDeleted, "Branch +/-"),
		Upstream:    twoPartWidth(hasUS, usAdded, usDeleted, "Remote"),
		States:      statesW,
		Commit:      commitWidth,
		Path:        maxPathWidth(items),
	}
	if showCI {
		widths.CIStatus = ciStatusWidth
	}
	return widths
}

// ComputeStatusMask widens a PositionMask across every item's current
// status symbols, giving the shared per-slot width the States column and
// each row's rendering both need to line up into a stable grid.
func ComputeStatusMask(items []models.ListItem) models.PositionMask {
	var mask models.PositionMask
	for i := range items {
		mask = mask.Observe(items[i].Status)
	}
	return mask
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// maxPathWidth returns the width of the longest item path after stripping
// the common leading directory shared by every worktree, falling back to
// defaultPathWidth when there's nothing to measure.
func maxPathWidth(items []models.ListItem) int {
	var paths []string
	for i := range items {
		if items[i].Path != "" {
			paths = append(paths, items[i].Path)
		}
	}
	if len(paths) == 0 {
		return defaultPathWidth
	}
	prefix := commonPrefix(paths)
	max := 0
	for _, p := range paths {
		if w := style.VisualWidth(strings.TrimPrefix(p, prefix)); w > max {
			max = w
		}
	}
	if max == 0 {
		return defaultPathWidth
	}
	return max
}

func commonPrefix(paths []string) string {
	if len(paths) == 0 {
		return ""
	}
	prefix := paths[0]
	for _, p := range paths[1:] {
		for !strings.HasPrefix(p, prefix) {
			prefix = prefix[:len(prefix)-1]
			if prefix == "" {
				return ""
			}
		}
	}
	return prefix
}

// calculateResponsiveLayout applies tryAllocate against terminalWidth in
// strict priority order, so that on a narrow terminal the least
// important columns (the message, then the commit hash) are the first to shrink
// or disappear, while branch — always shown, always first — never is.
func calculateResponsiveLayout(ideal ColumnWidths, terminalWidth int) ColumnWidths {
	remaining := terminalWidth
	out := ColumnWidths{}

	out.Branch = tryAllocate(&remaining, ideal.Branch, true)
	out.WorkingDiff.Total = tryAllocate(&remaining, ideal.WorkingDiff.Total, false)
	if out.WorkingDiff.Total > 0 {
		out.WorkingDiff.AddedDigits, out.WorkingDiff.DeletedDigits = ideal.WorkingDiff.AddedDigits, ideal.WorkingDiff.DeletedDigits
	}
	out.AheadBehind.Total = tryAllocate(&remaining, ideal.AheadBehind.Total, false)
	if out.AheadBehind.Total > 0 {
		out.AheadBehind.AddedDigits, out.AheadBehind.DeletedDigits = ideal.AheadBehind.AddedDigits, ideal.AheadBehind.DeletedDigits
	}
	out.BranchDiff.Total = tryAllocate(&remaining, ideal.BranchDiff.Total, false)
	if out.BranchDiff.Total > 0 {
		out.BranchDiff.AddedDigits, out.BranchDiff.DeletedDigits = ideal.BranchDiff.AddedDigits, ideal.BranchDiff.DeletedDigits
	}
	out.States = tryAllocate(&remaining, ideal.States, false)
	out.Path = tryAllocate(&remaining, ideal.Path, false)
	out.Upstream.Total = tryAllocate(&remaining, ideal.Upstream.Total, false)
	if out.Upstream.Total > 0 {
		out.Upstream.AddedDigits, out.Upstream.DeletedDigits = ideal.Upstream.AddedDigits, ideal.Upstream.DeletedDigits
	}
	out.Time = tryAllocate(&remaining, ideal.Time, false)
	out.CIStatus = tryAllocate(&remaining, ideal.CIStatus, false)
	out.Commit = tryAllocate(&remaining, commitWidth, false)

	// Message is elastic: preferred width if there's room, a shrunk width
	// down to a floor if there's a little room, omitted otherwise — then
	// whatever's left over after every other column expands it further,
	// up to maxMessageWidth.
	switch {
	case remaining >= preferredMessageWidth+spacing:
		out.Message = preferredMessageWidth
		remaining -= preferredMessageWidth + spacing
	case remaining >= minMessageWidth+spacing:
		out.Message = minInt(remaining-spacing, ideal.Message)
		if out.Message < minMessageWidth {
			out.Message = minMessageWidth
		}
		remaining -= out.Message + spacing
	default:
		out.Message = 0
	}
	if out.Message > 0 && remaining > 0 {
		grow := remaining
		if out.Message+grow > maxMessageWidth {
			grow = maxMessageWidth - out.Message
		}
		out.Message += grow
	}

	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
