package list

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	humanize "github.com/dustin/go-humanize"
	"golang.org/x/term"

	"github.com/worktrunk/worktrunk/internal/ci"
	"github.com/worktrunk/worktrunk/internal/gitrepo"
	"github.com/worktrunk/worktrunk/internal/models"
	"github.com/worktrunk/worktrunk/internal/style"
)

// defaultTerminalWidth is used whenever out isn't a terminal fd term can
// query (a pipe, a file, a test buffer).
const defaultTerminalWidth = 120

// RunOptions configures one list run: which rows beyond plain worktrees to
// include, and which of the costlier optional probes to perform.
type RunOptions struct {
	DefaultBranch           string // resolved via repo.DefaultBranch when empty
	IncludeBranches         bool
	IncludeRemoteBranches   bool
	ShowCI                  bool
	CheckMergeTreeConflicts bool
	CICache                 *ci.Cache
	JSON                    bool // emit a single JSON array instead of the progressive table
}

// Run collects every worktree (and, if requested, every worktree-less
// branch) and renders them as a progressively-filled status table to out.
// Whether out is a live terminal is auto-detected from its file descriptor
// when out implements one (os.Stdout in normal use); anything else falls
// back to the single-pass buffered render.
func Run(ctx context.Context, repo *gitrepo.Repository, out io.Writer, opts RunOptions) error {
	worktrees, err := repo.ListWorktrees(ctx)
	if err != nil {
		return fmt.Errorf("listing worktrees: %w", err)
	}
	if len(worktrees) == 0 {
		fmt.Fprintln(out, "No worktrees found.")
		return nil
	}

	defaultBranch := opts.DefaultBranch
	if defaultBranch == "" {
		defaultBranch, err = repo.DefaultBranch(ctx)
		if err != nil {
			return fmt.Errorf("resolving default branch: %w", err)
		}
	}

	mainWT := gitrepo.MainWorktree(worktrees, defaultBranch)
	mainPath := ""
	if mainWT != nil {
		mainPath = mainWT.Path
	}
	currentPath := repo.Dir()

	sortWorktrees(ctx, repo, worktrees, mainPath, currentPath)

	sources := make([]RowSource, 0, len(worktrees))
	for i := range worktrees {
		wt := &worktrees[i]
		sources = append(sources, RowSource{
			Kind:   models.KindWorktree,
			Head:   wt.HeadSHA,
			Branch: wt.Branch,
			Path:   wt.Path,
			IsMain: mainWT != nil && wt.Path == mainWT.Path,
		})
	}

	var branchCount, remoteBranchCount int
	if opts.IncludeBranches {
		if localBranches, err := repo.ListLocalBranches(ctx); err == nil {
			for _, b := range gitrepo.BranchesWithoutWorktrees(localBranches, worktrees) {
				sources = append(sources, RowSource{Kind: models.KindBranch, Head: b.HeadSHA, Branch: b.Name})
				branchCount++
			}
		}
	}
	if opts.IncludeRemoteBranches {
		if remote, err := repo.PrimaryRemote(ctx); err == nil && remote != "" {
			if remoteBranches, err := repo.ListRemoteBranches(ctx, remote); err == nil {
				for _, b := range gitrepo.RemoteBranchesWithoutLocalWorktrees(remoteBranches, remote, worktrees) {
					sources = append(sources, RowSource{
						Kind:   models.KindBranch,
						Head:   b.HeadSHA,
						Branch: strings.TrimPrefix(b.Name, remote+"/"),
					})
					remoteBranchCount++
				}
			}
		}
	}

	items := make([]models.ListItem, len(sources))
	for i, src := range sources {
		items[i] = models.ListItem{
			Kind:      src.Kind,
			Head:      src.Head,
			Branch:    src.Branch,
			IsMain:    src.IsMain,
			IsCurrent: src.Path != "" && src.Path == currentPath,
			Path:      src.Path,
		}
	}

	if opts.JSON {
		return runJSON(ctx, repo, out, items, sources, defaultBranch, opts)
	}

	isTTY := isTerminal(out)
	width := terminalWidthFor(out)

	ideal := calculateColumnWidths(items, opts.ShowCI)
	widths := calculateResponsiveLayout(ideal, width)
	mask := ComputeStatusMask(items)

	header := formatHeader(widths, opts.ShowCI)
	skeletons := make([]string, len(items))
	for i := range items {
		skeletons[i] = formatRow(&items[i], widths, mask, opts.ShowCI)
	}

	totalUpdates := totalCellCount(sources, opts)
	footer := footerMessage(len(worktrees), branchCount, remoteBranchCount, 0, totalUpdates)

	table := NewProgressiveTable(out, header, skeletons, footer, width, isTTY)
	if err := table.RenderInitial(); err != nil {
		return err
	}

	st := newRowConflictState(len(items))
	completed := 0

	collectOpts := collectOptionsFor(opts)
	updates := Collect(ctx, repo, sources, defaultBranch, collectOpts, opts.CICache)
	for u := range updates {
		Apply(items, st, u)
		completed++

		row := formatRow(&items[u.Row], widths, mask, opts.ShowCI)
		if err := table.UpdateRow(u.Row, row); err != nil {
			return err
		}
		if err := table.UpdateFooter(footerMessage(len(worktrees), branchCount, remoteBranchCount, completed, totalUpdates)); err != nil {
			return err
		}
	}

	finalFooter := footerMessage(len(worktrees), branchCount, remoteBranchCount, totalUpdates, totalUpdates)
	if table.IsTTY() {
		return table.FinalizeTTY(finalFooter)
	}

	finalLines := make([]string, 0, len(items)+3)
	finalLines = append(finalLines, style.Truncate(header, width, "…"))
	for i := range items {
		finalLines = append(finalLines, style.Truncate(formatRow(&items[i], widths, mask, opts.ShowCI), width, "…"))
	}
	finalLines = append(finalLines, "")
	finalLines = append(finalLines, style.Truncate(finalFooter, width, "…"))
	return table.FinalizeNonTTY(finalLines)
}

// runJSON collects every row to completion (no progressive rendering: a
// JSON array isn't meaningful until every row is final) and writes it as
// one JSON array, computing the shared status mask from the fully-loaded
// items so status_symbols lines up the same way the table would.
func runJSON(ctx context.Context, repo *gitrepo.Repository, out io.Writer, items []models.ListItem, sources []RowSource, defaultBranch string, opts RunOptions) error {
	st := newRowConflictState(len(items))
	collectOpts := collectOptionsFor(opts)
	updates := Collect(ctx, repo, sources, defaultBranch, collectOpts, opts.CICache)
	for u := range updates {
		Apply(items, st, u)
	}
	mask := ComputeStatusMask(items)
	return WriteJSON(out, items, mask)
}

// collectOptionsFor narrows RunOptions down to the Options Collect needs.
func collectOptionsFor(o RunOptions) Options {
	return Options{FetchCI: o.ShowCI, CheckMergeTreeConflicts: o.CheckMergeTreeConflicts}
}

// totalCellCount estimates how many CellUpdate values Collect will send,
// for the footer's "N/M" progress readout. It mirrors collectRow's
// conditionals closely enough to be a reasonable estimate; a mismatch only
// ever affects the progress readout, never row correctness, so it doesn't
// need to track collectRow probe-for-probe.
func totalCellCount(sources []RowSource, opts RunOptions) int {
	total := 0
	for _, src := range sources {
		total++ // commit details
		total++ // branch diff (sent unconditionally, possibly skipped)
		if !src.IsMain && src.Branch != "" {
			total++ // ahead/behind
			total++ // integration
			if opts.CheckMergeTreeConflicts {
				total++
			}
		}
		if src.Branch != "" {
			total++ // upstream (best-effort, may not arrive if no upstream)
		}
		if opts.ShowCI {
			total++
		}
		if src.Kind == models.KindWorktree {
			total += 2 // working-tree diff, worktree state
		}
	}
	return total
}

// sortWorktrees orders worktrees main-first, then the current worktree,
// then everything else, each bucket by commit timestamp descending — the
// same three-bucket priority a user scanning top-to-bottom expects: where
// they are now, then what's freshest.
func sortWorktrees(ctx context.Context, repo *gitrepo.Repository, worktrees []models.WorktreeDescriptor, mainPath, currentPath string) {
	timestamps := make([]time.Time, len(worktrees))
	priorities := make([]int, len(worktrees))
	for i := range worktrees {
		switch worktrees[i].Path {
		case mainPath:
			priorities[i] = 0
		case currentPath:
			priorities[i] = 1
		default:
			priorities[i] = 2
		}
		ts, err := repo.CommitTimestamp(ctx, worktrees[i].HeadSHA)
		if err == nil {
			timestamps[i] = ts
		}
	}
	idx := make([]int, len(worktrees))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		i, j := idx[a], idx[b]
		if priorities[i] != priorities[j] {
			return priorities[i] < priorities[j]
		}
		return timestamps[i].After(timestamps[j])
	})
	sorted := make([]models.WorktreeDescriptor, len(worktrees))
	for pos, i := range idx {
		sorted[pos] = worktrees[i]
	}
	copy(worktrees, sorted)
}

// footerMessage matches the "Showing N worktrees[, M branches][, P remote
// branches]" summary shape, with a trailing "(completed/total)" progress
// suffix while collection is still in flight.
func footerMessage(worktreeCount, branchCount, remoteBranchCount, completed, total int) string {
	parts := []string{pluralize(worktreeCount, "worktree")}
	if branchCount > 0 {
		parts = append(parts, pluralize(branchCount, "branch"))
	}
	if remoteBranchCount > 0 {
		parts = append(parts, pluralize(remoteBranchCount, "remote branch"))
	}
	msg := "Showing " + strings.Join(parts, ", ")
	if total > 0 && completed < total {
		msg += fmt.Sprintf(" (%d/%d)", completed, total)
	}
	return msg
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// isTerminal reports whether out is connected to a live terminal, probing
// os.File's Fd() when out is one (the normal os.Stdout case) and
// defaulting to false — progressive cursor control only otherwise — for
// anything else (buffers, pipes, loggers).
func isTerminal(out io.Writer) bool {
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// terminalWidthFor queries out's column width when it's a terminal,
// falling back to defaultTerminalWidth otherwise (piped output, redirected
// to a file, or a non-*os.File writer in tests).
func terminalWidthFor(out io.Writer) int {
	f, ok := out.(*os.File)
	if !ok {
		return defaultTerminalWidth
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return defaultTerminalWidth
	}
	return w
}

const (
	branchDiffHeader  = "Branch +/-"
	workingDiffHeader = "WT +/-"
	aheadBehindHeader = "Commits"
	upstreamHeader    = "Remote"
)

// formatHeader renders the column header line for widths, omitting any
// column tryAllocate dropped entirely (width/Total == 0).
func formatHeader(widths ColumnWidths, showCI bool) string {
	var cols []column
	cols = append(cols, col(widths.Branch, style.PadRight("Branch", widths.Branch)))
	cols = append(cols, diffCol(widths.WorkingDiff, workingDiffHeader))
	cols = append(cols, diffCol(widths.AheadBehind, aheadBehindHeader))
	cols = append(cols, diffCol(widths.BranchDiff, branchDiffHeader))
	cols = append(cols, col(widths.States, style.PadRight("Status", widths.States)))
	cols = append(cols, col(widths.Path, style.PadRight("Path", widths.Path)))
	cols = append(cols, diffCol(widths.Upstream, upstreamHeader))
	cols = append(cols, col(widths.Time, style.PadRight("Updated", widths.Time)))
	if showCI {
		cols = append(cols, col(widths.CIStatus, style.PadRight("CI", widths.CIStatus)))
	}
	cols = append(cols, col(widths.Commit, style.PadRight("Commit", widths.Commit)))
	cols = append(cols, col(widths.Message, style.PadRight("Message", widths.Message)))
	return joinColumns(cols)
}

// formatRow renders one data row against widths, mirroring formatHeader's
// column order exactly so headers and cells stay aligned.
func formatRow(item *models.ListItem, widths ColumnWidths, mask models.PositionMask, showCI bool) string {
	var cols []column
	cols = append(cols, col(widths.Branch, style.PadRight(item.Branch, widths.Branch)))
	cols = append(cols, diffDataCol(widths.WorkingDiff, workingDiffCell(item)))
	cols = append(cols, diffDataCol(widths.AheadBehind, aheadBehindCell(item)))
	cols = append(cols, diffDataCol(widths.BranchDiff, branchDiffCell(item)))
	cols = append(cols, col(widths.States, style.PadRight(item.Status.Render(mask), widths.States)))
	cols = append(cols, col(widths.Path, style.PadRight(item.Path, widths.Path)))
	cols = append(cols, diffDataCol(widths.Upstream, upstreamCell(item)))
	cols = append(cols, col(widths.Time, style.PadRight(timeCell(item), widths.Time)))
	if showCI {
		cols = append(cols, col(widths.CIStatus, style.PadRight(ciCell(item), widths.CIStatus)))
	}
	cols = append(cols, col(widths.Commit, style.PadRight(commitCell(item), widths.Commit)))
	cols = append(cols, col(widths.Message, style.PadRight(messageCell(item), widths.Message)))
	return joinColumns(cols)
}

type column struct {
	width   int
	content string
}

func col(width int, content string) column { return column{width: width, content: content} }

func diffCol(w DiffWidths, header string) column {
	return column{width: w.Total, content: style.PadRight(header, w.Total)}
}

type diffValue struct {
	added, deleted int
	variant        DiffVariant
	addSymbol      string
	delSymbol      string
}

func diffDataCol(w DiffWidths, v diffValue) column {
	if w.Total == 0 {
		return column{}
	}
	text, _, _ := FormatDiffCell(v.added, v.deleted, w, v.variant, v.addSymbol, v.delSymbol, false)
	return column{width: w.Total, content: text}
}

func workingDiffCell(item *models.ListItem) diffValue {
	v := diffValue{variant: DiffVariantSigns, addSymbol: "+", delSymbol: "-"}
	if item.WorkingDiff.Loaded {
		v.added, v.deleted = item.WorkingDiff.Value.Added, item.WorkingDiff.Value.Deleted
	}
	return v
}

func aheadBehindCell(item *models.ListItem) diffValue {
	v := diffValue{variant: DiffVariantArrows, addSymbol: "↑", delSymbol: "↓"}
	if item.MainAheadBehind.Loaded {
		v.added, v.deleted = item.MainAheadBehind.Value.Ahead, item.MainAheadBehind.Value.Behind
	}
	return v
}

func branchDiffCell(item *models.ListItem) diffValue {
	v := diffValue{variant: DiffVariantSigns, addSymbol: "+", delSymbol: "-"}
	if item.BranchDiff.Loaded && item.BranchDiff.Value != nil {
		v.added, v.deleted = item.BranchDiff.Value.Added, item.BranchDiff.Value.Deleted
	}
	return v
}

func upstreamCell(item *models.ListItem) diffValue {
	v := diffValue{variant: DiffVariantArrows, addSymbol: "⇡", delSymbol: "⇣"}
	if item.Upstream.Loaded {
		v.added, v.deleted = item.Upstream.Value.Ahead, item.Upstream.Value.Behind
	}
	return v
}

// timeCell renders the row's commit timestamp as a relative "3 days ago"
// string once loaded, blank while still pending.
func timeCell(item *models.ListItem) string {
	if !item.Commit.Loaded {
		return ""
	}
	return humanize.Time(item.Commit.Value.Timestamp)
}

// ciCell renders a one-character CI conclusion glyph. Grounded on the
// three-valued models.CIState plus the provider's free-form Conclusion
// string (success/failure/pending, the GitHub Checks vocabulary).
func ciCell(item *models.ListItem) string {
	if !item.CI.Loaded || item.CI.Value.State != models.CILoaded {
		return ""
	}
	switch item.CI.Value.Conclusion {
	case "success":
		return "✓"
	case "failure":
		return "✗"
	case "pending", "":
		return "…"
	default:
		return "?"
	}
}

func commitCell(item *models.ListItem) string {
	if len(item.Head) <= commitWidth {
		return item.Head
	}
	return item.Head[:commitWidth]
}

func messageCell(item *models.ListItem) string {
	if !item.Commit.Loaded {
		return ""
	}
	return item.Commit.Value.MessageHeadline
}

// joinColumns concatenates every column whose width was actually
// allocated, separating them by the same spacing tryAllocate charged
// against the layout budget, so headers and rows both account for the gap
// consistently.
func joinColumns(cols []column) string {
	var parts []string
	for _, c := range cols {
		if c.width == 0 {
			continue
		}
		parts = append(parts, c.content)
	}
	return strings.Join(parts, strings.Repeat(" ", spacing))
}
