package models

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// BranchState is the branch-level slot of StatusSymbols, in priority order
// for status recomputation: Conflicts > Rebase > Merge > WouldConflict >
// SameCommit > Integrated > None.
type BranchState int

const (
	BranchStateNone BranchState = iota
	BranchStateIntegrated
	BranchStateSameCommit
	BranchStateWouldConflict
	BranchStateMerging
	BranchStateRebasing
	BranchStateConflicts
)

// Glyph returns the terminal symbol for the branch-state slot. Priority
// order above is encoded by the caller (status.DeriveBranchState), not here.
func (b BranchState) Glyph() string {
	switch b {
	case BranchStateConflicts:
		return "✘"
	case BranchStateRebasing:
		return "⤴"
	case BranchStateMerging:
		return "⤵"
	case BranchStateWouldConflict:
		return "✗"
	case BranchStateSameCommit:
		return "·"
	case BranchStateIntegrated:
		return "⊂"
	default:
		return ""
	}
}

func (b BranchState) JSONName() string {
	switch b {
	case BranchStateConflicts:
		return "conflicts"
	case BranchStateRebasing:
		return "rebase"
	case BranchStateMerging:
		return "merge"
	case BranchStateWouldConflict:
		return "would_conflict"
	case BranchStateSameCommit:
		return "same_commit"
	case BranchStateIntegrated:
		return "integrated"
	default:
		return "none"
	}
}

// WorktreeState is the worktree-level slot, priority PathMismatch >
// Prunable > Locked > Branch (branch-only rows) > None.
type WorktreeState int

const (
	WorktreeStateNone WorktreeState = iota
	WorktreeStateBranchOnly
	WorktreeStateLocked
	WorktreeStatePrunable
	WorktreeStatePathMismatch
)

func (w WorktreeState) Glyph() string {
	switch w {
	case WorktreeStatePathMismatch:
		return "⊞"
	case WorktreeStatePrunable:
		return "⊟"
	case WorktreeStateLocked:
		return "⚑"
	case WorktreeStateBranchOnly:
		return "/"
	default:
		return ""
	}
}

func (w WorktreeState) JSONName() string {
	switch w {
	case WorktreeStatePathMismatch:
		return "path_mismatch"
	case WorktreeStatePrunable:
		return "prunable"
	case WorktreeStateLocked:
		return "locked"
	case WorktreeStateBranchOnly:
		return "branch"
	default:
		return "none"
	}
}

// MainDivergence is the main-divergence slot: ^ (is-main) ↕ (both) ↑
// (ahead only) ↓ (behind only).
type MainDivergence int

const (
	MainDivergenceNone MainDivergence = iota
	MainDivergenceIsMain
	MainDivergenceAhead
	MainDivergenceBehind
	MainDivergenceBoth
)

func (d MainDivergence) Glyph() string {
	switch d {
	case MainDivergenceIsMain:
		return "^"
	case MainDivergenceBoth:
		return "↕"
	case MainDivergenceAhead:
		return "↑"
	case MainDivergenceBehind:
		return "↓"
	default:
		return ""
	}
}

func (d MainDivergence) JSONName() string {
	switch d {
	case MainDivergenceIsMain:
		return "is_main"
	case MainDivergenceBoth:
		return "both"
	case MainDivergenceAhead:
		return "ahead"
	case MainDivergenceBehind:
		return "behind"
	default:
		return "none"
	}
}

// UpstreamDivergence mirrors MainDivergence for the upstream-tracking slot,
// with an extra InSync state for "remote exists, zero divergence".
type UpstreamDivergence int

const (
	UpstreamDivergenceNone UpstreamDivergence = iota
	UpstreamDivergenceInSync
	UpstreamDivergenceAhead
	UpstreamDivergenceBehind
	UpstreamDivergenceBoth
)

func (d UpstreamDivergence) Glyph() string {
	switch d {
	case UpstreamDivergenceInSync:
		return "|"
	case UpstreamDivergenceBoth:
		return "⇅"
	case UpstreamDivergenceAhead:
		return "⇡"
	case UpstreamDivergenceBehind:
		return "⇣"
	default:
		return ""
	}
}

func (d UpstreamDivergence) JSONName() string {
	switch d {
	case UpstreamDivergenceInSync:
		return "in_sync"
	case UpstreamDivergenceBoth:
		return "both"
	case UpstreamDivergenceAhead:
		return "ahead"
	case UpstreamDivergenceBehind:
		return "behind"
	default:
		return "none"
	}
}

// WorkingTreeGlyphs is the not-mutually-exclusive first slot: any subset of
// staged(+) modified(!) untracked(?) renamed(») deleted(✘) can be set.
type WorkingTreeGlyphs struct {
	Staged    bool
	Modified  bool
	Untracked bool
	Renamed   bool
	Deleted   bool
}

func (g WorkingTreeGlyphs) String() string {
	var b []byte
	if g.Staged {
		b = append(b, '+')
	}
	if g.Modified {
		b = append(b, '!')
	}
	if g.Untracked {
		b = append(b, '?')
	}
	if g.Renamed {
		b = append(b, []byte("»")...)
	}
	if g.Deleted {
		b = append(b, []byte("✘")...)
	}
	return string(b)
}

// StatusSymbols is the seven-slot structured status record
type StatusSymbols struct {
	WorkingTree WorkingTreeGlyphs
	Branch      BranchState
	Integration IntegrationReason
	Main        MainDivergence
	Upstream    UpstreamDivergence
	Worktree    WorktreeState
	UserMarker  string
}

// PositionMask records, per slot, the maximum visual width observed across
// all rows so the status cell renders as a grid with stable column
// positions
type PositionMask struct {
	WorkingTree int
	Branch      int
	Main        int
	Upstream    int
	Worktree    int
	UserMarker  int
}

// visualLen returns a status glyph's terminal column width. Nerd-font icon
// sets and some status glyphs (e.g. the renamed marker "»") render
// double-width in many terminals, so this goes through go-runewidth rather
// than a rune count.
func visualLen(s string) int {
	return runewidth.StringWidth(s)
}

// Observe widens the mask to fit ss, returning the (possibly unchanged) mask.
func (m PositionMask) Observe(ss StatusSymbols) PositionMask {
	grow := func(cur int, s string) int {
		if l := visualLen(s); l > cur {
			return l
		}
		return cur
	}
	m.WorkingTree = grow(m.WorkingTree, ss.WorkingTree.String())
	m.Branch = grow(m.Branch, ss.Branch.Glyph())
	m.Main = grow(m.Main, ss.Main.Glyph())
	m.Upstream = grow(m.Upstream, ss.Upstream.Glyph())
	m.Worktree = grow(m.Worktree, ss.Worktree.Glyph())
	m.UserMarker = grow(m.UserMarker, ss.UserMarker)
	return m
}

// Render lays ss out against mask, padding every slot on the right to the
// mask's width and separating slots with a single space, so that status
// cells form stable columns across rows.
func (ss StatusSymbols) Render(mask PositionMask) string {
	pad := func(s string, width int) string {
		if gap := width - visualLen(s); gap > 0 {
			s += strings.Repeat(" ", gap)
		}
		return s
	}
	slots := []string{
		pad(ss.WorkingTree.String(), mask.WorkingTree),
		pad(ss.Branch.Glyph(), mask.Branch),
		pad(ss.Main.Glyph(), mask.Main),
		pad(ss.Upstream.Glyph(), mask.Upstream),
		pad(ss.Worktree.Glyph(), mask.Worktree),
		pad(ss.UserMarker, mask.UserMarker),
	}
	out := ""
	for i, s := range slots {
		if i > 0 {
			out += " "
		}
		out += s
	}
	return out
}
