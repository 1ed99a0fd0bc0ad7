// Package status derives a row's StatusSymbols from whatever cells of its
// ListItem have been filled in so far. Recompute is idempotent: calling it
// twice with the same ListItem yields byte-identical StatusSymbols,
// regardless of the order update senders filled the row in.
package status

import "github.com/worktrunk/worktrunk/internal/models"

// DeriveBranchState applies this priority order:
// Conflicts > Rebase-in-progress > Merge-in-progress > WouldConflict >
// SameCommit > Integrated(reason) > None.
// WouldConflict comes from the merge-tree probe, which is not a ListItem
// field, so this function never returns it; list.Apply raises the result
// to WouldConflict when that probe reports conflicts.
func DeriveBranchState(item *models.ListItem, hasConflicts bool) models.BranchState {
	switch {
	case hasConflicts:
		return models.BranchStateConflicts
	case item.GitOp == models.GitOpRebase:
		return models.BranchStateRebasing
	case item.GitOp == models.GitOpMerge:
		return models.BranchStateMerging
	}
	if item.Integration.Loaded {
		f := item.Integration.Value
		switch {
		case f.IsAncestor && !f.HasFileChanges:
			return models.BranchStateSameCommit
		case f.IsAncestor || f.CommittedTreesMatch || !f.HasFileChanges || f.WouldMergeAddNothing:
			return models.BranchStateIntegrated
		}
	}
	return models.BranchStateNone
}

// IntegrationReasonFor picks the tagged reason, checked in
// the order TreesMatch, NoAddedChanges, MergeAddsNothing.
func IntegrationReasonFor(f models.IntegrationFlags) models.IntegrationReason {
	switch {
	case f.CommittedTreesMatch:
		return models.IntegrationTreesMatch
	case !f.HasFileChanges:
		return models.IntegrationNoAddedChanges
	case f.WouldMergeAddNothing:
		return models.IntegrationMergeAddsNothing
	default:
		return models.IntegrationNone
	}
}

// DeriveWorktreeState applies PathMismatch > Prunable > Locked > Branch >
// None.
func DeriveWorktreeState(item *models.ListItem) models.WorktreeState {
	switch {
	case item.Kind == models.KindBranch:
		return models.WorktreeStateBranchOnly
	case item.PathMismatch:
		return models.WorktreeStatePathMismatch
	case item.Prunable:
		return models.WorktreeStatePrunable
	case item.Locked:
		return models.WorktreeStateLocked
	default:
		return models.WorktreeStateNone
	}
}

// DeriveMainDivergence computes the main-divergence slot from ahead/behind
// counts versus the default branch, special-casing the main worktree.
func DeriveMainDivergence(item *models.ListItem) models.MainDivergence {
	if item.IsMain {
		return models.MainDivergenceIsMain
	}
	if !item.MainAheadBehind.Loaded {
		return models.MainDivergenceNone
	}
	ab := item.MainAheadBehind.Value
	switch {
	case ab.Ahead > 0 && ab.Behind > 0:
		return models.MainDivergenceBoth
	case ab.Ahead > 0:
		return models.MainDivergenceAhead
	case ab.Behind > 0:
		return models.MainDivergenceBehind
	default:
		return models.MainDivergenceNone
	}
}

// DeriveUpstreamDivergence computes the upstream-tracking slot, synthesizing
// InSync when a remote exists with zero divergence.
func DeriveUpstreamDivergence(item *models.ListItem) models.UpstreamDivergence {
	if !item.Upstream.Loaded {
		return models.UpstreamDivergenceNone
	}
	up := item.Upstream.Value
	if up.Remote == "" {
		return models.UpstreamDivergenceNone
	}
	switch {
	case up.Ahead > 0 && up.Behind > 0:
		return models.UpstreamDivergenceBoth
	case up.Ahead > 0:
		return models.UpstreamDivergenceAhead
	case up.Behind > 0:
		return models.UpstreamDivergenceBehind
	default:
		return models.UpstreamDivergenceInSync
	}
}

// Recompute derives item.Status from item's current fields. hasConflicts
// comes from the working-tree probe, since that is not modeled as a
// ListItem field (it is a transient probe result folded directly into the
// branch-state slot).
func Recompute(item *models.ListItem, hasConflicts bool) models.StatusSymbols {
	ss := models.StatusSymbols{
		UserMarker: item.UserMarker,
		Worktree:   DeriveWorktreeState(item),
		Main:       DeriveMainDivergence(item),
		Upstream:   DeriveUpstreamDivergence(item),
	}
	ss.Branch = DeriveBranchState(item, hasConflicts)
	if item.Integration.Loaded {
		ss.Integration = IntegrationReasonFor(item.Integration.Value)
	}
	if item.WorkingTreeStatus.Loaded {
		st := item.WorkingTreeStatus.Value
		ss.WorkingTree = models.WorkingTreeGlyphs{
			Staged:    st.Staged,
			Modified:  st.Modified,
			Untracked: st.Untracked,
			Renamed:   st.Renamed,
			Deleted:   st.Deleted,
		}
	}
	item.Status = ss
	return ss
}
