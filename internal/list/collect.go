// Package list implements the progressive worktree/branch status table:
// a skeleton render, followed by concurrent per-row git probes streamed
// back as typed cell updates, drained into a single render loop.
package list

import (
	"context"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/pool"

	"github.com/worktrunk/worktrunk/internal/ci"
	"github.com/worktrunk/worktrunk/internal/config"
	"github.com/worktrunk/worktrunk/internal/gitrepo"
	"github.com/worktrunk/worktrunk/internal/models"
	"github.com/worktrunk/worktrunk/internal/status"
)

// UpdateKind discriminates CellUpdate's payload, following the same
// "one flat struct, unused fields per variant" shape as
// executor.PreparedCommand and werrors.Error.
type UpdateKind int

const (
	UpdateCommitDetails UpdateKind = iota
	UpdateAheadBehind
	UpdateBranchDiff
	UpdateWorkingTreeDiff
	UpdateMergeTreeConflicts
	UpdateWorktreeState
	UpdateUserStatus
	UpdateUpstream
	UpdateCIStatus
	UpdateIntegration
)

// CellUpdate is one completed git probe for one row, sent on the shared
// collection channel as soon as it finishes so the drain loop can apply it
// and re-render that row without waiting on the rest of the row's probes.
type CellUpdate struct {
	Row  int
	Kind UpdateKind

	Commit                models.CommitDetails
	AheadBehind           models.AheadBehind
	BranchDiff            *models.LineDiff // nil Value == deliberately skipped (e.g. main worktree)
	WorkingDiff           models.LineDiff
	WorkingDiffVsMain     *models.LineDiff
	WorkingTreeStatus     models.WorkingTreeStatus
	HasConflicts          bool
	HasMergeTreeConflicts bool
	GitOp                 models.GitOpState
	UserMarker            string
	Upstream              models.UpstreamStatus
	CI                    models.CIStatus
	Integration           models.IntegrationFlags
}

// Options configures which optional, costlier probes a collection run
// performs.
type Options struct {
	FetchCI                 bool
	CheckMergeTreeConflicts bool
}

// RowSource is the identity of one row to collect: a worktree (Path set)
// or a branch without a worktree (Path empty).
type RowSource struct {
	Kind   models.ItemKind
	Head   string
	Branch string
	Path   string
	IsMain bool
}

// Collect fans out one goroutine per row on a bounded work-stealing pool,
// each row running its own small scoped group of independent git probes,
// and returns a channel of CellUpdate that closes once every row's every
// probe has completed or been skipped. repo should be rooted at the main
// worktree; per-row probes that need a different cwd clone it.
func Collect(ctx context.Context, repo *gitrepo.Repository, sources []RowSource, defaultBranch string, opts Options, ciCache *ci.Cache) <-chan CellUpdate {
	out := make(chan CellUpdate, len(sources)*9)

	go func() {
		defer close(out)
		p := pool.New().WithMaxGoroutines(maxGoroutines(len(sources)))
		for i, src := range sources {
			i, src := i, src
			p.Go(func() {
				collectRow(ctx, repo, i, src, defaultBranch, opts, ciCache, out)
			})
		}
		p.Wait()
	}()

	return out
}

func maxGoroutines(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// collectRow runs one row's probes as a scoped concurrent group: each
// probe sends its own CellUpdate independently, so a slow probe (CI) never
// blocks a fast one (ahead/behind) from reaching the drain loop.
func collectRow(ctx context.Context, repo *gitrepo.Repository, row int, src RowSource, defaultBranch string, opts Options, ciCache *ci.Cache, out chan<- CellUpdate) {
	var wg conc.WaitGroup
	isWorktree := src.Kind == models.KindWorktree

	wg.Go(func() {
		ts, err := repo.CommitTimestamp(ctx, src.Head)
		if err != nil {
			return
		}
		headline, err := repo.CommitMessageHeadline(ctx, src.Head)
		if err != nil {
			return
		}
		out <- CellUpdate{Row: row, Kind: UpdateCommitDetails, Commit: models.CommitDetails{Timestamp: ts, MessageHeadline: headline}}
	})

	if !src.IsMain && src.Branch != "" {
		wg.Go(func() {
			ab, err := repo.AheadBehind(ctx, src.Head, defaultBranch)
			if err != nil {
				return
			}
			out <- CellUpdate{Row: row, Kind: UpdateAheadBehind, AheadBehind: ab}
		})

		wg.Go(func() {
			d, err := repo.BranchDiffStat(ctx, defaultBranch, src.Head)
			if err != nil {
				return
			}
			out <- CellUpdate{Row: row, Kind: UpdateBranchDiff, BranchDiff: &d}
		})

		if opts.CheckMergeTreeConflicts {
			wg.Go(func() {
				conflicts, err := repo.WouldConflict(ctx, defaultBranch, src.Head)
				if err != nil {
					return
				}
				out <- CellUpdate{Row: row, Kind: UpdateMergeTreeConflicts, HasMergeTreeConflicts: conflicts}
			})
		}

		wg.Go(func() {
			flags, ok := collectIntegration(ctx, repo, defaultBranch, src.Head)
			if !ok {
				return
			}
			out <- CellUpdate{Row: row, Kind: UpdateIntegration, Integration: flags}
		})
	} else {
		// Main worktree, or a row with no resolvable branch: ahead/behind and
		// branch-diff vs. the default branch don't apply. BranchDiff still
		// gets an update so the drain loop can mark it "loaded but skipped"
		// (Maybe[*LineDiff] with a nil Value) rather than leaving it
		// perpetually "not yet collected".
		out <- CellUpdate{Row: row, Kind: UpdateBranchDiff, BranchDiff: nil}
	}

	wg.Go(func() {
		marker, err := config.UserMarker(repo.Dir(), src.Branch)
		if err != nil || marker == "" {
			return
		}
		out <- CellUpdate{Row: row, Kind: UpdateUserStatus, UserMarker: marker}
	})

	if src.Branch != "" {
		wg.Go(func() {
			upstreamRef, err := repo.UpstreamBranch(ctx, src.Branch)
			if err != nil || upstreamRef == "" {
				return
			}
			ab, err := repo.AheadBehind(ctx, src.Head, upstreamRef)
			if err != nil {
				return
			}
			out <- CellUpdate{Row: row, Kind: UpdateUpstream, Upstream: models.UpstreamStatus{Remote: upstreamRef, AheadBehind: ab}}
		})
	}

	if opts.FetchCI && ciCache != nil && src.Branch != "" {
		wg.Go(func() {
			ciStatus, err := ciCache.Status(ctx, src.Branch, src.Head)
			if err != nil {
				return
			}
			out <- CellUpdate{Row: row, Kind: UpdateCIStatus, CI: ciStatus}
		})
	}

	if isWorktree {
		wg.Go(func() {
			wt := repo.Clone(src.Path)
			st, err := wt.WorkingTreeStatus(ctx, src.Path)
			if err != nil {
				return
			}
			workingDiff, err := wt.WorkingDiffStat(ctx, src.Path)
			if err != nil {
				workingDiff = models.LineDiff{}
			}
			var vsMain *models.LineDiff
			if !src.IsMain {
				if d, err := wt.WorkingDiffStatVsRef(ctx, src.Path, defaultBranch); err == nil {
					vsMain = &d
				}
			}
			out <- CellUpdate{
				Row:         row,
				Kind:        UpdateWorkingTreeDiff,
				WorkingDiff: workingDiff,
				WorkingDiffVsMain: vsMain,
				WorkingTreeStatus: models.WorkingTreeStatus{
					Staged:    st.Staged,
					Modified:  st.Modified,
					Untracked: st.Untracked,
					Renamed:   st.Renamed,
					Deleted:   st.Deleted,
				},
				HasConflicts: st.Staged && st.Modified, // conflicted entries show as both staged and unmerged in porcelain
			}
		})

		wg.Go(func() {
			state := repo.DetectGitOp(ctx, src.Path)
			out <- CellUpdate{Row: row, Kind: UpdateWorktreeState, GitOp: state}
		})
	}

	wg.Wait()
}

// collectIntegration computes the four predicates that decide whether
// branch is already integrated into defaultBranch: ancestry, matching
// committed trees, whether the three-dot diff has any file changes, and
// whether a merge would add nothing new. ok is false if any underlying
// probe failed, so the caller can skip sending a half-computed update.
func collectIntegration(ctx context.Context, repo *gitrepo.Repository, defaultBranch, branch string) (models.IntegrationFlags, bool) {
	isAncestor := repo.IsAncestor(ctx, branch, defaultBranch)

	branchTree, err := repo.TreeOf(ctx, branch)
	if err != nil {
		return models.IntegrationFlags{}, false
	}
	mainTree, err := repo.TreeOf(ctx, defaultBranch)
	if err != nil {
		return models.IntegrationFlags{}, false
	}
	treesMatch := branchTree == mainTree

	diff, err := repo.BranchDiffStat(ctx, defaultBranch, branch)
	if err != nil {
		return models.IntegrationFlags{}, false
	}
	hasFileChanges := diff.Added > 0 || diff.Deleted > 0

	addsNothing, err := repo.MergeTreeWouldAddNothing(ctx, defaultBranch, branch)
	if err != nil {
		return models.IntegrationFlags{}, false
	}

	return models.IntegrationFlags{
		IsAncestor:           isAncestor,
		CommittedTreesMatch:  treesMatch,
		HasFileChanges:       hasFileChanges,
		WouldMergeAddNothing: addsNothing,
	}, true
}

// rowConflictState tracks the two transient conflict probes
// (working-tree conflicts, merge-tree conflicts) per row: they feed branch-
// state derivation but aren't themselves ListItem fields, so the drain loop
// keeps them alongside the items it owns.
type rowConflictState struct {
	hasConflicts          []bool
	hasMergeTreeConflicts []bool
}

func newRowConflictState(n int) *rowConflictState {
	return &rowConflictState{hasConflicts: make([]bool, n), hasMergeTreeConflicts: make([]bool, n)}
}

// Apply folds one CellUpdate into items[u.Row] and returns the row's
// recomputed status symbols. It is idempotent: applying the same update
// twice, or applying updates out of order, converges to the same result,
// since every slot it touches is either overwritten outright or re-derived
// from scratch by status.Recompute.
func Apply(items []models.ListItem, st *rowConflictState, u CellUpdate) models.StatusSymbols {
	item := &items[u.Row]
	switch u.Kind {
	case UpdateCommitDetails:
		item.Commit = models.Loaded(u.Commit)
	case UpdateAheadBehind:
		item.MainAheadBehind = models.Loaded(u.AheadBehind)
	case UpdateBranchDiff:
		item.BranchDiff = models.Loaded(u.BranchDiff)
	case UpdateWorkingTreeDiff:
		item.WorkingDiff = models.Loaded(u.WorkingDiff)
		item.WorkingDiffVsMain = models.Loaded(u.WorkingDiffVsMain)
		item.WorkingTreeStatus = models.Loaded(u.WorkingTreeStatus)
		st.hasConflicts[u.Row] = u.HasConflicts
	case UpdateMergeTreeConflicts:
		st.hasMergeTreeConflicts[u.Row] = u.HasMergeTreeConflicts
	case UpdateWorktreeState:
		item.GitOp = u.GitOp
	case UpdateUserStatus:
		item.UserMarker = u.UserMarker
	case UpdateUpstream:
		item.Upstream = models.Loaded(u.Upstream)
	case UpdateCIStatus:
		item.CI = models.Loaded(u.CI)
	case UpdateIntegration:
		item.Integration = models.Loaded(u.Integration)
	}

	ss := status.Recompute(item, st.hasConflicts[u.Row])
	if st.hasMergeTreeConflicts[u.Row] && ss.Branch < models.BranchStateWouldConflict {
		ss.Branch = models.BranchStateWouldConflict
		item.Status = ss
	}
	return ss
}
