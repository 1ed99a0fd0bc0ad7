package worktreeops

import (
	"context"

	"github.com/worktrunk/worktrunk/internal/gitrepo"
	"github.com/worktrunk/worktrunk/internal/hooks"
	"github.com/worktrunk/worktrunk/internal/models"
	"github.com/worktrunk/worktrunk/internal/output"
	"github.com/worktrunk/worktrunk/internal/template"
	"github.com/worktrunk/worktrunk/internal/werrors"
)

// BranchDeletePolicy selects how RemoveWorktree decides whether to delete
// the victim's branch after the worktree itself is gone.
type BranchDeletePolicy int

const (
	// DeleteIfMerged is the default: delete only if the branch is an
	// ancestor of its target (i.e. fully merged).
	DeleteIfMerged BranchDeletePolicy = iota
	// DeleteAlways corresponds to `-D`: force-delete regardless of merge
	// state.
	DeleteAlways
	// DeleteNever corresponds to `--no-delete-branch`: keep the branch.
	DeleteNever
)

// RemoveOptions configures RemoveWorktree.
type RemoveOptions struct {
	Target        *models.WorktreeDescriptor
	DefaultBranch string
	MergeTarget   string // branch to check ancestry against for DeleteIfMerged
	Policy        BranchDeletePolicy
	Background    bool // spawn a detached cleanup instead of blocking
}

// RemoveWorktree enforces the remove preconditions (not main, clean
// working tree), runs pre-remove hooks in the victim worktree (fail-fast),
// CDs to the default-branch worktree first if the victim is current, then
// removes the worktree and conditionally deletes its branch.
//
// In background mode the whole sequence after the precondition checks is
// spawned as a single detached `wt remove --foreground` re-invocation
// logging to <git-common-dir>/wt-logs/<branch>-remove.log, matching the
// spec's "background mode spawns a detached cleanup" contract; the caller
// observes only whether the spawn itself succeeded.
func RemoveWorktree(ctx context.Context, repo *gitrepo.Repository, opts RemoveOptions, dispatcher hooks.Dispatcher, vars template.Variables, out *output.Context) error {
	wt := opts.Target
	if wt.Branch == opts.DefaultBranch {
		return werrors.New(werrors.KindCannotRemoveMain, "cannot remove the main worktree")
	}

	victimRepo := repo.Clone(wt.Path)
	dirty, err := victimRepo.HasUncommittedChanges(ctx)
	if err != nil {
		return err
	}
	if dirty {
		return werrors.New(werrors.KindUncommittedChanges, "worktree has uncommitted changes")
	}

	vars.Branch = wt.Branch
	vars.WorktreePath = wt.Path

	if opts.Background {
		return spawnDetachedRemove(repo, wt.Path, wt.Branch)
	}

	if err := dispatcher.Run(ctx, "pre_remove", wt.Branch, wt.Path, vars); err != nil {
		return werrors.Wrap(werrors.KindHookCommandFailed, "pre-remove hooks failed", err)
	}

	current, _ := repo.CurrentBranch(ctx)
	if current == wt.Branch {
		out.CD(vars.PrimaryWorktreePath)
	}

	if err := repo.RemoveWorktree(ctx, wt.Path, false); err != nil {
		return err
	}

	deleteBranch(ctx, repo, wt.Branch, opts, out)
	out.Success("removed worktree for %s", wt.Branch)
	return nil
}

func deleteBranch(ctx context.Context, repo *gitrepo.Repository, branch string, opts RemoveOptions, out *output.Context) {
	switch opts.Policy {
	case DeleteNever:
		return
	case DeleteAlways:
		if err := repo.DeleteBranch(ctx, branch, true); err != nil {
			out.Warn("failed to delete branch %s: %v", branch, err)
		}
	default:
		target := opts.MergeTarget
		if target == "" {
			target = opts.DefaultBranch
		}
		if repo.IsMerged(ctx, branch, target) {
			if err := repo.DeleteBranch(ctx, branch, false); err != nil {
				out.Warn("failed to delete merged branch %s: %v", branch, err)
			}
		}
	}
}

// spawnDetachedRemove backgrounds the remainder of the remove sequence as
// a single re-invocation of `wt remove --foreground` rooted at the victim
// worktree, so the whole cleanup (hooks, git worktree remove, branch
// delete) runs as one logged unit rather than splitting mid-sequence.
func spawnDetachedRemove(repo *gitrepo.Repository, worktreePath, branch string) error {
	logPath := repo.LogPath(branch, "remove")
	script := "wt remove --path " + shellQuotePath(worktreePath) + " --foreground"
	return gitrepo.DetachedSpawn(script, worktreePath, logPath, "")
}

func shellQuotePath(p string) string {
	return "'" + p + "'"
}
