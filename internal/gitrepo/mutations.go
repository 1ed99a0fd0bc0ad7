package gitrepo

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/worktrunk/worktrunk/internal/werrors"
)

// AddWorktree runs `git worktree add -b <branch> <path> <base>`, returning
// a typed PathOccupied or BranchAlreadyExists error on the common failure
// modes instead of the raw git stderr.
func (r *Repository) AddWorktree(ctx context.Context, branch, path, base string) error {
	if _, err := os.Stat(path); err == nil {
		return werrors.New(werrors.KindPathOccupied, fmt.Sprintf("worktree path %s already exists", path))
	}
	out, err := r.CombinedOutput(ctx, []string{"worktree", "add", "-b", branch, path, base}, r.dir)
	if err != nil {
		if strings.Contains(out, "already exists") {
			return werrors.New(werrors.KindBranchAlreadyExists, fmt.Sprintf("branch %q already exists", branch))
		}
		return werrors.Wrap(werrors.KindCreateFailed, "creating worktree", fmt.Errorf("%s", strings.TrimSpace(out)))
	}
	return nil
}

// RemoveWorktree runs `git worktree remove` on path, forcing removal when
// force is set (used after the caller has already verified the working
// tree is clean; force only bypasses git's own "has changes" guard for
// untracked files git doesn't otherwise see as dirty).
func (r *Repository) RemoveWorktree(ctx context.Context, path string, force bool) error {
	args := []string{"worktree", "remove"}
	if force {
		args = append(args, "--force")
	}
	args = append(args, path)
	out, err := r.CombinedOutput(ctx, args, r.dir)
	if err != nil {
		return werrors.Wrap(werrors.KindRemoveFailed, "removing worktree", fmt.Errorf("%s", strings.TrimSpace(out)))
	}
	return nil
}

// DeleteBranch deletes branch, forcing with -D when force is set.
func (r *Repository) DeleteBranch(ctx context.Context, branch string, force bool) error {
	flag := "-d"
	if force {
		flag = "-D"
	}
	_, err := r.run(ctx, []string{"branch", flag, branch})
	return err
}

// IsMerged reports whether branch is an ancestor of target (i.e. fully
// merged into it), used by the remove pipeline's default branch-deletion
// policy.
func (r *Repository) IsMerged(ctx context.Context, branch, target string) bool {
	return r.IsAncestor(ctx, branch, target)
}

// StageMode selects what `StageChanges` stages before a commit.
type StageMode int

const (
	StageNone StageMode = iota
	StageTracked
	StageAll
)

// StageChanges stages the working tree in cwd according to mode.
func (r *Repository) StageChanges(ctx context.Context, cwd string, mode StageMode) error {
	switch mode {
	case StageTracked:
		_, err := r.runIn(ctx, cwd, []string{"add", "-u"})
		return err
	case StageAll:
		_, err := r.runIn(ctx, cwd, []string{"add", "-A"})
		return err
	default:
		return nil
	}
}

// HasStagedChanges reports whether cwd has any staged changes.
func (r *Repository) HasStagedChanges(ctx context.Context, cwd string) (bool, error) {
	st, err := r.WorkingTreeStatus(ctx, cwd)
	if err != nil {
		return false, err
	}
	return st.Staged, nil
}

// Commit runs `git commit -m <message>` in cwd.
func (r *Repository) Commit(ctx context.Context, cwd, message string) error {
	out, err := r.CombinedOutput(ctx, []string{"commit", "-m", message}, cwd)
	if err != nil {
		return fmt.Errorf("committing: %s", strings.TrimSpace(out))
	}
	return nil
}

// ResetSoft runs `git reset --soft <ref>` in cwd, used by the squash step
// to collapse history onto the merge-base while keeping the tree intact.
func (r *Repository) ResetSoft(ctx context.Context, cwd, ref string) error {
	_, err := r.runIn(ctx, cwd, []string{"reset", "--soft", ref})
	return err
}

// HeadSHA returns the current commit SHA of cwd's HEAD.
func (r *Repository) HeadSHA(ctx context.Context, cwd string) (string, error) {
	out, err := r.runIn(ctx, cwd, []string{"rev-parse", "HEAD"})
	return strings.TrimSpace(out), err
}

// RebaseInProgress reports whether cwd's git directory shows a rebase
// stopped mid-flight (rebase-merge or rebase-apply), which Rebase consults
// to distinguish a conflict from any other rebase failure.
func (r *Repository) RebaseInProgress(ctx context.Context, cwd string) bool {
	out, err := r.runIn(ctx, cwd, []string{"rev-parse", "--git-path", "rebase-merge"})
	if err == nil {
		if _, statErr := os.Stat(strings.TrimSpace(out)); statErr == nil {
			return true
		}
	}
	out, err = r.runIn(ctx, cwd, []string{"rev-parse", "--git-path", "rebase-apply"})
	if err == nil {
		if _, statErr := os.Stat(strings.TrimSpace(out)); statErr == nil {
			return true
		}
	}
	return false
}

// Rebase runs `git rebase <onto>` in cwd. On failure it reports whether a
// conflict left the worktree mid-rebase so the caller can surface
// werrors.RebaseConflict with the captured output.
func (r *Repository) Rebase(ctx context.Context, cwd, onto string) (conflict bool, output string, err error) {
	out, runErr := r.CombinedOutput(ctx, []string{"rebase", onto}, cwd)
	if runErr == nil {
		return false, "", nil
	}
	if r.RebaseInProgress(ctx, cwd) {
		return true, out, runErr
	}
	return false, out, runErr
}

// AbortRebase runs `git rebase --abort` in cwd, best-effort cleanup after a
// caller decides not to leave the worktree mid-rebase.
func (r *Repository) AbortRebase(ctx context.Context, cwd string) {
	_, _ = r.runIn(ctx, cwd, []string{"rebase", "--abort"})
}

// FilesChangedBy lists the files that differ between from and to, via
// `diff --name-only`.
func (r *Repository) FilesChangedBy(ctx context.Context, cwd, from, to string) ([]string, error) {
	out, err := r.runIn(ctx, cwd, []string{"diff", "--name-only", from, to})
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

// DirtyFiles lists the files with any working-tree or index change in cwd.
func (r *Repository) DirtyFiles(ctx context.Context, cwd string) ([]string, error) {
	out, err := r.runIn(ctx, cwd, []string{"status", "--porcelain"})
	if err != nil {
		return nil, err
	}
	var files []string
	for _, line := range splitLines(out) {
		if len(line) > 3 {
			files = append(files, strings.TrimSpace(line[3:]))
		}
	}
	return files, nil
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}

// StashPush runs `git stash push --include-untracked -m <message>` in cwd
// and returns the stash reference it created, located by matching message
// against `stash list`.
func (r *Repository) StashPush(ctx context.Context, cwd, message string) (ref string, err error) {
	if _, err = r.runIn(ctx, cwd, []string{"stash", "push", "--include-untracked", "-m", message}); err != nil {
		return "", fmt.Errorf("stashing target worktree changes: %w", err)
	}
	out, err := r.runIn(ctx, cwd, []string{"stash", "list", "--format=%gd %gs"})
	if err != nil {
		return "", err
	}
	for _, line := range splitLines(out) {
		if strings.Contains(line, message) {
			fields := strings.SplitN(line, " ", 2)
			return fields[0], nil
		}
	}
	return "", fmt.Errorf("could not locate stash entry for %q", message)
}

// StashPop runs `git stash pop --quiet <ref>` in cwd.
func (r *Repository) StashPop(ctx context.Context, cwd, ref string) error {
	_, err := r.runIn(ctx, cwd, []string{"stash", "pop", "--quiet", ref})
	return err
}

// EnableUpdateInstead sets `receive.denyCurrentBranch = updateInstead` on
// the repository so a push to the currently checked-out branch in another
// worktree is allowed to update that worktree's index and working tree.
func (r *Repository) EnableUpdateInstead(ctx context.Context) error {
	_, err := r.run(ctx, []string{"config", "receive.denyCurrentBranch", "updateInstead"})
	return err
}

// PushFastForwardOnly pushes `HEAD:<target>` to the given remote
// (conventionally the repository's own git-common-dir, for pushing between
// worktrees of the same repository) using `--force-with-lease` semantics
// disabled: a plain push only succeeds if it fast-forwards. On rejection it
// parses the newer commits on target for werrors.NotFastForward.
func (r *Repository) PushFastForwardOnly(ctx context.Context, cwd, remote, target string) error {
	out, err := r.CombinedOutput(ctx, []string{"push", remote, "HEAD:" + target}, cwd)
	if err == nil {
		return nil
	}
	if strings.Contains(out, "non-fast-forward") || strings.Contains(out, "fetch first") || strings.Contains(out, "rejected") {
		newer, _ := r.run(ctx, []string{"log", "--oneline", "HEAD.." + target})
		return werrors.NotFastForward(splitLines(newer), false)
	}
	return werrors.Wrap(werrors.KindPushFailed, "pushing to "+target, fmt.Errorf("%s", strings.TrimSpace(out)))
}

// HasMergeCommits reports whether any commit reachable from head but not
// base is a merge commit, via `rev-list --merges --count`. The squash step
// assumes a linear run of commits since merge-base; a merge commit in that
// range means history was merged in mid-branch rather than rebased.
func (r *Repository) HasMergeCommits(ctx context.Context, base, head string) (bool, error) {
	out, err := r.run(ctx, []string{"rev-list", "--merges", "--count", base + ".." + head})
	if err != nil {
		return false, err
	}
	n, _ := strconv.Atoi(strings.TrimSpace(out))
	return n > 0, nil
}

// GenerateUniqueBranch appends an incrementing numeric suffix to base until
// the result doesn't already name an existing local branch.
func (r *Repository) GenerateUniqueBranch(ctx context.Context, base string) string {
	candidate := base
	for n := 2; r.localBranchExists(ctx, candidate); n++ {
		candidate = base + "-" + strconv.Itoa(n)
	}
	return candidate
}
