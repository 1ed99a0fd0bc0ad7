package gitrepo

import (
	"context"
	"strings"

	"github.com/worktrunk/worktrunk/internal/models"
)

// LocalBranch is one entry from `git branch --list`.
type LocalBranch struct {
	Name    string
	HeadSHA string
}

// ListLocalBranches lists every local branch with its tip SHA, via
// `for-each-ref refs/heads`.
func (r *Repository) ListLocalBranches(ctx context.Context) ([]LocalBranch, error) {
	out, err := r.run(ctx, []string{"for-each-ref", "--format=%(refname:short)\x1f%(objectname)", "refs/heads"})
	if err != nil {
		return nil, err
	}
	var branches []LocalBranch
	for _, line := range splitLines(out) {
		parts := strings.SplitN(line, "\x1f", 2)
		if len(parts) != 2 {
			continue
		}
		branches = append(branches, LocalBranch{Name: parts[0], HeadSHA: parts[1]})
	}
	return branches, nil
}

// PrimaryRemote returns the repository's single configured remote name
// ("origin" in the common case), or "" if none is configured.
func (r *Repository) PrimaryRemote(ctx context.Context) (string, error) {
	out, err := r.run(ctx, []string{"remote"})
	if err != nil {
		return "", err
	}
	remotes := splitLines(out)
	if len(remotes) == 0 {
		return "", nil
	}
	for _, name := range remotes {
		if name == "origin" {
			return "origin", nil
		}
	}
	return remotes[0], nil
}

// ListRemoteBranches lists every remote-tracking branch under remote (e.g.
// "origin") with its tip SHA, excluding the remote's own HEAD pointer.
func (r *Repository) ListRemoteBranches(ctx context.Context, remote string) ([]LocalBranch, error) {
	if remote == "" {
		return nil, nil
	}
	out, err := r.run(ctx, []string{"for-each-ref", "--format=%(refname:short)\x1f%(objectname)", "refs/remotes/" + remote})
	if err != nil {
		return nil, err
	}
	var branches []LocalBranch
	headRef := remote + "/HEAD"
	for _, line := range splitLines(out) {
		parts := strings.SplitN(line, "\x1f", 2)
		if len(parts) != 2 || parts[0] == headRef {
			continue
		}
		branches = append(branches, LocalBranch{Name: parts[0], HeadSHA: parts[1]})
	}
	return branches, nil
}

// BranchesWithoutWorktrees filters branches (as returned by ListLocalBranches)
// down to those with no entry in worktrees.
func BranchesWithoutWorktrees(branches []LocalBranch, worktrees []models.WorktreeDescriptor) []LocalBranch {
	inUse := make(map[string]bool, len(worktrees))
	for _, wt := range worktrees {
		if wt.Branch != "" {
			inUse[wt.Branch] = true
		}
	}
	var out []LocalBranch
	for _, b := range branches {
		if !inUse[b.Name] {
			out = append(out, b)
		}
	}
	return out
}

// RemoteBranchesWithoutLocalWorktrees filters remote branches (named
// "<remote>/<name>") down to those whose local counterpart has no worktree,
// skipping any remote entry that doesn't carry the expected prefix.
func RemoteBranchesWithoutLocalWorktrees(remoteBranches []LocalBranch, remote string, worktrees []models.WorktreeDescriptor) []LocalBranch {
	inUse := make(map[string]bool, len(worktrees))
	for _, wt := range worktrees {
		if wt.Branch != "" {
			inUse[wt.Branch] = true
		}
	}
	prefix := remote + "/"
	var out []LocalBranch
	for _, b := range remoteBranches {
		local, ok := strings.CutPrefix(b.Name, prefix)
		if !ok || inUse[local] {
			continue
		}
		out = append(out, b)
	}
	return out
}
