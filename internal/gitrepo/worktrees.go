package gitrepo

import (
	"context"
	"strings"

	"github.com/worktrunk/worktrunk/internal/models"
)

// ListWorktrees parses `git worktree list --porcelain -z` into descriptors,
// carrying locked/prunable reasons verbatim.
func (r *Repository) ListWorktrees(ctx context.Context) ([]models.WorktreeDescriptor, error) {
	out, err := r.run(ctx, []string{"worktree", "list", "--porcelain", "-z"})
	if err != nil {
		return nil, err
	}
	return parseWorktreePorcelain(out), nil
}

// parseWorktreePorcelain parses -z output by regrouping fields at each new
// "worktree " line, since a record's field count varies (locked/prunable
// are optional) and NUL-termination alone doesn't mark record boundaries.
func parseWorktreePorcelain(raw string) []models.WorktreeDescriptor {
	var items []models.WorktreeDescriptor
	var cur *models.WorktreeDescriptor

	fields := strings.Split(raw, "\x00")
	for _, f := range fields {
		if f == "" {
			continue
		}
		switch {
		case strings.HasPrefix(f, "worktree "):
			if cur != nil {
				items = append(items, *cur)
			}
			cur = &models.WorktreeDescriptor{Path: strings.TrimPrefix(f, "worktree ")}
		case cur == nil:
			continue
		case strings.HasPrefix(f, "HEAD "):
			cur.HeadSHA = strings.TrimPrefix(f, "HEAD ")
		case strings.HasPrefix(f, "branch "):
			cur.Branch = strings.TrimPrefix(strings.TrimPrefix(f, "branch "), "refs/heads/")
		case f == "bare":
			cur.Bare = true
		case f == "detached":
			cur.Detached = true
		case strings.HasPrefix(f, "locked"):
			cur.IsLocked = true
			cur.LockedReason = strings.TrimSpace(strings.TrimPrefix(f, "locked"))
		case strings.HasPrefix(f, "prunable"):
			cur.IsPrunable = true
			cur.PrunableReason = strings.TrimSpace(strings.TrimPrefix(f, "prunable"))
		}
	}
	if cur != nil {
		items = append(items, *cur)
	}
	return items
}

// MainWorktree picks the worktree whose branch equals the default branch,
// falling back to the worktree git reports first (primary) when no branch
// matches (e.g. the default branch has no worktree of its own — should not
// normally happen, but the repository may be mid-migration).
func MainWorktree(worktrees []models.WorktreeDescriptor, defaultBranch string) *models.WorktreeDescriptor {
	for i := range worktrees {
		if worktrees[i].Branch == defaultBranch {
			return &worktrees[i]
		}
	}
	if len(worktrees) > 0 {
		return &worktrees[0]
	}
	return nil
}
