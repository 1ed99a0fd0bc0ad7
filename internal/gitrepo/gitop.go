package gitrepo

import (
	"context"
	"os"
	"strings"

	"github.com/worktrunk/worktrunk/internal/models"
)

// DetectGitOp reports whether cwd's git directory shows an in-progress
// rebase or merge, for the list engine's worktree-state cell.
func (r *Repository) DetectGitOp(ctx context.Context, cwd string) models.GitOpState {
	if r.RebaseInProgress(ctx, cwd) {
		return models.GitOpRebase
	}
	if out, err := r.runIn(ctx, cwd, []string{"rev-parse", "--git-path", "MERGE_HEAD"}); err == nil {
		if _, statErr := os.Stat(strings.TrimSpace(out)); statErr == nil {
			return models.GitOpMerge
		}
	}
	return models.GitOpNone
}

// WouldConflict reports whether merging branch into base would produce
// conflicts, via `git merge-tree --write-tree`: a non-zero exit means
// conflicting content, distinct from a clean merge that simply adds nothing
// new (see MergeTreeWouldAddNothing).
func (r *Repository) WouldConflict(ctx context.Context, base, branch string) (bool, error) {
	_, err := r.run(ctx, []string{"merge-tree", "--write-tree", base, branch})
	return err != nil, nil
}
