package worktreeops

import (
	"context"

	"github.com/worktrunk/worktrunk/internal/config"
	"github.com/worktrunk/worktrunk/internal/gitrepo"
	"github.com/worktrunk/worktrunk/internal/models"
	"github.com/worktrunk/worktrunk/internal/output"
)

// Switch records the current branch as history and emits a CD directive to
// target's path. It never mutates the working tree itself: switching is a
// shell-level `cd`, performed by the wrapper that reads the directive.
func Switch(ctx context.Context, repo *gitrepo.Repository, target *models.WorktreeDescriptor, out *output.Context) error {
	if current, err := repo.CurrentBranch(ctx); err == nil && current != "" {
		_ = config.AppendHistory(repo.Dir(), current)
	}
	out.CD(target.Path)
	out.IntegrationHint(`eval "$(wt shell-init $(basename "$SHELL"))"`)
	return nil
}
