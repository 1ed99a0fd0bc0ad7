package cli

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/worktrunk/worktrunk/internal/gitrepo"
	"github.com/worktrunk/worktrunk/internal/models"
	"github.com/worktrunk/worktrunk/internal/template"
)

// repoRoot locates the main worktree's path: the root a project config file
// and the %-based template variables are resolved against. Falls back to
// repo.Dir() (the worktree the process is actually running from) if the
// main worktree can't be determined.
func repoRoot(ctx context.Context, repo *gitrepo.Repository, worktrees []models.WorktreeDescriptor, defaultBranch string) string {
	if main := gitrepo.MainWorktree(worktrees, defaultBranch); main != nil {
		return main.Path
	}
	return repo.Dir()
}

// baseVariables builds the template.Variables common to every command
// invocation: repository identity, default branch, and the
// worktree_path_of_branch(...) lookup. Command-specific fields (Branch,
// Target, Base, ...) are layered on by the caller.
func baseVariables(ctx context.Context, repo *gitrepo.Repository, worktrees []models.WorktreeDescriptor, root, defaultBranch string) template.Variables {
	remote, _ := repo.PrimaryRemote(ctx)
	remoteURL := ""
	if remote != "" {
		if out, err := repo.CombinedOutput(ctx, []string{"remote", "get-url", remote}, root); err == nil {
			remoteURL = strings.TrimSpace(out)
		}
	}
	head, _ := repo.HeadSHA(ctx, root)
	short := head
	if len(short) > 7 {
		short = short[:7]
	}

	byBranch := make(map[string]string, len(worktrees))
	for _, wt := range worktrees {
		if wt.Branch != "" {
			byBranch[wt.Branch] = wt.Path
		}
	}

	return template.Variables{
		Repo:                filepath.Base(root),
		RepoPath:            root,
		DefaultBranch:       defaultBranch,
		PrimaryWorktreePath: root,
		Commit:              head,
		ShortCommit:         short,
		Remote:              remote,
		RemoteURL:           remoteURL,
		WorktreePathOf: func(branch string) string {
			return byBranch[branch]
		},
	}
}
