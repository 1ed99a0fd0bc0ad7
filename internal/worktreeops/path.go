// Package worktreeops implements target resolution and the switch,
// create, and remove operations: everything in the spec's "Switch and
// Remove" surface that isn't the merge pipeline or the progressive list.
package worktreeops

import (
	"context"
	"path/filepath"

	"github.com/worktrunk/worktrunk/internal/config"
	"github.com/worktrunk/worktrunk/internal/gitrepo"
	"github.com/worktrunk/worktrunk/internal/models"
	"github.com/worktrunk/worktrunk/internal/template"
)

// PathFor computes the worktree path a branch would live at under the
// configured layout: worktreeDir joined with the expanded branch-name
// template, both expanded in literal mode so no shell quoting is applied
// to a filesystem path. An empty branchTemplate defaults to the branch
// name itself (sanitized).
func PathFor(worktreeDir, branchTemplate, branch string, vars template.Variables) (string, error) {
	vars.Branch = branch
	dir, err := template.Expand(worktreeDir, vars, template.Literal)
	if err != nil {
		return "", err
	}
	if branchTemplate == "" {
		branchTemplate = "{{ branch|sanitize }}"
	}
	leaf, err := template.Expand(branchTemplate, vars, template.Literal)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, leaf), nil
}

// Resolver resolves a switch/remove target argument to a worktree,
// consulting the live worktree list and the git-config-backed history and
// hint state for the `-`, `@`, `^` shortcuts.
type Resolver struct {
	Repo           *gitrepo.Repository
	WorktreeDir    string
	BranchTemplate string
	Vars           template.Variables
	DefaultBranch  string
}

// Resolve maps an argument to a worktree descriptor among worktrees. S may
// be a shortcut (-, @, ^), a branch name, or a path. Resolution is
// path-first: the configured path template is computed for S as a branch
// name, and if any worktree in worktrees is rooted there it is targeted
// regardless of what branch it has checked out (this is how a user can
// `wt switch` into a worktree whose branch was renamed out from under the
// path convention).
func (r *Resolver) Resolve(ctx context.Context, s string, worktrees []models.WorktreeDescriptor) (*models.WorktreeDescriptor, error) {
	switch s {
	case "-":
		history, err := config.History(r.Repo.Dir())
		if err != nil || len(history) == 0 {
			return nil, notFoundError(s)
		}
		return r.Resolve(ctx, history[len(history)-1], worktrees)
	case "@":
		branch, err := r.Repo.CurrentBranch(ctx)
		if err != nil {
			return nil, err
		}
		return r.Resolve(ctx, branch, worktrees)
	case "^":
		return r.Resolve(ctx, r.DefaultBranch, worktrees)
	}

	if wt := findByPath(worktrees, s); wt != nil {
		return wt, nil
	}

	expected, err := PathFor(r.WorktreeDir, r.BranchTemplate, s, r.Vars)
	if err == nil {
		if wt := findByPath(worktrees, expected); wt != nil {
			return wt, nil
		}
	}

	for i := range worktrees {
		if worktrees[i].Branch == s {
			return &worktrees[i], nil
		}
	}
	return nil, notFoundError(s)
}

func findByPath(worktrees []models.WorktreeDescriptor, path string) *models.WorktreeDescriptor {
	clean := filepath.Clean(path)
	for i := range worktrees {
		if filepath.Clean(worktrees[i].Path) == clean {
			return &worktrees[i]
		}
	}
	return nil
}

func notFoundError(s string) error {
	return &notFound{target: s}
}

type notFound struct{ target string }

func (e *notFound) Error() string { return "no worktree or branch matches " + e.target }
