package worktreeops

import (
	"context"

	"github.com/worktrunk/worktrunk/internal/config"
	"github.com/worktrunk/worktrunk/internal/executor"
	"github.com/worktrunk/worktrunk/internal/gitrepo"
	"github.com/worktrunk/worktrunk/internal/hooks"
	"github.com/worktrunk/worktrunk/internal/output"
	"github.com/worktrunk/worktrunk/internal/template"
	"github.com/worktrunk/worktrunk/internal/werrors"
)

// CreateOptions configures CreateWorktree.
type CreateOptions struct {
	Branch  string
	Base    string // defaults to the repository's default branch
	Path    string // computed from PathFor if empty
	Execute string // optional command run via the EXEC directive
	Force   bool   // skips approval prompts for hook commands
	NoVerify bool  // skips post-create and post-start hooks entirely

	WorktreeDir    string
	BranchTemplate string
}

// CreateWorktree validates branch/path, creates the worktree via `git
// worktree add`, then runs post-create hooks synchronously (fail-fast) and
// post-start hooks detached, and finally emits the CD (and optional EXEC)
// directives for the shell wrapper.
func CreateWorktree(ctx context.Context, repo *gitrepo.Repository, opts CreateOptions, dispatcher hooks.Dispatcher, vars template.Variables, out *output.Context) error {
	path := opts.Path
	if path == "" {
		var err error
		path, err = PathFor(opts.WorktreeDir, opts.BranchTemplate, opts.Branch, vars)
		if err != nil {
			return err
		}
	}

	if err := repo.AddWorktree(ctx, opts.Branch, path, opts.Base); err != nil {
		return err
	}

	vars.Branch = opts.Branch
	vars.WorktreePath = path
	vars.Base = opts.Base

	out.Progress("created worktree for %s at %s", opts.Branch, path)

	if opts.NoVerify {
		out.Warn("skipping post-create and post-start hooks (--no-verify)")
	} else {
		if err := dispatcher.Run(ctx, "post_create", opts.Branch, path, vars); err != nil {
			return werrors.Wrap(werrors.KindHookCommandFailed, "post-create hooks failed", err)
		}
		if err := dispatcher.Run(ctx, "post_start", opts.Branch, path, vars); err != nil {
			out.Warn("post-start hooks: %v", err)
		}
	}

	out.CD(path)
	if opts.Execute != "" {
		out.Exec(opts.Execute)
	}
	out.IntegrationHint(`eval "$(wt shell-init $(basename "$SHELL"))"`)
	return nil
}

// ApproverFor builds the executor.Approve callback CreateWorktree's
// dispatcher should use, gating project-sourced hook commands against the
// project's approval store.
func ApproverFor(a *executor.Approver, projectApprovals config.ApprovalList) func(executor.PreparedCommand) error {
	return func(pc executor.PreparedCommand) error {
		return a.Approve(projectApprovals, executor.SourceProject, pc)
	}
}
