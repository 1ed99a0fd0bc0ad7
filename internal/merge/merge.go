// Package merge implements the `wt merge` pipeline: a strictly-ordered
// sequence of commit, squash, rebase, hook, and push steps that lands a
// worktree's branch onto its target and cleans up afterward.
package merge

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/worktrunk/worktrunk/internal/config"
	"github.com/worktrunk/worktrunk/internal/executor"
	"github.com/worktrunk/worktrunk/internal/gitrepo"
	"github.com/worktrunk/worktrunk/internal/hooks"
	"github.com/worktrunk/worktrunk/internal/output"
	"github.com/worktrunk/worktrunk/internal/template"
	"github.com/worktrunk/worktrunk/internal/werrors"
	"github.com/worktrunk/worktrunk/internal/worktreeops"
)

// MessageGenerator produces commit messages for the auto-commit and
// squash steps. The default implementation is deterministic; a
// configured LLM collaborator satisfies the same interface.
type MessageGenerator interface {
	CommitMessage(ctx context.Context, diff string) (string, error)
	SquashMessage(ctx context.Context, target string, subjects []string, diff string) (string, error)
}

// deterministicMessages is the no-LLM-configured fallback.
type deterministicMessages struct{}

func (deterministicMessages) CommitMessage(ctx context.Context, diff string) (string, error) {
	return "WIP: Auto-commit before merge", nil
}

func (deterministicMessages) SquashMessage(ctx context.Context, target string, subjects []string, diff string) (string, error) {
	return deterministicSquashMessage(target, subjects), nil
}

// deterministicSquashMessage builds "Squash commits from <target>\n\nCombined
// commits:\n- ..." with subjects listed oldest-first. subjects arrives
// newest-first (git log's default order), so this walks it in reverse.
func deterministicSquashMessage(target string, subjects []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Squash commits from %s\n\nCombined commits:\n", target)
	for i := len(subjects) - 1; i >= 0; i-- {
		fmt.Fprintf(&b, "- %s\n", subjects[i])
	}
	return b.String()
}

// Options configures one merge run. Target, if empty, resolves to the
// repository's default branch.
type Options struct {
	Target         string
	Stage          gitrepo.StageMode
	NoVerify       bool
	NoCommit       bool // skip the auto-commit step entirely (`wt merge --no-commit`)
	NoSquash       bool // skip the squash step entirely (`wt merge --no-squash`)
	NoRemove       bool
	ForceDelete    bool
	NoDeleteBranch bool
	Force          bool // skips approval prompts
}

// Pipeline holds the collaborators a merge run needs: the repository
// handle rooted at the source worktree, the composed hook configuration,
// the approval gate, and the commit-message generator.
type Pipeline struct {
	Repo           *gitrepo.Repository
	UserHooks      config.HookConfiguration
	ProjectHooks   config.HookConfiguration
	Approver       *executor.Approver
	ProjectApprove config.ApprovalList
	Messages       MessageGenerator
	Runner         executor.CommandRunner
	Out            *output.Context
}

func (p *Pipeline) messages() MessageGenerator {
	if p.Messages != nil {
		return p.Messages
	}
	return deterministicMessages{}
}

func (p *Pipeline) dispatcher() hooks.Dispatcher {
	return hooks.Dispatcher{
		Repo:          p.Repo,
		UserConfig:    p.UserHooks,
		ProjectConfig: p.ProjectHooks,
		Runner:        p.Runner,
		Announce:      func(hookType string, pc executor.PreparedCommand) { p.Out.Progress("%s: %s", hookType, pc.Name) },
	}
}

func (p *Pipeline) approve(pc executor.PreparedCommand) error {
	if p.Approver == nil {
		return nil
	}
	return p.Approver.Approve(p.ProjectApprove, executor.SourceProject, pc)
}

// Run executes the 11-step pipeline against the source worktree at
// sourcePath on branch, merging into opts.Target (or the default branch).
// targetWorktreePath is the path of the worktree with the target branch
// checked out, or "" if the target isn't checked out anywhere.
func (p *Pipeline) Run(ctx context.Context, sourcePath, branch string, opts Options, targetWorktreePath string, vars template.Variables) error {
	// 1. Preconditions.
	target := opts.Target
	if target == "" {
		var err error
		target, err = p.Repo.DefaultBranch(ctx)
		if err != nil {
			return err
		}
	}
	if branch == target {
		return werrors.New(werrors.KindInvalidRef, "cannot merge a branch into itself")
	}

	vars.Branch = branch
	vars.Target = target

	source := p.Repo.Clone(sourcePath)
	d := p.dispatcher()
	d.Approve = p.approve

	// 2. Batch approval.
	if err := p.batchApprove(ctx, vars); err != nil {
		return err
	}

	// 3. Commit.
	if !opts.NoCommit {
		if err := source.StageChanges(ctx, sourcePath, opts.Stage); err != nil {
			return err
		}
		staged, err := source.HasStagedChanges(ctx, sourcePath)
		if err != nil {
			return err
		}
		if err := p.runPreCommit(ctx, d, branch, sourcePath, vars, opts.NoVerify); err != nil {
			return err
		}
		if staged {
			diff, _ := source.CombinedOutput(ctx, []string{"diff", "--cached"}, sourcePath)
			msg, err := p.messages().CommitMessage(ctx, diff)
			if err != nil {
				return err
			}
			if err := source.Commit(ctx, sourcePath, msg); err != nil {
				return err
			}
		}
	}

	// 4. Squash.
	if !opts.NoSquash {
		if err := p.squash(ctx, source, sourcePath, branch, target, vars); err != nil {
			return err
		}
	}

	// 5. Rebase.
	conflict, out, err := source.Rebase(ctx, sourcePath, target)
	if err != nil {
		if conflict {
			return werrors.RebaseConflict(out)
		}
		return fmt.Errorf("rebase failed: %s", out)
	}

	// 6. Pre-merge hooks.
	if err := d.Run(ctx, "pre_merge", branch, sourcePath, vars); err != nil {
		return werrors.Wrap(werrors.KindHookCommandFailed, "pre-merge hooks failed", err)
	}

	// 7-9. Target autostash, push, autostash restore.
	if err := p.pushToTarget(ctx, source, sourcePath, branch, target, targetWorktreePath, vars); err != nil {
		return err
	}

	// 10. Cleanup.
	if !opts.NoRemove {
		p.cleanup(ctx, sourcePath, branch, target, opts)
	}

	// 11. Post-merge hooks.
	if err := d.Run(ctx, "post_merge", branch, sourcePath, vars); err != nil {
		p.Out.Warn("post-merge hooks: %v", err)
		return err
	}

	p.Out.Success("merged %s into %s", branch, target)
	return nil
}

// batchApprove collects every hook command the pipeline could run
// (pre-commit, pre-merge, post-merge) and presents them as one approval
// batch up front, per the spec's batch-approval step.
func (p *Pipeline) batchApprove(ctx context.Context, vars template.Variables) error {
	if p.Approver == nil {
		return nil
	}
	d := p.dispatcher()
	var all []executor.PreparedCommand
	for _, slot := range []string{"pre_commit", "pre_merge", "post_merge"} {
		cmds, err := d.Prepare(slot, vars)
		if err != nil {
			return err
		}
		all = append(all, cmds...)
	}
	if len(all) == 0 {
		return nil
	}
	return p.Approver.ApproveBatch(p.ProjectApprove, all)
}

// CommitStep runs the auto-commit step in isolation, for `wt step commit`:
// stage per mode, run pre-commit hooks (unless noVerify), and commit any
// resulting staged changes with a generated message.
func (p *Pipeline) CommitStep(ctx context.Context, sourcePath, branch string, stage gitrepo.StageMode, noVerify bool, vars template.Variables) error {
	source := p.Repo.Clone(sourcePath)
	if err := source.StageChanges(ctx, sourcePath, stage); err != nil {
		return err
	}
	staged, err := source.HasStagedChanges(ctx, sourcePath)
	if err != nil {
		return err
	}
	if err := p.runPreCommit(ctx, p.dispatcher(), branch, sourcePath, vars, noVerify); err != nil {
		return err
	}
	if !staged {
		return nil
	}
	diff, _ := source.CombinedOutput(ctx, []string{"diff", "--cached"}, sourcePath)
	msg, err := p.messages().CommitMessage(ctx, diff)
	if err != nil {
		return err
	}
	return source.Commit(ctx, sourcePath, msg)
}

// SquashStep runs the squash step in isolation, for `wt step squash`.
func (p *Pipeline) SquashStep(ctx context.Context, sourcePath, branch, target string, vars template.Variables) error {
	source := p.Repo.Clone(sourcePath)
	return p.squash(ctx, source, sourcePath, branch, target, vars)
}

func (p *Pipeline) runPreCommit(ctx context.Context, d hooks.Dispatcher, branch, sourcePath string, vars template.Variables, noVerify bool) error {
	if noVerify {
		p.Out.Warn("skipping pre-commit hooks (--no-verify)")
		return nil
	}
	if err := d.Run(ctx, "pre_commit", branch, sourcePath, vars); err != nil {
		return werrors.Wrap(werrors.KindHookCommandFailed, "pre-commit hooks failed", err)
	}
	return nil
}

// squash implements step 4: if there is more than one commit since
// merge-base, or one commit plus new staged changes already folded in by
// the commit step, collapse history onto merge-base with a safety backup.
func (p *Pipeline) squash(ctx context.Context, source *gitrepo.Repository, sourcePath, branch, target string, vars template.Variables) error {
	base, err := source.MergeBase(ctx, target, branch)
	if err != nil {
		return err
	}
	count, err := source.CountCommits(ctx, base, branch)
	if err != nil {
		return err
	}
	if count <= 1 {
		return nil // zero or one commit: nothing to squash
	}
	if merged, err := source.HasMergeCommits(ctx, base, branch); err == nil && merged {
		return werrors.New(werrors.KindMergeCommitsFound, "branch history contains merge commits; squash would discard them silently")
	}

	head, err := source.HeadSHA(ctx, sourcePath)
	if err != nil {
		return err
	}
	shortSHA, restoreCmd, err := source.SafetyBackup(ctx, branch, head)
	if err != nil {
		return err
	}
	p.Out.Progress("safety backup %s written; restore with `%s`", shortSHA, restoreCmd)

	diff, _ := source.CombinedOutput(ctx, []string{"diff", base, branch}, sourcePath)
	subjects, err := source.CommitSubjects(ctx, sourcePath, base, branch)
	if err != nil {
		return err
	}
	msg, err := p.messages().SquashMessage(ctx, target, subjects, diff)
	if err != nil {
		return err
	}
	if err := source.ResetSoft(ctx, sourcePath, base); err != nil {
		return err
	}
	if err := source.Commit(ctx, sourcePath, msg); err != nil {
		newHead, headErr := source.HeadSHA(ctx, sourcePath)
		if headErr == nil && newHead == base {
			p.Out.Progress("squash produced no net changes")
			return nil
		}
		return err
	}
	return nil
}

// pushToTarget implements steps 7-9: autostash the target worktree if it's
// dirty and the push wouldn't conflict with its dirty files, push
// fast-forward-only, then restore the autostash (non-fatal on failure).
func (p *Pipeline) pushToTarget(ctx context.Context, source *gitrepo.Repository, sourcePath, branch, target, targetWorktreePath string, vars template.Variables) error {
	var stashRef string
	if targetWorktreePath != "" {
		targetRepo := source.Clone(targetWorktreePath)
		dirty, err := targetRepo.HasUncommittedChanges(ctx)
		if err != nil {
			return err
		}
		if dirty {
			pushed, err := source.FilesChangedBy(ctx, sourcePath, target, branch)
			if err != nil {
				return err
			}
			dirtyFiles, err := targetRepo.DirtyFiles(ctx, targetWorktreePath)
			if err != nil {
				return err
			}
			if overlap := intersect(pushed, dirtyFiles); len(overlap) > 0 {
				return werrors.ConflictingChanges(overlap, targetWorktreePath)
			}
			message := fmt.Sprintf("worktrunk autostash::%s::%d::%d", branch, os.Getpid(), time.Now().UnixNano())
			ref, err := targetRepo.StashPush(ctx, targetWorktreePath, message)
			if err != nil {
				return err
			}
			stashRef = ref
		}
	}

	if err := source.EnableUpdateInstead(ctx); err != nil {
		return err
	}
	pushErr := source.PushFastForwardOnly(ctx, sourcePath, p.Repo.CommonDir(), target)

	if stashRef != "" {
		if err := source.Clone(targetWorktreePath).StashPop(ctx, targetWorktreePath, stashRef); err != nil {
			p.Out.Warn("failed to restore autostash %s in %s: %v", stashRef, targetWorktreePath, err)
		}
	}
	return pushErr
}

func (p *Pipeline) cleanup(ctx context.Context, sourcePath, branch, target string, opts Options) {
	policy := worktreeops.DeleteIfMerged
	switch {
	case opts.ForceDelete:
		policy = worktreeops.DeleteAlways
	case opts.NoDeleteBranch:
		policy = worktreeops.DeleteNever
	}
	if err := p.Repo.RemoveWorktree(ctx, sourcePath, false); err != nil {
		p.Out.Warn("failed to remove source worktree: %v", err)
		return
	}
	switch policy {
	case worktreeops.DeleteNever:
	case worktreeops.DeleteAlways:
		if err := p.Repo.DeleteBranch(ctx, branch, true); err != nil {
			p.Out.Warn("failed to delete branch %s: %v", branch, err)
		}
	default:
		if p.Repo.IsMerged(ctx, branch, target) {
			if err := p.Repo.DeleteBranch(ctx, branch, false); err != nil {
				p.Out.Warn("failed to delete merged branch %s: %v", branch, err)
			}
		}
	}
}

func intersect(a, b []string) []string {
	set := make(map[string]bool, len(a))
	for _, f := range a {
		set[f] = true
	}
	var out []string
	for _, f := range b {
		if set[f] {
			out = append(out, f)
		}
	}
	return out
}

