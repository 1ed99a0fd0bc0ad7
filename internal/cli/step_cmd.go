package cli

import (
	"context"

	"github.com/urfave/cli/v2"

	"github.com/worktrunk/worktrunk/internal/gitrepo"
	"github.com/worktrunk/worktrunk/internal/merge"
	"github.com/worktrunk/worktrunk/internal/werrors"
	"github.com/worktrunk/worktrunk/internal/worktreeops"
)

// stepCommand exposes each stage of the merge pipeline and each hook slot
// as its own subcommand, for scripting a merge by hand one step at a time.
func stepCommand() *cli.Command {
	return &cli.Command{
		Name:  "step",
		Usage: "run one step of the merge pipeline or one hook slot",
		Subcommands: []*cli.Command{
			stepCommitCommand(),
			stepSquashCommand(),
			stepPushCommand(),
			stepRebaseCommand(),
			stepHookCommand("post-create", "post_create"),
			stepHookCommand("post-start", "post_start"),
			stepHookCommand("pre-commit", "pre_commit"),
			stepHookCommand("pre-merge", "pre_merge"),
			stepHookCommand("post-merge", "post_merge"),
		},
	}
}

func stepContext(c *cli.Context) (rc *runContext, sourcePath, branch string, err error) {
	rc = ctxFrom(c)
	sourcePath = rc.Repo.Dir()
	branch, err = rc.Repo.CurrentBranch(context.Background())
	return
}

func stepPipeline(rc *runContext, force bool) *merge.Pipeline {
	return &merge.Pipeline{
		Repo:           rc.Repo,
		UserHooks:      rc.UserConfig.Hooks,
		ProjectHooks:   rc.ProjectCfg.Hooks,
		Approver:       rc.approver(force),
		ProjectApprove: rc.UserConfig.Approved[rc.ProjectID],
		Messages:       rc.Messages,
		Out:            rc.Out,
	}
}

func stepCommitCommand() *cli.Command {
	return &cli.Command{
		Name:  "commit",
		Usage: "stage and commit, running pre-commit hooks",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "force", Aliases: []string{"f"}, Usage: "skip approval prompts"},
			&cli.BoolFlag{Name: "no-verify", Usage: "skip pre-commit hooks"},
			&cli.StringFlag{Name: "stage", Value: "tracked", Usage: "what to stage: none, tracked, all"},
		},
		Action: func(c *cli.Context) error {
			rc, sourcePath, branch, err := stepContext(c)
			if err != nil {
				return err
			}
			defer rc.Out.End()
			ctx := context.Background()
			worktrees, err := rc.Repo.ListWorktrees(ctx)
			if err != nil {
				return err
			}
			defaultBranch, err := rc.Repo.DefaultBranch(ctx)
			if err != nil {
				return err
			}
			vars := baseVariables(ctx, rc.Repo, worktrees, rc.Root, defaultBranch)
			vars.Branch = branch

			stage := gitrepo.StageTracked
			switch c.String("stage") {
			case "none":
				stage = gitrepo.StageNone
			case "all":
				stage = gitrepo.StageAll
			}
			p := stepPipeline(rc, c.Bool("force"))
			return p.CommitStep(ctx, sourcePath, branch, stage, c.Bool("no-verify"), vars)
		},
	}
}

func stepSquashCommand() *cli.Command {
	return &cli.Command{
		Name:      "squash",
		Usage:     "collapse commits since merge-base onto a safety backup",
		ArgsUsage: "[target]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "force", Aliases: []string{"f"}, Usage: "skip approval prompts"},
			&cli.BoolFlag{Name: "no-verify", Usage: "unused, accepted for parity with `wt merge`"},
			&cli.StringFlag{Name: "stage", Value: "tracked", Usage: "unused, accepted for parity with `wt merge`"},
		},
		Action: func(c *cli.Context) error {
			rc, sourcePath, branch, err := stepContext(c)
			if err != nil {
				return err
			}
			defer rc.Out.End()
			ctx := context.Background()
			worktrees, err := rc.Repo.ListWorktrees(ctx)
			if err != nil {
				return err
			}
			defaultBranch, err := rc.Repo.DefaultBranch(ctx)
			if err != nil {
				return err
			}
			vars := baseVariables(ctx, rc.Repo, worktrees, rc.Root, defaultBranch)
			vars.Branch = branch

			target := c.Args().First()
			if target == "" {
				target = defaultBranch
			}
			vars.Target = target

			p := stepPipeline(rc, c.Bool("force"))
			return p.SquashStep(ctx, sourcePath, branch, target, vars)
		},
	}
}

func stepPushCommand() *cli.Command {
	return &cli.Command{
		Name:      "push",
		Usage:     "push the current branch fast-forward-only onto target",
		ArgsUsage: "[target]",
		Action: func(c *cli.Context) error {
			rc, sourcePath, _, err := stepContext(c)
			if err != nil {
				return err
			}
			defer rc.Out.End()
			ctx := context.Background()
			defaultBranch, err := rc.Repo.DefaultBranch(ctx)
			if err != nil {
				return err
			}
			target := c.Args().First()
			if target == "" {
				target = defaultBranch
			}
			if err := rc.Repo.EnableUpdateInstead(ctx); err != nil {
				return err
			}
			return rc.Repo.PushFastForwardOnly(ctx, sourcePath, rc.Repo.CommonDir(), target)
		},
	}
}

func stepRebaseCommand() *cli.Command {
	return &cli.Command{
		Name:      "rebase",
		Usage:     "rebase the current branch onto target",
		ArgsUsage: "[target]",
		Action: func(c *cli.Context) error {
			rc, sourcePath, _, err := stepContext(c)
			if err != nil {
				return err
			}
			defer rc.Out.End()
			ctx := context.Background()
			defaultBranch, err := rc.Repo.DefaultBranch(ctx)
			if err != nil {
				return err
			}
			target := c.Args().First()
			if target == "" {
				target = defaultBranch
			}
			conflict, out, err := rc.Repo.Rebase(ctx, sourcePath, target)
			if err != nil {
				if conflict {
					return werrors.RebaseConflict(out)
				}
				return err
			}
			rc.Out.Success("rebased onto %s", target)
			return nil
		},
	}
}

// stepHookCommand builds a thin subcommand that runs exactly one hook
// slot in the current worktree, for scripting a merge or create sequence
// by hand.
func stepHookCommand(name, hookType string) *cli.Command {
	return &cli.Command{
		Name:  name,
		Usage: "run the " + hookType + " hooks",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "force", Aliases: []string{"f"}, Usage: "skip approval prompts"},
		},
		Action: func(c *cli.Context) error {
			rc, sourcePath, branch, err := stepContext(c)
			if err != nil {
				return err
			}
			defer rc.Out.End()
			ctx := context.Background()
			worktrees, err := rc.Repo.ListWorktrees(ctx)
			if err != nil {
				return err
			}
			defaultBranch, err := rc.Repo.DefaultBranch(ctx)
			if err != nil {
				return err
			}
			vars := baseVariables(ctx, rc.Repo, worktrees, rc.Root, defaultBranch)
			vars.Branch = branch

			d := rc.dispatcher()
			approver := rc.approver(c.Bool("force"))
			d.Approve = worktreeops.ApproverFor(approver, rc.UserConfig.Approved[rc.ProjectID])
			return d.Run(ctx, hookType, branch, sourcePath, vars)
		},
	}
}
