package cli

import (
	"context"

	"github.com/urfave/cli/v2"

	"github.com/worktrunk/worktrunk/internal/gitrepo"
	"github.com/worktrunk/worktrunk/internal/merge"
	"github.com/worktrunk/worktrunk/internal/werrors"
)

func mergeCommand() *cli.Command {
	return &cli.Command{
		Name:      "merge",
		Usage:     "merge the current worktree's branch into its target",
		ArgsUsage: "[target]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "no-squash", Usage: "keep individual commits instead of squashing"},
			&cli.BoolFlag{Name: "no-commit", Usage: "don't auto-commit staged changes before merging"},
			&cli.BoolFlag{Name: "no-remove", Usage: "keep the worktree and branch after merging"},
			&cli.BoolFlag{Name: "no-verify", Usage: "skip pre-commit, pre-merge, and post-merge hooks"},
			&cli.BoolFlag{Name: "force", Aliases: []string{"f"}, Usage: "skip approval prompts"},
			&cli.StringFlag{Name: "stage", Usage: "what to stage before auto-commit: none, tracked, all", Value: "tracked"},
		},
		Action: func(c *cli.Context) error {
			rc := ctxFrom(c)
			defer rc.Out.End()
			ctx := context.Background()

			sourcePath := rc.Repo.Dir()
			branch, err := rc.Repo.CurrentBranch(ctx)
			if err != nil {
				return err
			}
			if branch == "" {
				return werrors.New(werrors.KindDetachedHEAD, "cannot merge from a detached HEAD")
			}

			worktrees, err := rc.Repo.ListWorktrees(ctx)
			if err != nil {
				return err
			}
			defaultBranch, err := rc.Repo.DefaultBranch(ctx)
			if err != nil {
				return err
			}
			vars := baseVariables(ctx, rc.Repo, worktrees, rc.Root, defaultBranch)

			target := c.Args().First()
			if target == "" {
				target = defaultBranch
			}
			var targetWorktreePath string
			for _, wt := range worktrees {
				if wt.Branch == target {
					targetWorktreePath = wt.Path
					break
				}
			}

			stage := gitrepo.StageTracked
			switch c.String("stage") {
			case "none":
				stage = gitrepo.StageNone
			case "all":
				stage = gitrepo.StageAll
			}

			approver := rc.approver(c.Bool("force"))
			p := &merge.Pipeline{
				Repo:           rc.Repo,
				UserHooks:      rc.UserConfig.Hooks,
				ProjectHooks:   rc.ProjectCfg.Hooks,
				Approver:       approver,
				ProjectApprove: rc.UserConfig.Approved[rc.ProjectID],
				Messages:       rc.Messages,
				Out:            rc.Out,
			}

			opts := merge.Options{
				Target:         target,
				Stage:          stage,
				NoVerify:       c.Bool("no-verify"),
				NoCommit:       c.Bool("no-commit"),
				NoSquash:       c.Bool("no-squash"),
				NoRemove:       c.Bool("no-remove"),
				Force:          c.Bool("force"),
			}
			return p.Run(ctx, sourcePath, branch, opts, targetWorktreePath, vars)
		},
	}
}
