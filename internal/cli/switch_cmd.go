package cli

import (
	"context"
	"errors"

	"github.com/urfave/cli/v2"

	"github.com/worktrunk/worktrunk/internal/werrors"
	"github.com/worktrunk/worktrunk/internal/worktreeops"
)

func switchCommand() *cli.Command {
	return &cli.Command{
		Name:      "switch",
		Usage:     "switch to a worktree",
		ArgsUsage: "<branch>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "create", Aliases: []string{"c"}, Usage: "create a new branch"},
			&cli.StringFlag{Name: "base", Aliases: []string{"b"}, Usage: "base branch (defaults to default branch)"},
			&cli.StringFlag{Name: "execute", Aliases: []string{"x"}, Usage: "command to run after switch"},
			&cli.BoolFlag{Name: "force", Aliases: []string{"f"}, Usage: "skip approval prompts"},
			&cli.BoolFlag{Name: "no-verify", Usage: "skip all project hooks"},
		},
		Action: func(c *cli.Context) error {
			rc := ctxFrom(c)
			defer rc.Out.End()
			ctx := context.Background()

			branch := c.Args().First()
			if branch == "" {
				return werrors.New(werrors.KindInvalidRef, "switch requires a branch or worktree name")
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

			if c.Bool("create") {
				base := c.String("base")
				if base == "" {
					base = defaultBranch
				}
				opts := worktreeops.CreateOptions{
					Branch:         branch,
					Base:           base,
					Execute:        c.String("execute"),
					Force:          c.Bool("force"),
					NoVerify:       c.Bool("no-verify"),
					WorktreeDir:    rc.UserConfig.WorktreeDir,
					BranchTemplate: rc.UserConfig.BranchTemplate,
				}
				d := rc.dispatcher()
				approver := rc.approver(c.Bool("force"))
				d.Approve = worktreeops.ApproverFor(approver, rc.UserConfig.Approved[rc.ProjectID])
				err = worktreeops.CreateWorktree(ctx, rc.Repo, opts, d, vars, rc.Out)

				var wErr *werrors.Error
				if errors.As(err, &wErr) && wErr.Kind == werrors.KindBranchAlreadyExists {
					retryBranch := rc.Repo.GenerateUniqueBranch(ctx, branch)
					rc.Out.Warn("branch %s already exists; creating %s instead", branch, retryBranch)
					opts.Branch = retryBranch
					opts.Path = ""
					return worktreeops.CreateWorktree(ctx, rc.Repo, opts, d, vars, rc.Out)
				}
				return err
			}

			resolver := &worktreeops.Resolver{
				Repo:           rc.Repo,
				WorktreeDir:    rc.UserConfig.WorktreeDir,
				BranchTemplate: rc.UserConfig.BranchTemplate,
				Vars:           vars,
				DefaultBranch:  defaultBranch,
			}
			target, err := resolver.Resolve(ctx, branch, worktrees)
			if err != nil {
				return err
			}
			if err := worktreeops.Switch(ctx, rc.Repo, target, rc.Out); err != nil {
				return err
			}
			if execCmd := c.String("execute"); execCmd != "" {
				rc.Out.Exec(execCmd)
			}
			return nil
		},
	}
}
