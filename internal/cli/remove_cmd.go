package cli

import (
	"context"

	"github.com/urfave/cli/v2"

	"github.com/worktrunk/worktrunk/internal/werrors"
	"github.com/worktrunk/worktrunk/internal/worktreeops"
)

func removeCommand() *cli.Command {
	return &cli.Command{
		Name:      "remove",
		Usage:     "remove one or more worktrees",
		ArgsUsage: "<branch|path>...",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "no-delete-branch", Usage: "keep the branch after removing its worktree"},
			&cli.BoolFlag{Name: "force-delete", Aliases: []string{"D"}, Usage: "delete the branch even if unmerged"},
			&cli.BoolFlag{Name: "no-background", Usage: "run the cleanup in the foreground"},
			&cli.StringFlag{Name: "path", Hidden: true, Usage: "worktree path (background re-invocation)"},
			&cli.BoolFlag{Name: "foreground", Hidden: true, Usage: "internal: run synchronously (background re-invocation)"},
		},
		Action: func(c *cli.Context) error {
			rc := ctxFrom(c)
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

			policy := worktreeops.DeleteIfMerged
			switch {
			case c.Bool("force-delete"):
				policy = worktreeops.DeleteAlways
			case c.Bool("no-delete-branch"):
				policy = worktreeops.DeleteNever
			}
			background := !c.Bool("no-background") && !c.Bool("foreground")

			d := rc.dispatcher()
			approver := rc.approver(false)
			d.Approve = worktreeops.ApproverFor(approver, rc.UserConfig.Approved[rc.ProjectID])

			resolver := &worktreeops.Resolver{
				Repo:           rc.Repo,
				WorktreeDir:    rc.UserConfig.WorktreeDir,
				BranchTemplate: rc.UserConfig.BranchTemplate,
				Vars:           vars,
				DefaultBranch:  defaultBranch,
			}

			targets := c.Args().Slice()
			if path := c.String("path"); path != "" {
				targets = []string{path}
			}
			if len(targets) == 0 {
				return werrors.New(werrors.KindInvalidRef, "remove requires at least one branch or worktree path")
			}

			for _, name := range targets {
				target, err := resolver.Resolve(ctx, name, worktrees)
				if err != nil {
					return err
				}
				opts := worktreeops.RemoveOptions{
					Target:        target,
					DefaultBranch: defaultBranch,
					Policy:        policy,
					Background:    background,
				}
				if err := worktreeops.RemoveWorktree(ctx, rc.Repo, opts, d, vars, rc.Out); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
