package cli

import (
	"context"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/worktrunk/worktrunk/internal/list"
)

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "list worktrees and optionally branches",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Value: "table", Usage: "output format: table, json"},
			&cli.BoolFlag{Name: "branches", Usage: "include branches without worktrees"},
			&cli.BoolFlag{Name: "remotes", Usage: "include remote branches"},
			&cli.BoolFlag{Name: "full", Usage: "show CI, conflicts, diffs"},
		},
		Action: func(c *cli.Context) error {
			rc := ctxFrom(c)
			defer rc.Out.End()
			full := c.Bool("full")
			return list.Run(context.Background(), rc.Repo, os.Stdout, list.RunOptions{
				IncludeBranches:         c.Bool("branches"),
				IncludeRemoteBranches:   c.Bool("remotes"),
				ShowCI:                  full,
				CheckMergeTreeConflicts: full,
				CICache:                 rc.CICache,
				JSON:                    c.String("format") == "json",
			})
		},
		Subcommands: []*cli.Command{
			statuslineCommand(),
		},
	}
}

func statuslineCommand() *cli.Command {
	return &cli.Command{
		Name:  "statusline",
		Usage: "single-line status for shell prompts",
		Action: func(c *cli.Context) error {
			rc := ctxFrom(c)
			defer rc.Out.End()
			return list.Run(context.Background(), rc.Repo, os.Stdout, list.RunOptions{CICache: rc.CICache})
		},
	}
}
