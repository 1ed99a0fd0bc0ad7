package cli

import (
	"context"

	"github.com/urfave/cli/v2"

	"github.com/worktrunk/worktrunk/internal/models"
	"github.com/worktrunk/worktrunk/internal/selector"
	"github.com/worktrunk/worktrunk/internal/worktreeops"
)

// selectCommand lets the user fuzzy-pick a worktree and switches to it.
// The picker itself is supplied by an external binary; this build wires
// selector.Unavailable, which reports the gap explicitly instead of
// silently doing nothing.
func selectCommand() *cli.Command {
	return &cli.Command{
		Name:  "select",
		Usage: "interactively pick a worktree to switch to",
		Action: func(c *cli.Context) error {
			rc := ctxFrom(c)
			defer rc.Out.End()
			ctx := context.Background()

			worktrees, err := rc.Repo.ListWorktrees(ctx)
			if err != nil {
				return err
			}

			items := make([]models.ListItem, 0, len(worktrees))
			for _, wt := range worktrees {
				items = append(items, models.ListItem{
					Kind:   models.KindWorktree,
					Head:   wt.HeadSHA,
					Branch: wt.Branch,
					Path:   wt.Path,
				})
			}

			var picker selector.Picker = selector.Unavailable{}
			choice, err := picker.Pick(ctx, items)
			if err != nil {
				return err
			}
			if choice == nil {
				return nil
			}
			target := &models.WorktreeDescriptor{Path: choice.Path, Branch: choice.Branch}
			return worktreeops.Switch(ctx, rc.Repo, target, rc.Out)
		},
	}
}
