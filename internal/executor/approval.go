package executor

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/worktrunk/worktrunk/internal/config"
	"github.com/worktrunk/worktrunk/internal/werrors"
)

// Source distinguishes commands the user wrote themselves (trusted
// unconditionally) from commands sourced from project configuration
// (subject to the approval gate).
type Source int

const (
	SourceUser Source = iota
	SourceProject
)

// Approver gates project-sourced prepared commands against the
// project's approval store, prompting interactively when a command
// hasn't been seen before.
type Approver struct {
	ConfigPath  string
	ProjectID   string
	Force       bool
	Interactive bool
	In          io.Reader
	Out         io.Writer
	now         func() time.Time
}

func (a *Approver) nowFn() time.Time {
	if a.now != nil {
		return a.now()
	}
	return time.Now()
}

// Approve checks (and if needed, prompts for and persists) approval of
// one prepared command's shell body. User-sourced commands are
// unconditionally approved without consulting the store.
func (a *Approver) Approve(list config.ApprovalList, source Source, pc PreparedCommand) error {
	if source == SourceUser {
		return nil
	}
	if list.IsApproved(pc.Shell) {
		return nil
	}
	if a.Force {
		return a.persist(pc.Shell)
	}
	if !a.Interactive {
		return werrors.New(werrors.KindNotInteractive, "command requires approval but the session is not interactive")
	}
	approved, err := a.prompt([]PreparedCommand{pc})
	if err != nil {
		return err
	}
	if !approved {
		return werrors.CommandNotApproved()
	}
	return a.persist(pc.Shell)
}

// ApproveBatch presents every candidate command in one prompt so the user
// answers once per pipeline rather than once per command, used by the
// merge pipeline's up-front approval step.
func (a *Approver) ApproveBatch(list config.ApprovalList, cmds []PreparedCommand) error {
	var pending []PreparedCommand
	for _, pc := range cmds {
		if !list.IsApproved(pc.Shell) {
			pending = append(pending, pc)
		}
	}
	if len(pending) == 0 {
		return nil
	}
	if a.Force {
		for _, pc := range pending {
			if err := a.persist(pc.Shell); err != nil {
				return err
			}
		}
		return nil
	}
	if !a.Interactive {
		return werrors.New(werrors.KindNotInteractive, "commands require approval but the session is not interactive")
	}
	approved, err := a.prompt(pending)
	if err != nil {
		return err
	}
	if !approved {
		return werrors.CommandNotApproved()
	}
	for _, pc := range pending {
		if err := a.persist(pc.Shell); err != nil {
			return err
		}
	}
	return nil
}

// prompt renders pending in a gutter block and asks [y/N].
func (a *Approver) prompt(pending []PreparedCommand) (bool, error) {
	var b strings.Builder
	fmt.Fprintln(&b, "The following commands require approval:")
	for _, pc := range pending {
		fmt.Fprintf(&b, "  │ %s: %s\n", pc.HookType, pc.Shell)
	}
	fmt.Fprint(&b, "Approve? [y/N] ")
	fmt.Fprint(a.Out, b.String())

	reader := bufio.NewReader(a.In)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return false, nil
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

// persist reloads the user config from disk and records the approval,
// warning (rather than failing) the caller on a write error: the user
// will simply be re-prompted next time.
func (a *Approver) persist(expanded string) error {
	if err := config.PersistApproval(a.ConfigPath, a.ProjectID, expanded, a.nowFn()); err != nil {
		fmt.Fprintf(a.Out, "warning: failed to persist command approval: %v\n", err)
		return nil
	}
	return nil
}
