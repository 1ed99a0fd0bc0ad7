// Package executor prepares hook/workflow commands from configuration and
// runs them sequentially, concurrently, or detached from the calling
// process.
package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/sourcegraph/conc/pool"

	"github.com/worktrunk/worktrunk/internal/config"
	"github.com/worktrunk/worktrunk/internal/gitrepo"
	"github.com/worktrunk/worktrunk/internal/template"
	"github.com/worktrunk/worktrunk/internal/tracelog"
	"github.com/worktrunk/worktrunk/internal/werrors"
)

// FailureStrategy controls how a run reacts to one prepared command failing.
type FailureStrategy int

const (
	// FailFast aborts the remaining commands in the batch on first failure.
	FailFast FailureStrategy = iota
	// Warn logs the failure to stderr and continues, reporting no error.
	Warn
	// WarnAndPropagate logs the failure and continues, but still returns a
	// combined error once the batch finishes.
	WarnAndPropagate
)

// CommandRunner constructs the *exec.Cmd for one invocation; tests substitute
// a fake to avoid spawning real shells.
type CommandRunner func(ctx context.Context, name string, args ...string) *exec.Cmd

func defaultCommandRunner(ctx context.Context, name string, args ...string) *exec.Cmd {
	return exec.CommandContext(ctx, name, args...)
}

// PreparedCommand is one hook entry with its template fully expanded and its
// JSON stdin context ready to pipe.
type PreparedCommand struct {
	HookType string
	Name     string
	Shell    string
	StdinCtx []byte
}

// Prepare expands every entry in slot (qualified by namePrefix) against
// vars, producing one PreparedCommand per entry. hookType labels the
// failures and log paths that result from running them.
func Prepare(hookType, namePrefix string, slot config.HookSlot, vars template.Variables) ([]PreparedCommand, error) {
	entries := slot.Named(namePrefix)
	out := make([]PreparedCommand, 0, len(entries))
	ctxJSON, err := json.Marshal(vars.ToMap())
	if err != nil {
		return nil, fmt.Errorf("encoding template context: %w", err)
	}
	for _, e := range entries {
		shell, err := template.Expand(e.Command, vars, template.ShellEscape)
		if err != nil {
			return nil, fmt.Errorf("expanding %s hook %q: %w", hookType, e.Name, err)
		}
		out = append(out, PreparedCommand{
			HookType: hookType,
			Name:     e.Name,
			Shell:    shell,
			StdinCtx: ctxJSON,
		})
	}
	return out, nil
}

// Options configures a run of prepared commands.
type Options struct {
	Dir      string
	Runner   CommandRunner
	Strategy FailureStrategy
	// Announce, if set, is called before each command starts (the
	// gutter-preview line); nil disables announcements.
	Announce func(PreparedCommand)
	// Approve, if set, gates each command before it runs; an error from it
	// aborts the run immediately regardless of Strategy, since an approval
	// refusal is not a command failure to warn-and-continue past.
	Approve func(PreparedCommand) error
}

func (o Options) runner() CommandRunner {
	if o.Runner != nil {
		return o.Runner
	}
	return defaultCommandRunner
}

// RunSequential executes cmds one at a time in order, piping each one's
// StdinCtx to its stdin and inheriting stdout/stderr so output appears live.
// Behavior on a failing command is governed by opts.Strategy.
func RunSequential(ctx context.Context, cmds []PreparedCommand, opts Options) error {
	runner := opts.runner()
	var warnings []string
	for _, pc := range cmds {
		if opts.Approve != nil {
			if err := opts.Approve(pc); err != nil {
				return err
			}
		}
		if opts.Announce != nil {
			opts.Announce(pc)
		}
		err := tracelog.Timed(pc.HookType, pc.Shell, func() error {
			return runOne(ctx, runner, opts.Dir, pc, os.Stdout, os.Stderr)
		})
		if err == nil {
			continue
		}
		hookErr := werrors.HookCommandFailed(pc.HookType, pc.Name, err)
		switch opts.Strategy {
		case FailFast:
			return hookErr
		case Warn:
			fmt.Fprintln(os.Stderr, hookErr.Display())
		case WarnAndPropagate:
			fmt.Fprintln(os.Stderr, hookErr.Display())
			warnings = append(warnings, fmt.Sprintf("%s %q: %v", pc.HookType, pc.Name, err))
		}
	}
	if len(warnings) > 0 {
		return fmt.Errorf("%d hook command(s) failed: %s", len(warnings), strings.Join(warnings, "; "))
	}
	return nil
}

// RunConcurrent executes cmds in parallel on a bounded goroutine pool,
// redirecting each command's stdout to stderr so concurrent output doesn't
// interleave in a way a reader could mistake for ordered sequential output.
// It waits for every command and returns a combined error naming the
// failures, regardless of opts.Strategy (concurrent batches have no
// meaningful "fail fast and abandon the rest" since the goroutines are
// already in flight).
func RunConcurrent(ctx context.Context, cmds []PreparedCommand, opts Options) error {
	runner := opts.runner()
	if opts.Approve != nil {
		for _, pc := range cmds {
			if err := opts.Approve(pc); err != nil {
				return err
			}
		}
	}
	p := pool.NewWithResults[*werrors.Error]().WithContext(ctx).WithMaxGoroutines(maxGoroutines(len(cmds)))

	for _, pc := range cmds {
		pc := pc
		if opts.Announce != nil {
			opts.Announce(pc)
		}
		p.Go(func(ctx context.Context) (*werrors.Error, error) {
			err := tracelog.Timed(pc.HookType, pc.Shell, func() error {
				return runOne(ctx, runner, opts.Dir, pc, os.Stderr, os.Stderr)
			})
			if err != nil {
				return werrors.HookCommandFailed(pc.HookType, pc.Name, err), nil
			}
			return nil, nil
		})
	}

	results, err := p.Wait()
	if err != nil {
		return fmt.Errorf("running concurrent hooks: %w", err)
	}

	var failures []string
	for _, r := range results {
		if r != nil {
			fmt.Fprintln(os.Stderr, r.Display())
			failures = append(failures, r.Error())
		}
	}
	if len(failures) == 0 {
		return nil
	}
	return fmt.Errorf("%d concurrent hook command(s) failed: %s", len(failures), strings.Join(failures, "; "))
}

func maxGoroutines(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// RunDetached spawns pc in the background via gitrepo.DetachedSpawn and
// returns immediately; the caller does not wait for it to finish. repo
// supplies the log path convention, keyed by branch and the hook's name.
// If approve is non-nil it gates the spawn: a refusal is returned instead
// of starting the background process.
func RunDetached(repo *gitrepo.Repository, branch string, pc PreparedCommand, dir string, approve func(PreparedCommand) error) error {
	if approve != nil {
		if err := approve(pc); err != nil {
			return err
		}
	}
	logPath := repo.LogPath(branch, pc.Name)
	return gitrepo.DetachedSpawn(pc.Shell, dir, logPath, string(pc.StdinCtx))
}

func runOne(ctx context.Context, runner CommandRunner, dir string, pc PreparedCommand, stdout, stderr *os.File) error {
	cmd := runner(ctx, "sh", "-c", pc.Shell)
	cmd.Dir = dir
	cmd.Stdin = bytes.NewReader(pc.StdinCtx)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}
