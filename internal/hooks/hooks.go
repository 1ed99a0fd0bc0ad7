// Package hooks composes and dispatches the six lifecycle hook slots
// (post-create, post-start, pre-commit, pre-merge, post-merge, pre-remove)
// atop internal/config's configuration layer and internal/executor's
// command runner.
package hooks

import (
	"context"
	"fmt"
	"os"

	"github.com/worktrunk/worktrunk/internal/config"
	"github.com/worktrunk/worktrunk/internal/executor"
	"github.com/worktrunk/worktrunk/internal/gitrepo"
	"github.com/worktrunk/worktrunk/internal/template"
)

// Mode selects how a slot's prepared commands run.
type Mode int

const (
	// Sequential runs commands one at a time, in declaration order.
	Sequential Mode = iota
	// Concurrent runs all of a slot's commands in parallel.
	Concurrent
	// Detached spawns each command in the background and returns
	// immediately; only post_start is run detached.
	Detached
)

// defaultModes pairs each hook slot with the run mode that matches its
// place in the lifecycle: post_create runs synchronously in the new
// worktree before the caller proceeds, post_start is for long-lived dev
// servers and is spawned detached, and the commit/merge/remove hooks gate
// a synchronous operation and must finish (sequential) before worktrunk
// proceeds.
var defaultModes = map[string]Mode{
	"post_create": Sequential,
	"post_start":  Detached,
	"pre_commit":  Sequential,
	"pre_merge":   Sequential,
	"post_merge":  Sequential,
	"pre_remove":  Sequential,
}

// defaultStrategies pairs each slot with its failure strategy: hooks that
// gate an operation (pre_*, post_create) fail fast, observational/cleanup
// hooks warn and continue without blocking the operation that triggered
// them.
var defaultStrategies = map[string]executor.FailureStrategy{
	"post_create": executor.FailFast,
	"post_start":  executor.Warn,
	"pre_commit":  executor.FailFast,
	"pre_merge":   executor.FailFast,
	"post_merge":  executor.WarnAndPropagate,
	"pre_remove":  executor.FailFast,
}

// Dispatcher runs a named hook slot against a repository's composed
// configuration.
type Dispatcher struct {
	Repo          *gitrepo.Repository
	UserConfig    config.HookConfiguration
	ProjectConfig config.HookConfiguration
	// Runner overrides the command runner (tests only); nil uses the real
	// shell.
	Runner executor.CommandRunner
	// Announce, if set, is called before each prepared command starts.
	Announce func(hookType string, pc executor.PreparedCommand)
	// Approve, if set, gates each prepared command against the approval
	// store before it runs (project-sourced hook commands only; nil skips
	// the gate, e.g. when the caller has already approved the whole batch).
	Approve func(pc executor.PreparedCommand) error
}

// Prepare composes hookName's user+project entries and expands them
// against vars without running them, for callers (the merge pipeline's
// up-front batch approval step) that need to know what would run before
// committing to run any of it.
func (d Dispatcher) Prepare(hookName string, vars template.Variables) ([]executor.PreparedCommand, error) {
	composed := config.Compose(d.UserConfig, d.ProjectConfig)
	slot, prefix, ok := composed.Slot(hookName)
	if !ok {
		return nil, fmt.Errorf("unknown hook slot %q", hookName)
	}
	if slot.IsEmpty() {
		return nil, nil
	}
	return executor.Prepare(hookName, prefix, slot, vars)
}

// Run dispatches hookName (e.g. "post_create") with vars substituted into
// its composed entries, in dir, under that slot's default run mode and
// failure strategy. branch is only used for Detached mode's log-path
// convention.
func (d Dispatcher) Run(ctx context.Context, hookName, branch, dir string, vars template.Variables) error {
	cmds, err := d.Prepare(hookName, vars)
	if err != nil {
		return fmt.Errorf("preparing %s hooks: %w", hookName, err)
	}
	if len(cmds) == 0 {
		return nil
	}

	mode := defaultModes[hookName]
	opts := executor.Options{
		Dir:      dir,
		Runner:   d.Runner,
		Strategy: defaultStrategies[hookName],
	}
	if d.Announce != nil {
		opts.Announce = func(pc executor.PreparedCommand) { d.Announce(hookName, pc) }
	}
	if d.Approve != nil {
		opts.Approve = d.Approve
	}

	switch mode {
	case Detached:
		for _, pc := range cmds {
			if opts.Announce != nil {
				opts.Announce(pc)
			}
			if err := executor.RunDetached(d.Repo, branch, pc, dir, d.Approve); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to start %s hook %q detached: %v\n", hookName, pc.Name, err)
			}
		}
		return nil
	case Concurrent:
		return executor.RunConcurrent(ctx, cmds, opts)
	default:
		return executor.RunSequential(ctx, cmds, opts)
	}
}
