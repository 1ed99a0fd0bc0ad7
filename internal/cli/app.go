// Package cli wires every internal package into the `wt` command surface.
// Each subcommand constructor mirrors the teacher's one-function-per-command
// shape; the body of each Action is a setup call followed by one call into
// the package that actually implements the behavior.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"github.com/worktrunk/worktrunk/internal/buildinfo"
	"github.com/worktrunk/worktrunk/internal/ci"
	"github.com/worktrunk/worktrunk/internal/config"
	"github.com/worktrunk/worktrunk/internal/executor"
	"github.com/worktrunk/worktrunk/internal/gitrepo"
	"github.com/worktrunk/worktrunk/internal/hooks"
	"github.com/worktrunk/worktrunk/internal/llm"
	"github.com/worktrunk/worktrunk/internal/output"
	"github.com/worktrunk/worktrunk/internal/tracelog"
)

const metadataKey = "wt.runContext"

// runContext holds every collaborator a command body needs, assembled once
// by setup() from the global flags and the process environment.
type runContext struct {
	Repo       *gitrepo.Repository
	UserConfig *config.AppConfig
	ProjectCfg *config.ProjectConfig
	HookConfig config.HookConfiguration
	ConfigPath string
	ProjectID  string
	Root       string // main worktree path

	Out         *output.Context
	Interactive bool
	Messages    *llm.Generator
	CICache     *ci.Cache
}

// approver builds a fresh executor.Approver for one command invocation,
// force carrying that command's --force flag.
func (rc *runContext) approver(force bool) *executor.Approver {
	return &executor.Approver{
		ConfigPath:  rc.ConfigPath,
		ProjectID:   rc.ProjectID,
		Force:       force,
		Interactive: rc.Interactive,
		In:          os.Stdin,
		Out:         os.Stderr,
	}
}

// dispatcher builds the hooks.Dispatcher wired to this run's repo and
// composed hook configuration, announcing each command through Out.
func (rc *runContext) dispatcher() hooks.Dispatcher {
	return hooks.Dispatcher{
		Repo:          rc.Repo,
		UserConfig:    rc.UserConfig.Hooks,
		ProjectConfig: rc.ProjectCfg.Hooks,
		Announce:      func(hookType string, pc executor.PreparedCommand) { rc.Out.Progress("%s: %s", hookType, pc.Name) },
	}
}

// App builds the `wt` command-line application.
func App() *cli.App {
	return &cli.App{
		Name:                 "wt",
		Usage:                "git worktree management",
		Version:              buildVersion(),
		EnableBashCompletion: true,
		Flags:                globalFlags(),
		Metadata:             map[string]interface{}{},
		Before:               setup,
		Commands: []*cli.Command{
			listCommand(),
			switchCommand(),
			removeCommand(),
			mergeCommand(),
			selectCommand(),
			stepCommand(),
			configCommand(),
		},
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "directory",
			Aliases: []string{"C"},
			Usage:   "working directory for this command",
		},
		&cli.StringFlag{
			Name:  "config",
			Usage: "user config file path",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "show commands and debug info",
		},
		&cli.BoolFlag{
			Name:   "internal",
			Usage:  "shell wrapper mode",
			Hidden: true,
		},
	}
}

func buildVersion() string {
	return buildinfo.Version()
}

// setup runs once before any subcommand's Action: it resolves the
// repository, loads configuration, configures debug tracing, and wraps
// everything a command needs into a runContext stashed on the App's
// metadata map.
func setup(c *cli.Context) error {
	if err := setupTracing(c); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	dir := c.String("directory")
	if dir == "" {
		dir = "."
	}
	repo, err := gitrepo.Open(context.Background(), dir)
	if err != nil {
		return err
	}

	configPath := c.String("config")
	userCfg, err := config.LoadUserConfig(configPath)
	if err != nil {
		return err
	}

	worktrees, err := repo.ListWorktrees(context.Background())
	if err != nil {
		return err
	}
	defaultBranch, err := repo.DefaultBranch(context.Background())
	if err != nil {
		return err
	}
	root := repoRoot(context.Background(), repo, worktrees, defaultBranch)

	projectCfg, err := config.LoadProjectConfig(root)
	if err != nil {
		return err
	}

	out := buildOutput(c)
	interactive := term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stderr.Fd()))

	c.App.Metadata[metadataKey] = &runContext{
		Repo:        repo,
		UserConfig:  userCfg,
		ProjectCfg:  projectCfg,
		HookConfig:  config.Compose(userCfg.Hooks, projectCfg.Hooks),
		ConfigPath:  configPath,
		ProjectID:   config.ProjectID(root),
		Root:        root,
		Out:         out,
		Interactive: interactive,
		Messages:    llm.New(userCfg.LLM),
		CICache:     ci.NewCache(ci.NoopProvider{}),
	}
	return nil
}

// buildOutput selects directive mode (fd 3, for the shell wrapper) when
// --internal is set, interactive mode otherwise.
func buildOutput(c *cli.Context) *output.Context {
	stdout := bufio.NewWriter(os.Stdout)
	if c.Bool("internal") {
		directiveFD := os.NewFile(3, "directive")
		return output.NewDirective(stdout, os.Stderr, directiveFD)
	}
	styled := term.IsTerminal(int(os.Stderr.Fd())) && os.Getenv("NO_COLOR") == ""
	return output.NewInteractive(stdout, os.Stderr, styled)
}

// setupTracing wires -v/--verbose into tracelog, mirroring the teacher's
// --debug-log flag: with -v, a per-process wt-debug-<pid>.log in the temp
// directory is opened for append; otherwise the logger discards rather
// than buffering forever.
func setupTracing(c *cli.Context) error {
	if !c.Bool("verbose") {
		return tracelog.SetFile("")
	}
	path := filepath.Join(os.TempDir(), fmt.Sprintf("wt-debug-%d.log", os.Getpid()))
	if err := tracelog.SetFile(path); err != nil {
		return fmt.Errorf("opening debug log %s: %w", path, err)
	}
	fmt.Fprintf(os.Stderr, "debug log: %s\n", path)
	return nil
}

func ctxFrom(c *cli.Context) *runContext {
	return c.App.Metadata[metadataKey].(*runContext)
}
