package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/urfave/cli/v2"

	"github.com/worktrunk/worktrunk/internal/config"
	"github.com/worktrunk/worktrunk/internal/shellinit"
)

const starterProjectConfig = `# worktrunk project configuration
# [hooks.post_create]
# default = "npm install"
`

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "inspect and manage worktrunk configuration",
		Subcommands: []*cli.Command{
			configShellCommand(),
			configCreateCommand(),
			configShowCommand(),
			configCacheCommand(),
			configVarCommand(),
			configApprovalsCommand(),
		},
	}
}

func configShellCommand() *cli.Command {
	return &cli.Command{
		Name:  "shell",
		Usage: "shell integration",
		Subcommands: []*cli.Command{
			{
				Name:      "init",
				Usage:     "print the shell wrapper function for the named shell",
				ArgsUsage: "<bash|zsh|fish>",
				Action: func(c *cli.Context) error {
					rc := ctxFrom(c)
					defer rc.Out.End()
					script, err := shellinit.Script(c.Args().First())
					if err != nil {
						return err
					}
					fmt.Fprintln(os.Stdout, script)
					return nil
				},
			},
		},
	}
}

func configCreateCommand() *cli.Command {
	return &cli.Command{
		Name:  "create",
		Usage: "write a starter project config at .config/wt.toml",
		Action: func(c *cli.Context) error {
			rc := ctxFrom(c)
			defer rc.Out.End()
			path := filepath.Join(rc.Root, ".config", "wt.toml")
			if _, err := os.Stat(path); err == nil {
				rc.Out.Warn("%s already exists", path)
				return nil
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
				return err
			}
			if err := os.WriteFile(path, []byte(starterProjectConfig), 0o600); err != nil {
				return err
			}
			rc.Out.Success("wrote %s", path)
			return nil
		},
	}
}

func configShowCommand() *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: "print the resolved configuration",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "doctor", Usage: "also print resolution diagnostics"},
		},
		Action: func(c *cli.Context) error {
			rc := ctxFrom(c)
			defer rc.Out.End()
			if c.Bool("doctor") {
				fmt.Fprintf(os.Stdout, "# repo root:      %s\n", rc.Root)
				fmt.Fprintf(os.Stdout, "# user config:    %s\n", rc.ConfigPath)
				fmt.Fprintf(os.Stdout, "# project id:     %s\n", rc.ProjectID)
			}
			if err := toml.NewEncoder(os.Stdout).Encode(rc.UserConfig); err != nil {
				return err
			}
			return toml.NewEncoder(os.Stdout).Encode(rc.ProjectCfg)
		},
	}
}

func configCacheCommand() *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "inspect or reset the CI status cache",
		Subcommands: []*cli.Command{
			{
				Name:  "clear",
				Usage: "drop all cached CI statuses",
				Action: func(c *cli.Context) error {
					rc := ctxFrom(c)
					defer rc.Out.End()
					rc.CICache.Clear()
					rc.Out.Success("CI cache cleared")
					return nil
				},
			},
		},
	}
}

func configVarCommand() *cli.Command {
	return &cli.Command{
		Name:  "var",
		Usage: "get, set, or clear a named hint stored in git config",
		Subcommands: []*cli.Command{
			{
				Name:      "get",
				ArgsUsage: "<name>",
				Action: func(c *cli.Context) error {
					rc := ctxFrom(c)
					defer rc.Out.End()
					value, err := config.Hint(rc.Root, c.Args().First())
					if err != nil {
						return err
					}
					fmt.Fprintln(os.Stdout, value)
					return nil
				},
			},
			{
				Name:      "set",
				ArgsUsage: "<name> <value>",
				Action: func(c *cli.Context) error {
					rc := ctxFrom(c)
					defer rc.Out.End()
					return config.SetHint(rc.Root, c.Args().Get(0), c.Args().Get(1))
				},
			},
			{
				Name:      "clear",
				ArgsUsage: "<name>",
				Action: func(c *cli.Context) error {
					rc := ctxFrom(c)
					defer rc.Out.End()
					return config.ClearHint(rc.Root, c.Args().First())
				},
			},
		},
	}
}

func configApprovalsCommand() *cli.Command {
	return &cli.Command{
		Name:  "approvals",
		Usage: "manage approved project hook commands",
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				ArgsUsage: "<command>",
				Action: func(c *cli.Context) error {
					rc := ctxFrom(c)
					defer rc.Out.End()
					return config.PersistApproval(rc.ConfigPath, rc.ProjectID, c.Args().First(), time.Now())
				},
			},
			{
				Name:  "clear",
				Usage: "forget every approved command for this project",
				Action: func(c *cli.Context) error {
					rc := ctxFrom(c)
					defer rc.Out.End()
					delete(rc.UserConfig.Approved, rc.ProjectID)
					if err := config.SaveUserConfig(rc.ConfigPath, rc.UserConfig); err != nil {
						return err
					}
					rc.Out.Success("cleared approvals for this project")
					return nil
				},
			},
		},
	}
}
