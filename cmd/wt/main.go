// Package main is the entry point for the wt command-line tool.
package main

import (
	"fmt"
	"os"

	"github.com/worktrunk/worktrunk/internal/buildinfo"
	"github.com/worktrunk/worktrunk/internal/cli"
	"github.com/worktrunk/worktrunk/internal/werrors"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
	builtBy = "unknown"
)

func main() {
	buildinfo.Set(version, commit, date, builtBy)
	buildinfo.Enrich()

	app := cli.App()
	if err := app.Run(os.Args); err != nil {
		if msg := displayErr(err); msg != "" {
			fmt.Fprintln(os.Stderr, msg)
		}
		os.Exit(exitCode(err))
	}
}

func displayErr(err error) string {
	if wErr, ok := err.(*werrors.Error); ok {
		if wErr.Silent {
			return ""
		}
		return wErr.Display()
	}
	return err.Error()
}

func exitCode(err error) int {
	if wErr, ok := err.(*werrors.Error); ok {
		code, _ := wErr.Exit()
		return code
	}
	return 1
}
