// Package output is the single sink every worktrunk command writes
// user-facing progress, hints, and post-command directives through. It
// has two modes: interactive (styled stderr, for a human at a terminal)
// and directive (NUL-delimited records on a secondary file descriptor,
// for the shell wrapper that performs cd/eval on the user's behalf).
package output

import (
	"bufio"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/worktrunk/worktrunk/internal/style"
)

// Context is the process-wide output sink. Exactly one of directiveW or
// interactive styling applies, selected at construction.
type Context struct {
	stdout    *bufio.Writer // flushed before every stderr write, nil-safe
	stderr    io.Writer
	directive io.Writer // non-nil in directive mode
	theme     *style.Theme
	styled    bool
}

// NewInteractive returns a Context that writes styled progress lines to
// stderr when styled is true (typically os.Stderr is a TTY and NO_COLOR
// is unset), plain text otherwise.
func NewInteractive(stdout *bufio.Writer, stderr io.Writer, styled bool) *Context {
	return &Context{stdout: stdout, stderr: stderr, theme: style.Dracula(), styled: styled}
}

// NewDirective returns a Context that additionally serializes CD/EXEC/END
// records onto directiveFD, for the shell-wrapper contract in §6.
func NewDirective(stdout *bufio.Writer, stderr, directiveFD io.Writer) *Context {
	return &Context{stdout: stdout, stderr: stderr, directive: directiveFD, theme: style.Dracula()}
}

// IsDirective reports whether this context writes shell directives.
func (c *Context) IsDirective() bool { return c.directive != nil }

func (c *Context) flushStdout() {
	if c.stdout != nil {
		_ = c.stdout.Flush()
	}
}

func (c *Context) render(color lipgloss.Color, format string, args ...any) string {
	msg := fmt.Sprintf(format, args...)
	if !c.styled {
		return msg
	}
	return lipgloss.NewStyle().Foreground(color).Render(msg)
}

// Progress writes a plain progress line (e.g. a hook-announce preview).
func (c *Context) Progress(format string, args ...any) {
	c.flushStdout()
	fmt.Fprintln(c.stderr, c.render(c.theme.MutedFg, format, args...))
}

// Success writes a styled success line.
func (c *Context) Success(format string, args ...any) {
	c.flushStdout()
	fmt.Fprintln(c.stderr, c.render(c.theme.SuccessFg, format, args...))
}

// Warn writes a styled warning line; used for Warn/WarnAndPropagate hook
// failures and non-fatal recovery failures (stash-pop, approval persist).
func (c *Context) Warn(format string, args ...any) {
	c.flushStdout()
	fmt.Fprintln(c.stderr, c.render(c.theme.WarnFg, format, args...))
}

// Hint writes an indented actionable suggestion.
func (c *Context) Hint(format string, args ...any) {
	c.flushStdout()
	fmt.Fprintln(c.stderr, "    "+c.render(c.theme.MutedFg, format, args...))
}

// IntegrationHint prints the "enable automatic cd" hint, suppressed in
// directive mode since the shell wrapper already has integration.
func (c *Context) IntegrationHint(shellInitCommand string) {
	if c.IsDirective() {
		return
	}
	c.Hint("To enable automatic cd, add `%s` to your shell profile.", shellInitCommand)
}

// CD emits the directive that tells the shell wrapper to change directory
// to path after the command finishes. In interactive mode it is a no-op:
// there is no wrapper to read it.
func (c *Context) CD(path string) {
	if c.directive == nil {
		return
	}
	writeRecord(c.directive, "CD", path)
}

// Exec emits the directive that tells the shell wrapper to run command in
// the new shell (the `--execute` flag on `wt switch --create`).
func (c *Context) Exec(command string) {
	if c.directive == nil {
		return
	}
	writeRecord(c.directive, "EXEC", command)
}

// End terminates the directive stream; the shell wrapper stops reading
// after this record.
func (c *Context) End() {
	if c.directive == nil {
		return
	}
	fmt.Fprint(c.directive, "END\x00")
}

func writeRecord(w io.Writer, kind, payload string) {
	fmt.Fprintf(w, "%s\x00%s\x00", kind, payload)
}
