package gitrepo

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/worktrunk/worktrunk/internal/shellquote"
)

var reservedWindowsNames = map[string]bool{
	"con": true, "prn": true, "aux": true, "nul": true,
}

var pathSeparatorRe = regexp.MustCompile(`[/\\]`)

// SanitizeLogFilename maps path separators and Windows-reserved device
// names to a leading underscore, for safe background-hook log filenames.
func SanitizeLogFilename(name string) string {
	name = pathSeparatorRe.ReplaceAllString(name, "_")
	lower := strings.ToLower(name)
	base := lower
	if idx := strings.IndexByte(base, '.'); idx >= 0 {
		base = base[:idx]
	}
	if reservedWindowsNames[base] {
		name = "_" + name
	}
	return name
}

// LogPath returns <git-common-dir>/wt-logs/<branch>-<operation>.log with a
// sanitized filename component.
func (r *Repository) LogPath(branch, operation string) string {
	name := SanitizeLogFilename(branch) + "-" + operation + ".log"
	return filepath.Join(r.commonDir, "wt-logs", name)
}

// DetachedSpawn runs command (a shell command line) detached from the
// current process, in cwd, with output redirected to logPath and stdinJSON
// piped to its stdin. On POSIX it builds a small nohup-background-wait
// script the way internal/multiplexer's tmux script builder composes shell
// scripts, because quoting nested shell invocations by hand is
// error-prone; on Windows it uses
// CREATE_NEW_PROCESS_GROUP|DETACHED_PROCESS (see detached_windows.go).
func DetachedSpawn(command, cwd, logPath, stdinJSON string) error {
	if err := os.MkdirAll(filepath.Dir(logPath), 0o750); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}
	if runtime.GOOS == "windows" {
		return detachedSpawnWindows(command, cwd, logPath, stdinJSON)
	}
	return detachedSpawnPOSIX(command, cwd, logPath, stdinJSON)
}

// detachedSpawnPOSIX wraps command in a NUL-fed `printf ... | { cmd; }`
// pipeline, backgrounds it under nohup, and waits for the *outer* shell to
// exit. That final wait looks redundant but bounds zombies: without it the
// parent process can return before the backgrounding subshell has been
// fully detached from the controlling terminal.
func detachedSpawnPOSIX(command, cwd, logPath, stdinJSON string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "cd %s || exit 1\n", shellquote.Quote(cwd))
	inner := "printf '%s' " + shellquote.Quote(stdinJSON) + " | { " + command + "; }"
	fmt.Fprintf(&b, "nohup sh -c %s >%s 2>&1 &\n", shellquote.Quote(inner), shellquote.Quote(logPath))

	// #nosec G204 -- script body is built from internal template expansion, not raw user shell input
	cmd := exec.Command("sh", "-c", b.String())
	cmd.Dir = cwd
	setDetachedSysProcAttr(cmd)
	return cmd.Run()
}
