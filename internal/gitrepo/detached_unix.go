//go:build !windows

package gitrepo

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

func setDetachedSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}

// detachedSpawnWindows is unreachable on non-Windows builds; DetachedSpawn
// dispatches on runtime.GOOS before calling it.
func detachedSpawnWindows(command, cwd, logPath, stdinJSON string) error {
	return fmt.Errorf("detached spawn: windows strategy invoked on %s", os.Getenv("GOOS"))
}
