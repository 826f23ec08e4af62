//go:build windows

package process

import (
	"os/exec"
	"strconv"
	"syscall"
)

// GroupAttr is a no-op on Windows; taskkill /T handles the tree instead.
func GroupAttr() *syscall.SysProcAttr {
	return nil
}

// KillProcessGroup kills a process and all its children using taskkill.
// /F = force kill, /T = terminate child processes (tree kill).
func KillProcessGroup(pid int) {
	// Best-effort cleanup; exec's own Process.Kill provides the fallback
	_ = exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run()
}
