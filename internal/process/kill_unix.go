//go:build !windows

package process

import "syscall"

// GroupAttr returns process attributes that place the child in its own
// process group, so a timeout kill reaches the engine and any helpers it
// forked.
func GroupAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}

// KillProcessGroup kills a process and all its children by sending SIGKILL
// to the process group (negative PID).
func KillProcessGroup(pid int) {
	// Best-effort cleanup; exec's own Process.Kill provides the fallback
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
