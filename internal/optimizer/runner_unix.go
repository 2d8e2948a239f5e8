//go:build !windows

package optimizer

import (
	osexec "os/exec"
	"syscall"
)

func killProcessGroup(c *osexec.Cmd) {
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	c.Cancel = func() error {
		// A negative pid signals the whole group.
		return syscall.Kill(-c.Process.Pid, syscall.SIGKILL)
	}
}
