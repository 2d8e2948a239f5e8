//go:build windows

package optimizer

import osexec "os/exec"

// Windows has no process groups to signal; WaitDelay still bounds Run.
func killProcessGroup(c *osexec.Cmd) {}
