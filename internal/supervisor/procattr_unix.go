//go:build !windows

package supervisor

import (
	"os/exec"
	"syscall"
)

// configureProcessGroup makes the child lead a fresh process group before it
// execs, isolating it from the supervisor's group so group-directed signals
// never reach the supervisor.
func configureProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
