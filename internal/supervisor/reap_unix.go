//go:build !windows

package supervisor

import "golang.org/x/sys/unix"

// reapNonBlocking polls for the child's exit without blocking. A signaled
// child reports 128+signal, the shell convention.
func reapNonBlocking(pid int) (status int, exited bool, err error) {
	var ws unix.WaitStatus
	wpid, err := unix.Wait4(pid, &ws, unix.WNOHANG, nil)
	if err != nil {
		return 0, false, err
	}
	if wpid == 0 {
		return 0, false, nil
	}
	// Wait4 with WNOHANG also reports stop/continue state changes when
	// traced; only a real exit ends supervision.
	switch {
	case ws.Exited():
		return ws.ExitStatus(), true, nil
	case ws.Signaled():
		return 128 + int(ws.Signal()), true, nil
	default:
		return 0, false, nil
	}
}
