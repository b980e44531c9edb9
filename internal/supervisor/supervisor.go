// Package supervisor owns the lifecycle of the monitored program: spawning it
// into its own process group, suspending/resuming the whole group, killing the
// leader, and non-blocking reaping.
//
// Suspend and resume are delivered to the negative pid so every process in the
// child's group stops and continues together; terminate targets the plain pid.
// A failed signal send usually means the target already exited. That is logged
// and otherwise ignored: the next reap check observes the exit.
package supervisor

import (
	"fmt"
	"os"
	"os/exec"

	"golang.org/x/sys/unix"

	"thermarun/internal/logger"
)

// State is the child's lifecycle state.
type State int

const (
	// Running means the child may execute and may exit; it is reaped only
	// in this state.
	Running State = iota
	// Suspended means the whole process group is stopped. A stopped process
	// cannot exit, so reaping is skipped while suspended.
	Suspended
	// Exited means the child has been reaped.
	Exited
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Suspended:
		return "suspended"
	case Exited:
		return "exited"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Child is the one supervised process. Mutated only by Supervisor operations.
type Child struct {
	Pid int

	cmd        *exec.Cmd
	state      State
	exitStatus int
}

// State returns the child's lifecycle state.
func (c *Child) State() State { return c.state }

// ExitStatus returns the reaped exit status. Valid only once State is Exited.
func (c *Child) ExitStatus() int { return c.exitStatus }

// Supervisor spawns and controls the child. The signal and reap functions are
// the OS process-control collaborators; tests substitute recording fakes.
type Supervisor struct {
	signal  func(pid int, sig unix.Signal) error
	reap    func(pid int) (status int, exited bool, err error)
	setpgid func(pid, pgid int) error
	getpgid func(pid int) (int, error)
}

// New returns a supervisor wired to the real OS primitives.
func New() *Supervisor {
	return &Supervisor{
		signal:  func(pid int, sig unix.Signal) error { return unix.Kill(pid, sig) },
		reap:    reapNonBlocking,
		setpgid: unix.Setpgid,
		getpgid: unix.Getpgid,
	}
}

// Spawn starts the program in a new process group with the supervisor's
// stdio. Both the kernel-side child setup and the supervisor attempt to set
// the group id to the child's pid; whichever lands first wins, and "child
// already owns its group" counts as success.
func (s *Supervisor) Spawn(program string, args []string) (*Child, error) {
	cmd := exec.Command(program, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	configureProcessGroup(cmd)

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", program, err)
	}

	child := &Child{Pid: cmd.Process.Pid, cmd: cmd, state: Running}

	if err := s.converge(child.Pid); err != nil {
		// The child is already running in an unknown group; take it down
		// before aborting.
		_ = s.signal(child.Pid, unix.SIGKILL)
		return nil, err
	}

	log := logger.WithComponent("supervisor")
	log.Info().
		Int("pid", child.Pid).
		Str("program", program).
		Msg("Child spawned in own process group")
	return child, nil
}

// converge settles the group-assignment race. Convergence is idempotent and
// order-independent: a setpgid failure is only an error if the child does not
// already lead its own group.
func (s *Supervisor) converge(pid int) error {
	err := s.setpgid(pid, pid)
	if err == nil {
		return nil
	}
	pgid, pgErr := s.getpgid(pid)
	if pgErr == nil && pgid == pid {
		return nil
	}
	return fmt.Errorf("set process group for child %d: %w", pid, err)
}

// Suspend stops the child's entire process group.
func (s *Supervisor) Suspend(c *Child) {
	if err := s.signal(-c.Pid, unix.SIGSTOP); err != nil {
		log := logger.WithComponent("supervisor")
		log.Warn().Int("pgid", c.Pid).Err(err).Msg("STOP of process group failed")
		return
	}
	c.state = Suspended
}

// Resume continues the child's entire process group.
func (s *Supervisor) Resume(c *Child) {
	if err := s.signal(-c.Pid, unix.SIGCONT); err != nil {
		log := logger.WithComponent("supervisor")
		log.Warn().Int("pgid", c.Pid).Err(err).Msg("CONT of process group failed")
		return
	}
	c.state = Running
}

// Terminate kills the child itself, not the group. Used only when the
// operator interrupts while the child is actively running.
func (s *Supervisor) Terminate(c *Child) {
	if err := s.signal(c.Pid, unix.SIGKILL); err != nil {
		log := logger.WithComponent("supervisor")
		log.Warn().Int("pid", c.Pid).Err(err).Msg("KILL of child failed")
	}
}

// TryReap performs a non-blocking wait for the child. It must only be called
// while the child is Running: a stopped process cannot exit, so polling while
// Suspended would waste a syscall every iteration.
func (s *Supervisor) TryReap(c *Child) (exited bool, err error) {
	status, exited, err := s.reap(c.Pid)
	if err != nil {
		return false, fmt.Errorf("reap child %d: %w", c.Pid, err)
	}
	if !exited {
		return false, nil
	}
	c.state = Exited
	c.exitStatus = status
	log := logger.WithComponent("supervisor")
	log.Info().
		Int("pid", c.Pid).
		Int("status", status).
		Msg("Child exited")
	return true, nil
}
