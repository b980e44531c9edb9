package control

import "thermarun/internal/supervisor"

// SupervisedProcess binds a supervisor and its spawned child to the Process
// interface the loop drives.
type SupervisedProcess struct {
	sup   *supervisor.Supervisor
	child *supervisor.Child
}

// NewSupervisedProcess wraps an already-spawned child.
func NewSupervisedProcess(sup *supervisor.Supervisor, child *supervisor.Child) *SupervisedProcess {
	return &SupervisedProcess{sup: sup, child: child}
}

func (p *SupervisedProcess) Pid() int        { return p.child.Pid }
func (p *SupervisedProcess) Suspend()        { p.sup.Suspend(p.child) }
func (p *SupervisedProcess) Resume()         { p.sup.Resume(p.child) }
func (p *SupervisedProcess) Terminate()      { p.sup.Terminate(p.child) }
func (p *SupervisedProcess) ExitStatus() int { return p.child.ExitStatus() }

func (p *SupervisedProcess) TryReap() (bool, error) {
	return p.sup.TryReap(p.child)
}
