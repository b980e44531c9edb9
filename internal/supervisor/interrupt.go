package supervisor

import (
	"os"
	"os/signal"
	"sync/atomic"
)

// Interrupts carries the operator-interrupt flags between the signal context
// and the control loop. The signal context only ever writes the killRequested
// flag and pokes the wake channel; the loop is the sole reader/clearer of
// killRequested and the sole writer of killDeferred. This single-writer/
// single-reader discipline plus atomic flags needs no locks.
type Interrupts struct {
	killRequested atomic.Bool
	killDeferred  atomic.Bool

	wake chan struct{}
	sigs chan os.Signal
	done chan struct{}
}

// WatchInterrupts installs the SIGINT watcher and returns the flag set.
func WatchInterrupts() *Interrupts {
	i := newInterrupts()
	i.sigs = make(chan os.Signal, 1)
	signal.Notify(i.sigs, os.Interrupt)
	go func() {
		for {
			select {
			case <-i.done:
				return
			case <-i.sigs:
				i.record()
			}
		}
	}()
	return i
}

func newInterrupts() *Interrupts {
	return &Interrupts{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// record is the whole of the signal-context work: one flag store and one
// non-blocking wake poke. No allocation, no I/O, no process control.
func (i *Interrupts) record() {
	i.killRequested.Store(true)
	select {
	case i.wake <- struct{}{}:
	default:
	}
}

// Stop uninstalls the watcher.
func (i *Interrupts) Stop() {
	if i.sigs != nil {
		signal.Stop(i.sigs)
	}
	close(i.done)
}

// KillRequested reports whether an operator interrupt is pending.
func (i *Interrupts) KillRequested() bool { return i.killRequested.Load() }

// ClearKillRequested acknowledges the pending interrupt.
func (i *Interrupts) ClearKillRequested() { i.killRequested.Store(false) }

// DeferKill records that an interrupt arrived while the child was suspended.
func (i *Interrupts) DeferKill() { i.killDeferred.Store(true) }

// KillDeferred reports whether an interrupt was recorded during suspension.
// The flag is informational: it is reported once and never converted into a
// kill after the child resumes.
func (i *Interrupts) KillDeferred() bool { return i.killDeferred.Load() }

// Wake receives a token after each interrupt so the control loop can cut its
// sleep short instead of waiting out the full interval.
func (i *Interrupts) Wake() <-chan struct{} { return i.wake }
