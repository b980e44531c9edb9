// Package control runs the single-threaded supervision loop: sample the
// temperature aggregate, feed the hysteresis governor, act on its decision,
// service pending interrupts, and sleep for a state-dependent interval.
package control

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"

	"thermarun/internal/events"
	"thermarun/internal/governor"
	"thermarun/internal/logger"
	"thermarun/internal/sensors"
)

// Process is the loop's view of the supervised child.
type Process interface {
	Pid() int
	Suspend()
	Resume()
	Terminate()
	TryReap() (exited bool, err error)
	ExitStatus() int
}

// InterruptSource exposes the interrupt flags and the early-wake channel.
// *supervisor.Interrupts implements it.
type InterruptSource interface {
	KillRequested() bool
	ClearKillRequested()
	DeferKill()
	KillDeferred() bool
	Wake() <-chan struct{}
}

// EventSink receives the operator-facing events. *events.Emitter implements
// it.
type EventSink interface {
	Emit(ctx context.Context, ev events.Event)
}

// Intervals are the polling cadences. Hot applies while the child is
// suspended, Cool while it runs; FanReport throttles fan diagnostics and
// disables them when zero.
type Intervals struct {
	Hot       time.Duration
	Cool      time.Duration
	FanReport time.Duration
}

// Loop owns one supervision run. All state transitions happen on the
// goroutine calling Run; the interrupt source is the only concurrent input.
type Loop struct {
	clk       clock.Clock
	gov       *governor.Governor
	proc      Process
	intr      InterruptSource
	sink      EventSink
	intervals Intervals

	sampleMax func(ctx context.Context) (float64, error)
	readFans  func(ctx context.Context) ([]sensors.FanReading, error)

	lastFanReport time.Time
	log           zerolog.Logger
}

// Config assembles a Loop.
type Config struct {
	Clock      clock.Clock // nil selects the wall clock
	Governor   *governor.Governor
	Process    Process
	Interrupts InterruptSource
	Sink       EventSink
	Intervals  Intervals

	SampleMax func(ctx context.Context) (float64, error)
	ReadFans  func(ctx context.Context) ([]sensors.FanReading, error)
}

// New builds the loop.
func New(cfg Config) *Loop {
	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}
	return &Loop{
		clk:       clk,
		gov:       cfg.Governor,
		proc:      cfg.Process,
		intr:      cfg.Interrupts,
		sink:      cfg.Sink,
		intervals: cfg.Intervals,
		sampleMax: cfg.SampleMax,
		readFans:  cfg.ReadFans,
		log:       logger.WithComponent("control"),
	}
}

// Run drives the loop until the child exits, a sensor read fails, or the
// context is canceled. The returned status is the child's exit status and is
// valid only when err is nil.
func (l *Loop) Run(ctx context.Context) (status int, err error) {
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		max, err := l.sampleMax(ctx)
		if err != nil {
			l.log.Error().Err(err).Msg("Temperature sampling failed")
			return 0, err
		}

		if err := l.reportFans(ctx); err != nil {
			l.log.Error().Err(err).Msg("Fan reading failed")
			return 0, err
		}

		if l.gov.State() == governor.Hot {
			l.suspendedStep(ctx, max)
		} else {
			if done, status, err := l.runningStep(ctx, max); done {
				return status, err
			}
		}

		if err := l.sleep(ctx); err != nil {
			return 0, err
		}
	}
}

// suspendedStep services one iteration while the child's group is stopped.
// An interrupt arriving here cannot be honored immediately: killing a stopped
// process group leaves it stopped, so the request is recorded and announced
// once, and the child keeps running once the temperature recovers.
func (l *Loop) suspendedStep(ctx context.Context, max float64) {
	if l.intr.KillRequested() {
		l.sink.Emit(ctx, events.DeferredKill(l.proc.Pid()))
		l.intr.DeferKill()
		l.intr.ClearKillRequested()
	}

	if l.gov.Observe(max) == governor.Resume {
		l.log.Info().Float64("max_temp", max).Int("pid", l.proc.Pid()).Msg("Resuming child group")
		l.sink.Emit(ctx, events.Resumed(max, l.proc.Pid()))
		l.proc.Resume()
	}
}

// runningStep services one iteration while the child runs: honor a pending
// interrupt, collect the child if it exited, then suspend on a hot sample.
// The exit check precedes the governor so a finished child's status is never
// delayed by a suspend.
func (l *Loop) runningStep(ctx context.Context, max float64) (done bool, status int, err error) {
	if l.intr.KillRequested() {
		l.sink.Emit(ctx, events.ImmediateKill(l.proc.Pid()))
		l.intr.ClearKillRequested()
		l.proc.Terminate()
	}

	exited, err := l.proc.TryReap()
	if err != nil {
		return true, 0, err
	}
	if exited {
		return true, l.proc.ExitStatus(), nil
	}

	if l.gov.Observe(max) == governor.Suspend {
		l.log.Info().Float64("max_temp", max).Int("pid", l.proc.Pid()).Msg("Suspending child group")
		l.sink.Emit(ctx, events.Suspended(max, l.proc.Pid()))
		l.proc.Suspend()
	}
	return false, 0, nil
}

// reportFans emits one diagnostic line per configured fan, at most once per
// FanReport interval. A failed fan read is fatal, the same policy as a failed
// temperature read: a sensor that stops answering means thermal state is
// unknown.
func (l *Loop) reportFans(ctx context.Context) error {
	if l.readFans == nil || l.intervals.FanReport <= 0 {
		return nil
	}
	now := l.clk.Now()
	if !l.lastFanReport.IsZero() && now.Sub(l.lastFanReport) < l.intervals.FanReport {
		return nil
	}
	l.lastFanReport = now

	readings, err := l.readFans(ctx)
	if err != nil {
		return err
	}
	for _, r := range readings {
		l.sink.Emit(ctx, events.Fan(r))
	}
	return nil
}

// sleep waits for the state-dependent interval, waking early on an interrupt
// or on context cancellation.
func (l *Loop) sleep(ctx context.Context) error {
	interval := l.intervals.Cool
	if l.gov.State() == governor.Hot {
		interval = l.intervals.Hot
	}

	timer := l.clk.Timer(interval)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-l.intr.Wake():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
