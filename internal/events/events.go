// Package events emits the numbered operator-facing event lines and mirrors
// them to optional structured sinks.
//
// The stdout protocol is the contract with operators and scripts: every state
// transition and interrupt produces one numbered line ("171 ..."), every fan
// reading one "Got chip:feature = value" line. Sinks beyond stdout (file,
// kafka, redis) are diagnostics transports; their failures are logged and
// never interrupt thermal protection.
package events

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"thermarun/internal/logger"
	"thermarun/internal/sensors"
)

// Numbered event codes of the stdout protocol.
const (
	CodeSuspend       = 171 // temperature above hot threshold, group stopped
	CodeResume        = 172 // temperature below cool threshold, group continued
	CodeDeferredKill  = 173 // interrupt while suspended, recorded only
	CodeImmediateKill = 174 // interrupt while running, child killed
)

// Event is one operator-visible occurrence. Fan readings carry no code.
type Event struct {
	Code        int       `json:"Code,omitempty"`
	Message     string    `json:"Message"`
	Temperature float64   `json:"Temperature,omitempty"`
	Pid         int       `json:"Pid,omitempty"`
	Chip        string    `json:"Chip,omitempty"`
	Feature     string    `json:"Feature,omitempty"`
	RPM         float64   `json:"RPM,omitempty"`
	Timestamp   time.Time `json:"Timestamp"`
}

// Suspended is the COOL→HOT transition event.
func Suspended(temperature float64, pid int) Event {
	return Event{
		Code:        CodeSuspend,
		Message:     fmt.Sprintf("Temperature up to %.0f, suspending pid %d", temperature, pid),
		Temperature: temperature,
		Pid:         pid,
		Timestamp:   time.Now(),
	}
}

// Resumed is the HOT→COOL transition event.
func Resumed(temperature float64, pid int) Event {
	return Event{
		Code:        CodeResume,
		Message:     fmt.Sprintf("Temperature down to %.0f, resuming pid %d", temperature, pid),
		Temperature: temperature,
		Pid:         pid,
		Timestamp:   time.Now(),
	}
}

// DeferredKill reports an interrupt that arrived while the child was
// suspended.
func DeferredKill(pid int) Event {
	return Event{
		Code:      CodeDeferredKill,
		Message:   "Ctrl-C detected while suspended, will kill child on resume",
		Pid:       pid,
		Timestamp: time.Now(),
	}
}

// ImmediateKill reports an interrupt acted on while the child was running.
func ImmediateKill(pid int) Event {
	return Event{
		Code:      CodeImmediateKill,
		Message:   "Ctrl-C detected, killing child",
		Pid:       pid,
		Timestamp: time.Now(),
	}
}

// Fan is one diagnostic fan reading.
func Fan(r sensors.FanReading) Event {
	return Event{
		Message:   fmt.Sprintf("Got %s:%s = %.3f", r.Chip, r.Feature, r.RPM),
		Chip:      r.Chip,
		Feature:   r.Feature,
		RPM:       r.RPM,
		Timestamp: time.Now(),
	}
}

// Sink receives every emitted event.
type Sink interface {
	Emit(ctx context.Context, ev Event) error
	Close() error
}

// ConsoleSink writes the plain line protocol.
type ConsoleSink struct {
	w io.Writer
}

// NewConsoleSink writes the protocol to the given writer (stdout in the
// supervisor, a buffer in tests).
func NewConsoleSink(w io.Writer) *ConsoleSink {
	return &ConsoleSink{w: w}
}

// Emit writes one protocol line: "<code> <message>" for numbered events,
// the bare message for fan readings.
func (s *ConsoleSink) Emit(ctx context.Context, ev Event) error {
	var err error
	if ev.Code != 0 {
		_, err = fmt.Fprintf(s.w, "%d %s\n", ev.Code, ev.Message)
	} else {
		_, err = fmt.Fprintf(s.w, "%s\n", ev.Message)
	}
	return err
}

// Close is a no-op: the console sink does not own its writer.
func (s *ConsoleSink) Close() error { return nil }

// Emitter fans events out to the unconditional console sink plus any number
// of configured extras. Extra-sink failures are logged and swallowed.
type Emitter struct {
	console Sink
	extras  []Sink
}

// NewEmitter builds an emitter over stdout and the given extra sinks.
func NewEmitter(extras ...Sink) *Emitter {
	return &Emitter{console: NewConsoleSink(os.Stdout), extras: extras}
}

// newEmitterTo is the test hook for capturing the console protocol.
func newEmitterTo(w io.Writer, extras ...Sink) *Emitter {
	return &Emitter{console: NewConsoleSink(w), extras: extras}
}

// Emit delivers the event everywhere.
func (e *Emitter) Emit(ctx context.Context, ev Event) {
	log := logger.WithComponent("events")
	if err := e.console.Emit(ctx, ev); err != nil {
		log.Error().Err(err).Msg("Console emit failed")
	}
	for _, s := range e.extras {
		if err := s.Emit(ctx, ev); err != nil {
			log.Warn().Err(err).Int("code", ev.Code).Msg("Sink emit failed")
		}
	}
}

// Close closes the extra sinks.
func (e *Emitter) Close() {
	log := logger.WithComponent("events")
	for _, s := range e.extras {
		if err := s.Close(); err != nil {
			log.Warn().Err(err).Msg("Sink close failed")
		}
	}
}
