// Package governor implements the two-state hysteresis machine that turns
// temperature samples into suspend/resume decisions.
package governor

import "fmt"

// State is the governor's thermal state.
type State int

const (
	// Cool is the initial state: the child runs, sampling is frequent.
	Cool State = iota
	// Hot means the child is suspended until the temperature falls below
	// the cool threshold.
	Hot
)

func (s State) String() string {
	switch s {
	case Cool:
		return "COOL"
	case Hot:
		return "HOT"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Decision is the action a sample calls for.
type Decision int

const (
	// Hold keeps the current state. Samples inside the dead band
	// [cool_threshold, hot_threshold] always hold, preventing oscillation
	// around a single crossing point.
	Hold Decision = iota
	// Suspend is the COOL→HOT transition: stop the child's process group.
	Suspend
	// Resume is the HOT→COOL transition: continue the child's process group.
	Resume
)

// Governor holds the hysteresis state. Thresholds are validated once at
// configuration time (hot ≥ cool) and are immutable here.
type Governor struct {
	hot   float64
	cool  float64
	state State
}

// New creates a governor in the Cool state with the given validated thresholds.
func New(hot, cool float64) *Governor {
	return &Governor{hot: hot, cool: cool, state: Cool}
}

// State returns the current thermal state.
func (g *Governor) State() State { return g.state }

// Observe feeds one max-temperature sample through the transition rules and
// returns the decision. Cool→Hot requires the sample strictly above the hot
// threshold; Hot→Cool requires it strictly below the cool threshold.
func (g *Governor) Observe(max float64) Decision {
	switch g.state {
	case Cool:
		if max > g.hot {
			g.state = Hot
			return Suspend
		}
	case Hot:
		if max < g.cool {
			g.state = Cool
			return Resume
		}
	}
	return Hold
}
