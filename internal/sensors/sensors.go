// Package sensors resolves configured hardware monitoring features into live,
// readable descriptors and aggregates their readings.
//
// The backend model mirrors the lm-sensors hierarchy: a chip (one hardware
// monitoring device) exposes features (individual temperature or fan
// channels), and each feature exposes subfeatures (the concrete readable
// quantities, addressed by index on the owning chip).
package sensors

import (
	"context"
	"fmt"
)

// SubfeatureKind identifies which readable quantity of a feature is wanted.
type SubfeatureKind int

const (
	// TempInput is the current temperature reading of a temp feature, in °C.
	TempInput SubfeatureKind = iota
	// FanInput is the current speed reading of a fan feature, in RPM.
	FanInput
)

// String returns a human-readable kind name for diagnostics.
func (k SubfeatureKind) String() string {
	switch k {
	case TempInput:
		return "temp_input"
	case FanInput:
		return "fan_input"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Feature is a single named channel on a chip.
type Feature interface {
	// Name returns the feature's display name, e.g. "temp2" or "fan1".
	Name() string

	// Subfeature returns the chip-local index of the subfeature of the given
	// kind, or ok=false if the feature has no subfeature of that kind.
	Subfeature(kind SubfeatureKind) (index int, ok bool)
}

// Chip is a detected hardware monitoring device.
type Chip interface {
	// Name returns the chip identity in lm-sensors form, e.g. "coretemp-isa-0000".
	Name() string

	// Features enumerates the chip's channels.
	Features() ([]Feature, error)

	// Value reads the current value of the subfeature at the given index.
	Value(ctx context.Context, subfeature int) (float64, error)
}

// Backend enumerates detected chips. Implementations: hwmon sysfs and gopsutil.
type Backend interface {
	Chips(ctx context.Context) ([]Chip, error)
}

// FeatureSpec names one monitored channel in static configuration.
// Chip is an lm-sensors chip name pattern; Feature is the exact channel name.
type FeatureSpec struct {
	Chip    string `json:"Chip"`
	Feature string `json:"Feature"`
}

// Descriptor is a resolved, immutable handle to one monitored channel.
// Built once at startup and read-only thereafter.
type Descriptor struct {
	ChipName    string
	FeatureName string

	chip       Chip
	subfeature int
}

// Read returns the descriptor's current value. Any failure is wrapped in a
// *ReadError; callers treat it as fatal and never substitute a stale value.
func (d *Descriptor) Read(ctx context.Context) (float64, error) {
	v, err := d.chip.Value(ctx, d.subfeature)
	if err != nil {
		return 0, &ReadError{Chip: d.ChipName, Feature: d.FeatureName, Err: err}
	}
	return v, nil
}

// ResolutionError reports a configured feature that could not be resolved
// against the detected hardware. It is fatal before any child is spawned.
type ResolutionError struct {
	Chip    string
	Feature string
	Reason  string
	Err     error
}

func (e *ResolutionError) Error() string {
	msg := fmt.Sprintf("resolve %s:%s: %s", e.Chip, e.Feature, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// ReadError reports a failed sensor read after monitoring has begun.
// It is fatal: acting on unknown thermal state is unsafe.
type ReadError struct {
	Chip    string
	Feature string
	Err     error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s:%s: %v", e.Chip, e.Feature, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }
