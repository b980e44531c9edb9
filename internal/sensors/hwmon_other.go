//go:build !linux

package sensors

import (
	"context"
	"fmt"
)

// NewHwmonBackend returns a backend whose enumeration always fails: the hwmon
// sysfs tree only exists on Linux. Resolution against it aborts the process,
// which is the intended fail-fast behavior on unsupported hosts.
func NewHwmonBackend() Backend {
	return hwmonUnsupported{}
}

type hwmonUnsupported struct{}

func (hwmonUnsupported) Chips(ctx context.Context) ([]Chip, error) {
	return nil, fmt.Errorf("hwmon backend requires the Linux sysfs hwmon tree")
}
