package sensors

import "fmt"

// NewBackend creates the sensor backend named in static configuration.
// The backend choice is fixed at startup; there is no runtime switching.
func NewBackend(name string) (Backend, error) {
	switch name {
	case "", "hwmon":
		return NewHwmonBackend(), nil
	case "gopsutil":
		return NewGopsutilBackend(), nil
	default:
		return nil, fmt.Errorf("unknown sensor backend %q (supported: hwmon, gopsutil)", name)
	}
}
