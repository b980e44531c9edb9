package sensors

import "context"

// MaxTemperature reads every resolved temperature descriptor and returns the
// maximum. Thermal protection reacts to the single hottest channel, not an
// average that could mask one overheating core. Any individual read failure
// is returned as-is (a *ReadError) and must be treated as fatal.
func MaxTemperature(ctx context.Context, descriptors []Descriptor) (float64, error) {
	max := -1.0
	for i := range descriptors {
		v, err := descriptors[i].Read(ctx)
		if err != nil {
			return 0, err
		}
		if v > max {
			max = v
		}
	}
	return max, nil
}

// FanReading is one fan descriptor's current value, for diagnostics only.
type FanReading struct {
	Chip    string
	Feature string
	RPM     float64
}

// ReadFans reads every fan descriptor. Fan readings never influence the
// thermal decision, but the fatal-on-error policy is the same as for
// temperatures: any failed read is returned as a *ReadError.
func ReadFans(ctx context.Context, descriptors []Descriptor) ([]FanReading, error) {
	readings := make([]FanReading, 0, len(descriptors))
	for i := range descriptors {
		v, err := descriptors[i].Read(ctx)
		if err != nil {
			return nil, err
		}
		readings = append(readings, FanReading{
			Chip:    descriptors[i].ChipName,
			Feature: descriptors[i].FeatureName,
			RPM:     v,
		})
	}
	return readings, nil
}
