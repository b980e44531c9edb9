package sensors

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v3/host"
)

// gopsutilChipName is the synthetic identity of the single virtual chip the
// gopsutil backend exposes. Sensor keys reported by the host become features.
const gopsutilChipName = "host-virtual-0000"

// gopsutilBackend adapts gopsutil's flat temperature sensor list to the
// chip/feature/subfeature model. It carries temperatures only; configurations
// with fan features fail resolution against it.
type gopsutilBackend struct {
	read func(ctx context.Context) ([]host.TemperatureStat, error)
}

// NewGopsutilBackend returns the gopsutil host sensor backend.
func NewGopsutilBackend() Backend {
	return &gopsutilBackend{read: host.SensorsTemperaturesWithContext}
}

func (b *gopsutilBackend) Chips(ctx context.Context) ([]Chip, error) {
	temps, err := b.read(ctx)
	if err != nil {
		return nil, fmt.Errorf("host sensors: %w", err)
	}
	if len(temps) == 0 {
		return nil, fmt.Errorf("host reports no temperature sensors")
	}

	chip := &gopsutilChip{read: b.read}
	for i, t := range temps {
		chip.keys = append(chip.keys, t.SensorKey)
		chip.features = append(chip.features, &gopsutilFeature{key: t.SensorKey, index: i})
	}
	return []Chip{chip}, nil
}

type gopsutilChip struct {
	read     func(ctx context.Context) ([]host.TemperatureStat, error)
	keys     []string
	features []Feature
}

func (c *gopsutilChip) Name() string { return gopsutilChipName }

func (c *gopsutilChip) Features() ([]Feature, error) { return c.features, nil }

func (c *gopsutilChip) Value(ctx context.Context, subfeature int) (float64, error) {
	if subfeature < 0 || subfeature >= len(c.keys) {
		return 0, fmt.Errorf("chip %s has no subfeature %d", gopsutilChipName, subfeature)
	}
	key := c.keys[subfeature]

	temps, err := c.read(ctx)
	if err != nil {
		return 0, fmt.Errorf("host sensors: %w", err)
	}
	for _, t := range temps {
		if t.SensorKey == key {
			return t.Temperature, nil
		}
	}
	return 0, fmt.Errorf("sensor %q disappeared", key)
}

type gopsutilFeature struct {
	key   string
	index int
}

func (f *gopsutilFeature) Name() string { return f.key }

func (f *gopsutilFeature) Subfeature(kind SubfeatureKind) (int, bool) {
	if kind != TempInput {
		return 0, false
	}
	return f.index, true
}
