//go:build linux

package sensors

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// hwmonBackend enumerates chips from the /sys/class/hwmon tree.
type hwmonBackend struct {
	root string
}

// NewHwmonBackend returns the sysfs hwmon backend.
func NewHwmonBackend() Backend {
	return &hwmonBackend{root: "/sys/class/hwmon"}
}

// newHwmonBackendAt is the test hook for a fabricated sysfs tree.
func newHwmonBackendAt(root string) Backend {
	return &hwmonBackend{root: root}
}

func (b *hwmonBackend) Chips(ctx context.Context) ([]Chip, error) {
	entries, err := os.ReadDir(b.root)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", b.root, err)
	}

	var chips []Chip
	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		devicePath := filepath.Join(b.root, entry.Name())
		chip, err := buildHwmonChip(devicePath)
		if err != nil {
			return nil, fmt.Errorf("hwmon device %s: %w", entry.Name(), err)
		}
		chips = append(chips, chip)
	}
	return chips, nil
}

// hwmonSubfeature is one readable value file on a chip.
type hwmonSubfeature struct {
	path string
	kind SubfeatureKind
}

type hwmonChip struct {
	name        string
	features    []Feature
	subfeatures []hwmonSubfeature
}

func (c *hwmonChip) Name() string { return c.name }

func (c *hwmonChip) Features() ([]Feature, error) { return c.features, nil }

func (c *hwmonChip) Value(ctx context.Context, subfeature int) (float64, error) {
	if subfeature < 0 || subfeature >= len(c.subfeatures) {
		return 0, fmt.Errorf("chip %s has no subfeature %d", c.name, subfeature)
	}
	sf := c.subfeatures[subfeature]

	data, err := os.ReadFile(sf.path)
	if err != nil {
		return 0, err
	}
	raw, err := strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", sf.path, err)
	}

	// hwmon exposes temperatures in millidegrees Celsius, fans in plain RPM.
	if sf.kind == TempInput {
		return raw / 1000.0, nil
	}
	return raw, nil
}

type hwmonFeature struct {
	name       string
	kind       SubfeatureKind
	subfeature int
}

func (f *hwmonFeature) Name() string { return f.name }

func (f *hwmonFeature) Subfeature(kind SubfeatureKind) (int, bool) {
	if kind != f.kind {
		return 0, false
	}
	return f.subfeature, true
}

func buildHwmonChip(devicePath string) (*hwmonChip, error) {
	name, err := hwmonDeviceName(devicePath)
	if err != nil {
		return nil, err
	}

	chip := &hwmonChip{name: chipIdentity(devicePath, name)}

	for _, prefix := range []struct {
		glob string
		kind SubfeatureKind
	}{
		{"temp*_input", TempInput},
		{"fan*_input", FanInput},
	} {
		paths, err := filepath.Glob(filepath.Join(devicePath, prefix.glob))
		if err != nil {
			return nil, err
		}
		sort.Strings(paths)
		for _, p := range paths {
			index := len(chip.subfeatures)
			chip.subfeatures = append(chip.subfeatures, hwmonSubfeature{path: p, kind: prefix.kind})
			chip.features = append(chip.features, &hwmonFeature{
				name:       strings.TrimSuffix(filepath.Base(p), "_input"),
				kind:       prefix.kind,
				subfeature: index,
			})
		}
	}
	return chip, nil
}

func hwmonDeviceName(devicePath string) (string, error) {
	data, err := os.ReadFile(filepath.Join(devicePath, "name"))
	if err != nil {
		return "", fmt.Errorf("read device name: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// chipIdentity builds the lm-sensors style "prefix-bus-address" identity from
// the hwmon device's backing bus device, e.g. coretemp.0 -> coretemp-isa-0000,
// 0000:00:18.3 -> k10temp-pci-00c3, 1-004c -> lm90-i2c-1-4c.
func chipIdentity(devicePath, name string) string {
	target, err := filepath.EvalSymlinks(filepath.Join(devicePath, "device"))
	if err != nil {
		return name + "-virtual-0"
	}
	base := filepath.Base(target)

	// PCI: dddd:bb:dd.f, lm-sensors address = bus<<8 | dev<<3 | fn.
	if parts := strings.Split(base, ":"); len(parts) == 3 {
		bus, err1 := strconv.ParseUint(parts[1], 16, 8)
		devfn := strings.Split(parts[2], ".")
		if len(devfn) == 2 {
			dev, err2 := strconv.ParseUint(devfn[0], 16, 8)
			fn, err3 := strconv.ParseUint(devfn[1], 16, 8)
			if err1 == nil && err2 == nil && err3 == nil {
				return fmt.Sprintf("%s-pci-%04x", name, bus<<8|dev<<3|fn)
			}
		}
	}

	// I2C: bus-addr, e.g. "1-004c".
	if parts := strings.Split(base, "-"); len(parts) == 2 {
		busNum, err1 := strconv.Atoi(parts[0])
		addr, err2 := strconv.ParseUint(parts[1], 16, 16)
		if err1 == nil && err2 == nil {
			return fmt.Sprintf("%s-i2c-%d-%x", name, busNum, addr)
		}
	}

	// Platform: driver.instance, e.g. "coretemp.0".
	if dot := strings.LastIndexByte(base, '.'); dot >= 0 {
		if instance, err := strconv.Atoi(base[dot+1:]); err == nil {
			return fmt.Sprintf("%s-isa-%04x", name, instance)
		}
	}

	return name + "-virtual-0"
}
