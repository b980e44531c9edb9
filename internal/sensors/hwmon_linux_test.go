//go:build linux

package sensors

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

// writeHwmonDevice fabricates one hwmon device directory with a name file and
// the given value files.
func writeHwmonDevice(t *testing.T, root, dir, name string, files map[string]string) {
	t.Helper()
	devicePath := filepath.Join(root, dir)
	if err := os.MkdirAll(devicePath, 0755); err != nil {
		t.Fatal(err)
	}
	files["name"] = name
	for file, content := range files {
		if err := os.WriteFile(filepath.Join(devicePath, file), []byte(content+"\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestHwmonBackend_ChipsAndValues(t *testing.T) {
	root := t.TempDir()
	writeHwmonDevice(t, root, "hwmon0", "coretemp", map[string]string{
		"temp2_input": "41000",
		"temp3_input": "58500",
	})
	writeHwmonDevice(t, root, "hwmon1", "nct6776", map[string]string{
		"fan1_input": "880",
	})

	backend := newHwmonBackendAt(root)
	chips, err := backend.Chips(context.Background())
	if err != nil {
		t.Fatalf("Chips failed: %v", err)
	}
	if len(chips) != 2 {
		t.Fatalf("got %d chips, want 2", len(chips))
	}

	byName := map[string]Chip{}
	for _, c := range chips {
		byName[c.Name()] = c
	}

	// No device symlink in the fabricated tree, so identities fall back to
	// the virtual bus.
	coretemp, ok := byName["coretemp-virtual-0"]
	if !ok {
		t.Fatalf("coretemp chip missing, have %v", chips)
	}

	features, err := coretemp.Features()
	if err != nil {
		t.Fatalf("Features failed: %v", err)
	}
	if len(features) != 2 {
		t.Fatalf("got %d features, want 2", len(features))
	}
	if features[0].Name() != "temp2" || features[1].Name() != "temp3" {
		t.Errorf("feature names = %q, %q", features[0].Name(), features[1].Name())
	}

	index, ok := features[1].Subfeature(TempInput)
	if !ok {
		t.Fatal("temp3 has no temp_input subfeature")
	}
	v, err := coretemp.Value(context.Background(), index)
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}
	// Millidegrees scale to degrees.
	if v != 58.5 {
		t.Errorf("temp3 = %v, want 58.5", v)
	}

	if _, ok := features[1].Subfeature(FanInput); ok {
		t.Error("temp feature reports a fan_input subfeature")
	}

	fans, ok := byName["nct6776-virtual-0"]
	if !ok {
		t.Fatal("fan chip missing")
	}
	fanFeatures, _ := fans.Features()
	fanIndex, ok := fanFeatures[0].Subfeature(FanInput)
	if !ok {
		t.Fatal("fan1 has no fan_input subfeature")
	}
	rpm, err := fans.Value(context.Background(), fanIndex)
	if err != nil {
		t.Fatalf("fan Value failed: %v", err)
	}
	// RPM values are not scaled.
	if rpm != 880 {
		t.Errorf("fan1 = %v, want 880", rpm)
	}
}

func TestHwmonBackend_ResolveAgainstTree(t *testing.T) {
	root := t.TempDir()
	writeHwmonDevice(t, root, "hwmon0", "coretemp", map[string]string{
		"temp2_input": "41000",
	})

	backend := newHwmonBackendAt(root)
	descriptors, err := Resolve(context.Background(), backend,
		[]FeatureSpec{{Chip: "coretemp-*", Feature: "temp2"}}, TempInput)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	max, err := MaxTemperature(context.Background(), descriptors)
	if err != nil {
		t.Fatalf("MaxTemperature failed: %v", err)
	}
	if max != 41 {
		t.Errorf("max = %v, want 41", max)
	}
}

func TestHwmonBackend_MissingRoot(t *testing.T) {
	backend := newHwmonBackendAt(filepath.Join(t.TempDir(), "nope"))
	if _, err := backend.Chips(context.Background()); err == nil {
		t.Fatal("Chips succeeded on missing root, want error")
	}
}

func TestChipIdentity(t *testing.T) {
	// Identity derivation operates on the resolved device path basename;
	// exercise the parsers through fabricated device symlinks.
	root := t.TempDir()

	tests := []struct {
		dir    string
		device string
		name   string
		want   string
	}{
		{"hwmon0", "coretemp.0", "coretemp", "coretemp-isa-0000"},
		{"hwmon1", "0000:00:18.3", "k10temp", "k10temp-pci-00c3"},
		{"hwmon2", "1-004c", "lm90", "lm90-i2c-1-4c"},
		{"hwmon3", "weird", "acpitz", "acpitz-virtual-0"},
	}

	for _, tt := range tests {
		devicePath := filepath.Join(root, tt.dir)
		target := filepath.Join(root, "devices", tt.device)
		if err := os.MkdirAll(target, 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.MkdirAll(devicePath, 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.Symlink(target, filepath.Join(devicePath, "device")); err != nil {
			t.Fatal(err)
		}

		if got := chipIdentity(devicePath, tt.name); got != tt.want {
			t.Errorf("chipIdentity(%s) = %q, want %q", tt.device, got, tt.want)
		}
	}
}
