package sensors

import "testing"

func TestChipPattern_Match(t *testing.T) {
	tests := []struct {
		pattern string
		chip    string
		want    bool
	}{
		{"coretemp-isa-0000", "coretemp-isa-0000", true},
		{"coretemp-isa-0000", "coretemp-isa-0001", false},
		{"coretemp-isa-0000", "nct6776-isa-0290", false},
		{"coretemp-*", "coretemp-isa-0000", true},
		{"coretemp-*", "nct6776-isa-0290", false},
		{"*", "coretemp-isa-0000", true},
		{"coretemp-*-0000", "coretemp-isa-0000", true},
		{"coretemp-*-0000", "coretemp-pci-0000", true},
		{"coretemp-*-0000", "coretemp-isa-0290", false},
		{"coretemp", "coretemp-isa-0000", false},
		{"coretemp-isa-0000", "coretemp", false},
	}

	for _, tt := range tests {
		p, err := ParseChipPattern(tt.pattern)
		if err != nil {
			t.Fatalf("ParseChipPattern(%q) failed: %v", tt.pattern, err)
		}
		if got := p.Match(tt.chip); got != tt.want {
			t.Errorf("pattern %q match %q = %v, want %v", tt.pattern, tt.chip, got, tt.want)
		}
	}
}

func TestParseChipPattern_Invalid(t *testing.T) {
	for _, pattern := range []string{"", "coretemp--0000", "-isa-0000", "coretemp-isa-"} {
		if _, err := ParseChipPattern(pattern); err == nil {
			t.Errorf("ParseChipPattern(%q) succeeded, want error", pattern)
		}
	}
}
