package sensors

import (
	"fmt"
	"strings"
)

// ChipPattern matches lm-sensors chip identities of the form
// "prefix-bus-address". Any segment may be the wildcard "*", and a trailing
// "*" matches all remaining segments ("coretemp-*" matches "coretemp-isa-0000").
type ChipPattern struct {
	raw      string
	segments []string
}

// ParseChipPattern validates and compiles a chip name pattern.
// An empty pattern or a pattern with empty segments is unparsable.
func ParseChipPattern(raw string) (*ChipPattern, error) {
	if raw == "" {
		return nil, fmt.Errorf("empty chip name pattern")
	}
	segments := strings.Split(raw, "-")
	for i, s := range segments {
		if s == "" {
			return nil, fmt.Errorf("chip name pattern %q has empty segment at position %d", raw, i+1)
		}
	}
	return &ChipPattern{raw: raw, segments: segments}, nil
}

// Match reports whether the given chip identity satisfies the pattern.
func (p *ChipPattern) Match(chipName string) bool {
	got := strings.Split(chipName, "-")
	for i, want := range p.segments {
		if want == "*" && i == len(p.segments)-1 {
			return true
		}
		if i >= len(got) {
			return false
		}
		if want != "*" && want != got[i] {
			return false
		}
	}
	return len(got) == len(p.segments)
}

// String returns the original pattern text.
func (p *ChipPattern) String() string { return p.raw }
