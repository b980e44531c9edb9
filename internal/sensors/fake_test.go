package sensors

import "context"

// fakeFeature is a feature with one subfeature per kind.
type fakeFeature struct {
	name  string
	kinds map[SubfeatureKind]int
}

func (f *fakeFeature) Name() string { return f.name }

func (f *fakeFeature) Subfeature(kind SubfeatureKind) (int, bool) {
	index, ok := f.kinds[kind]
	return index, ok
}

type fakeChip struct {
	name     string
	features []Feature
	values   map[int]float64
	errs     map[int]error
}

func (c *fakeChip) Name() string { return c.name }

func (c *fakeChip) Features() ([]Feature, error) { return c.features, nil }

func (c *fakeChip) Value(ctx context.Context, subfeature int) (float64, error) {
	if err, ok := c.errs[subfeature]; ok {
		return 0, err
	}
	return c.values[subfeature], nil
}

type fakeBackend struct {
	chips []Chip
	err   error
}

func (b *fakeBackend) Chips(ctx context.Context) ([]Chip, error) {
	return b.chips, b.err
}

// coretempChip builds a chip in the shape of the reference hardware: temp
// channels temp2..tempN with temp_input subfeatures at successive indices.
func coretempChip(name string, temps map[string]float64) *fakeChip {
	chip := &fakeChip{name: name, values: map[int]float64{}, errs: map[int]error{}}
	index := 0
	for _, ch := range []string{"temp2", "temp3", "temp4", "temp5", "temp6", "temp7"} {
		v, ok := temps[ch]
		if !ok {
			continue
		}
		chip.features = append(chip.features, &fakeFeature{
			name:  ch,
			kinds: map[SubfeatureKind]int{TempInput: index},
		})
		chip.values[index] = v
		index++
	}
	return chip
}

func fanChip(name string, fans map[string]float64) *fakeChip {
	chip := &fakeChip{name: name, values: map[int]float64{}, errs: map[int]error{}}
	index := 0
	for _, ch := range []string{"fan1", "fan2", "fan3"} {
		v, ok := fans[ch]
		if !ok {
			continue
		}
		chip.features = append(chip.features, &fakeFeature{
			name:  ch,
			kinds: map[SubfeatureKind]int{FanInput: index},
		})
		chip.values[index] = v
		index++
	}
	return chip
}
