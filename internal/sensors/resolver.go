package sensors

import (
	"context"

	"thermarun/internal/logger"
)

// Resolve turns the configured feature specs into live descriptors, in spec
// order. Every spec must resolve: the first error aborts resolution, since
// there is no partial-hardware mode. The returned slice is immutable for the
// process lifetime.
func Resolve(ctx context.Context, backend Backend, specs []FeatureSpec, kind SubfeatureKind) ([]Descriptor, error) {
	log := logger.WithComponent("resolver")

	chips, err := backend.Chips(ctx)
	if err != nil {
		return nil, &ResolutionError{Reason: "enumerate chips", Err: err}
	}

	descriptors := make([]Descriptor, 0, len(specs))
	for _, spec := range specs {
		d, err := resolveOne(ctx, chips, spec, kind)
		if err != nil {
			return nil, err
		}
		log.Debug().
			Str("chip", d.ChipName).
			Str("feature", d.FeatureName).
			Str("kind", kind.String()).
			Int("subfeature", d.subfeature).
			Msg("Feature resolved")
		descriptors = append(descriptors, *d)
	}
	return descriptors, nil
}

// resolveOne finds the first detected chip matching the spec's name pattern
// that carries the named feature, then looks up the subfeature of the wanted
// kind. A chip that matches the pattern but lacks the feature does not end
// the search; a matching feature without the subfeature does.
func resolveOne(ctx context.Context, chips []Chip, spec FeatureSpec, kind SubfeatureKind) (*Descriptor, error) {
	pattern, err := ParseChipPattern(spec.Chip)
	if err != nil {
		return nil, &ResolutionError{Chip: spec.Chip, Feature: spec.Feature, Reason: "unparsable chip name", Err: err}
	}

	for _, chip := range chips {
		if !pattern.Match(chip.Name()) {
			continue
		}
		features, err := chip.Features()
		if err != nil {
			return nil, &ResolutionError{Chip: spec.Chip, Feature: spec.Feature, Reason: "enumerate features", Err: err}
		}
		for _, f := range features {
			if f.Name() != spec.Feature {
				continue
			}
			index, ok := f.Subfeature(kind)
			if !ok {
				return nil, &ResolutionError{
					Chip:    spec.Chip,
					Feature: spec.Feature,
					Reason:  "no " + kind.String() + " subfeature",
				}
			}
			return &Descriptor{
				ChipName:    chip.Name(),
				FeatureName: spec.Feature,
				chip:        chip,
				subfeature:  index,
			}, nil
		}
	}

	return nil, &ResolutionError{Chip: spec.Chip, Feature: spec.Feature, Reason: "no matching chip carries the feature"}
}
