package sim

import (
	"fmt"

	"github.com/daniacca/entropia/pkg/ecs"
)

// SingleObservable is implemented by component types whose one existing
// record can be converted into a result value, for use with ObserveSingle.
type SingleObservable[O any] interface {
	// Observe converts the record into its result value.
	Observe() O
}

// ManyObservable is implemented by component types whose records can be
// reduced into a single aggregated result value, for use with ObserveMany
// and time series recording. C is the implementing type itself.
type ManyObservable[C, O any] interface {
	// Aggregate reduces a non-empty collection of records into one value.
	// The receiver is always one of the records and serves only as the
	// dispatch point; implementations must not depend on which one.
	Aggregate(records []C) O
}

// CountOf returns the number of entities currently carrying a record of
// component type C. Zero is a valid result, not an error.
func CountOf[C any](s *Simulation) int {
	return ecs.Count[C](s.world)
}

// ObserveSingle converts the record of the single entity carrying component
// type C into a result value. It fails with ErrNotFound when no entity
// carries C and with ErrAmbiguous when more than one does. The population is
// not mutated.
func ObserveSingle[C SingleObservable[O], O any](s *Simulation) (O, error) {
	var zero O
	records := ecs.Collect[C](s.world)
	switch len(records) {
	case 0:
		return zero, fmt.Errorf("observe single %s: %w", ecs.TypeOf[C](), ErrNotFound)
	case 1:
		return records[0].Observe(), nil
	default:
		return zero, fmt.Errorf("observe single %s: found %d entities: %w",
			ecs.TypeOf[C](), len(records), ErrAmbiguous)
	}
}

// ObserveMany reduces the records of every entity carrying component type C
// into one aggregated value. It fails with ErrNotFound when no entity
// carries C: an aggregation over an empty collection is undefined by
// contract and is rejected rather than defaulted. The population is not
// mutated.
//
// Records are passed to the reduction in the substrate's enumeration order,
// which is stable only between structural mutations.
func ObserveMany[C ManyObservable[C, O], O any](s *Simulation) (O, error) {
	var zero O
	records := ecs.Collect[C](s.world)
	if len(records) == 0 {
		return zero, fmt.Errorf("observe many %s: %w", ecs.TypeOf[C](), ErrNotFound)
	}
	return records[0].Aggregate(records), nil
}
