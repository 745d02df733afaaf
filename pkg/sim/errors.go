package sim

import "errors"

var (
	// ErrEmptyRecipe is returned by Builder.Build when neither spawners nor
	// systems were registered. An experiment with nothing to create and
	// nothing to evolve is rejected as meaningless.
	ErrEmptyRecipe = errors.New("empty recipe: no spawners and no systems registered")

	// ErrNotFound is returned by observation calls when no entity carries
	// the requested component type. It signals "nothing to observe yet" and
	// is fully recoverable.
	ErrNotFound = errors.New("no entity carries the observed component")

	// ErrAmbiguous is returned by ObserveSingle when more than one entity
	// carries the requested component type. It usually indicates a modeling
	// mistake in the spawners or systems.
	ErrAmbiguous = errors.New("multiple entities carry the observed component")

	// ErrDuplicateTimeSeries is returned by RecordTimeSeries when a series
	// for the same component and value type pair is already registered.
	ErrDuplicateTimeSeries = errors.New("time series already recorded for this component and value type")
)
