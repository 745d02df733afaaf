package sim

import (
	"fmt"
	"reflect"

	"github.com/daniacca/entropia/pkg/ecs"
)

type seriesKey struct {
	component reflect.Type
	// ident is nil for aggregate series and the identifier component type
	// for per-entity series.
	ident reflect.Type
	value reflect.Type
}

// seriesRecorder is one per-simulation time series. The builder keeps
// factories rather than recorders so that simulations built from the same
// recipe never share sample storage.
type seriesRecorder struct {
	key      seriesKey
	interval int
	sample   func(w *ecs.World)
	reset    func()
	snapshot func() any
}

// RecordTimeSeries registers the recording of an aggregate time series on
// the recipe. After every interval-th completed step, the records of all
// entities carrying component type C are reduced with C's Aggregate and the
// result appended to the series. Steps where no entity carries C contribute
// no sample. Reset clears the series.
//
// interval must be at least 1. At most one series per (component, value)
// type pair may be recorded; a second registration fails with
// ErrDuplicateTimeSeries.
func RecordTimeSeries[C ManyObservable[C, O], O any](b *Builder, interval int) error {
	key := seriesKey{component: ecs.TypeOf[C](), value: ecs.TypeOf[O]()}
	if interval < 1 {
		return fmt.Errorf("record time series %s: interval must be at least 1, got %d",
			key.component, interval)
	}
	if b.seriesKeys == nil {
		b.seriesKeys = make(map[seriesKey]struct{})
	}
	if _, exists := b.seriesKeys[key]; exists {
		return fmt.Errorf("record time series %s: %w", key.component, ErrDuplicateTimeSeries)
	}
	b.seriesKeys[key] = struct{}{}

	b.seriesFactories = append(b.seriesFactories, func() *seriesRecorder {
		var values []O
		return &seriesRecorder{
			key:      key,
			interval: interval,
			sample: func(w *ecs.World) {
				records := ecs.Collect[C](w)
				if len(records) == 0 {
					return
				}
				values = append(values, records[0].Aggregate(records))
			},
			reset: func() { values = values[:0] },
			snapshot: func() any {
				out := make([]O, len(values))
				copy(out, values)
				return out
			},
		}
	})
	return nil
}

// RecordEntityTimeSeries registers the recording of one time series per
// identified entity on the recipe. After every interval-th completed step,
// every entity carrying both component type C and identifier component type I
// contributes one sample, obtained from C's Observe, to the series keyed by
// its identifier value. Entities carrying C but not I are skipped. Reset
// clears all series; an entity spawned mid-run starts contributing at the
// next sampled step.
//
// I must be a comparable component type whose value is unique per tracked
// entity; duplicate identifier values silently merge their series.
//
// interval must be at least 1. At most one recording per
// (component, identifier, value) type triple may be registered; a second
// registration fails with ErrDuplicateTimeSeries.
func RecordEntityTimeSeries[C SingleObservable[O], I comparable, O any](b *Builder, interval int) error {
	key := seriesKey{component: ecs.TypeOf[C](), ident: ecs.TypeOf[I](), value: ecs.TypeOf[O]()}
	if interval < 1 {
		return fmt.Errorf("record entity time series %s: interval must be at least 1, got %d",
			key.component, interval)
	}
	if b.seriesKeys == nil {
		b.seriesKeys = make(map[seriesKey]struct{})
	}
	if _, exists := b.seriesKeys[key]; exists {
		return fmt.Errorf("record entity time series %s: %w", key.component, ErrDuplicateTimeSeries)
	}
	b.seriesKeys[key] = struct{}{}

	b.seriesFactories = append(b.seriesFactories, func() *seriesRecorder {
		series := make(map[I][]O)
		return &seriesRecorder{
			key:      key,
			interval: interval,
			sample: func(w *ecs.World) {
				ecs.View(w, func(e ecs.Entity, c *C) {
					id, ok := ecs.Get[I](w, e)
					if !ok {
						return
					}
					series[*id] = append(series[*id], (*c).Observe())
				})
			},
			reset: func() { series = make(map[I][]O) },
			snapshot: func() any {
				out := make(map[I][]O, len(series))
				for id, values := range series {
					cp := make([]O, len(values))
					copy(cp, values)
					out[id] = cp
				}
				return out
			},
		}
	})
	return nil
}

// TimeSeriesOf returns a copy of the samples recorded so far for the series
// of component type C and value type O. It fails with ErrNotFound when no
// such series was registered on the recipe.
func TimeSeriesOf[C ManyObservable[C, O], O any](s *Simulation) ([]O, error) {
	key := seriesKey{component: ecs.TypeOf[C](), value: ecs.TypeOf[O]()}
	for _, r := range s.recorders {
		if r.key == key {
			return r.snapshot().([]O), nil
		}
	}
	return nil, fmt.Errorf("time series %s: no recording registered: %w", key.component, ErrNotFound)
}

// EntityTimeSeriesOf returns a copy of the per-entity series recorded so far,
// keyed by identifier value. It fails with ErrNotFound when no matching
// recording was registered on the recipe. An entity that never contributed a
// sample has no map entry.
func EntityTimeSeriesOf[C SingleObservable[O], I comparable, O any](s *Simulation) (map[I][]O, error) {
	key := seriesKey{component: ecs.TypeOf[C](), ident: ecs.TypeOf[I](), value: ecs.TypeOf[O]()}
	for _, r := range s.recorders {
		if r.key == key {
			return r.snapshot().(map[I][]O), nil
		}
	}
	return nil, fmt.Errorf("entity time series %s: no recording registered: %w", key.component, ErrNotFound)
}
