package sim

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Probe extracts one result value from a simulation, typically through the
// observation protocol. Probes must not mutate the population.
type Probe[O any] func(*Simulation) (O, error)

// TrialResult is the outcome of one independent trial.
type TrialResult[O any] struct {
	// ID is a unique identifier assigned to the trial.
	ID string
	// Index is the trial's position in [0, trials).
	Index int
	// Steps is the number of steps the trial ran.
	Steps int
	// Value is the probed observation after the trial's last step.
	Value O
}

// RunTrials executes a Monte Carlo experiment: it builds `trials`
// independent simulations from the recipe, runs each for `steps` steps, and
// probes one observation per trial. Results are returned in trial order.
//
// parallel bounds the number of concurrently running trials; values outside
// [1, trials] are clamped. Each trial owns its simulation exclusively, so
// parallelism here never violates the single-owner contract of Simulation.
//
// When the builder carries a fixed seed, trial i runs with seed+i so that
// trials stay reproducible without collapsing into identical runs. The first
// build, run, or probe error aborts the experiment.
func RunTrials[O any](b *Builder, trials, steps, parallel int, probe Probe[O]) ([]TrialResult[O], error) {
	if trials < 1 {
		return nil, fmt.Errorf("run trials: trials must be at least 1, got %d", trials)
	}
	if steps < 0 {
		return nil, fmt.Errorf("run trials: steps must be non-negative, got %d", steps)
	}
	if parallel < 1 {
		parallel = 1
	}
	if parallel > trials {
		parallel = trials
	}

	results := make([]TrialResult[O], trials)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	indexes := make(chan int)

	worker := func() {
		defer wg.Done()
		for i := range indexes {
			mu.Lock()
			aborted := firstErr != nil
			mu.Unlock()
			if aborted {
				continue
			}

			value, err := runTrial(b, i, steps, probe)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("trial %d: %w", i, err)
				}
				mu.Unlock()
				continue
			}
			results[i] = TrialResult[O]{
				ID:    uuid.NewString(),
				Index: i,
				Steps: steps,
				Value: value,
			}
		}
	}

	wg.Add(parallel)
	for p := 0; p < parallel; p++ {
		go worker()
	}
	for i := 0; i < trials; i++ {
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}

func runTrial[O any](b *Builder, index, steps int, probe Probe[O]) (O, error) {
	var zero O
	s, err := b.build(b.seed+int64(index), b.seeded)
	if err != nil {
		return zero, fmt.Errorf("build: %w", err)
	}
	if err := s.Run(steps); err != nil {
		return zero, err
	}
	value, err := probe(s)
	if err != nil {
		return zero, fmt.Errorf("probe: %w", err)
	}
	return value, nil
}
