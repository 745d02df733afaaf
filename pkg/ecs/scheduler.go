package ecs

import (
	"fmt"
	"sync"
)

// scheduler groups registered systems into conflict-free batches at
// registration time. Systems inside one batch have pairwise disjoint access
// declarations and run concurrently; batches run in sequence with a barrier
// (including command application) between them.
//
// Batch assignment preserves registration order between conflicting systems:
// a system lands one batch after the latest earlier system it conflicts
// with. The relative execution order of non-conflicting systems is
// unspecified.
type scheduler struct {
	systems []System
	batch   []int // batch index per system
	batches int
}

func (s *scheduler) add(sys System) {
	idx := 0
	for i, prev := range s.systems {
		if prev.Access().Conflicts(sys.Access()) && s.batch[i] >= idx {
			idx = s.batch[i] + 1
		}
	}
	s.systems = append(s.systems, sys)
	s.batch = append(s.batch, idx)
	if idx+1 > s.batches {
		s.batches = idx + 1
	}
}

// AddSystems registers update routines to run on every Step, in the given
// order. May be called multiple times; the set of systems is normally fixed
// before the first Step.
//
// Ordering guarantee: systems whose access declarations conflict execute in
// registration order, separated by a barrier. Non-conflicting systems may
// execute concurrently and in any order relative to each other, including
// across separate AddSystems calls.
func (w *World) AddSystems(systems ...System) {
	for _, sys := range systems {
		w.sched.add(sys)
	}
}

// Systems returns the registered systems in registration order.
func (w *World) Systems() []System {
	out := make([]System, len(w.sched.systems))
	copy(out, w.sched.systems)
	return out
}

// Step executes every registered system exactly once. Systems of the same
// conflict-free batch run on separate goroutines; the next batch does not
// start until every system of the current batch has returned and all queued
// commands have been applied.
//
// The first system error aborts the step: later batches do not run, queued
// commands of the failed batch's completed systems are still applied, and
// the error is returned wrapped with the system name. System panics are not
// recovered.
func (w *World) Step() error {
	for b := 0; b < w.sched.batches; b++ {
		var current []System
		for i, sys := range w.sched.systems {
			if w.sched.batch[i] == b {
				current = append(current, sys)
			}
		}

		var stepErr error
		if len(current) == 1 {
			if err := current[0].Update(w); err != nil {
				stepErr = fmt.Errorf("system %q: %w", current[0].Name(), err)
			}
		} else {
			var (
				wg sync.WaitGroup
				mu sync.Mutex
			)
			for _, sys := range current {
				wg.Add(1)
				go func(sys System) {
					defer wg.Done()
					if err := sys.Update(w); err != nil {
						mu.Lock()
						if stepErr == nil {
							stepErr = fmt.Errorf("system %q: %w", sys.Name(), err)
						}
						mu.Unlock()
					}
				}(sys)
			}
			wg.Wait()
		}

		// barrier: structural mutations land before the next batch reads
		w.commands.apply(w)

		if stepErr != nil {
			return stepErr
		}
	}
	return nil
}
