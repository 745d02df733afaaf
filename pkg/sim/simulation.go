package sim

import (
	"fmt"

	"github.com/daniacca/entropia/pkg/ecs"
)

// Simulation executes one configured Monte Carlo experiment. It owns its
// world exclusively, tracks the number of completed steps, and keeps the
// recipe needed to rebuild the initial population on demand.
//
// A Simulation supports one logical thread of control at a time. Callers
// that share one across goroutines must serialize access themselves.
type Simulation struct {
	world     *ecs.World
	spawners  []SpawnFunc
	resources []func(*ecs.World)
	recorders []*seriesRecorder
	grids     []gridSpec
	logger    Logger
	seed      int64
	seeded    bool
	steps     int
}

// StepCount returns the number of completed steps since the last reset or
// construction.
func (s *Simulation) StepCount() int {
	return s.steps
}

// Run advances the simulation by the given number of steps. Each step is a
// full synchronization point: all systems scheduled for it complete before
// the next step or any observation proceeds.
//
// steps must be non-negative; zero is a no-op. If a step fails, the
// remaining steps are not attempted, the step counter reflects only
// completed steps, and the world is left as the failed step left it.
func (s *Simulation) Run(steps int) error {
	if steps < 0 {
		return fmt.Errorf("run: steps must be non-negative, got %d", steps)
	}
	for i := 0; i < steps; i++ {
		if err := s.world.Step(); err != nil {
			return fmt.Errorf("step %d: %w", s.steps+1, err)
		}
		s.steps++
		s.sampleSeries()
	}
	return nil
}

// Reset restores the simulation to its initial state: every entity is
// destroyed, resources and recordings are reinstalled, all spawners run
// again in registration order, and the step counter returns to zero.
// Registered systems are untouched.
//
// The rebuilt population has the same structure as the original one (same
// spawners, same call order); randomized component values may differ unless
// the simulation was seeded.
func (s *Simulation) Reset() error {
	s.world.Clear()
	s.installResources()
	for _, r := range s.recorders {
		r.reset()
	}
	s.steps = 0
	if err := s.populate(); err != nil {
		return err
	}
	s.logger.Debugf("simulation reset: entities=%d", s.world.Len())
	return nil
}

// RunNew resets the simulation and then runs the given number of steps.
// It is exactly Reset followed by Run.
func (s *Simulation) RunNew(steps int) error {
	if err := s.Reset(); err != nil {
		return err
	}
	return s.Run(steps)
}

// ResourceOf returns the simulation's resource of type T, if one was
// configured on the recipe or installed by a built-in.
func ResourceOf[T any](s *Simulation) (*T, bool) {
	return ecs.Resource[T](s.world)
}

// installResources (re)installs the built-in and user resources.
func (s *Simulation) installResources() {
	ecs.SetResource(s.world, newRand(s.seed, s.seeded))
	ecs.SetResource(s.world, StepNumber(0))
	for _, g := range s.grids {
		g.install(s.world)
	}
	for _, install := range s.resources {
		install(s.world)
	}
}

// populate runs every spawner once against the current world and brings the
// spatial grids in sync with the spawned positions.
func (s *Simulation) populate() error {
	sp := &Spawner{world: s.world}
	for _, fn := range s.spawners {
		fn(sp)
	}
	for _, g := range s.grids {
		if err := g.rebuild(s.world); err != nil {
			return fmt.Errorf("populate: %w", err)
		}
	}
	return nil
}

func (s *Simulation) sampleSeries() {
	for _, r := range s.recorders {
		if s.steps%r.interval == 0 {
			r.sample(s.world)
		}
	}
}
