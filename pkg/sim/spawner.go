package sim

import "github.com/daniacca/entropia/pkg/ecs"

// Spawner is the creation handle passed to spawn functions. It is bound to
// the live world for the duration of one populate pass and must not be
// retained.
type Spawner struct {
	world *ecs.World
}

// Spawn creates a single entity owning exactly the given component records.
func (s *Spawner) Spawn(components ...any) ecs.Entity {
	return s.world.Spawn(components...)
}

// SpawnBatch creates n entities, calling make once per entity to obtain its
// component bundle.
func (s *Spawner) SpawnBatch(n int, make func(i int) []any) {
	for i := 0; i < n; i++ {
		s.world.Spawn(make(i)...)
	}
}

// Rand returns the simulation's shared random source, for spawners that
// randomize initial component values.
func (s *Spawner) Rand() *Rand {
	return ecs.MustResource[Rand](s.world)
}

// SpawnFunc creates zero or more entities through the given handle. Spawn
// functions run once per build or reset, in registration order, against an
// otherwise fresh population. They must hold no state between invocations
// and must create the same number and kind of entities on every call; field
// values may be randomized.
type SpawnFunc func(*Spawner)
