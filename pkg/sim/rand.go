package sim

import (
	"math/rand"
	"time"

	"github.com/daniacca/entropia/pkg/ecs"
)

// Rand is the simulation's shared random source, stored as a world resource.
// A rand.Rand is stateful, so any system drawing from it must declare a
// write on the Rand resource type; the scheduler then serializes those
// systems against each other.
type Rand struct {
	*rand.Rand
}

// RandOf returns the shared random source of the current world. Intended for
// use inside systems that declared access to it.
func RandOf(w *ecs.World) *Rand {
	return ecs.MustResource[Rand](w)
}

func newRand(seed int64, seeded bool) Rand {
	if !seeded {
		seed = time.Now().UnixNano()
	}
	return Rand{Rand: rand.New(rand.NewSource(seed))}
}
