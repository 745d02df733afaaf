package sim

import "github.com/daniacca/entropia/pkg/ecs"

// StepNumber is a world resource holding the number of fully completed
// steps. It is bumped by a built-in system registered after all user
// systems, so during step N user systems read N-1. Reset returns it to zero.
type StepNumber int

// CurrentStep returns the StepNumber resource of the world, for use inside
// systems. Systems reading it should declare a read on the StepNumber type.
func CurrentStep(w *ecs.World) StepNumber {
	return *ecs.MustResource[StepNumber](w)
}

func stepNumberSystem() ecs.System {
	access := ecs.Access{Writes: ecs.Writes(ecs.TypeOf[StepNumber]())}
	return ecs.NewSystem("sim.step_number", access, func(w *ecs.World) error {
		*ecs.MustResource[StepNumber](w)++
		return nil
	})
}
