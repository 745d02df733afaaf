// Package sim is a harness for repeatable, steppable Monte Carlo
// experiments modeled as a population of entities, each a bundle of typed
// component records.
//
// A user defines how entities are created (spawners), how their components
// evolve per discrete step (systems), and how to extract results
// (the observation protocol). The harness owns the experiment lifecycle:
// build once, run any number of steps, reset to the initial population, and
// read out values at any point between steps.
//
//	type Counter struct{ N int }
//
//	func (c Counter) Aggregate(records []Counter) int {
//		total := 0
//		for _, r := range records {
//			total += r.N
//		}
//		return total
//	}
//
//	builder := sim.NewBuilder().
//		AddEntitySpawner(func(s *sim.Spawner) {
//			for i := 0; i < 100; i++ {
//				s.Spawn(Counter{})
//			}
//		}).
//		AddSystems(ecs.NewSystem("increment",
//			ecs.Access{Writes: ecs.Writes(ecs.TypeOf[Counter]())},
//			func(w *ecs.World) error {
//				ecs.View(w, func(_ ecs.Entity, c *Counter) { c.N++ })
//				return nil
//			}))
//
//	s, _ := builder.Build()
//	_ = s.Run(10)
//	total, _ := sim.ObserveMany[Counter, int](s) // 1000
//
// Simulations are generic over user component types: the harness never
// inspects component fields, it only dispatches on the SingleObservable and
// ManyObservable capabilities.
package sim
