package experiments

import (
	"fmt"

	"github.com/daniacca/entropia/pkg/ecs"
	"github.com/daniacca/entropia/pkg/sim"
)

// ForestFireParams configures the forest-fire experiment, a classic
// lightning-and-regrowth contact process on a bounded grid.
type ForestFireParams struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	// TreeDensity is the initial probability that a cell holds a tree.
	TreeDensity float64 `yaml:"tree_density"`
	// IgnitionProb is the per-step lightning probability per tree.
	IgnitionProb float64 `yaml:"ignition_prob"`
	// SpreadProb is the probability a tree catches fire from a burning
	// neighbor.
	SpreadProb float64 `yaml:"spread_prob"`
	// RegrowthProb is the per-step probability an empty cell grows a tree.
	RegrowthProb float64 `yaml:"regrowth_prob"`
	Seed         int64   `yaml:"seed"`
}

// Validate checks the parameters for plausibility.
func (p ForestFireParams) Validate() error {
	if p.Width < 1 || p.Height < 1 {
		return fmt.Errorf("grid must be at least 1x1, got %dx%d", p.Width, p.Height)
	}
	for name, v := range map[string]float64{
		"tree_density":  p.TreeDensity,
		"ignition_prob": p.IgnitionProb,
		"spread_prob":   p.SpreadProb,
		"regrowth_prob": p.RegrowthProb,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be in [0, 1], got %v", name, v)
		}
	}
	return nil
}

// fireCell marks one grid cell of the forest.
type fireCell struct{}

const (
	groundEmpty = iota
	groundTree
	groundBurning
)

// ground holds the state of one cell.
type ground struct {
	State int
}

// forestStats is the aggregated cell-state breakdown, as fractions of all
// cells.
type forestStats struct {
	Tree    float64
	Burning float64
	Empty   float64
}

// Aggregate reduces all cells into their state fractions.
func (ground) Aggregate(records []ground) forestStats {
	var stats forestStats
	for _, g := range records {
		switch g.State {
		case groundTree:
			stats.Tree++
		case groundBurning:
			stats.Burning++
		default:
			stats.Empty++
		}
	}
	n := float64(len(records))
	stats.Tree /= n
	stats.Burning /= n
	stats.Empty /= n
	return stats
}

// burnSystem advances every cell by one step of the Drossel-Schwabl rules:
// burning cells burn out, trees ignite from burning neighbors or lightning,
// empty cells regrow. Transitions are computed against a snapshot of the
// previous states so that fire spreads one cell per step.
func burnSystem(p ForestFireParams) ecs.System {
	access := ecs.Access{
		Reads: ecs.Reads(ecs.TypeOf[sim.GridPosition](), sim.GridType[fireCell]()),
		Writes: ecs.Writes(
			ecs.TypeOf[ground](),
			ecs.TypeOf[sim.Rand](),
		),
	}
	return ecs.NewSystem("burn", access, func(w *ecs.World) error {
		grid, err := sim.GridIn[fireCell](w)
		if err != nil {
			return err
		}
		rng := sim.RandOf(w)

		previous := make(map[ecs.Entity]int)
		ecs.View(w, func(e ecs.Entity, g *ground) { previous[e] = g.State })

		ecs.View(w, func(e ecs.Entity, g *ground) {
			switch previous[e] {
			case groundBurning:
				g.State = groundEmpty
			case groundEmpty:
				if rng.Float64() < p.RegrowthProb {
					g.State = groundTree
				}
			case groundTree:
				pos, _ := ecs.Get[sim.GridPosition](w, e)
				for _, n := range grid.Neighbors(pos.X, pos.Y) {
					if previous[n] == groundBurning && rng.Float64() < p.SpreadProb {
						g.State = groundBurning
						return
					}
				}
				if rng.Float64() < p.IgnitionProb {
					g.State = groundBurning
				}
			}
		})
		return nil
	})
}

func forestFireExperiment() *Experiment {
	return &Experiment{
		Name:        "forest-fire",
		Description: "Lightning, fire spread, and regrowth on a bounded tree grid.",
		NewParams: func() any {
			return &ForestFireParams{
				Width:        50,
				Height:       50,
				TreeDensity:  0.6,
				IgnitionProb: 0.0005,
				SpreadProb:   0.9,
				RegrowthProb: 0.01,
			}
		},
		Recipe: func(params any) (*sim.Builder, error) {
			p, ok := params.(*ForestFireParams)
			if !ok {
				return nil, fmt.Errorf("forest-fire: unexpected params type %T", params)
			}
			if err := p.Validate(); err != nil {
				return nil, fmt.Errorf("forest-fire: %w", err)
			}

			b := sim.NewBuilder().
				AddEntitySpawner(func(s *sim.Spawner) {
					rng := s.Rand()
					for y := 0; y < p.Height; y++ {
						for x := 0; x < p.Width; x++ {
							state := groundEmpty
							if rng.Float64() < p.TreeDensity {
								state = groundTree
							}
							s.Spawn(fireCell{}, sim.GridPosition{X: x, Y: y}, ground{State: state})
						}
					}
				}).
				AddSystems(burnSystem(*p))
			if p.Seed != 0 {
				b.WithSeed(p.Seed)
			}
			sim.AddSpatialGrid[fireCell](b, &sim.GridBounds{
				MaxX: p.Width - 1,
				MaxY: p.Height - 1,
			})
			return b, nil
		},
		Probes: map[string]sim.Probe[float64]{
			"tree_fraction": func(s *sim.Simulation) (float64, error) {
				stats, err := sim.ObserveMany[ground, forestStats](s)
				return stats.Tree, err
			},
			"burning_fraction": func(s *sim.Simulation) (float64, error) {
				stats, err := sim.ObserveMany[ground, forestStats](s)
				return stats.Burning, err
			},
			"empty_fraction": func(s *sim.Simulation) (float64, error) {
				stats, err := sim.ObserveMany[ground, forestStats](s)
				return stats.Empty, err
			},
		},
	}
}
