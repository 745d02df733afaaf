package experiments

import (
	"fmt"

	"github.com/daniacca/entropia/pkg/ecs"
	"github.com/daniacca/entropia/pkg/sim"
)

// EpidemicParams configures the epidemic experiment: agents random-walk on a
// bounded grid and pass an infection by proximity (SIR dynamics).
type EpidemicParams struct {
	Agents int `yaml:"agents"`
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	// InitialInfected is the number of agents starting out infected.
	InitialInfected int `yaml:"initial_infected"`
	// InfectProb is the per-step probability of transmission from an
	// infected agent to a susceptible one in the same or an adjacent cell.
	InfectProb float64 `yaml:"infect_prob"`
	// RecoverProb is the per-step probability an infected agent recovers.
	RecoverProb float64 `yaml:"recover_prob"`
	Seed        int64   `yaml:"seed"`
}

// Validate checks the parameters for plausibility.
func (p EpidemicParams) Validate() error {
	if p.Agents < 1 {
		return fmt.Errorf("agents must be at least 1, got %d", p.Agents)
	}
	if p.Width < 1 || p.Height < 1 {
		return fmt.Errorf("grid must be at least 1x1, got %dx%d", p.Width, p.Height)
	}
	if p.InitialInfected < 0 || p.InitialInfected > p.Agents {
		return fmt.Errorf("initial_infected must be in [0, %d], got %d", p.Agents, p.InitialInfected)
	}
	if p.InfectProb < 0 || p.InfectProb > 1 {
		return fmt.Errorf("infect_prob must be in [0, 1], got %v", p.InfectProb)
	}
	if p.RecoverProb < 0 || p.RecoverProb > 1 {
		return fmt.Errorf("recover_prob must be in [0, 1], got %v", p.RecoverProb)
	}
	return nil
}

// person marks an agent of the epidemic.
type person struct{}

const (
	sirSusceptible = iota
	sirInfected
	sirRecovered
)

// condition holds an agent's SIR state.
type condition struct {
	State int
}

// sirStats is the aggregated population breakdown, as fractions.
type sirStats struct {
	Susceptible float64
	Infected    float64
	Recovered   float64
}

// Aggregate reduces all agents into their SIR fractions.
func (condition) Aggregate(records []condition) sirStats {
	var stats sirStats
	for _, c := range records {
		switch c.State {
		case sirInfected:
			stats.Infected++
		case sirRecovered:
			stats.Recovered++
		default:
			stats.Susceptible++
		}
	}
	n := float64(len(records))
	stats.Susceptible /= n
	stats.Infected /= n
	stats.Recovered /= n
	return stats
}

// moveSystem random-walks every agent one cell, clamped to the grid bounds.
func moveSystem(p EpidemicParams) ecs.System {
	access := ecs.Access{
		Writes: ecs.Writes(ecs.TypeOf[sim.GridPosition](), ecs.TypeOf[sim.Rand]()),
	}
	return ecs.NewSystem("move", access, func(w *ecs.World) error {
		rng := sim.RandOf(w)
		ecs.View(w, func(_ ecs.Entity, pos *sim.GridPosition) {
			pos.X = clamp(pos.X+rng.Intn(3)-1, 0, p.Width-1)
			pos.Y = clamp(pos.Y+rng.Intn(3)-1, 0, p.Height-1)
		}, ecs.With[person]())
		return nil
	})
}

// infectSystem passes the infection from infected agents to susceptible
// agents in the same or adjacent cells, using the spatial index of the
// previous step boundary.
func infectSystem(p EpidemicParams) ecs.System {
	access := ecs.Access{
		Reads: ecs.Reads(ecs.TypeOf[sim.GridPosition](), sim.GridType[person]()),
		Writes: ecs.Writes(
			ecs.TypeOf[condition](),
			ecs.TypeOf[sim.Rand](),
		),
	}
	return ecs.NewSystem("infect", access, func(w *ecs.World) error {
		grid, err := sim.GridIn[person](w)
		if err != nil {
			return err
		}
		rng := sim.RandOf(w)

		var infected []ecs.Entity
		ecs.View(w, func(e ecs.Entity, c *condition) {
			if c.State == sirInfected {
				infected = append(infected, e)
			}
		})

		for _, e := range infected {
			pos, ok := ecs.Get[sim.GridPosition](w, e)
			if !ok {
				continue
			}
			contacts := grid.Neighbors(pos.X, pos.Y)
			contacts = append(contacts, grid.At(pos.X, pos.Y)...)
			for _, other := range contacts {
				if other == e {
					continue
				}
				c, ok := ecs.Get[condition](w, other)
				if !ok || c.State != sirSusceptible {
					continue
				}
				if rng.Float64() < p.InfectProb {
					c.State = sirInfected
				}
			}
		}
		return nil
	})
}

// recoverSystem lets infected agents recover with a fixed probability.
func recoverSystem(p EpidemicParams) ecs.System {
	access := ecs.Access{
		Writes: ecs.Writes(ecs.TypeOf[condition](), ecs.TypeOf[sim.Rand]()),
	}
	return ecs.NewSystem("recover", access, func(w *ecs.World) error {
		rng := sim.RandOf(w)
		ecs.View(w, func(_ ecs.Entity, c *condition) {
			if c.State == sirInfected && rng.Float64() < p.RecoverProb {
				c.State = sirRecovered
			}
		})
		return nil
	})
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func epidemicExperiment() *Experiment {
	return &Experiment{
		Name:        "epidemic",
		Description: "SIR contact process: agents random-walk on a grid and transmit by proximity.",
		NewParams: func() any {
			return &EpidemicParams{
				Agents:          500,
				Width:           100,
				Height:          100,
				InitialInfected: 5,
				InfectProb:      0.4,
				RecoverProb:     0.05,
			}
		},
		Recipe: func(params any) (*sim.Builder, error) {
			p, ok := params.(*EpidemicParams)
			if !ok {
				return nil, fmt.Errorf("epidemic: unexpected params type %T", params)
			}
			if err := p.Validate(); err != nil {
				return nil, fmt.Errorf("epidemic: %w", err)
			}

			b := sim.NewBuilder().
				AddEntitySpawner(func(s *sim.Spawner) {
					rng := s.Rand()
					for i := 0; i < p.Agents; i++ {
						state := sirSusceptible
						if i < p.InitialInfected {
							state = sirInfected
						}
						s.Spawn(
							person{},
							condition{State: state},
							sim.GridPosition{X: rng.Intn(p.Width), Y: rng.Intn(p.Height)},
						)
					}
				}).
				AddSystems(moveSystem(*p), infectSystem(*p), recoverSystem(*p))
			if p.Seed != 0 {
				b.WithSeed(p.Seed)
			}
			sim.AddSpatialGrid[person](b, &sim.GridBounds{
				MaxX: p.Width - 1,
				MaxY: p.Height - 1,
			})
			return b, nil
		},
		Probes: map[string]sim.Probe[float64]{
			"susceptible_fraction": func(s *sim.Simulation) (float64, error) {
				stats, err := sim.ObserveMany[condition, sirStats](s)
				return stats.Susceptible, err
			},
			"infected_fraction": func(s *sim.Simulation) (float64, error) {
				stats, err := sim.ObserveMany[condition, sirStats](s)
				return stats.Infected, err
			},
			"recovered_fraction": func(s *sim.Simulation) (float64, error) {
				stats, err := sim.ObserveMany[condition, sirStats](s)
				return stats.Recovered, err
			},
		},
	}
}
