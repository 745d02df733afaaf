package experiments

import (
	"fmt"

	"github.com/daniacca/entropia/pkg/ecs"
	"github.com/daniacca/entropia/pkg/sim"
)

// CoinTossParams configures the coin-toss experiment.
type CoinTossParams struct {
	// Coins is the number of coins tossed once per step.
	Coins int `yaml:"coins"`
	// Bias is the per-toss probability of heads.
	Bias float64 `yaml:"bias"`
	// Seed fixes the random source when non-zero.
	Seed int64 `yaml:"seed"`
}

// Validate checks the parameters for plausibility.
func (p CoinTossParams) Validate() error {
	if p.Coins < 1 {
		return fmt.Errorf("coins must be at least 1, got %d", p.Coins)
	}
	if p.Bias < 0 || p.Bias > 1 {
		return fmt.Errorf("bias must be in [0, 1], got %v", p.Bias)
	}
	return nil
}

// coin tallies the tosses of one coin.
type coin struct {
	Heads  int
	Tosses int
}

// Aggregate reduces all coins to the overall observed heads ratio.
func (coin) Aggregate(records []coin) float64 {
	heads, tosses := 0, 0
	for _, c := range records {
		heads += c.Heads
		tosses += c.Tosses
	}
	if tosses == 0 {
		return 0
	}
	return float64(heads) / float64(tosses)
}

func tossSystem(bias float64) ecs.System {
	access := ecs.Access{
		Writes: ecs.Writes(ecs.TypeOf[coin](), ecs.TypeOf[sim.Rand]()),
	}
	return ecs.NewSystem("toss", access, func(w *ecs.World) error {
		rng := sim.RandOf(w)
		ecs.View(w, func(_ ecs.Entity, c *coin) {
			if rng.Float64() < bias {
				c.Heads++
			}
			c.Tosses++
		})
		return nil
	})
}

func coinTossExperiment() *Experiment {
	return &Experiment{
		Name:        "coin-toss",
		Description: "Estimate the bias of a coin by tossing many copies of it once per step.",
		NewParams: func() any {
			return &CoinTossParams{Coins: 1000, Bias: 0.5}
		},
		Recipe: func(params any) (*sim.Builder, error) {
			p, ok := params.(*CoinTossParams)
			if !ok {
				return nil, fmt.Errorf("coin-toss: unexpected params type %T", params)
			}
			if err := p.Validate(); err != nil {
				return nil, fmt.Errorf("coin-toss: %w", err)
			}

			b := sim.NewBuilder().
				AddEntitySpawner(func(s *sim.Spawner) {
					s.SpawnBatch(p.Coins, func(int) []any { return []any{coin{}} })
				}).
				AddSystems(tossSystem(p.Bias))
			if p.Seed != 0 {
				b.WithSeed(p.Seed)
			}
			if err := sim.RecordTimeSeries[coin, float64](b, 1); err != nil {
				return nil, err
			}
			return b, nil
		},
		Probes: map[string]sim.Probe[float64]{
			"heads_ratio": func(s *sim.Simulation) (float64, error) {
				return sim.ObserveMany[coin, float64](s)
			},
			"coins": func(s *sim.Simulation) (float64, error) {
				return float64(sim.CountOf[coin](s)), nil
			},
		},
	}
}
