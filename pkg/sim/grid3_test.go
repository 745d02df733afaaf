package sim

import (
	"errors"
	"testing"

	"github.com/daniacca/entropia/pkg/ecs"
)

type drone struct{}

func TestSpatialGrid3D_IndexesSpawnedPositions(t *testing.T) {
	b := NewBuilder().
		AddEntitySpawner(func(sp *Spawner) {
			sp.Spawn(drone{}, GridPosition3{X: 1, Y: 1, Z: 1})
			sp.Spawn(drone{}, GridPosition3{X: 1, Y: 1, Z: 1})
			sp.Spawn(drone{}, GridPosition3{X: 1, Y: 1, Z: 2})
			// no drone marker: not indexed by this grid
			sp.Spawn(GridPosition3{X: 1, Y: 1, Z: 1})
		})
	AddSpatialGrid3D[drone](b, nil)

	s, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	grid, err := GridOf3D[drone](s)
	if err != nil {
		t.Fatalf("grid: %v", err)
	}
	if got := len(grid.At(1, 1, 1)); got != 2 {
		t.Errorf("cell (1,1,1) holds %d entities, want 2", got)
	}
	if got := len(grid.Neighbors(1, 1, 1)); got != 1 {
		t.Errorf("neighbors of (1,1,1) = %d entities, want 1", got)
	}
	if grid.Occupied() != 2 {
		t.Errorf("occupied cells = %d, want 2", grid.Occupied())
	}
}

func TestSpatialGrid3D_NeighborsSpanAllDirections(t *testing.T) {
	b := NewBuilder().
		AddEntitySpawner(func(sp *Spawner) {
			// one entity in every cell of the 3x3x3 block around the origin
			for z := -1; z <= 1; z++ {
				for y := -1; y <= 1; y++ {
					for x := -1; x <= 1; x++ {
						sp.Spawn(drone{}, GridPosition3{X: x, Y: y, Z: z})
					}
				}
			}
		})
	AddSpatialGrid3D[drone](b, nil)

	s, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	grid, _ := GridOf3D[drone](s)
	if got := len(grid.Neighbors(0, 0, 0)); got != 26 {
		t.Errorf("neighbors of the origin = %d entities, want 26", got)
	}
}

func TestSpatialGrid3D_FollowsMovement(t *testing.T) {
	climb := ecs.NewSystem("climb",
		ecs.Access{Writes: ecs.Writes(ecs.TypeOf[GridPosition3]())},
		func(w *ecs.World) error {
			ecs.View(w, func(_ ecs.Entity, p *GridPosition3) { p.Z++ })
			return nil
		})

	b := NewBuilder().
		AddEntitySpawner(func(sp *Spawner) {
			sp.Spawn(drone{}, GridPosition3{})
		}).
		AddSystems(climb)
	AddSpatialGrid3D[drone](b, nil)

	s, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := s.Run(3); err != nil {
		t.Fatal(err)
	}

	// maintenance runs at the start of each step: after 3 completed steps the
	// index reflects the position after step 2
	grid, _ := GridOf3D[drone](s)
	if len(grid.At(0, 0, 2)) != 1 {
		t.Errorf("expected the drone indexed at (0,0,2)")
	}
}

func TestSpatialGrid3D_BoundsViolationFailsStep(t *testing.T) {
	dive := ecs.NewSystem("dive",
		ecs.Access{Writes: ecs.Writes(ecs.TypeOf[GridPosition3]())},
		func(w *ecs.World) error {
			ecs.View(w, func(_ ecs.Entity, p *GridPosition3) { p.Z -= 100 })
			return nil
		})

	b := NewBuilder().
		AddEntitySpawner(func(sp *Spawner) {
			sp.Spawn(drone{}, GridPosition3{X: 1, Y: 1, Z: 5})
		}).
		AddSystems(dive)
	AddSpatialGrid3D[drone](b, &GridBounds3{MaxX: 9, MaxY: 9, MaxZ: 9})

	s, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	// step 1 moves below the floor; the maintenance system of step 2 detects it
	if err := s.Run(1); err != nil {
		t.Fatalf("first step should pass, got %v", err)
	}
	if err := s.Run(1); err == nil {
		t.Fatal("expected a bounds error on the following step")
	}
}

func TestSpatialGrid3D_CoexistsWithFlatGrid(t *testing.T) {
	b := NewBuilder().
		AddEntitySpawner(func(sp *Spawner) {
			sp.Spawn(walker{}, GridPosition{X: 1, Y: 1})
			sp.Spawn(drone{}, GridPosition3{X: 1, Y: 1, Z: 1})
		})
	AddSpatialGrid[walker](b, nil)
	AddSpatialGrid3D[drone](b, nil)

	s, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	flat, err := GridOf[walker](s)
	if err != nil {
		t.Fatal(err)
	}
	if len(flat.At(1, 1)) != 1 {
		t.Error("expected the walker on the flat grid")
	}
	boxed, err := GridOf3D[drone](s)
	if err != nil {
		t.Fatal(err)
	}
	if len(boxed.At(1, 1, 1)) != 1 {
		t.Error("expected the drone on the 3D grid")
	}
}

func TestGridOf3D_NotRegistered(t *testing.T) {
	s := counterSim(t, 1)
	_, err := GridOf3D[drone](s)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
