package sim

import (
	"fmt"
	"reflect"

	"github.com/daniacca/entropia/pkg/ecs"
)

// GridPosition3 places an entity on the 3D integer grid.
type GridPosition3 struct {
	X, Y, Z int
}

// GridBounds3 is an inclusive box of valid grid positions.
type GridBounds3 struct {
	MinX, MinY, MinZ int
	MaxX, MaxY, MaxZ int
}

// Contains reports whether p lies inside the bounds.
func (b GridBounds3) Contains(p GridPosition3) bool {
	return p.X >= b.MinX && p.X <= b.MaxX &&
		p.Y >= b.MinY && p.Y <= b.MaxY &&
		p.Z >= b.MinZ && p.Z <= b.MaxZ
}

// SpatialGrid3 is the 3D counterpart of SpatialGrid: a cell index over
// entities carrying both GridPosition3 and the grid's marker component type,
// rebuilt at the start of every step.
type SpatialGrid3 struct {
	cells map[GridPosition3][]ecs.Entity
}

// At returns the entities indexed in the cell at (x, y, z).
// The returned slice is shared; callers must not modify it.
func (g *SpatialGrid3) At(x, y, z int) []ecs.Entity {
	return g.cells[GridPosition3{X: x, Y: y, Z: z}]
}

// Neighbors returns the entities indexed in the 26 cells surrounding
// (x, y, z), excluding the cell itself.
func (g *SpatialGrid3) Neighbors(x, y, z int) []ecs.Entity {
	var out []ecs.Entity
	for dz := -1; dz <= 1; dz++ {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 && dz == 0 {
					continue
				}
				out = append(out, g.cells[GridPosition3{X: x + dx, Y: y + dy, Z: z + dz}]...)
			}
		}
	}
	return out
}

// Occupied returns the number of non-empty cells.
func (g *SpatialGrid3) Occupied() int {
	return len(g.cells)
}

type gridIndex3[C any] struct {
	grid *SpatialGrid3
}

// AddSpatialGrid3D registers a spatial index over entities carrying both
// GridPosition3 and marker component type C. It behaves exactly like
// AddSpatialGrid, lifted to three dimensions: multiple grids can coexist,
// one per marker type, and a position outside non-nil bounds fails the
// in-flight step.
func AddSpatialGrid3D[C any](b *Builder, bounds *GridBounds3) *Builder {
	rebuild := func(w *ecs.World) error {
		idx := ecs.MustResource[gridIndex3[C]](w)
		cells := make(map[GridPosition3][]ecs.Entity)
		var oob error
		ecs.View(w, func(e ecs.Entity, p *GridPosition3) {
			if bounds != nil && !bounds.Contains(*p) && oob == nil {
				oob = fmt.Errorf("spatial grid %s: entity %d at (%d, %d, %d) outside bounds",
					ecs.TypeOf[C](), e, p.X, p.Y, p.Z)
			}
			cells[*p] = append(cells[*p], e)
		}, ecs.With[C]())
		if oob != nil {
			return oob
		}
		idx.grid.cells = cells
		return nil
	}

	access := ecs.Access{
		Reads:  ecs.Reads(ecs.TypeOf[GridPosition3](), ecs.TypeOf[C]()),
		Writes: ecs.Writes(ecs.TypeOf[gridIndex3[C]]()),
	}

	b.grids = append(b.grids, gridSpec{
		install: func(w *ecs.World) {
			ecs.SetResource(w, gridIndex3[C]{grid: &SpatialGrid3{}})
		},
		rebuild: rebuild,
		system:  ecs.NewSystem("sim.spatial_grid_3d."+ecs.TypeOf[C]().String(), access, rebuild),
	})
	return b
}

// GridOf3D returns the 3D spatial grid registered for marker component type
// C. It fails with ErrNotFound when no such grid was registered on the
// recipe.
//
// Systems reading the grid should declare a read on the grid's index
// resource via GridType3D.
func GridOf3D[C any](s *Simulation) (*SpatialGrid3, error) {
	return GridIn3D[C](s.world)
}

// GridIn3D is GridOf3D for use inside systems, which see the world rather
// than the simulation.
func GridIn3D[C any](w *ecs.World) (*SpatialGrid3, error) {
	idx, ok := ecs.Resource[gridIndex3[C]](w)
	if !ok {
		return nil, fmt.Errorf("spatial grid %s: no grid registered: %w", ecs.TypeOf[C](), ErrNotFound)
	}
	return idx.grid, nil
}

// GridType3D returns the resource type systems must declare (as a read) to
// consume the 3D spatial grid of marker component type C.
func GridType3D[C any]() reflect.Type {
	return ecs.TypeOf[gridIndex3[C]]()
}
