package sim

import (
	"fmt"
	"reflect"

	"github.com/daniacca/entropia/pkg/ecs"
)

// GridPosition places an entity on the 2D integer grid.
type GridPosition struct {
	X, Y int
}

// GridBounds is an inclusive rectangle of valid grid positions.
type GridBounds struct {
	MinX, MinY int
	MaxX, MaxY int
}

// Contains reports whether p lies inside the bounds.
func (b GridBounds) Contains(p GridPosition) bool {
	return p.X >= b.MinX && p.X <= b.MaxX && p.Y >= b.MinY && p.Y <= b.MaxY
}

// SpatialGrid is a cell index over entities that carry both GridPosition and
// the grid's marker component type. It is rebuilt at the start of every step
// by a built-in maintenance system, so within a step it reflects positions
// as of the step's start.
type SpatialGrid struct {
	cells map[GridPosition][]ecs.Entity
}

// At returns the entities indexed in the cell at (x, y).
// The returned slice is shared; callers must not modify it.
func (g *SpatialGrid) At(x, y int) []ecs.Entity {
	return g.cells[GridPosition{X: x, Y: y}]
}

// Neighbors returns the entities indexed in the eight cells surrounding
// (x, y), excluding the cell itself.
func (g *SpatialGrid) Neighbors(x, y int) []ecs.Entity {
	var out []ecs.Entity
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			out = append(out, g.cells[GridPosition{X: x + dx, Y: y + dy}]...)
		}
	}
	return out
}

// Occupied returns the number of non-empty cells.
func (g *SpatialGrid) Occupied() int {
	return len(g.cells)
}

// gridIndex is the per-marker-type resource holding a grid. The marker type
// parameter keeps grids for different component types apart in the resource
// table.
type gridIndex[C any] struct {
	grid *SpatialGrid
}

// gridSpec is the recipe entry for one spatial grid.
type gridSpec struct {
	install func(w *ecs.World)
	rebuild func(w *ecs.World) error
	system  ecs.System
}

// AddSpatialGrid registers a spatial index over entities carrying both
// GridPosition and marker component type C. Multiple grids can coexist, one
// per marker type. If bounds is non-nil, a position outside the bounds fails
// the in-flight step (or the populate pass that produced it).
func AddSpatialGrid[C any](b *Builder, bounds *GridBounds) *Builder {
	rebuild := func(w *ecs.World) error {
		idx := ecs.MustResource[gridIndex[C]](w)
		cells := make(map[GridPosition][]ecs.Entity)
		var oob error
		ecs.View(w, func(e ecs.Entity, p *GridPosition) {
			if bounds != nil && !bounds.Contains(*p) && oob == nil {
				oob = fmt.Errorf("spatial grid %s: entity %d at (%d, %d) outside bounds",
					ecs.TypeOf[C](), e, p.X, p.Y)
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
		Reads:  ecs.Reads(ecs.TypeOf[GridPosition](), ecs.TypeOf[C]()),
		Writes: ecs.Writes(ecs.TypeOf[gridIndex[C]]()),
	}

	b.grids = append(b.grids, gridSpec{
		install: func(w *ecs.World) {
			ecs.SetResource(w, gridIndex[C]{grid: &SpatialGrid{}})
		},
		rebuild: rebuild,
		system:  ecs.NewSystem("sim.spatial_grid."+ecs.TypeOf[C]().String(), access, rebuild),
	})
	return b
}

// GridOf returns the spatial grid registered for marker component type C.
// It fails with ErrNotFound when no such grid was registered on the recipe.
//
// Systems reading the grid should declare a read on the grid's index
// resource via GridType.
func GridOf[C any](s *Simulation) (*SpatialGrid, error) {
	return GridIn[C](s.world)
}

// GridIn is GridOf for use inside systems, which see the world rather than
// the simulation.
func GridIn[C any](w *ecs.World) (*SpatialGrid, error) {
	idx, ok := ecs.Resource[gridIndex[C]](w)
	if !ok {
		return nil, fmt.Errorf("spatial grid %s: no grid registered: %w", ecs.TypeOf[C](), ErrNotFound)
	}
	return idx.grid, nil
}

// GridType returns the resource type systems must declare (as a read) to
// consume the spatial grid of marker component type C.
func GridType[C any]() reflect.Type {
	return ecs.TypeOf[gridIndex[C]]()
}
