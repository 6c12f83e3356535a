// Package systems provides the per-agent rules and shared world structures
// the simulation step runs on.
package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/predprey/components"
)

// Neighbor holds a nearby entity with precomputed spatial data.
// This avoids recomputing delta and distance in sensors.
type Neighbor struct {
	E      ecs.Entity
	DX, DY float64 // delta from query origin to the neighbor
	DistSq float64 // squared distance (avoid sqrt in hot path)
}

// Cell is a grid coordinate.
type Cell struct {
	Col, Row int
}

type entry struct {
	e    ecs.Entity
	kind components.Kind
}

// SpatialGrid partitions agents into uniform cells for local neighbor
// queries. It is rebuilt from scratch every tick and never updated
// incrementally, so membership always reflects the positions at rebuild time.
type SpatialGrid struct {
	cols, rows int
	cellW      float64
	cellH      float64
	cells      [][]entry
}

// NewSpatialGrid creates a grid of cols x rows cells covering width x height.
func NewSpatialGrid(width, height float64, cols, rows int) *SpatialGrid {
	cells := make([][]entry, cols*rows)
	for i := range cells {
		cells[i] = make([]entry, 0, 8) // pre-allocate small capacity
	}

	return &SpatialGrid{
		cols:  cols,
		rows:  rows,
		cellW: width / float64(cols),
		cellH: height / float64(rows),
		cells: cells,
	}
}

// Clear removes all entities from the grid.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert adds an entity to the grid cell containing (x, y).
func (g *SpatialGrid) Insert(e ecs.Entity, kind components.Kind, x, y float64) {
	c := g.CellOf(x, y)
	idx := c.Row*g.cols + c.Col
	g.cells[idx] = append(g.cells[idx], entry{e: e, kind: kind})
}

// Len returns the number of entities currently indexed.
func (g *SpatialGrid) Len() int {
	n := 0
	for _, c := range g.cells {
		n += len(c)
	}
	return n
}

// CellOf maps a position to its grid cell. Positions outside the world,
// including those produced by floating-point edge cases, clamp to the
// nearest edge cell.
func (g *SpatialGrid) CellOf(x, y float64) Cell {
	col := clampInt(int(x/g.cellW), 0, g.cols-1)
	row := clampInt(int(y/g.cellH), 0, g.rows-1)
	return Cell{Col: col, Row: row}
}

// NeighborCells appends the 3x3 block centered on c to dst, clipped to the
// grid bounds. There is no wraparound.
func (g *SpatialGrid) NeighborCells(dst []Cell, c Cell) []Cell {
	for dr := -1; dr <= 1; dr++ {
		row := c.Row + dr
		if row < 0 || row >= g.rows {
			continue
		}
		for dc := -1; dc <= 1; dc++ {
			col := c.Col + dc
			if col < 0 || col >= g.cols {
				continue
			}
			dst = append(dst, Cell{Col: col, Row: row})
		}
	}
	return dst
}

// QueryBlockInto appends every entity of the given kind within radius of
// (x, y) found in the 3x3 block around the query cell. Pass radius <= 0 to
// return the whole block. Reuse dst across calls to avoid allocations.
//
// Entities are not filtered for liveness; callers must check that.
func (g *SpatialGrid) QueryBlockInto(dst []Neighbor, x, y, radius float64, kind components.Kind, exclude ecs.Entity, posMap *ecs.Map1[components.Position]) []Neighbor {
	center := g.CellOf(x, y)
	radiusSq := radius * radius

	for dr := -1; dr <= 1; dr++ {
		row := center.Row + dr
		if row < 0 || row >= g.rows {
			continue
		}
		for dc := -1; dc <= 1; dc++ {
			col := center.Col + dc
			if col < 0 || col >= g.cols {
				continue
			}
			dst = g.appendCell(dst, row*g.cols+col, x, y, radius, radiusSq, kind, exclude, posMap)
		}
	}
	return dst
}

// QueryAllInto is the brute-force counterpart of QueryBlockInto: it scans
// every cell. Used to verify grid results and as a fallback.
func (g *SpatialGrid) QueryAllInto(dst []Neighbor, x, y, radius float64, kind components.Kind, exclude ecs.Entity, posMap *ecs.Map1[components.Position]) []Neighbor {
	radiusSq := radius * radius
	for idx := range g.cells {
		dst = g.appendCell(dst, idx, x, y, radius, radiusSq, kind, exclude, posMap)
	}
	return dst
}

func (g *SpatialGrid) appendCell(dst []Neighbor, idx int, x, y, radius, radiusSq float64, kind components.Kind, exclude ecs.Entity, posMap *ecs.Map1[components.Position]) []Neighbor {
	for _, en := range g.cells[idx] {
		if en.kind != kind || en.e == exclude {
			continue
		}
		pos := posMap.Get(en.e)
		if pos == nil {
			continue
		}
		dx := pos.X - x
		dy := pos.Y - y
		distSq := dx*dx + dy*dy
		if radius > 0 && distSq > radiusSq {
			continue
		}
		dst = append(dst, Neighbor{E: en.e, DX: dx, DY: dy, DistSq: distSq})
	}
	return dst
}
